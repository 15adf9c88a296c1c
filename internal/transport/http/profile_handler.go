package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"investpath/internal/analysis"
	apierrors "investpath/internal/errors"
	"investpath/internal/workflow"
)

// ProfileHandler exposes investment profiles outside of the workflow,
// so a profile can be inspected or amended between sessions.
type ProfileHandler struct {
	store        workflow.SessionStore
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(store workflow.SessionStore, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ProfileHandler {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{
		store:        store,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "profile")),
	}
}

// ProfileRequest creates or replaces an investment profile.
type ProfileRequest struct {
	CapitalAvailable float64  `json:"capital_available" validate:"required,gt=0"`
	RiskTolerance    string   `json:"risk_tolerance" validate:"required,oneof=low medium high"`
	MaxPositionPct   float64  `json:"max_position_pct" validate:"omitempty,gt=0,lte=100"`
	TimeHorizon      string   `json:"time_horizon" validate:"omitempty,oneof=short medium long"`
	Objectives       []string `json:"objectives"`
}

// Bind implements the render.Binder interface.
func (req *ProfileRequest) Bind(r *http.Request) error {
	return validate.Struct(req)
}

// Routes returns a chi router for the profile endpoints.
func (h *ProfileHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Put("/{userID}", h.PutProfile)
	r.Get("/{userID}", h.GetProfile)
	return r
}

// PutProfile handles PUT /api/profiles/{userID}.
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	data := &ProfileRequest{}
	if err := render.Bind(r, data); err != nil {
		h.errorHandler.HandleError(w, r, workflow.NewValidationError("invalid profile: %v", err))
		return
	}

	profile := &analysis.InvestmentProfile{
		UserID:           userID,
		CapitalAvailable: decimal.NewFromFloat(data.CapitalAvailable),
		RiskTolerance:    data.RiskTolerance,
		MaxPositionPct:   data.MaxPositionPct,
		TimeHorizon:      data.TimeHorizon,
		Objectives:       data.Objectives,
	}

	if err := h.store.SaveProfile(ctx, userID, profile); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "profile saved", slog.String("user_id", userID))
	render.JSON(w, r, profile)
}

// GetProfile handles GET /api/profiles/{userID}.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	profile, err := h.store.GetProfile(ctx, userID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, profile)
}
