package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investpath/internal/config"
	"investpath/internal/infrastructure"
	"investpath/internal/providers"
)

func TestBuildCatalogKeylessOnly(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := BuildCatalog(config.ProvidersConfig{}, providers.NewCache(), logger)

	statuses := catalog.Statuses()
	byProvider := make(map[string]bool)
	for _, s := range statuses {
		byProvider[s.Provider] = s.Available
	}

	// Keyless providers are always wired.
	assert.True(t, byProvider["yahoo"])
	assert.True(t, byProvider["worldbank"])
	assert.True(t, byProvider["stockanalysis"])

	// Keyed providers were skipped entirely.
	_, present := byProvider["finnhub"]
	assert.False(t, present)
}

func TestBuildCatalogWithKeys(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := BuildCatalog(config.ProvidersConfig{
		FinnhubKey: "k1",
		FMPKey:     "k2",
		FREDKey:    "k3",
	}, providers.NewCache(), logger)

	quotes := catalog.Chain(providers.NeedQuotes)
	require.NotNil(t, quotes)
	require.NotEmpty(t, quotes.Adapters())
	assert.Equal(t, "finnhub", quotes.Adapters()[0].Name())

	ratings := catalog.Chain(providers.NeedRatings)
	require.NotNil(t, ratings)
	// Finnhub ratings sit at the end of the chain.
	assert.Equal(t, "finnhub", ratings.Adapters()[len(ratings.Adapters())-1].Name())

	macro := catalog.Chain(providers.NeedMacro)
	require.NotNil(t, macro)
	assert.Equal(t, "fred", macro.Adapters()[0].Name())
}

func TestNewApplicationServesHealth(t *testing.T) {
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := `
server:
  port: 18080
store:
  driver: memory
logging:
  level: error
  output: console
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	application, err := NewApplication(cfgPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		if application.OTelProviders != nil {
			_ = application.OTelProviders.Shutdown(context.Background())
		}
	})

	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestNewApplicationWorkflowRoundTrip(t *testing.T) {
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := `
server:
  port: 18081
store:
  driver: sqlite
  path: ` + filepath.Join(dir, "sessions.db") + `
logging:
  level: error
  output: console
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	application, err := NewApplication(cfgPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = application.Stop(context.Background())
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/workflow/start",
		nil)
	req.Header.Set("Content-Type", "application/json")
	application.Router.ServeHTTP(rec, req)

	// No body means no user_id.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
