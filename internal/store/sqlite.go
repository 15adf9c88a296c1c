package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"investpath/internal/analysis"
	"investpath/internal/workflow"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	status          TEXT NOT NULL,
	current_step    INTEGER NOT NULL,
	completed_steps TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

CREATE TABLE IF NOT EXISTS step_results (
	session_id TEXT NOT NULL,
	step_id    TEXT NOT NULL,
	payload    TEXT NOT NULL,
	saved_at   TIMESTAMP NOT NULL,
	PRIMARY KEY (session_id, step_id)
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id  TEXT PRIMARY KEY,
	payload  TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL
);
`

// SQLite is the durable SessionStore. Step results and profiles are
// stored as JSON payloads; session bookkeeping columns stay relational
// for the per-user listing.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path. WAL mode keeps
// concurrent session reads cheap while one writer advances a step.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite at %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Create(ctx context.Context, userID string) (*workflow.Session, error) {
	now := time.Now().UTC()
	session := &workflow.Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      workflow.SessionStatusActive,
		CurrentStep: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, status, current_step, completed_steps, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.Status, session.CurrentStep,
		encodeSteps(session.CompletedSteps), session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return session, nil
}

func (s *SQLite) Get(ctx context.Context, sessionID string) (*workflow.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, status, current_step, completed_steps, created_at, updated_at
		 FROM sessions WHERE id = ?`, sessionID)
	return scanSession(row, sessionID)
}

func (s *SQLite) Update(ctx context.Context, session *workflow.Session) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET status = ?, current_step = ?, completed_steps = ?, updated_at = ?
		 WHERE id = ?`,
		session.Status, session.CurrentStep, encodeSteps(session.CompletedSteps),
		time.Now().UTC(), session.ID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return workflow.NewNotFoundError("session %s not found", session.ID)
	}
	return nil
}

func (s *SQLite) ListByUser(ctx context.Context, userID string) ([]*workflow.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, status, current_step, completed_steps, created_at, updated_at
		 FROM sessions WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*workflow.Session
	for rows.Next() {
		session, err := scanSession(rows, "")
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *SQLite) SaveStepResult(ctx context.Context, sessionID string, result *workflow.StepResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding step result: %w", err)
	}

	// Upsert keeps last-write-wins semantics for racing retries.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO step_results (session_id, step_id, payload, saved_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id, step_id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		sessionID, result.StepID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving step result: %w", err)
	}
	return nil
}

func (s *SQLite) GetStepResult(ctx context.Context, sessionID string, stepID workflow.StepID) (*workflow.StepResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM step_results WHERE session_id = ? AND step_id = ?`,
		sessionID, stepID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.NewNotFoundError("no result for step %s in session %s", stepID, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading step result: %w", err)
	}

	var result workflow.StepResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decoding step result: %w", err)
	}
	return &result, nil
}

func (s *SQLite) DeleteStepResults(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM step_results WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("deleting step results: %w", err)
	}
	return nil
}

func (s *SQLite) SaveProfile(ctx context.Context, userID string, profile *analysis.InvestmentProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, payload, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		userID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

func (s *SQLite) GetProfile(ctx context.Context, userID string) (*analysis.InvestmentProfile, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM profiles WHERE user_id = ?`, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.NewNotFoundError("no profile for user %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	var profile analysis.InvestmentProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &profile, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner, sessionID string) (*workflow.Session, error) {
	var session workflow.Session
	var completed string
	err := row.Scan(&session.ID, &session.UserID, &session.Status,
		&session.CurrentStep, &completed, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, workflow.NewNotFoundError("session %s not found", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	session.CompletedSteps = decodeSteps(completed)
	return &session, nil
}

// completed steps round-trip as a comma-joined list; simpler to read
// in the database than JSON and order-preserving.
func encodeSteps(steps []workflow.StepID) string {
	parts := make([]string, len(steps))
	for i, step := range steps {
		parts[i] = string(step)
	}
	return strings.Join(parts, ",")
}

func decodeSteps(encoded string) []workflow.StepID {
	if encoded == "" {
		return nil
	}
	parts := strings.Split(encoded, ",")
	steps := make([]workflow.StepID, len(parts))
	for i, part := range parts {
		steps[i] = workflow.StepID(part)
	}
	return steps
}

var _ workflow.SessionStore = (*SQLite)(nil)
