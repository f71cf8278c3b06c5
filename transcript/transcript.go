package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Transcript errors
var (
	ErrRunNotFound      = errors.New("run not found")
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrRunNotStarted    = errors.New("run not started")
)

// RunStatus indicates the status of a run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSuspended RunStatus = "suspended"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Transcript is the complete conversation record of one run.
type Transcript struct {
	RunID    string `json:"runId"`
	Metadata Meta   `json:"metadata"`
	Turns    []Turn `json:"turns"`
}

// Meta contains run metadata
type Meta struct {
	RunID          string         `json:"runId,omitempty"`
	FlowID         string         `json:"flowId"`
	Input          map[string]any `json:"input,omitempty"`
	StartedAt      time.Time      `json:"startedAt"`
	EndedAt        time.Time      `json:"endedAt,omitempty"`
	Status         RunStatus      `json:"status"`
	Segments       int            `json:"segments"`
	TotalTokensIn  int            `json:"totalTokensIn"`
	TotalTokensOut int            `json:"totalTokensOut"`
	TurnCount      int            `json:"turnCount"`
	Error          string         `json:"error,omitempty"`
}

// Turn is one prompt or completion.
type Turn struct {
	ID         int       `json:"id"`
	Role       string    `json:"role"` // system, user, assistant
	Agent      string    `json:"agent,omitempty"`
	Content    string    `json:"content"`
	TokensIn   int       `json:"tokensIn,omitempty"`
	TokensOut  int       `json:"tokensOut,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"durationMs,omitempty"`
}

// RunMetadata is input for starting a new run
type RunMetadata struct {
	FlowID string
	Input  map[string]any
}

// Manager is the interface for transcript operations
type Manager interface {
	// Lifecycle
	StartRun(runID string, metadata RunMetadata) error
	RecordTurn(runID string, turn Turn) error
	EndRun(runID string, status RunStatus) error
	EndRunWithError(runID string, err error) error

	// Retrieval
	Load(runID string) (*Transcript, error)
	List(filter ListFilter) ([]Meta, error)
}

// ListFilter filters transcript listing
type ListFilter struct {
	FlowID string
	Status RunStatus
	After  time.Time
	Before time.Time
	Limit  int
}

// addTurn numbers the turn and folds its token counts into the metadata.
func (t *Transcript) addTurn(turn Turn) {
	turn.ID = len(t.Turns) + 1
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	switch turn.Role {
	case "user", "system":
		t.Metadata.TotalTokensIn += turn.TokensIn
	case "assistant":
		t.Metadata.TotalTokensOut += turn.TokensOut
	}

	t.Turns = append(t.Turns, turn)
	t.Metadata.TurnCount = len(t.Turns)
}

// Duration returns the run duration
func (t *Transcript) Duration() time.Duration {
	if t.Metadata.EndedAt.IsZero() {
		return time.Since(t.Metadata.StartedAt)
	}
	return t.Metadata.EndedAt.Sub(t.Metadata.StartedAt)
}

// TurnsByAgent returns all turns produced for the given agent role.
func (t *Transcript) TurnsByAgent(agent string) []Turn {
	var result []Turn
	for _, turn := range t.Turns {
		if turn.Agent == agent {
			result = append(result, turn)
		}
	}
	return result
}

// Save writes the transcript to <baseDir>/runs/<run-id>/transcript.json.
func (t *Transcript) Save(baseDir string) error {
	runDir := filepath.Join(baseDir, "runs", t.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(runDir, "transcript.json"), data, 0644)
}

// Load reads a saved transcript from disk.
func Load(baseDir, runID string) (*Transcript, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, "runs", runID, "transcript.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// =============================================================================
// Context
// =============================================================================

type contextKey struct{}

// WithManager adds a Manager to the context.
func WithManager(ctx context.Context, mgr Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, mgr)
}

// ManagerFromContext extracts the Manager from context, or nil.
func ManagerFromContext(ctx context.Context) Manager {
	if mgr, ok := ctx.Value(contextKey{}).(Manager); ok {
		return mgr
	}
	return nil
}

// =============================================================================
// Run ID
// =============================================================================

type runIDKey struct{}

// WithRunID records the active run ID in the context so agents can
// attribute turns without threading the ID through every call.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the active run ID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Record is a convenience for agents: it records turn against the run in
// ctx if both a Manager and a run ID are present. Errors are returned so
// callers can decide whether to log them.
func Record(ctx context.Context, turn Turn) error {
	mgr := ManagerFromContext(ctx)
	runID := RunIDFromContext(ctx)
	if mgr == nil || runID == "" {
		return nil
	}
	return mgr.RecordTurn(runID, turn)
}
