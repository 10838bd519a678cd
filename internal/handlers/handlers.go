package handlers

import (
	"context"
	"time"

	"autoplay/internal/database"
	"autoplay/internal/override"
	"autoplay/internal/session"
	"autoplay/internal/state"
)

// Session is the part of the orchestrator the HTTP API reads and drives.
type Session interface {
	Phase() session.Phase
	Snapshot() *state.SessionState
	LastCapture() time.Time
	SaveNow(ctx context.Context) error
}

// HistoryLister lists past captures. Only the sqlite backend keeps them.
type HistoryLister interface {
	History(ctx context.Context, limit int) ([]database.HistoryEntry, error)
}

// Pinger reports whether the player is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures Handlers. Session is required.
type Options struct {
	Session       Session
	History       HistoryLister
	Player        Pinger
	Overrides     override.Config
	StateLocation string
}

type Handlers struct {
	session       Session
	history       HistoryLister
	player        Pinger
	overrides     override.Config
	stateLocation string
	started       time.Time
}

func New(opts Options) *Handlers {
	return &Handlers{
		session:       opts.Session,
		history:       opts.History,
		player:        opts.Player,
		overrides:     opts.Overrides,
		stateLocation: opts.StateLocation,
		started:       time.Now(),
	}
}
