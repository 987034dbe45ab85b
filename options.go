package grebe

import (
	"database/sql"
	"time"

	"github.com/grebekit/grebe/internal/state"
	"github.com/grebekit/grebe/patch"
)

type (
	OptionFunc      func(*Orchestrator) error
	StateOptionFunc func(*stateOptions)
)

type stateOptions struct {
	table       string
	connectOpts *state.ConnectOptions
}

func newDefaultStateOptions() *stateOptions {
	return &stateOptions{
		table:       state.DefaultPatchesTable,
		connectOpts: state.NewDefaultConnectOptions(),
	}
}

// WithInitialVersion sets the version the cursor starts from. A persisted
// state store with a higher version on record takes precedence.
func WithInitialVersion(v patch.Version) OptionFunc {
	return func(o *Orchestrator) error {
		o.initial = v
		return nil
	}
}

// UseMySQLState persists applied patch versions in a MySQL table.
func UseMySQLState(db *sql.DB, options ...StateOptionFunc) OptionFunc {
	return func(o *Orchestrator) error {
		so := newDefaultStateOptions()

		for _, oFunc := range options {
			oFunc(so)
		}

		o.store = state.NewMySQLStore(db, so.table, so.connectOpts)

		return nil
	}
}

// UseSqliteState persists applied patch versions in an SQLite table.
func UseSqliteState(db *sql.DB, options ...StateOptionFunc) OptionFunc {
	return func(o *Orchestrator) error {
		so := newDefaultStateOptions()

		for _, oFunc := range options {
			oFunc(so)
		}

		o.store = state.NewSqliteStore(db, so.table, so.connectOpts)

		return nil
	}
}

func WithStateTable(table string) StateOptionFunc {
	return func(so *stateOptions) {
		so.table = table
	}
}

func WithMaxConnectionAttempts(attempts int) StateOptionFunc {
	return func(so *stateOptions) {
		so.connectOpts.MaxAttempts = attempts
	}
}

func WithConnectionTimeout(timeout time.Duration) StateOptionFunc {
	return func(so *stateOptions) {
		so.connectOpts.MaxTimeout = timeout
	}
}

func WithConnectionRetryStep(step time.Duration) StateOptionFunc {
	return func(so *stateOptions) {
		so.connectOpts.RetryStep = step
	}
}

// useStore wires an arbitrary state store, used by tests.
func useStore(s state.Store) OptionFunc {
	return func(o *Orchestrator) error {
		o.store = s
		return nil
	}
}
