package state

import (
	"context"

	"github.com/grebekit/grebe/patch"
)

// Store persists the record of applied patch versions across process
// restarts. The orchestrator owns the in-memory cursor; a store is only
// consulted once at the start of the first run and written through on
// every apply and rollback.
type Store interface {
	// CurrentVersion reports the highest applied version on record,
	// or zero when nothing has been applied.
	CurrentVersion(ctx context.Context) (patch.Version, error)

	// SaveApplied records a successfully applied version.
	SaveApplied(ctx context.Context, v patch.Version, name string) error

	// RemoveApplied erases the record of a version during rollback.
	RemoveApplied(ctx context.Context, v patch.Version) error

	Close() error
}
