package grebe

import (
	"fmt"

	"github.com/grebekit/grebe/patch"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	// ErrInvalidVersion marks a registration whose version is not strictly
	// greater than the highest version ever accepted by the registry.
	ErrInvalidVersion = errors.New("patch version must be greater than any previously registered version")

	// ErrInvalidApply marks a registration without an apply operation.
	ErrInvalidApply = errors.New("patch apply operation is missing")

	// ErrUnknownDependency marks a registration that depends on a version
	// absent from the registry.
	ErrUnknownDependency = errors.New("patch depends on an unregistered version")

	// ErrAlreadyRunning is returned when Run is invoked re-entrantly.
	ErrAlreadyRunning = errors.New("orchestrator is already running")
)

// RegistrationError rejects one patch at registration time. The registry
// is left unchanged. Kind is one of ErrInvalidVersion, ErrInvalidApply or
// ErrUnknownDependency so callers can branch with errors.Is.
type RegistrationError struct {
	Kind       error
	Version    patch.Version
	Dependency patch.Version
}

func (e *RegistrationError) Error() string {
	if e.Kind == ErrUnknownDependency {
		return fmt.Sprintf("cannot register patch %d: %s [%d]", e.Version, e.Kind, e.Dependency)
	}

	return fmt.Sprintf("cannot register patch %d: %s", e.Version, e.Kind)
}

func (e *RegistrationError) Unwrap() error {
	return e.Kind
}

// RollbackAttempt records the outcome of one rollback invocation during
// the reverse pass. A nil Err means the patch rolled back cleanly or had
// no rollback operation to invoke.
type RollbackAttempt struct {
	Version patch.Version
	Err     error
}

// RunError is the outcome of a run that failed and was rolled back. It
// carries the failing patch version, the original apply error as the
// cause, and one RollbackAttempt per patch applied in the run, ordered
// most recently applied first. Version is zero when the run was canceled
// between patches rather than failed by a patch.
type RunError struct {
	Version   patch.Version
	Err       error
	Rollbacks []RollbackAttempt
}

func (e *RunError) Error() string {
	if e.Version == 0 {
		return fmt.Sprintf("run aborted before completion: %s", e.Err)
	}

	return fmt.Sprintf("patch %d failed to apply: %s", e.Version, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// RollbackErrs combines the rollback failures, if any, into a single
// diagnostic error. A nil result means every rollback attempt succeeded.
func (e *RunError) RollbackErrs() error {
	var combined error
	for i := range e.Rollbacks {
		if e.Rollbacks[i].Err != nil {
			combined = multierr.Append(combined, errors.Wrapf(e.Rollbacks[i].Err, "rollback of patch %d failed", e.Rollbacks[i].Version))
		}
	}

	return combined
}
