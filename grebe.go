package grebe

import (
	"context"
	"sync"

	"github.com/grebekit/grebe/internal/logger"
	"github.com/grebekit/grebe/internal/state"
	"github.com/grebekit/grebe/patch"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// State is the orchestrator's lifecycle phase. Idle until the first run,
// Running for the duration of one pass, then Succeeded or RolledBack.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateRolledBack:
		return "rolled back"
	default:
		return "unknown"
	}
}

type CloserFunc func() error

// Summary is the outcome of a successful run: the version the cursor
// landed on and the versions applied during the run, in apply order.
type Summary struct {
	FinalVersion patch.Version
	Applied      []patch.Version
}

// Orchestrator owns the patch catalog and the version cursor. It applies
// registered patches in ascending version order, gating each on same-run
// dependency satisfaction, and rolls the run back in reverse order when
// an apply fails. One orchestrator drives one target; multiple independent
// orchestrators may coexist in a process.
type Orchestrator struct {
	mu       sync.Mutex
	lg       logger.Logger
	registry *registry
	store    state.Store
	initial  patch.Version
	current  patch.Version
	phase    State
	hydrated bool
}

// New creates an orchestrator using option callbacks to customize it.
// The returned closer releases the state store.
func New(opts ...OptionFunc) (*Orchestrator, CloserFunc, error) {
	o := new(Orchestrator)
	o.lg = &logger.NullLogger{}
	o.registry = newRegistry()

	for _, oFunc := range opts {
		if err := oFunc(o); err != nil {
			return nil, nil, err
		}
	}

	if o.store == nil {
		o.store = state.NewMemory()
	}

	o.current = o.initial

	return o, o.close, nil
}

// Register adds one patch to the catalog. The version must be strictly
// greater than any version registered before it, the apply operation must
// be present and every declared dependency must be satisfiable: either
// registered already or still registrable under a higher version.
// Otherwise the patch is rejected with a *RegistrationError and the
// catalog is left unchanged.
func (o *Orchestrator) Register(version patch.Version, apply patch.Operation, opts ...patch.Option) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.phase == StateRunning {
		return ErrAlreadyRunning
	}

	if err := o.registry.add(patch.New(version, apply, opts...)); err != nil {
		o.lg.Error(err)
		return err
	}

	return nil
}

// CurrentVersion returns the version cursor. Valid in any state.
func (o *Orchestrator) CurrentVersion() patch.Version {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// State returns the lifecycle phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Run performs one forward pass over the registered patches. Candidates
// are the versions above the current cursor, visited in ascending order;
// a candidate whose dependencies have not all been applied earlier in
// this same run is skipped and not retried within the run. On the first
// apply failure every patch applied during the run is rolled back in
// reverse order and the cursor is reset to the run's baseline; the apply
// failure is returned as a *RunError with the rollback attempts attached.
// Run rejects re-entrant invocation with ErrAlreadyRunning.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	o.mu.Lock()
	if o.phase == StateRunning {
		o.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	o.phase = StateRunning
	o.mu.Unlock()

	if err := o.hydrate(ctx); err != nil {
		o.setPhase(StateIdle)
		o.lg.Error(err)
		return nil, err
	}

	summary, err := o.pass(ctx)
	if err != nil {
		o.setPhase(StateRolledBack)
		return nil, err
	}

	o.setPhase(StateSucceeded)

	return summary, nil
}

// hydrate reconciles the cursor with the persisted state once, before
// the first pass.
func (o *Orchestrator) hydrate(ctx context.Context) error {
	if o.hydrated {
		return nil
	}

	v, err := o.store.CurrentVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "could not read persisted patch state")
	}

	o.mu.Lock()
	if v > o.current {
		o.current = v
	}
	o.hydrated = true
	o.mu.Unlock()

	return nil
}

func (o *Orchestrator) pass(ctx context.Context) (*Summary, error) {
	baseline := o.CurrentVersion()

	var applied patch.Patches
	var appliedVersions []patch.Version

	for _, v := range o.registry.sortedVersions() {
		if v <= o.CurrentVersion() {
			continue
		}

		// cooperative cancellation point; never interrupts a patch mid-flight
		if err := ctx.Err(); err != nil {
			return nil, o.rollback(ctx, baseline, applied, 0, err)
		}

		p := o.registry.get(v)

		if deps := o.registry.dependencies(v); !dependenciesSatisfied(deps, appliedVersions) {
			o.lg.Debugf("skipping patch %d [%s]: unmet dependencies %v", v, p.Name, deps)
			continue
		}

		o.lg.Patchf("%d [%s]", v, p.Name)

		if err := p.Apply.Execute(ctx); err != nil {
			return nil, o.rollback(ctx, baseline, applied, v, err)
		}

		applied = append(applied, p)
		appliedVersions = append(appliedVersions, v)
		o.advance(v)

		if err := o.store.SaveApplied(ctx, v, p.Name); err != nil {
			return nil, o.rollback(ctx, baseline, applied, v, err)
		}

		o.lg.Successf("applied patch %d [%s]", v, p.Name)
	}

	return &Summary{FinalVersion: o.CurrentVersion(), Applied: appliedVersions}, nil
}

// rollback reverts every patch applied during the run, most recently
// applied first. Each patch gets exactly one rollback attempt; a failed
// attempt is recorded and the sequence continues. The cursor is reset to
// the baseline and the original cause is returned wrapped in *RunError.
func (o *Orchestrator) rollback(
	ctx context.Context,
	baseline patch.Version,
	applied patch.Patches,
	failed patch.Version,
	cause error,
) error {
	o.lg.Error(errors.Wrapf(cause, "rolling back %d applied patches", len(applied)))

	// cleanup still has to run when the run's context is already done
	rbCtx := ctx
	if ctx.Err() != nil {
		rbCtx = context.Background()
	}

	attempts := make([]RollbackAttempt, 0, len(applied))

	for i := len(applied) - 1; i >= 0; i-- {
		p := applied[i]

		var rbErr error
		if p.Rollback != nil {
			rbErr = p.Rollback.Execute(rbCtx)
		}

		if storeErr := o.store.RemoveApplied(rbCtx, p.Version); storeErr != nil {
			rbErr = multierr.Append(rbErr, storeErr)
		}

		if rbErr != nil {
			o.lg.Error(errors.Wrapf(rbErr, "rollback of patch %d failed", p.Version))
		}

		attempts = append(attempts, RollbackAttempt{Version: p.Version, Err: rbErr})
	}

	o.mu.Lock()
	o.current = baseline
	o.mu.Unlock()

	return &RunError{Version: failed, Err: cause, Rollbacks: attempts}
}

func (o *Orchestrator) advance(v patch.Version) {
	o.mu.Lock()
	o.current = v
	o.mu.Unlock()
}

func (o *Orchestrator) setPhase(s State) {
	o.mu.Lock()
	o.phase = s
	o.mu.Unlock()
}

func (o *Orchestrator) close() error {
	if err := o.store.Close(); err != nil {
		o.lg.Error(err)
		return err
	}

	return nil
}

func dependenciesSatisfied(deps []patch.Version, appliedVersions []patch.Version) bool {
	for _, d := range deps {
		if !patch.InVersions(d, appliedVersions) {
			return false
		}
	}

	return true
}
