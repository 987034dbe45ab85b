package patch

import (
	"context"
	"sort"
)

// Version is the unique positive integer identifying one patch.
// Versions are registered in strictly increasing order.
type Version uint64

// Operation is one unit of work with external side effects. The engine
// never inspects an operation beyond its success or failure.
type Operation interface {
	Execute(ctx context.Context) error
}

// OperationFunc adapts a plain function to the Operation interface.
type OperationFunc func(ctx context.Context) error

func (f OperationFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

type (
	Patch struct {
		Version      Version
		Name         string
		Apply        Operation
		Rollback     Operation
		Dependencies []Version
	}

	Option func(*Patch)
)

// WithName attaches a human readable label used in logs and in the
// persisted state journal.
func WithName(name string) Option {
	return func(p *Patch) {
		p.Name = name
	}
}

// WithRollback attaches the inverse operation. A patch without a rollback
// still takes part in the reverse pass, it just has nothing to invoke.
func WithRollback(op Operation) Option {
	return func(p *Patch) {
		p.Rollback = op
	}
}

// WithDependencies declares the versions that must have been applied
// earlier in the same run before this patch becomes eligible.
func WithDependencies(versions ...Version) Option {
	return func(p *Patch) {
		p.Dependencies = append(p.Dependencies, versions...)
	}
}

func New(version Version, apply Operation, opts ...Option) *Patch {
	p := &Patch{
		Version: version,
		Apply:   apply,
	}

	for _, oFunc := range opts {
		oFunc(p)
	}

	return p
}

type Patches []*Patch

func (p Patches) Len() int {
	return len(p)
}

func (p Patches) Less(i, j int) bool {
	return p[i].Version < p[j].Version
}

func (p Patches) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

func (p Patches) Versions() []Version {
	result := make([]Version, len(p))
	for i := range p {
		result[i] = p[i].Version
	}
	return result
}

// SortAscending orders a set of versions in place.
func SortAscending(versions []Version) {
	sort.Slice(versions, func(i, j int) bool {
		return versions[i] < versions[j]
	})
}

func InVersions(version Version, versions []Version) bool {
	for _, v := range versions {
		if v == version {
			return true
		}
	}

	return false
}
