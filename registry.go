package grebe

import (
	"github.com/grebekit/grebe/patch"
)

// registry is the catalog of known patches keyed by version. Registration
// order is required to be monotonic, so the version slice stays ascending
// by construction and a run never needs to re-sort it.
type registry struct {
	patches  map[patch.Version]*patch.Patch
	versions []patch.Version
	deps     map[patch.Version][]patch.Version
	ceiling  patch.Version
}

func newRegistry() *registry {
	return &registry{
		patches: make(map[patch.Version]*patch.Patch),
		deps:    make(map[patch.Version][]patch.Version),
	}
}

func (r *registry) add(p *patch.Patch) error {
	if p.Version == 0 || p.Version <= r.ceiling {
		return &RegistrationError{Kind: ErrInvalidVersion, Version: p.Version}
	}

	if p.Apply == nil {
		return &RegistrationError{Kind: ErrInvalidApply, Version: p.Version}
	}

	// a dependency must either be registered already or still be
	// registrable later (above the ceiling); anything else can never
	// be satisfied and is rejected outright
	for _, d := range p.Dependencies {
		if _, ok := r.patches[d]; !ok && d <= r.ceiling {
			return &RegistrationError{Kind: ErrUnknownDependency, Version: p.Version, Dependency: d}
		}
	}

	r.patches[p.Version] = p
	r.versions = append(r.versions, p.Version)
	r.deps[p.Version] = append([]patch.Version(nil), p.Dependencies...)
	r.ceiling = p.Version

	return nil
}

func (r *registry) get(v patch.Version) *patch.Patch {
	return r.patches[v]
}

func (r *registry) dependencies(v patch.Version) []patch.Version {
	return r.deps[v]
}

// sortedVersions returns the ascending sequence of registered versions.
// The result is a copy, safe for the caller to keep across registrations.
func (r *registry) sortedVersions() []patch.Version {
	result := make([]patch.Version, len(r.versions))
	copy(result, r.versions)
	patch.SortAscending(result)
	return result
}
