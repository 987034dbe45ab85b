package state

import (
	"context"

	"github.com/grebekit/grebe/patch"
)

// Memory is the default store: nothing survives the process. It doubles
// as a recorder in tests, exposing the versions written through to it.
type Memory struct {
	applied []patch.Version
	names   map[patch.Version]string
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		names: make(map[patch.Version]string),
	}
}

func (m *Memory) CurrentVersion(_ context.Context) (patch.Version, error) {
	var max patch.Version
	for _, v := range m.applied {
		if v > max {
			max = v
		}
	}

	return max, nil
}

func (m *Memory) SaveApplied(_ context.Context, v patch.Version, name string) error {
	m.applied = append(m.applied, v)
	m.names[v] = name
	return nil
}

func (m *Memory) RemoveApplied(_ context.Context, v patch.Version) error {
	for i := range m.applied {
		if m.applied[i] == v {
			m.applied = append(m.applied[:i], m.applied[i+1:]...)
			delete(m.names, v)
			break
		}
	}

	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Applied returns the versions currently on record in write order.
func (m *Memory) Applied() []patch.Version {
	result := make([]patch.Version, len(m.applied))
	copy(result, m.applied)
	return result
}

// Name returns the label recorded for an applied version.
func (m *Memory) Name(v patch.Version) string {
	return m.names[v]
}
