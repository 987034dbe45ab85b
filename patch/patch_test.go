package patch

import (
	"context"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_New(t *testing.T) {
	t.Parallel()

	apply := OperationFunc(func(_ context.Context) error { return nil })
	rollback := OperationFunc(func(_ context.Context) error { return nil })

	p := New(7, apply,
		WithName("create foo table"),
		WithRollback(rollback),
		WithDependencies(3, 5),
	)

	assert.Equal(t, Version(7), p.Version)
	assert.Equal(t, "create foo table", p.Name)
	assert.NotNil(t, p.Apply)
	assert.NotNil(t, p.Rollback)
	assert.Equal(t, []Version{3, 5}, p.Dependencies)
}

func Test_OperationFunc(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	var invoked bool
	op := OperationFunc(func(_ context.Context) error {
		invoked = true
		return cause
	})

	err := op.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, invoked)
}

func Test_PatchesSortByVersion(t *testing.T) {
	t.Parallel()

	apply := OperationFunc(func(_ context.Context) error { return nil })

	patches := Patches{New(9, apply), New(1, apply), New(5, apply)}
	sort.Sort(patches)

	assert.Equal(t, []Version{1, 5, 9}, patches.Versions())
}

func Test_SortAscending(t *testing.T) {
	t.Parallel()

	versions := []Version{4, 1, 3, 2}
	SortAscending(versions)

	assert.Equal(t, []Version{1, 2, 3, 4}, versions)
}

func Test_InVersions(t *testing.T) {
	t.Parallel()

	versions := []Version{1, 3, 5}

	assert.True(t, InVersions(3, versions))
	assert.False(t, InVersions(2, versions))
	assert.False(t, InVersions(1, nil))
}
