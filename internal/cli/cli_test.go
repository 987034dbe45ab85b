package cli

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grebekit/grebe"
	"github.com/grebekit/grebe/patch"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlan = `
version: "1"
initial_version: 0
state:
  driver: memory
patches:
  - version: 1
    name: create marker
    apply: "touch %[1]s/marker"
    rollback: "rm -f %[1]s/marker"
  - version: 2
    name: stamp marker
    apply: "echo stamped >> %[1]s/marker"
    depends_on: [1]
`

func planWithDir(template, dir string) string {
	return fmt.Sprintf(template, dir)
}

func writePlan(t *testing.T, dir, contents string) string {
	t.Helper()

	path := filepath.Join(dir, "grebe.yaml")
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func Test_createConfigFromYaml(t *testing.T) {
	dir, err := ioutil.TempDir("", "grebe-cli")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	t.Run("parses a valid plan", func(t *testing.T) {
		path := writePlan(t, dir, `
version: "1"
initial_version: 3
state:
  driver: sqlite
  url: ./state.db
  table: applied_patches
patches:
  - version: 4
    name: create foo
    apply: "echo foo"
    rollback: "echo undo foo"
    depends_on: [1, 2]
`)

		cfg, err := createConfigFromYaml(path)
		require.NoError(t, err)

		assert.Equal(t, "1", cfg.Version)
		assert.Equal(t, uint64(3), cfg.InitialVersion)
		assert.Equal(t, "sqlite", cfg.State.Driver)
		assert.Equal(t, "./state.db", cfg.State.URL)
		assert.Equal(t, "applied_patches", cfg.State.Table)

		require.Len(t, cfg.Patches, 1)
		assert.Equal(t, uint64(4), cfg.Patches[0].Version)
		assert.Equal(t, "create foo", cfg.Patches[0].Name)
		assert.Equal(t, "echo foo", cfg.Patches[0].Apply)
		assert.Equal(t, "echo undo foo", cfg.Patches[0].Rollback)
		assert.Equal(t, []uint64{1, 2}, cfg.Patches[0].DependsOn)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := createConfigFromYaml(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writePlan(t, dir, "patches: {nope")
		_, err := createConfigFromYaml(path)
		require.Error(t, err)
	})
}

func Test_New(t *testing.T) {
	t.Run("rejects an empty plan", func(t *testing.T) {
		_, _, err := New(Config{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoPatches))
	})

	t.Run("rejects an unsupported state driver", func(t *testing.T) {
		cfg := Config{
			State:   StateConfig{Driver: "etcd"},
			Patches: []PatchConfig{{Version: 1, Apply: "true"}},
		}

		_, _, err := New(cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnsupportedStateDriver))
	})

	t.Run("rejects a plan with non-monotonic versions", func(t *testing.T) {
		cfg := Config{
			Patches: []PatchConfig{
				{Version: 2, Apply: "true"},
				{Version: 1, Apply: "true"},
			},
		}

		_, _, err := New(cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, grebe.ErrInvalidVersion))
	})
}

func Test_AppRunsAShellCommandPlan(t *testing.T) {
	dir, err := ioutil.TempDir("", "grebe-cli-run")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	plan := writePlan(t, dir, planWithDir(validPlan, dir))

	app, closer, err := NewFromYaml(plan)
	require.NoError(t, err)
	defer closer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	summary, err := app.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, patch.Version(2), summary.FinalVersion)
	assert.Equal(t, []patch.Version{1, 2}, summary.Applied)
	assert.Equal(t, patch.Version(2), app.Version())

	b, err := ioutil.ReadFile(filepath.Join(dir, "marker"))
	require.NoError(t, err)
	assert.Equal(t, "stamped\n", string(b))
}

func Test_AppRollsBackAFailingPlan(t *testing.T) {
	dir, err := ioutil.TempDir("", "grebe-cli-rollback")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	plan := writePlan(t, dir, planWithDir(`
version: "1"
patches:
  - version: 1
    name: create marker
    apply: "touch %[1]s/marker"
    rollback: "rm -f %[1]s/marker"
  - version: 2
    name: always fails
    apply: "false"
`, dir))

	app, closer, err := NewFromYaml(plan)
	require.NoError(t, err)
	defer closer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = app.Run(ctx)
	require.Error(t, err)

	var runErr *grebe.RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, patch.Version(2), runErr.Version)

	assert.Equal(t, patch.Version(0), app.Version())

	_, statErr := os.Stat(filepath.Join(dir, "marker"))
	assert.True(t, os.IsNotExist(statErr))
}

func Test_CommandOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		assert.NoError(t, Command("true").Execute(ctx))
	})

	t.Run("failure carries the command output", func(t *testing.T) {
		err := Command("echo it broke >&2; exit 1").Execute(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "it broke")
	})
}
