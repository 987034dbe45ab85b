package cli

import (
	"context"

	"github.com/grebekit/grebe"
	"github.com/grebekit/grebe/patch"
	"github.com/pkg/errors"
)

var (
	ErrNoPatches             = errors.New("patch plan contains no patches")
	ErrUnsupportedStateDriver = errors.New("state driver is not supported")
)

type (
	CloserFunc func() error

	StateConfig struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
		Table  string `yaml:"table"`
	}

	PatchConfig struct {
		Version   uint64   `yaml:"version"`
		Name      string   `yaml:"name"`
		Apply     string   `yaml:"apply"`
		Rollback  string   `yaml:"rollback"`
		DependsOn []uint64 `yaml:"depends_on"`
	}

	Config struct {
		Version        string        `yaml:"version"`
		InitialVersion uint64        `yaml:"initial_version"`
		State          StateConfig   `yaml:"state"`
		Patches        []PatchConfig `yaml:"patches"`
	}

	App struct {
		orchestrator *grebe.Orchestrator
	}
)

// NewFromYaml builds an App from a YAML patch plan file. Extra options
// are passed through to the orchestrator, after the ones derived from
// the plan, so the caller can attach a logger.
func NewFromYaml(path string, opts ...grebe.OptionFunc) (*App, CloserFunc, error) {
	cfg, err := createConfigFromYaml(path)
	if err != nil {
		return nil, nil, err
	}

	return New(cfg, opts...)
}

func New(cfg Config, opts ...grebe.OptionFunc) (*App, CloserFunc, error) {
	if len(cfg.Patches) == 0 {
		return nil, nil, ErrNoPatches
	}

	options, err := createOrchestratorOptions(cfg)
	if err != nil {
		return nil, nil, err
	}

	options = append(options, opts...)

	o, closer, err := grebe.New(options...)
	if err != nil {
		return nil, nil, err
	}

	for _, pc := range cfg.Patches {
		if err := registerPatch(o, pc); err != nil {
			if closeErr := closer(); closeErr != nil {
				return nil, nil, errors.Wrap(err, closeErr.Error())
			}

			return nil, nil, err
		}
	}

	return &App{orchestrator: o}, CloserFunc(closer), nil
}

func registerPatch(o *grebe.Orchestrator, pc PatchConfig) error {
	popts := []patch.Option{patch.WithName(pc.Name)}

	if pc.Rollback != "" {
		popts = append(popts, patch.WithRollback(Command(pc.Rollback)))
	}

	if len(pc.DependsOn) > 0 {
		deps := make([]patch.Version, len(pc.DependsOn))
		for i := range pc.DependsOn {
			deps[i] = patch.Version(pc.DependsOn[i])
		}
		popts = append(popts, patch.WithDependencies(deps...))
	}

	return o.Register(patch.Version(pc.Version), Command(pc.Apply), popts...)
}

// Run performs one orchestration pass over the plan.
func (app *App) Run(ctx context.Context) (*grebe.Summary, error) {
	return app.orchestrator.Run(ctx)
}

// Version reports the current patch version of the target.
func (app *App) Version() patch.Version {
	return app.orchestrator.CurrentVersion()
}
