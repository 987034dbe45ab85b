package cli

import (
	"database/sql"
	"io/ioutil"

	_ "github.com/go-sql-driver/mysql"
	"github.com/grebekit/grebe"
	"github.com/grebekit/grebe/patch"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type (
	storeFactory    func(cfg StateConfig) (grebe.OptionFunc, error)
	storeFactoryMap map[string]storeFactory
)

var storeFactories = storeFactoryMap{
	"":       createMemoryState,
	"memory": createMemoryState,
	"sqlite": createSqliteState,
	"mysql":  createMySQLState,
}

func createConfigFromYaml(path string) (Config, error) {
	var cfg Config

	b, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read grebe patch plan file")
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrap(err, "could not parse grebe patch plan file")
	}

	return cfg, nil
}

func createOrchestratorOptions(cfg Config) ([]grebe.OptionFunc, error) {
	factory, ok := storeFactories[cfg.State.Driver]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedStateDriver, "[%s]", cfg.State.Driver)
	}

	stateOption, err := factory(cfg.State)
	if err != nil {
		return nil, err
	}

	options := []grebe.OptionFunc{
		grebe.WithInitialVersion(patch.Version(cfg.InitialVersion)),
	}

	if stateOption != nil {
		options = append(options, stateOption)
	}

	return options, nil
}

func createMemoryState(_ StateConfig) (grebe.OptionFunc, error) {
	return nil, nil
}

func createSqliteState(cfg StateConfig) (grebe.OptionFunc, error) {
	db, err := sql.Open("sqlite3", cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "could not open sqlite state database")
	}

	return grebe.UseSqliteState(db, grebe.WithStateTable(cfg.Table)), nil
}

func createMySQLState(cfg StateConfig) (grebe.OptionFunc, error) {
	db, err := sql.Open("mysql", cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "could not open mysql state database")
	}

	return grebe.UseMySQLState(db, grebe.WithStateTable(cfg.Table)), nil
}
