package state

import (
	"context"
	"database/sql"
	"time"

	"github.com/grebekit/grebe/internal/retry"
	"github.com/grebekit/grebe/patch"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const DefaultPatchesTable = "applied_patches"

const (
	DefaultConnectionAttempts    = 100
	DefaultConnectionTimeout     = 60 * time.Second
	DefaultConnectionAttemptStep = 2 * time.Second
)

type ConnectOptions struct {
	MaxAttempts int
	MaxTimeout  time.Duration
	RetryStep   time.Duration
}

func NewDefaultConnectOptions() *ConnectOptions {
	return &ConnectOptions{
		MaxAttempts: DefaultConnectionAttempts,
		MaxTimeout:  DefaultConnectionTimeout,
		RetryStep:   DefaultConnectionAttemptStep,
	}
}

// Dialect builds the driver specific queries for the applied patches table.
type Dialect interface {
	InitQuery() string
	InsertQuery() string
	DeleteQuery() string
	SelectMaxQuery() string
	DropQuery() string
}

// SQLStore keeps one row per applied patch version: insert on apply,
// delete on rollback, MAX(version) as the cursor. The table is created
// lazily on first use, retrying the connection with incremental backoff.
type SQLStore struct {
	db          *sqlx.DB
	dialect     Dialect
	connectOpts *ConnectOptions
	initialized bool
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sqlx.DB, dialect Dialect, connectOpts *ConnectOptions) *SQLStore {
	if connectOpts == nil {
		connectOpts = NewDefaultConnectOptions()
	}

	return &SQLStore{
		db:          db,
		dialect:     dialect,
		connectOpts: connectOpts,
	}
}

func NewMySQLStore(db *sql.DB, table string, connectOpts *ConnectOptions) *SQLStore {
	if table == "" {
		table = DefaultPatchesTable
	}

	return NewSQLStore(sqlx.NewDb(db, "mysql"), NewMySQLDialect(table), connectOpts)
}

func NewSqliteStore(db *sql.DB, table string, connectOpts *ConnectOptions) *SQLStore {
	if table == "" {
		table = DefaultPatchesTable
	}

	return NewSQLStore(sqlx.NewDb(db, "sqlite3"), NewSqliteDialect(table), connectOpts)
}

func (s *SQLStore) init(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, s.connectOpts.MaxTimeout)
	defer cancel()

	if err := retry.Incremental(connectCtx, s.connectOpts.RetryStep, s.connectOpts.MaxAttempts, func(attempt int) error {
		if err := s.db.PingContext(connectCtx); err != nil {
			return retry.Retryable(errors.Wrap(err, "could not establish DB connection"), attempt)
		}

		return nil
	}); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.InitQuery()); err != nil {
		return errors.Wrap(err, "could not create applied patches table")
	}

	s.initialized = true

	return nil
}

func (s *SQLStore) CurrentVersion(ctx context.Context) (patch.Version, error) {
	if err := s.init(ctx); err != nil {
		return 0, err
	}

	var v sql.NullInt64
	if err := s.db.QueryRowContext(ctx, s.dialect.SelectMaxQuery()).Scan(&v); err != nil {
		return 0, errors.Wrap(err, "could not read the current patch version")
	}

	if !v.Valid {
		return 0, nil
	}

	return patch.Version(v.Int64), nil
}

func (s *SQLStore) SaveApplied(ctx context.Context, v patch.Version, name string) error {
	if err := s.init(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.InsertQuery(), v, name); err != nil {
		return errors.Wrapf(err, "could not record applied patch version [%d] name [%s]", v, name)
	}

	return nil
}

func (s *SQLStore) RemoveApplied(ctx context.Context, v patch.Version) error {
	if err := s.init(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.DeleteQuery(), v); err != nil {
		return errors.Wrapf(err, "could not remove applied patch version [%d]", v)
	}

	return nil
}

// Drop removes the applied patches table entirely.
func (s *SQLStore) Drop(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.DropQuery()); err != nil {
		return errors.Wrap(err, "could not drop applied patches table")
	}

	s.initialized = false

	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
