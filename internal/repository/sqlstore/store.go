// Package sqlstore implements the repository interfaces on top of any
// database/sql driver supported by internal/db (postgres, pgx, sqlite3).
// Queries are built with goqu for the connection's dialect and executed
// through sqlx.
package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/jmoiron/sqlx"

	"mylibrary-rental/internal/db"
	"mylibrary-rental/internal/repository"
)

const defaultQueryTimeout = 5 * time.Second

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

type Store struct {
	db *sqlx.DB
	repository.RentalRepository
}

type storeOptions struct {
	queryTimeout time.Duration
}

// Option configures a Store.
type Option func(*storeOptions)

// WithQueryTimeout bounds every statement issued by the store.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *storeOptions) {
		if d > 0 {
			o.queryTimeout = d
		}
	}
}

func NewStore(conn *sqlx.DB, opts ...Option) (*Store, error) {
	if conn == nil {
		return nil, ErrNilDatabaseConnection
	}
	o := storeOptions{queryTimeout: defaultQueryTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	dialect, err := db.DialectFor(conn.DriverName())
	if err != nil {
		return nil, err
	}

	return &Store{
		db:               conn,
		RentalRepository: newRentalRepository(conn, goqu.Dialect(dialect), dialect, o.queryTimeout),
	}, nil
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
