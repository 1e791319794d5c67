package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	stdfs "io/fs"
	"regexp"
	"sort"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"mylibrary-rental/internal/config"
	"mylibrary-rental/internal/logger"
)

// Dialect names understood by the SQL builder
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// DialectFor maps a database/sql driver name to its SQL dialect.
func DialectFor(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres, config.DriverPGX:
		return DialectPostgres, nil
	case config.DriverSQLite:
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Open connects to the configured database, applies pool settings and
// verifies the connection. Pending migrations are applied when
// database.auto_migrate is set.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	d, err := sqlx.Open(cfg.Database.Driver, cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	d.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	d.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.PingContext(pingCtx); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Database.Driver == config.DriverSQLite {
		if err := sqlitePragmas(d); err != nil {
			_ = d.Close()
			return nil, err
		}
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(d); err != nil {
			_ = d.Close()
			return nil, err
		}
	}
	return d, nil
}

// OpenSQLite opens a sqlite3 database at path and applies all migrations.
func OpenSQLite(path string) (*sqlx.DB, error) {
	d, err := sqlx.Open(config.DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	if err := sqlitePragmas(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	if err := Migrate(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func sqlitePragmas(d *sqlx.DB) error {
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := d.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		return err
	}
	return nil
}

//go:embed migrations
var migrationsFS embed.FS

type migration struct {
	version  int
	name     string
	upFile   string // path inside embedded FS
	downFile string // path inside embedded FS
}

var migFileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.(up|down)\.sql$`)

func loadMigrations(dialect string) (map[int]migration, error) {
	entries := map[int]migration{}
	dir := "migrations/" + dialect
	list, err := stdfs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for dialect %s: %w", dialect, err)
	}
	for _, de := range list {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		m := migFileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		verStr, migName, kind := m[1], m[2], m[3]
		var ver int
		if _, err := fmt.Sscanf(verStr, "%04d", &ver); err != nil {
			continue
		}
		item := entries[ver]
		item.version = ver
		item.name = migName
		p := dir + "/" + name
		if kind == "up" {
			item.upFile = p
		} else {
			item.downFile = p
		}
		entries[ver] = item
	}
	return entries, nil
}

func ensureMigrationsTable(d *sqlx.DB) error {
	_, err := d.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        version INTEGER PRIMARY KEY,
        applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`)
	return err
}

// AppliedVersions lists the migration versions recorded as applied.
func AppliedVersions(d *sqlx.DB) ([]int, error) {
	if err := ensureMigrationsTable(d); err != nil {
		return nil, err
	}
	var versions []int
	if err := d.Select(&versions, `SELECT version FROM schema_migrations ORDER BY version`); err != nil {
		return nil, err
	}
	return versions, nil
}

// Migrate applies every migration for the connection's dialect that has
// not been recorded in schema_migrations. Each one runs in its own transaction.
func Migrate(d *sqlx.DB) error {
	dialect, err := DialectFor(d.DriverName())
	if err != nil {
		return err
	}
	migs, err := loadMigrations(dialect)
	if err != nil {
		return err
	}
	versionsApplied, err := AppliedVersions(d)
	if err != nil {
		return err
	}
	applied := make(map[int]bool, len(versionsApplied))
	for _, v := range versionsApplied {
		applied[v] = true
	}

	versions := make([]int, 0, len(migs))
	for v := range migs {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	for _, v := range versions {
		if applied[v] {
			continue
		}
		m := migs[v]
		if m.upFile == "" {
			return fmt.Errorf("missing up migration for version %04d", v)
		}
		sqlText, err := migrationsFS.ReadFile(m.upFile)
		if err != nil {
			return err
		}
		if err := runInTx(d, string(sqlText), `INSERT INTO schema_migrations(version) VALUES(?)`, v); err != nil {
			return fmt.Errorf("migration %04d failed: %w", v, err)
		}
		logger.Info("Applied migration", "version", v, "name", m.name, "dialect", dialect)
	}
	return nil
}

// RollbackLast rolls back the most recently applied migration, if its down script exists.
func RollbackLast(d *sqlx.DB) error {
	if d == nil {
		return errors.New("nil db")
	}
	dialect, err := DialectFor(d.DriverName())
	if err != nil {
		return err
	}
	if err := ensureMigrationsTable(d); err != nil {
		return err
	}
	var version int
	err = d.Get(&version, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // nothing to rollback
	} else if err != nil {
		return err
	}
	migs, err := loadMigrations(dialect)
	if err != nil {
		return err
	}
	m, ok := migs[version]
	if !ok || m.downFile == "" {
		return fmt.Errorf("no down migration found for version %d", version)
	}
	sqlText, err := migrationsFS.ReadFile(m.downFile)
	if err != nil {
		return err
	}
	if err := runInTx(d, string(sqlText), `DELETE FROM schema_migrations WHERE version = ?`, version); err != nil {
		return err
	}
	logger.Info("Rolled back migration", "version", version, "name", m.name, "dialect", dialect)
	return nil
}

func runInTx(d *sqlx.DB, script, bookkeeping string, version int) error {
	tx, err := d.Beginx()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(tx.Rebind(bookkeeping), version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
