package testutil

import (
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"mylibrary-rental/internal/db"
	"mylibrary-rental/internal/domain"
)

var dbCounter atomic.Int64

// OpenInMemoryDB opens a private in-memory SQLite database and applies migrations.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T) *sqlx.DB {
	t.Helper()
	// Shared cache lets every pooled connection see the same database;
	// the counter keeps tests from seeing each other's rows.
	name := "file:rentals_" + time.Now().Format("150405") + "_" + strconv.FormatInt(dbCounter.Add(1), 10) + "?mode=memory&cache=shared"
	d, err := db.OpenSQLite(name)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// Date returns a UTC timestamp on the given day at noon.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// NewRental returns a valid, unsaved rental.
func NewRental(userID int32, bookID string, issued time.Time) *domain.Rental {
	return &domain.Rental{
		UserID:         userID,
		BookID:         bookID,
		IssueTime:      issued,
		ReturnDuration: 3,
	}
}
