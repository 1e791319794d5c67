package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mylibrary-rental/internal/domain"
)

var rentalRowColumns = []string{"id", "user_id", "book_id", "issue_time", "return_time", "return_duration", "late_fee"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })

	store, err := NewStore(sqlx.NewDb(mockDB, "postgres"), WithQueryTimeout(time.Second))
	require.NoError(t, err)
	return store, mock
}

func TestNewStore(t *testing.T) {
	_, err := NewStore(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	_, err = NewStore(sqlx.NewDb(mockDB, "mysql"))
	assert.Error(t, err)
}

func TestRentalRepository_FindByID(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	issued := time.Date(2020, 3, 12, 14, 35, 34, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(rentalRowColumns).
			AddRow(1, 2, "32322", issued, nil, 1, 0.0)

		mock.ExpectQuery(`SELECT (.+) FROM "rentals" WHERE \("id" = \$1\)`).
			WithArgs(1).
			WillReturnRows(rows)

		rental, err := store.FindByID(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, rental)
		assert.Equal(t, int32(1), rental.RentalID)
		assert.Equal(t, int32(2), rental.UserID)
		assert.Equal(t, "32322", rental.BookID)
		assert.True(t, issued.Equal(rental.IssueTime))
		assert.Nil(t, rental.ReturnTime)
		assert.Equal(t, int32(1), rental.ReturnDuration)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM "rentals" WHERE \("id" = \$1\)`).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows(rentalRowColumns))

		rental, err := store.FindByID(ctx, 99)
		assert.NoError(t, err)
		assert.Nil(t, rental)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM "rentals"`).
			WillReturnError(errors.New("connection reset"))

		rental, err := store.FindByID(ctx, 1)
		assert.Error(t, err)
		assert.Nil(t, rental)
		assert.Contains(t, err.Error(), "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalRepository_FindPage(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	issued := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	returned := issued.Add(72 * time.Hour)

	t.Run("Filtered By User", func(t *testing.T) {
		userID := int32(7)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "rentals" WHERE \("user_id" = \$1\)`).
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`SELECT (.+) FROM "rentals" WHERE \("user_id" = \$1\) ORDER BY "issue_time" DESC, "id" ASC LIMIT`).
			WillReturnRows(sqlmock.NewRows(rentalRowColumns).
				AddRow(3, 7, "A", issued, returned, 3, 1.5).
				AddRow(2, 7, "B", issued, nil, 2, 0.0))

		page, err := store.FindPage(ctx, domain.RentalFilter{UserID: &userID}, domain.NewPageRequest(0, 2, nil))
		require.NoError(t, err)
		assert.Len(t, page.Content, 2)
		assert.Equal(t, int64(3), page.TotalElements)
		assert.Equal(t, 2, page.TotalPages)
		assert.Equal(t, int32(3), page.Content[0].RentalID)
		require.NotNil(t, page.Content[0].ReturnTime)
		assert.True(t, returned.Equal(*page.Content[0].ReturnTime))
		assert.Nil(t, page.Content[1].ReturnTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Filtered By User And Book", func(t *testing.T) {
		userID := int32(7)
		bookID := "X"
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "rentals" WHERE .*"user_id" = \$1.*"book_id" = \$2`).
			WithArgs(7, "X").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT (.+) FROM "rentals" WHERE .*"user_id" = \$1.*"book_id" = \$2.* ORDER BY`).
			WillReturnRows(sqlmock.NewRows(rentalRowColumns).AddRow(4, 7, "X", issued, nil, 1, 0.0))

		page, err := store.FindPage(ctx, domain.RentalFilter{UserID: &userID, BookID: &bookID}, domain.NewPageRequest(0, 10, nil))
		require.NoError(t, err)
		assert.Len(t, page.Content, 1)
		assert.Equal(t, "X", page.Content[0].BookID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Caller Sort", func(t *testing.T) {
		sort := []domain.SortOrder{{Property: "lateFee", Direction: domain.SortAsc}, {Property: "rentalId", Direction: domain.SortDesc}}
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "rentals"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`ORDER BY "late_fee" ASC, "id" DESC LIMIT`).
			WillReturnRows(sqlmock.NewRows(rentalRowColumns).AddRow(1, 1, "A", issued, nil, 1, 0.0))

		page, err := store.FindPage(ctx, domain.RentalFilter{}, domain.NewPageRequest(0, 10, sort))
		require.NoError(t, err)
		assert.Len(t, page.Content, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Result Skips Select", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "rentals"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		page, err := store.FindPage(ctx, domain.RentalFilter{}, domain.NewPageRequest(0, 10, nil))
		require.NoError(t, err)
		assert.Empty(t, page.Content)
		assert.Equal(t, int64(0), page.TotalElements)
		assert.Equal(t, 0, page.TotalPages)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Sort Property", func(t *testing.T) {
		sort := []domain.SortOrder{{Property: "password", Direction: domain.SortAsc}}
		page, err := store.FindPage(ctx, domain.RentalFilter{}, domain.NewPageRequest(0, 10, sort))
		assert.Nil(t, page)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalRepository_Save(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	issued := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("Insert", func(t *testing.T) {
		rental := &domain.Rental{UserID: 2, BookID: "32322", IssueTime: issued, ReturnDuration: 1}

		mock.ExpectQuery(`INSERT INTO "rentals" (.+) RETURNING "id"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		saved, err := store.Save(ctx, rental)
		require.NoError(t, err)
		assert.Equal(t, int32(1), saved.RentalID)
		assert.Equal(t, int32(0), rental.RentalID, "input must not be mutated")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update", func(t *testing.T) {
		returned := issued.Add(24 * time.Hour)
		rental := &domain.Rental{RentalID: 4, UserID: 2, BookID: "32322", IssueTime: issued, ReturnTime: &returned, ReturnDuration: 1, LateFee: 2.5}

		mock.ExpectExec(`UPDATE "rentals" SET (.+) WHERE \("id" = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		saved, err := store.Save(ctx, rental)
		require.NoError(t, err)
		assert.Equal(t, int32(4), saved.RentalID)
		assert.Equal(t, 2.5, saved.LateFee)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update Missing Row", func(t *testing.T) {
		rental := &domain.Rental{RentalID: 404, UserID: 2, BookID: "32322", IssueTime: issued, ReturnDuration: 1}

		mock.ExpectExec(`UPDATE "rentals"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		saved, err := store.Save(ctx, rental)
		assert.Nil(t, saved)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Check Constraint From lib/pq", func(t *testing.T) {
		rental := &domain.Rental{UserID: 2, BookID: "32322", IssueTime: issued, ReturnDuration: 9}

		mock.ExpectQuery(`INSERT INTO "rentals"`).
			WillReturnError(&pq.Error{Code: "23514", Message: "violates check constraint"})

		saved, err := store.Save(ctx, rental)
		assert.Nil(t, saved)
		assert.ErrorIs(t, err, domain.ErrConstraintViolation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Check Constraint From pgx", func(t *testing.T) {
		rental := &domain.Rental{RentalID: 3, UserID: 2, BookID: "32322", IssueTime: issued, ReturnDuration: 1, LateFee: -1}

		mock.ExpectExec(`UPDATE "rentals"`).
			WillReturnError(&pgconn.PgError{Code: "23514", Message: "violates check constraint"})

		saved, err := store.Save(ctx, rental)
		assert.Nil(t, saved)
		assert.ErrorIs(t, err, domain.ErrConstraintViolation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other Errors Are Wrapped", func(t *testing.T) {
		rental := &domain.Rental{UserID: 2, BookID: "32322", IssueTime: issued, ReturnDuration: 1}

		mock.ExpectQuery(`INSERT INTO "rentals"`).
			WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

		_, err := store.Save(ctx, rental)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrConstraintViolation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nil Rental", func(t *testing.T) {
		_, err := store.Save(ctx, nil)
		assert.Error(t, err)
	})
}
