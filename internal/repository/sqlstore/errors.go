package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"mylibrary-rental/internal/domain"
)

// SQLSTATE class 23 is "integrity constraint violation".
const integrityConstraintClass = "23"

// translateError turns driver-level integrity failures into
// domain.ConstraintViolationError and wraps everything else.
func translateError(op string, err error) error {
	if isConstraintViolation(err) {
		return domain.NewConstraintViolationError(op+" violates a table constraint", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code.Class()) == integrityConstraintClass
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, integrityConstraintClass)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
