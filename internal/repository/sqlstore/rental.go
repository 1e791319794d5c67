package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"mylibrary-rental/internal/db"
	"mylibrary-rental/internal/domain"
	"mylibrary-rental/internal/logger"
)

const (
	tableRentals      = "rentals"
	colID             = "id"
	colUserID         = "user_id"
	colBookID         = "book_id"
	colIssueTime      = "issue_time"
	colReturnTime     = "return_time"
	colReturnDuration = "return_duration"
	colLateFee        = "late_fee"
)

var rentalColumns = []any{colID, colUserID, colBookID, colIssueTime, colReturnTime, colReturnDuration, colLateFee}

// sortColumns maps API property names to rentals columns.
var sortColumns = map[string]string{
	"rentalId":       colID,
	"userId":         colUserID,
	"bookId":         colBookID,
	"issueTime":      colIssueTime,
	"returnTime":     colReturnTime,
	"returnDuration": colReturnDuration,
	"lateFee":        colLateFee,
}

type rentalRow struct {
	ID             int32        `db:"id"`
	UserID         int32        `db:"user_id"`
	BookID         string       `db:"book_id"`
	IssueTime      time.Time    `db:"issue_time"`
	ReturnTime     sql.NullTime `db:"return_time"`
	ReturnDuration int32        `db:"return_duration"`
	LateFee        float64      `db:"late_fee"`
}

func (row rentalRow) toDomain() domain.Rental {
	rt := domain.Rental{
		RentalID:       row.ID,
		UserID:         row.UserID,
		BookID:         row.BookID,
		IssueTime:      row.IssueTime.UTC(),
		ReturnDuration: row.ReturnDuration,
		LateFee:        row.LateFee,
	}
	if row.ReturnTime.Valid {
		t := row.ReturnTime.Time.UTC()
		rt.ReturnTime = &t
	}
	return rt
}

type rentalRepository struct {
	db           *sqlx.DB
	builder      goqu.DialectWrapper
	dialect      string
	queryTimeout time.Duration
}

func newRentalRepository(conn *sqlx.DB, builder goqu.DialectWrapper, dialect string, queryTimeout time.Duration) *rentalRepository {
	return &rentalRepository{db: conn, builder: builder, dialect: dialect, queryTimeout: queryTimeout}
}

func (r *rentalRepository) FindByID(ctx context.Context, id int32) (*domain.Rental, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query, args, err := r.builder.From(tableRentals).Prepared(true).
		Select(rentalColumns...).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select rental query: %w", err)
	}

	logger.DatabaseCall(ctx, "FindByID", query, "rental_id", id)
	var row rentalRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult(ctx, "FindByID", 0, nil)
		return nil, nil
	}
	if err != nil {
		logger.DatabaseResult(ctx, "FindByID", 0, err)
		return nil, fmt.Errorf("select rental %d: %w", id, err)
	}
	logger.DatabaseResult(ctx, "FindByID", 1, nil)

	rt := row.toDomain()
	return &rt, nil
}

func (r *rentalRepository) FindPage(ctx context.Context, filter domain.RentalFilter, page domain.PageRequest) (*domain.Page[domain.Rental], error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	where := filterExpressions(filter)
	orders, err := orderExpressions(page.Sort)
	if err != nil {
		return nil, err
	}

	countQuery, countArgs, err := r.builder.From(tableRentals).Prepared(true).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build count rentals query: %w", err)
	}

	logger.DatabaseCall(ctx, "FindPage.count", countQuery)
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		logger.DatabaseResult(ctx, "FindPage.count", 0, err)
		return nil, fmt.Errorf("count rentals: %w", err)
	}
	logger.DatabaseResult(ctx, "FindPage.count", total, nil)

	if total == 0 || int64(page.Offset()) >= total {
		return domain.NewPage[domain.Rental](nil, page, total), nil
	}

	query, args, err := r.builder.From(tableRentals).Prepared(true).
		Select(rentalColumns...).
		Where(where...).
		Order(orders...).
		Limit(uint(page.Size)).
		Offset(uint(page.Offset())).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select rentals query: %w", err)
	}

	logger.DatabaseCall(ctx, "FindPage", query, "page", page.Number, "size", page.Size)
	var rows []rentalRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		logger.DatabaseResult(ctx, "FindPage", 0, err)
		return nil, fmt.Errorf("select rentals: %w", err)
	}
	logger.DatabaseResult(ctx, "FindPage", int64(len(rows)), nil)

	rentals := make([]domain.Rental, 0, len(rows))
	for _, row := range rows {
		rentals = append(rentals, row.toDomain())
	}
	return domain.NewPage(rentals, page, total), nil
}

func (r *rentalRepository) Save(ctx context.Context, rt *domain.Rental) (*domain.Rental, error) {
	if rt == nil {
		return nil, errors.New("rental is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	saved := *rt
	if rt.RentalID == 0 {
		id, err := r.insert(ctx, rt)
		if err != nil {
			return nil, err
		}
		saved.RentalID = id
		return &saved, nil
	}

	if err := r.update(ctx, rt); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *rentalRepository) insert(ctx context.Context, rt *domain.Rental) (int32, error) {
	ds := r.builder.Insert(tableRentals).Prepared(true).Rows(record(rt))
	// goqu's sqlite3 dialect has no RETURNING support; use LastInsertId there.
	if r.dialect == db.DialectPostgres {
		ds = ds.Returning(colID)
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert rental query: %w", err)
	}

	logger.DatabaseCall(ctx, "Save.insert", query, "user_id", rt.UserID, "book_id", rt.BookID)
	var id int32
	if r.dialect == db.DialectPostgres {
		err = r.db.QueryRowxContext(ctx, query, args...).Scan(&id)
	} else {
		var res sql.Result
		res, err = r.db.ExecContext(ctx, query, args...)
		if err == nil {
			var lastID int64
			lastID, err = res.LastInsertId()
			id = int32(lastID)
		}
	}
	if err != nil {
		logger.DatabaseResult(ctx, "Save.insert", 0, err)
		return 0, translateError("insert rental", err)
	}
	logger.DatabaseResult(ctx, "Save.insert", 1, nil, "rental_id", id)
	return id, nil
}

func (r *rentalRepository) update(ctx context.Context, rt *domain.Rental) error {
	query, args, err := r.builder.Update(tableRentals).Prepared(true).
		Set(record(rt)).
		Where(goqu.C(colID).Eq(rt.RentalID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update rental query: %w", err)
	}

	logger.DatabaseCall(ctx, "Save.update", query, "rental_id", rt.RentalID)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(ctx, "Save.update", 0, err)
		return translateError("update rental", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		logger.DatabaseResult(ctx, "Save.update", 0, err)
		return fmt.Errorf("update rental rows affected: %w", err)
	}
	logger.DatabaseResult(ctx, "Save.update", affected, nil)
	if affected == 0 {
		return domain.NewNotFoundError("Rental", rt.RentalID)
	}
	return nil
}

// record holds every column except id, which the database owns.
func record(rt *domain.Rental) goqu.Record {
	var returnTime any
	if rt.ReturnTime != nil {
		returnTime = rt.ReturnTime.UTC()
	}
	return goqu.Record{
		colUserID:         rt.UserID,
		colBookID:         rt.BookID,
		colIssueTime:      rt.IssueTime.UTC(),
		colReturnTime:     returnTime,
		colReturnDuration: rt.ReturnDuration,
		colLateFee:        rt.LateFee,
	}
}

func filterExpressions(filter domain.RentalFilter) []exp.Expression {
	var where []exp.Expression
	if filter.UserID != nil {
		where = append(where, goqu.C(colUserID).Eq(*filter.UserID))
	}
	if filter.BookID != nil {
		where = append(where, goqu.C(colBookID).Eq(*filter.BookID))
	}
	return where
}

func orderExpressions(sort []domain.SortOrder) ([]exp.OrderedExpression, error) {
	if len(sort) == 0 {
		sort = domain.DefaultSort
	}
	orders := make([]exp.OrderedExpression, 0, len(sort)+1)
	hasID := false
	for _, s := range sort {
		col, ok := sortColumns[s.Property]
		if !ok {
			return nil, domain.NewValidationError(domain.Violation{
				Field:   "sort",
				Message: fmt.Sprintf("unknown sort property %q", s.Property),
			})
		}
		if col == colID {
			hasID = true
		}
		if s.Direction == domain.SortDesc {
			orders = append(orders, goqu.I(col).Desc())
		} else {
			orders = append(orders, goqu.I(col).Asc())
		}
	}
	if !hasID {
		orders = append(orders, goqu.I(colID).Asc())
	}
	return orders, nil
}
