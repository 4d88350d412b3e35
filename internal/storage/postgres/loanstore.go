package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/netolib/library-service/internal/core"
)

const (
	colIDBook        = "id_book"
	colCostumer      = "costumer"
	colCostumerEmail = "costumer_email"
	colLoanDate      = "loan_date"
	colReturned      = "returned"

	dateLayout = "2006-01-02"

	actionLoansExists  = "loans_exists"
	actionLoansInsert  = "loans_insert"
	actionLoansUpdate  = "loans_update"
	actionLoansSelect  = "loans_select"
	actionLoansCount   = "loans_count"
	actionLoansOverdue = "loans_overdue"
)

// LoanStore persists core.Loan records on Postgres. Every loan query joins
// the book record so callers get the loan with its book in one round trip.
type LoanStore struct {
	db *DB
}

// NewLoanStore creates a LoanStore on the given DB.
func NewLoanStore(db *DB) *LoanStore {
	return &LoanStore{db: db}
}

func (s *LoanStore) table() string {
	return s.db.loansTableName
}

func (s *LoanStore) booksTable() string {
	return s.db.booksTableName
}

func (s *LoanStore) col(name string) string {
	return s.table() + "." + name
}

func (s *LoanStore) bookCol(name string) string {
	return s.booksTable() + "." + name
}

// openLoanExpression matches loans that are still outstanding.
func (s *LoanStore) openLoanExpression() goqu.Expression {
	return goqu.Or(
		goqu.I(s.col(colReturned)).IsNull(),
		goqu.I(s.col(colReturned)).IsFalse(),
	)
}

// ExistsOpenByBook reports whether the book has an outstanding loan.
func (s *LoanStore) ExistsOpenByBook(ctx context.Context, bookID int64) (bool, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.table()).
		Select(goqu.COUNT(goqu.I(s.col(colID)))).
		Where(
			goqu.Ex{s.col(colIDBook): bookID},
			s.openLoanExpression(),
		)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return false, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	count, err := s.db.queryCount(ctx, actionLoansExists, sqlQuery)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Insert stores a new loan and returns it with the assigned id.
func (s *LoanStore) Insert(ctx context.Context, loan core.Loan) (core.Loan, error) {
	var email any
	if loan.CostumerEmail != "" {
		email = loan.CostumerEmail
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.table()).
		Rows(goqu.Record{
			colIDBook:        loan.BookID,
			colCostumer:      loan.Costumer,
			colCostumerEmail: email,
			colLoanDate:      loan.LoanDate.Format(dateLayout),
			colReturned:      returnedValue(loan.Returned),
		}).
		Returning(colID)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return core.Loan{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := s.db.queryRows(ctx, actionLoansInsert, sqlQuery)
	if err != nil {
		return core.Loan{}, err
	}
	defer s.db.closeRows(ctx, rows)

	if !rows.Next() {
		return core.Loan{}, ErrExecutingStoreFailed
	}

	if scanErr := rows.Scan(&loan.ID); scanErr != nil {
		s.db.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
		return core.Loan{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	return loan, nil
}

// Update persists the loan record as-is.
func (s *LoanStore) Update(ctx context.Context, loan core.Loan) error {
	var email any
	if loan.CostumerEmail != "" {
		email = loan.CostumerEmail
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.table()).
		Set(goqu.Record{
			colIDBook:        loan.BookID,
			colCostumer:      loan.Costumer,
			colCostumerEmail: email,
			colLoanDate:      loan.LoanDate.Format(dateLayout),
			colReturned:      returnedValue(loan.Returned),
		}).
		Where(goqu.Ex{colID: loan.ID})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.db.exec(ctx, actionLoansUpdate, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return core.ErrLoanNotFound
	}

	return nil
}

// FindByID returns the loan with the given id or core.ErrLoanNotFound.
func (s *LoanStore) FindByID(ctx context.Context, id int64) (core.Loan, error) {
	selectStmt := s.joinedSelect().
		Where(goqu.Ex{s.col(colID): id}).
		Limit(1)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return core.Loan{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	loans, err := s.queryLoans(ctx, actionLoansSelect, sqlQuery)
	if err != nil {
		return core.Loan{}, err
	}

	if len(loans) == 0 {
		return core.Loan{}, core.ErrLoanNotFound
	}

	return loans[0], nil
}

// FindByIsbnOrCostumer returns a page of loans whose book isbn matches OR
// whose customer name matches. Both matches are exact.
func (s *LoanStore) FindByIsbnOrCostumer(
	ctx context.Context,
	isbn string,
	costumer string,
	page core.PageRequest,
) (core.Page[core.Loan], error) {

	where := goqu.Or(
		goqu.Ex{s.bookCol(colIsbn): isbn},
		goqu.Ex{s.col(colCostumer): costumer},
	)

	return s.findPage(ctx, where, page)
}

// FindByBook returns a page of loans for the given book, any status.
func (s *LoanStore) FindByBook(ctx context.Context, bookID int64, page core.PageRequest) (core.Page[core.Loan], error) {
	return s.findPage(ctx, goqu.Ex{s.col(colIDBook): bookID}, page)
}

// FindOverdue returns all open loans with a loan date on or before cutoff.
func (s *LoanStore) FindOverdue(ctx context.Context, cutoff time.Time) ([]core.Loan, error) {
	selectStmt := s.joinedSelect().
		Where(
			goqu.I(s.col(colLoanDate)).Lte(cutoff.Format(dateLayout)),
			s.openLoanExpression(),
		).
		Order(goqu.I(s.col(colLoanDate)).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return s.queryLoans(ctx, actionLoansOverdue, sqlQuery)
}

func (s *LoanStore) findPage(
	ctx context.Context,
	where goqu.Expression,
	page core.PageRequest,
) (core.Page[core.Loan], error) {

	page = page.Normalized()
	empty := core.Page[core.Loan]{}

	countStmt := goqu.Dialect(dialectPostgres).
		From(s.table()).
		Join(goqu.T(s.booksTable()), goqu.On(goqu.Ex{s.col(colIDBook): goqu.I(s.bookCol(colID))})).
		Select(goqu.COUNT(goqu.I(s.col(colID)))).
		Where(where)

	countSQL, _, countSQLErr := countStmt.ToSQL()
	if countSQLErr != nil {
		return empty, errors.Join(ErrBuildingQueryFailed, countSQLErr)
	}

	total, err := s.db.queryCount(ctx, actionLoansCount, countSQL)
	if err != nil {
		return empty, err
	}

	selectStmt := s.joinedSelect().
		Where(where).
		Order(goqu.I(s.col(colID)).Asc()).
		Limit(uint(page.Size)).
		Offset(uint(page.Offset()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return empty, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	loans, err := s.queryLoans(ctx, actionLoansSelect, sqlQuery)
	if err != nil {
		return empty, err
	}

	return core.Page[core.Loan]{
		Content:       loans,
		Number:        page.Number,
		Size:          page.Size,
		TotalElements: total,
	}, nil
}

func (s *LoanStore) joinedSelect() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(s.table()).
		Join(goqu.T(s.booksTable()), goqu.On(goqu.Ex{s.col(colIDBook): goqu.I(s.bookCol(colID))})).
		Select(
			s.col(colID),
			s.col(colIDBook),
			s.col(colCostumer),
			s.col(colCostumerEmail),
			s.col(colLoanDate),
			s.col(colReturned),
			s.bookCol(colTitle),
			s.bookCol(colAuthor),
			s.bookCol(colIsbn),
		)
}

func (s *LoanStore) queryLoans(ctx context.Context, action string, sqlQuery string) ([]core.Loan, error) {
	rows, err := s.db.queryRows(ctx, action, sqlQuery)
	if err != nil {
		return nil, err
	}
	defer s.db.closeRows(ctx, rows)

	loans := make([]core.Loan, 0)

	for rows.Next() {
		var loan core.Loan
		var email sql.NullString

		scanErr := rows.Scan(
			&loan.ID,
			&loan.BookID,
			&loan.Costumer,
			&email,
			&loan.LoanDate,
			&loan.Returned,
			&loan.Book.Title,
			&loan.Book.Author,
			&loan.Book.Isbn,
		)
		if scanErr != nil {
			s.db.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		loan.CostumerEmail = email.String
		loan.Book.ID = loan.BookID

		loans = append(loans, loan)
	}

	return loans, nil
}

// returnedValue maps the tri-state returned flag to a SQL value.
func returnedValue(returned *bool) any {
	if returned == nil {
		return nil
	}

	return *returned
}
