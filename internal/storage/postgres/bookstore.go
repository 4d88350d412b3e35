package postgres

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/netolib/library-service/internal/core"
)

const (
	colID     = "id"
	colTitle  = "title"
	colAuthor = "author"
	colIsbn   = "isbn"

	actionBooksExists = "books_exists"
	actionBooksInsert = "books_insert"
	actionBooksUpdate = "books_update"
	actionBooksDelete = "books_delete"
	actionBooksSelect = "books_select"
	actionBooksCount  = "books_count"
)

// BookStore persists core.Book records on Postgres.
type BookStore struct {
	db *DB
}

// NewBookStore creates a BookStore on the given DB.
func NewBookStore(db *DB) *BookStore {
	return &BookStore{db: db}
}

func (s *BookStore) table() string {
	return s.db.booksTableName
}

// ExistsByIsbn reports whether a book with the given isbn is stored.
func (s *BookStore) ExistsByIsbn(ctx context.Context, isbn string) (bool, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.table()).
		Select(goqu.COUNT(colID)).
		Where(goqu.Ex{colIsbn: isbn})

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return false, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	count, err := s.db.queryCount(ctx, actionBooksExists, sqlQuery)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Insert stores a new book and returns it with the assigned id.
func (s *BookStore) Insert(ctx context.Context, book core.Book) (core.Book, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.table()).
		Rows(goqu.Record{
			colTitle:  book.Title,
			colAuthor: book.Author,
			colIsbn:   book.Isbn,
		}).
		Returning(colID)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return core.Book{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	// RETURNING makes the insert a query from the adapter's point of view.
	rows, err := s.db.queryRows(ctx, actionBooksInsert, sqlQuery)
	if err != nil {
		return core.Book{}, err
	}
	defer s.db.closeRows(ctx, rows)

	if !rows.Next() {
		return core.Book{}, ErrExecutingStoreFailed
	}

	if scanErr := rows.Scan(&book.ID); scanErr != nil {
		s.db.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
		return core.Book{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	return book, nil
}

// Update persists the full book record.
func (s *BookStore) Update(ctx context.Context, book core.Book) error {
	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.table()).
		Set(goqu.Record{
			colTitle:  book.Title,
			colAuthor: book.Author,
			colIsbn:   book.Isbn,
		}).
		Where(goqu.Ex{colID: book.ID})

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.db.exec(ctx, actionBooksUpdate, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return core.ErrBookNotFound
	}

	return nil
}

// Delete removes the book with the given id.
func (s *BookStore) Delete(ctx context.Context, id int64) error {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(s.table()).
		Where(goqu.Ex{colID: id})

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, err := s.db.exec(ctx, actionBooksDelete, sqlQuery)
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return core.ErrBookNotFound
	}

	return nil
}

// FindByID returns the book with the given id or core.ErrBookNotFound.
func (s *BookStore) FindByID(ctx context.Context, id int64) (core.Book, error) {
	return s.findOne(ctx, goqu.Ex{colID: id})
}

// FindByIsbn returns the book with the given isbn or core.ErrBookNotFound.
func (s *BookStore) FindByIsbn(ctx context.Context, isbn string) (core.Book, error) {
	return s.findOne(ctx, goqu.Ex{colIsbn: isbn})
}

func (s *BookStore) findOne(ctx context.Context, where goqu.Ex) (core.Book, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.table()).
		Select(colID, colTitle, colAuthor, colIsbn).
		Where(where).
		Limit(1)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return core.Book{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := s.db.queryRows(ctx, actionBooksSelect, sqlQuery)
	if err != nil {
		return core.Book{}, err
	}
	defer s.db.closeRows(ctx, rows)

	if !rows.Next() {
		return core.Book{}, core.ErrBookNotFound
	}

	var book core.Book
	if scanErr := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Isbn); scanErr != nil {
		s.db.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
		return core.Book{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	return book, nil
}

// FindByExample returns a page of books matching the filter. Non-empty
// filter fields constrain the match with a case-insensitive partial match,
// empty fields are wildcards.
func (s *BookStore) FindByExample(
	ctx context.Context,
	filter core.BookFilter,
	page core.PageRequest,
) (core.Page[core.Book], error) {

	page = page.Normalized()
	empty := core.Page[core.Book]{}

	whereExpressions := make([]goqu.Expression, 0, 2)
	if filter.Title != "" {
		whereExpressions = append(whereExpressions, goqu.C(colTitle).ILike("%"+filter.Title+"%"))
	}
	if filter.Author != "" {
		whereExpressions = append(whereExpressions, goqu.C(colAuthor).ILike("%"+filter.Author+"%"))
	}

	builder := goqu.Dialect(dialectPostgres)

	countStmt := builder.From(s.table()).Select(goqu.COUNT(colID)).Where(whereExpressions...)

	countSQL, _, countSQLErr := countStmt.ToSQL()
	if countSQLErr != nil {
		return empty, errors.Join(ErrBuildingQueryFailed, countSQLErr)
	}

	total, err := s.db.queryCount(ctx, actionBooksCount, countSQL)
	if err != nil {
		return empty, err
	}

	selectStmt := builder.
		From(s.table()).
		Select(colID, colTitle, colAuthor, colIsbn).
		Where(whereExpressions...).
		Order(goqu.I(colID).Asc()).
		Limit(uint(page.Size)).
		Offset(uint(page.Offset()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return empty, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, err := s.db.queryRows(ctx, actionBooksSelect, sqlQuery)
	if err != nil {
		return empty, err
	}
	defer s.db.closeRows(ctx, rows)

	books := make([]core.Book, 0, page.Size)
	for rows.Next() {
		var book core.Book
		if scanErr := rows.Scan(&book.ID, &book.Title, &book.Author, &book.Isbn); scanErr != nil {
			s.db.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return empty, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		books = append(books, book)
	}

	return core.Page[core.Book]{
		Content:       books,
		Number:        page.Number,
		Size:          page.Size,
		TotalElements: total,
	}, nil
}

// queryCount runs a single-value count query.
func (db *DB) queryCount(ctx context.Context, action string, sqlQuery string) (int64, error) {
	rows, err := db.queryRows(ctx, action, sqlQuery)
	if err != nil {
		return 0, err
	}
	defer db.closeRows(ctx, rows)

	var count int64
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			db.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return 0, errors.Join(ErrScanningDBRowFailed, scanErr)
		}
	}

	return count, nil
}
