package service

import (
	"context"
	"time"

	"github.com/netolib/library-service/internal/core"
)

// BookStore is the persistence port of the book service.
type BookStore interface {
	ExistsByIsbn(ctx context.Context, isbn string) (bool, error)
	Insert(ctx context.Context, book core.Book) (core.Book, error)
	Update(ctx context.Context, book core.Book) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (core.Book, error)
	FindByIsbn(ctx context.Context, isbn string) (core.Book, error)
	FindByExample(ctx context.Context, filter core.BookFilter, page core.PageRequest) (core.Page[core.Book], error)
}

// LoanStore is the persistence port of the loan service.
type LoanStore interface {
	ExistsOpenByBook(ctx context.Context, bookID int64) (bool, error)
	Insert(ctx context.Context, loan core.Loan) (core.Loan, error)
	Update(ctx context.Context, loan core.Loan) error
	FindByID(ctx context.Context, id int64) (core.Loan, error)
	FindByIsbnOrCostumer(ctx context.Context, isbn string, costumer string, page core.PageRequest) (core.Page[core.Loan], error)
	FindByBook(ctx context.Context, bookID int64, page core.PageRequest) (core.Page[core.Loan], error)
	FindOverdue(ctx context.Context, cutoff time.Time) ([]core.Loan, error)
}
