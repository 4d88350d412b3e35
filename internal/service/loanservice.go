package service

import (
	"context"
	"time"

	"github.com/netolib/library-service/internal/core"
)

// overdueAfterDays is how many days a loan may stay open before it counts
// as overdue.
const overdueAfterDays = 4

// LoanService implements the loan use cases on top of a LoanStore.
type LoanService struct {
	loans LoanStore
	now   func() time.Time
}

// NewLoanService creates a LoanService on the given store.
func NewLoanService(loans LoanStore) *LoanService {
	return &LoanService{
		loans: loans,
		now:   time.Now,
	}
}

// Save checks out a book. A book with an outstanding loan cannot be
// checked out again, core.ErrBookAlreadyLoaned is returned instead.
func (s *LoanService) Save(ctx context.Context, loan core.Loan) (core.Loan, error) {
	loaned, err := s.loans.ExistsOpenByBook(ctx, loan.BookID)
	if err != nil {
		return core.Loan{}, err
	}

	if loaned {
		return core.Loan{}, core.ErrBookAlreadyLoaned
	}

	return s.loans.Insert(ctx, loan)
}

// GetByID returns the loan with the given id or core.ErrLoanNotFound.
func (s *LoanService) GetByID(ctx context.Context, id int64) (core.Loan, error) {
	return s.loans.FindByID(ctx, id)
}

// Update persists changes to an existing loan, typically the returned
// flag. The loan must carry an id. The outstanding loan check does not
// apply here, returning a book must always go through.
func (s *LoanService) Update(ctx context.Context, loan core.Loan) (core.Loan, error) {
	if loan.ID == 0 {
		return core.Loan{}, core.ErrMissingID
	}

	if err := s.loans.Update(ctx, loan); err != nil {
		return core.Loan{}, err
	}

	return loan, nil
}

// Find returns a page of loans matching the book isbn OR the customer name.
func (s *LoanService) Find(
	ctx context.Context,
	isbn string,
	costumer string,
	page core.PageRequest,
) (core.Page[core.Loan], error) {

	return s.loans.FindByIsbnOrCostumer(ctx, isbn, costumer, page)
}

// GetLoansByBook returns a page of loans for the given book, any status.
func (s *LoanService) GetLoansByBook(
	ctx context.Context,
	book core.Book,
	page core.PageRequest,
) (core.Page[core.Loan], error) {

	return s.loans.FindByBook(ctx, book.ID, page)
}

// FindOverdue returns all open loans that were checked out more than
// overdueAfterDays days ago.
func (s *LoanService) FindOverdue(ctx context.Context) ([]core.Loan, error) {
	cutoff := s.now().AddDate(0, 0, -overdueAfterDays)

	return s.loans.FindOverdue(ctx, cutoff)
}
