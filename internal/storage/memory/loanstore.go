package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/netolib/library-service/internal/core"
)

// LoanStore is a thread-safe in-memory loan store. Like its Postgres
// counterpart it returns loans with the book record populated, which is
// why it holds a reference to the book store.
type LoanStore struct {
	mu     sync.RWMutex
	nextID int64
	loans  map[int64]core.Loan
	books  *BookStore
}

// NewLoanStore creates an empty in-memory loan store resolving books
// against the given book store.
func NewLoanStore(books *BookStore) *LoanStore {
	return &LoanStore{
		nextID: 1,
		loans:  make(map[int64]core.Loan),
		books:  books,
	}
}

// ExistsOpenByBook reports whether the book has an outstanding loan.
func (s *LoanStore) ExistsOpenByBook(_ context.Context, bookID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, loan := range s.loans {
		if loan.BookID == bookID && loan.IsOpen() {
			return true, nil
		}
	}

	return false, nil
}

// Insert stores a new loan and returns it with the assigned id.
func (s *LoanStore) Insert(ctx context.Context, loan core.Loan) (core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan.ID = s.nextID
	s.nextID++
	s.loans[loan.ID] = loan

	return s.withBook(ctx, loan), nil
}

// Update persists the loan record as-is.
func (s *LoanStore) Update(_ context.Context, loan core.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.loans[loan.ID]; !ok {
		return core.ErrLoanNotFound
	}

	s.loans[loan.ID] = loan

	return nil
}

// FindByID returns the loan with the given id or core.ErrLoanNotFound.
func (s *LoanStore) FindByID(ctx context.Context, id int64) (core.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loan, ok := s.loans[id]
	if !ok {
		return core.Loan{}, core.ErrLoanNotFound
	}

	return s.withBook(ctx, loan), nil
}

// FindByIsbnOrCostumer returns a page of loans whose book isbn matches OR
// whose customer name matches. Both matches are exact.
func (s *LoanStore) FindByIsbnOrCostumer(
	ctx context.Context,
	isbn string,
	costumer string,
	page core.PageRequest,
) (core.Page[core.Loan], error) {

	return s.findPage(ctx, page, func(loan core.Loan) bool {
		return s.withBook(ctx, loan).Book.Isbn == isbn || loan.Costumer == costumer
	})
}

// FindByBook returns a page of loans for the given book, any status.
func (s *LoanStore) FindByBook(ctx context.Context, bookID int64, page core.PageRequest) (core.Page[core.Loan], error) {
	return s.findPage(ctx, page, func(loan core.Loan) bool {
		return loan.BookID == bookID
	})
}

// FindOverdue returns all open loans with a loan date on or before cutoff.
func (s *LoanStore) FindOverdue(ctx context.Context, cutoff time.Time) ([]core.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overdue := make([]core.Loan, 0)
	for _, loan := range s.loans {
		if loan.IsOpen() && !loan.LoanDate.After(cutoff) {
			overdue = append(overdue, s.withBook(ctx, loan))
		}
	}

	sort.Slice(overdue, func(i, j int) bool { return overdue[i].LoanDate.Before(overdue[j].LoanDate) })

	return overdue, nil
}

func (s *LoanStore) findPage(
	ctx context.Context,
	page core.PageRequest,
	matches func(core.Loan) bool,
) (core.Page[core.Loan], error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	page = page.Normalized()

	matching := make([]core.Loan, 0, len(s.loans))
	for _, loan := range s.loans {
		if matches(loan) {
			matching = append(matching, s.withBook(ctx, loan))
		}
	}

	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })

	return core.Page[core.Loan]{
		Content:       pageSlice(matching, page),
		Number:        page.Number,
		Size:          page.Size,
		TotalElements: int64(len(matching)),
	}, nil
}

func (s *LoanStore) withBook(ctx context.Context, loan core.Loan) core.Loan {
	if s.books == nil {
		return loan
	}

	if book, err := s.books.FindByID(ctx, loan.BookID); err == nil {
		loan.Book = book
	}

	return loan
}
