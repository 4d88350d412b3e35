package service

import (
	"context"

	"github.com/netolib/library-service/internal/core"
)

// BookService implements the book use cases on top of a BookStore.
type BookService struct {
	books BookStore
}

// NewBookService creates a BookService on the given store.
func NewBookService(books BookStore) *BookService {
	return &BookService{books: books}
}

// Save registers a new book. The isbn must not be registered yet,
// otherwise core.ErrDuplicateIsbn is returned and nothing is stored.
func (s *BookService) Save(ctx context.Context, book core.Book) (core.Book, error) {
	exists, err := s.books.ExistsByIsbn(ctx, book.Isbn)
	if err != nil {
		return core.Book{}, err
	}

	if exists {
		return core.Book{}, core.ErrDuplicateIsbn
	}

	return s.books.Insert(ctx, book)
}

// GetByID returns the book with the given id or core.ErrBookNotFound.
func (s *BookService) GetByID(ctx context.Context, id int64) (core.Book, error) {
	return s.books.FindByID(ctx, id)
}

// GetBookByIsbn returns the book with the given isbn or core.ErrBookNotFound.
func (s *BookService) GetBookByIsbn(ctx context.Context, isbn string) (core.Book, error) {
	return s.books.FindByIsbn(ctx, isbn)
}

// Update persists changes to an existing book. The book must carry an id.
func (s *BookService) Update(ctx context.Context, book core.Book) (core.Book, error) {
	if book.ID == 0 {
		return core.Book{}, core.ErrMissingID
	}

	if err := s.books.Update(ctx, book); err != nil {
		return core.Book{}, err
	}

	return book, nil
}

// Delete removes an existing book. The book must carry an id.
func (s *BookService) Delete(ctx context.Context, book core.Book) error {
	if book.ID == 0 {
		return core.ErrMissingID
	}

	return s.books.Delete(ctx, book.ID)
}

// Find returns a page of books matching the filter by example.
func (s *BookService) Find(
	ctx context.Context,
	filter core.BookFilter,
	page core.PageRequest,
) (core.Page[core.Book], error) {

	return s.books.FindByExample(ctx, filter, page)
}
