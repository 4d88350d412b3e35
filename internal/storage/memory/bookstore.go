package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/netolib/library-service/internal/core"
)

// BookStore is a thread-safe in-memory book store.
type BookStore struct {
	mu     sync.RWMutex
	nextID int64
	books  map[int64]core.Book
}

// NewBookStore creates an empty in-memory book store.
func NewBookStore() *BookStore {
	return &BookStore{
		nextID: 1,
		books:  make(map[int64]core.Book),
	}
}

// ExistsByIsbn reports whether a book with the given isbn is stored.
func (s *BookStore) ExistsByIsbn(_ context.Context, isbn string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, book := range s.books {
		if book.Isbn == isbn {
			return true, nil
		}
	}

	return false, nil
}

// Insert stores a new book and returns it with the assigned id.
func (s *BookStore) Insert(_ context.Context, book core.Book) (core.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book.ID = s.nextID
	s.nextID++
	s.books[book.ID] = book

	return book, nil
}

// Update persists the full book record.
func (s *BookStore) Update(_ context.Context, book core.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[book.ID]; !ok {
		return core.ErrBookNotFound
	}

	s.books[book.ID] = book

	return nil
}

// Delete removes the book with the given id.
func (s *BookStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return core.ErrBookNotFound
	}

	delete(s.books, id)

	return nil
}

// FindByID returns the book with the given id or core.ErrBookNotFound.
func (s *BookStore) FindByID(_ context.Context, id int64) (core.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return core.Book{}, core.ErrBookNotFound
	}

	return book, nil
}

// FindByIsbn returns the book with the given isbn or core.ErrBookNotFound.
func (s *BookStore) FindByIsbn(_ context.Context, isbn string) (core.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, book := range s.books {
		if book.Isbn == isbn {
			return book, nil
		}
	}

	return core.Book{}, core.ErrBookNotFound
}

// FindByExample returns a page of books matching the filter. Non-empty
// fields constrain the match case-insensitively, empty fields are wildcards.
func (s *BookStore) FindByExample(
	_ context.Context,
	filter core.BookFilter,
	page core.PageRequest,
) (core.Page[core.Book], error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	page = page.Normalized()

	matching := make([]core.Book, 0, len(s.books))
	for _, book := range s.books {
		if matchesFilter(book, filter) {
			matching = append(matching, book)
		}
	}

	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })

	return core.Page[core.Book]{
		Content:       pageSlice(matching, page),
		Number:        page.Number,
		Size:          page.Size,
		TotalElements: int64(len(matching)),
	}, nil
}

func matchesFilter(book core.Book, filter core.BookFilter) bool {
	if filter.IsEmpty() {
		return true
	}

	if filter.Title != "" && !containsFold(book.Title, filter.Title) {
		return false
	}

	if filter.Author != "" && !containsFold(book.Author, filter.Author) {
		return false
	}

	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// pageSlice cuts one page out of the full result set.
func pageSlice[T any](all []T, page core.PageRequest) []T {
	start := page.Offset()
	if start >= len(all) {
		return []T{}
	}

	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}

	return all[start:end]
}
