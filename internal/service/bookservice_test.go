package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netolib/library-service/internal/core"
	"github.com/netolib/library-service/internal/service"
)

// fakeBookStore lets each test script the store behavior and observe
// which calls the service made.

type fakeBookStore struct {
	existsByIsbn  bool
	existsErr     error
	insertCalled  bool
	updateCalled  bool
	deleteCalled  bool
	books         map[int64]core.Book
	findByExample func(core.BookFilter, core.PageRequest) (core.Page[core.Book], error)
}

func newFakeBookStore() *fakeBookStore {
	return &fakeBookStore{books: make(map[int64]core.Book)}
}

func (f *fakeBookStore) ExistsByIsbn(_ context.Context, _ string) (bool, error) {
	return f.existsByIsbn, f.existsErr
}

func (f *fakeBookStore) Insert(_ context.Context, book core.Book) (core.Book, error) {
	f.insertCalled = true
	book.ID = int64(len(f.books) + 1)
	f.books[book.ID] = book

	return book, nil
}

func (f *fakeBookStore) Update(_ context.Context, book core.Book) error {
	f.updateCalled = true

	if _, ok := f.books[book.ID]; !ok {
		return core.ErrBookNotFound
	}

	f.books[book.ID] = book

	return nil
}

func (f *fakeBookStore) Delete(_ context.Context, id int64) error {
	f.deleteCalled = true

	if _, ok := f.books[id]; !ok {
		return core.ErrBookNotFound
	}

	delete(f.books, id)

	return nil
}

func (f *fakeBookStore) FindByID(_ context.Context, id int64) (core.Book, error) {
	book, ok := f.books[id]
	if !ok {
		return core.Book{}, core.ErrBookNotFound
	}

	return book, nil
}

func (f *fakeBookStore) FindByIsbn(_ context.Context, isbn string) (core.Book, error) {
	for _, book := range f.books {
		if book.Isbn == isbn {
			return book, nil
		}
	}

	return core.Book{}, core.ErrBookNotFound
}

func (f *fakeBookStore) FindByExample(
	_ context.Context,
	filter core.BookFilter,
	page core.PageRequest,
) (core.Page[core.Book], error) {

	if f.findByExample != nil {
		return f.findByExample(filter, page)
	}

	return core.Page[core.Book]{}, nil
}

func Test_BookService_Save_StoresNewBook(t *testing.T) {
	// arrange
	store := newFakeBookStore()
	svc := service.NewBookService(store)

	// act
	book, err := svc.Save(context.Background(), core.Book{Title: "As Aventuras", Author: "Fulano", Isbn: "123"})

	// assert
	require.NoError(t, err)
	assert.True(t, store.insertCalled)
	assert.NotZero(t, book.ID)
	assert.Equal(t, "123", book.Isbn)
}

func Test_BookService_Save_RejectsDuplicateIsbn(t *testing.T) {
	// arrange
	store := newFakeBookStore()
	store.existsByIsbn = true
	svc := service.NewBookService(store)

	// act
	_, err := svc.Save(context.Background(), core.Book{Title: "As Aventuras", Author: "Fulano", Isbn: "123"})

	// assert
	require.ErrorIs(t, err, core.ErrDuplicateIsbn)
	assert.EqualError(t, err, "Isbn já cadastrado.")
	assert.False(t, store.insertCalled, "a duplicate isbn must not reach the store")
}

func Test_BookService_Save_PropagatesStoreError(t *testing.T) {
	// arrange
	store := newFakeBookStore()
	store.existsErr = errors.New("connection lost")
	svc := service.NewBookService(store)

	// act
	_, err := svc.Save(context.Background(), core.Book{Isbn: "123"})

	// assert
	require.Error(t, err)
	assert.False(t, store.insertCalled)
}

func Test_BookService_GetByID_ReturnsStoredBook(t *testing.T) {
	// arrange
	store := newFakeBookStore()
	svc := service.NewBookService(store)
	saved, err := svc.Save(context.Background(), core.Book{Title: "As Aventuras", Author: "Fulano", Isbn: "123"})
	require.NoError(t, err)

	// act
	found, err := svc.GetByID(context.Background(), saved.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, saved, found)
}

func Test_BookService_GetByID_UnknownID(t *testing.T) {
	// arrange
	svc := service.NewBookService(newFakeBookStore())

	// act
	_, err := svc.GetByID(context.Background(), 42)

	// assert
	assert.ErrorIs(t, err, core.ErrBookNotFound)
}

func Test_BookService_Update_RequiresID(t *testing.T) {
	// arrange
	store := newFakeBookStore()
	svc := service.NewBookService(store)

	// act
	_, err := svc.Update(context.Background(), core.Book{Title: "No ID"})

	// assert
	require.ErrorIs(t, err, core.ErrMissingID)
	assert.False(t, store.updateCalled)
}

func Test_BookService_Update_PersistsChanges(t *testing.T) {
	// arrange
	store := newFakeBookStore()
	svc := service.NewBookService(store)
	saved, err := svc.Save(context.Background(), core.Book{Title: "Old", Author: "Fulano", Isbn: "123"})
	require.NoError(t, err)

	saved.Title = "New"

	// act
	updated, err := svc.Update(context.Background(), saved)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	found, err := svc.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", found.Title)
}

func Test_BookService_Delete_RequiresID(t *testing.T) {
	// arrange
	store := newFakeBookStore()
	svc := service.NewBookService(store)

	// act
	err := svc.Delete(context.Background(), core.Book{})

	// assert
	require.ErrorIs(t, err, core.ErrMissingID)
	assert.False(t, store.deleteCalled)
}

func Test_BookService_Delete_RemovesBook(t *testing.T) {
	// arrange
	store := newFakeBookStore()
	svc := service.NewBookService(store)
	saved, err := svc.Save(context.Background(), core.Book{Title: "As Aventuras", Author: "Fulano", Isbn: "123"})
	require.NoError(t, err)

	// act
	err = svc.Delete(context.Background(), saved)

	// assert
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), saved.ID)
	assert.ErrorIs(t, err, core.ErrBookNotFound)
}

func Test_BookService_Find_PassesFilterAndPageThrough(t *testing.T) {
	// arrange
	store := newFakeBookStore()

	var gotFilter core.BookFilter
	var gotPage core.PageRequest
	store.findByExample = func(filter core.BookFilter, page core.PageRequest) (core.Page[core.Book], error) {
		gotFilter = filter
		gotPage = page

		return core.Page[core.Book]{Number: page.Number, Size: page.Size}, nil
	}

	svc := service.NewBookService(store)

	// act
	_, err := svc.Find(context.Background(), core.BookFilter{Title: "Aventuras"}, core.PageRequest{Number: 2, Size: 10})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "Aventuras", gotFilter.Title)
	assert.Equal(t, 2, gotPage.Number)
	assert.Equal(t, 10, gotPage.Size)
}

var _ service.BookStore = (*fakeBookStore)(nil)
