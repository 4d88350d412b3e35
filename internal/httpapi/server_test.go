package httpapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netolib/library-service/internal/httpapi"
	"github.com/netolib/library-service/internal/service"
	"github.com/netolib/library-service/internal/storage/memory"
)

func newTestHandler() http.Handler {
	books := memory.NewBookStore()
	loans := memory.NewLoanStore(books)

	server := httpapi.NewServer(
		service.NewBookService(books),
		service.NewLoanService(loans),
		nil,
	)

	return server.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()

	var decoded T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))

	return decoded
}

type bookResponse struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Isbn   string `json:"isbn"`
}

type errorsResponse struct {
	Errors []string `json:"errors"`
}

type loanResponse struct {
	ID            int64        `json:"id"`
	Book          bookResponse `json:"book"`
	Costumer      string       `json:"costumer"`
	CostumerEmail *string      `json:"costumerEmail"`
	LoanDate      string       `json:"loanDate"`
	Returned      *bool        `json:"returned"`
}

type pageResponse[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

func createBook(t *testing.T, handler http.Handler, title, author, isbn string) bookResponse {
	t.Helper()

	recorder := doJSON(t, handler, http.MethodPost, "/api/books", map[string]string{
		"title": title, "author": author, "isbn": isbn,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	return decodeBody[bookResponse](t, recorder)
}

func Test_CreateBook_Succeeds(t *testing.T) {
	// arrange
	handler := newTestHandler()

	// act
	book := createBook(t, handler, "As Aventuras", "Fulano", "123")

	// assert
	assert.NotZero(t, book.ID)
	assert.Equal(t, "As Aventuras", book.Title)
	assert.Equal(t, "123", book.Isbn)
}

func Test_CreateBook_DuplicateIsbn(t *testing.T) {
	// arrange
	handler := newTestHandler()
	createBook(t, handler, "As Aventuras", "Fulano", "123")

	// act
	recorder := doJSON(t, handler, http.MethodPost, "/api/books", map[string]string{
		"title": "Other", "author": "Other", "isbn": "123",
	})

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeBody[errorsResponse](t, recorder)
	assert.Equal(t, []string{"Isbn já cadastrado."}, body.Errors)
}

func Test_CreateBook_ValidationErrors(t *testing.T) {
	// arrange
	handler := newTestHandler()

	// act
	recorder := doJSON(t, handler, http.MethodPost, "/api/books", map[string]string{})

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeBody[errorsResponse](t, recorder)
	assert.Equal(t, []string{
		"title must not be empty",
		"author must not be empty",
		"isbn must not be empty",
	}, body.Errors)
}

func Test_GetBook_NotFound(t *testing.T) {
	// arrange
	handler := newTestHandler()

	// act
	recorder := doJSON(t, handler, http.MethodGet, "/api/books/42", nil)

	// assert
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func Test_UpdateBook_KeepsIsbn(t *testing.T) {
	// arrange
	handler := newTestHandler()
	book := createBook(t, handler, "Old Title", "Old Author", "123")

	// act
	recorder := doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/books/%d", book.ID), map[string]string{
		"title": "New Title", "author": "New Author",
	})

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)
	updated := decodeBody[bookResponse](t, recorder)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, "New Author", updated.Author)
	assert.Equal(t, "123", updated.Isbn, "the isbn must never change")
}

func Test_DeleteBook_ReturnsNoContent(t *testing.T) {
	// arrange
	handler := newTestHandler()
	book := createBook(t, handler, "As Aventuras", "Fulano", "123")

	// act
	recorder := doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/books/%d", book.ID), nil)

	// assert
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/books/%d", book.ID), nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func Test_DeleteBook_NotFound(t *testing.T) {
	// arrange
	handler := newTestHandler()

	// act
	recorder := doJSON(t, handler, http.MethodDelete, "/api/books/42", nil)

	// assert
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func Test_FindBooks_FiltersAndPages(t *testing.T) {
	// arrange
	handler := newTestHandler()
	createBook(t, handler, "As Aventuras de PI", "Fulano", "111")
	createBook(t, handler, "Dom Casmurro", "Machado de Assis", "222")
	createBook(t, handler, "Outras Aventuras", "Fulano", "333")

	// act
	recorder := doJSON(t, handler, http.MethodGet, "/api/books?title=aventuras&page=0&size=1", nil)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)
	page := decodeBody[pageResponse[bookResponse]](t, recorder)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.PageSize)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "111", page.Content[0].Isbn)
}

func createLoan(t *testing.T, handler http.Handler, isbn, costumer string) int64 {
	t.Helper()

	recorder := doJSON(t, handler, http.MethodPost, "/api/loans", map[string]string{
		"isbn": isbn, "costumer": costumer,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	return decodeBody[int64](t, recorder)
}

func Test_CreateLoan_ReturnsBareID(t *testing.T) {
	// arrange
	handler := newTestHandler()
	createBook(t, handler, "As Aventuras", "Fulano", "123")

	// act
	loanID := createLoan(t, handler, "123", "Ciclano")

	// assert
	assert.Equal(t, int64(1), loanID)
}

func Test_CreateLoan_UnknownIsbn(t *testing.T) {
	// arrange
	handler := newTestHandler()

	// act
	recorder := doJSON(t, handler, http.MethodPost, "/api/loans", map[string]string{
		"isbn": "999", "costumer": "Ciclano",
	})

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeBody[errorsResponse](t, recorder)
	assert.Equal(t, []string{"Book not found for passed isbn"}, body.Errors)
}

func Test_CreateLoan_BookAlreadyLoaned(t *testing.T) {
	// arrange
	handler := newTestHandler()
	createBook(t, handler, "As Aventuras", "Fulano", "123")
	createLoan(t, handler, "123", "Ciclano")

	// act
	recorder := doJSON(t, handler, http.MethodPost, "/api/loans", map[string]string{
		"isbn": "123", "costumer": "Beltrano",
	})

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeBody[errorsResponse](t, recorder)
	assert.Equal(t, []string{"Book already loaned"}, body.Errors)
}

func Test_ReturnLoan_FreesTheBook(t *testing.T) {
	// arrange
	handler := newTestHandler()
	createBook(t, handler, "As Aventuras", "Fulano", "123")
	loanID := createLoan(t, handler, "123", "Ciclano")

	// act
	recorder := doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/api/loans/%d", loanID), map[string]bool{
		"returned": true,
	})

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)
	loan := decodeBody[loanResponse](t, recorder)
	require.NotNil(t, loan.Returned)
	assert.True(t, *loan.Returned)

	// the book can be checked out again
	secondLoanID := createLoan(t, handler, "123", "Beltrano")
	assert.Greater(t, secondLoanID, loanID)
}

func Test_ReturnLoan_NotFound(t *testing.T) {
	// arrange
	handler := newTestHandler()

	// act
	recorder := doJSON(t, handler, http.MethodPatch, "/api/loans/42", map[string]bool{"returned": true})

	// assert
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func Test_ReturnLoan_RequiresReturnedFlag(t *testing.T) {
	// arrange
	handler := newTestHandler()
	createBook(t, handler, "As Aventuras", "Fulano", "123")
	loanID := createLoan(t, handler, "123", "Ciclano")

	// act
	recorder := doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/api/loans/%d", loanID), map[string]string{})

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func Test_FindLoans_MatchesIsbnOrCostumer(t *testing.T) {
	// arrange
	handler := newTestHandler()
	createBook(t, handler, "First", "Fulano", "111")
	createBook(t, handler, "Second", "Fulano", "222")
	createLoan(t, handler, "111", "Ciclano")
	createLoan(t, handler, "222", "Beltrano")

	// act: isbn hits the first loan, costumer the second
	recorder := doJSON(t, handler, http.MethodGet, "/api/loans?isbn=111&costumer=Beltrano", nil)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)
	page := decodeBody[pageResponse[loanResponse]](t, recorder)
	assert.Equal(t, int64(2), page.TotalElements)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "111", page.Content[0].Book.Isbn)
	assert.Equal(t, "Beltrano", page.Content[1].Costumer)
}

func Test_LoansByBook_ListsAllLoans(t *testing.T) {
	// arrange
	handler := newTestHandler()
	book := createBook(t, handler, "As Aventuras", "Fulano", "123")
	loanID := createLoan(t, handler, "123", "Ciclano")

	recorder := doJSON(t, handler, http.MethodPatch, fmt.Sprintf("/api/loans/%d", loanID), map[string]bool{
		"returned": true,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	createLoan(t, handler, "123", "Beltrano")

	// act
	recorder = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/books/%d/loans", book.ID), nil)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)
	page := decodeBody[pageResponse[loanResponse]](t, recorder)
	assert.Equal(t, int64(2), page.TotalElements, "returned loans stay in the book's history")
}

func Test_LoansByBook_UnknownBook(t *testing.T) {
	// arrange
	handler := newTestHandler()

	// act
	recorder := doJSON(t, handler, http.MethodGet, "/api/books/42/loans", nil)

	// assert
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func Test_Healthz(t *testing.T) {
	// arrange
	handler := newTestHandler()

	// act
	recorder := doJSON(t, handler, http.MethodGet, "/healthz", nil)

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
}
