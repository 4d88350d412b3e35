package httpapi

import (
	"context"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/netolib/library-service/internal/core"
	"github.com/netolib/library-service/internal/observability"
	"github.com/netolib/library-service/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	logMsgRequestFailed     = "request failed"
	logMsgWritingBodyFailed = "writing response body failed"

	logAttrError = "error"
)

// Server holds the HTTP handlers for the book and loan endpoints.
type Server struct {
	books *service.BookService
	loans *service.LoanService
	log   observability.ContextualLogger
}

// NewServer creates a Server. A nil logger is replaced with a no-op one.
func NewServer(
	books *service.BookService,
	loans *service.LoanService,
	log observability.ContextualLogger,
) *Server {

	if log == nil {
		log = observability.NopLogger{}
	}

	return &Server{
		books: books,
		loans: loans,
		log:   log,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/books", s.handleCreateBook)
	mux.HandleFunc("GET /api/books", s.handleFindBooks)
	mux.HandleFunc("GET /api/books/{id}", s.handleGetBook)
	mux.HandleFunc("PUT /api/books/{id}", s.handleUpdateBook)
	mux.HandleFunc("DELETE /api/books/{id}", s.handleDeleteBook)
	mux.HandleFunc("GET /api/books/{id}/loans", s.handleLoansByBook)

	mux.HandleFunc("POST /api/loans", s.handleCreateLoan)
	mux.HandleFunc("GET /api/loans", s.handleFindLoans)
	mux.HandleFunc("PATCH /api/loans/{id}", s.handleReturnLoan)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.ErrorContext(context.Background(), logMsgWritingBodyFailed, logAttrError, err.Error())
	}
}

// pathID parses the numeric {id} path segment. The second return value
// is false if it is missing or not a number.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}

	return id, true
}

// pageRequest parses the page and size query parameters, falling back to
// the defaults on missing or malformed values.
func pageRequest(r *http.Request) core.PageRequest {
	query := r.URL.Query()

	page := core.PageRequest{Size: core.DefaultPageSize}

	if number, err := strconv.Atoi(query.Get("page")); err == nil {
		page.Number = number
	}

	if size, err := strconv.Atoi(query.Get("size")); err == nil {
		page.Size = size
	}

	return page.Normalized()
}
