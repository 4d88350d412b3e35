package httpapi

import (
	"net/http"

	"github.com/netolib/library-service/internal/core"
)

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if problems := req.validate(); len(problems) > 0 {
		s.writeError(w, http.StatusBadRequest, problems...)
		return
	}

	book, err := s.books.Save(r.Context(), core.Book{
		Title:  req.Title,
		Author: req.Author,
		Isbn:   req.Isbn,
	})
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, bookToDTO(book))
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, core.ErrBookNotFound.Error())
		return
	}

	book, err := s.books.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, bookToDTO(book))
}

// handleUpdateBook replaces title and author of an existing book. The isbn
// is not updatable, it stays as registered.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, core.ErrBookNotFound.Error())
		return
	}

	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if problems := req.validate(); len(problems) > 0 {
		s.writeError(w, http.StatusBadRequest, problems...)
		return
	}

	book, err := s.books.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	book.Title = req.Title
	book.Author = req.Author

	updated, err := s.books.Update(r.Context(), book)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, bookToDTO(updated))
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, core.ErrBookNotFound.Error())
		return
	}

	book, err := s.books.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	if err := s.books.Delete(r.Context(), book); err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFindBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := core.BookFilter{
		Title:  query.Get("title"),
		Author: query.Get("author"),
	}

	page, err := s.books.Find(r.Context(), filter, pageRequest(r))
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, pageToDTO(page, bookToDTO))
}

func (s *Server) handleLoansByBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, core.ErrBookNotFound.Error())
		return
	}

	book, err := s.books.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	page, err := s.loans.GetLoansByBook(r.Context(), book, pageRequest(r))
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, pageToDTO(page, loanToDTO))
}
