package httpapi

import (
	"errors"
	"net/http"

	"github.com/netolib/library-service/internal/core"
)

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if problems := req.validate(); len(problems) > 0 {
		s.writeError(w, http.StatusBadRequest, problems...)
		return
	}

	book, err := s.books.GetBookByIsbn(r.Context(), req.Isbn)
	if err != nil {
		// checkout against an unknown isbn is a client mistake, not a
		// missing resource
		if errors.Is(err, core.ErrBookNotFound) {
			err = core.ErrBookNotFoundForIsbn
		}

		s.respondError(r.Context(), w, err)
		return
	}

	loan, err := s.loans.Save(r.Context(), core.Loan{
		BookID:        book.ID,
		Costumer:      req.Costumer,
		CostumerEmail: req.CostumerEmail,
		LoanDate:      today(),
	})
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, loan.ID)
}

func (s *Server) handleFindLoans(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := s.loans.Find(r.Context(), query.Get("isbn"), query.Get("costumer"), pageRequest(r))
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, pageToDTO(page, loanToDTO))
}

func (s *Server) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, core.ErrLoanNotFound.Error())
		return
	}

	var req returnLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if problems := req.validate(); len(problems) > 0 {
		s.writeError(w, http.StatusBadRequest, problems...)
		return
	}

	loan, err := s.loans.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	loan.Returned = req.Returned

	updated, err := s.loans.Update(r.Context(), loan)
	if err != nil {
		s.respondError(r.Context(), w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, loanToDTO(updated))
}
