package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/netolib/library-service/internal/core"
)

const msgInternalServerError = "internal server error"

type errorResponse struct {
	Errors []string `json:"errors"`
}

// writeError renders the error body used by all failure responses.
func (s *Server) writeError(w http.ResponseWriter, status int, messages ...string) {
	s.writeJSON(w, status, errorResponse{Errors: messages})
}

// respondError maps a service error to its HTTP representation. Rule
// violations and bad input are client errors, missing records are 404,
// everything else is a logged 500 with an opaque body.
func (s *Server) respondError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrDuplicateIsbn),
		errors.Is(err, core.ErrBookAlreadyLoaned),
		errors.Is(err, core.ErrBookNotFoundForIsbn),
		errors.Is(err, core.ErrMissingID):

		s.writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, core.ErrBookNotFound),
		errors.Is(err, core.ErrLoanNotFound):

		s.writeError(w, http.StatusNotFound, err.Error())

	default:
		s.log.ErrorContext(ctx, logMsgRequestFailed, logAttrError, err.Error())
		s.writeError(w, http.StatusInternalServerError, msgInternalServerError)
	}
}
