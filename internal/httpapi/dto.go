package httpapi

import (
	"time"

	"github.com/netolib/library-service/internal/core"
)

const dateLayout = "2006-01-02"

type bookDTO struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Isbn   string `json:"isbn"`
}

type loanDTO struct {
	ID            int64   `json:"id"`
	Book          bookDTO `json:"book"`
	Costumer      string  `json:"costumer"`
	CostumerEmail *string `json:"costumerEmail,omitempty"`
	LoanDate      string  `json:"loanDate"`
	Returned      *bool   `json:"returned"`
}

type pageDTO[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

type createBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Isbn   string `json:"isbn"`
}

func (r createBookRequest) validate() []string {
	var problems []string

	if r.Title == "" {
		problems = append(problems, "title must not be empty")
	}
	if r.Author == "" {
		problems = append(problems, "author must not be empty")
	}
	if r.Isbn == "" {
		problems = append(problems, "isbn must not be empty")
	}

	return problems
}

type updateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

func (r updateBookRequest) validate() []string {
	var problems []string

	if r.Title == "" {
		problems = append(problems, "title must not be empty")
	}
	if r.Author == "" {
		problems = append(problems, "author must not be empty")
	}

	return problems
}

type createLoanRequest struct {
	Isbn          string `json:"isbn"`
	Costumer      string `json:"costumer"`
	CostumerEmail string `json:"costumerEmail"`
}

func (r createLoanRequest) validate() []string {
	var problems []string

	if r.Isbn == "" {
		problems = append(problems, "isbn must not be empty")
	}
	if r.Costumer == "" {
		problems = append(problems, "costumer must not be empty")
	}

	return problems
}

type returnLoanRequest struct {
	Returned *bool `json:"returned"`
}

func (r returnLoanRequest) validate() []string {
	if r.Returned == nil {
		return []string{"returned must not be empty"}
	}

	return nil
}

func bookToDTO(book core.Book) bookDTO {
	return bookDTO{
		ID:     book.ID,
		Title:  book.Title,
		Author: book.Author,
		Isbn:   book.Isbn,
	}
}

func loanToDTO(loan core.Loan) loanDTO {
	dto := loanDTO{
		ID:       loan.ID,
		Book:     bookToDTO(loan.Book),
		Costumer: loan.Costumer,
		LoanDate: loan.LoanDate.Format(dateLayout),
		Returned: loan.Returned,
	}

	if loan.CostumerEmail != "" {
		email := loan.CostumerEmail
		dto.CostumerEmail = &email
	}

	return dto
}

func pageToDTO[S any, D any](page core.Page[S], convert func(S) D) pageDTO[D] {
	content := make([]D, 0, len(page.Content))
	for _, item := range page.Content {
		content = append(content, convert(item))
	}

	return pageDTO[D]{
		Content:       content,
		PageNumber:    page.Number,
		PageSize:      page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages(),
	}
}

// today returns the current date truncated to midnight UTC.
func today() time.Time {
	now := time.Now().UTC()

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
