package core

import "time"

// Loan records that a book was handed out to a customer. A loan is open
// while Returned is nil or false; flipping Returned to true closes it and
// there is no transition back.
type Loan struct {
	ID            int64
	BookID        int64
	Book          Book // populated by queries that join the book record
	Costumer      string
	CostumerEmail string
	LoanDate      time.Time
	Returned      *bool
}

// IsOpen reports whether the loan is still outstanding.
func (l Loan) IsOpen() bool {
	return l.Returned == nil || !*l.Returned
}
