package core

import "errors"

// Business rule violations. The messages are part of the HTTP contract and
// must not be reworded.
var (
	ErrDuplicateIsbn       = errors.New("Isbn já cadastrado.")
	ErrBookAlreadyLoaned   = errors.New("Book already loaned")
	ErrBookNotFoundForIsbn = errors.New("Book not found for passed isbn")
)

// Lookup misses.
var (
	ErrBookNotFound = errors.New("book not found")
	ErrLoanNotFound = errors.New("loan not found")
)

// ErrMissingID guards update and delete operations that require a persisted
// record; it fires before the store is touched.
var ErrMissingID = errors.New("id cannot be null")
