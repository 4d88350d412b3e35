// Package service implements the business rules of the library: book
// registration with isbn uniqueness, the loan lifecycle with its single
// outstanding loan per book rule, and the overdue loan query.
package service
