// Package memory provides in-memory implementations of the book and loan
// stores. They satisfy the same contracts as the Postgres stores and back
// the test suites as well as local runs without a database.
package memory
