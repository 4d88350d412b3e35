// Package core holds the domain types and the error taxonomy of the
// library service. It has no dependencies on storage, transport or any
// other outer layer; services and stores exchange these types only.
package core
