// Package httpapi exposes the book and loan services over a JSON REST API.
package httpapi
