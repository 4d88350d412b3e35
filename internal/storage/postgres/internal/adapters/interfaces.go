package adapters

import "context"

// Adapter defines the database operations needed by the stores.
type Adapter interface {
	Query(ctx context.Context, query string) (Rows, error)
	Exec(ctx context.Context, query string) (Result, error)
}

// Rows defines the interface for query result rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// Result defines the interface for execution results.
type Result interface {
	RowsAffected() (int64, error)
}
