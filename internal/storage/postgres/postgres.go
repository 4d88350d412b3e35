package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/netolib/library-service/internal/storage/postgres/internal/adapters"
)

const (
	defaultBooksTableName = "books"
	defaultLoansTableName = "loans"

	dialectPostgres = "postgres"

	logMsgSQLExecuted       = "executed sql for: "
	logMsgDBQueryFailed     = "database query execution failed"
	logMsgDBExecFailed      = "database statement execution failed"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgScanRowFailed     = "failed to scan database row"
	logMsgRowsAffectedError = "failed to get rows affected count"
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrDurationMS       = "duration_ms"

	metricQueryDuration = "librarystore_query_duration"
	metricQueryErrors   = "librarystore_query_errors"
	labelAction         = "action"
)

// Logger interface for SQL query logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic
// trace correlation. Preferred over Logger when both are configured.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting store performance metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
}

// DB bundles a database adapter with the store configuration. BookStore and
// LoanStore share one DB so that a deployment configures the connection,
// table names and observability exactly once.
type DB struct {
	adapter          adapters.Adapter
	booksTableName   string
	loansTableName   string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
}

// Option defines a functional option for configuring a DB.
type Option func(*DB) error

// WithBooksTableName overrides the table name for book records.
func WithBooksTableName(tableName string) Option {
	return func(db *DB) error {
		if tableName == "" {
			return ErrEmptyTableNameSupplied
		}

		db.booksTableName = tableName

		return nil
	}
}

// WithLoansTableName overrides the table name for loan records.
func WithLoansTableName(tableName string) Option {
	return func(db *DB) error {
		if tableName == "" {
			return ErrEmptyTableNameSupplied
		}

		db.loansTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the stores.
//
// Debug level: SQL queries with execution timing (development use)
// Warn level: non-critical issues like cleanup failures
// Error level: failures that cause operation errors.
func WithLogger(logger Logger) Option {
	return func(db *DB) error {
		db.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the stores. Messages
// carry the request context so trace correlation works end to end.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(db *DB) error {
		db.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the stores. The collector
// receives query durations and error counts.
func WithMetrics(collector MetricsCollector) Option {
	return func(db *DB) error {
		db.metricsCollector = collector
		return nil
	}
}

// NewDBFromPGXPool creates a store DB using a pgx connection pool.
func NewDBFromPGXPool(pool *pgxpool.Pool, options ...Option) (*DB, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newDB(adapters.NewPGXAdapter(pool), options...)
}

// NewDBFromSQLDB creates a store DB using a database/sql connection.
func NewDBFromSQLDB(db *sql.DB, options ...Option) (*DB, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newDB(adapters.NewSQLAdapter(db), options...)
}

// NewDBFromSQLX creates a store DB using a sqlx connection.
func NewDBFromSQLX(db *sqlx.DB, options ...Option) (*DB, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newDB(adapters.NewSQLXAdapter(db), options...)
}

func newDB(adapter adapters.Adapter, options ...Option) (*DB, error) {
	db := &DB{
		adapter:        adapter,
		booksTableName: defaultBooksTableName,
		loansTableName: defaultLoansTableName,
	}

	for _, option := range options {
		if err := option(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// queryRows executes the SQL query with timing, logging and metrics.
func (db *DB) queryRows(ctx context.Context, action string, sqlQuery string) (adapters.Rows, error) {
	start := time.Now()
	rows, queryErr := db.adapter.Query(ctx, sqlQuery)
	duration := time.Since(start)
	db.observeQuery(ctx, action, sqlQuery, duration)

	if queryErr != nil {
		db.logError(ctx, logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		db.countError(action)

		return nil, errors.Join(ErrQueryingStoreFailed, queryErr)
	}

	return rows, nil
}

// exec executes the SQL statement and returns the number of affected rows.
func (db *DB) exec(ctx context.Context, action string, sqlQuery string) (int64, error) {
	start := time.Now()
	result, execErr := db.adapter.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	db.observeQuery(ctx, action, sqlQuery, duration)

	if execErr != nil {
		db.logError(ctx, logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		db.countError(action)

		return 0, errors.Join(ErrExecutingStoreFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		db.logError(ctx, logMsgRowsAffectedError, logAttrError, rowsAffectedErr.Error())

		return 0, errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (db *DB) closeRows(ctx context.Context, rows adapters.Rows) {
	if closeErr := rows.Close(); closeErr != nil {
		db.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (db *DB) observeQuery(ctx context.Context, action string, sqlQuery string, duration time.Duration) {
	db.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)

	if db.metricsCollector != nil {
		db.metricsCollector.RecordDuration(metricQueryDuration, duration, map[string]string{labelAction: action})
	}
}

func (db *DB) countError(action string) {
	if db.metricsCollector != nil {
		db.metricsCollector.IncrementCounter(metricQueryErrors, map[string]string{labelAction: action})
	}
}

func (db *DB) logDebug(ctx context.Context, msg string, args ...any) {
	switch {
	case db.contextualLogger != nil:
		db.contextualLogger.DebugContext(ctx, msg, args...)
	case db.logger != nil:
		db.logger.Debug(msg, args...)
	}
}

func (db *DB) logWarn(ctx context.Context, msg string, args ...any) {
	switch {
	case db.contextualLogger != nil:
		db.contextualLogger.WarnContext(ctx, msg, args...)
	case db.logger != nil:
		db.logger.Warn(msg, args...)
	}
}

func (db *DB) logError(ctx context.Context, msg string, args ...any) {
	switch {
	case db.contextualLogger != nil:
		db.contextualLogger.ErrorContext(ctx, msg, args...)
	case db.logger != nil:
		db.logger.Error(msg, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds
// with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
