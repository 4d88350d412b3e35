package postgres

import "errors"

var (
	ErrNilDatabaseConnection     = errors.New("nil database connection supplied")
	ErrEmptyTableNameSupplied    = errors.New("empty table name supplied")
	ErrBuildingQueryFailed       = errors.New("building query failed")
	ErrQueryingStoreFailed       = errors.New("querying store failed")
	ErrExecutingStoreFailed      = errors.New("executing store statement failed")
	ErrScanningDBRowFailed       = errors.New("scanning database row failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected count failed")
)
