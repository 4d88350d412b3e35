// Package adapters abstracts the concrete database client used by the
// Postgres stores. Three implementations exist: pgxpool.Pool, sql.DB and
// sqlx.DB, so that the stores work unchanged regardless of which driver
// the deployment prefers.
package adapters
