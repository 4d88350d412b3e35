// Package postgres implements the book and loan stores on PostgreSQL.
//
// SQL is built with goqu and executed through a small adapter interface,
// so the stores run unchanged on a pgxpool.Pool, a sql.DB (lib/pq) or a
// sqlx.DB connection. Functional options configure table names, logging
// and metrics collection.
package postgres
