// Package postgres provides PostgreSQL-specific implementations of the
// storage interfaces defined in the internal/store package, along with the
// embedded schema migrations they depend on.
package postgres
