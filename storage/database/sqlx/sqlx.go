// Package sqlxrepos provides PostgreSQL-backed repository implementations.
package sqlxrepos

const driverName = "postgres"
