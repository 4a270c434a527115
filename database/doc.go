// Package database provides connection management for MySQL, PostgreSQL and
// SQLite through Bun, along with pool configuration, health checks and
// reconnects, query hooks, SQL error classification, and versioned
// migrations for registered models.
package database
