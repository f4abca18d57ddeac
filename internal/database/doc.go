// Package database implements domain.RemoteStore backed by PostgreSQL.
// It is the authoritative source of truth the on-device caches reconcile
// against; every table is scoped by the owning user id.
package database
