// Package pgstore implements the fleet.EventStore gateway over PostgreSQL
// using pgx. It owns the schema for users, devices, events and notification
// settings, applied through goose migrations, and exposes the pool bootstrap
// with retry used at application startup.
package pgstore
