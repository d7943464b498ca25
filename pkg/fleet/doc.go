// Package fleet defines the domain model of the fleet-tracking platform as
// seen by the notification engine: devices, their users, tracked events and
// per-user notification settings.
//
// The package also defines the EventStore gateway through which the engine
// reads events and users and commits delivery acknowledgments, together with
// a MemoryStore implementation suitable for tests and development. Production
// deployments use the pgstore package, which implements the same gateway over
// PostgreSQL.
package fleet
