package fleet

import "errors"

var (
	// ErrNotFound is returned by store lookups that matched no record.
	ErrNotFound = errors.New("fleet: record not found")
)
