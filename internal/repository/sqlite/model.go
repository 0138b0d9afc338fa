package sqlite

import "time"

// StorageEntry is one named value in the local key/value store.
// Value holds a JSON document owned by the caller.
type StorageEntry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
