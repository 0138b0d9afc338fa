package domain

import (
	"encoding/json"
	"fmt"

	"marketplace/internal/repository/sqlite"
)

// SessionMapper handles conversion between the domain session and its
// persisted storage entry.
type SessionMapper struct{}

// NewSessionMapper creates a new SessionMapper instance.
func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// ToStorage converts a persisted session document into a storage entry.
func (m *SessionMapper) ToStorage(session PersistedSession) (*sqlite.StorageEntry, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return &sqlite.StorageEntry{
		Key:   SessionStorageKey,
		Value: string(data),
	}, nil
}

// FromStorage decodes a storage entry into a persisted session document.
func (m *SessionMapper) FromStorage(entry *sqlite.StorageEntry) (PersistedSession, error) {
	var session PersistedSession
	if entry == nil {
		return session, fmt.Errorf("decode session: nil entry")
	}
	if err := json.Unmarshal([]byte(entry.Value), &session); err != nil {
		return PersistedSession{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

// Mapper provides access to all domain mappers.
type Mapper struct {
	Session *SessionMapper
}

// NewMapper creates a new Mapper with all sub-mappers initialized.
func NewMapper() *Mapper {
	return &Mapper{
		Session: NewSessionMapper(),
	}
}
