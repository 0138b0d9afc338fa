package domain

import "time"

// SessionStorageKey names the single persisted entry holding the session.
const SessionStorageKey = "auth-storage"

// AuthState is the lifecycle state of the session.
type AuthState int

const (
	StateAnonymous AuthState = iota
	StateAuthenticated
	// StateExpired is transient: the session manager moves an expired
	// session back to anonymous as soon as it notices.
	StateExpired
)

func (s AuthState) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "anonymous"
	}
}

// AuthSession is a read-only snapshot of the current session.
type AuthSession struct {
	User      *User
	Token     string
	ExpiresAt time.Time
	// Error is the message of the last failed login or register attempt.
	Error string
}

// StateAt derives the lifecycle state at the given instant.
func (s AuthSession) StateAt(now time.Time) AuthState {
	if s.Token == "" {
		return StateAnonymous
	}
	if s.ExpiresAt.IsZero() || !now.Before(s.ExpiresAt) {
		return StateExpired
	}
	return StateAuthenticated
}

// IsAuthenticated is true iff a token is present and has not expired at now.
func (s AuthSession) IsAuthenticated(now time.Time) bool {
	return s.StateAt(now) == StateAuthenticated
}

// TimeUntilExpiration returns the remaining lifetime, or 0 when expired.
func (s AuthSession) TimeUntilExpiration(now time.Time) time.Duration {
	if s.Token == "" || s.ExpiresAt.IsZero() {
		return 0
	}
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// PersistedSession is the JSON document stored under SessionStorageKey.
type PersistedSession struct {
	User            *User  `json:"user"`
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}
