package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/errors"
	"marketplace/internal/logging"
	"marketplace/internal/repository/sqlite"
	"marketplace/internal/validation"
)

// DefaultExpiryCheckInterval is how often the expiry watcher checks the token.
const DefaultExpiryCheckInterval = 5 * time.Minute

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	// mu guards session for readers; writeMu serializes writers so that the
	// in-memory state and the persisted entry change together.
	mu      sync.RWMutex
	writeMu sync.Mutex
	session domain.AuthSession

	backend   AuthBackend
	repo      sqlite.Repository
	mapper    *domain.Mapper
	validator *validation.AuthValidator
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates a new AuthService instance in the anonymous state.
// Call Rehydrate to restore a persisted session.
func NewAuthService(backend AuthBackend, repo sqlite.Repository, logger *slog.Logger) AuthService {
	return newAuthService(backend, repo, logger, time.Now)
}

func newAuthService(backend AuthBackend, repo sqlite.Repository, logger *slog.Logger, now func() time.Time) *authServiceImpl {
	return &authServiceImpl{
		backend:   backend,
		repo:      repo,
		mapper:    domain.NewMapper(),
		validator: validation.NewAuthValidator(),
		logger:    logging.OrDiscard(logger).With("component", "auth_service"),
		now:       now,
	}
}

// Login validates the credentials locally, then exchanges them for a token
func (s *authServiceImpl) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := s.validator.ValidateCredentials(creds); err != nil {
		return nil, s.failAttempt(ctx, "login", validationAppError(err), false)
	}

	s.ClearError()
	result, err := s.backend.Login(ctx, creds)
	if err != nil {
		return nil, s.failAttempt(ctx, "login", err, true)
	}
	return s.establish(ctx, "login", result.User, result.Token)
}

// Register validates the form locally, then creates the account
func (s *authServiceImpl) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.FullName = strings.TrimSpace(reg.FullName)
	if err := s.validator.ValidateRegistration(reg); err != nil {
		return nil, s.failAttempt(ctx, "register", validationAppError(err), false)
	}

	s.ClearError()
	result, err := s.backend.Register(ctx, reg)
	if err != nil {
		return nil, s.failAttempt(ctx, "register", err, true)
	}
	return s.establish(ctx, "register", result.User, result.Token)
}

// establish moves the session to authenticated and persists it
func (s *authServiceImpl) establish(ctx context.Context, operation string, user domain.User, token string) (*domain.User, error) {
	expiresAt, ok := DecodeTokenExpiration(token)
	if !ok || !s.now().Before(expiresAt) {
		return nil, s.failAttempt(ctx, operation, errors.NewAuthError("server returned an invalid or expired token"), true)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.session = domain.AuthSession{User: &user, Token: token, ExpiresAt: expiresAt}
	s.mu.Unlock()

	if err := s.persist(ctx, domain.PersistedSession{User: &user, Token: token, IsAuthenticated: true}); err != nil {
		// The in-memory session stays valid; it just won't survive a restart.
		s.logger.Error("failed to persist session", "operation", operation, "error", err)
	}

	s.logger.Info("session established",
		"operation", operation,
		"user_id", user.ID,
		"role", user.Role,
		"expires_at", expiresAt)

	u := user
	return &u, nil
}

// failAttempt records a login or register failure on the session. When the
// attempt reached the server, any previous session is dropped as well.
func (s *authServiceImpl) failAttempt(ctx context.Context, operation string, err error, reset bool) error {
	msg := attemptMessage(err)

	if reset {
		if clearErr := s.clear(ctx, operation+" failed"); clearErr != nil {
			s.logger.Error("failed to clear session after failed attempt", "operation", operation, "error", clearErr)
		}
	}

	s.mu.Lock()
	s.session.Error = msg
	s.mu.Unlock()

	if errors.ShouldLogError(err) {
		s.logger.Error("authentication attempt failed", "operation", operation, "error", err)
	} else {
		s.logger.Debug("authentication attempt rejected", "operation", operation, "error", err)
	}
	return err
}

// attemptMessage prefers the server's own message for rejected credentials
func attemptMessage(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		switch appErr.Type {
		case errors.ErrorTypeAuth, errors.ErrorTypeAPI, errors.ErrorTypeForbidden, errors.ErrorTypeValidation:
			if appErr.Message != "" {
				return appErr.Message
			}
		}
	}
	return errors.GetUserMessage(err)
}

func validationAppError(err error) *errors.AppError {
	msg := err.Error()
	if ve, ok := err.(*validation.ValidationError); ok {
		msg = ve.GetUserFriendlyMessage()
	}
	return errors.NewValidationError(msg, err)
}

// Logout clears the in-memory and persisted session. Calling it while
// anonymous is a no-op.
func (s *authServiceImpl) Logout(ctx context.Context) error {
	return s.clear(ctx, "logout")
}

// HandleUnauthorized is called by the HTTP client on any 401 response
func (s *authServiceImpl) HandleUnauthorized(ctx context.Context) {
	if err := s.clear(ctx, "unauthorized response"); err != nil {
		s.logger.Error("failed to clear session after unauthorized response", "error", err)
	}
}

// clear resets the session to anonymous and removes the persisted entry
func (s *authServiceImpl) clear(ctx context.Context, reason string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.clearLocked(ctx, reason)
}

// evictToken clears the session only while it still holds token. A session
// established after the caller looked at it is left alone.
func (s *authServiceImpl) evictToken(ctx context.Context, reason, token string) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	current := s.session.Token
	s.mu.RUnlock()

	if current != token {
		s.logger.Debug("session replaced before eviction", "reason", reason)
		return false, nil
	}
	return true, s.clearLocked(ctx, reason)
}

// clearLocked requires writeMu
func (s *authServiceImpl) clearLocked(ctx context.Context, reason string) error {
	s.mu.Lock()
	hadToken := s.session.Token != ""
	userID := int64(0)
	if s.session.User != nil {
		userID = s.session.User.ID
	}
	s.session = domain.AuthSession{}
	s.mu.Unlock()

	if err := s.repo.DeleteEntry(ctx, domain.SessionStorageKey); err != nil && !errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return err
	}

	if hadToken {
		s.logger.Info("session cleared", "reason", reason, "user_id", userID)
	}
	return nil
}

// Rehydrate restores the persisted session. An expired or undecodable token
// leaves the session anonymous and removes the persisted entry, so an
// expired session is never observable as authenticated.
func (s *authServiceImpl) Rehydrate(ctx context.Context) error {
	entry, err := s.repo.GetEntry(ctx, domain.SessionStorageKey)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil
		}
		return err
	}

	persisted, err := s.mapper.Session.FromStorage(entry)
	if err != nil {
		s.logger.Warn("discarding unreadable persisted session", "error", err)
		return s.clear(ctx, "unreadable persisted session")
	}

	if persisted.Token == "" || persisted.User == nil || !persisted.IsAuthenticated {
		return s.clear(ctx, "incomplete persisted session")
	}

	expiresAt, ok := DecodeTokenExpiration(persisted.Token)
	if !ok || !s.now().Before(expiresAt) {
		s.logger.Info("persisted session expired", "user_id", persisted.User.ID)
		return s.clear(ctx, "persisted token expired")
	}

	s.writeMu.Lock()
	s.mu.Lock()
	s.session = domain.AuthSession{User: persisted.User, Token: persisted.Token, ExpiresAt: expiresAt}
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.logger.Debug("session rehydrated", "user_id", persisted.User.ID, "expires_at", expiresAt)
	return nil
}

// CheckExpiration forces a logout when the token has expired. It reports
// whether the session was evicted.
func (s *authServiceImpl) CheckExpiration(ctx context.Context) (bool, error) {
	s.mu.RLock()
	state := s.session.StateAt(s.now())
	token := s.session.Token
	s.mu.RUnlock()

	if state != domain.StateExpired {
		return false, nil
	}
	return s.evictToken(ctx, "token expired", token)
}

// BearerToken returns the token to attach to an outgoing request. A token
// already known to be expired evicts the session instead of being sent.
func (s *authServiceImpl) BearerToken() (string, bool) {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()

	switch session.StateAt(s.now()) {
	case domain.StateAuthenticated:
		return session.Token, true
	case domain.StateExpired:
		if _, err := s.evictToken(context.Background(), "token expired", session.Token); err != nil {
			s.logger.Error("failed to clear expired session", "error", err)
		}
	}
	return "", false
}

// Session returns a copy of the current session
func (s *authServiceImpl) Session() domain.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session := s.session
	if session.User != nil {
		u := *session.User
		session.User = &u
	}
	return session
}

func (s *authServiceImpl) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated(s.now())
}

// CurrentUser returns the authenticated user, or nil
func (s *authServiceImpl) CurrentUser() *domain.User {
	session := s.Session()
	if !session.IsAuthenticated(s.now()) {
		return nil
	}
	return session.User
}

func (s *authServiceImpl) TimeUntilExpiration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.TimeUntilExpiration(s.now())
}

// ClearError drops the message of the last failed attempt
func (s *authServiceImpl) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Error = ""
}

// persist writes the session document under the session storage key
func (s *authServiceImpl) persist(ctx context.Context, session domain.PersistedSession) error {
	entry, err := s.mapper.Session.ToStorage(session)
	if err != nil {
		return errors.NewStorageError("encode session", err)
	}
	return s.repo.PutEntry(ctx, entry)
}
