package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kuenkele/timetrack/internal/metrics"
	"kuenkele/timetrack/internal/models"
)

const (
	sessionIDBytes   = 32
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

// TokenVerifier checks an ID token issued by the identity provider and
// returns its subject.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (string, error)
}

type AuthOptions struct {
	SessionTTL         time.Duration
	EnableUserCreation bool
}

type AuthService struct {
	users    UserRepository
	sessions SessionRepository
	verifier TokenVerifier
	recorder metrics.Recorder
	opts     AuthOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates the service. verifier may be nil when OIDC is
// disabled; bearer tokens are then rejected.
func NewAuthService(
	users UserRepository,
	sessions SessionRepository,
	verifier TokenVerifier,
	recorder metrics.Recorder,
	opts AuthOptions,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
		now:      now,
	}
}

var errInvalidCredentials = models.Errorf(models.ErrUnauthorized, "invalid user/password")

// UserCreationEnabled reports whether CreateUser is available.
func (s *AuthService) UserCreationEnabled() bool {
	return s.opts.EnableUserCreation
}

func (s *AuthService) CreateUser(ctx context.Context, username, password string) (*models.Session, error) {
	if !s.opts.EnableUserCreation {
		return nil, models.Errorf(models.ErrNotFound, "user creation is disabled")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.Errorf(models.ErrValidation, "username must be present")
	}
	if password == "" {
		return nil, models.Errorf(models.ErrValidation, "password must be present")
	}
	if len(password) > maxPasswordBytes {
		return nil, models.Errorf(models.ErrValidation, "password must not exceed %d bytes", maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.Create(ctx, &models.User{
		ID:           username,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", username))
	return s.createSession(ctx, username)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if username == "" {
		return nil, models.Errorf(models.ErrValidation, "username must be present")
	}
	if password == "" {
		return nil, models.Errorf(models.ErrValidation, "password must be present")
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		s.recorder.Login(ctx, "password", false)
		if errors.Is(err, models.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	// OIDC-only users have no password hash.
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recorder.Login(ctx, "password", false)
		s.logger.Warn("Failed login", zap.String("user_id", username))
		return nil, errInvalidCredentials
	}

	s.recorder.Login(ctx, "password", true)
	return s.createSession(ctx, username)
}

// LoginWithToken verifies an ID token and mints a session for its subject.
func (s *AuthService) LoginWithToken(ctx context.Context, rawIDToken string) (*models.Session, error) {
	if s.verifier == nil {
		return nil, models.Errorf(models.ErrUnauthorized, "bearer tokens are not accepted")
	}
	if rawIDToken == "" {
		return nil, models.Errorf(models.ErrUnauthorized, "token must not be empty")
	}

	subject, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		s.recorder.Login(ctx, "oidc", false)
		s.logger.Warn("Rejected bearer token", zap.Error(err))
		return nil, models.Errorf(models.ErrUnauthorized, "invalid token")
	}

	if err := s.users.Ensure(ctx, subject, s.now()); err != nil {
		return nil, err
	}

	s.recorder.Login(ctx, "oidc", true)
	s.logger.Info("User authenticated via OIDC", zap.String("user_id", subject))
	return s.createSession(ctx, subject)
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return models.Errorf(models.ErrUnauthorized, "no session")
	}
	return s.sessions.Delete(ctx, sessionID)
}

// ValidateSession returns the user owning a live session.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", models.Errorf(models.ErrUnauthorized, "no session")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("Failed to delete expired session", zap.Error(err))
		}
		return "", models.Errorf(models.ErrUnauthorized, "session expired")
	}

	return session.UserID, nil
}

// CleanupExpired removes all expired sessions.
func (s *AuthService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *AuthService) createSession(ctx context.Context, userID string) (*models.Session, error) {
	if _, err := s.CleanupExpired(ctx); err != nil {
		s.logger.Warn("Failed to clean up expired sessions", zap.Error(err))
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.opts.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
