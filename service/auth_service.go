package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/todo/core"
	"github.com/layer-3/todo/metrics"
	"github.com/layer-3/todo/ports"
)

// AuthService handles authentication business logic
type AuthService struct {
	users     ports.UserStore
	hasher    ports.PasswordHasher
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users ports.UserStore,
	hasher ports.PasswordHasher,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokenizer: tokenizer,
		eventPub:  eventPub,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// LoginOrRegister authenticates an existing user or, when the identifier is
// unknown, registers it with the given password. Either way a token is issued.
func (s *AuthService) LoginOrRegister(ctx context.Context, creds core.Credentials) (result core.AuthResult, err error) {
	defer func() {
		if err != nil {
			s.metrics.IncrementAuthFailure(failureReason(err))
			s.logger.WarnContext(ctx, "login-or-register failed", "identifier", creds.Identifier, "error", err)
		}
	}()

	if err := creds.Validate(); err != nil {
		return core.AuthResult{}, err
	}

	user, found, err := s.users.FindByIdentifier(ctx, creds.Identifier)
	if err != nil {
		return core.AuthResult{}, fmt.Errorf("failed to look up user: %w", err)
	}

	outcome := core.OutcomeAuthenticated
	if found {
		if err := s.authenticate(ctx, user, creds.Password); err != nil {
			return core.AuthResult{}, err
		}
	} else {
		if err := s.register(ctx, creds); err != nil {
			return core.AuthResult{}, err
		}
		outcome = core.OutcomeRegistered
	}

	token, err := s.tokenizer.Issue(creds.Identifier)
	if err != nil {
		if outcome == core.OutcomeRegistered {
			s.logger.ErrorContext(ctx, "user registered but token issuance failed", "identifier", creds.Identifier, "error", err)
		}
		return core.AuthResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	if outcome == core.OutcomeRegistered {
		s.metrics.IncrementRegistered()
	} else {
		s.metrics.IncrementLogin()
	}

	return core.AuthResult{
		Success: true,
		Message: outcomeMessage(outcome),
		Token:   &token,
		Outcome: outcome,
	}, nil
}

func (s *AuthService) authenticate(ctx context.Context, user core.StoredUser, password string) error {
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return core.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.logger.InfoContext(ctx, "password hash uses outdated cost", "identifier", user.Identifier)
	}

	return nil
}

func (s *AuthService) register(ctx context.Context, creds core.Credentials) error {
	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := core.StoredUser{
		Identifier:   creds.Identifier,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.InsertIfAbsent(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	// Registration already succeeded; a lost event must not fail the request
	if err := s.eventPub.PublishUserRegistered(ctx, creds.Identifier); err != nil {
		s.logger.WarnContext(ctx, "failed to publish registration event", "identifier", creds.Identifier, "error", err)
	}

	return nil
}

// ValidateToken returns the identifier a bearer token was issued for
func (s *AuthService) ValidateToken(ctx context.Context, token string) (string, error) {
	identifier, err := s.tokenizer.Verify(token)
	if err != nil {
		s.metrics.IncrementTokenRejection(rejectionReason(err))
		s.logger.DebugContext(ctx, "token rejected", "error", err)
		return "", err
	}
	return identifier, nil
}

func outcomeMessage(o core.AuthOutcome) string {
	if o == core.OutcomeRegistered {
		return "User registered successfully"
	}
	return "Login successful"
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, core.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, core.ErrDuplicateKey):
		return "duplicate"
	default:
		return "internal"
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, core.ErrTokenMissing):
		return "missing"
	case errors.Is(err, core.ErrTokenExpired):
		return "expired"
	default:
		return "malformed"
	}
}
