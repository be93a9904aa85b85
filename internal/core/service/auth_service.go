package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/itdesk/helpdesk-api/internal/api/metrics"
	"github.com/itdesk/helpdesk-api/internal/core/domain"
	"github.com/itdesk/helpdesk-api/internal/core/ports"
)

// dummyHash is compared against when the username does not exist so both
// failure paths pay for one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("helpdesk-timing-equalizer"), bcrypt.DefaultCost)

// AuthService implements login and self-service registration.
type AuthService struct {
	users   ports.UserRepository
	audit   ports.AuditRepository
	limiter ports.LoginLimiter
	tokens  *TokenService
	signup  *UserService
	log     zerolog.Logger
	now     func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	audit ports.AuditRepository,
	limiter ports.LoginLimiter,
	tokens *TokenService,
	signup *UserService,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		audit:   audit,
		limiter: limiter,
		tokens:  tokens,
		signup:  signup,
		log:     log,
		now:     time.Now,
	}
}

// Authenticate verifies a username/password pair. Unknown usernames and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates, stamps last_login and issues a token. IsFirstLogin is
// computed from the stored value before it is overwritten.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allowed(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login limiter check failed, allowing attempt")
		} else if !allowed {
			metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			s.recordFailure(ctx, username)
		}
		return nil, err
	}

	if !user.IsActive {
		metrics.LoginAttemptsTotal.WithLabelValues("inactive").Inc()
		return nil, domain.ErrInactiveUser
	}

	firstLogin := user.LastLogin == nil
	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("login: update last login: %w", err)
	}
	user.LastLogin = &now

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login failures")
		}
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	recordAudit(ctx, s.audit, s.log, &domain.AuditEntry{
		Action:         domain.AuditLogin,
		ActorID:        user.ID,
		ActorUsername:  user.Username,
		TargetID:       user.ID,
		TargetUsername: user.Username,
		OccurredAt:     now,
	})

	s.log.Info().
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Bool("first_login", firstLogin).
		Msg("user logged in")

	return &ports.LoginResult{Token: token, User: user, IsFirstLogin: firstLogin}, nil
}

// Register creates a self-service account with role user.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.signup.Register(ctx, input)
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}
