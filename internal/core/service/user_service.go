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
	"github.com/itdesk/helpdesk-api/internal/core/policy"
	"github.com/itdesk/helpdesk-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxPage          = 1_000_000
	defaultAuditSize = 50
)

// UserService implements the user-management use cases on top of the
// credential store, enforcing the field-level policy rules.
type UserService struct {
	repo  ports.UserRepository
	audit ports.AuditRepository
	log   zerolog.Logger
	now   func() time.Time
}

func NewUserService(repo ports.UserRepository, audit ports.AuditRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, audit: audit, log: log, now: time.Now}
}

// Register creates a self-service account. The role is always user.
func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if err := s.ensureUnique(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	created, err := s.insert(ctx, input.Username, input.Email, input.FullName, input.Password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	metrics.UserMutationsTotal.WithLabelValues("register").Inc()
	recordAudit(ctx, s.audit, s.log, &domain.AuditEntry{
		Action:         domain.AuditUserRegistered,
		ActorID:        created.ID,
		ActorUsername:  created.Username,
		TargetID:       created.ID,
		TargetUsername: created.Username,
		OccurredAt:     created.CreatedAt,
	})
	return created, nil
}

// Create is the administrative create. Duplicates are reported before any
// role-elevation violation.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input ports.CreateUserInput) (*domain.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	if err := s.ensureUnique(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	if err := s.checkPolicy(policy.CheckPayload, policy.Mutation{
		Action:        policy.ActionCreate,
		Actor:         actor,
		RequestedRole: &role,
	}); err != nil {
		return nil, err
	}

	created, err := s.insert(ctx, input.Username, input.Email, input.FullName, input.Password, role)
	if err != nil {
		return nil, err
	}

	metrics.UserMutationsTotal.WithLabelValues("create").Inc()
	recordAudit(ctx, s.audit, s.log, &domain.AuditEntry{
		Action:         domain.AuditUserCreated,
		ActorID:        actor.ID,
		ActorUsername:  actor.Username,
		TargetID:       created.ID,
		TargetUsername: created.Username,
		Detail:         "role=" + string(created.Role),
		OccurredAt:     created.CreatedAt,
	})
	s.log.Info().
		Str("actor", actor.Username).
		Str("username", created.Username).
		Str("role", string(created.Role)).
		Msg("user created")
	return created, nil
}

// Update applies a partial update. Order: authority, existence, email
// uniqueness, payload rules.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, input ports.UpdateUserInput) (*domain.User, error) {
	mutation := policy.Mutation{
		Action:        policy.ActionUpdate,
		Actor:         actor,
		TargetID:      id,
		RequestedRole: input.Role,
		ActiveChange:  input.IsActive != nil,
	}
	if err := s.checkPolicy(policy.CheckAuthority, mutation); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *input.Email); err != nil {
			return nil, err
		}
	}

	if err := s.checkPolicy(policy.CheckPayload, mutation); err != nil {
		return nil, err
	}

	previousRole := user.Role
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	metrics.UserMutationsTotal.WithLabelValues("update").Inc()
	entry := &domain.AuditEntry{
		Action:         domain.AuditUserUpdated,
		ActorID:        actor.ID,
		ActorUsername:  actor.Username,
		TargetID:       user.ID,
		TargetUsername: user.Username,
		OccurredAt:     user.UpdatedAt,
	}
	if user.Role != previousRole {
		entry.Action = domain.AuditRoleChanged
		entry.Detail = fmt.Sprintf("%s -> %s", previousRole, user.Role)
	}
	recordAudit(ctx, s.audit, s.log, entry)

	return user, nil
}

// Delete removes a user. Only admins may delete, and never themselves.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := s.checkPolicy(policy.CheckAuthority, policy.Mutation{
		Action:   policy.ActionDelete,
		Actor:    actor,
		TargetID: id,
	}); err != nil {
		return err
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("delete").Inc()
	recordAudit(ctx, s.audit, s.log, &domain.AuditEntry{
		Action:         domain.AuditUserDeleted,
		ActorID:        actor.ID,
		ActorUsername:  actor.Username,
		TargetID:       target.ID,
		TargetUsername: target.Username,
		OccurredAt:     s.now().UTC(),
	})
	s.log.Info().Str("actor", actor.Username).Str("username", target.Username).Msg("user deleted")
	return nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a page of users. Limit defaults to 20 and is capped at 100;
// page is clamped to [1, maxPage].
func (s *UserService) List(ctx context.Context, input ports.ListUsersInput) (*ports.ListUsersResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	users, total, err := s.repo.List(ctx, ports.ListUsersFilter{
		Role:   input.Role,
		Search: input.Search,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListUsersResult{
		Items:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Audit returns the most recent audit entries.
func (s *UserService) Audit(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditSize
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if s.audit == nil {
		return []*domain.AuditEntry{}, nil
	}
	return s.audit.Recent(ctx, limit)
}

// Bootstrap creates a user without an acting principal, for seeding. It
// reports false when the username already exists.
func (s *UserService) Bootstrap(ctx context.Context, input ports.CreateUserInput) (bool, error) {
	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if _, err := s.insert(ctx, input.Username, input.Email, input.FullName, input.Password, role); err != nil {
		return false, err
	}
	s.log.Info().Str("username", input.Username).Str("role", string(role)).Msg("seeded user")
	return true, nil
}

func (s *UserService) insert(ctx context.Context, username, email, fullName, password string, role domain.Role) (*domain.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *UserService) ensureUnique(ctx context.Context, username, email string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("check username: %w", err)
	}
	return s.ensureEmailFree(ctx, email)
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func (s *UserService) checkPolicy(check func(policy.Mutation) error, m policy.Mutation) error {
	err := check(m)
	var pe *domain.PolicyError
	if errors.As(err, &pe) {
		metrics.AuthorizationDenialsTotal.WithLabelValues(pe.Rule).Inc()
		s.log.Info().
			Str("rule", pe.Rule).
			Str("actor", m.Actor.Username).
			Str("action", string(m.Action)).
			Str("target_id", m.TargetID).
			Msg("policy rule rejected mutation")
	}
	return err
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
