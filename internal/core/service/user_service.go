package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobzen/identity-service/internal/core/domain"
	"github.com/jobzen/identity-service/internal/core/ports"
)

type userService struct {
	users ports.UserRepository
	audit ports.AuditSink
	log   zerolog.Logger
}

// NewUserService returns the account management service, including the
// employer/managed-user access-control rules.
func NewUserService(users ports.UserRepository, audit ports.AuditSink, log zerolog.Logger) ports.UserService {
	return &userService{users: users, audit: audit, log: log}
}

func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

// CreateManaged provisions an account owned by the caller. The stored role
// is client only when client was asked for; every other requested role,
// including none, becomes worker. This asymmetry is long-standing observed
// behaviour and is pinned by tests.
func (s *userService) CreateManaged(ctx context.Context, caller ports.Caller, input ports.RegisterInput) (*domain.User, error) {
	if caller.Role != domain.RoleEmployer {
		return nil, domain.ErrUnauthorized
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := domain.RoleWorker
	if input.Role == domain.RoleClient {
		role = domain.RoleClient
	}

	created, err := s.users.Create(ctx, &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		Name:         input.Name,
		Phone:        input.Phone,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		CreatedByID:  caller.ID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("manager_id", caller.ID).Str("user_id", created.ID).Str("role", created.Role).Msg("managed user created")
	s.record(domain.AuditManagedCreated, created.ID, created.Email)
	return created.Sanitized(), nil
}

func (s *userService) ListManaged(ctx context.Context, caller ports.Caller, role string) ([]*domain.User, error) {
	if caller.Role != domain.RoleEmployer {
		return nil, domain.ErrUnauthorized
	}

	users, err := s.users.FindManaged(ctx, caller.ID, role)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	return out, nil
}

// DeleteManaged removes a managed account. A missing target and a target
// owned by someone else report the same error so the endpoint cannot leak
// existence of accounts outside the caller's scope.
func (s *userService) DeleteManaged(ctx context.Context, caller ports.Caller, targetID string) error {
	if caller.Role != domain.RoleEmployer {
		return domain.ErrUnauthorized
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrNotFoundOrUnauthorized
		}
		return err
	}
	if target.CreatedByID != caller.ID {
		return domain.ErrNotFoundOrUnauthorized
	}

	if err := s.users.Delete(ctx, target.ID); err != nil {
		return err
	}

	s.log.Info().Str("manager_id", caller.ID).Str("user_id", target.ID).Msg("managed user deleted")
	s.record(domain.AuditManagedDeleted, target.ID, target.Email)
	return nil
}

// SetRole lets an account pick its own role, typically to complete an
// OAuth-created profile. The operation is deliberately unguarded and
// repeatable.
func (s *userService) SetRole(ctx context.Context, userID, role string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user.Sanitized(), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, patch ports.ProfilePatch) (*domain.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, patch); err != nil {
		return nil, err
	}

	updated, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return updated.Sanitized(), nil
}

func (s *userService) record(eventType, userID, email string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.AuditEventInput{
		Type:      eventType,
		UserID:    userID,
		Email:     email,
		Timestamp: time.Now().UTC(),
	})
}
