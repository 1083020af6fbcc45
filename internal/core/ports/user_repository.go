package ports

import (
	"context"
	"time"

	"github.com/jobzen/identity-service/internal/core/domain"
)

// ProfilePatch carries optional profile fields for a partial update.
// Nil fields are left untouched. Credential and reset fields are not
// reachable through this type.
type ProfilePatch struct {
	Name      *string
	FirstName *string
	LastName  *string
	Phone     *string
	AvatarURL *string
}

// UserRepository is the persistence boundary for user accounts.
// Create must enforce email uniqueness at the storage layer and return
// domain.ErrEmailExists on a duplicate; the services' own existence checks
// are an optimisation, not the guarantee.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string) (*domain.User, error)

	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	// FindManaged returns users created by managerID, newest first.
	// An empty role applies no role filter.
	FindManaged(ctx context.Context, managerID, role string) ([]*domain.User, error)

	UpdateProvider(ctx context.Context, id, provider, providerID, avatarURL string) error
	UpdateRole(ctx context.Context, id, role string) error
	UpdateResetToken(ctx context.Context, id, token string, expires time.Time) error
	// UpdatePassword stores the new hash and clears any pending reset state.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error
}
