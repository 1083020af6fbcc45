package ports

import (
	"context"

	"github.com/jobzen/identity-service/internal/core/domain"
)

// Caller identifies the authenticated account performing an operation.
// Always passed explicitly, never inferred from ambient state.
type Caller struct {
	ID   string
	Role string
}

// UserService exposes account management and the manager/managed-user
// access-control rules. All returned users are sanitised.
type UserService interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// CreateManaged provisions an account owned by the caller. Only
	// employers may call it; the stored role is coerced to client or
	// worker.
	CreateManaged(ctx context.Context, caller Caller, input RegisterInput) (*domain.User, error)
	// ListManaged returns the caller's managed accounts, newest first,
	// optionally filtered by role.
	ListManaged(ctx context.Context, caller Caller, role string) ([]*domain.User, error)
	// DeleteManaged removes a managed account. The target must exist and
	// be owned by the caller; the two failure causes are not
	// distinguished.
	DeleteManaged(ctx context.Context, caller Caller, targetID string) error

	SetRole(ctx context.Context, userID, role string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*domain.User, error)
}
