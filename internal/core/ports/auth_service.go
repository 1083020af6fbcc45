package ports

import (
	"context"

	"github.com/jobzen/identity-service/internal/core/domain"
)

// ExternalIdentity is the canonical profile shape every OAuth provider
// adapter normalises into before handing it to the auth engine.
type ExternalIdentity struct {
	Email      string
	Provider   string
	ProviderID string
	FirstName  string
	LastName   string
	AvatarURL  string
}

// RegisterInput carries all data needed to create a new account.
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Role      string
	Phone     string
	FirstName string
	LastName  string
}

// AuthResult is returned by operations that establish a session.
// User is always sanitised.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthService is the authentication engine exposed to the transport layer.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	// OAuthLogin reconciles an external identity against the store
	// (creating or re-linking the account as needed) and logs it in.
	OAuthLogin(ctx context.Context, identity ExternalIdentity) (*AuthResult, error)
	// ForgotPassword returns the same acknowledgement message whether or
	// not the email exists.
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

// Notifier sends outbound email on behalf of the auth engine.
type Notifier interface {
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}

// ResetTokenGuard atomically marks a reset token as consumed so that two
// racing reset requests cannot both succeed with the same token.
type ResetTokenGuard interface {
	// Consume returns true for the first caller to consume the token.
	Consume(ctx context.Context, token string) (bool, error)
}
