package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jobzen/identity-service/internal/core/domain"
	"github.com/jobzen/identity-service/internal/core/ports"
)

const resetTokenTTL = time.Hour

// ForgotPasswordMessage is returned for every forgot-password request,
// whether or not the email exists. The two branches must stay
// byte-identical so the endpoint cannot be used to enumerate accounts.
const ForgotPasswordMessage = "If a user with this email exists, a password reset link has been sent."

// ResetPasswordMessage acknowledges a completed password reset. No session
// token is issued; the user logs in again with the new password.
const ResetPasswordMessage = "Password has been reset successfully"

type authService struct {
	users    ports.UserRepository
	tokens   *TokenIssuer
	notifier ports.Notifier
	guard    ports.ResetTokenGuard
	audit    ports.AuditSink
	log      zerolog.Logger
}

// NewAuthService returns the authentication engine. guard and audit are
// optional; nil disables the corresponding behaviour.
func NewAuthService(
	users ports.UserRepository,
	tokens *TokenIssuer,
	notifier ports.Notifier,
	guard ports.ResetTokenGuard,
	audit ports.AuditSink,
	log zerolog.Logger,
) ports.AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		guard:    guard,
		audit:    audit,
		log:      log,
	}
}

// Login verifies a local email/password credential and issues a session
// token. Unknown email, missing password hash, and wrong password all
// collapse into ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record(domain.AuditLoginFailed, "", email, "")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		s.record(domain.AuditLoginFailed, user.ID, email, "")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.session(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	s.record(domain.AuditLogin, user.ID, email, "")
	return result, nil
}

// Register creates a new local account. The storage layer's unique email
// index is the real duplicate guard; the pre-check here only short-circuits
// the common case.
func (s *authService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
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
	})
	if err != nil {
		return nil, err
	}

	result, err := s.session(created)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	s.record(domain.AuditRegister, created.ID, created.Email, "")
	return result, nil
}

// OAuthLogin reconciles a normalised external identity and issues a session
// token. A known account with a different (or missing) stored provider is
// re-linked to the incoming one: last provider wins. This path never checks
// a password.
func (s *authService) OAuthLogin(ctx context.Context, identity ports.ExternalIdentity) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if user.Provider == "" || user.Provider != identity.Provider {
			if err := s.users.UpdateProvider(ctx, user.ID, identity.Provider, identity.ProviderID, identity.AvatarURL); err != nil {
				return nil, err
			}
			user.Provider = identity.Provider
			user.ProviderID = identity.ProviderID
			user.AvatarURL = identity.AvatarURL
		}
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.createFromIdentity(ctx, identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	result, err := s.session(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("provider", identity.Provider).Msg("oauth login")
	s.record(domain.AuditOAuthLogin, user.ID, user.Email, identity.Provider)
	return result, nil
}

func (s *authService) createFromIdentity(ctx context.Context, identity ports.ExternalIdentity) (*domain.User, error) {
	created, err := s.users.Create(ctx, &domain.User{
		Email:      identity.Email,
		Role:       domain.RoleUnassigned,
		Name:       identity.FirstName + " " + identity.LastName,
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		Provider:   identity.Provider,
		ProviderID: identity.ProviderID,
		AvatarURL:  identity.AvatarURL,
		IsActive:   true,
	})
	if err == nil {
		return created, nil
	}
	// A concurrent reconcile for the same email may have won the insert
	// race; fall back to the existing account.
	if errors.Is(err, domain.ErrEmailExists) {
		return s.users.FindByEmail(ctx, identity.Email)
	}
	return nil, err
}

// ForgotPassword starts the reset lifecycle. A fresh token overwrites any
// pending one, implicitly invalidating it. Delivery failure from the
// notifier propagates; a missing account does not.
func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ForgotPasswordMessage, nil
		}
		return "", err
	}

	token := uuid.NewString()
	expires := time.Now().Add(resetTokenTTL)
	if err := s.users.UpdateResetToken(ctx, user.ID, token, expires); err != nil {
		return "", err
	}

	if err := s.notifier.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("password reset email failed")
		return "", fmt.Errorf("%w: %v", domain.ErrMailDelivery, err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset email sent")
	s.record(domain.AuditPasswordResetRequested, user.ID, user.Email, "")
	return ForgotPasswordMessage, nil
}

// ResetPassword consumes a reset token and rewrites the credential. The
// token is single-use: completing the reset clears it along with its expiry.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidResetToken
		}
		return "", err
	}
	if user.ResetExpires.Before(time.Now()) {
		return "", domain.ErrInvalidResetToken
	}

	if s.guard != nil {
		ok, err := s.guard.Consume(ctx, token)
		if err != nil {
			s.log.Warn().Err(err).Msg("reset token guard unavailable, proceeding")
		} else if !ok {
			return "", domain.ErrInvalidResetToken
		}
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	s.record(domain.AuditPasswordResetCompleted, user.ID, user.Email, "")
	return ResetPasswordMessage, nil
}

func (s *authService) session(user *domain.User) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user.Sanitized()}, nil
}

func (s *authService) record(eventType, userID, email, provider string) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.AuditEventInput{
		Type:      eventType,
		UserID:    userID,
		Email:     email,
		Provider:  provider,
		Timestamp: time.Now().UTC(),
	})
}
