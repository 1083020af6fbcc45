package domain

import (
	"errors"
	"time"
)

// Roles supported by the platform. Self-registered users default to
// RoleClient; users created through an OAuth provider start as
// RoleUnassigned until they complete their profile.
const (
	RoleAdmin      = "admin"
	RolePartner    = "partner"
	RoleEmployer   = "employer"
	RoleClient     = "client"
	RoleWorker     = "worker"
	RoleUnassigned = "unassigned"
)

// ValidRole reports whether role is one of the recognised role names.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RolePartner, RoleEmployer, RoleClient, RoleWorker, RoleUnassigned:
		return true
	}
	return false
}

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailExists            = errors.New("email already exists")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidResetToken      = errors.New("invalid or expired password reset token")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrNotFoundOrUnauthorized = errors.New("user not found or not authorized")
	ErrMailDelivery           = errors.New("mail delivery failed")
)

// User models an account. Credential and reset fields are never serialised;
// Sanitized additionally blanks them so copies handed to the transport layer
// carry no secrets even through non-JSON paths.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider,omitempty"`
	ProviderID   string    `json:"provider_id,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	ResetToken   string    `json:"-"`
	ResetExpires time.Time `json:"-"`
	Role         string    `json:"role"`
	Name         string    `json:"name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedByID  string    `json:"created_by_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy of the user with the password hash and reset
// state removed.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	clone.ResetToken = ""
	clone.ResetExpires = time.Time{}
	return &clone
}
