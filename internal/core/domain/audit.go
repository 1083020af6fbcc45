package domain

import "time"

// Audit event types recorded by the security audit trail.
const (
	AuditLogin                  = "login"
	AuditLoginFailed            = "login_failed"
	AuditRegister               = "register"
	AuditOAuthLogin             = "oauth_login"
	AuditPasswordResetRequested = "password_reset_requested"
	AuditPasswordResetCompleted = "password_reset_completed"
	AuditManagedCreated         = "managed_created"
	AuditManagedDeleted         = "managed_deleted"
)

// AuditEvent is a single entry in the security audit trail.
type AuditEvent struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Type      string    `json:"type" bson:"type"`
	UserID    string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty"`
	Provider  string    `json:"provider,omitempty" bson:"provider,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
