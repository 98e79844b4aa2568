package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Name            string     `db:"name" json:"name"`
	OAuthProvider   *string    `db:"oauth_provider" json:"oauth_provider,omitempty"`
	OAuthProviderID *string    `db:"oauth_provider_id" json:"-"`
	EmailVerified   bool       `db:"email_verified" json:"email_verified"`
	VerifyToken     *string    `db:"verify_token" json:"-"`
	VerifyExpiresAt *time.Time `db:"verify_token_expires_at" json:"-"`
	TOTPSecret      *string    `db:"totp_secret" json:"-"`
	TOTPEnabled     bool       `db:"totp_enabled" json:"totp_enabled"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// SessionUser is the shape returned by /api/auth/me: the user plus the
// page slug and avatar, fetched in one query for client convenience.
type SessionUser struct {
	User
	PageSlug   *string `db:"page_slug" json:"page_slug,omitempty"`
	PageAvatar *string `db:"page_avatar" json:"page_avatar,omitempty"`
}
