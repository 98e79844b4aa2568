package audit

import (
	"github.com/rs/zerolog/log"
)

// EventType represents the type of audit event
type EventType string

const (
	EventLogin          EventType = "login"
	EventLoginFailed    EventType = "login_failed"
	EventOAuthLogin     EventType = "oauth_login"
	EventSignup         EventType = "signup"
	EventPasswordChange EventType = "password_change"
	EventEmailVerified  EventType = "email_verified"
	Event2FAEnabled     EventType = "2fa_enabled"
	Event2FADisabled    EventType = "2fa_disabled"
	EventAccountDeleted EventType = "account_deleted"
	EventDataExported   EventType = "data_exported"
)

// Log records an account-security event. These go to the structured log;
// an external audit sink can pick them up by the "audit" marker.
func Log(eventType EventType, userID string, details map[string]interface{}) {
	log.Info().
		Bool("audit", true).
		Str("event", string(eventType)).
		Str("user", userID).
		Fields(details).
		Msg("audit event")
}
