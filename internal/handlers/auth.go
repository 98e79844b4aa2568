package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/audit"
	"groovetree/backend/internal/auth"
	"groovetree/backend/internal/config"
	"groovetree/backend/internal/database"
	"groovetree/backend/internal/mailer"
	"groovetree/backend/internal/middleware"
	"groovetree/backend/internal/models"
)

type AuthHandler struct {
	db     *database.DB
	cfg    *config.Config
	mailer *mailer.Mailer
}

func NewAuthHandler(db *database.DB, cfg *config.Config, m *mailer.Mailer) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, mailer: m}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type LoginResponse struct {
	User        models.User `json:"user"`
	Requires2FA bool        `json:"requires_2fa,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	var user models.User
	err = h.db.Get(&user, `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, email_verified, totp_enabled, created_at, updated_at
	`, req.Email, req.Name, passwordHash)
	if err != nil {
		if database.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Error().Err(err).Msg("failed to create user")
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, err := auth.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Account created but failed to start session")
		return
	}
	auth.SetSessionCookie(w, token, h.cfg.IsProduction())

	audit.Log(audit.EventSignup, user.ID.String(), nil)
	writeJSON(w, http.StatusCreated, LoginResponse{User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var user models.User
	err := h.db.Get(&user, `
		SELECT id, email, name, password_hash, email_verified, totp_secret, totp_enabled,
		       created_at, updated_at
		FROM users WHERE email = $1
	`, req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		audit.Log(audit.EventLoginFailed, user.ID.String(), nil)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user.TOTPEnabled && user.TOTPSecret != nil {
		if req.TOTPCode == "" {
			writeJSON(w, http.StatusOK, LoginResponse{
				Requires2FA: true,
				User:        models.User{ID: user.ID, Email: user.Email},
			})
			return
		}
		if !totp.Validate(req.TOTPCode, *user.TOTPSecret) {
			writeError(w, http.StatusUnauthorized, "Invalid 2FA code")
			return
		}
	}

	token, err := auth.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	auth.SetSessionCookie(w, token, h.cfg.IsProduction())

	user.PasswordHash = ""
	user.TOTPSecret = nil
	audit.Log(audit.EventLogin, user.ID.String(), nil)
	writeJSON(w, http.StatusOK, LoginResponse{User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cfg.IsProduction())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me resolves the current session. Anonymous callers get a null user with
// 200 rather than 401, so browsers polling session state do not log errors.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	var user models.SessionUser
	err = h.db.Get(&user, `
		SELECT u.id, u.email, u.name, u.oauth_provider, u.email_verified, u.totp_enabled,
		       u.created_at, u.updated_at, p.slug AS page_slug, p.avatar_url AS page_avatar
		FROM users u
		LEFT JOIN pages p ON p.user_id = u.id
		WHERE u.id = $1
	`, userID)
	if err != nil {
		// The user behind a valid token may have been deleted; treat the
		// session as anonymous rather than erroring.
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// ChangePassword handles password change for the current user.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userID, _ := uuid.Parse(claims.UserID)

	var currentHash string
	err := h.db.Get(&currentHash, "SELECT password_hash FROM users WHERE id = $1", userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if !auth.CheckPassword(req.CurrentPassword, currentHash) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	_, err = h.db.Exec(`
		UPDATE users SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`, newHash, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	audit.Log(audit.EventPasswordChange, claims.UserID, nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// SendVerification issues a fresh email-verification token and mails it.
func (h *AuthHandler) SendVerification(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var user models.User
	err := h.db.Get(&user, "SELECT id, email, name, email_verified FROM users WHERE id = $1", userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if user.EmailVerified {
		writeError(w, http.StatusBadRequest, "Email is already verified")
		return
	}

	token, err := auth.GenerateSecureToken(32)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create verification token")
		return
	}
	expires := time.Now().Add(24 * time.Hour)

	_, err = h.db.Exec(`
		UPDATE users SET verify_token = $1, verify_token_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`, token, expires, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to store verification token")
		writeError(w, http.StatusInternalServerError, "Failed to create verification token")
		return
	}

	if err := h.mailer.SendVerification(user.Email, user.Name, token); err != nil {
		log.Error().Err(err).Msg("failed to send verification email")
		writeError(w, http.StatusInternalServerError, "Failed to send verification email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification email sent"})
}

// VerifyEmail consumes a verification token.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var user models.User
	err := h.db.Get(&user, `
		SELECT id, verify_token_expires_at FROM users WHERE verify_token = $1
	`, req.Token)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusBadRequest, "Invalid verification token")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to verify email")
		return
	}
	if user.VerifyExpiresAt == nil || time.Now().After(*user.VerifyExpiresAt) {
		writeError(w, http.StatusBadRequest, "Verification token has expired")
		return
	}

	_, err = h.db.Exec(`
		UPDATE users SET email_verified = true, verify_token = NULL,
		       verify_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to verify email")
		return
	}

	audit.Log(audit.EventEmailVerified, user.ID.String(), nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email verified"})
}

// Setup2FA generates a new TOTP secret for the current user.
func (h *AuthHandler) Setup2FA(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Groovetree",
		AccountName: claims.Email,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to generate TOTP key")
		writeError(w, http.StatusInternalServerError, "Failed to setup 2FA")
		return
	}

	// Store secret, not enabled until the first code is verified
	_, err = h.db.Exec(`
		UPDATE users SET totp_secret = $1, updated_at = NOW()
		WHERE id = $2
	`, key.Secret(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to setup 2FA")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"url":    key.URL(),
	})
}

// Enable2FA verifies a TOTP code and enables 2FA.
func (h *AuthHandler) Enable2FA(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req struct {
		Code string `json:"code" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userID, _ := uuid.Parse(claims.UserID)

	var secret sql.NullString
	err := h.db.Get(&secret, "SELECT totp_secret FROM users WHERE id = $1", userID)
	if err != nil || !secret.Valid || secret.String == "" {
		writeError(w, http.StatusBadRequest, "2FA not set up")
		return
	}

	if !totp.Validate(req.Code, secret.String) {
		writeError(w, http.StatusBadRequest, "Invalid verification code")
		return
	}

	_, err = h.db.Exec(`
		UPDATE users SET totp_enabled = true, updated_at = NOW()
		WHERE id = $1
	`, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to enable 2FA")
		return
	}

	audit.Log(audit.Event2FAEnabled, claims.UserID, nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "2FA enabled"})
}

// Disable2FA disables 2FA after re-confirming the account password.
func (h *AuthHandler) Disable2FA(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req struct {
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	userID, _ := uuid.Parse(claims.UserID)

	var currentHash string
	err := h.db.Get(&currentHash, "SELECT password_hash FROM users WHERE id = $1", userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if !auth.CheckPassword(req.Password, currentHash) {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	_, err = h.db.Exec(`
		UPDATE users SET totp_enabled = false, totp_secret = NULL, updated_at = NOW()
		WHERE id = $1
	`, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to disable 2FA")
		return
	}

	audit.Log(audit.Event2FADisabled, claims.UserID, nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "2FA disabled"})
}
