package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/audit"
	"groovetree/backend/internal/auth"
	"groovetree/backend/internal/config"
	"groovetree/backend/internal/database"
	"groovetree/backend/internal/middleware"
	"groovetree/backend/internal/models"
)

type UsersHandler struct {
	db  *database.DB
	cfg *config.Config
}

func NewUsersHandler(db *database.DB, cfg *config.Config) *UsersHandler {
	return &UsersHandler{db: db, cfg: cfg}
}

type ExportData struct {
	User      models.User          `json:"user"`
	Page      *models.Page         `json:"page,omitempty"`
	Links     []models.Link        `json:"links"`
	Events    []models.Event       `json:"events"`
	Photos    []models.Photo       `json:"photos"`
	Favorites []models.PageSummary `json:"favorites"`
}

// Export returns everything the platform stores about the caller. The
// password hash and TOTP secret never leave the server (their json tags
// drop them).
func (h *UsersHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var out ExportData
	err := h.db.Get(&out.User, "SELECT * FROM users WHERE id = $1", userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var page models.Page
	err = h.db.Get(&page, "SELECT * FROM pages WHERE user_id = $1", userID)
	if err == nil {
		out.Page = &page
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Error().Err(err).Msg("failed to export page")
		writeError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}

	out.Links = []models.Link{}
	out.Events = []models.Event{}
	out.Photos = []models.Photo{}
	out.Favorites = []models.PageSummary{}

	if out.Page != nil {
		if err := h.db.Select(&out.Links,
			"SELECT * FROM links WHERE page_id = $1 ORDER BY position", page.ID); err != nil {
			log.Error().Err(err).Msg("failed to export links")
			writeError(w, http.StatusInternalServerError, "Failed to export data")
			return
		}
		if err := h.db.Select(&out.Events,
			"SELECT * FROM events WHERE page_id = $1 ORDER BY event_date", page.ID); err != nil {
			log.Error().Err(err).Msg("failed to export events")
			writeError(w, http.StatusInternalServerError, "Failed to export data")
			return
		}
		if err := h.db.Select(&out.Photos,
			"SELECT * FROM photos WHERE page_id = $1 ORDER BY position", page.ID); err != nil {
			log.Error().Err(err).Msg("failed to export photos")
			writeError(w, http.StatusInternalServerError, "Failed to export data")
			return
		}
	}

	if err := h.db.Select(&out.Favorites, `
		SELECT p.id, p.slug, p.title, p.avatar_url, u.name AS owner_name
		FROM favorite_artists f
		JOIN pages p ON p.id = f.page_id
		JOIN users u ON u.id = p.user_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`, userID); err != nil {
		log.Error().Err(err).Msg("failed to export favorites")
		writeError(w, http.StatusInternalServerError, "Failed to export data")
		return
	}

	audit.Log(audit.EventDataExported, claims.UserID, nil)

	w.Header().Set("Content-Disposition", `attachment; filename="groovetree-export.json"`)
	writeJSON(w, http.StatusOK, out)
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Delete removes the account after re-confirmation: the password for local
// accounts, or the account email for OAuth-only accounts with an unusable
// password. Children are deleted in dependency order inside one
// transaction before the page and finally the user.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	var user models.User
	err := h.db.Get(&user, `
		SELECT id, email, password_hash, oauth_provider FROM users WHERE id = $1
	`, userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	if user.OAuthProvider != nil && req.Password == "" {
		if req.Email != user.Email {
			writeError(w, http.StatusUnauthorized, "Email confirmation does not match")
			return
		}
	} else if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	defer tx.Rollback()

	// Children first, then the page, then the user.
	steps := []string{
		`DELETE FROM links WHERE page_id IN (SELECT id FROM pages WHERE user_id = $1)`,
		`DELETE FROM events WHERE page_id IN (SELECT id FROM pages WHERE user_id = $1)`,
		`DELETE FROM photos WHERE page_id IN (SELECT id FROM pages WHERE user_id = $1)`,
		`DELETE FROM page_views WHERE page_id IN (SELECT id FROM pages WHERE user_id = $1)`,
		`DELETE FROM share_events WHERE page_id IN (SELECT id FROM pages WHERE user_id = $1)`,
		`DELETE FROM favorite_artists WHERE page_id IN (SELECT id FROM pages WHERE user_id = $1)`,
		`DELETE FROM favorite_artists WHERE user_id = $1`,
		`DELETE FROM pages WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	}
	for _, q := range steps {
		if _, err := tx.Exec(q, userID); err != nil {
			log.Error().Err(err).Msg("failed to delete account")
			writeError(w, http.StatusInternalServerError, "Failed to delete account")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	auth.ClearSessionCookie(w, h.cfg.IsProduction())
	audit.Log(audit.EventAccountDeleted, claims.UserID, nil)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
