package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/database"
	"groovetree/backend/internal/middleware"
	"groovetree/backend/internal/models"
)

type FavoritesHandler struct {
	db *database.DB
}

func NewFavoritesHandler(db *database.DB) *FavoritesHandler {
	return &FavoritesHandler{db: db}
}

type FavoriteRequest struct {
	PageID uuid.UUID `json:"page_id" validate:"required"`
}

// Create favorites a page for the caller. The unique (user_id, page_id)
// pair plus ON CONFLICT DO NOTHING makes a repeated favorite a no-op, so
// two concurrent calls cannot produce a duplicate row.
func (h *FavoritesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.PageID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "page_id is required")
		return
	}

	var ownerID uuid.UUID
	err := h.db.Get(&ownerID, "SELECT user_id FROM pages WHERE id = $1", req.PageID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to look up page")
		writeError(w, http.StatusInternalServerError, "Failed to favorite page")
		return
	}
	if ownerID == userID {
		writeError(w, http.StatusBadRequest, "You cannot favorite your own page")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO favorite_artists (user_id, page_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, page_id) DO NOTHING
	`, userID, req.PageID)
	if err != nil {
		log.Error().Err(err).Msg("failed to favorite page")
		writeError(w, http.StatusInternalServerError, "Failed to favorite page")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"favorited": true})
}

// Check reports whether the caller has favorited the given page.
func (h *FavoritesHandler) Check(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	pageID, err := uuid.Parse(r.URL.Query().Get("pageId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "pageId is required")
		return
	}

	var count int
	if err := h.db.Get(&count, `
		SELECT COUNT(*) FROM favorite_artists WHERE user_id = $1 AND page_id = $2
	`, userID, pageID); err != nil {
		log.Error().Err(err).Msg("failed to check favorite")
		writeError(w, http.StatusInternalServerError, "Failed to check favorite")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"favorited": count > 0})
}

func (h *FavoritesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	pageID, err := uuid.Parse(r.URL.Query().Get("pageId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "pageId is required")
		return
	}

	if _, err := h.db.Exec(`
		DELETE FROM favorite_artists WHERE user_id = $1 AND page_id = $2
	`, userID, pageID); err != nil {
		log.Error().Err(err).Msg("failed to unfavorite page")
		writeError(w, http.StatusInternalServerError, "Failed to unfavorite page")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"favorited": false})
}

// List returns the caller's favorited pages, newest first.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	favorites := []models.PageSummary{}
	err := h.db.Select(&favorites, `
		SELECT p.id, p.slug, p.title, p.avatar_url, u.name AS owner_name
		FROM favorite_artists f
		JOIN pages p ON p.id = f.page_id
		JOIN users u ON u.id = p.user_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list favorites")
		writeError(w, http.StatusInternalServerError, "Failed to list favorites")
		return
	}

	writeJSON(w, http.StatusOK, favorites)
}

// Calendar aggregates upcoming events across every page the caller has
// favorited, soonest first.
func (h *FavoritesHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	events := []models.CalendarEvent{}
	err := h.db.Select(&events, `
		SELECT e.*, p.slug AS page_slug, p.title AS page_title, p.avatar_url AS page_avatar
		FROM favorite_artists f
		JOIN pages p ON p.id = f.page_id
		JOIN events e ON e.page_id = p.id
		WHERE f.user_id = $1 AND e.active AND e.event_date >= NOW()
		ORDER BY e.event_date
	`, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to build favorites calendar")
		writeError(w, http.StatusInternalServerError, "Failed to load calendar")
		return
	}

	writeJSON(w, http.StatusOK, events)
}
