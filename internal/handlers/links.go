package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/database"
	"groovetree/backend/internal/embed"
	"groovetree/backend/internal/middleware"
	"groovetree/backend/internal/models"
)

type LinksHandler struct {
	db *database.DB
}

func NewLinksHandler(db *database.DB) *LinksHandler {
	return &LinksHandler{db: db}
}

// pageIDForUser resolves the caller's page, or reports (uuid.Nil, false)
// when there is none.
func pageIDForUser(db *database.DB, userID uuid.UUID) (uuid.UUID, bool) {
	var pageID uuid.UUID
	err := db.Get(&pageID, "SELECT id FROM pages WHERE user_id = $1", userID)
	if err != nil {
		return uuid.Nil, false
	}
	return pageID, true
}

type CreateLinkRequest struct {
	Title    string `json:"title" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
	Platform string `json:"platform" validate:"required"`
}

func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	platform := embed.Platform(req.Platform)
	if !platform.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown platform type")
		return
	}

	pageID, ok := pageIDForUser(h.db, userID)
	if !ok {
		writeError(w, http.StatusNotFound, "You have no page yet")
		return
	}

	var embedURL *string
	if converted, ok := embed.ConvertToEmbed(req.URL, platform); ok {
		embedURL = &converted
	}

	// Display order is a plain integer sequence: next slot is max+1.
	var link models.Link
	err := h.db.Get(&link, `
		INSERT INTO links (page_id, title, url, embed_url, platform, position)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM links WHERE page_id = $1))
		RETURNING *
	`, pageID, req.Title, req.URL, embedURL, platform)
	if err != nil {
		log.Error().Err(err).Msg("failed to create link")
		writeError(w, http.StatusInternalServerError, "Failed to create link")
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

type UpdateLinkRequest struct {
	Title    *string `json:"title"`
	URL      *string `json:"url"`
	Platform *string `json:"platform"`
	Active   *bool   `json:"active"`
}

func (h *LinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	linkID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid link ID")
		return
	}

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	// Ownership goes through the page join. A link that exists but belongs
	// to someone else is reported as not found.
	var link models.Link
	err = h.db.Get(&link, `
		SELECT l.* FROM links l
		JOIN pages p ON p.id = l.page_id
		WHERE l.id = $1 AND p.user_id = $2
	`, linkID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Link not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load link")
		writeError(w, http.StatusInternalServerError, "Failed to update link")
		return
	}

	if req.Title != nil {
		link.Title = *req.Title
	}
	if req.URL != nil {
		link.URL = *req.URL
	}
	if req.Platform != nil {
		platform := embed.Platform(*req.Platform)
		if !platform.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown platform type")
			return
		}
		link.Platform = platform
	}
	if req.Active != nil {
		link.Active = *req.Active
	}

	// Re-derive the embed whenever URL or platform may have changed.
	link.EmbedURL = nil
	if converted, ok := embed.ConvertToEmbed(link.URL, link.Platform); ok {
		link.EmbedURL = &converted
	}

	err = h.db.Get(&link, `
		UPDATE links SET title = $1, url = $2, embed_url = $3, platform = $4,
		       active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING *
	`, link.Title, link.URL, link.EmbedURL, link.Platform, link.Active, linkID)
	if err != nil {
		log.Error().Err(err).Msg("failed to update link")
		writeError(w, http.StatusInternalServerError, "Failed to update link")
		return
	}

	writeJSON(w, http.StatusOK, link)
}

func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	linkID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid link ID")
		return
	}

	res, err := h.db.Exec(`
		DELETE FROM links l
		USING pages p
		WHERE l.id = $1 AND p.id = l.page_id AND p.user_id = $2
	`, linkID, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete link")
		writeError(w, http.StatusInternalServerError, "Failed to delete link")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Link not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type ReorderRequest struct {
	LinkIDs []uuid.UUID `json:"link_ids" validate:"required,min=1"`
}

// Reorder renumbers the caller's links to match the given id order.
func (h *LinksHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	pageID, ok := pageIDForUser(h.db, userID)
	if !ok {
		writeError(w, http.StatusNotFound, "You have no page yet")
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reorder links")
		return
	}
	defer tx.Rollback()

	for i, id := range req.LinkIDs {
		res, err := tx.Exec(`
			UPDATE links SET position = $1, updated_at = NOW()
			WHERE id = $2 AND page_id = $3
		`, i+1, id, pageID)
		if err != nil {
			log.Error().Err(err).Msg("failed to reorder links")
			writeError(w, http.StatusInternalServerError, "Failed to reorder links")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			writeError(w, http.StatusNotFound, "Link not found")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reorder links")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
