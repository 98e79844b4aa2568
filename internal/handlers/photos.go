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
	"groovetree/backend/internal/middleware"
	"groovetree/backend/internal/models"
)

type PhotosHandler struct {
	db *database.DB
}

func NewPhotosHandler(db *database.DB) *PhotosHandler {
	return &PhotosHandler{db: db}
}

type CreatePhotoRequest struct {
	ImageURL string `json:"image_url" validate:"required,url"`
	Caption  string `json:"caption"`
}

func (h *PhotosHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var req CreatePhotoRequest
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

	var photo models.Photo
	err := h.db.Get(&photo, `
		INSERT INTO photos (page_id, image_url, caption, position)
		VALUES ($1, $2, NULLIF($3, ''),
			(SELECT COALESCE(MAX(position), 0) + 1 FROM photos WHERE page_id = $1))
		RETURNING *
	`, pageID, req.ImageURL, req.Caption)
	if err != nil {
		log.Error().Err(err).Msg("failed to create photo")
		writeError(w, http.StatusInternalServerError, "Failed to add photo")
		return
	}

	writeJSON(w, http.StatusCreated, photo)
}

type UpdatePhotoRequest struct {
	Caption  *string `json:"caption"`
	Position *int    `json:"position"`
	Active   *bool   `json:"active"`
}

func (h *PhotosHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	photoID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid photo ID")
		return
	}

	var req UpdatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	var photo models.Photo
	err = h.db.Get(&photo, `
		UPDATE photos ph SET
			caption = COALESCE($1, ph.caption),
			position = COALESCE($2, ph.position),
			active = COALESCE($3, ph.active),
			updated_at = NOW()
		FROM pages p
		WHERE ph.id = $4 AND p.id = ph.page_id AND p.user_id = $5
		RETURNING ph.*
	`, req.Caption, req.Position, req.Active, photoID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Photo not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to update photo")
		writeError(w, http.StatusInternalServerError, "Failed to update photo")
		return
	}

	writeJSON(w, http.StatusOK, photo)
}

func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	photoID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid photo ID")
		return
	}

	res, err := h.db.Exec(`
		DELETE FROM photos ph
		USING pages p
		WHERE ph.id = $1 AND p.id = ph.page_id AND p.user_id = $2
	`, photoID, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete photo")
		writeError(w, http.StatusInternalServerError, "Failed to delete photo")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Photo not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
