package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/color"
	"groovetree/backend/internal/database"
	"groovetree/backend/internal/middleware"
	"groovetree/backend/internal/models"
)

type PagesHandler struct {
	db *database.DB
}

func NewPagesHandler(db *database.DB) *PagesHandler {
	return &PagesHandler{db: db}
}

// Slugs become public URL path segments, so the charset is strict.
var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,28}[a-z0-9]$`)

// reservedSlugs would collide with routes or client pages.
var reservedSlugs = map[string]bool{
	"me": true, "create": true, "update": true, "api": true, "admin": true,
	"login": true, "signup": true, "dashboard": true, "settings": true,
	"uploads": true, "search": true, "favorites": true,
}

type CreatePageRequest struct {
	Slug  string `json:"slug" validate:"required"`
	Title string `json:"title" validate:"required"`
	Bio   string `json:"bio"`
}

func (h *PagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		writeError(w, http.StatusBadRequest, "Slug must be 3-30 characters: lowercase letters, digits and hyphens")
		return
	}
	if reservedSlugs[slug] {
		writeError(w, http.StatusBadRequest, "This slug is reserved")
		return
	}

	// Concurrent creates race to the unique indexes on slug and user_id;
	// the loser surfaces here as a duplicate-key error.
	var page models.Page
	err := h.db.Get(&page, `
		INSERT INTO pages (user_id, slug, title, bio)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING *
	`, userID, slug, req.Title, req.Bio)
	if err != nil {
		if database.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "Slug already taken or you already have a page")
			return
		}
		log.Error().Err(err).Msg("failed to create page")
		writeError(w, http.StatusInternalServerError, "Failed to create page")
		return
	}

	writeJSON(w, http.StatusCreated, page)
}

func (h *PagesHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var page models.Page
	err := h.db.Get(&page, "SELECT * FROM pages WHERE user_id = $1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "You have no page yet")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load page")
		writeError(w, http.StatusInternalServerError, "Failed to load page")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

type UpdatePageRequest struct {
	Title              *string `json:"title"`
	Bio                *string `json:"bio"`
	AvatarURL          *string `json:"avatar_url"`
	BackgroundColor    *string `json:"background_color"`
	TextColor          *string `json:"text_color"`
	BackgroundImageURL *string `json:"background_image_url"`
}

// Update changes page settings. The slug is immutable once claimed: a slug
// field in the body is deliberately not part of the request shape.
func (h *PagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var req UpdatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	var page models.Page
	err := h.db.Get(&page, `
		UPDATE pages SET
			title = COALESCE($1, title),
			bio = COALESCE($2, bio),
			avatar_url = COALESCE($3, avatar_url),
			background_color = COALESCE($4, background_color),
			text_color = COALESCE($5, text_color),
			background_image_url = COALESCE($6, background_image_url),
			updated_at = NOW()
		WHERE user_id = $7
		RETURNING *
	`, req.Title, req.Bio, req.AvatarURL, req.BackgroundColor, req.TextColor,
		req.BackgroundImageURL, userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "You have no page yet")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to update page")
		writeError(w, http.StatusInternalServerError, "Failed to update page")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetBySlug is the public page read: the page plus its active links,
// events and photos in display order.
func (h *PagesHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := strings.ToLower(mux.Vars(r)["slug"])

	var out models.PublicPage
	err := h.db.Get(&out.Page, "SELECT * FROM pages WHERE slug = $1", slug)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load page")
		writeError(w, http.StatusInternalServerError, "Failed to load page")
		return
	}

	if err := h.db.Get(&out.OwnerName, "SELECT name FROM users WHERE id = $1", out.UserID); err != nil {
		log.Error().Err(err).Msg("failed to load page owner")
		writeError(w, http.StatusInternalServerError, "Failed to load page")
		return
	}

	if err := h.db.Select(&out.Links, `
		SELECT * FROM links WHERE page_id = $1 AND active ORDER BY position
	`, out.ID); err != nil {
		log.Error().Err(err).Msg("failed to load links")
		writeError(w, http.StatusInternalServerError, "Failed to load page")
		return
	}
	if err := h.db.Select(&out.Events, `
		SELECT * FROM events WHERE page_id = $1 AND active ORDER BY event_date
	`, out.ID); err != nil {
		log.Error().Err(err).Msg("failed to load events")
		writeError(w, http.StatusInternalServerError, "Failed to load page")
		return
	}
	if err := h.db.Select(&out.Photos, `
		SELECT * FROM photos WHERE page_id = $1 AND active ORDER BY position
	`, out.ID); err != nil {
		log.Error().Err(err).Msg("failed to load photos")
		writeError(w, http.StatusInternalServerError, "Failed to load page")
		return
	}

	if out.Links == nil {
		out.Links = []models.Link{}
	}
	if out.Events == nil {
		out.Events = []models.Event{}
	}
	if out.Photos == nil {
		out.Photos = []models.Photo{}
	}

	bg := ""
	if out.BackgroundColor != nil {
		bg = *out.BackgroundColor
	}
	out.LightBackground = color.IsLight(bg)

	writeJSON(w, http.StatusOK, out)
}
