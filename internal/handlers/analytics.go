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

type AnalyticsHandler struct {
	db *database.DB
}

func NewAnalyticsHandler(db *database.DB) *AnalyticsHandler {
	return &AnalyticsHandler{db: db}
}

var sharePlatforms = map[string]bool{
	"copy":     true,
	"twitter":  true,
	"facebook": true,
	"whatsapp": true,
	"linkedin": true,
}

type TrackRequest struct {
	PageID   uuid.UUID `json:"page_id" validate:"required"`
	Type     string    `json:"type" validate:"required,oneof=pageView share"`
	Platform string    `json:"platform"`
}

// Track appends a page-view or share row. It is public: visitors are not
// authenticated when they view or share a page.
func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if msg, ok := validateRequest(req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var exists bool
	if err := h.db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM pages WHERE id = $1)", req.PageID); err != nil || !exists {
		writeError(w, http.StatusNotFound, "Page not found")
		return
	}

	switch req.Type {
	case "pageView":
		if _, err := h.db.Exec(
			"INSERT INTO page_views (page_id) VALUES ($1)", req.PageID); err != nil {
			log.Error().Err(err).Msg("failed to record page view")
			writeError(w, http.StatusInternalServerError, "Failed to record event")
			return
		}
	case "share":
		if !sharePlatforms[req.Platform] {
			writeError(w, http.StatusBadRequest, "Unknown share platform")
			return
		}
		if _, err := h.db.Exec(
			"INSERT INTO share_events (page_id, platform) VALUES ($1, $2)",
			req.PageID, req.Platform); err != nil {
			log.Error().Err(err).Msg("failed to record share")
			writeError(w, http.StatusInternalServerError, "Failed to record event")
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// periodInterval maps the period query parameter to a Postgres interval;
// "all" means no lower bound.
func periodInterval(period string) (string, bool) {
	switch period {
	case "7d":
		return "7 days", true
	case "30d", "":
		return "30 days", true
	case "90d":
		return "90 days", true
	case "all":
		return "", true
	}
	return "", false
}

// Stats aggregates the caller's page analytics: totals plus per-day series
// over the requested period.
func (h *AnalyticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	interval, ok := periodInterval(r.URL.Query().Get("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, "period must be one of 7d, 30d, 90d, all")
		return
	}

	var pageID uuid.UUID
	err := h.db.Get(&pageID, "SELECT id FROM pages WHERE user_id = $1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "You have no page yet")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load page for stats")
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	cutoff := func(table string) string {
		if interval == "" {
			return ""
		}
		return " AND " + table + ".created_at >= NOW() - INTERVAL '" + interval + "'"
	}

	stats := models.Stats{
		ViewsByDay:     []models.DayCount{},
		SharesByDay:    []models.DayCount{},
		SharesByMedium: []models.PlatformCount{},
	}

	if err := h.db.Get(&stats.TotalViews,
		"SELECT COUNT(*) FROM page_views pv WHERE pv.page_id = $1"+cutoff("pv"), pageID); err != nil {
		log.Error().Err(err).Msg("failed to count page views")
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	if err := h.db.Get(&stats.TotalShares,
		"SELECT COUNT(*) FROM share_events se WHERE se.page_id = $1"+cutoff("se"), pageID); err != nil {
		log.Error().Err(err).Msg("failed to count shares")
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	if err := h.db.Get(&stats.TotalFavorites,
		"SELECT COUNT(*) FROM favorite_artists WHERE page_id = $1", pageID); err != nil {
		log.Error().Err(err).Msg("failed to count favorites")
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	if err := h.db.Select(&stats.ViewsByDay, `
		SELECT date_trunc('day', pv.created_at) AS day, COUNT(*) AS count
		FROM page_views pv
		WHERE pv.page_id = $1`+cutoff("pv")+`
		GROUP BY day ORDER BY day
	`, pageID); err != nil {
		log.Error().Err(err).Msg("failed to build view series")
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	if err := h.db.Select(&stats.SharesByDay, `
		SELECT date_trunc('day', se.created_at) AS day, COUNT(*) AS count
		FROM share_events se
		WHERE se.page_id = $1`+cutoff("se")+`
		GROUP BY day ORDER BY day
	`, pageID); err != nil {
		log.Error().Err(err).Msg("failed to build share series")
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}
	if err := h.db.Select(&stats.SharesByMedium, `
		SELECT se.platform, COUNT(*) AS count
		FROM share_events se
		WHERE se.page_id = $1`+cutoff("se")+`
		GROUP BY se.platform ORDER BY count DESC
	`, pageID); err != nil {
		log.Error().Err(err).Msg("failed to build share breakdown")
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
