package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/database"
	"groovetree/backend/internal/models"
)

type SearchHandler struct {
	db *database.DB
}

func NewSearchHandler(db *database.DB) *SearchHandler {
	return &SearchHandler{db: db}
}

// Search does a case-insensitive substring match over page slug, page
// title and owner name, capped at 5 results.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, []models.PageSummary{})
		return
	}

	pattern := "%" + escapeLike(q) + "%"

	results := []models.PageSummary{}
	err := h.db.Select(&results, `
		SELECT p.id, p.slug, p.title, p.avatar_url, u.name AS owner_name
		FROM pages p
		JOIN users u ON u.id = p.user_id
		WHERE p.slug ILIKE $1 OR p.title ILIKE $1 OR u.name ILIKE $1
		ORDER BY p.title
		LIMIT 5
	`, pattern)
	if err != nil {
		log.Error().Err(err).Msg("search query failed")
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// escapeLike neutralizes the LIKE metacharacters in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
