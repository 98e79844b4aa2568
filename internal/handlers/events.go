package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"groovetree/backend/internal/database"
	"groovetree/backend/internal/middleware"
	"groovetree/backend/internal/models"
)

type EventsHandler struct {
	db *database.DB
}

func NewEventsHandler(db *database.DB) *EventsHandler {
	return &EventsHandler{db: db}
}

type CreateEventRequest struct {
	Title     string    `json:"title" validate:"required"`
	Venue     string    `json:"venue" validate:"required"`
	City      string    `json:"city" validate:"required"`
	State     string    `json:"state"`
	EventDate time.Time `json:"event_date" validate:"required"`
	TicketURL string    `json:"ticket_url" validate:"omitempty,url"`
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	var req CreateEventRequest
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

	var event models.Event
	err := h.db.Get(&event, `
		INSERT INTO events (page_id, title, venue, city, state, event_date, ticket_url)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''))
		RETURNING *
	`, pageID, req.Title, req.Venue, req.City, req.State, req.EventDate, req.TicketURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to create event")
		writeError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

type UpdateEventRequest struct {
	Title     *string    `json:"title"`
	Venue     *string    `json:"venue"`
	City      *string    `json:"city"`
	State     *string    `json:"state"`
	EventDate *time.Time `json:"event_date"`
	TicketURL *string    `json:"ticket_url"`
	Active    *bool      `json:"active"`
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	eventID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	var event models.Event
	err = h.db.Get(&event, `
		UPDATE events e SET
			title = COALESCE($1, e.title),
			venue = COALESCE($2, e.venue),
			city = COALESCE($3, e.city),
			state = COALESCE($4, e.state),
			event_date = COALESCE($5, e.event_date),
			ticket_url = COALESCE($6, e.ticket_url),
			active = COALESCE($7, e.active),
			updated_at = NOW()
		FROM pages p
		WHERE e.id = $8 AND p.id = e.page_id AND p.user_id = $9
		RETURNING e.*
	`, req.Title, req.Venue, req.City, req.State, req.EventDate, req.TicketURL,
		req.Active, eventID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to update event")
		writeError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	userID, _ := uuid.Parse(claims.UserID)

	eventID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	res, err := h.db.Exec(`
		DELETE FROM events e
		USING pages p
		WHERE e.id = $1 AND p.id = e.page_id AND p.user_id = $2
	`, eventID, userID)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete event")
		writeError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
