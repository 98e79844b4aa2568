package models

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PageID    uuid.UUID `db:"page_id" json:"page_id"`
	Title     string    `db:"title" json:"title"`
	Venue     string    `db:"venue" json:"venue"`
	City      string    `db:"city" json:"city"`
	State     *string   `db:"state" json:"state,omitempty"`
	EventDate time.Time `db:"event_date" json:"event_date"`
	TicketURL *string   `db:"ticket_url" json:"ticket_url,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CalendarEvent is an upcoming event joined with the page it belongs to,
// used by the favorites calendar.
type CalendarEvent struct {
	Event
	PageSlug   string  `db:"page_slug" json:"page_slug"`
	PageTitle  string  `db:"page_title" json:"page_title"`
	PageAvatar *string `db:"page_avatar" json:"page_avatar,omitempty"`
}
