package models

import (
	"time"

	"github.com/google/uuid"

	"groovetree/backend/internal/embed"
)

type Link struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	PageID    uuid.UUID      `db:"page_id" json:"page_id"`
	Title     string         `db:"title" json:"title"`
	URL       string         `db:"url" json:"url"`
	EmbedURL  *string        `db:"embed_url" json:"embed_url,omitempty"`
	Platform  embed.Platform `db:"platform" json:"platform"`
	Position  int            `db:"position" json:"position"`
	Active    bool           `db:"active" json:"active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
