package models

import (
	"time"

	"github.com/google/uuid"
)

type Photo struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PageID    uuid.UUID `db:"page_id" json:"page_id"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	Caption   *string   `db:"caption" json:"caption,omitempty"`
	Position  int       `db:"position" json:"position"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
