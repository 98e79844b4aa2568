package models

import (
	"time"

	"github.com/google/uuid"
)

type FavoriteArtist struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	PageID    uuid.UUID `db:"page_id" json:"page_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
