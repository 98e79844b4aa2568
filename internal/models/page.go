package models

import (
	"time"

	"github.com/google/uuid"
)

type Page struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	UserID             uuid.UUID `db:"user_id" json:"user_id"`
	Slug               string    `db:"slug" json:"slug"`
	Title              string    `db:"title" json:"title"`
	Bio                *string   `db:"bio" json:"bio,omitempty"`
	AvatarURL          *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	BackgroundColor    *string   `db:"background_color" json:"background_color,omitempty"`
	TextColor          *string   `db:"text_color" json:"text_color,omitempty"`
	BackgroundImageURL *string   `db:"background_image_url" json:"background_image_url,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// PublicPage is the payload for GET /api/page/{slug}: the page with its
// active links, events and photos, plus the text contrast decision for the
// configured background color.
type PublicPage struct {
	Page
	OwnerName       string  `json:"owner_name"`
	Links           []Link  `json:"links"`
	Events          []Event `json:"events"`
	Photos          []Photo `json:"photos"`
	LightBackground bool    `json:"light_background"`
}

// PageSummary is the shape returned by search and favorites listings.
type PageSummary struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Slug      string    `db:"slug" json:"slug"`
	Title     string    `db:"title" json:"title"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	OwnerName string    `db:"owner_name" json:"owner_name"`
}
