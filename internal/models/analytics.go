package models

import (
	"time"

	"github.com/google/uuid"
)

// PageView and ShareEvent are append-only rows used purely for counting.

type PageView struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PageID    uuid.UUID `db:"page_id" json:"page_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ShareEvent struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PageID    uuid.UUID `db:"page_id" json:"page_id"`
	Platform  string    `db:"platform" json:"platform"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DayCount is one bucket of the per-day time series.
type DayCount struct {
	Day   time.Time `db:"day" json:"day"`
	Count int       `db:"count" json:"count"`
}

// PlatformCount is the share breakdown by platform label.
type PlatformCount struct {
	Platform string `db:"platform" json:"platform"`
	Count    int    `db:"count" json:"count"`
}

type Stats struct {
	TotalViews     int             `json:"total_views"`
	TotalShares    int             `json:"total_shares"`
	TotalFavorites int             `json:"total_favorites"`
	ViewsByDay     []DayCount      `json:"views_by_day"`
	SharesByDay    []DayCount      `json:"shares_by_day"`
	SharesByMedium []PlatformCount `json:"shares_by_platform"`
}
