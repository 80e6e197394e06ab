// Package domain defines the entities of the rental listing data core:
// comments attached to listings, the externally supplied listing catalog,
// and the persistence models (key-value rows, idempotency records) that the
// repository layer maps with GORM.
package domain

import "time"

// Comment is a single review left on a listing. Comments are immutable once
// created and live in the listing's append-only log.
//
// The JSON shape is the one persisted under "comments:<listingId>":
// createdAt is milliseconds since the Unix epoch.
type Comment struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Rating    int    `json:"rating"` // 1..5
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// Created returns CreatedAt as a UTC time.
func (c Comment) Created() time.Time {
	return time.UnixMilli(c.CreatedAt).UTC()
}

// Rating bounds accepted for a Comment.
const (
	MinRating = 1
	MaxRating = 5
)

// Listing is a rental property from the static catalog. The core only reads
// listings; it never mutates the catalog.
type Listing struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// KVEntry is one row of the durable key-value table. Value holds the raw
// JSON blob for the key.
type KVEntry struct {
	Key       string    `gorm:"type:varchar(255);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the database table name for KVEntry.
func (KVEntry) TableName() string { return "kv_entries" }
