package models

import "time"

// PickupLocation is a distribution point where households collect parcels.
type PickupLocation struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	Address             string    `db:"address" json:"address"`
	MaxParcelsPerDay    *int      `db:"max_parcels_per_day" json:"max_parcels_per_day,omitempty"`
	SlotDurationMinutes int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	Active              bool      `db:"active" json:"active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// LocationRef is the lightweight shape returned by lookup lists.
type LocationRef struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// LocationFilter encapsulates allowed search parameters for listing locations.
type LocationFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
