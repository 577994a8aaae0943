package models

import "time"

// CapacitySnapshot is a read-only view of how many parcels are already booked
// per calendar date at one location, fetched for a bounded date range. A nil
// MaxPerDay means the location is uncapped. The snapshot may be stale; the
// authoritative capacity check happens again at submission time.
type CapacitySnapshot struct {
	LocationID string         `json:"location_id"`
	MaxPerDay  *int           `json:"max_per_day,omitempty"`
	StartDate  time.Time      `json:"start_date"`
	EndDate    time.Time      `json:"end_date"`
	DateCounts map[string]int `json:"date_counts"`
}

// CountFor returns the persisted booking count for an ISO date key.
func (s CapacitySnapshot) CountFor(dateKey string) int {
	return s.DateCounts[dateKey]
}
