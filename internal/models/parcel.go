package models

import "time"

// Parcel is one food parcel to be collected on a pickup date within a time
// slot. ID is empty until the parcel is persisted at enrollment submission.
// PickupLatest is always PickupEarliest plus the location's slot duration, and
// both carry the same civil date as PickupDate.
type Parcel struct {
	ID             string    `db:"id" json:"id,omitempty"`
	EnrollmentID   string    `db:"enrollment_id" json:"enrollment_id,omitempty"`
	HouseholdID    string    `db:"household_id" json:"household_id"`
	LocationID     string    `db:"location_id" json:"location_id"`
	PickupDate     time.Time `db:"pickup_date" json:"pickup_date"`
	PickupEarliest time.Time `db:"pickup_earliest" json:"pickup_earliest"`
	PickupLatest   time.Time `db:"pickup_latest" json:"pickup_latest"`
	CreatedAt      time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Persisted reports whether the parcel already exists in storage.
func (p Parcel) Persisted() bool {
	return p.ID != ""
}

// ParcelFilter describes query params for listing parcels.
type ParcelFilter struct {
	HouseholdID string
	LocationID  string
	Date        *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	Page        int
	PageSize    int
}
