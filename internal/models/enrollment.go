package models

import "time"

// EnrollmentStatus represents the lifecycle of a pickup enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusSubmitted EnrollmentStatus = "SUBMITTED"
	EnrollmentStatusCancelled EnrollmentStatus = "CANCELLED"
)

// Enrollment records a household's submitted pickup registration at one
// location, tying together the parcels created for it.
type Enrollment struct {
	ID          string           `db:"id" json:"id"`
	HouseholdID string           `db:"household_id" json:"household_id"`
	LocationID  string           `db:"location_id" json:"location_id"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	SubmittedBy string           `db:"submitted_by" json:"submitted_by"`
	SubmittedAt time.Time        `db:"submitted_at" json:"submitted_at"`
}

// EnrollmentDetail enriches Enrollment with household and location info.
type EnrollmentDetail struct {
	Enrollment
	HouseholdName string `db:"household_name" json:"household_name"`
	HouseholdCode string `db:"household_code" json:"household_code"`
	LocationName  string `db:"location_name" json:"location_name"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	HouseholdID string
	LocationID  string
	Status      EnrollmentStatus
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// DraftNotice is a transient, auto-expiring message attached to a draft, used
// for non-blocking warnings such as a capacity race reverting a selection.
type DraftNotice struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EnrollmentDraft holds the in-progress pickup selection for one household
// before submission. It carries the snapshots the scheduling engine evaluates
// against; mutations and snapshot refreshes are serialized by the draft store.
type EnrollmentDraft struct {
	ID            string           `json:"id"`
	HouseholdID   string           `json:"household_id"`
	LocationID    string           `json:"location_id"`
	Schedules     []OpeningSchedule `json:"-"`
	Capacity      CapacitySnapshot `json:"-"`
	SlotMinutes   int              `json:"slot_minutes"`
	SelectedDates []time.Time      `json:"selected_dates"`
	Parcels       []Parcel         `json:"parcels"`
	// SeededParcels snapshots the household's persisted parcels at draft
	// creation; submission diffs against it to delete dropped or re-timed rows.
	SeededParcels []Parcel      `json:"-"`
	Notices       []DraftNotice `json:"notices,omitempty"`
	CreatedBy     string        `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
