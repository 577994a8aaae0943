package dto

import (
	"time"

	"github.com/foodbridge/pickup-api/internal/models"
)

// CreateDraftRequest starts a pickup enrollment draft for a household.
type CreateDraftRequest struct {
	HouseholdID string `json:"householdId" validate:"required"`
	LocationID  string `json:"locationId" validate:"required"`
}

// ChangeLocationRequest re-targets a draft at another pickup location.
type ChangeLocationRequest struct {
	LocationID string `json:"locationId" validate:"required"`
}

// SelectDateRequest adds a pickup date to the draft selection.
type SelectDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// SetTimeRequest changes the start time of a single parcel.
type SetTimeRequest struct {
	Time string `json:"time" validate:"required,clock"`
}

// BulkTimeRequest applies one start time to every upcoming parcel.
type BulkTimeRequest struct {
	Time string `json:"time" validate:"required,clock"`
}

// ParcelView is the API shape of one draft or submitted parcel.
type ParcelView struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

// NoticeView is a transient draft notice with its expiry.
type NoticeView struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// DraftResponse is the full draft state returned to the client.
type DraftResponse struct {
	ID            string       `json:"id"`
	HouseholdID   string       `json:"householdId"`
	LocationID    string       `json:"locationId"`
	SlotMinutes   int          `json:"slotMinutes"`
	SelectedDates []string     `json:"selectedDates"`
	Parcels       []ParcelView `json:"parcels"`
	Notices       []NoticeView `json:"notices,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// SubmitResponse reports the outcome of a committed enrollment.
type SubmitResponse struct {
	EnrollmentID string       `json:"enrollmentId"`
	Created      []ParcelView `json:"created"`
	Reused       []ParcelView `json:"reused"`
}

// EnrollmentQuery mirrors supported listing filters.
type EnrollmentQuery struct {
	HouseholdID string
	LocationID  string
	Status      models.EnrollmentStatus
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
