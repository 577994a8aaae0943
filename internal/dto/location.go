package dto

// LocationQuery mirrors supported listing filters for pickup locations.
type LocationQuery struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}

// CreateLocationRequest defines payload for registering a pickup location.
type CreateLocationRequest struct {
	Name                string `json:"name" validate:"required"`
	Address             string `json:"address" validate:"required"`
	MaxParcelsPerDay    *int   `json:"maxParcelsPerDay" validate:"omitempty,min=1"`
	SlotDurationMinutes int    `json:"slotDurationMinutes" validate:"required,min=5,max=240"`
}

// UpdateLocationRequest defines payload for updating a pickup location.
type UpdateLocationRequest struct {
	Name                string `json:"name" validate:"required"`
	Address             string `json:"address" validate:"required"`
	MaxParcelsPerDay    *int   `json:"maxParcelsPerDay" validate:"omitempty,min=1"`
	SlotDurationMinutes int    `json:"slotDurationMinutes" validate:"required,min=5,max=240"`
	Active              bool   `json:"active"`
}

// DaySpecInput declares one weekday of an opening schedule.
type DaySpecInput struct {
	Weekday  int    `json:"weekday" validate:"min=0,max=6"`
	IsOpen   bool   `json:"isOpen"`
	OpensAt  string `json:"opensAt" validate:"omitempty,clock"`
	ClosesAt string `json:"closesAt" validate:"omitempty,clock"`
}

// CreateScheduleRequest defines payload for adding an opening schedule.
type CreateScheduleRequest struct {
	Name      string         `json:"name" validate:"required"`
	StartDate string         `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string         `json:"endDate" validate:"required,datetime=2006-01-02"`
	Days      []DaySpecInput `json:"days" validate:"required,min=1,max=7,dive"`
}

// SlotDurationResponse exposes the minimum pickup slot length of a location.
type SlotDurationResponse struct {
	LocationID          string `json:"locationId"`
	SlotDurationMinutes int    `json:"slotDurationMinutes"`
}

// CapacityResponse summarises booked parcels per date at a location.
type CapacityResponse struct {
	LocationID string         `json:"locationId"`
	MaxPerDay  *int           `json:"maxPerDay,omitempty"`
	StartDate  string         `json:"startDate"`
	EndDate    string         `json:"endDate"`
	DateCounts map[string]int `json:"dateCounts"`
}
