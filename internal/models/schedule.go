package models

import "time"

// DaySpec declares whether a location is open on one weekday of a schedule and
// between which times. Times are stored as "HH:MM" wall-clock strings in the
// pickup region's timezone; a trailing seconds component is tolerated and
// stripped by the scheduling engine.
type DaySpec struct {
	ScheduleID string       `db:"schedule_id" json:"-"`
	Weekday    time.Weekday `db:"weekday" json:"weekday"`
	IsOpen     bool         `db:"is_open" json:"is_open"`
	OpensAt    string       `db:"opens_at" json:"opens_at,omitempty"`
	ClosesAt   string       `db:"closes_at" json:"closes_at,omitempty"`
}

// OpeningSchedule describes the weekly opening hours of a pickup location for
// a validity window. Both validity bounds are inclusive civil dates. Several
// schedules may cover the same date; the scheduling engine resolves the
// effective window for a date from all schedules that apply.
type OpeningSchedule struct {
	ID         string                   `db:"id" json:"id"`
	LocationID string                   `db:"location_id" json:"location_id"`
	Name       string                   `db:"name" json:"name"`
	StartDate  time.Time                `db:"start_date" json:"start_date"`
	EndDate    time.Time                `db:"end_date" json:"end_date"`
	Days       map[time.Weekday]DaySpec `db:"-" json:"days"`
	CreatedAt  time.Time                `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time                `db:"updated_at" json:"updated_at"`
}

// DayFor returns the day specification for the given weekday, if present.
func (s OpeningSchedule) DayFor(day time.Weekday) (DaySpec, bool) {
	spec, ok := s.Days[day]
	return spec, ok
}
