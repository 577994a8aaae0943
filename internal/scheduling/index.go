package scheduling

import (
	"time"

	"github.com/foodbridge/pickup-api/internal/models"
)

// ScheduleIndex resolves the effective opening window of a pickup location
// for any civil date from the location's opening schedules. Schedules may
// overlap; a date's window is the span every applicable schedule agrees on
// (latest opening, earliest closing). The index works on a snapshot and never
// mutates it.
type ScheduleIndex struct {
	schedules []models.OpeningSchedule
	loc       *time.Location
}

// NewScheduleIndex builds an index over a schedule snapshot for one location.
func NewScheduleIndex(schedules []models.OpeningSchedule, loc *time.Location) *ScheduleIndex {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleIndex{schedules: schedules, loc: loc}
}

// OpeningWindowFor resolves the opening window that applies on date. The
// second return value is false when the location is closed on that date:
// no schedule covers it, the weekday is marked closed everywhere, or the
// applicable schedules contradict each other into an empty span.
func (ix *ScheduleIndex) OpeningWindowFor(date time.Time) (Window, bool) {
	day := CivilDate(date, ix.loc)
	weekday := day.Weekday()

	var window Window
	found := false
	for _, schedule := range ix.schedules {
		if !coversDate(schedule, day, ix.loc) {
			continue
		}
		w, ok := dayWindow(schedule, weekday)
		if !ok {
			continue
		}
		if !found {
			window = w
			found = true
			continue
		}
		window = window.Intersect(w)
	}
	if !found || !window.Valid() {
		return Window{}, false
	}
	return window, true
}

// CommonWindowFor resolves the window shared by every date in the set: the
// per-date windows intersected. It returns false when any date is closed or
// the intersection is empty. Used to offer one time value across a bulk edit.
func (ix *ScheduleIndex) CommonWindowFor(dates []time.Time) (Window, bool) {
	if len(dates) == 0 {
		return Window{}, false
	}
	var common Window
	for i, date := range dates {
		w, ok := ix.OpeningWindowFor(date)
		if !ok {
			return Window{}, false
		}
		if i == 0 {
			common = w
			continue
		}
		common = common.Intersect(w)
	}
	if !common.Valid() {
		return Window{}, false
	}
	return common, true
}

// coversDate checks the schedule's inclusive validity range against a civil
// date, ignoring any time-of-day component on the stored bounds.
func coversDate(s models.OpeningSchedule, day time.Time, loc *time.Location) bool {
	start := CivilDate(s.StartDate, loc)
	end := CivilDate(s.EndDate, loc)
	return !day.Before(start) && !day.After(end)
}

// dayWindow extracts the schedule's window for a weekday. A closed day, a
// missing or unparsable time, or a day that closes at or before it opens all
// count as closed for this schedule.
func dayWindow(s models.OpeningSchedule, weekday time.Weekday) (Window, bool) {
	spec, ok := s.DayFor(weekday)
	if !ok || !spec.IsOpen || spec.OpensAt == "" || spec.ClosesAt == "" {
		return Window{}, false
	}
	open, err := ParseTimeOfDay(spec.OpensAt)
	if err != nil {
		return Window{}, false
	}
	closing, err := ParseTimeOfDay(spec.ClosesAt)
	if err != nil {
		return Window{}, false
	}
	w := Window{Open: open, Close: closing}
	if !w.Valid() {
		return Window{}, false
	}
	return w, true
}
