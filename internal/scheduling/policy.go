package scheduling

import "time"

// DayStatus classifies a candidate pickup date for the date picker. Statuses
// other than DaySelected and DayOpen exclude the date from selection.
type DayStatus string

const (
	// DaySelected marks a date already in the selection; it stays selectable
	// no matter what the schedule or capacity now says, so it can always be
	// deselected.
	DaySelected DayStatus = "selected"
	// DayPast marks a date before today in the pickup region's timezone.
	DayPast DayStatus = "past"
	// DayClosed marks a date no applicable schedule opens.
	DayClosed DayStatus = "closed"
	// DayAfterClose marks today once the location's closing time has passed.
	DayAfterClose DayStatus = "after_close"
	// DayFull marks a date whose daily cap leaves no room for one more parcel.
	DayFull DayStatus = "full"
	// DayOpen marks a selectable, not-yet-selected date.
	DayOpen DayStatus = "open"
)

// Selectable reports whether a date with this status may be toggled by the
// user.
func (s DayStatus) Selectable() bool {
	return s == DaySelected || s == DayOpen
}

// DateSelectionPolicy decides, per candidate date, whether it can be picked.
// It is evaluated fresh on every query; the only state it reads is the
// schedule index, the capacity ledger and the current selection.
type DateSelectionPolicy struct {
	index  *ScheduleIndex
	ledger *CapacityLedger
	clock  Clock
}

// NewDateSelectionPolicy wires the policy's collaborators.
func NewDateSelectionPolicy(index *ScheduleIndex, ledger *CapacityLedger, clock Clock) *DateSelectionPolicy {
	return &DateSelectionPolicy{index: index, ledger: ledger, clock: clock}
}

// Evaluate classifies date against the current selection. The rules apply in
// strict order: already selected wins over everything, then past, closed,
// today-after-closing, and full.
func (p *DateSelectionPolicy) Evaluate(date time.Time, selection []time.Time) DayStatus {
	loc := p.clock.Location()
	day := CivilDate(date, loc)

	for _, s := range selection {
		if SameCivilDate(s, day, loc) {
			return DaySelected
		}
	}

	today := Today(p.clock)
	if day.Before(today) {
		return DayPast
	}

	window, open := p.index.OpeningWindowFor(day)
	if !open {
		return DayClosed
	}

	if day.Equal(today) && TimeOfDayFrom(p.clock.Now(), loc) >= window.Close {
		return DayAfterClose
	}

	if p.ledger.WouldExceed(day, selection, 1) {
		return DayFull
	}

	return DayOpen
}
