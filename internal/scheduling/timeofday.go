package scheduling

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight. Opening
// hours are configured as "HH:MM" strings; parsing normalizes them (a trailing
// seconds component is stripped) so comparisons are plain integer comparisons,
// equivalent to lexicographic order on the normalized strings.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) > 5 {
		s = s[:5]
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustTimeOfDay is ParseTimeOfDay for trusted literals; it panics on error.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// TimeOfDayFrom extracts the wall-clock minutes of an instant in loc.
func TimeOfDayFrom(t time.Time, loc *time.Location) TimeOfDay {
	t = t.In(loc)
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// String renders the canonical 5-character "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// AddMinutes shifts the time by m minutes.
func (t TimeOfDay) AddMinutes(m int) TimeOfDay {
	return t + TimeOfDay(m)
}

// QuantizeDown snaps the time to the nearest lower multiple of grid minutes.
func (t TimeOfDay) QuantizeDown(grid int) TimeOfDay {
	if grid <= 0 {
		return t
	}
	return t - t%TimeOfDay(grid)
}

// At anchors the time of day on the civil date of day in loc, producing an
// instant.
func (t TimeOfDay) At(day time.Time, loc *time.Location) time.Time {
	d := CivilDate(day, loc)
	return time.Date(d.Year(), d.Month(), d.Day(), int(t)/60, int(t)%60, 0, 0, loc)
}

// Window is a single opening interval of one civil date.
type Window struct {
	Open  TimeOfDay `json:"open"`
	Close TimeOfDay `json:"close"`
}

// Valid reports whether the window is non-empty; a day never closes at or
// before its own opening.
func (w Window) Valid() bool {
	return w.Open < w.Close
}

// LastStart is the latest slot start whose end still fits before closing.
func (w Window) LastStart(durationMin int) TimeOfDay {
	return w.Close.AddMinutes(-durationMin)
}

// Intersect narrows two windows to the span both agree on: the later opening
// and the earlier closing. The result may be invalid.
func (w Window) Intersect(other Window) Window {
	out := w
	if other.Open > out.Open {
		out.Open = other.Open
	}
	if other.Close < out.Close {
		out.Close = other.Close
	}
	return out
}
