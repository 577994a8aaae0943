package scheduling

import "time"

// Clock supplies the current instant and the pickup region's timezone. All
// "today" and past/future decisions in the engine go through a Clock so tests
// can pin time. The region zone is fixed per deployment, never the caller's.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a Clock reading the wall clock in loc.
func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c systemClock) Location() *time.Location {
	return c.loc
}

type fixedClock struct {
	now time.Time
	loc *time.Location
}

// NewFixedClock returns a Clock pinned to one instant, for tests.
func NewFixedClock(now time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return fixedClock{now: now.In(loc), loc: loc}
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func (c fixedClock) Location() *time.Location {
	return c.loc
}

// CivilDate reduces an instant to the civil date it falls on in loc,
// normalized to midnight. Every date-only comparison in the engine funnels
// through this conversion.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DateKey formats the civil date of t in loc as its ISO key, e.g. "2025-05-02".
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// Today returns the current civil date according to the clock.
func Today(clock Clock) time.Time {
	return CivilDate(clock.Now(), clock.Location())
}

// SameCivilDate reports whether two instants fall on the same civil date in loc.
func SameCivilDate(a, b time.Time, loc *time.Location) bool {
	return CivilDate(a, loc).Equal(CivilDate(b, loc))
}
