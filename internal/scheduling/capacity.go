package scheduling

import (
	"time"

	"github.com/foodbridge/pickup-api/internal/models"
)

// CapacityLedger answers whether a pickup date still has room under the
// location's daily cap by combining the persisted booking snapshot with the
// in-session selection. The snapshot is read-only and possibly stale; the
// authoritative check is repeated server-side at submission.
type CapacityLedger struct {
	maxPerDay *int
	persisted map[string]int
	loc       *time.Location
}

// NewCapacityLedger wraps a capacity snapshot for one location.
func NewCapacityLedger(snapshot models.CapacitySnapshot, loc *time.Location) *CapacityLedger {
	if loc == nil {
		loc = time.UTC
	}
	return &CapacityLedger{
		maxPerDay: snapshot.MaxPerDay,
		persisted: snapshot.DateCounts,
		loc:       loc,
	}
}

// Remaining reports how many more parcels date can take given the current
// selection. The boolean is false when the location is uncapped. A date that
// is itself part of the selection is not counted against itself, so
// re-evaluating an already-selected date never self-blocks.
func (l *CapacityLedger) Remaining(date time.Time, selection []time.Time) (int, bool) {
	if l.maxPerDay == nil {
		return 0, false
	}
	key := DateKey(date, l.loc)
	return *l.maxPerDay - l.persisted[key] - l.tentative(key, date, selection), true
}

// WouldExceed reports whether booking additional more parcels on date would
// push the combined persisted and tentative count over the cap. Uncapped
// locations never exceed.
func (l *CapacityLedger) WouldExceed(date time.Time, selection []time.Time, additional int) bool {
	if l.maxPerDay == nil {
		return false
	}
	key := DateKey(date, l.loc)
	return l.persisted[key]+l.tentative(key, date, selection)+additional > *l.maxPerDay
}

// tentative counts selection entries on the same civil date, excluding the
// date under test itself when it is part of the selection.
func (l *CapacityLedger) tentative(key string, date time.Time, selection []time.Time) int {
	count := 0
	self := false
	for _, s := range selection {
		if DateKey(s, l.loc) == key {
			count++
			self = true
		}
	}
	if self {
		count--
	}
	return count
}
