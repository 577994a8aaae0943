package scheduling

import (
	"sort"
	"time"

	"github.com/foodbridge/pickup-api/internal/models"
)

// ParcelStateReducer derives the parcel list of a draft from its selected
// pickup dates. Reconcile is pure: it never mutates its inputs and the same
// selection always produces the same parcels, so callers can re-run it after
// every selection change.
type ParcelStateReducer struct {
	index       *ScheduleIndex
	clock       Clock
	durationMin int
	householdID string
	locationID  string
}

// NewParcelStateReducer wires the reducer's collaborators. householdID and
// locationID stamp newly synthesized parcels.
func NewParcelStateReducer(index *ScheduleIndex, clock Clock, durationMin int, householdID, locationID string) *ParcelStateReducer {
	return &ParcelStateReducer{
		index:       index,
		clock:       clock,
		durationMin: durationMin,
		householdID: householdID,
		locationID:  locationID,
	}
}

// Reconcile returns one parcel per selected civil date, sorted by date, and
// whether the result differs from previous. Duplicate selected dates collapse
// to one parcel. A previous parcel on a still-selected date is carried over
// unchanged so its identifier and chosen time survive deselection-free edits;
// persisted parcels win over unsaved ones when both cover the same date, and
// each previous parcel is consumed at most once. Dates with no previous
// parcel get a fresh one starting at the first available slot.
func (r *ParcelStateReducer) Reconcile(selected []time.Time, previous []models.Parcel) ([]models.Parcel, bool) {
	loc := r.clock.Location()

	dates := make([]time.Time, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, d := range selected {
		key := DateKey(d, loc)
		if seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, CivilDate(d, loc))
	}

	consumed := make([]bool, len(previous))
	result := make([]models.Parcel, 0, len(dates))
	for _, date := range dates {
		if i, ok := r.reusable(date, previous, consumed); ok {
			consumed[i] = true
			result = append(result, previous[i])
			continue
		}
		result = append(result, r.synthesize(date))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PickupDate.Before(result[j].PickupDate) })

	return result, !equalParcels(result, previous)
}

// reusable finds the unconsumed previous parcel for date, preferring one that
// already has a database identifier.
func (r *ParcelStateReducer) reusable(date time.Time, previous []models.Parcel, consumed []bool) (int, bool) {
	loc := r.clock.Location()
	found := -1
	for i, p := range previous {
		if consumed[i] || !SameCivilDate(p.PickupDate, date, loc) {
			continue
		}
		if p.Persisted() {
			return i, true
		}
		if found < 0 {
			found = i
		}
	}
	return found, found >= 0
}

func (r *ParcelStateReducer) synthesize(date time.Time) models.Parcel {
	loc := r.clock.Location()
	window, _ := r.index.OpeningWindowFor(date)
	start := FirstAvailableSlot(window, r.durationMin)
	return models.Parcel{
		HouseholdID:    r.householdID,
		LocationID:     r.locationID,
		PickupDate:     date,
		PickupEarliest: start.At(date, loc),
		PickupLatest:   start.AddMinutes(r.durationMin).At(date, loc),
	}
}

func equalParcels(a, b []models.Parcel) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			!a[i].PickupDate.Equal(b[i].PickupDate) ||
			!a[i].PickupEarliest.Equal(b[i].PickupEarliest) ||
			!a[i].PickupLatest.Equal(b[i].PickupLatest) {
			return false
		}
	}
	return true
}
