package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/foodbridge/pickup-api/internal/models"
)

// BulkTimeError reports every date a bulk time edit would violate. The edit
// is all-or-nothing: partially applying it would leave some parcels silently
// untouched, which is worse than one complete, explicit failure.
type BulkTimeError struct {
	Dates []time.Time
}

// Error renders the offending dates as a user-facing list.
func (e *BulkTimeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	formatted := make([]string, len(e.Dates))
	for i, d := range e.Dates {
		formatted[i] = d.Format("02 Jan 2006")
	}
	return fmt.Sprintf("time falls outside opening hours on %s", strings.Join(formatted, ", "))
}

// BulkTimeReconciler applies one time of day to every upcoming parcel of a
// selection, after validating the time against each affected date's opening
// window. Parcels whose pickup date already passed are frozen; bulk edits
// never touch them.
type BulkTimeReconciler struct {
	index       *ScheduleIndex
	clock       Clock
	durationMin int
}

// NewBulkTimeReconciler wires the reconciler's collaborators.
func NewBulkTimeReconciler(index *ScheduleIndex, clock Clock, durationMin int) *BulkTimeReconciler {
	return &BulkTimeReconciler{index: index, clock: clock, durationMin: durationMin}
}

// Apply validates chosen against every upcoming parcel's window and, when all
// pass, returns a copy of the parcels with their start times set to chosen
// (snapped down to the slot grid) and end times recomputed. When any date
// fails, no parcel changes and the returned *BulkTimeError lists every
// offending date.
func (r *BulkTimeReconciler) Apply(parcels []models.Parcel, chosen TimeOfDay) ([]models.Parcel, error) {
	loc := r.clock.Location()
	today := Today(r.clock)

	var invalid []time.Time
	for _, p := range parcels {
		day := CivilDate(p.PickupDate, loc)
		if day.Before(today) {
			continue
		}
		window, open := r.index.OpeningWindowFor(day)
		if !open || chosen < window.Open || chosen > window.LastStart(r.durationMin) {
			invalid = append(invalid, day)
		}
	}
	if len(invalid) > 0 {
		return parcels, &BulkTimeError{Dates: invalid}
	}

	start := chosen.QuantizeDown(SlotGrid)
	updated := make([]models.Parcel, len(parcels))
	copy(updated, parcels)
	for i := range updated {
		day := CivilDate(updated[i].PickupDate, loc)
		if day.Before(today) {
			continue
		}
		updated[i].PickupEarliest = start.At(day, loc)
		updated[i].PickupLatest = start.AddMinutes(r.durationMin).At(day, loc)
	}
	return updated, nil
}
