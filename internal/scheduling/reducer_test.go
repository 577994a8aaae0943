package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodbridge/pickup-api/internal/models"
)

func newTestReducer(clock Clock) *ParcelStateReducer {
	index := NewScheduleIndex([]models.OpeningSchedule{weekdayHours()}, time.UTC)
	return NewParcelStateReducer(index, clock, 30, "hh-1", "loc-1")
}

func TestParcelStateReducerSynthesizesFromSelection(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	red := newTestReducer(clock)

	parcels, changed := red.Reconcile([]time.Time{civil(2025, time.May, 8), civil(2025, time.May, 5)}, nil)

	require.True(t, changed)
	require.Len(t, parcels, 2)
	assert.Equal(t, civil(2025, time.May, 5), parcels[0].PickupDate, "parcels come back sorted by date")
	assert.Equal(t, civil(2025, time.May, 8), parcels[1].PickupDate)
	assert.Equal(t, "09:00", TimeOfDayFrom(parcels[0].PickupEarliest, time.UTC).String(),
		"new parcels start at the first available slot")
	assert.Equal(t, "09:30", TimeOfDayFrom(parcels[0].PickupLatest, time.UTC).String())
	assert.Equal(t, "hh-1", parcels[0].HouseholdID)
	assert.Equal(t, "loc-1", parcels[0].LocationID)
}

func TestParcelStateReducerIdempotent(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	red := newTestReducer(clock)
	selected := []time.Time{civil(2025, time.May, 5), civil(2025, time.May, 8)}

	first, changed := red.Reconcile(selected, nil)
	require.True(t, changed)

	second, changed := red.Reconcile(selected, first)
	assert.False(t, changed)
	assert.Equal(t, first, second)
}

func TestParcelStateReducerKeepsEditedTimes(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	red := newTestReducer(clock)
	edited := parcelOn("p-1", civil(2025, time.May, 5), "15:00", 30)

	parcels, changed := red.Reconcile([]time.Time{civil(2025, time.May, 5)}, []models.Parcel{edited})

	assert.False(t, changed)
	require.Len(t, parcels, 1)
	assert.Equal(t, "p-1", parcels[0].ID)
	assert.Equal(t, edited.PickupEarliest, parcels[0].PickupEarliest)
}

func TestParcelStateReducerEmptySelection(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	red := newTestReducer(clock)
	previous := []models.Parcel{parcelOn("p-1", civil(2025, time.May, 5), "09:00", 30)}

	parcels, changed := red.Reconcile(nil, previous)

	assert.True(t, changed)
	assert.Empty(t, parcels, "deselecting the last date leaves no parcels behind")
}

func TestParcelStateReducerDropsDeselected(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	red := newTestReducer(clock)
	previous := []models.Parcel{
		parcelOn("p-1", civil(2025, time.May, 5), "09:00", 30),
		parcelOn("p-2", civil(2025, time.May, 8), "11:00", 30),
	}

	parcels, changed := red.Reconcile([]time.Time{civil(2025, time.May, 8)}, previous)

	require.True(t, changed)
	require.Len(t, parcels, 1)
	assert.Equal(t, "p-2", parcels[0].ID)
}

func TestParcelStateReducerDedupesSelection(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	red := newTestReducer(clock)

	parcels, _ := red.Reconcile([]time.Time{civil(2025, time.May, 5), civil(2025, time.May, 5)}, nil)

	require.Len(t, parcels, 1)
}

func TestParcelStateReducerPrefersPersistedParcel(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	red := newTestReducer(clock)
	unsaved := parcelOn("", civil(2025, time.May, 5), "11:00", 30)
	saved := parcelOn("p-1", civil(2025, time.May, 5), "10:00", 30)

	parcels, _ := red.Reconcile([]time.Time{civil(2025, time.May, 5)}, []models.Parcel{unsaved, saved})

	require.Len(t, parcels, 1)
	assert.Equal(t, "p-1", parcels[0].ID)
}

func TestParcelStateReducerFallbackSlotWhenClosed(t *testing.T) {
	// A closed date should not normally be selectable, but the reducer stays
	// total and hands out the neutral midday slot.
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	red := newTestReducer(clock)

	parcels, _ := red.Reconcile([]time.Time{civil(2025, time.May, 7)}, nil)

	require.Len(t, parcels, 1)
	assert.Equal(t, "12:00", TimeOfDayFrom(parcels[0].PickupEarliest, time.UTC).String())
}

func TestParcelDurationSurvivesReconcileAndBulkEdit(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	index := NewScheduleIndex([]models.OpeningSchedule{weekdayHours()}, time.UTC)
	red := NewParcelStateReducer(index, clock, 30, "hh-1", "loc-1")
	rec := NewBulkTimeReconciler(index, clock, 30)

	parcels, _ := red.Reconcile([]time.Time{civil(2025, time.May, 5), civil(2025, time.May, 8)}, nil)
	updated, err := rec.Apply(parcels, MustTimeOfDay("13:00"))
	require.NoError(t, err)

	for _, p := range updated {
		assert.Equal(t, 30*time.Minute, p.PickupLatest.Sub(p.PickupEarliest))
	}
}
