package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/foodbridge/pickup-api/internal/models"
)

// weekdayHours is the recurring fixture most engine tests share: open
// Mon/Tue/Thu/Fri 09:00-17:00, Wednesday explicitly closed, weekends absent,
// valid through May 2025.
func weekdayHours() models.OpeningSchedule {
	return scheduleFor("sch-1", civil(2025, time.May, 1), civil(2025, time.May, 31),
		openOn(time.Monday, "09:00", "17:00"),
		openOn(time.Tuesday, "09:00", "17:00"),
		closedOn(time.Wednesday),
		openOn(time.Thursday, "09:00", "17:00"),
		openOn(time.Friday, "09:00", "17:00"),
	)
}

func TestDateSelectionPolicyEvaluate(t *testing.T) {
	index := NewScheduleIndex([]models.OpeningSchedule{weekdayHours()}, time.UTC)
	ledger := NewCapacityLedger(models.CapacitySnapshot{
		MaxPerDay:  intPtr(5),
		DateCounts: map[string]int{"2025-05-05": 5},
	}, time.UTC)
	clock := NewFixedClock(time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC), time.UTC)
	policy := NewDateSelectionPolicy(index, ledger, clock)

	tests := []struct {
		name string
		date time.Time
		want DayStatus
	}{
		{name: "open weekday", date: civil(2025, time.May, 29), want: DayOpen},
		{name: "weekday marked closed", date: civil(2025, time.May, 28), want: DayClosed},
		{name: "weekend without day spec", date: civil(2025, time.May, 31), want: DayClosed},
		{name: "booked out", date: civil(2025, time.May, 5), want: DayFull},
		{name: "before today", date: civil(2025, time.April, 30), want: DayPast},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.Evaluate(tc.date, nil)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want == DayOpen, got.Selectable())
		})
	}
}

func TestDateSelectionPolicySelectedAlwaysWins(t *testing.T) {
	index := NewScheduleIndex([]models.OpeningSchedule{weekdayHours()}, time.UTC)
	ledger := NewCapacityLedger(models.CapacitySnapshot{
		MaxPerDay:  intPtr(5),
		DateCounts: map[string]int{"2025-05-05": 5},
	}, time.UTC)
	clock := NewFixedClock(time.Date(2025, time.May, 20, 8, 0, 0, 0, time.UTC), time.UTC)
	policy := NewDateSelectionPolicy(index, ledger, clock)

	// One date is booked out and already past, the other is a closed
	// Wednesday. Both stay selectable so the user can always deselect.
	selection := []time.Time{civil(2025, time.May, 5), civil(2025, time.May, 7)}

	for _, d := range selection {
		status := policy.Evaluate(d, selection)
		assert.Equal(t, DaySelected, status)
		assert.True(t, status.Selectable())
	}
}

func TestDateSelectionPolicyTodayAfterClosing(t *testing.T) {
	index := NewScheduleIndex([]models.OpeningSchedule{weekdayHours()}, time.UTC)
	ledger := NewCapacityLedger(models.CapacitySnapshot{}, time.UTC)
	today := civil(2025, time.May, 1)

	evening := NewFixedClock(time.Date(2025, time.May, 1, 17, 0, 0, 0, time.UTC), time.UTC)
	policy := NewDateSelectionPolicy(index, ledger, evening)
	assert.Equal(t, DayAfterClose, policy.Evaluate(today, nil))

	// Before opening is fine; only a passed closing time blocks today.
	morning := NewFixedClock(time.Date(2025, time.May, 1, 8, 59, 0, 0, time.UTC), time.UTC)
	policy = NewDateSelectionPolicy(index, ledger, morning)
	assert.Equal(t, DayOpen, policy.Evaluate(today, nil))
}
