package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodbridge/pickup-api/internal/models"
)

func civil(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func openOn(weekday time.Weekday, opens, closes string) models.DaySpec {
	return models.DaySpec{Weekday: weekday, IsOpen: true, OpensAt: opens, ClosesAt: closes}
}

func closedOn(weekday time.Weekday) models.DaySpec {
	return models.DaySpec{Weekday: weekday, IsOpen: false}
}

func scheduleFor(id string, start, end time.Time, specs ...models.DaySpec) models.OpeningSchedule {
	days := make(map[time.Weekday]models.DaySpec, len(specs))
	for _, spec := range specs {
		days[spec.Weekday] = spec
	}
	return models.OpeningSchedule{
		ID:         id,
		LocationID: "loc-1",
		Name:       "regular hours",
		StartDate:  start,
		EndDate:    end,
		Days:       days,
	}
}

func TestScheduleIndexOpeningWindowFor(t *testing.T) {
	schedule := scheduleFor("sch-1", civil(2025, time.May, 1), civil(2025, time.May, 31),
		openOn(time.Monday, "09:00", "17:00"),
		openOn(time.Tuesday, "09:00", "17:00"),
		closedOn(time.Wednesday),
		openOn(time.Thursday, "09:00", "17:00"),
		openOn(time.Friday, "09:00", "17:00"),
	)
	ix := NewScheduleIndex([]models.OpeningSchedule{schedule}, time.UTC)

	window, open := ix.OpeningWindowFor(civil(2025, time.May, 5))
	require.True(t, open)
	assert.Equal(t, Window{Open: MustTimeOfDay("09:00"), Close: MustTimeOfDay("17:00")}, window)

	_, open = ix.OpeningWindowFor(civil(2025, time.May, 28))
	assert.False(t, open, "wednesday is marked closed")

	_, open = ix.OpeningWindowFor(civil(2025, time.May, 31))
	assert.False(t, open, "saturday has no day spec at all")

	_, open = ix.OpeningWindowFor(civil(2025, time.June, 2))
	assert.False(t, open, "monday outside the validity range")
}

func TestScheduleIndexOverlappingSchedulesIntersect(t *testing.T) {
	wide := scheduleFor("sch-1", civil(2025, time.May, 1), civil(2025, time.May, 31),
		openOn(time.Monday, "09:00", "17:00"))
	narrow := scheduleFor("sch-2", civil(2025, time.May, 1), civil(2025, time.May, 31),
		openOn(time.Monday, "10:00", "15:00"))
	ix := NewScheduleIndex([]models.OpeningSchedule{wide, narrow}, time.UTC)

	window, open := ix.OpeningWindowFor(civil(2025, time.May, 5))
	require.True(t, open)
	assert.Equal(t, Window{Open: MustTimeOfDay("10:00"), Close: MustTimeOfDay("15:00")}, window)
}

func TestScheduleIndexContradictorySchedulesClose(t *testing.T) {
	morning := scheduleFor("sch-1", civil(2025, time.May, 1), civil(2025, time.May, 31),
		openOn(time.Monday, "08:00", "10:00"))
	afternoon := scheduleFor("sch-2", civil(2025, time.May, 1), civil(2025, time.May, 31),
		openOn(time.Monday, "12:00", "14:00"))
	ix := NewScheduleIndex([]models.OpeningSchedule{morning, afternoon}, time.UTC)

	_, open := ix.OpeningWindowFor(civil(2025, time.May, 5))
	assert.False(t, open, "disjoint windows leave no common span")
}

func TestScheduleIndexRejectsInvertedDay(t *testing.T) {
	inverted := scheduleFor("sch-1", civil(2025, time.May, 1), civil(2025, time.May, 31),
		openOn(time.Monday, "17:00", "09:00"))
	ix := NewScheduleIndex([]models.OpeningSchedule{inverted}, time.UTC)

	_, open := ix.OpeningWindowFor(civil(2025, time.May, 5))
	assert.False(t, open)
}

func TestScheduleIndexToleratesSecondsInTimes(t *testing.T) {
	schedule := scheduleFor("sch-1", civil(2025, time.May, 1), civil(2025, time.May, 31),
		openOn(time.Monday, "09:00:00", "17:00:00"))
	ix := NewScheduleIndex([]models.OpeningSchedule{schedule}, time.UTC)

	window, open := ix.OpeningWindowFor(civil(2025, time.May, 5))
	require.True(t, open)
	assert.Equal(t, Window{Open: MustTimeOfDay("09:00"), Close: MustTimeOfDay("17:00")}, window)
}

func TestScheduleIndexCommonWindowFor(t *testing.T) {
	schedule := scheduleFor("sch-1", civil(2025, time.May, 1), civil(2025, time.May, 31),
		openOn(time.Monday, "09:00", "17:00"),
		openOn(time.Thursday, "10:00", "15:00"),
	)
	ix := NewScheduleIndex([]models.OpeningSchedule{schedule}, time.UTC)

	common, ok := ix.CommonWindowFor([]time.Time{civil(2025, time.May, 5), civil(2025, time.May, 8)})
	require.True(t, ok)
	assert.Equal(t, Window{Open: MustTimeOfDay("10:00"), Close: MustTimeOfDay("15:00")}, common)

	_, ok = ix.CommonWindowFor([]time.Time{civil(2025, time.May, 5), civil(2025, time.May, 7)})
	assert.False(t, ok, "a closed date voids the common window")

	_, ok = ix.CommonWindowFor(nil)
	assert.False(t, ok)
}
