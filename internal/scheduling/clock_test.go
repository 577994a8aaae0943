package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCivilDateNormalizesToMidnight(t *testing.T) {
	east := time.FixedZone("UTC+2", 2*60*60)

	// Late evening UTC is already the next civil date two hours east.
	instant := time.Date(2025, time.May, 2, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, time.May, 3, 0, 0, 0, 0, east), CivilDate(instant, east))
	assert.Equal(t, time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC), CivilDate(instant, time.UTC))
}

func TestDateKeyUsesRegionZone(t *testing.T) {
	east := time.FixedZone("UTC+2", 2*60*60)
	instant := time.Date(2025, time.May, 2, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-05-03", DateKey(instant, east))
	assert.Equal(t, "2025-05-02", DateKey(instant, time.UTC))
}

func TestSameCivilDate(t *testing.T) {
	a := time.Date(2025, time.May, 2, 0, 1, 0, 0, time.UTC)
	b := time.Date(2025, time.May, 2, 23, 59, 0, 0, time.UTC)
	c := time.Date(2025, time.May, 3, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameCivilDate(a, b, time.UTC))
	assert.False(t, SameCivilDate(a, c, time.UTC))
}

func TestFixedClockToday(t *testing.T) {
	clock := NewFixedClock(time.Date(2025, time.May, 5, 14, 30, 0, 0, time.UTC), time.UTC)

	assert.Equal(t, time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC), Today(clock))
}
