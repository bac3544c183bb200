package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrayerTimePatchLeavesUnsetFields(t *testing.T) {
	p := PrayerTime{ID: 1, Name: "Subuh", Time: "04:30", IsActive: false}
	clock := "05:00"

	got := PrayerTimePatch{Time: &clock}.Apply(p)

	assert.Equal(t, "05:00", got.Time)
	assert.False(t, got.IsActive)
}

func TestValidClock(t *testing.T) {
	assert.True(t, ValidClock("00:00"))
	assert.True(t, ValidClock("23:59"))
	assert.False(t, ValidClock("24:00"))
	assert.False(t, ValidClock("7:30"))
	assert.False(t, ValidClock("07-30"))
}

func TestNextPrayer(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	prayers := []PrayerTime{
		{Name: "Isya", Time: "19:15", IsActive: true},
		{Name: "Subuh", Time: "04:30", IsActive: true},
		{Name: "Dzuhur", Time: "12:00", IsActive: true},
		{Name: "Imsak", Time: "04:20", IsActive: false},
	}

	now := time.Date(2025, 6, 1, 11, 30, 0, 0, loc)
	next, ok := NextPrayer(prayers, now)
	require.True(t, ok)
	assert.Equal(t, "Dzuhur", next.Prayer.Name)
	assert.Equal(t, 30*time.Minute, next.Remaining)

	late := time.Date(2025, 6, 1, 22, 0, 0, 0, loc)
	next, ok = NextPrayer(prayers, late)
	require.True(t, ok)
	assert.Equal(t, "Subuh", next.Prayer.Name, "inactive Imsak is skipped")
	assert.Equal(t, time.Date(2025, 6, 2, 4, 30, 0, 0, loc), next.At)

	_, ok = NextPrayer(nil, now)
	assert.False(t, ok)
}
