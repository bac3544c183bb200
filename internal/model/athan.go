package model

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

type PrayerTime struct {
	ID       int64  `db:"id"        json:"id"`
	Name     string `db:"name"      json:"name"`     // “Subuh”, “Dzuhur”, …
	Time     string `db:"time"      json:"time"`     // “04:30”
	IsActive bool   `db:"is_active" json:"isActive"`
}

// PrayerTimePatch carries the fields of a prayer time update. Nil fields are left untouched.
type PrayerTimePatch struct {
	Time     *string `json:"time,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// Apply returns p with the non-nil fields of the patch applied.
func (patch PrayerTimePatch) Apply(p PrayerTime) PrayerTime {
	if patch.Time != nil {
		p.Time = *patch.Time
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	return p
}

// RequiredPrayers are seeded active with DefaultPrayerTimes.
var RequiredPrayers = []string{"Subuh", "Dzuhur", "Ashar", "Maghrib", "Isya"}

// OptionalPrayers always exist but start inactive.
var OptionalPrayers = []string{"Imsak", "Jumat", "Sahur", "Berbuka"}

// PrayerNames is the full fixed label set in display order.
func PrayerNames() []string {
	names := make([]string, 0, len(RequiredPrayers)+len(OptionalPrayers))
	names = append(names, RequiredPrayers...)
	return append(names, OptionalPrayers...)
}

func IsOptionalPrayer(name string) bool {
	for _, n := range OptionalPrayers {
		if n == name {
			return true
		}
	}
	return false
}

// ClockMinutes parses “HH:MM” into minutes after midnight.
func ClockMinutes(clock string) (int, bool) {
	h, m, ok := strings.Cut(clock, ":")
	if !ok || len(h) != 2 || len(m) != 2 {
		return 0, false
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}

func ValidClock(clock string) bool {
	_, ok := ClockMinutes(clock)
	return ok
}

// UpcomingPrayer is the next active prayer relative to some instant.
type UpcomingPrayer struct {
	Prayer    PrayerTime
	At        time.Time
	Remaining time.Duration
}

// NextPrayer finds the first active prayer later today, or the earliest one tomorrow.
func NextPrayer(prayers []PrayerTime, now time.Time) (UpcomingPrayer, bool) {
	type slot struct {
		p   PrayerTime
		min int
	}
	slots := make([]slot, 0, len(prayers))
	for _, p := range prayers {
		if !p.IsActive {
			continue
		}
		if m, ok := ClockMinutes(p.Time); ok {
			slots = append(slots, slot{p: p, min: m})
		}
	}
	if len(slots) == 0 {
		return UpcomingPrayer{}, false
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].min < slots[j].min })

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	current := now.Hour()*60 + now.Minute()

	target := slots[0]
	day := midnight.AddDate(0, 0, 1)
	for _, s := range slots {
		if s.min > current {
			target = s
			day = midnight
			break
		}
	}

	at := day.Add(time.Duration(target.min) * time.Minute)
	return UpcomingPrayer{Prayer: target.p, At: at, Remaining: at.Sub(now)}, true
}

// BoardPage is what a board renders for one refresh.
type BoardPage struct {
	Date    string // “AUGUST 5, 2025”
	Prayers []PrayerTime
	Next    *UpcomingPrayer
	Events  []Event
	Finance FinanceSummary
}
