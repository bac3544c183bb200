package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Event struct {
	ID          int64     `db:"id"          json:"id"`
	Title       string    `db:"title"       json:"title"`
	Date        EventDate `db:"date"        json:"date"`
	Time        string    `db:"time"        json:"time"`
	Description string    `db:"description" json:"description"`
	Image       ImageRef  `db:"image"       json:"image"`
	ImageURL    string    `db:"-"           json:"-"`
	CreatedAt   time.Time `db:"created_at"  json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updatedAt"`
}

const (
	isoDateLayout = "2006-01-02"
	dmyDateLayout = "02-01-2006"
)

type dateKind int

const (
	dateUnset dateKind = iota
	dateExact
	dateRecurring
)

// EventDate is either an exact calendar day or a free-form recurring label
// such as “Setiap Sabtu”.
type EventDate struct {
	kind  dateKind
	day   time.Time
	label string
}

func ExactDate(t time.Time) EventDate {
	return EventDate{kind: dateExact, day: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func RecurringLabel(label string) EventDate {
	label = strings.TrimSpace(label)
	if label == "" {
		return EventDate{}
	}
	return EventDate{kind: dateRecurring, label: label}
}

// ParseEventDate accepts YYYY-MM-DD and DD-MM-YYYY as exact dates. Anything
// else is kept verbatim as a recurring label.
func ParseEventDate(raw string) EventDate {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{isoDateLayout, dmyDateLayout} {
		if len(raw) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, raw); err == nil {
			return ExactDate(t)
		}
	}
	return RecurringLabel(raw)
}

func (d EventDate) IsZero() bool      { return d.kind == dateUnset }
func (d EventDate) IsExact() bool     { return d.kind == dateExact }
func (d EventDate) IsRecurring() bool { return d.kind == dateRecurring }

// Day returns the calendar day of an exact date.
func (d EventDate) Day() (time.Time, bool) {
	return d.day, d.kind == dateExact
}

func (d EventDate) Label() string { return d.label }

// String renders exact dates as ISO days and recurring dates as their label.
func (d EventDate) String() string {
	switch d.kind {
	case dateExact:
		return d.day.Format(isoDateLayout)
	case dateRecurring:
		return d.label
	default:
		return ""
	}
}

func (d EventDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *EventDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = EventDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("event date: %w", err)
	}
	*d = ParseEventDate(s)
	return nil
}

func (d *EventDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = EventDate{}
	case string:
		*d = ParseEventDate(v)
	case []byte:
		*d = ParseEventDate(string(v))
	case time.Time:
		*d = ExactDate(v)
	default:
		return fmt.Errorf("cannot scan %T into EventDate", src)
	}
	return nil
}

func (d EventDate) Value() (driver.Value, error) {
	return d.String(), nil
}

// Before orders recurring labels ahead of exact dates, exact dates ascending.
func (d EventDate) Before(o EventDate) bool {
	if d.kind != o.kind {
		return d.kind == dateRecurring || o.kind == dateUnset
	}
	if d.kind == dateExact {
		return d.day.Before(o.day)
	}
	return false
}

// SortEvents returns a sorted copy; see EventDate.Before.
func SortEvents(events []Event) []Event {
	out := append([]Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Upcoming returns the first n events in display order.
func Upcoming(events []Event, n int) []Event {
	sorted := SortEvents(events)
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
