package models

import (
	"fmt"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// DefaultTone is the tone assigned to alarms created without an explicit choice
const DefaultTone = "Default"

// ClockTime is a time of day with minute precision. It carries no date and no timezone.
type ClockTime struct {
	Hour   int `json:"hour"`   // 0-23
	Minute int `json:"minute"` // 0-59
}

// NewClockTime validates hour and minute and returns the ClockTime
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 {
		return ClockTime{}, Errorf(ErrInvalid, "hour %d out of range 0-23", hour)
	}
	if minute < 0 || minute > 59 {
		return ClockTime{}, Errorf(ErrInvalid, "minute %d out of range 0-59", minute)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// ClockTimeOf returns the hour and minute of t
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseClockTime parses "HH:MM" (24-hour clock, both fields two digits)
func ParseClockTime(s string) (ClockTime, error) {
	hourStr, minStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ClockTime{}, Errorf(ErrInvalid, "time %q must be formatted as HH:MM", s)
	}
	hour, ok := parseTwoDigits(hourStr)
	if !ok {
		return ClockTime{}, Errorf(ErrInvalid, "invalid hour in %q, want two digits", s)
	}
	minute, ok := parseTwoDigits(minStr)
	if !ok {
		return ClockTime{}, Errorf(ErrInvalid, "invalid minute in %q, want two digits", s)
	}
	return NewClockTime(hour, minute)
}

// parseTwoDigits rejects signs, spaces and short or long fields
func parseTwoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// MinuteOfDay returns minutes since midnight
func (c ClockTime) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

// AddMinutes shifts the time by n minutes, wrapping across midnight in both directions
func (c ClockTime) AddMinutes(n int) ClockTime {
	m := (c.MinuteOfDay() + n) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return ClockTime{Hour: m / 60, Minute: m % 60}
}

// Matches reports whether t falls within this hour and minute
func (c ClockTime) Matches(t time.Time) bool {
	return t.Hour() == c.Hour && t.Minute() == c.Minute
}

// Next returns the next occurrence of this time at or after from, in from's location
func (c ClockTime) Next(from time.Time) time.Time {
	next := time.Date(from.Year(), from.Month(), from.Day(), c.Hour, c.Minute, 0, 0, from.Location())
	if next.Before(from.Truncate(time.Minute)) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// MinutesUntil returns how many minutes from t until the next occurrence (0 when t is within this minute)
func (c ClockTime) MinutesUntil(t time.Time) int {
	d := (c.MinuteOfDay() - ClockTimeOf(t).MinuteOfDay()) % minutesPerDay
	if d < 0 {
		d += minutesPerDay
	}
	return d
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Alarm is a user-defined time-of-day trigger.
//
// Alarms are values: updates produce a modified copy which replaces the
// stored entry with the same ID.
type Alarm struct {
	ID      string    `json:"id"`      // Stable identifier (UUID) assigned at creation
	Time    ClockTime `json:"time"`    // When the alarm rings
	Tone    string    `json:"tone"`    // Sound choice, see audio.Tones
	Label   string    `json:"label"`   // Optional text shown while ringing
	Enabled bool      `json:"enabled"` // Disabled alarms never ring
}

// WithEnabled returns a copy with the enabled flag set
func (a Alarm) WithEnabled(enabled bool) Alarm {
	a.Enabled = enabled
	return a
}

// Snoozed returns a copy moved minutes later, still enabled
func (a Alarm) Snoozed(minutes int) Alarm {
	a.Time = a.Time.AddMinutes(minutes)
	a.Enabled = true
	return a
}

// Dismissed returns a disabled copy with the time unchanged
func (a Alarm) Dismissed() Alarm {
	a.Enabled = false
	return a
}

// DisplayName returns the label, or the formatted time for unlabeled alarms
func (a Alarm) DisplayName() string {
	if a.Label != "" {
		return a.Label
	}
	return "Alarm " + a.Time.String()
}
