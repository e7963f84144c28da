package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/emersion/go-ical"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func parseEvent(comp *ical.Component) models.CalendarEvent {
	loc := getTimezoneFromComponent(comp)
	event := models.CalendarEvent{
		ID:        propText(comp, ical.PropUID),
		Title:     propText(comp, ical.PropSummary),
		Status:    strings.ToUpper(propText(comp, ical.PropStatus)),
		StartTime: propTime(comp, ical.PropDateTimeStart, loc),
		EndTime:   propTime(comp, ical.PropDateTimeEnd, loc),
	}

	// Timed events without DTEND last zero time, date-only ones stay incomplete
	if start := comp.Props.Get(ical.PropDateTimeStart); event.EndTime.IsZero() && !event.StartTime.IsZero() && !isDateOnly(start) {
		event.EndTime = event.StartTime
	}

	// Some calendars only rename cancelled events
	if isCancelledTitle(event.Title) {
		event.Status = "CANCELLED"
	}

	return event
}

func propText(comp *ical.Component, name string) string {
	if prop := comp.Props.Get(name); prop != nil {
		return prop.Value
	}
	return ""
}

// propTime returns the zero time when the property is missing or unparsable
func propTime(comp *ical.Component, name string, loc *time.Location) time.Time {
	prop := comp.Props.Get(name)
	if prop == nil {
		return time.Time{}
	}
	t, err := parseDateTimeProperty(prop, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseDateTimeProperty returns the property as local time. Floating times
// are read in loc.
func parseDateTimeProperty(prop *ical.Prop, loc *time.Location) (time.Time, error) {
	if t, err := prop.DateTime(loc); err == nil {
		return t.In(time.Local), nil
	}

	// If that fails, try parsing the raw value directly
	value := prop.Value

	formats := []string{
		"20060102T150405",     // Basic format: YYYYMMDDTHHMMSS
		"20060102T150405Z",    // UTC format
		time.RFC3339,          // Standard RFC3339
		"2006-01-02T15:04:05", // ISO 8601 without timezone
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, value, loc); err == nil {
			return t.In(time.Local), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime value: %s", value)
}

func isDateOnly(prop *ical.Prop) bool {
	return len(strings.TrimSpace(prop.Value)) == len("20060102")
}

func isCancelledTitle(title string) bool {
	cleanTitle := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "")
	return strings.HasPrefix(cleanTitle, "canceled") || strings.HasPrefix(cleanTitle, "cancelled")
}
