package calendar

import (
	"log"
	"strings"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

// expandRecurringEvent expands a recurring event into the instances that
// start within [windowStart, windowEnd). EXDATEs are honoured.
func expandRecurringEvent(comp *ical.Component, baseEvent models.CalendarEvent, rule string, windowStart, windowEnd time.Time) []models.CalendarEvent {
	if baseEvent.StartTime.IsZero() || baseEvent.EndTime.IsZero() {
		// Left to the missing-time filter
		return []models.CalendarEvent{baseEvent}
	}

	set, err := recurrenceSet(comp, baseEvent, rule)
	if err != nil {
		// rrule-go is strict; fall back to plain DAILY/WEEKLY stepping
		log.Printf("[CALENDAR] [RECURRING] Cannot parse RRULE %q for \"%s\": %v", rule, baseEvent.Title, err)
		return expandSimple(baseEvent, rule, windowStart, windowEnd)
	}

	var starts []time.Time
	for _, t := range set.Between(windowStart, windowEnd, true) {
		if t.Before(windowEnd) {
			starts = append(starts, t)
		}
	}
	return instances(baseEvent, starts)
}

func recurrenceSet(comp *ical.Component, baseEvent models.CalendarEvent, rule string) (*rrule.Set, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, err
	}
	opt.Dtstart = baseEvent.StartTime

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, err
	}

	set := &rrule.Set{}
	set.RRule(r)

	loc := getTimezoneFromComponent(comp)
	for _, exdate := range comp.Props.Values(ical.PropExceptionDates) {
		// EXDATE may carry a comma separated list
		for _, value := range strings.Split(exdate.Value, ",") {
			p := exdate
			p.Value = value
			if t, err := parseDateTimeProperty(&p, loc); err == nil {
				set.ExDate(t)
			}
		}
	}
	return set, nil
}

func expandSimple(baseEvent models.CalendarEvent, rule string, windowStart, windowEnd time.Time) []models.CalendarEvent {
	var step time.Duration
	switch {
	case strings.Contains(rule, "FREQ=DAILY"):
		step = 24 * time.Hour
	case strings.Contains(rule, "FREQ=WEEKLY"):
		step = 7 * 24 * time.Hour
	default:
		log.Printf("[CALENDAR] [RECURRING] Unsupported RRULE pattern: %s", rule)
		return nil
	}

	var starts []time.Time
	for current := baseEvent.StartTime; current.Before(windowEnd); current = current.Add(step) {
		if !current.Before(windowStart) {
			starts = append(starts, current)
		}
	}
	return instances(baseEvent, starts)
}

func instances(baseEvent models.CalendarEvent, starts []time.Time) []models.CalendarEvent {
	duration := baseEvent.EndTime.Sub(baseEvent.StartTime)

	events := make([]models.CalendarEvent, 0, len(starts))
	for _, start := range starts {
		instance := baseEvent
		instance.StartTime = start.In(time.Local)
		instance.EndTime = instance.StartTime.Add(duration)
		if baseEvent.ID != "" {
			instance.ID = baseEvent.ID + "-" + start.Format(time.RFC3339)
		}
		events = append(events, instance)
	}
	return events
}
