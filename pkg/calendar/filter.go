package calendar

import (
	"log"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
)

// skipReason tells why an event does not become an alarm
type skipReason string

const (
	skipMissingTime   skipReason = "missing time"
	skipCancelled     skipReason = "cancelled"
	skipAllDay        skipReason = "all-day"
	skipOutsideWindow skipReason = "outside window"
	skipDuplicate     skipReason = "duplicate"
)

// eventFilter keeps events that start inside [now, now+Window) once each.
// Duplicates are detected by UID and by title plus start time.
type eventFilter struct {
	now       time.Time
	windowEnd time.Time

	seenIDs  map[string]bool
	seenKeys map[string]bool

	components int
	events     int
	skipped    map[skipReason]int
}

func newEventFilter(now time.Time) *eventFilter {
	return &eventFilter{
		now:       now,
		windowEnd: now.Add(Window),
		seenIDs:   make(map[string]bool),
		seenKeys:  make(map[string]bool),
		skipped:   make(map[skipReason]int),
	}
}

// accept records event and reports whether it should be kept
func (f *eventFilter) accept(event models.CalendarEvent) bool {
	reason := f.check(event)
	if reason == "" {
		f.remember(event)
		return true
	}

	f.skipped[reason]++
	log.Printf("[CALENDAR] [FILTERED] %s - Event: %q (Start: %s)",
		reason, event.Title, event.StartTime.Format("2006-01-02 15:04"))
	return false
}

func (f *eventFilter) check(event models.CalendarEvent) skipReason {
	switch {
	case event.StartTime.IsZero() || event.EndTime.IsZero():
		return skipMissingTime
	case event.Status == "CANCELLED":
		return skipCancelled
	case isAllDayEvent(event):
		return skipAllDay
	case event.StartTime.Before(f.now) || !event.StartTime.Before(f.windowEnd):
		return skipOutsideWindow
	case event.ID != "" && f.seenIDs[event.ID], f.seenKeys[eventKey(event)]:
		return skipDuplicate
	}
	return ""
}

func (f *eventFilter) remember(event models.CalendarEvent) {
	if event.ID != "" {
		f.seenIDs[event.ID] = true
	}
	f.seenKeys[eventKey(event)] = true
}

func eventKey(event models.CalendarEvent) string {
	return event.Title + "|" + event.StartTime.Format(time.RFC3339)
}

func (f *eventFilter) logSummary(included int) {
	total := 0
	for _, n := range f.skipped {
		total += n
	}
	log.Printf("[CALENDAR] Total components: %d, Events: %d, Included: %d, Filtered: %d",
		f.components, f.events, included, total)
	if total > 0 {
		log.Printf("[CALENDAR] Filtered breakdown: %d cancelled, %d all-day, %d outside window, %d missing time, %d duplicates",
			f.skipped[skipCancelled], f.skipped[skipAllDay], f.skipped[skipOutsideWindow],
			f.skipped[skipMissingTime], f.skipped[skipDuplicate])
	}
}

// isAllDayEvent matches events spanning at least a day across dates
func isAllDayEvent(event models.CalendarEvent) bool {
	y1, m1, d1 := event.StartTime.Date()
	y2, m2, d2 := event.EndTime.Date()
	sameDay := y1 == y2 && m1 == m2 && d1 == d2
	return !sameDay && event.EndTime.Sub(event.StartTime) >= 24*time.Hour
}
