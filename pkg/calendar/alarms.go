package calendar

import (
	"log"
	"sort"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
)

// AlarmDraft is an alarm proposed from a calendar event
type AlarmDraft struct {
	Time    models.ClockTime
	Label   string
	EventID string
	At      time.Time // the moment the alarm will ring
}

// ToAlarmDrafts turns events into alarms ringing leadMinutes before each
// event start. Alarms that would ring before now are skipped, as are drafts
// with the same time and label.
func ToAlarmDrafts(events []models.CalendarEvent, leadMinutes int, now time.Time) []AlarmDraft {
	if leadMinutes < 0 {
		leadMinutes = 0
	}
	lead := time.Duration(leadMinutes) * time.Minute
	nowMinute := now.Truncate(time.Minute)

	seen := make(map[string]bool)
	drafts := []AlarmDraft{}
	for _, event := range events {
		at := event.StartTime.Add(-lead).In(time.Local)
		if at.Truncate(time.Minute).Before(nowMinute) {
			log.Printf("[CALENDAR] Skipping \"%s\": alarm time %s already passed", event.Title, at.Format("15:04"))
			continue
		}

		draft := AlarmDraft{
			Time:    models.ClockTimeOf(at),
			Label:   event.Title,
			EventID: event.ID,
			At:      at,
		}
		key := draft.Time.String() + "|" + draft.Label
		if seen[key] {
			continue
		}
		seen[key] = true
		drafts = append(drafts, draft)
	}

	sort.SliceStable(drafts, func(i, j int) bool {
		return drafts[i].At.Before(drafts[j].At)
	})
	return drafts
}
