package calendar

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 17, 8, 0, 0, 0, time.Local)

func crlf(s string) string {
	return strings.ReplaceAll(strings.TrimLeft(s, "\n"), "\n", "\r\n")
}

const feed = `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//feed//EN
BEGIN:VEVENT
UID:standup
DTSTAMP:20240501T000000Z
SUMMARY:Standup
DTSTART:20240517T100000
DTEND:20240517T101500
END:VEVENT
BEGIN:VEVENT
UID:standup
DTSTAMP:20240501T000000Z
SUMMARY:Standup again
DTSTART:20240517T110000
DTEND:20240517T111500
END:VEVENT
BEGIN:VEVENT
UID:cancelled
DTSTAMP:20240501T000000Z
SUMMARY:Review
STATUS:CANCELLED
DTSTART:20240517T120000
DTEND:20240517T130000
END:VEVENT
BEGIN:VEVENT
UID:cancelled-title
DTSTAMP:20240501T000000Z
SUMMARY:Canceled: Lunch
DTSTART:20240517T123000
DTEND:20240517T133000
END:VEVENT
BEGIN:VEVENT
UID:holiday
DTSTAMP:20240501T000000Z
SUMMARY:Holiday
DTSTART;VALUE=DATE:20240517
DTEND;VALUE=DATE:20240518
END:VEVENT
BEGIN:VEVENT
UID:past
DTSTAMP:20240501T000000Z
SUMMARY:Breakfast
DTSTART:20240517T070000
DTEND:20240517T073000
END:VEVENT
BEGIN:VEVENT
UID:later
DTSTAMP:20240501T000000Z
SUMMARY:Next week
DTSTART:20240524T100000
DTEND:20240524T110000
END:VEVENT
BEGIN:VEVENT
UID:no-end
DTSTAMP:20240501T000000Z
SUMMARY:Call
DTSTART:20240517T160000
END:VEVENT
BEGIN:VTODO
UID:todo
DTSTAMP:20240501T000000Z
SUMMARY:Not an event
END:VTODO
END:VCALENDAR
`

func titles(events []models.CalendarEvent) []string {
	var out []string
	for _, e := range events {
		out = append(out, e.Title)
	}
	return out
}

func TestParseEventsFilters(t *testing.T) {
	events, err := ParseEvents(strings.NewReader(crlf(feed)), now)
	require.NoError(t, err)

	assert.Equal(t, []string{"Standup", "Call"}, titles(events))
	assert.Equal(t, time.Date(2024, 5, 17, 10, 0, 0, 0, time.Local), events[0].StartTime)
	assert.Equal(t, events[1].StartTime, events[1].EndTime)
}

const recurring = `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//feed//EN
BEGIN:VEVENT
UID:daily
DTSTAMP:20240501T000000Z
SUMMARY:Daily sync
DTSTART:20240510T090000
DTEND:20240510T091500
RRULE:FREQ=DAILY
END:VEVENT
BEGIN:VEVENT
UID:weekly
DTSTAMP:20240501T000000Z
SUMMARY:Planning
DTSTART:20240503T140000
DTEND:20240503T150000
RRULE:FREQ=WEEKLY;BYDAY=FR
END:VEVENT
BEGIN:VEVENT
UID:skipped
DTSTAMP:20240501T000000Z
SUMMARY:Gym
DTSTART:20240510T180000
DTEND:20240510T190000
RRULE:FREQ=DAILY
EXDATE:20240517T180000
END:VEVENT
END:VCALENDAR
`

func TestParseEventsExpandsRecurrence(t *testing.T) {
	events, err := ParseEvents(strings.NewReader(crlf(recurring)), now)
	require.NoError(t, err)

	require.Equal(t, []string{"Daily sync", "Planning"}, titles(events))
	assert.Equal(t, time.Date(2024, 5, 17, 9, 0, 0, 0, time.Local), events[0].StartTime)
	assert.Equal(t, 15*time.Minute, events[0].EndTime.Sub(events[0].StartTime))
	assert.True(t, strings.HasPrefix(events[0].ID, "daily-"))
	assert.Equal(t, time.Date(2024, 5, 17, 14, 0, 0, 0, time.Local), events[1].StartTime)
}

func TestExpandSimpleFallback(t *testing.T) {
	base := models.CalendarEvent{
		ID:        "x",
		StartTime: time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local),
		EndTime:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local),
	}

	daily := expandSimple(base, "FREQ=DAILY;X-VENDOR=1", now, now.Add(Window))
	require.Len(t, daily, 1)
	assert.Equal(t, time.Date(2024, 5, 17, 9, 30, 0, 0, time.Local), daily[0].StartTime)

	assert.Empty(t, expandSimple(base, "FREQ=YEARLY", now, now.Add(Window)))
}

func TestParseEventsRejectsNonCalendar(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"html", "<!DOCTYPE html><html><body>Sign in</body></html>"},
		{"garbage", "hello world"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvents(strings.NewReader(tt.body), now)
			require.Error(t, err)
			assert.Equal(t, models.ErrInvalid, models.ErrorCode(err))
		})
	}
}

func TestToAlarmDrafts(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2024, 5, 17, h, m, 0, 0, time.Local) }
	events := []models.CalendarEvent{
		{ID: "b", Title: "Dentist", StartTime: at(15, 0)},
		{ID: "a", Title: "Standup", StartTime: at(10, 0)},
		{ID: "c", Title: "Standup", StartTime: at(10, 0)},
		{ID: "d", Title: "Too soon", StartTime: at(8, 5)},
		{ID: "e", Title: "Tomorrow", StartTime: at(6, 0).AddDate(0, 0, 1)},
	}

	drafts := ToAlarmDrafts(events, 15, now)

	require.Len(t, drafts, 3)
	assert.Equal(t, models.ClockTime{Hour: 5, Minute: 45}, drafts[2].Time)
	assert.Equal(t, AlarmDraft{Time: models.ClockTime{Hour: 9, Minute: 45}, Label: "Standup", EventID: "a", At: at(9, 45)}, drafts[0])
	assert.Equal(t, "Dentist", drafts[1].Label)
	assert.Equal(t, models.ClockTime{Hour: 14, Minute: 45}, drafts[1].Time)

	noLead := ToAlarmDrafts(events[3:4], -5, now)
	require.Len(t, noLead, 1)
	assert.Equal(t, models.ClockTime{Hour: 8, Minute: 5}, noLead[0].Time)
}

func TestExport(t *testing.T) {
	alarms := []models.Alarm{
		{ID: "one", Time: models.ClockTime{Hour: 7, Minute: 30}, Tone: "Chime", Label: "Wake up", Enabled: true},
		{ID: "two", Time: models.ClockTime{Hour: 9, Minute: 0}, Tone: "Default", Enabled: false},
		{ID: "three", Time: models.ClockTime{Hour: 22, Minute: 15}, Tone: "Default", Enabled: true},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, alarms, now))

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	assert.Equal(t, productID, cal.Props.Get(ical.PropProductID).Value)

	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "one", first.Props.Get(ical.PropUID).Value)
	assert.Equal(t, "Wake up", first.Props.Get(ical.PropSummary).Value)
	start, err := first.Props.Get(ical.PropDateTimeStart).DateTime(time.Local)
	require.NoError(t, err)
	// 07:30 already passed at 08:00, so it is tomorrow
	assert.True(t, start.Equal(time.Date(2024, 5, 18, 7, 30, 0, 0, time.Local)))

	require.Len(t, first.Children, 1)
	assert.Equal(t, ical.CompAlarm, first.Children[0].Name)
	assert.Equal(t, "DISPLAY", first.Children[0].Props.Get(ical.PropAction).Value)

	second := events[1]
	assert.Equal(t, "Alarm 22:15", second.Props.Get(ical.PropSummary).Value)
	start, err = second.Props.Get(ical.PropDateTimeStart).DateTime(time.Local)
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 5, 17, 22, 15, 0, 0, time.Local)))
}

func TestFetchEvents(t *testing.T) {
	body := crlf(feed)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cal.ics" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		io.WriteString(w, body)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cal.ics")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	sources := map[string]string{
		"http":     srv.URL + "/cal.ics",
		"path":     path,
		"file url": "file://" + filepath.ToSlash(path),
	}
	for name, location := range sources {
		t.Run(name, func(t *testing.T) {
			events, err := FetchEvents(context.Background(), models.ICalSource{ID: "src", Name: name, URL: location}, now)
			require.NoError(t, err)
			require.Len(t, events, 2)
			for _, e := range events {
				assert.Equal(t, "src", e.SourceID)
			}
		})
	}

	t.Run("not found", func(t *testing.T) {
		_, err := FetchEvents(context.Background(), models.ICalSource{ID: "src", Name: "x", URL: srv.URL + "/missing"}, now)
		assert.ErrorContains(t, err, "404")
	})

	t.Run("invalid source", func(t *testing.T) {
		_, err := FetchEvents(context.Background(), models.ICalSource{URL: path}, now)
		assert.Equal(t, models.ErrInvalid, models.ErrorCode(err))
	})
}

func TestFetchEventsFallbackIDs(t *testing.T) {
	body := crlf(`
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//feed//EN
BEGIN:VEVENT
DTSTAMP:20240501T000000Z
SUMMARY:Anonymous
DTSTART:20240517T100000
DTEND:20240517T110000
END:VEVENT
END:VCALENDAR
`)
	path := filepath.Join(t.TempDir(), "anon.ics")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	events, err := FetchEvents(context.Background(), models.ICalSource{ID: "src", Name: "anon", URL: path}, now)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, strings.HasPrefix(events[0].ID, "src-"))
	assert.True(t, strings.HasSuffix(events[0].ID, "-Anonymous"))
}

func TestTimezoneNormalization(t *testing.T) {
	comp := ical.NewComponent(ical.CompEvent)
	start := ical.NewProp(ical.PropDateTimeStart)
	start.Value = "20240517T100000"
	start.Params.Set(ical.ParamTimezoneID, "Tokyo Standard Time")
	comp.Props.Set(start)

	normalizeComponentTimezones(comp)

	assert.Equal(t, "Asia/Tokyo", comp.Props.Get(ical.PropDateTimeStart).Params.Get(ical.ParamTimezoneID))
	if loc := getTimezoneFromComponent(comp); loc != time.Local {
		assert.Equal(t, "Asia/Tokyo", loc.String())
	}

	utc := ical.NewComponent(ical.CompEvent)
	utcStart := ical.NewProp(ical.PropDateTimeStart)
	utcStart.Value = "20240517T100000Z"
	utc.Props.Set(utcStart)
	assert.Equal(t, time.UTC, getTimezoneFromComponent(utc))
}

func TestEventFilterReasons(t *testing.T) {
	at := func(h int) time.Time { return now.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name  string
		event models.CalendarEvent
		want  skipReason
	}{
		{"kept", models.CalendarEvent{ID: "a", Title: "A", StartTime: at(1), EndTime: at(2)}, ""},
		{"missing end", models.CalendarEvent{Title: "B", StartTime: at(1)}, skipMissingTime},
		{"cancelled", models.CalendarEvent{Title: "C", StartTime: at(1), EndTime: at(2), Status: "CANCELLED"}, skipCancelled},
		{"all day", models.CalendarEvent{Title: "D", StartTime: at(16), EndTime: at(40)}, skipAllDay},
		{"past", models.CalendarEvent{Title: "E", StartTime: at(-1), EndTime: at(0)}, skipOutsideWindow},
		{"window end", models.CalendarEvent{Title: "F", StartTime: at(24), EndTime: at(25)}, skipOutsideWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEventFilter(now)
			assert.Equal(t, tt.want, f.check(tt.event))
		})
	}
}

func TestEventFilterDuplicates(t *testing.T) {
	f := newEventFilter(now)
	start := now.Add(time.Hour)
	event := models.CalendarEvent{ID: "x", Title: "Sync", StartTime: start, EndTime: start.Add(time.Hour)}

	assert.True(t, f.accept(event))
	assert.False(t, f.accept(event))

	sameTitle := event
	sameTitle.ID = "y"
	assert.False(t, f.accept(sameTitle))

	moved := event
	moved.ID = "z"
	moved.StartTime = start.Add(time.Minute)
	assert.True(t, f.accept(moved))

	assert.Equal(t, 2, f.skipped[skipDuplicate])
}
