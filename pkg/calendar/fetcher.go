package calendar

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/emersion/go-ical"
)

// Window is how far ahead events are imported
const Window = 24 * time.Hour

var httpClient = &http.Client{Timeout: 30 * time.Second}

// FetchEvents fetches and parses events from an iCal source that start
// within Window of now
func FetchEvents(ctx context.Context, source models.ICalSource, now time.Time) ([]models.CalendarEvent, error) {
	if !source.Validate() {
		return nil, models.Errorf(models.ErrInvalid, "calendar source needs a name and a URL")
	}

	body, err := open(ctx, source.URL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	log.Printf("[CALENDAR] Fetching %s", source.Name)

	events, err := ParseEvents(body, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source.Name, err)
	}

	// Set the source ID for all events
	eventsWithoutUID := 0
	for i := range events {
		events[i].SourceID = source.ID
		// Fallback: if no iCal UID, use deterministic ID based on start time and title
		if events[i].ID == "" {
			events[i].ID = source.ID + "-" + events[i].StartTime.Format(time.RFC3339) + "-" + events[i].Title
			eventsWithoutUID++
		}
	}

	if eventsWithoutUID > 0 {
		log.Printf("[CALENDAR] Generated fallback IDs for %d events without UID", eventsWithoutUID)
	}

	return events, nil
}

// open returns the body of an http(s) URL, a file:// URL or a local path
func open(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return openHTTP(ctx, location)
		case "file":
			location = u.Path
		}
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	return f, nil
}

func openHTTP(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar URL: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request failed: %s", resp.Status)
	}
	return resp.Body, nil
}

// ParseEvents decodes an iCal stream and returns the timed, non-cancelled
// events overlapping [now, now+Window], recurring events expanded
func ParseEvents(r io.Reader, now time.Time) ([]models.CalendarEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar: %w", err)
	}
	bodyStr := string(data)

	// Validate response format
	if err := validateICalFormat(bodyStr); err != nil {
		return nil, err
	}

	decoder := ical.NewDecoder(strings.NewReader(bodyStr))
	filter := newEventFilter(now)
	events := []models.CalendarEvent{}

	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, models.Errorf(models.ErrInvalid, "failed to decode calendar: %v", err)
		}

		for _, comp := range cal.Children {
			filter.components++
			if comp.Name != ical.CompEvent {
				continue
			}
			filter.events++

			normalizeComponentTimezones(comp)
			event := parseEvent(comp)

			candidates := []models.CalendarEvent{event}
			if rruleProp := comp.Props.Get(ical.PropRecurrenceRule); rruleProp != nil {
				candidates = expandRecurringEvent(comp, event, rruleProp.Value, filter.now, filter.windowEnd)
			}
			for _, candidate := range candidates {
				if filter.accept(candidate) {
					events = append(events, candidate)
				}
			}
		}
	}

	// Log filtering summary
	filter.logSummary(len(events))

	return events, nil
}

func validateICalFormat(bodyStr string) error {
	// Check if response is HTML instead of iCalendar
	upperBody := strings.ToUpper(strings.TrimSpace(bodyStr))
	if strings.HasPrefix(upperBody, "<!DOCTYPE") || strings.HasPrefix(upperBody, "<HTML") {
		return models.Errorf(models.ErrInvalid, "received HTML instead of iCalendar data - check if URL requires authentication")
	}

	// Check if it starts with BEGIN:VCALENDAR
	if !strings.HasPrefix(strings.TrimSpace(bodyStr), "BEGIN:VCALENDAR") {
		preview := strings.TrimSpace(bodyStr)
		if len(preview) > 100 {
			preview = preview[:100]
		}
		return models.Errorf(models.ErrInvalid, "invalid iCalendar format - expected BEGIN:VCALENDAR, got: %s", preview)
	}

	return nil
}
