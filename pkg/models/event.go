package models

import "time"

// CalendarEvent represents a calendar event used to seed alarms
type CalendarEvent struct {
	ID        string    // iCal event UID
	Title     string    // Event title/summary
	StartTime time.Time // Event start time
	EndTime   time.Time // Event end time
	Status    string    // Event status (CONFIRMED, CANCELLED, TENTATIVE)
	SourceID  string    // ID of the iCal source this event came from
}
