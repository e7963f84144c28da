package calendar

import (
	"fmt"
	"io"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/emersion/go-ical"
)

const productID = "-//borgmon//alarm-clock//EN"

// Export writes the enabled alarms as a VCALENDAR. Each alarm becomes a
// one-minute VEVENT at its next occurrence after now, with a DISPLAY VALARM.
func Export(w io.Writer, alarms []models.Alarm, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	stamp := now.UTC()
	for _, alarm := range alarms {
		if !alarm.Enabled {
			continue
		}
		start := alarm.Time.Next(now)

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, alarm.ID)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Minute).UTC())
		event.Props.SetText(ical.PropSummary, alarm.DisplayName())
		if alarm.Tone != "" {
			event.Props.SetText(ical.PropDescription, "Tone: "+alarm.Tone)
		}

		valarm := ical.NewComponent(ical.CompAlarm)
		valarm.Props.SetText(ical.PropAction, "DISPLAY")
		valarm.Props.SetText(ical.PropDescription, alarm.DisplayName())
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = "PT0S"
		valarm.Props.Set(trigger)
		event.Children = append(event.Children, valarm)

		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
