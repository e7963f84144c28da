package main

import (
	"errors"
	"log"
	"time"

	"fyne.io/fyne/v2"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/ringer"
	"github.com/borgmon/alarm-clock/pkg/store"
)

// fynePresenter forwards ringer events to the windows on the fyne thread
type fynePresenter struct {
	ac *AlarmClock
}

func (p *fynePresenter) ShowTime(now time.Time) {
	fyne.Do(func() {
		if cw := p.ac.clockWindow; cw != nil {
			cw.setTime(now)
		}
	})
}

func (p *fynePresenter) ShowRinging(alarm models.Alarm) {
	fyne.Do(func() {
		p.ac.showRinging(alarm)
	})
}

func (p *fynePresenter) HideRinging(alarm models.Alarm, res ringer.Resolution) {
	fyne.Do(func() {
		p.ac.hideRinging(alarm, res)
	})
}

func (p *fynePresenter) Notify(title, message string) {
	fyne.Do(func() {
		p.ac.notify(title, message)
	})
}

func (ac *AlarmClock) showRinging(alarm models.Alarm) {
	if ac.ringingWindow != nil {
		ac.ringingWindow.Close()
	}
	ac.releaseHotkey()

	ac.ringingWindow = NewRingingWindow(ac.app, alarm, RingingOptions{
		SnoozeMinutes: ac.config.SnoozeMinutes,
		HoldTime:      time.Duration(ac.config.HoldTimeSeconds) * time.Second,
		OnSnooze:      ac.snoozeFromUI,
		OnDismiss:     ac.dismissFromUI,
	})
	ac.ringingWindow.Show()

	if ac.config.SnoozeHotkey {
		ac.snoozeHotkey = registerSnoozeHotkey(func() {
			ac.snoozeFromUI(alarm.ID)
		})
	}

	if ac.clockWindow != nil {
		ac.clockWindow.setStatus(alarm.DisplayName() + " is ringing")
	}
}

func (ac *AlarmClock) hideRinging(alarm models.Alarm, res ringer.Resolution) {
	// A late hide for an earlier episode must not tear down the current one
	rw := ac.ringingWindow
	if rw == nil || rw.alarm.ID != alarm.ID {
		return
	}
	rw.Close()
	ac.ringingWindow = nil
	ac.releaseHotkey()

	if ac.clockWindow != nil {
		ac.clockWindow.setStatus(resolutionStatus(alarm, res, ac.alarms))
	}
}

func (ac *AlarmClock) releaseHotkey() {
	if ac.snoozeHotkey != nil {
		ac.snoozeHotkey.Unregister()
		ac.snoozeHotkey = nil
	}
}

// resolutionStatus describes how an episode ended for the clock window
func resolutionStatus(alarm models.Alarm, res ringer.Resolution, alarms *store.AlarmStore) string {
	name := alarm.DisplayName()
	switch res {
	case ringer.ResolutionSnoozed:
		if current, ok := alarms.Get(alarm.ID); ok {
			return name + " snoozed until " + current.Time.String()
		}
		return name + " snoozed"
	case ringer.ResolutionDismissed:
		return name + " dismissed"
	case ringer.ResolutionTimeout:
		return name + " stopped ringing, it will ring again tomorrow"
	default:
		return ""
	}
}

func logActionError(action, alarmID string, err error) {
	if errors.Is(err, ringer.ErrNotRinging) {
		// The episode ended on its own while the button was held
		log.Printf("Ignoring %s of %s: %v", action, alarmID, err)
		return
	}
	log.Printf("Failed to %s alarm %s: %v", action, alarmID, err)
}

// snoozeFromUI and dismissFromUI wait for the ringer, so they run off the fyne thread
func (ac *AlarmClock) snoozeFromUI(alarmID string) {
	go func() {
		if err := ac.Snooze(alarmID); err != nil {
			logActionError("snooze", alarmID, err)
		}
	}()
}

func (ac *AlarmClock) dismissFromUI(alarmID string) {
	go func() {
		if err := ac.Dismiss(alarmID); err != nil {
			logActionError("dismiss", alarmID, err)
		}
	}()
}
