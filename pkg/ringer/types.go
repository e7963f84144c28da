package ringer

import (
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
)

// Sound starts playback of a tone.
type Sound interface {
	Play(tone string) (Playback, error)
}

// Playback is a running tone. Stop halts playback and releases the player.
type Playback interface {
	Stop()
}

// Presenter is the user-facing side of the loop. Calls are made from the
// loop goroutine; implementations that touch a UI must hop to its thread.
type Presenter interface {
	// ShowTime is called on every tick with the current time.
	ShowTime(now time.Time)

	// ShowRinging is called when an episode starts.
	ShowRinging(alarm models.Alarm)

	// HideRinging is called exactly once when the episode for alarm ends.
	HideRinging(alarm models.Alarm, res Resolution)

	// Notify shows a transient message.
	Notify(title, message string)
}

// Resolution tells how a ringing episode ended
type Resolution int

const (
	ResolutionTimeout Resolution = iota
	ResolutionSnoozed
	ResolutionDismissed
	ResolutionTeardown
)

func (r Resolution) String() string {
	switch r {
	case ResolutionTimeout:
		return "timeout"
	case ResolutionSnoozed:
		return "snoozed"
	case ResolutionDismissed:
		return "dismissed"
	case ResolutionTeardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) ShowTime(time.Time)                   {}
func (NopPresenter) ShowRinging(models.Alarm)             {}
func (NopPresenter) HideRinging(models.Alarm, Resolution) {}
func (NopPresenter) Notify(string, string)                {}

// Presenters fans calls out to several presenters in order
type Presenters []Presenter

func (ps Presenters) ShowTime(now time.Time) {
	for _, p := range ps {
		p.ShowTime(now)
	}
}

func (ps Presenters) ShowRinging(alarm models.Alarm) {
	for _, p := range ps {
		p.ShowRinging(alarm)
	}
}

func (ps Presenters) HideRinging(alarm models.Alarm, res Resolution) {
	for _, p := range ps {
		p.HideRinging(alarm, res)
	}
}

func (ps Presenters) Notify(title, message string) {
	for _, p := range ps {
		p.Notify(title, message)
	}
}

var (
	_ Presenter = NopPresenter{}
	_ Presenter = Presenters(nil)
)
