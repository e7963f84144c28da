package ringer

import (
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
)

// episode is one ringing alarm. It owns the playback handle and the timeout
// timer until release is called.
type episode struct {
	alarm     models.Alarm
	playback  Playback
	timer     *time.Timer
	startedAt time.Time
}

func newEpisode(alarm models.Alarm, playback Playback, timeout time.Duration, now time.Time) *episode {
	return &episode{
		alarm:     alarm,
		playback:  playback,
		timer:     time.NewTimer(timeout),
		startedAt: now,
	}
}

// timeout returns the channel that fires when the episode rang unanswered for too long
func (e *episode) timeout() <-chan time.Time {
	return e.timer.C
}

// release stops the timer and playback. The handle is dropped, so later calls do nothing.
func (e *episode) release() {
	e.timer.Stop()
	if e.playback != nil {
		e.playback.Stop()
		e.playback = nil
	}
}
