package ringer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/store"
)

var (
	ErrNotRunning     = errors.New("ringer is not running")
	ErrAlreadyRunning = errors.New("ringer already running")
	ErrNotRinging     = errors.New("alarm is not ringing")
)

const (
	DefaultInterval      = time.Second
	DefaultRingTimeout   = 30 * time.Second
	DefaultSnoozeMinutes = 5
)

// Options configures a Ringer. Zero values select the defaults.
type Options struct {
	Now           func() time.Time
	Interval      time.Duration
	RingTimeout   time.Duration
	SnoozeMinutes int
}

type actionKind int

const (
	actionSnooze actionKind = iota
	actionDismiss
)

type action struct {
	kind    actionKind
	alarmID string
	reply   chan error
}

// Ringer runs the alarm-matching loop over an AlarmStore
type Ringer struct {
	alarms   *store.AlarmStore
	sound    Sound
	ui       Presenter
	now      func() time.Time
	interval time.Duration

	mu            sync.Mutex
	ringTimeout   time.Duration
	snoozeMinutes int
	ringing       *models.Alarm

	actions   chan action
	startOnce sync.Once
	started   chan struct{}
	done      chan struct{}

	// Owned by the loop goroutine
	queue   []string
	current *episode
}

// New creates a Ringer. sound may be nil for a silent ringer.
func New(alarms *store.AlarmStore, sound Sound, ui Presenter, opts Options) *Ringer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.RingTimeout <= 0 {
		opts.RingTimeout = DefaultRingTimeout
	}
	if opts.SnoozeMinutes <= 0 {
		opts.SnoozeMinutes = DefaultSnoozeMinutes
	}
	if ui == nil {
		ui = NopPresenter{}
	}

	return &Ringer{
		alarms:        alarms,
		sound:         sound,
		ui:            ui,
		now:           opts.Now,
		interval:      opts.Interval,
		ringTimeout:   opts.RingTimeout,
		snoozeMinutes: opts.SnoozeMinutes,
		actions:       make(chan action),
		started:       make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Run checks the alarms every interval until ctx is cancelled. Cancellation
// ends a ringing episode and drops queued alarms. A Ringer runs only once.
func (r *Ringer) Run(ctx context.Context) error {
	first := false
	r.startOnce.Do(func() {
		first = true
		close(r.started)
	})
	if !first {
		return ErrAlreadyRunning
	}
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("[RINGER] Started (interval %v, ring timeout %v)", r.interval, r.RingTimeout())

	r.check(r.now())
	for {
		var timeout <-chan time.Time
		if r.current != nil {
			timeout = r.current.timeout()
		}

		select {
		case <-ctx.Done():
			r.teardown()
			log.Println("[RINGER] Stopped")
			return nil

		case <-ticker.C:
			r.check(r.now())

		case act := <-r.actions:
			act.reply <- r.handle(act)

		case <-timeout:
			r.resolve(ResolutionTimeout)
			r.startNext()
		}
	}
}

// Done is closed once Run has returned
func (r *Ringer) Done() <-chan struct{} {
	return r.done
}

// Snooze resolves the ringing episode of alarmID and moves the alarm
// SnoozeMinutes later.
func (r *Ringer) Snooze(alarmID string) error {
	return r.send(actionSnooze, alarmID)
}

// Dismiss resolves the ringing episode of alarmID and disables the alarm.
func (r *Ringer) Dismiss(alarmID string) error {
	return r.send(actionDismiss, alarmID)
}

// Ringing returns the alarm currently ringing, if any
func (r *Ringer) Ringing() (models.Alarm, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ringing == nil {
		return models.Alarm{}, false
	}
	return *r.ringing, true
}

// SetRingTimeout changes the timeout for episodes started afterwards
func (r *Ringer) SetRingTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ringTimeout = d
}

// RingTimeout returns how long an unanswered alarm rings
func (r *Ringer) RingTimeout() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ringTimeout
}

// SetSnoozeMinutes changes the snooze offset
func (r *Ringer) SetSnoozeMinutes(minutes int) {
	if minutes <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snoozeMinutes = minutes
}

// SnoozeMinutes returns the snooze offset
func (r *Ringer) SnoozeMinutes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snoozeMinutes
}

func (r *Ringer) send(kind actionKind, alarmID string) error {
	select {
	case <-r.started:
	default:
		return ErrNotRunning
	}

	act := action{kind: kind, alarmID: alarmID, reply: make(chan error, 1)}
	select {
	case r.actions <- act:
	case <-r.done:
		return ErrNotRunning
	}
	return <-act.reply
}

// check runs once per tick
func (r *Ringer) check(now time.Time) {
	r.ui.ShowTime(now)

	// The store remembers fired minutes, so a ringer started later in the
	// same minute does not ring the alarm again.
	for _, alarm := range r.alarms.DueAt(now) {
		if !r.alarms.MarkFired(alarm.ID, now) {
			continue
		}
		r.enqueue(alarm)
	}

	if r.current == nil {
		r.startNext()
	}
}

func (r *Ringer) enqueue(alarm models.Alarm) {
	for _, id := range r.queue {
		if id == alarm.ID {
			return
		}
	}
	r.queue = append(r.queue, alarm.ID)
	if r.current != nil {
		log.Printf("[RINGER] Queued %s at %s behind %s", alarm.DisplayName(), alarm.Time, r.current.alarm.DisplayName())
	}
}

// startNext starts the next queued alarm that is still enabled
func (r *Ringer) startNext() {
	for r.current == nil && len(r.queue) > 0 {
		id := r.queue[0]
		r.queue = r.queue[1:]

		alarm, ok := r.alarms.Get(id)
		if !ok || !alarm.Enabled {
			log.Printf("[RINGER] Skipping queued alarm %s: removed or disabled", id)
			continue
		}
		r.ring(alarm)
	}
}

func (r *Ringer) ring(alarm models.Alarm) {
	var playback Playback
	if r.sound != nil {
		p, err := r.sound.Play(alarm.Tone)
		if err != nil {
			log.Printf("[RINGER] Failed to play tone %q for %s: %v", alarm.Tone, alarm.DisplayName(), err)
		} else {
			playback = p
		}
	}

	now := r.now()
	r.current = newEpisode(alarm, playback, r.RingTimeout(), now)
	r.setRinging(&alarm)

	log.Printf("[RINGER] Ringing %s (%s)", alarm.DisplayName(), alarm.Time)
	r.ui.ShowRinging(alarm)
	r.ui.Notify("Alarm is ringing!", fmt.Sprintf("%s at %s", alarm.DisplayName(), alarm.Time))
}

func (r *Ringer) handle(act action) error {
	if r.current == nil || r.current.alarm.ID != act.alarmID {
		return ErrNotRinging
	}

	var err error
	switch act.kind {
	case actionSnooze:
		err = r.resolve(ResolutionSnoozed)
	case actionDismiss:
		err = r.resolve(ResolutionDismissed)
	}
	r.startNext()
	return err
}

// resolve ends the current episode: playback is released first, then the
// store is updated and the prompt hidden.
func (r *Ringer) resolve(res Resolution) error {
	ep := r.current
	if ep == nil {
		return nil
	}
	r.current = nil
	ep.release()

	var err error
	switch res {
	case ResolutionSnoozed:
		var snoozed models.Alarm
		snoozed, err = r.alarms.Snooze(ep.alarm.ID, r.SnoozeMinutes())
		if err == nil {
			log.Printf("[RINGER] Snoozed %s until %s", ep.alarm.DisplayName(), snoozed.Time)
		}
	case ResolutionDismissed:
		_, err = r.alarms.Dismiss(ep.alarm.ID)
		if err == nil {
			log.Printf("[RINGER] Dismissed %s", ep.alarm.DisplayName())
		}
	default:
		log.Printf("[RINGER] %s ended after %v: %s", ep.alarm.DisplayName(), r.now().Sub(ep.startedAt).Round(time.Second), res)
	}
	if err != nil {
		log.Printf("[RINGER] Failed to update %s after %s: %v", ep.alarm.DisplayName(), res, err)
	}

	r.setRinging(nil)
	r.ui.HideRinging(ep.alarm, res)
	return err
}

func (r *Ringer) teardown() {
	r.resolve(ResolutionTeardown)
	r.queue = nil
}

func (r *Ringer) setRinging(alarm *models.Alarm) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ringing = alarm
}
