package ringer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fakePlayback struct {
	tone  string
	stops atomic.Int32
}

func (p *fakePlayback) Stop() {
	p.stops.Add(1)
}

type fakeSound struct {
	mu        sync.Mutex
	err       error
	playbacks []*fakePlayback
}

func (s *fakeSound) Play(tone string) (Playback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p := &fakePlayback{tone: tone}
	s.playbacks = append(s.playbacks, p)
	return p, nil
}

func (s *fakeSound) Playbacks() []*fakePlayback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakePlayback(nil), s.playbacks...)
}

type hidden struct {
	alarm models.Alarm
	res   Resolution
}

type recordingPresenter struct {
	mu       sync.Mutex
	ticks    int
	rings    []models.Alarm
	hides    []hidden
	notified []string
}

func (p *recordingPresenter) ShowTime(time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticks++
}

func (p *recordingPresenter) ShowRinging(alarm models.Alarm) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rings = append(p.rings, alarm)
}

func (p *recordingPresenter) HideRinging(alarm models.Alarm, res Resolution) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hides = append(p.hides, hidden{alarm: alarm, res: res})
}

func (p *recordingPresenter) Notify(title, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notified = append(p.notified, title)
}

func (p *recordingPresenter) Ticks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticks
}

func (p *recordingPresenter) Rings() []models.Alarm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Alarm(nil), p.rings...)
}

func (p *recordingPresenter) Hides() []hidden {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]hidden(nil), p.hides...)
}

func (p *recordingPresenter) Notified() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.notified...)
}

var errNoDevice = errors.New("no audio device")

type harness struct {
	clock  *fakeClock
	alarms *store.AlarmStore
	sound  *fakeSound
	ui     *recordingPresenter
	ringer *Ringer
	cancel context.CancelFunc
}

func newHarness(t *testing.T, now time.Time, timeout time.Duration) *harness {
	t.Helper()
	h := &harness{
		clock:  newFakeClock(now),
		alarms: store.NewAlarmStore(),
		sound:  &fakeSound{},
		ui:     &recordingPresenter{},
	}
	h.ringer = New(h.alarms, h.sound, h.ui, Options{
		Now:           h.clock.Now,
		Interval:      2 * time.Millisecond,
		RingTimeout:   timeout,
		SnoozeMinutes: 5,
	})
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go h.ringer.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.ringer.Done()
	})
}

func (h *harness) stop() {
	h.cancel()
	<-h.ringer.Done()
}

func (h *harness) add(t *testing.T, hour, minute int) models.Alarm {
	t.Helper()
	alarm, err := h.alarms.Add(models.ClockTime{Hour: hour, Minute: minute}, models.DefaultTone, "")
	if err != nil {
		t.Fatal(err)
	}
	return alarm
}
