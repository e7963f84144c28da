package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/borgmon/alarm-clock/pkg/calendar"
	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/platform"
	"github.com/borgmon/alarm-clock/pkg/remote"
	"github.com/borgmon/alarm-clock/pkg/ringer"
	"github.com/borgmon/alarm-clock/pkg/store"
)

// AlarmClock is the desktop application. Window fields are only touched on
// the fyne thread.
type AlarmClock struct {
	app         fyne.App
	opts        options
	configStore *store.ConfigStore
	config      *models.Config
	alarms      *store.AlarmStore
	broker      *remote.Broker

	mu         sync.Mutex
	ringer     *ringer.Ringer
	stopRinger context.CancelFunc
	stopRemote context.CancelFunc

	clockWindow    *ClockWindow
	settingsWindow *SettingsWindow
	ringingWindow  *RingingWindow
	snoozeHotkey   hotkeyBinding
}

func NewAlarmClock(opts options) *AlarmClock {
	a := app.NewWithID(appID)
	return &AlarmClock{
		app:         a,
		opts:        opts,
		configStore: store.NewConfigStore(a.Preferences()),
		alarms:      store.NewAlarmStore(),
		broker:      remote.NewBroker(),
	}
}

func (ac *AlarmClock) initialize() error {
	ac.config = ac.configStore.Load()

	// Sync autostart state with config on startup
	if err := setupAutostart(ac.config.AutoStart); err != nil {
		log.Printf("Warning: failed to setup autostart: %v", err)
	}

	ac.alarms.SetOnChange(func() {
		fyne.Do(ac.refreshAlarms)
	})

	tone := ac.opts.tone
	if tone == "" {
		tone = ac.config.Tone
	}
	if err := seedAlarms(ac.alarms, ac.opts.alarms, tone); err != nil {
		return err
	}

	ac.setupSystemTray()
	ac.startRemote(ac.remoteAddr())
	ac.showClock()

	return nil
}

func (ac *AlarmClock) run() {
	ac.app.Lifecycle().SetOnStarted(func() {
		platform.SetActivationPolicy()
	})
	ac.app.Run()

	ac.stopRingerLoop()
	ac.restartRemote("")
}

func (ac *AlarmClock) quit() {
	ac.stopRingerLoop()
	ac.restartRemote("")
	ac.app.Quit()
}

// remoteAddr prefers the command line over the saved setting
func (ac *AlarmClock) remoteAddr() string {
	if ac.opts.remoteAddr != "" {
		return ac.opts.remoteAddr
	}
	return ac.config.RemoteAddr
}

// showClock opens the clock window and starts its ringer
func (ac *AlarmClock) showClock() {
	if ac.clockWindow != nil {
		ac.clockWindow.window.RequestFocus()
		ac.clockWindow.Show()
		return
	}

	ac.startRingerLoop()
	ac.clockWindow = NewClockWindow(ac)
	ac.clockWindow.window.SetOnClosed(func() {
		// Closing the clock is the teardown of its ringer
		ac.stopRingerLoop()
		ac.clockWindow = nil
	})
	ac.clockWindow.Show()
}

func (ac *AlarmClock) startRingerLoop() {
	r := ringer.New(ac.alarms, toneSound{fallback: ac.config.Tone},
		ringer.Presenters{&fynePresenter{ac: ac}, ac.broker},
		ringer.Options{
			RingTimeout:   ac.config.RingTimeout(),
			SnoozeMinutes: ac.config.SnoozeMinutes,
		})
	ctx, cancel := context.WithCancel(context.Background())

	ac.mu.Lock()
	ac.ringer = r
	ac.stopRinger = cancel
	ac.mu.Unlock()

	go func() {
		if err := r.Run(ctx); err != nil {
			log.Printf("Ringer stopped: %v", err)
		}
	}()
}

// stopRingerLoop cancels the ringer and waits until its episode is torn down
func (ac *AlarmClock) stopRingerLoop() {
	ac.mu.Lock()
	r, cancel := ac.ringer, ac.stopRinger
	ac.ringer, ac.stopRinger = nil, nil
	ac.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		log.Println("Ringer did not stop in time")
	}
}

func (ac *AlarmClock) currentRinger() *ringer.Ringer {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.ringer
}

// Snooze, Dismiss and Ringing act on whichever ringer is running, so the
// remote API survives the clock window being reopened.

func (ac *AlarmClock) Snooze(alarmID string) error {
	r := ac.currentRinger()
	if r == nil {
		return ringer.ErrNotRunning
	}
	return r.Snooze(alarmID)
}

func (ac *AlarmClock) Dismiss(alarmID string) error {
	r := ac.currentRinger()
	if r == nil {
		return ringer.ErrNotRunning
	}
	return r.Dismiss(alarmID)
}

func (ac *AlarmClock) Ringing() (models.Alarm, bool) {
	r := ac.currentRinger()
	if r == nil {
		return models.Alarm{}, false
	}
	return r.Ringing()
}

var _ remote.Controller = (*AlarmClock)(nil)

func (ac *AlarmClock) startRemote(addr string) {
	if addr == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ac.mu.Lock()
	ac.stopRemote = cancel
	ac.mu.Unlock()

	srv := remote.NewServer(ac.alarms, ac, ac.broker)
	go func() {
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			log.Printf("Remote API on %s failed: %v", addr, err)
			fyne.Do(func() {
				ac.notify("Remote control unavailable", err.Error())
			})
		}
	}()
}

// restartRemote stops the running API and starts one on addr, if any
func (ac *AlarmClock) restartRemote(addr string) {
	ac.mu.Lock()
	cancel := ac.stopRemote
	ac.stopRemote = nil
	ac.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	ac.startRemote(addr)
}

// applyConfig saves cfg and pushes it to the running parts
func (ac *AlarmClock) applyConfig(cfg *models.Config) error {
	if err := setupAutostart(cfg.AutoStart); err != nil {
		return fmt.Errorf("failed to set autostart: %w", err)
	}

	oldAddr := ac.remoteAddr()
	ac.configStore.Save(cfg)
	ac.config = cfg

	if r := ac.currentRinger(); r != nil {
		r.SetRingTimeout(cfg.RingTimeout())
		r.SetSnoozeMinutes(cfg.SnoozeMinutes)
	}
	if addr := ac.remoteAddr(); addr != oldAddr {
		ac.restartRemote(addr)
	}

	log.Println("Settings applied")
	return nil
}

func (ac *AlarmClock) showSettings() {
	if ac.settingsWindow != nil {
		ac.settingsWindow.window.RequestFocus()
		ac.settingsWindow.Show()
		return
	}

	ac.settingsWindow = NewSettingsWindow(ac.app, ac.config, ac.applyConfig)
	ac.settingsWindow.window.SetOnClosed(func() {
		ac.settingsWindow = nil
	})
	ac.settingsWindow.Show()
}

// importCalendars adds alarms for the upcoming events of every source in
// cfg. It blocks on the network and must not run on the fyne thread.
func (ac *AlarmClock) importCalendars(ctx context.Context, cfg models.Config) (int, error) {
	if len(cfg.ICalSources) == 0 {
		return 0, models.Errorf(models.ErrInvalid, "no calendar sources configured, add one in Settings")
	}

	now := time.Now()
	added := 0
	var failures []string
	for _, source := range cfg.ICalSources {
		events, err := calendar.FetchEvents(ctx, source, now)
		if err != nil {
			log.Printf("Error fetching iCal source '%s' (%s): %v", source.Name, source.URL, err)
			failures = append(failures, source.Name)
			continue
		}

		n, err := ac.addDrafts(calendar.ToAlarmDrafts(events, cfg.ImportLeadMinutes, now), cfg.Tone)
		added += n
		if err != nil {
			return added, err
		}
		log.Printf("Imported %d alarms from '%s'", n, source.Name)
	}

	if len(failures) > 0 {
		return added, fmt.Errorf("could not import from %s", strings.Join(failures, ", "))
	}
	return added, nil
}

// addDrafts adds drafts that do not duplicate an existing alarm
func (ac *AlarmClock) addDrafts(drafts []calendar.AlarmDraft, tone string) (int, error) {
	existing := make(map[string]bool)
	for _, alarm := range ac.alarms.List() {
		existing[alarm.Time.String()+"|"+alarm.Label] = true
	}

	added := 0
	for _, draft := range drafts {
		key := draft.Time.String() + "|" + draft.Label
		if existing[key] {
			continue
		}
		if _, err := ac.alarms.Add(draft.Time, tone, draft.Label); err != nil {
			return added, err
		}
		existing[key] = true
		added++
	}
	return added, nil
}

func (ac *AlarmClock) notify(title, message string) {
	ac.app.SendNotification(fyne.NewNotification(title, message))
}

// refreshAlarms redraws everything showing the alarm list
func (ac *AlarmClock) refreshAlarms() {
	if ac.clockWindow != nil {
		ac.clockWindow.refreshAlarms()
	}
	ac.updateSystemTrayMenu()
}
