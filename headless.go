package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/remote"
	"github.com/borgmon/alarm-clock/pkg/ringer"
	"github.com/borgmon/alarm-clock/pkg/store"
)

// logPresenter reports ringer events on the log
type logPresenter struct {
	logger *log.Logger
}

func (p logPresenter) ShowTime(time.Time) {}

func (p logPresenter) ShowRinging(alarm models.Alarm) {
	p.logger.Printf("[ALARM] %s is ringing (%s)", alarm.DisplayName(), alarm.ID)
}

func (p logPresenter) HideRinging(alarm models.Alarm, res ringer.Resolution) {
	p.logger.Printf("[ALARM] %s: %s", alarm.DisplayName(), res)
}

func (p logPresenter) Notify(title, message string) {
	p.logger.Printf("[ALARM] %s %s", title, message)
}

// seedAlarms adds the command line alarms to the store
func seedAlarms(alarms *store.AlarmStore, times []models.ClockTime, tone string) error {
	for _, at := range times {
		alarm, err := alarms.Add(at, tone, "")
		if err != nil {
			return err
		}
		log.Printf("Alarm set for %s", alarm.Time)
	}
	return nil
}

func runHeadless(opts options) error {
	cfg := opts.headlessConfig()

	alarms := store.NewAlarmStore()
	if err := seedAlarms(alarms, opts.alarms, cfg.Tone); err != nil {
		return err
	}
	if alarms.Len() == 0 && cfg.RemoteAddr == "" {
		log.Println("No alarms given and no remote API, nothing will ring")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker := remote.NewBroker()
	presenters := ringer.Presenters{logPresenter{logger: log.Default()}, broker}

	r := ringer.New(alarms, toneSound{fallback: cfg.Tone}, presenters, ringer.Options{
		RingTimeout:   cfg.RingTimeout(),
		SnoozeMinutes: cfg.SnoozeMinutes,
	})

	if cfg.RemoteAddr != "" {
		srv := remote.NewServer(alarms, r, broker)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.RemoteAddr); err != nil {
				log.Printf("Remote API failed: %v", err)
			}
		}()
	}

	log.Printf("Running headless with %d alarm(s), press Ctrl+C to quit", alarms.Len())
	return r.Run(ctx)
}
