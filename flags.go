package main

import (
	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/urfave/cli"
)

var appFlags = []cli.Flag{
	cli.BoolFlag{
		Name:   "headless",
		Usage:  "run without windows, ringing through the speakers and the log",
		EnvVar: "ALARM_CLOCK_HEADLESS",
	},
	cli.StringSliceFlag{
		Name:  "alarm, a",
		Usage: "add an alarm at `HH:MM` on startup (repeatable)",
	},
	cli.StringFlag{
		Name:   "remote, r",
		Usage:  "serve the control API on `ADDR`, e.g. 127.0.0.1:7788",
		EnvVar: "ALARM_CLOCK_REMOTE",
	},
	cli.StringFlag{
		Name:  "tone, t",
		Usage: "tone for alarms added on the command line (Default, Chime, Buzzer or file:PATH)",
	},
	cli.IntFlag{
		Name:  "snooze",
		Usage: "snooze length in minutes (headless mode)",
		Value: models.DefaultSnoozeMinutes,
	},
	cli.IntFlag{
		Name:  "ring-timeout",
		Usage: "seconds an unanswered alarm rings (headless mode)",
		Value: models.DefaultRingTimeoutSeconds,
	},
}

// options are the command line settings
type options struct {
	headless    bool
	alarms      []models.ClockTime
	remoteAddr  string
	tone        string
	snooze      int
	ringTimeout int
}

func optionsFromCLI(c *cli.Context) (options, error) {
	opts := options{
		headless:    c.Bool("headless"),
		remoteAddr:  c.String("remote"),
		tone:        c.String("tone"),
		snooze:      c.Int("snooze"),
		ringTimeout: c.Int("ring-timeout"),
	}

	for _, s := range c.StringSlice("alarm") {
		at, err := models.ParseClockTime(s)
		if err != nil {
			return options{}, err
		}
		opts.alarms = append(opts.alarms, at)
	}
	return opts, nil
}

// headlessConfig applies the command line on top of the defaults
func (o options) headlessConfig() *models.Config {
	cfg := models.DefaultConfig()
	cfg.SnoozeMinutes = o.snooze
	cfg.RingTimeoutSeconds = o.ringTimeout
	cfg.RemoteAddr = o.remoteAddr
	if o.tone != "" {
		cfg.Tone = o.tone
	}
	cfg.Normalize()
	return cfg
}
