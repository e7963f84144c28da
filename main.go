package main

import (
	"log"
	"os"

	"github.com/urfave/cli"
)

const (
	appID   = "io.github.borgmon.alarm-clock"
	appName = "Alarm Clock"
)

var version = "dev"

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI() *cli.App {
	app := cli.NewApp()
	app.Name = "alarm-clock"
	app.HelpName = "alarm-clock"
	app.Usage = "a desktop alarm clock with snooze and dismiss"
	app.UsageText = "alarm-clock [--headless] [--alarm HH:MM]... [--remote ADDR]"
	app.Version = version
	app.Flags = appFlags
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	opts, err := optionsFromCLI(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	if opts.headless {
		return runHeadless(opts)
	}

	ac := NewAlarmClock(opts)
	if err := ac.initialize(); err != nil {
		return err
	}
	ac.run()
	return nil
}
