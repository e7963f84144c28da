package main

import (
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/platform"
	"github.com/borgmon/alarm-clock/pkg/ui/components"
)

// RingingOptions configures the ringing prompt
type RingingOptions struct {
	SnoozeMinutes int
	HoldTime      time.Duration
	OnSnooze      func(alarmID string)
	OnDismiss     func(alarmID string)
}

// RingingWindow is the prompt shown while an alarm rings. It closes only
// through Close, which the ringer triggers when the episode ends.
type RingingWindow struct {
	window fyne.Window
	alarm  models.Alarm
	opts   RingingOptions

	stopMonitoring chan struct{}
	closed         bool
}

func NewRingingWindow(app fyne.App, alarm models.Alarm, opts RingingOptions) *RingingWindow {
	rw := &RingingWindow{
		alarm:          alarm,
		opts:           opts,
		stopMonitoring: make(chan struct{}),
	}

	rw.window = app.NewWindow("Alarm")
	rw.window.SetFixedSize(true)
	rw.window.CenterOnScreen()
	rw.buildUI()

	// The buttons answer the alarm, closing the window does not
	rw.window.SetCloseIntercept(func() {
		log.Println("Ringing window close blocked - use Snooze or Dismiss")
	})

	rw.setupFocusMonitoring()
	return rw
}

func (rw *RingingWindow) buildUI() {
	timeText := canvas.NewText(rw.alarm.Time.String(), theme.Color(theme.ColorNameForeground))
	timeText.TextSize = 72
	timeText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timeText.Alignment = fyne.TextAlignCenter

	title := canvas.NewText(rw.alarm.DisplayName(), theme.Color(theme.ColorNameForeground))
	title.TextSize = 28
	title.Alignment = fyne.TextAlignCenter

	holdSeconds := int(rw.opts.HoldTime / time.Second)
	snoozeButton := components.NewHoldButton(
		fmt.Sprintf("Snooze %dm (Hold %ds)", rw.opts.SnoozeMinutes, holdSeconds),
		rw.opts.HoldTime,
		func() {
			if rw.opts.OnSnooze != nil {
				rw.opts.OnSnooze(rw.alarm.ID)
			}
		})
	dismissButton := components.NewHoldButton(
		fmt.Sprintf("Dismiss (Hold %ds)", holdSeconds),
		rw.opts.HoldTime,
		func() {
			if rw.opts.OnDismiss != nil {
				rw.opts.OnDismiss(rw.alarm.ID)
			}
		})

	content := container.NewVBox(
		container.NewPadded(timeText),
		title,
		widget.NewSeparator(),
		container.NewHBox(snoozeButton, dismissButton),
	)

	rw.window.SetContent(container.NewPadded(container.NewCenter(content)))
}

func (rw *RingingWindow) Show() {
	rw.window.Show()
	rw.window.RequestFocus()
	platform.ActivateApp()
	platform.RequestAttention()
}

// Close removes the prompt. Safe to call more than once.
func (rw *RingingWindow) Close() {
	if rw.closed {
		return
	}
	rw.closed = true
	close(rw.stopMonitoring)
	platform.CancelAttention()
	rw.window.SetCloseIntercept(nil)
	rw.window.Close()
}

// setupFocusMonitoring brings the prompt back to front while it is showing
func (rw *RingingWindow) setupFocusMonitoring() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-rw.stopMonitoring:
				return
			case <-ticker.C:
				if platform.IsAppActive() {
					continue
				}
				log.Println("Ringing window not active - bringing to front")
				platform.ActivateApp()
				fyne.Do(func() {
					if !rw.closed {
						rw.window.Show()
					}
				})
			}
		}
	}()
}
