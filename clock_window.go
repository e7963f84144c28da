package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/alarm-clock/pkg/calendar"
	"github.com/borgmon/alarm-clock/pkg/models"
)

// ClockWindow shows the current time and the alarm list
type ClockWindow struct {
	ac     *AlarmClock
	window fyne.Window

	timeText    *canvas.Text
	dateLabel   *widget.Label
	nextLabel   *widget.Label
	statusLabel *widget.Label
	alarmList   *widget.List
	alarmsData  []models.Alarm
	emptyLabel  *widget.Label
	importBtn   *widget.Button
}

func NewClockWindow(ac *AlarmClock) *ClockWindow {
	cw := &ClockWindow{
		ac:     ac,
		window: ac.app.NewWindow(appName),
	}
	cw.buildUI()
	cw.window.Resize(fyne.NewSize(420, 560))
	cw.refreshAlarms()
	cw.setTime(time.Now())
	return cw
}

func (cw *ClockWindow) buildUI() {
	cw.timeText = canvas.NewText("--:--:--", theme.Color(theme.ColorNameForeground))
	cw.timeText.TextSize = 64
	cw.timeText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	cw.timeText.Alignment = fyne.TextAlignCenter

	cw.dateLabel = widget.NewLabel("")
	cw.dateLabel.Alignment = fyne.TextAlignCenter

	cw.nextLabel = widget.NewLabel("")
	cw.nextLabel.Alignment = fyne.TextAlignCenter
	cw.nextLabel.Importance = widget.MediumImportance

	cw.statusLabel = widget.NewLabel("")
	cw.statusLabel.Alignment = fyne.TextAlignCenter
	cw.statusLabel.Wrapping = fyne.TextWrapWord

	cw.emptyLabel = widget.NewLabel("No alarms. Use Set Alarm to add one.")
	cw.emptyLabel.Alignment = fyne.TextAlignCenter

	cw.alarmList = widget.NewList(
		func() int {
			return len(cw.alarmsData)
		},
		func() fyne.CanvasObject {
			enabled := widget.NewCheck("", nil)
			timeLabel := widget.NewLabel("00:00")
			timeLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
			nameLabel := widget.NewLabel("Alarm")
			nameLabel.Truncation = fyne.TextTruncateEllipsis
			deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			deleteBtn.Importance = widget.LowImportance
			return container.NewBorder(nil, nil,
				container.NewHBox(enabled, timeLabel),
				deleteBtn,
				nameLabel)
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= len(cw.alarmsData) {
				return
			}
			alarm := cw.alarmsData[i]

			row := o.(*fyne.Container)
			nameLabel := row.Objects[0].(*widget.Label)
			left := row.Objects[1].(*fyne.Container)
			deleteBtn := row.Objects[2].(*widget.Button)
			enabled := left.Objects[0].(*widget.Check)
			timeLabel := left.Objects[1].(*widget.Label)

			timeLabel.SetText(alarm.Time.String())
			nameLabel.SetText(alarmSubtitle(alarm))

			// Reset the callback before SetChecked so recycled rows don't toggle other alarms
			enabled.OnChanged = nil
			enabled.SetChecked(alarm.Enabled)
			enabled.OnChanged = func(on bool) {
				if _, err := cw.ac.alarms.SetEnabled(alarm.ID, on); err != nil {
					log.Printf("Failed to toggle alarm %s: %v", alarm.ID, err)
				}
			}

			deleteBtn.OnTapped = func() {
				if ringing, ok := cw.ac.Ringing(); ok && ringing.ID == alarm.ID {
					dialog.ShowInformation("Alarm Ringing", "Snooze or dismiss the alarm before deleting it.", cw.window)
					return
				}
				if err := cw.ac.alarms.Remove(alarm.ID); err != nil {
					log.Printf("Failed to remove alarm %s: %v", alarm.ID, err)
				}
			}
		})

	setBtn := widget.NewButtonWithIcon("Set Alarm", theme.ContentAddIcon(), func() {
		showSetAlarmDialog(cw.window, cw.ac.config.Tone, func(at models.ClockTime, tone, label string) {
			if _, err := cw.ac.alarms.Add(at, tone, label); err != nil {
				dialog.ShowError(err, cw.window)
			}
		})
	})
	setBtn.Importance = widget.HighImportance

	cw.importBtn = widget.NewButtonWithIcon("Import", theme.DownloadIcon(), cw.importCalendars)
	exportBtn := widget.NewButtonWithIcon("Export", theme.UploadIcon(), cw.exportAlarms)
	settingsBtn := widget.NewButtonWithIcon("Settings", theme.SettingsIcon(), cw.ac.showSettings)

	header := container.NewVBox(
		container.NewPadded(cw.timeText),
		cw.dateLabel,
		cw.nextLabel,
		cw.statusLabel,
		widget.NewSeparator(),
	)

	buttons := container.NewHBox(setBtn, layout.NewSpacer(), cw.importBtn, exportBtn, settingsBtn)

	cw.window.SetContent(container.NewPadded(container.NewBorder(
		header,
		buttons,
		nil,
		nil,
		container.NewStack(cw.emptyLabel, cw.alarmList),
	)))
}

func alarmSubtitle(alarm models.Alarm) string {
	text := alarm.DisplayName()
	if alarm.Tone != "" && alarm.Tone != models.DefaultTone {
		text += " · " + toneLabel(alarm.Tone)
	}
	return text
}

func (cw *ClockWindow) Show() {
	cw.window.Show()
}

// setTime is called on every ringer tick
func (cw *ClockWindow) setTime(now time.Time) {
	cw.timeText.Text = now.Format("15:04:05")
	cw.timeText.Refresh()
	cw.dateLabel.SetText(now.Format("Monday, January 2"))

	// The countdown only changes once a minute, but ticks are cheap
	cw.nextLabel.SetText(nextAlarmText(cw.ac.alarms.Upcoming(now, 1), now))
}

func nextAlarmText(upcoming []models.Alarm, now time.Time) string {
	if len(upcoming) == 0 {
		return "No alarm set"
	}
	next := upcoming[0]
	minutes := next.Time.MinutesUntil(now)
	if minutes == 0 {
		return fmt.Sprintf("%s rings now", next.DisplayName())
	}
	return fmt.Sprintf("Next: %s in %s", next.DisplayName(), formatMinutes(minutes))
}

// formatMinutes renders a countdown such as "1h 05m" or "12m"
func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

func (cw *ClockWindow) setStatus(text string) {
	cw.statusLabel.SetText(text)
}

func (cw *ClockWindow) refreshAlarms() {
	cw.alarmsData = cw.ac.alarms.List()
	if len(cw.alarmsData) == 0 {
		cw.emptyLabel.Show()
	} else {
		cw.emptyLabel.Hide()
	}
	cw.alarmList.Refresh()
	cw.nextLabel.SetText(nextAlarmText(cw.ac.alarms.Upcoming(time.Now(), 1), time.Now()))
}

func (cw *ClockWindow) importCalendars() {
	cw.importBtn.Disable()
	cfg := *cw.ac.config

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		added, err := cw.ac.importCalendars(ctx, cfg)
		fyne.Do(func() {
			cw.importBtn.Enable()
			if err != nil {
				dialog.ShowError(fmt.Errorf("imported %d alarm(s): %w", added, err), cw.window)
				return
			}
			dialog.ShowInformation("Import", fmt.Sprintf("Imported %d alarm(s) from your calendars.", added), cw.window)
		})
	}()
}

func (cw *ClockWindow) exportAlarms() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, cw.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if err := calendar.Export(writer, cw.ac.alarms.List(), time.Now()); err != nil {
			dialog.ShowError(err, cw.window)
			return
		}
		log.Printf("Exported alarms to %s", writer.URI())
	}, cw.window)
	save.SetFileName("alarms.ics")
	save.SetFilter(storage.NewExtensionFileFilter([]string{".ics"}))
	save.Show()
}
