package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/borgmon/alarm-clock/pkg/audio"
	"github.com/borgmon/alarm-clock/pkg/models"
)

// showSetAlarmDialog asks for a time of day, label and tone
func showSetAlarmDialog(parent fyne.Window, defaultTone string, onCreate func(at models.ClockTime, tone, label string)) {
	now := time.Now()

	hourSelect := widget.NewSelect(numberOptions(24), nil)
	hourSelect.SetSelected(fmt.Sprintf("%02d", now.Hour()))
	minSelect := widget.NewSelect(numberOptions(60), nil)
	minSelect.SetSelected(fmt.Sprintf("%02d", now.Minute()))

	labelEntry := widget.NewEntry()
	labelEntry.SetPlaceHolder("Wake up")

	toneSelect := widget.NewSelect(toneOptions(defaultTone), nil)
	toneSelect.SetSelected(toneLabel(defaultTone))

	items := []*widget.FormItem{
		widget.NewFormItem("Hour", hourSelect),
		widget.NewFormItem("Minute", minSelect),
		widget.NewFormItem("Label", labelEntry),
		widget.NewFormItem("Tone", toneSelect),
	}

	dialog.ShowForm("Set Alarm", "Set", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}

		at, err := models.ParseClockTime(hourSelect.Selected + ":" + minSelect.Selected)
		if err != nil {
			dialog.ShowError(err, parent)
			return
		}

		onCreate(at, toneFromLabel(toneSelect.Selected, defaultTone), strings.TrimSpace(labelEntry.Text))
	}, parent)
}

// numberOptions returns "00".."n-1" for the time selects
func numberOptions(n int) []string {
	options := make([]string, n)
	for i := range options {
		options[i] = fmt.Sprintf("%02d", i)
	}
	return options
}

// toneOptions lists the built-in tones, plus current when it is a file tone
func toneOptions(current string) []string {
	options := audio.Tones()
	if audio.IsFileTone(current) {
		options = append(options, toneLabel(current))
	}
	return options
}

// toneLabel shows file tones by their base name
func toneLabel(tone string) string {
	if audio.IsFileTone(tone) {
		return "File: " + filepath.Base(strings.TrimPrefix(tone, audio.FilePrefix))
	}
	return tone
}

// toneFromLabel reverses toneLabel. The only file tone a select can offer is fileTone.
func toneFromLabel(label, fileTone string) string {
	if strings.HasPrefix(label, "File: ") && audio.IsFileTone(fileTone) {
		return fileTone
	}
	if label == "" {
		return models.DefaultTone
	}
	return label
}
