package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"

	"github.com/borgmon/alarm-clock/pkg/audio"
	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/borgmon/alarm-clock/pkg/ui/components"
)

const previewDuration = 3 * time.Second

type SettingsWindow struct {
	window fyne.Window
	app    fyne.App
	config *models.Config
	onSave func(*models.Config) error

	// General tab
	autoStartCheck *widget.Check
	hotkeyCheck    *widget.Check
	remoteEntry    *widget.Entry

	// Alarm tab
	snoozeSelect      *widget.Select
	ringTimeoutSelect *widget.Select
	holdTimeSelect    *widget.Select
	toneSelect        *widget.Select
	fileTone          string
	preview           *audio.Player

	// Calendar tab
	sourcesData []models.ICalSource
	sourcesList *components.ListManager
	leadSelect  *widget.Select

	saveStatusLabel *widget.Label
	saveButton      *widget.Button
}

func NewSettingsWindow(app fyne.App, config *models.Config, onSave func(*models.Config) error) *SettingsWindow {
	sw := &SettingsWindow{
		app:      app,
		config:   config,
		onSave:   onSave,
		fileTone: config.Tone,
	}

	sw.window = app.NewWindow(appName + " - Settings")
	sw.buildUI()

	return sw
}

func (sw *SettingsWindow) buildUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("General", sw.buildGeneralTab()),
		container.NewTabItem("Alarm", sw.buildAlarmTab()),
		container.NewTabItem("Calendar", sw.buildCalendarTab()),
	)

	sw.saveStatusLabel = widget.NewLabel("")
	sw.saveStatusLabel.Importance = widget.SuccessImportance

	sw.saveButton = widget.NewButton("Save", sw.save)
	sw.saveButton.Importance = widget.HighImportance

	closeButton := widget.NewButton("Close", func() {
		sw.window.Close()
	})

	buttonRow := container.NewBorder(
		nil,
		nil,
		container.NewHBox(sw.saveButton, sw.saveStatusLabel),
		closeButton,
		container.NewHBox(),
	)

	sw.window.SetContent(container.NewBorder(
		nil,
		container.NewPadded(buttonRow),
		nil,
		nil,
		tabs,
	))
	sw.window.Resize(fyne.NewSize(720, 560))
	sw.window.CenterOnScreen()

	sw.window.SetOnClosed(sw.stopPreview)
}

func (sw *SettingsWindow) Show() {
	sw.window.Show()
}

func (sw *SettingsWindow) save() {
	newConfig, err := sw.getConfigFromUI()
	if err != nil {
		sw.setStatus("Error: "+err.Error(), widget.DangerImportance)
		return
	}

	if err := sw.onSave(newConfig); err != nil {
		log.Printf("Error saving settings: %v", err)
		sw.setStatus("Error: "+err.Error(), widget.DangerImportance)
		return
	}
	sw.config = newConfig

	const saved = "Settings saved successfully"
	sw.setStatus(saved, widget.SuccessImportance)

	// Clear success message after 3 seconds
	go func() {
		time.Sleep(3 * time.Second)
		fyne.Do(func() {
			if sw.saveStatusLabel.Text == saved {
				sw.setStatus("", widget.SuccessImportance)
			}
		})
	}()
}

func (sw *SettingsWindow) setStatus(text string, importance widget.Importance) {
	sw.saveStatusLabel.SetText(text)
	sw.saveStatusLabel.Importance = importance
	sw.saveStatusLabel.Refresh()
}

// getConfigFromUI collects the form into a normalized config
func (sw *SettingsWindow) getConfigFromUI() (*models.Config, error) {
	remoteAddr := strings.TrimSpace(sw.remoteEntry.Text)
	if err := validateRemoteAddr(remoteAddr); err != nil {
		return nil, err
	}

	cfg := &models.Config{
		AutoStart:          sw.autoStartCheck.Checked,
		SnoozeHotkey:       sw.hotkeyCheck.Checked,
		RemoteAddr:         remoteAddr,
		SnoozeMinutes:      parseLeadingInt(sw.snoozeSelect.Selected),
		RingTimeoutSeconds: parseLeadingInt(sw.ringTimeoutSelect.Selected),
		HoldTimeSeconds:    parseLeadingInt(sw.holdTimeSelect.Selected),
		Tone:               toneFromLabel(sw.toneSelect.Selected, sw.fileTone),
		ICalSources:        append([]models.ICalSource(nil), sw.sourcesData...),
		ImportLeadMinutes:  parseLeadingInt(sw.leadSelect.Selected),
	}
	cfg.Normalize()
	return cfg, nil
}

// parseLeadingInt parses "15 min" -> 15; anything else yields 0
func parseLeadingInt(s string) int {
	field, _, _ := strings.Cut(s, " ")
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0
	}
	return n
}

// validateRemoteAddr accepts "" or host:port
func validateRemoteAddr(addr string) error {
	if addr == "" {
		return nil
	}
	_, port, ok := strings.Cut(addr, ":")
	if !ok {
		return fmt.Errorf("remote address %q must be host:port", addr)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("remote address %q has an invalid port", addr)
	}
	return nil
}

func (sw *SettingsWindow) buildGeneralTab() fyne.CanvasObject {
	sw.autoStartCheck = widget.NewCheck("Auto Start on System Boot", nil)
	sw.autoStartCheck.SetChecked(sw.config.AutoStart)

	sw.hotkeyCheck = widget.NewCheck("Ctrl+Shift+S snoozes the ringing alarm", nil)
	sw.hotkeyCheck.SetChecked(sw.config.SnoozeHotkey)

	sw.remoteEntry = widget.NewEntry()
	sw.remoteEntry.SetPlaceHolder("127.0.0.1:7070")
	sw.remoteEntry.SetText(sw.config.RemoteAddr)
	sw.remoteEntry.Validator = validateRemoteAddr

	autoStartLabel := widget.NewLabel("Auto Start:")
	autoStartHelp := widget.NewLabel("Launch " + appName + " automatically when your system starts")
	autoStartHelp.Importance = widget.MediumImportance

	hotkeyLabel := widget.NewLabel("Global Hotkey:")
	hotkeyHelp := widget.NewLabel("Works while another application has focus")
	hotkeyHelp.Importance = widget.MediumImportance

	remoteLabel := widget.NewLabel("Remote Control:")
	remoteHelp := widget.NewLabel("Serve the HTTP API on this address. Leave empty to disable.")
	remoteHelp.Wrapping = fyne.TextWrapWord
	remoteHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(autoStartLabel, autoStartHelp),
		sw.autoStartCheck,

		container.NewVBox(hotkeyLabel, hotkeyHelp),
		sw.hotkeyCheck,

		container.NewVBox(remoteLabel, remoteHelp),
		sw.remoteEntry,
	)

	content := container.NewVBox(
		widget.NewLabel("General Settings"),
		widget.NewSeparator(),
		form,
	)

	return container.NewPadded(container.NewVScroll(content))
}

// rangeOptions returns "<from> unit" .. "<to> unit" in steps
func rangeOptions(from, to, step int, unit string) []string {
	var options []string
	for i := from; i <= to; i += step {
		options = append(options, fmt.Sprintf("%d %s", i, unit))
	}
	return options
}

// selectValue picks the option for value, adding it when the steps skip it
func selectValue(sel *widget.Select, value int, unit string) {
	want := fmt.Sprintf("%d %s", value, unit)
	for _, option := range sel.Options {
		if option == want {
			sel.SetSelected(want)
			return
		}
	}
	sel.Options = append(sel.Options, want)
	sel.SetSelected(want)
}

func (sw *SettingsWindow) buildAlarmTab() fyne.CanvasObject {
	sw.snoozeSelect = widget.NewSelect(rangeOptions(1, 15, 1, "min"), nil)
	selectValue(sw.snoozeSelect, sw.config.SnoozeMinutes, "min")

	sw.ringTimeoutSelect = widget.NewSelect(rangeOptions(15, 300, 15, "sec"), nil)
	selectValue(sw.ringTimeoutSelect, sw.config.RingTimeoutSeconds, "sec")

	sw.holdTimeSelect = widget.NewSelect(rangeOptions(1, models.MaxHoldTimeSeconds, 1, "sec"), nil)
	selectValue(sw.holdTimeSelect, sw.config.HoldTimeSeconds, "sec")

	sw.toneSelect = widget.NewSelect(toneOptions(sw.config.Tone), nil)
	sw.toneSelect.SetSelected(toneLabel(sw.config.Tone))

	chooseFileButton := widget.NewButton("WAV File...", sw.chooseToneFile)
	previewButton := widget.NewButton("Preview", sw.previewTone)

	snoozeLabel := widget.NewLabel("Snooze Duration:")
	snoozeHelp := widget.NewLabel("How far a snoozed alarm is pushed back")
	snoozeHelp.Importance = widget.MediumImportance

	timeoutLabel := widget.NewLabel("Ring Timeout:")
	timeoutHelp := widget.NewLabel("An unanswered alarm stops after this long and rings again tomorrow")
	timeoutHelp.Wrapping = fyne.TextWrapWord
	timeoutHelp.Importance = widget.MediumImportance

	holdLabel := widget.NewLabel("Hold Time:")
	holdHelp := widget.NewLabel("How long Snooze and Dismiss must be held")
	holdHelp.Importance = widget.MediumImportance

	toneLabelWidget := widget.NewLabel("Tone:")
	toneHelp := widget.NewLabel("Used for new alarms. 16-bit PCM WAV files are supported.")
	toneHelp.Wrapping = fyne.TextWrapWord
	toneHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(snoozeLabel, snoozeHelp),
		container.NewVBox(sw.snoozeSelect),

		container.NewVBox(timeoutLabel, timeoutHelp),
		container.NewVBox(sw.ringTimeoutSelect),

		container.NewVBox(holdLabel, holdHelp),
		container.NewVBox(sw.holdTimeSelect),

		container.NewVBox(toneLabelWidget, toneHelp),
		container.NewVBox(sw.toneSelect, container.NewHBox(chooseFileButton, previewButton)),
	)

	content := container.NewVBox(
		widget.NewLabel("Alarm Settings"),
		widget.NewSeparator(),
		form,
	)

	return container.NewPadded(container.NewVScroll(content))
}

func (sw *SettingsWindow) chooseToneFile() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, sw.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		sw.fileTone = audio.FilePrefix + reader.URI().Path()
		sw.toneSelect.Options = toneOptions(sw.fileTone)
		sw.toneSelect.SetSelected(toneLabel(sw.fileTone))
	}, sw.window)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".wav"}))
	open.Show()
}

// previewTone plays the selected tone for a few seconds
func (sw *SettingsWindow) previewTone() {
	sw.stopPreview()

	tone := toneFromLabel(sw.toneSelect.Selected, sw.fileTone)
	player, err := audio.PlayTone(tone)
	if err != nil {
		dialog.ShowError(fmt.Errorf("cannot play %s: %w", toneLabel(tone), err), sw.window)
		return
	}
	sw.preview = player

	time.AfterFunc(previewDuration, func() {
		fyne.Do(func() {
			if sw.preview == player {
				sw.stopPreview()
			}
		})
	})
}

func (sw *SettingsWindow) stopPreview() {
	if sw.preview != nil {
		sw.preview.Stop()
		sw.preview = nil
	}
}

func (sw *SettingsWindow) buildCalendarTab() fyne.CanvasObject {
	sw.sourcesData = append([]models.ICalSource(nil), sw.config.ICalSources...)

	names := make([]string, len(sw.sourcesData))
	for i, source := range sw.sourcesData {
		names[i] = source.Name
	}

	var listContainer *fyne.Container
	sw.sourcesList, listContainer = components.NewListManager(names, components.ListManagerConfig{
		RenderItem: func(i int) string {
			source := sw.sourcesData[i]
			return source.Name + " - " + truncateString(source.URL, 60)
		},
		OnAdd: sw.showAddSourceDialog,
		OnRemove: func(i int) {
			sw.sourcesData = append(sw.sourcesData[:i], sw.sourcesData[i+1:]...)
		},
	})

	sw.leadSelect = widget.NewSelect(rangeOptions(0, 30, 5, "min"), nil)
	selectValue(sw.leadSelect, sw.config.ImportLeadMinutes, "min")

	sourcesLabel := widget.NewLabel("iCal Sources:")
	sourcesHelp := widget.NewLabel("Import on the clock window turns the next 24 hours of events into alarms.")
	sourcesHelp.Wrapping = fyne.TextWrapWord
	sourcesHelp.Importance = widget.MediumImportance

	leadLabel := widget.NewLabel("Ring Before:")
	leadHelp := widget.NewLabel("Imported alarms ring this long before the event starts")
	leadHelp.Wrapping = fyne.TextWrapWord
	leadHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(sourcesLabel, sourcesHelp),
		listContainer,

		container.NewVBox(leadLabel, leadHelp),
		container.NewVBox(sw.leadSelect),
	)

	content := container.NewVBox(
		widget.NewLabel("Calendar Settings"),
		widget.NewSeparator(),
		form,
	)

	return container.NewPadded(container.NewVScroll(content))
}

func (sw *SettingsWindow) showAddSourceDialog() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("e.g., Work Calendar")
	nameEntry.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("name is required")
		}
		return nil
	}

	urlEntry := widget.NewMultiLineEntry()
	urlEntry.SetPlaceHolder("https://calendar.example.com/ical/... or /path/to/calendar.ics")
	urlEntry.Wrapping = fyne.TextWrapBreak
	urlEntry.SetMinRowsVisible(3)
	urlEntry.Validator = func(s string) error {
		return validateSourceURL(s, sw.sourcesData)
	}

	formItems := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("URL", urlEntry),
	}

	addDialog := dialog.NewForm("Add iCal Source", "Add", "Cancel", formItems, func(confirmed bool) {
		if !confirmed {
			return
		}

		source := models.ICalSource{
			ID:   uuid.New().String(),
			Name: strings.TrimSpace(nameEntry.Text),
			URL:  strings.TrimSpace(urlEntry.Text),
		}
		sw.sourcesData = append(sw.sourcesData, source)
		sw.sourcesList.AddItem(source.Name)
	}, sw.window)

	addDialog.Resize(fyne.NewSize(600, 300))
	addDialog.Show()
}

// validateSourceURL requires an http(s) URL, file URL or absolute path not already present
func validateSourceURL(s string, existing []models.ICalSource) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("URL is required")
	}

	switch {
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		if len(s) < 10 {
			return fmt.Errorf("please enter a valid URL")
		}
	case strings.HasPrefix(s, "file://"), strings.HasPrefix(s, "/"):
	default:
		return fmt.Errorf("URL must start with http://, https://, file:// or /")
	}

	for _, source := range existing {
		if source.URL == s {
			return fmt.Errorf("this calendar has already been added")
		}
	}
	return nil
}
