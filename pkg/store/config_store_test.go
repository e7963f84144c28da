package store

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestConfigStoreDefaults(t *testing.T) {
	app := test.NewTempApp(t)
	cs := NewConfigStore(app.Preferences())

	config := cs.Load()

	assert.Equal(t, models.DefaultSnoozeMinutes, config.SnoozeMinutes)
	assert.Equal(t, models.DefaultRingTimeoutSeconds, config.RingTimeoutSeconds)
	assert.Equal(t, models.DefaultTone, config.Tone)
	assert.True(t, config.SnoozeHotkey)
	assert.Empty(t, config.ICalSources)
}

func TestConfigStoreRoundTrip(t *testing.T) {
	app := test.NewTempApp(t)
	cs := NewConfigStore(app.Preferences())

	want := &models.Config{
		AutoStart:          true,
		SnoozeMinutes:      9,
		RingTimeoutSeconds: 45,
		HoldTimeSeconds:    3,
		Tone:               "Chime",
		SnoozeHotkey:       false,
		RemoteAddr:         "127.0.0.1:7070",
		ImportLeadMinutes:  10,
		ICalSources: []models.ICalSource{
			{ID: "1", Name: "Work", URL: "https://example.com/work.ics"},
		},
	}
	cs.Save(want)

	got := cs.Load()
	assert.Equal(t, want, got)
}

func TestConfigStoreMalformedSources(t *testing.T) {
	app := test.NewTempApp(t)
	app.Preferences().SetString("ical_sources", "{not json")
	app.Preferences().SetInt("snooze_minutes", -4)

	config := NewConfigStore(app.Preferences()).Load()

	assert.Empty(t, config.ICalSources)
	assert.Equal(t, models.DefaultSnoozeMinutes, config.SnoozeMinutes)
}
