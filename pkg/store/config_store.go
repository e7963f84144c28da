package store

import (
	"encoding/json"
	"log"

	"fyne.io/fyne/v2"
	"github.com/borgmon/alarm-clock/pkg/models"
)

// ConfigStore handles configuration persistence using Fyne preferences
type ConfigStore struct {
	prefs fyne.Preferences
}

// NewConfigStore creates a new ConfigStore instance
func NewConfigStore(prefs fyne.Preferences) *ConfigStore {
	return &ConfigStore{prefs: prefs}
}

// Load loads configuration from preferences
func (cs *ConfigStore) Load() *models.Config {
	defaults := models.DefaultConfig()

	config := &models.Config{
		AutoStart:          cs.prefs.BoolWithFallback("auto_start", defaults.AutoStart),
		SnoozeMinutes:      cs.prefs.IntWithFallback("snooze_minutes", defaults.SnoozeMinutes),
		RingTimeoutSeconds: cs.prefs.IntWithFallback("ring_timeout_seconds", defaults.RingTimeoutSeconds),
		HoldTimeSeconds:    cs.prefs.IntWithFallback("hold_time_seconds", defaults.HoldTimeSeconds),
		Tone:               cs.prefs.StringWithFallback("tone", defaults.Tone),
		SnoozeHotkey:       cs.prefs.BoolWithFallback("snooze_hotkey", defaults.SnoozeHotkey),
		RemoteAddr:         cs.prefs.StringWithFallback("remote_addr", defaults.RemoteAddr),
		ImportLeadMinutes:  cs.prefs.IntWithFallback("import_lead_minutes", defaults.ImportLeadMinutes),
	}

	// Load iCal sources from JSON string
	icalSourcesJSON := cs.prefs.String("ical_sources")
	if icalSourcesJSON != "" {
		if err := json.Unmarshal([]byte(icalSourcesJSON), &config.ICalSources); err != nil {
			log.Printf("Ignoring malformed ical_sources preference: %v", err)
			config.ICalSources = []models.ICalSource{}
		}
	}

	config.Normalize()
	return config
}

// Save saves configuration to preferences
func (cs *ConfigStore) Save(config *models.Config) {
	config.Normalize()

	cs.prefs.SetBool("auto_start", config.AutoStart)
	cs.prefs.SetInt("snooze_minutes", config.SnoozeMinutes)
	cs.prefs.SetInt("ring_timeout_seconds", config.RingTimeoutSeconds)
	cs.prefs.SetInt("hold_time_seconds", config.HoldTimeSeconds)
	cs.prefs.SetString("tone", config.Tone)
	cs.prefs.SetBool("snooze_hotkey", config.SnoozeHotkey)
	cs.prefs.SetString("remote_addr", config.RemoteAddr)
	cs.prefs.SetInt("import_lead_minutes", config.ImportLeadMinutes)

	// Save iCal sources as JSON string
	if icalSourcesJSON, err := json.Marshal(config.ICalSources); err == nil {
		cs.prefs.SetString("ical_sources", string(icalSourcesJSON))
	}
}
