package models

import "time"

const (
	DefaultSnoozeMinutes      = 5
	DefaultRingTimeoutSeconds = 30
	DefaultHoldTimeSeconds    = 2

	MaxSnoozeMinutes      = 60
	MinRingTimeoutSeconds = 5
	MaxRingTimeoutSeconds = 600
	MaxHoldTimeSeconds    = 10
	MaxImportLeadMinutes  = 120
)

// Config holds application configuration
type Config struct {
	AutoStart          bool         `json:"auto_start"`
	SnoozeMinutes      int          `json:"snooze_minutes"`       // minutes added by Snooze
	RingTimeoutSeconds int          `json:"ring_timeout_seconds"` // how long an unanswered alarm rings
	HoldTimeSeconds    int          `json:"hold_time_seconds"`    // button hold time
	Tone               string       `json:"tone"`                 // tone for new alarms
	SnoozeHotkey       bool         `json:"snooze_hotkey"`        // global Ctrl+Shift+S while ringing
	RemoteAddr         string       `json:"remote_addr"`          // empty disables the HTTP API
	ICalSources        []ICalSource `json:"ical_sources"`
	ImportLeadMinutes  int          `json:"import_lead_minutes"` // ring this long before imported events
}

// ICalSource represents a named iCal calendar source
type ICalSource struct {
	ID   string `json:"id"`   // Unique identifier
	Name string `json:"name"` // Display name
	URL  string `json:"url"`  // http(s) URL, file:// URL or local path
}

// DefaultConfig returns the configuration used on first start
func DefaultConfig() *Config {
	return &Config{
		SnoozeMinutes:      DefaultSnoozeMinutes,
		RingTimeoutSeconds: DefaultRingTimeoutSeconds,
		HoldTimeSeconds:    DefaultHoldTimeSeconds,
		Tone:               DefaultTone,
		SnoozeHotkey:       true,
		ICalSources:        []ICalSource{},
	}
}

// Normalize replaces out-of-range values with defaults or bounds
func (c *Config) Normalize() {
	if c.SnoozeMinutes < 1 {
		c.SnoozeMinutes = DefaultSnoozeMinutes
	}
	if c.SnoozeMinutes > MaxSnoozeMinutes {
		c.SnoozeMinutes = MaxSnoozeMinutes
	}

	if c.RingTimeoutSeconds <= 0 {
		c.RingTimeoutSeconds = DefaultRingTimeoutSeconds
	}
	if c.RingTimeoutSeconds < MinRingTimeoutSeconds {
		c.RingTimeoutSeconds = MinRingTimeoutSeconds
	}
	if c.RingTimeoutSeconds > MaxRingTimeoutSeconds {
		c.RingTimeoutSeconds = MaxRingTimeoutSeconds
	}

	if c.HoldTimeSeconds < 1 {
		c.HoldTimeSeconds = DefaultHoldTimeSeconds
	}
	if c.HoldTimeSeconds > MaxHoldTimeSeconds {
		c.HoldTimeSeconds = MaxHoldTimeSeconds
	}

	if c.Tone == "" {
		c.Tone = DefaultTone
	}

	if c.ImportLeadMinutes < 0 {
		c.ImportLeadMinutes = 0
	}
	if c.ImportLeadMinutes > MaxImportLeadMinutes {
		c.ImportLeadMinutes = MaxImportLeadMinutes
	}

	if c.ICalSources == nil {
		c.ICalSources = []ICalSource{}
	}
}

// RingTimeout returns how long an unanswered alarm keeps ringing
func (c *Config) RingTimeout() time.Duration {
	return time.Duration(c.RingTimeoutSeconds) * time.Second
}

// Validate checks if the iCal source has required fields
func (s *ICalSource) Validate() bool {
	return s.Name != "" && s.URL != ""
}
