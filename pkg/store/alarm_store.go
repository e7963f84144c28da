package store

import (
	"sort"
	"sync"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/google/uuid"
)

type alarmEntry struct {
	alarm models.Alarm
	seq   uint64 // creation order, used for arbitration
}

// AlarmStore owns the in-memory alarm collection. Entries are addressed by
// alarm ID and replaced wholesale on every update.
type AlarmStore struct {
	mu sync.RWMutex

	// Map of alarm ID to entry
	alarms map[string]*alarmEntry

	// Map of minute of day to alarm IDs scheduled for that minute
	alarmsByMinute map[int][]string

	// Map of alarm ID to the minute (unix) it last fired in. Kept here so it
	// outlives any single ringer.
	firedIn map[string]int64

	nextSeq  uint64
	onChange func()
}

// NewAlarmStore creates a new AlarmStore instance
func NewAlarmStore() *AlarmStore {
	return &AlarmStore{
		alarms:         make(map[string]*alarmEntry),
		alarmsByMinute: make(map[int][]string),
		firedIn:        make(map[string]int64),
	}
}

// SetOnChange registers a callback invoked after every mutation, outside the lock
func (s *AlarmStore) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *AlarmStore) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Add creates a new enabled alarm with a fresh ID
func (s *AlarmStore) Add(at models.ClockTime, tone, label string) (models.Alarm, error) {
	if _, err := models.NewClockTime(at.Hour, at.Minute); err != nil {
		return models.Alarm{}, err
	}
	if tone == "" {
		tone = models.DefaultTone
	}

	alarm := models.Alarm{
		ID:      uuid.New().String(),
		Time:    at,
		Tone:    tone,
		Label:   label,
		Enabled: true,
	}

	s.mu.Lock()
	s.nextSeq++
	s.alarms[alarm.ID] = &alarmEntry{alarm: alarm, seq: s.nextSeq}
	s.addToMinuteIndex(alarm)
	s.mu.Unlock()

	s.notify()
	return alarm, nil
}

// Get returns the alarm with the given ID
func (s *AlarmStore) Get(id string) (models.Alarm, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.alarms[id]
	if !ok {
		return models.Alarm{}, false
	}
	return entry.alarm, true
}

// List returns all alarms sorted by time of day, then creation order
func (s *AlarmStore) List() []models.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*alarmEntry, 0, len(s.alarms))
	for _, entry := range s.alarms {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		mi, mj := entries[i].alarm.Time.MinuteOfDay(), entries[j].alarm.Time.MinuteOfDay()
		if mi != mj {
			return mi < mj
		}
		return entries[i].seq < entries[j].seq
	})

	result := make([]models.Alarm, len(entries))
	for i, entry := range entries {
		result[i] = entry.alarm
	}
	return result
}

// Len returns the number of stored alarms
func (s *AlarmStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alarms)
}

// SetEnabled toggles a single alarm
func (s *AlarmStore) SetEnabled(id string, enabled bool) (models.Alarm, error) {
	return s.update(id, func(a models.Alarm) models.Alarm {
		return a.WithEnabled(enabled)
	})
}

// Snooze moves an alarm minutes later and keeps it enabled
func (s *AlarmStore) Snooze(id string, minutes int) (models.Alarm, error) {
	if minutes <= 0 {
		return models.Alarm{}, models.Errorf(models.ErrInvalid, "snooze minutes must be positive, got %d", minutes)
	}
	return s.update(id, func(a models.Alarm) models.Alarm {
		return a.Snoozed(minutes)
	})
}

// Dismiss disables an alarm until it is manually enabled again
func (s *AlarmStore) Dismiss(id string) (models.Alarm, error) {
	return s.update(id, func(a models.Alarm) models.Alarm {
		return a.Dismissed()
	})
}

// Remove deletes an alarm
func (s *AlarmStore) Remove(id string) error {
	s.mu.Lock()
	entry, ok := s.alarms[id]
	if !ok {
		s.mu.Unlock()
		return models.Errorf(models.ErrNotFound, "alarm %s not found", id)
	}
	s.removeFromMinuteIndex(entry.alarm)
	delete(s.alarms, id)
	delete(s.firedIn, id)
	s.mu.Unlock()

	s.notify()
	return nil
}

// DueAt returns the enabled alarms whose hour and minute match t, in creation order
func (s *AlarmStore) DueAt(t time.Time) []models.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.alarmsByMinute[models.ClockTimeOf(t).MinuteOfDay()]
	entries := make([]*alarmEntry, 0, len(ids))
	for _, id := range ids {
		entry := s.alarms[id]
		if entry != nil && entry.alarm.Enabled && entry.alarm.Time.Matches(t) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	result := make([]models.Alarm, len(entries))
	for i, entry := range entries {
		result[i] = entry.alarm
	}
	return result
}

// MarkFired records that the alarm fired in t's wall-clock minute. It
// reports false when it already fired in that minute.
func (s *AlarmStore) MarkFired(id string, t time.Time) bool {
	minute := t.Truncate(time.Minute).Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.firedIn[id]; ok && last == minute {
		return false
	}
	s.firedIn[id] = minute
	return true
}

// Upcoming returns up to limit enabled alarms ordered by their next occurrence after now
func (s *AlarmStore) Upcoming(now time.Time, limit int) []models.Alarm {
	all := s.List()
	upcoming := make([]models.Alarm, 0, len(all))
	for _, alarm := range all {
		if alarm.Enabled {
			upcoming = append(upcoming, alarm)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Time.MinutesUntil(now) < upcoming[j].Time.MinutesUntil(now)
	})

	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// update replaces the entry for id with fn's copy, keeping the minute index in sync
func (s *AlarmStore) update(id string, fn func(models.Alarm) models.Alarm) (models.Alarm, error) {
	s.mu.Lock()
	entry, ok := s.alarms[id]
	if !ok {
		s.mu.Unlock()
		return models.Alarm{}, models.Errorf(models.ErrNotFound, "alarm %s not found", id)
	}

	updated := fn(entry.alarm)
	updated.ID = id

	if updated.Time != entry.alarm.Time {
		s.removeFromMinuteIndex(entry.alarm)
		s.addToMinuteIndex(updated)
	}
	s.alarms[id] = &alarmEntry{alarm: updated, seq: entry.seq}
	s.mu.Unlock()

	s.notify()
	return updated, nil
}

func (s *AlarmStore) addToMinuteIndex(alarm models.Alarm) {
	key := alarm.Time.MinuteOfDay()
	s.alarmsByMinute[key] = append(s.alarmsByMinute[key], alarm.ID)
}

// removeFromMinuteIndex removes an alarm from the minute-based index
func (s *AlarmStore) removeFromMinuteIndex(alarm models.Alarm) {
	key := alarm.Time.MinuteOfDay()
	ids := s.alarmsByMinute[key]
	for i, id := range ids {
		if id == alarm.ID {
			s.alarmsByMinute[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.alarmsByMinute[key]) == 0 {
		delete(s.alarmsByMinute, key)
	}
}
