package store

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/borgmon/alarm-clock/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) models.ClockTime {
	return models.ClockTime{Hour: hour, Minute: minute}
}

func TestAlarmStoreAddAndGet(t *testing.T) {
	s := NewAlarmStore()

	alarm, err := s.Add(at(7, 30), "", "Wake up")
	require.NoError(t, err)

	assert.NotEmpty(t, alarm.ID)
	assert.True(t, alarm.Enabled)
	assert.Equal(t, models.DefaultTone, alarm.Tone)

	got, ok := s.Get(alarm.ID)
	require.True(t, ok)
	assert.Equal(t, alarm, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestAlarmStoreAddRejectsInvalidTime(t *testing.T) {
	s := NewAlarmStore()

	_, err := s.Add(at(24, 0), "", "")
	require.Error(t, err)
	assert.Equal(t, models.ErrInvalid, models.ErrorCode(err))
	assert.Equal(t, 0, s.Len())
}

func TestAlarmStoreToggleTargetsOnlyOneOfIdenticalAlarms(t *testing.T) {
	s := NewAlarmStore()

	first, err := s.Add(at(6, 0), models.DefaultTone, "")
	require.NoError(t, err)
	second, err := s.Add(at(6, 0), models.DefaultTone, "")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, err = s.SetEnabled(first.ID, false)
	require.NoError(t, err)

	gotFirst, _ := s.Get(first.ID)
	gotSecond, _ := s.Get(second.ID)
	assert.False(t, gotFirst.Enabled)
	assert.True(t, gotSecond.Enabled)
}

func TestAlarmStoreSnoozeMovesIndex(t *testing.T) {
	s := NewAlarmStore()
	alarm, _ := s.Add(at(23, 58), "", "")

	snoozed, err := s.Snooze(alarm.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, at(0, 3), snoozed.Time)
	assert.True(t, snoozed.Enabled)

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, s.DueAt(day.Add(23*time.Hour+58*time.Minute)))
	due := s.DueAt(day.Add(3 * time.Minute))
	require.Len(t, due, 1)
	assert.Equal(t, alarm.ID, due[0].ID)
}

func TestAlarmStoreSnoozeRejectsNonPositiveMinutes(t *testing.T) {
	s := NewAlarmStore()
	alarm, _ := s.Add(at(8, 0), "", "")

	_, err := s.Snooze(alarm.ID, 0)
	assert.Equal(t, models.ErrInvalid, models.ErrorCode(err))
}

func TestAlarmStoreDismiss(t *testing.T) {
	s := NewAlarmStore()
	alarm, _ := s.Add(at(9, 15), "", "")

	dismissed, err := s.Dismiss(alarm.ID)
	require.NoError(t, err)
	assert.False(t, dismissed.Enabled)
	assert.Equal(t, alarm.Time, dismissed.Time)

	now := time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)
	assert.Empty(t, s.DueAt(now))
}

func TestAlarmStoreUnknownID(t *testing.T) {
	s := NewAlarmStore()

	_, err := s.SetEnabled("nope", true)
	assert.Equal(t, models.ErrNotFound, models.ErrorCode(err))
	_, err = s.Dismiss("nope")
	assert.Equal(t, models.ErrNotFound, models.ErrorCode(err))
	_, err = s.Snooze("nope", 5)
	assert.Equal(t, models.ErrNotFound, models.ErrorCode(err))
	assert.Equal(t, models.ErrNotFound, models.ErrorCode(s.Remove("nope")))
}

func TestAlarmStoreRemove(t *testing.T) {
	s := NewAlarmStore()
	alarm, _ := s.Add(at(5, 0), "", "")

	require.NoError(t, s.Remove(alarm.ID))

	_, ok := s.Get(alarm.ID)
	assert.False(t, ok)
	assert.Empty(t, s.DueAt(time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)))
}

func TestAlarmStoreDueAtCreationOrder(t *testing.T) {
	s := NewAlarmStore()
	a, _ := s.Add(at(7, 0), "", "a")
	b, _ := s.Add(at(7, 0), "", "b")
	_, _ = s.Add(at(7, 1), "", "c")
	d, _ := s.Add(at(7, 0), "", "d")
	_, _ = s.SetEnabled(b.ID, false)

	due := s.DueAt(time.Date(2024, 1, 1, 7, 0, 42, 0, time.UTC))

	require.Len(t, due, 2)
	assert.Equal(t, a.ID, due[0].ID)
	assert.Equal(t, d.ID, due[1].ID)
}

func TestAlarmStoreListSorted(t *testing.T) {
	s := NewAlarmStore()
	_, _ = s.Add(at(9, 0), "", "nine")
	_, _ = s.Add(at(6, 30), "", "six")
	_, _ = s.Add(at(22, 0), "", "ten")

	list := s.List()

	require.Len(t, list, 3)
	assert.Equal(t, "six", list[0].Label)
	assert.Equal(t, "nine", list[1].Label)
	assert.Equal(t, "ten", list[2].Label)
}

func TestAlarmStoreUpcoming(t *testing.T) {
	s := NewAlarmStore()
	_, _ = s.Add(at(6, 0), "", "tomorrow morning")
	_, _ = s.Add(at(23, 0), "", "tonight")
	off, _ := s.Add(at(22, 30), "", "disabled")
	_, _ = s.SetEnabled(off.ID, false)

	now := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	upcoming := s.Upcoming(now, 5)

	require.Len(t, upcoming, 2)
	assert.Equal(t, "tonight", upcoming[0].Label)
	assert.Equal(t, "tomorrow morning", upcoming[1].Label)

	assert.Len(t, s.Upcoming(now, 1), 1)
}

func TestAlarmStoreOnChange(t *testing.T) {
	s := NewAlarmStore()
	var calls atomic.Int32
	s.SetOnChange(func() { calls.Add(1) })

	alarm, _ := s.Add(at(5, 0), "", "")
	_, _ = s.SetEnabled(alarm.ID, false)
	_ = s.Remove(alarm.ID)
	_, _ = s.Dismiss("missing")

	assert.Equal(t, int32(3), calls.Load())
}

func TestAlarmStoreMarkFired(t *testing.T) {
	s := NewAlarmStore()
	alarm, err := s.Add(at(7, 0), "", "")
	require.NoError(t, err)

	first := time.Date(2024, 5, 17, 7, 0, 10, 0, time.Local)
	assert.True(t, s.MarkFired(alarm.ID, first))
	assert.False(t, s.MarkFired(alarm.ID, first.Add(30*time.Second)))
	assert.True(t, s.MarkFired(alarm.ID, first.AddDate(0, 0, 1)))

	// Removal forgets the record
	require.NoError(t, s.Remove(alarm.ID))
	assert.True(t, s.MarkFired(alarm.ID, first.AddDate(0, 0, 1)))
}
