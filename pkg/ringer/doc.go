// Package ringer implements the alarm-matching loop.
//
// A single goroutine ticks once per second, compares the clock against the
// enabled alarms in the store and starts a ringing episode on a match. An
// episode owns the playback handle and is resolved by whichever comes first:
// the ring timeout, a snooze or dismiss action, or cancellation of the loop's
// context. The loop keeps ticking while an alarm rings; alarms that match in
// the meantime are queued and ring one after another.
package ringer
