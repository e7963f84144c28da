package main

import (
	"log"

	"golang.design/x/hotkey"
)

// hotkeyBinding is a registered global shortcut
type hotkeyBinding interface {
	Unregister()
}

// snoozeHotkey is the global Ctrl+Shift+S binding active while an alarm rings
type snoozeHotkey struct {
	hk   *hotkey.Hotkey
	done chan struct{}
}

// registerSnoozeHotkey returns nil when the shortcut is taken or unsupported
func registerSnoozeHotkey(onPress func()) hotkeyBinding {
	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyS)
	if err := hk.Register(); err != nil {
		log.Printf("Failed to register snooze hotkey: %v", err)
		return nil
	}

	sh := &snoozeHotkey{hk: hk, done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-sh.done:
				return
			case <-hk.Keydown():
				log.Println("Snooze hotkey pressed")
				onPress()
			}
		}
	}()
	return sh
}

func (sh *snoozeHotkey) Unregister() {
	if sh == nil {
		return
	}
	close(sh.done)
	if err := sh.hk.Unregister(); err != nil {
		log.Printf("Failed to unregister snooze hotkey: %v", err)
	}
}
