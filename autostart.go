package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/emersion/go-autostart"
)

// autostartEntry describes the login item for the binary at execPath
func autostartEntry(execPath string) *autostart.App {
	return &autostart.App{
		Name:        "alarm-clock",
		DisplayName: appName,
		Exec:        []string{execPath},
	}
}

// setupAutostart makes the login item match enable. It only touches the
// system when the state differs.
func setupAutostart(enable bool) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}

	// Resolve symlinks if any
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return err
	}

	entry := autostartEntry(execPath)
	if entry.IsEnabled() == enable {
		return nil
	}

	if enable {
		if err := entry.Enable(); err != nil {
			log.Printf("Failed to enable autostart: %v", err)
			return err
		}
		log.Println("Autostart enabled")
		return nil
	}

	if err := entry.Disable(); err != nil {
		log.Printf("Failed to disable autostart: %v", err)
		return err
	}
	log.Println("Autostart disabled")
	return nil
}
