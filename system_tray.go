package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"github.com/borgmon/alarm-clock/pkg/models"
)

const trayUpcomingLimit = 5

func (ac *AlarmClock) setupSystemTray() {
	if desk, ok := ac.app.(desktop.App); ok {
		desk.SetSystemTrayIcon(theme.HistoryIcon())
	}
	ac.updateSystemTrayMenu()
}

func (ac *AlarmClock) updateSystemTrayMenu() {
	desk, ok := ac.app.(desktop.App)
	if !ok {
		return
	}

	menuItems := upcomingMenuItems(ac.alarms.Upcoming(time.Now(), trayUpcomingLimit))

	menuItems = append(menuItems,
		fyne.NewMenuItem("Show Clock", func() {
			ac.showClock()
		}),
		fyne.NewMenuItem("Settings", func() {
			ac.showSettings()
		}),
	)

	menuItems = append(menuItems, fyne.NewMenuItemSeparator())
	menuItems = append(menuItems, fyne.NewMenuItem("Quit", func() {
		ac.quit()
	}))

	desk.SetSystemTrayMenu(fyne.NewMenu(appName, menuItems...))
}

// upcomingMenuItems renders the next alarms as disabled entries followed by a separator
func upcomingMenuItems(upcoming []models.Alarm) []*fyne.MenuItem {
	if len(upcoming) == 0 {
		return nil
	}

	headerItem := fyne.NewMenuItem("Upcoming Alarms:", nil)
	headerItem.Disabled = true
	items := []*fyne.MenuItem{headerItem}

	for _, alarm := range upcoming {
		item := fyne.NewMenuItem(fmt.Sprintf("  %s - %s", alarm.Time, truncateString(alarm.DisplayName(), 35)), nil)
		item.Disabled = true
		items = append(items, item)
	}

	return append(items, fyne.NewMenuItemSeparator())
}

// truncateString truncates a string to maxLen runes, adding "..." if needed
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
