// Package platform wraps the few window-manager calls fyne does not expose:
// keeping the app out of the dock, checking focus, and raising the app while
// an alarm rings. Everything is a no-op outside macOS.
package platform
