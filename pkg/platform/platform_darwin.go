//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework AppKit
#import <Cocoa/Cocoa.h>
#import <AppKit/AppKit.h>

static NSInteger attentionRequest = 0;

void setAccessoryPolicy(void) {
    [NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
}

int isAppActive(void) {
    return [NSApp isActive] ? 1 : 0;
}

void activateApp(void) {
    [NSApp activateIgnoringOtherApps:YES];
}

void requestAttention(void) {
    if (attentionRequest != 0) {
        return;
    }
    attentionRequest = [NSApp requestUserAttention:NSCriticalRequest];
}

void cancelAttention(void) {
    if (attentionRequest == 0) {
        return;
    }
    [NSApp cancelUserAttentionRequest:attentionRequest];
    attentionRequest = 0;
}
*/
import "C"
import "log"

// SetActivationPolicy keeps the app out of the dock so it lives in the menu bar tray
func SetActivationPolicy() {
	log.Println("[PLATFORM] Running as accessory app (tray only, no dock icon)")
	C.setAccessoryPolicy()
}

// IsAppActive returns true if the application is currently active/focused
func IsAppActive() bool {
	return C.isAppActive() == 1
}

// ActivateApp brings the application to the front
func ActivateApp() {
	C.activateApp()
}

// RequestAttention keeps bouncing until CancelAttention. Repeated calls
// share one request.
func RequestAttention() {
	C.requestAttention()
}

func CancelAttention() {
	C.cancelAttention()
}
