// Package tray provides the vmouse system tray menu.
package tray

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

// Controller switches gesture control on and off.
type Controller interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
}

// Tray is the system tray menu: an enable toggle, the last recognized
// gesture, a link to the settings page and quit.
type Tray struct {
	control     Controller
	settingsURL string
	logger      *zap.Logger
	onQuit      func()
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
	lastGesture     string
}

// New creates a Tray driving control. settingsURL is opened in the
// browser from the menu.
func New(control Controller, settingsURL string, logger *zap.Logger) *Tray {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tray{
		control:     control,
		settingsURL: settingsURL,
		logger:      logger,
	}
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It must be called from the main goroutine
// and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("vmouse")
	systray.SetTooltip("vmouse hand gesture mouse")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.control.IsEnabled()), "Toggle gesture control")
	systray.AddSeparator()
	t.menuLastGesture = systray.AddMenuItem(lastGestureTitle(t.lastGesture), "Last recognized gesture")
	t.menuLastGesture.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit vmouse")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.toggle()
			case <-menuSettings.ClickedCh:
				t.openSettings()
			case <-menuQuit.ClickedCh:
				t.quit()
				return
			}
		}
	}()
}

// toggle flips gesture control and returns the new state.
func (t *Tray) toggle() bool {
	enabled := !t.control.IsEnabled()
	t.control.SetEnabled(enabled)
	t.logger.Info("gesture control toggled", zap.Bool("enabled", enabled))

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	return enabled
}

func (t *Tray) openSettings() {
	name, args := browserCommand(runtime.GOOS, t.settingsURL)
	if err := exec.Command(name, args...).Start(); err != nil {
		t.logger.Warn("open settings", zap.String("url", t.settingsURL), zap.Error(err))
	}
}

func (t *Tray) quit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastGesture = name
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(lastGestureTitle(name))
	}
}

// LastGesture returns the gesture currently shown in the menu.
func (t *Tray) LastGesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastGesture
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastGestureTitle(name string) string {
	if name == "" {
		name = "none"
	}
	return fmt.Sprintf("Last: %s", name)
}

// browserCommand returns the command that opens url in the default browser.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
