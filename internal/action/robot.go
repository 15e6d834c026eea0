package action

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// DoubleClickPause is the gap between the two clicks of a double click.
const DoubleClickPause = 100 * time.Millisecond

// RobotDispatcher drives the mouse and screen through robotgo. Volume is
// delegated to a VolumeControl because robotgo has no mixer API.
type RobotDispatcher struct {
	volume VolumeControl
}

// NewRobotDispatcher creates a RobotDispatcher. volume may be nil, in which
// case SetVolume reports an error.
func NewRobotDispatcher(volume VolumeControl) *RobotDispatcher {
	return &RobotDispatcher{volume: volume}
}

// ScreenSize returns the main display size in pixels.
func (r *RobotDispatcher) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

// MoveCursor warps the pointer to screen coordinates x, y.
func (r *RobotDispatcher) MoveCursor(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// Click presses and releases button once.
func (r *RobotDispatcher) Click(button Button) error {
	robotgo.Click(string(button))
	return nil
}

// DoubleClick sends two left clicks DoubleClickPause apart.
func (r *RobotDispatcher) DoubleClick() error {
	robotgo.Click(string(ButtonLeft))
	time.Sleep(DoubleClickPause)
	robotgo.Click(string(ButtonLeft))
	return nil
}

// Scroll scrolls vertically; positive amounts scroll up.
func (r *RobotDispatcher) Scroll(amount int) error {
	switch {
	case amount > 0:
		robotgo.ScrollDir(amount, "up")
	case amount < 0:
		robotgo.ScrollDir(-amount, "down")
	}
	return nil
}

// SetVolume sets the system volume to level, 0 to 100.
func (r *RobotDispatcher) SetVolume(level float64) error {
	if r.volume == nil {
		return fmt.Errorf("volume control unavailable")
	}
	return r.volume.SetVolume(level)
}

// MouseDown holds the left button.
func (r *RobotDispatcher) MouseDown() error {
	return robotgo.Toggle(string(ButtonLeft))
}

// MouseUp releases the left button.
func (r *RobotDispatcher) MouseUp() error {
	return robotgo.Toggle(string(ButtonLeft), "up")
}

// TakeScreenshot captures the main display and writes it to path as PNG.
func (r *RobotDispatcher) TakeScreenshot(path string) error {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return fmt.Errorf("capture screen: %w", err)
	}
	if err := robotgo.SavePng(img, path); err != nil {
		return fmt.Errorf("save screenshot %s: %w", path, err)
	}
	return nil
}
