// Package action executes recognized gestures as OS input: cursor motion,
// clicks, scrolling, drag, volume and screenshots.
package action

// Button identifies a mouse button.
type Button string

const (
	ButtonLeft  Button = "left"
	ButtonRight Button = "right"
)

// Dispatcher performs OS-level input. Calls are best effort; the caller
// logs failures and never retries.
type Dispatcher interface {
	MoveCursor(x, y int) error
	Click(button Button) error
	DoubleClick() error
	Scroll(amount int) error
	SetVolume(level float64) error
	MouseDown() error
	MouseUp() error
	TakeScreenshot(path string) error
}

// VolumeControl sets the system output volume, 0..100.
type VolumeControl interface {
	SetVolume(level float64) error
}
