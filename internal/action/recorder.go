package action

import (
	"fmt"
	"sync"
)

// Recorder is a Dispatcher that records calls instead of touching the OS.
// Calls are recorded as short strings such as "move 10 20" or "click left".
type Recorder struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{fail: make(map[string]error)}
}

// FailOn makes every call of the named operation (e.g. "click") return err.
func (r *Recorder) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[op] = err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Reset clears recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(op string, format string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := op
	if format != "" {
		call += " " + fmt.Sprintf(format, args...)
	}
	r.calls = append(r.calls, call)
	return r.fail[op]
}

func (r *Recorder) MoveCursor(x, y int) error     { return r.record("move", "%d %d", x, y) }
func (r *Recorder) Click(button Button) error     { return r.record("click", "%s", button) }
func (r *Recorder) DoubleClick() error            { return r.record("double_click", "") }
func (r *Recorder) Scroll(amount int) error       { return r.record("scroll", "%d", amount) }
func (r *Recorder) SetVolume(level float64) error { return r.record("volume", "%.0f", level) }
func (r *Recorder) MouseDown() error              { return r.record("mouse_down", "") }
func (r *Recorder) MouseUp() error                { return r.record("mouse_up", "") }
func (r *Recorder) TakeScreenshot(path string) error {
	return r.record("screenshot", "%s", path)
}
