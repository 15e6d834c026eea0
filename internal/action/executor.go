package action

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/vmouse/internal/gesture"
)

// Executor turns gesture events into dispatcher calls.
type Executor struct {
	dispatcher    Dispatcher
	screenshotDir string
	logger        *zap.Logger
	now           func() time.Time
}

// NewExecutor creates an Executor. Screenshots are written to screenshotDir.
func NewExecutor(d Dispatcher, screenshotDir string, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		dispatcher:    d,
		screenshotDir: screenshotDir,
		logger:        logger,
		now:           time.Now,
	}
}

// ScreenshotPath returns the file name used for a screenshot taken at t.
func (e *Executor) ScreenshotPath(t time.Time) string {
	return filepath.Join(e.screenshotDir, fmt.Sprintf("screenshot_%d.png", t.Unix()))
}

// Execute performs a single event.
func (e *Executor) Execute(ev gesture.Event) error {
	d := e.dispatcher

	switch ev.Kind {
	case gesture.None:
		return nil
	case gesture.Move, gesture.DragMove:
		return d.MoveCursor(round(ev.Target.X), round(ev.Target.Y))
	case gesture.DragStart:
		if err := d.MoveCursor(round(ev.Target.X), round(ev.Target.Y)); err != nil {
			return err
		}
		return d.MouseDown()
	case gesture.DragEnd:
		return d.MouseUp()
	case gesture.Click:
		return d.Click(ButtonLeft)
	case gesture.RightClick:
		return d.Click(ButtonRight)
	case gesture.DoubleClick:
		return d.DoubleClick()
	case gesture.ScrollUp, gesture.ScrollDown:
		return d.Scroll(ev.Amount)
	case gesture.Volume:
		return d.SetVolume(ev.Level)
	case gesture.Screenshot:
		return d.TakeScreenshot(e.ScreenshotPath(e.now()))
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

// ExecuteAll performs events in order. Failures are logged and do not stop
// the remaining events.
func (e *Executor) ExecuteAll(events []gesture.Event) {
	for _, ev := range events {
		if err := e.Execute(ev); err != nil {
			e.logger.Warn("dispatch failed",
				zap.String("gesture", string(ev.Kind)),
				zap.String("rule", ev.Rule),
				zap.Error(err),
			)
		}
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
