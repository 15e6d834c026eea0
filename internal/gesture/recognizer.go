package gesture

import (
	"math"
	"time"

	"github.com/ayusman/vmouse/internal/detector"
)

// Default cooldowns for gestures that would otherwise repeat every frame
// while held.
const (
	DefaultScreenshotCooldown  = time.Second
	DefaultRightClickCooldown  = 900 * time.Millisecond
	DefaultDoubleClickCooldown = 900 * time.Millisecond
)

// Cooldowns is the minimum wall time between two events of a kind.
// Zero disables the limit.
type Cooldowns struct {
	Click       time.Duration
	RightClick  time.Duration
	DoubleClick time.Duration
	Screenshot  time.Duration
}

// Config holds the recognizer's tunables.
type Config struct {
	Thresholds   Thresholds
	Cooldowns    Cooldowns
	ScrollAmount int
	Smoothing    int
	Mapper       ScreenMapper
	Mirror       bool
	Disabled     map[Category]bool
}

// DefaultConfig returns the stock configuration for a 640x480 camera and a
// 1920x1080 screen.
func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		Cooldowns: Cooldowns{
			RightClick:  DefaultRightClickCooldown,
			DoubleClick: DefaultDoubleClickCooldown,
			Screenshot:  DefaultScreenshotCooldown,
		},
		ScrollAmount: DefaultScrollAmount,
		Smoothing:    DefaultSmoothing,
		Mapper: ScreenMapper{
			FrameWidth:   640,
			FrameHeight:  480,
			Margin:       DefaultFrameMargin,
			ScreenWidth:  1920,
			ScreenHeight: 1080,
		},
		Mirror: true,
	}
}

// State is everything that survives from one frame to the next.
// The zero value is a fresh session with the cursor at the origin.
type State struct {
	Cursor            Point
	Dragging          bool
	RightClickLatched bool
	LastClick         time.Time
	LastRightClick    time.Time
	LastDoubleClick   time.Time
	LastScreenshot    time.Time

	// VolumeHeld is set while the volume pose persists; LastVolume is the
	// rounded level last emitted during it.
	VolumeHeld bool
	LastVolume float64
}

// Result describes one processed frame.
type Result struct {
	Detected bool
	Hand     *detector.Hand
	Fingers  FingerState
	Matched  Kind
	Events   []Event
}

// Recognizer turns detected hands into events. It is not safe for
// concurrent use; a single pipeline goroutine owns it and its State.
type Recognizer struct {
	cfg        Config
	classifier *Classifier
	smoother   Smoother
}

// NewRecognizer creates a Recognizer using the default rule table.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{
		cfg:        cfg,
		classifier: NewClassifier(DefaultRules(), cfg.Disabled),
		smoother:   Smoother{Factor: cfg.Smoothing},
	}
}

// Config returns the recognizer's configuration.
func (r *Recognizer) Config() Config {
	return r.cfg
}

// Step processes one frame. Only the first hand is used. A frame with no
// usable hand yields no events and leaves the drag flag untouched.
//
// When a drag is in progress and the frame matches anything other than the
// drag rule, a single DragEnd is emitted after the frame's own event, so a
// pointer move lands before the button is released. A held volume pose
// emits again only when the rounded level changes.
func (r *Recognizer) Step(st State, hands []detector.Hand, now time.Time) (State, Result) {
	res := Result{Matched: None}
	if len(hands) == 0 {
		st.RightClickLatched = false
		st.VolumeHeld = false
		return st, res
	}

	hand := &hands[0]
	fs, ok := ExtractFingers(hand, r.cfg.Thresholds.FingerTolerance)
	if !ok {
		st.RightClickLatched = false
		st.VolumeHeld = false
		return st, res
	}
	res.Detected = true
	res.Hand = hand
	res.Fingers = fs

	ev := r.classifier.Classify(Input{
		Fingers:      fs,
		Hand:         hand,
		Dragging:     st.Dragging,
		Thresholds:   r.cfg.Thresholds,
		ScrollAmount: r.cfg.ScrollAmount,
	})
	res.Matched = ev.Kind

	endDrag := st.Dragging && ev.Kind != DragMove
	if endDrag {
		st.Dragging = false
		if ev.Kind == DragEnd {
			ev = Event{Kind: None}
		}
	}

	if ev.Kind != RightClick {
		st.RightClickLatched = false
	}
	if ev.Kind != Volume {
		st.VolumeHeld = false
	}

	switch ev.Kind {
	case Move, DragStart, DragMove:
		st.Cursor = r.smoother.Next(st.Cursor, r.cfg.Mapper.ToScreen(ev.Target))
		ev.Target = st.Cursor
		if r.cfg.Mirror {
			ev.Target = r.cfg.Mapper.Mirror(st.Cursor)
		}
		if ev.Kind != Move {
			st.Dragging = true
		}

	case Volume:
		level := math.Round(ev.Level)
		if st.VolumeHeld && level == st.LastVolume {
			ev.Kind = None
			break
		}
		st.VolumeHeld = true
		st.LastVolume = level

	case Click:
		if !ready(st.LastClick, r.cfg.Cooldowns.Click, now) {
			ev.Kind = None
			break
		}
		st.LastClick = now

	case Screenshot:
		if !ready(st.LastScreenshot, r.cfg.Cooldowns.Screenshot, now) {
			ev.Kind = None
			break
		}
		st.LastScreenshot = now

	case RightClick:
		if st.RightClickLatched || !ready(st.LastRightClick, r.cfg.Cooldowns.RightClick, now) {
			ev.Kind = None
			break
		}
		st.RightClickLatched = true
		st.LastRightClick = now

	case DoubleClick:
		if !ready(st.LastDoubleClick, r.cfg.Cooldowns.DoubleClick, now) {
			ev.Kind = None
			break
		}
		st.LastDoubleClick = now
	}

	if ev.Kind != None {
		res.Events = append(res.Events, ev)
	}
	if endDrag {
		res.Events = append(res.Events, Event{Kind: DragEnd, Rule: "drag-end"})
	}
	return st, res
}

// Release ends any drag in progress, for use when the pipeline stops or
// goes idle with the button still held.
func (r *Recognizer) Release(st State) (State, []Event) {
	if !st.Dragging {
		return st, nil
	}
	st.Dragging = false
	return st, []Event{{Kind: DragEnd, Rule: "drag-end"}}
}

// ready reports whether cooldown has elapsed since last.
func ready(last time.Time, cooldown time.Duration, now time.Time) bool {
	return last.IsZero() || now.Sub(last) >= cooldown
}
