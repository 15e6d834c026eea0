package app

import (
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/vmouse/internal/capture"
	"github.com/ayusman/vmouse/internal/detector"
	"github.com/ayusman/vmouse/internal/gesture"
	"github.com/ayusman/vmouse/internal/store"
)

// runPipeline is the detection loop. It starts idle, runs the detector only
// while the activity gate is open or the frame shows motion, and releases a
// held drag when it goes idle, is disabled or stops.
func (a *App) runPipeline(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer a.release()

	var readErrors int
	for {
		select {
		case <-stop:
			return
		default:
		}

		started := time.Now()
		a.applyPending()

		frame, err := a.cfg.Camera.ReadFrame()
		if err != nil {
			readErrors++
			if readErrors == 1 || readErrors%100 == 0 {
				a.logger.Warn("read frame", zap.Int("failures", readErrors), zap.Error(err))
			}
		} else {
			readErrors = 0
			a.processFrame(frame, started)
			frame.Close()
		}

		wait := a.gate.Interval() - time.Since(started)
		if wait <= 0 {
			continue
		}
		select {
		case <-stop:
			return
		case <-time.After(wait):
		}
	}
}

// applyPending installs settings changed since the last frame.
func (a *App) applyPending() {
	a.mu.Lock()
	next := a.pending
	a.pending = nil
	a.mu.Unlock()

	if next == nil {
		return
	}

	active := a.gate.Active()
	a.configure(next)
	if active {
		a.gate.Update(true, time.Now())
	}
	a.motion.SetThreshold(next.Camera.MotionThreshold)
	a.cfg.Camera.SetFPS(a.gate.FPS())
}

// processFrame runs one frame through motion gating, detection and the
// recognizer, then refreshes the preview.
func (a *App) processFrame(frame *gocv.Mat, now time.Time) {
	enabled := a.IsEnabled()
	moved, _ := a.motion.Detect(frame)

	var hands []detector.Hand
	if enabled && (moved || a.gate.Active()) {
		var err error
		hands, err = a.cfg.Detector.Detect(frame)
		if err != nil {
			a.logger.Warn("detect hands", zap.Error(err))
			hands = nil
		}
	}

	var snap Snapshot
	if enabled {
		snap = a.processHands(hands, now)
	} else {
		a.release()
		snap = a.snapshot(gesture.Result{}, now)
	}

	active, changed := a.gate.Update(moved || len(hands) > 0, now)
	if changed {
		a.cfg.Camera.SetFPS(a.gate.FPS())
		if active {
			a.logger.Debug("pipeline active", zap.Int("fps", a.gate.FPS()))
		} else {
			a.logger.Debug("pipeline idle", zap.Int("fps", a.gate.FPS()))
			a.release()
		}
	}

	a.updatePreview(frame, snap)
}

// processHands steps the recognizer, dispatches its events, records them
// and publishes a snapshot.
func (a *App) processHands(hands []detector.Hand, now time.Time) Snapshot {
	next, res := a.recognizer.Step(a.state, hands, now)
	a.state = next

	a.executor.ExecuteAll(res.Events)
	a.record(res, now)
	a.noteGesture(res.Matched, now)

	snap := a.snapshot(res, now)
	snap.Active = a.gate.Active()
	a.publish(snap)
	return snap
}

// release ends a drag still in progress.
func (a *App) release() {
	next, events := a.recognizer.Release(a.state)
	a.state = next
	if len(events) == 0 {
		return
	}
	a.executor.ExecuteAll(events)
	a.record(gesture.Result{Events: events}, time.Now())
}

func (a *App) snapshot(res gesture.Result, now time.Time) Snapshot {
	snap := Snapshot{
		Timestamp: now.UnixMilli(),
		Enabled:   a.IsEnabled(),
		Hands:     []detector.Hand{},
		Gesture:   gesture.None,
		Events:    res.Events,
		Cursor:    a.state.Cursor,
		Dragging:  a.state.Dragging,
	}
	if res.Hand != nil {
		snap.Hands = []detector.Hand{*res.Hand}
	}
	if res.Detected {
		snap.Fingers = res.Fingers.String()
		snap.Gesture = res.Matched
	}
	return snap
}

// record stores discrete events. Cursor motion is not recorded, and the
// gestures that repeat while a pose is held (volume and scrolling) are
// recorded once on entering the pose.
func (a *App) record(res gesture.Result, now time.Time) {
	prev := a.held
	a.held = res.Matched
	if a.cfg.Store == nil {
		return
	}

	var fingers string
	if res.Detected {
		fingers = res.Fingers.String()
	}

	events := a.cfg.Store.Events()
	for _, ev := range res.Events {
		switch ev.Kind {
		case gesture.Move, gesture.DragMove:
			continue
		case gesture.Volume, gesture.ScrollUp, gesture.ScrollDown:
			if ev.Kind == prev {
				continue
			}
		}
		e := &store.Event{
			Kind:      string(ev.Kind),
			Rule:      ev.Rule,
			Fingers:   fingers,
			X:         ev.Target.X,
			Y:         ev.Target.Y,
			Level:     ev.Level,
			Amount:    ev.Amount,
			CreatedAt: now,
		}
		if err := events.Record(e); err != nil {
			a.logger.Warn("record event", zap.String("gesture", string(ev.Kind)), zap.Error(err))
		}
	}
}

// noteGesture tracks the last recognized gesture and notifies listeners
// when it changes.
func (a *App) noteGesture(kind gesture.Kind, now time.Time) {
	if kind == gesture.None {
		return
	}

	a.mu.Lock()
	changed := kind != a.last
	a.last = kind
	a.lastAt = now
	listeners := a.listeners
	a.mu.Unlock()

	if !changed {
		return
	}
	a.logger.Debug("gesture", zap.String("gesture", string(kind)))
	for _, fn := range listeners {
		fn(kind)
	}
}

func (a *App) publish(snap Snapshot) {
	if a.cfg.Publisher != nil {
		a.cfg.Publisher.Publish(snap)
	}
}

func (a *App) updatePreview(frame *gocv.Mat, snap Snapshot) {
	a.mu.RLock()
	margin := a.settings.Gestures.FrameMargin
	a.mu.RUnlock()

	annotated := frame.Clone()
	defer annotated.Close()

	label := string(snap.Gesture)
	if snap.Fingers != "" {
		label = snap.Fingers + " " + label
	}
	capture.Overlay{Margin: margin, Hands: snap.Hands, Label: label}.Draw(&annotated)

	data, err := capture.EncodeJPEG(&annotated)
	if err != nil {
		a.logger.Debug("encode preview", zap.Error(err))
		return
	}

	a.mu.Lock()
	a.preview = data
	a.previewSeq++
	a.mu.Unlock()
}
