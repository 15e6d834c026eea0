// Package app wires the camera, detector, recognizer and dispatcher into the
// vmouse detection pipeline.
package app

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ayusman/vmouse/internal/action"
	"github.com/ayusman/vmouse/internal/capture"
	"github.com/ayusman/vmouse/internal/config"
	"github.com/ayusman/vmouse/internal/detector"
	"github.com/ayusman/vmouse/internal/gesture"
	"github.com/ayusman/vmouse/internal/store"
)

// ErrMissingDependency is returned by New when a required collaborator is nil.
var ErrMissingDependency = errors.New("missing dependency")

// Publisher receives a Snapshot for every processed frame.
type Publisher interface {
	Publish(v any)
}

// Config holds the application's collaborators.
type Config struct {
	Settings   *config.Config
	Store      *store.Store
	Camera     capture.Camera
	Detector   detector.Detector
	Dispatcher action.Dispatcher
	Publisher  Publisher
	Logger     *zap.Logger

	// ScreenWidth and ScreenHeight are used when the settings leave the
	// screen size at zero.
	ScreenWidth  int
	ScreenHeight int
}

// Snapshot describes one processed frame for live viewers.
type Snapshot struct {
	Timestamp int64           `json:"timestamp"`
	Enabled   bool            `json:"enabled"`
	Active    bool            `json:"active"`
	Hands     []detector.Hand `json:"hands"`
	Fingers   string          `json:"fingers,omitempty"`
	Gesture   gesture.Kind    `json:"gesture"`
	Events    []gesture.Event `json:"events,omitempty"`
	Cursor    gesture.Point   `json:"cursor"`
	Dragging  bool            `json:"dragging"`
}

// App runs the detection pipeline.
type App struct {
	cfg      Config
	logger   *zap.Logger
	motion   *capture.MotionDetector
	executor *action.Executor

	mu         sync.RWMutex
	settings   *config.Config
	pending    *config.Config
	enabled    bool
	stopCh     chan struct{}
	doneCh     chan struct{}
	last       gesture.Kind
	lastAt     time.Time
	listeners  []func(gesture.Kind)
	preview    []byte
	previewSeq uint64

	// Owned by the pipeline goroutine.
	recognizer *gesture.Recognizer
	state      gesture.State
	gate       *capture.ActivityGate
	held       gesture.Kind
}

// New creates an App. Camera, Detector and Dispatcher are required.
func New(cfg Config) (*App, error) {
	switch {
	case cfg.Camera == nil:
		return nil, fmt.Errorf("camera: %w", ErrMissingDependency)
	case cfg.Detector == nil:
		return nil, fmt.Errorf("detector: %w", ErrMissingDependency)
	case cfg.Dispatcher == nil:
		return nil, fmt.Errorf("dispatcher: %w", ErrMissingDependency)
	}
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	settings := cfg.Settings.Clone()
	a := &App{
		cfg:      cfg,
		logger:   cfg.Logger,
		motion:   capture.NewMotionDetector(settings.Camera.MotionThreshold),
		settings: settings,
		enabled:  true,
		last:     gesture.None,
	}
	a.configure(settings)
	return a, nil
}

// configure rebuilds the settings-derived parts. Pipeline goroutine only,
// or before Start.
func (a *App) configure(s *config.Config) {
	a.recognizer = gesture.NewRecognizer(s.Recognizer(a.cfg.ScreenWidth, a.cfg.ScreenHeight))
	a.executor = action.NewExecutor(a.cfg.Dispatcher, s.Paths.ScreenshotDir, a.logger)
	a.gate = capture.NewActivityGate(s.Pipeline.IdleFPS, s.Pipeline.ActiveFPS, s.Pipeline.IdleTimeout)
	if s.Paths.ScreenshotDir != "" {
		if err := os.MkdirAll(s.Paths.ScreenshotDir, 0755); err != nil {
			a.logger.Warn("cannot create screenshot directory", zap.String("dir", s.Paths.ScreenshotDir), zap.Error(err))
		}
	}
}

// LoadSettings overlays settings persisted in the store. Entries that no
// longer validate are logged and skipped.
func (a *App) LoadSettings() error {
	if a.cfg.Store == nil {
		return nil
	}

	saved, err := a.cfg.Store.Settings().All()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.settings.Clone()
	for k, v := range saved {
		if err := next.ApplySettings(map[string]string{k: v}); err != nil {
			a.logger.Warn("ignoring stored setting", zap.String("key", k), zap.Error(err))
		}
	}
	a.settings = next
	a.pending = next
	return nil
}

// Settings returns the current live-tunable settings.
func (a *App) Settings() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings.Settings()
}

// UpdateSettings validates and applies values, persists them, and hands the
// new configuration to the pipeline for the next frame.
func (a *App) UpdateSettings(values map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.settings.Clone()
	if err := next.ApplySettings(values); err != nil {
		return err
	}
	if a.cfg.Store != nil {
		if err := a.cfg.Store.Settings().SetAll(values); err != nil {
			return fmt.Errorf("persist settings: %w", err)
		}
	}

	a.settings = next
	a.pending = next
	a.logger.Info("settings updated", zap.Any("values", values))
	return nil
}

// SetEnabled switches gesture control on or off. Frames are still read for
// the preview while disabled.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// LastGesture returns the most recent recognized gesture and when it was seen.
func (a *App) LastGesture() (gesture.Kind, time.Time) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.lastAt
}

// OnGesture registers fn to be called from the pipeline goroutine whenever
// the recognized gesture changes.
func (a *App) OnGesture(fn func(gesture.Kind)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Preview returns the latest annotated JPEG frame and its sequence number.
// The sequence is zero until the first frame is encoded.
func (a *App) Preview() ([]byte, uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.preview, a.previewSeq
}

// Running reports whether the pipeline goroutine is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// Start opens the camera and launches the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if err := a.cfg.Camera.Open(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	a.cfg.Camera.SetFPS(a.settings.Pipeline.IdleFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	a.logger.Info("detection pipeline started")
	return nil
}

// Stop halts the pipeline, waits for the in-flight frame to finish and
// releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done

	if err := a.cfg.Camera.Close(); err != nil {
		a.logger.Warn("close camera", zap.Error(err))
	}
	a.motion.Close()
	if err := a.cfg.Detector.Close(); err != nil {
		a.logger.Warn("close detector", zap.Error(err))
	}

	a.logger.Info("detection pipeline stopped")
}
