// Package config holds vmouse configuration: defaults, the YAML file and the
// flat key/value settings persisted by the store and edited over HTTP.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/vmouse/internal/detector"
	"github.com/ayusman/vmouse/internal/gesture"
)

// ErrInvalidSetting is returned for unknown setting keys and unparsable or
// out-of-range values.
var ErrInvalidSetting = errors.New("invalid setting")

// AppDir is the per-user directory name under the home directory.
const AppDir = ".vmouse"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Camera   CameraConfig   `yaml:"camera"`
	Screen   ScreenConfig   `yaml:"screen"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Detector DetectorConfig `yaml:"detector"`
	Gestures GestureConfig  `yaml:"gestures"`
	Paths    PathConfig     `yaml:"paths"`
	Tray     bool           `yaml:"tray"`
	Debug    bool           `yaml:"debug"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type CameraConfig struct {
	Device          int     `yaml:"device"`
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// ScreenConfig is the target display size. Zero means detect at startup.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type PipelineConfig struct {
	IdleFPS     int           `yaml:"idle_fps"`
	ActiveFPS   int           `yaml:"active_fps"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type DetectorConfig struct {
	MaxHands        int     `yaml:"max_hands"`
	MinConfidence   float64 `yaml:"min_confidence"`
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`
}

// GestureConfig tunes recognition. Enabled is keyed by gesture category;
// a missing category is enabled.
type GestureConfig struct {
	Enabled             map[string]bool `yaml:"enabled"`
	Mirror              bool            `yaml:"mirror"`
	Smoothing           int             `yaml:"smoothing"`
	FrameMargin         int             `yaml:"frame_margin"`
	FingerTolerance     float64         `yaml:"finger_tolerance"`
	ClickDistance       float64         `yaml:"click_distance"`
	VolumeMinDistance   float64         `yaml:"volume_min_distance"`
	VolumeMaxDistance   float64         `yaml:"volume_max_distance"`
	ScrollAmount        int             `yaml:"scroll_amount"`
	ClickCooldown       time.Duration   `yaml:"click_cooldown"`
	RightClickCooldown  time.Duration   `yaml:"right_click_cooldown"`
	DoubleClickCooldown time.Duration   `yaml:"double_click_cooldown"`
	ScreenshotCooldown  time.Duration   `yaml:"screenshot_cooldown"`
}

type PathConfig struct {
	DataDir       string `yaml:"data_dir"`
	PluginDir     string `yaml:"plugin_dir"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// Default returns the stock configuration.
func Default() *Config {
	g := gesture.DefaultConfig()
	d := detector.DefaultConfig()

	dataDir := AppDir
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, AppDir)
	}

	enabled := make(map[string]bool, len(gesture.Categories))
	for _, c := range gesture.Categories {
		enabled[string(c)] = true
	}

	return &Config{
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Camera: CameraConfig{
			Device:          0,
			Width:           g.Mapper.FrameWidth,
			Height:          g.Mapper.FrameHeight,
			MotionThreshold: 1.0,
		},
		Pipeline: PipelineConfig{
			IdleFPS:     5,
			ActiveFPS:   30,
			IdleTimeout: 2 * time.Second,
		},
		Detector: DetectorConfig{
			MaxHands:        d.MaxHands,
			MinConfidence:   d.MinConfidence,
			MinTrackingConf: d.MinTrackingConf,
		},
		Gestures: GestureConfig{
			Enabled:             enabled,
			Mirror:              g.Mirror,
			Smoothing:           g.Smoothing,
			FrameMargin:         g.Mapper.Margin,
			FingerTolerance:     g.Thresholds.FingerTolerance,
			ClickDistance:       g.Thresholds.ClickDistance,
			VolumeMinDistance:   g.Thresholds.VolumeMinDistance,
			VolumeMaxDistance:   g.Thresholds.VolumeMaxDistance,
			ScrollAmount:        g.ScrollAmount,
			ClickCooldown:       g.Cooldowns.Click,
			RightClickCooldown:  g.Cooldowns.RightClick,
			DoubleClickCooldown: g.Cooldowns.DoubleClick,
			ScreenshotCooldown:  g.Cooldowns.Screenshot,
		},
		Paths: PathConfig{
			DataDir:       dataDir,
			PluginDir:     filepath.Join(dataDir, "plugins"),
			ScreenshotDir: filepath.Join(dataDir, "screenshots"),
		},
		Tray: true,
	}
}

// DefaultPath returns the config file consulted when none is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(AppDir, "config.yaml")
	}
	return filepath.Join(home, AppDir, "config.yaml")
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadIfExists is Load, except that a missing file yields the defaults.
func LoadIfExists(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Write encodes cfg as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	g := c.Gestures
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("server.addr: %w: empty", ErrInvalidSetting)
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("camera size %dx%d: %w", c.Camera.Width, c.Camera.Height, ErrInvalidSetting)
	case c.Screen.Width < 0 || c.Screen.Height < 0:
		return fmt.Errorf("screen size %dx%d: %w", c.Screen.Width, c.Screen.Height, ErrInvalidSetting)
	case c.Pipeline.IdleFPS <= 0 || c.Pipeline.ActiveFPS <= 0:
		return fmt.Errorf("pipeline fps: %w: must be positive", ErrInvalidSetting)
	case c.Detector.MaxHands < 1:
		return fmt.Errorf("detector.max_hands: %w: must be at least 1", ErrInvalidSetting)
	case g.Smoothing < 1:
		return fmt.Errorf("gestures.smoothing: %w: must be at least 1", ErrInvalidSetting)
	case g.FrameMargin < 0 || 2*g.FrameMargin >= min(c.Camera.Width, c.Camera.Height):
		return fmt.Errorf("gestures.frame_margin %d: %w: leaves no active area", g.FrameMargin, ErrInvalidSetting)
	case g.VolumeMinDistance >= g.VolumeMaxDistance:
		return fmt.Errorf("gestures.volume distances: %w: min must be below max", ErrInvalidSetting)
	case g.ClickDistance <= 0:
		return fmt.Errorf("gestures.click_distance: %w: must be positive", ErrInvalidSetting)
	case g.FingerTolerance < 0:
		return fmt.Errorf("gestures.finger_tolerance: %w: must not be negative", ErrInvalidSetting)
	case g.ScrollAmount < 1:
		return fmt.Errorf("gestures.scroll_amount: %w: must be at least 1", ErrInvalidSetting)
	case g.ClickCooldown < 0 || g.RightClickCooldown < 0 || g.DoubleClickCooldown < 0 || g.ScreenshotCooldown < 0:
		return fmt.Errorf("gestures cooldowns: %w: must not be negative", ErrInvalidSetting)
	}
	for name := range g.Enabled {
		if !knownCategory(name) {
			return fmt.Errorf("gestures.enabled.%s: %w: unknown gesture", name, ErrInvalidSetting)
		}
	}
	return nil
}

func knownCategory(name string) bool {
	for _, c := range gesture.Categories {
		if string(c) == name {
			return true
		}
	}
	return false
}

// GestureEnabled reports whether a category is switched on.
func (c *Config) GestureEnabled(cat gesture.Category) bool {
	on, ok := c.Gestures.Enabled[string(cat)]
	return !ok || on
}

// Recognizer converts the configuration into a recognizer config.
// screenW and screenH replace a zero screen size.
func (c *Config) Recognizer(screenW, screenH int) gesture.Config {
	g := c.Gestures

	if c.Screen.Width > 0 {
		screenW = c.Screen.Width
	}
	if c.Screen.Height > 0 {
		screenH = c.Screen.Height
	}

	disabled := make(map[gesture.Category]bool)
	for _, cat := range gesture.Categories {
		if !c.GestureEnabled(cat) {
			disabled[cat] = true
		}
	}

	th := gesture.DefaultThresholds()
	th.FingerTolerance = g.FingerTolerance
	th.ClickDistance = g.ClickDistance
	th.VolumeMinDistance = g.VolumeMinDistance
	th.VolumeMaxDistance = g.VolumeMaxDistance

	return gesture.Config{
		Thresholds: th,
		Cooldowns: gesture.Cooldowns{
			Click:       g.ClickCooldown,
			RightClick:  g.RightClickCooldown,
			DoubleClick: g.DoubleClickCooldown,
			Screenshot:  g.ScreenshotCooldown,
		},
		ScrollAmount: g.ScrollAmount,
		Smoothing:    g.Smoothing,
		Mapper: gesture.ScreenMapper{
			FrameWidth:   c.Camera.Width,
			FrameHeight:  c.Camera.Height,
			Margin:       g.FrameMargin,
			ScreenWidth:  screenW,
			ScreenHeight: screenH,
		},
		Mirror:   g.Mirror,
		Disabled: disabled,
	}
}

// DetectorConfig converts the detector section.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinConfidence,
		MinTrackingConf: c.Detector.MinTrackingConf,
	}
}

// DatabasePath is the sqlite file inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "vmouse.db")
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Gestures.Enabled = make(map[string]bool, len(c.Gestures.Enabled))
	for k, v := range c.Gestures.Enabled {
		out.Gestures.Enabled[k] = v
	}
	return &out
}
