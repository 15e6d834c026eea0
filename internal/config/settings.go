package config

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ayusman/vmouse/internal/gesture"
)

// setting is one live-tunable key.
type setting struct {
	get func(*Config) string
	set func(*Config, string) error
}

// Enabled-gesture keys are "gesture.<category>".
const gesturePrefix = "gesture."

var settings = map[string]setting{
	"mirror":                boolSetting(func(c *Config) *bool { return &c.Gestures.Mirror }),
	"smoothing":             intSetting(func(c *Config) *int { return &c.Gestures.Smoothing }, atLeast(1)),
	"frame_margin":          intSetting(func(c *Config) *int { return &c.Gestures.FrameMargin }, atLeast(0)),
	"scroll_amount":         intSetting(func(c *Config) *int { return &c.Gestures.ScrollAmount }, atLeast(1)),
	"finger_tolerance":      floatSetting(func(c *Config) *float64 { return &c.Gestures.FingerTolerance }),
	"click_distance":        floatSetting(func(c *Config) *float64 { return &c.Gestures.ClickDistance }),
	"volume_min_distance":   floatSetting(func(c *Config) *float64 { return &c.Gestures.VolumeMinDistance }),
	"volume_max_distance":   floatSetting(func(c *Config) *float64 { return &c.Gestures.VolumeMaxDistance }),
	"click_cooldown":        durationSetting(func(c *Config) *time.Duration { return &c.Gestures.ClickCooldown }),
	"right_click_cooldown":  durationSetting(func(c *Config) *time.Duration { return &c.Gestures.RightClickCooldown }),
	"double_click_cooldown": durationSetting(func(c *Config) *time.Duration { return &c.Gestures.DoubleClickCooldown }),
	"screenshot_cooldown":   durationSetting(func(c *Config) *time.Duration { return &c.Gestures.ScreenshotCooldown }),
	"screenshot_dir": {
		get: func(c *Config) string { return c.Paths.ScreenshotDir },
		set: func(c *Config, v string) error {
			if v == "" {
				return fmt.Errorf("empty path")
			}
			c.Paths.ScreenshotDir = v
			return nil
		},
	},
}

func init() {
	for _, cat := range gesture.Categories {
		settings[gesturePrefix+string(cat)] = enabledSetting(cat)
	}
}

func intSetting(field func(*Config) *int, check func(int) error) setting {
	return setting{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			if err := check(n); err != nil {
				return err
			}
			*field(c) = n
			return nil
		},
	}
}

func boolSetting(field func(*Config) *bool) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			*field(c) = b
			return nil
		},
	}
}

func floatSetting(field func(*Config) *float64) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			if f < 0 {
				return fmt.Errorf("must not be negative")
			}
			*field(c) = f
			return nil
		},
	}
}

func durationSetting(field func(*Config) *time.Duration) setting {
	return setting{
		get: func(c *Config) string { return field(c).String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			if d < 0 {
				return fmt.Errorf("must not be negative")
			}
			*field(c) = d
			return nil
		},
	}
}

func enabledSetting(cat gesture.Category) setting {
	return setting{
		get: func(c *Config) string { return strconv.FormatBool(c.GestureEnabled(cat)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			if c.Gestures.Enabled == nil {
				c.Gestures.Enabled = make(map[string]bool)
			}
			c.Gestures.Enabled[string(cat)] = b
			return nil
		},
	}
}

func atLeast(lo int) func(int) error {
	return func(n int) error {
		if n < lo {
			return fmt.Errorf("must be at least %d", lo)
		}
		return nil
	}
}

// SettingKeys lists every live-tunable key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Settings returns the current value of every live-tunable key.
func (c *Config) Settings() map[string]string {
	out := make(map[string]string, len(settings))
	for k, s := range settings {
		out[k] = s.get(c)
	}
	return out
}

// ApplySettings applies values all-or-nothing: on error c is unchanged.
func (c *Config) ApplySettings(values map[string]string) error {
	next := c.Clone()
	for k, v := range values {
		s, ok := settings[k]
		if !ok {
			return fmt.Errorf("%s: %w: unknown key", k, ErrInvalidSetting)
		}
		if err := s.set(next, v); err != nil {
			return fmt.Errorf("%s=%q: %w: %v", k, v, ErrInvalidSetting, err)
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = *next
	return nil
}
