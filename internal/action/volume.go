package action

import (
	"context"
	"fmt"

	"github.com/ayusman/vmouse/internal/plugin"
)

// VolumePlugin is the plugin consulted for volume changes.
const VolumePlugin = "system-control"

// PluginVolume sets the output volume by running the system-control plugin.
type PluginVolume struct {
	manager  *plugin.Manager
	executor *plugin.Executor
}

// NewPluginVolume creates a PluginVolume. The manager must already have
// discovered its plugins.
func NewPluginVolume(manager *plugin.Manager, executor *plugin.Executor) *PluginVolume {
	return &PluginVolume{manager: manager, executor: executor}
}

func (v *PluginVolume) SetVolume(level float64) error {
	p, err := v.manager.Get(VolumePlugin)
	if err != nil {
		return fmt.Errorf("volume: %w", err)
	}
	params := map[string]int{"level": round(clamp(level, 0, 100))}
	return v.executor.Call(context.Background(), p, "volume-set", params)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
