package action

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ayusman/vmouse/internal/plugin"
)

// installVolumePlugin writes a fake system-control plugin that stores its
// request in request.json.
func installVolumePlugin(t *testing.T) (root, requestFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins need a POSIX shell")
	}

	root = t.TempDir()
	dir := filepath.Join(root, VolumePlugin)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	manifest, _ := json.Marshal(plugin.Manifest{
		Name:       VolumePlugin,
		Executable: "run.sh",
		Actions:    []string{"volume-set"},
	})
	if err := os.WriteFile(filepath.Join(dir, plugin.ManifestFile), manifest, 0644); err != nil {
		t.Fatal(err)
	}

	script := "#!/bin/sh\ncat > request.json\necho '{\"success\":true}'\n"
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return root, filepath.Join(dir, "request.json")
}

func TestPluginVolume_SetVolume(t *testing.T) {
	root, requestFile := installVolumePlugin(t)

	m := plugin.NewManager(root)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}
	v := NewPluginVolume(m, plugin.NewExecutor(5*time.Second))

	if err := v.SetVolume(137.5); err != nil {
		t.Fatalf("SetVolume() error = %v", err)
	}

	data, err := os.ReadFile(requestFile)
	if err != nil {
		t.Fatalf("plugin did not run: %v", err)
	}
	var req plugin.Request
	if err := json.Unmarshal(data, &req); err != nil {
		t.Fatal(err)
	}
	if req.Action != "volume-set" || string(req.Params) != `{"level":100}` {
		t.Errorf("plugin got %s %s", req.Action, req.Params)
	}
}

func TestPluginVolume_MissingPlugin(t *testing.T) {
	m := plugin.NewManager(t.TempDir())
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}

	err := NewPluginVolume(m, plugin.NewExecutor(time.Second)).SetVolume(50)
	if !errors.Is(err, plugin.ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestRobotDispatcher_SetVolumeWithoutControl(t *testing.T) {
	if err := NewRobotDispatcher(nil).SetVolume(10); err == nil {
		t.Error("expected error without a volume control")
	}
}

func TestRobotDispatcher_ImplementsDispatcher(t *testing.T) {
	var _ Dispatcher = (*RobotDispatcher)(nil)
	var _ Dispatcher = (*Recorder)(nil)

	rec := &recordingVolume{}
	if err := NewRobotDispatcher(rec).SetVolume(42); err != nil {
		t.Fatalf("SetVolume() error = %v", err)
	}
	if rec.level != 42 {
		t.Errorf("level = %v, want 42", rec.level)
	}
}

type recordingVolume struct{ level float64 }

func (v *recordingVolume) SetVolume(level float64) error {
	v.level = level
	return nil
}
