package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/vmouse/internal/config"
	"github.com/ayusman/vmouse/internal/store"
)

func TestSettingsURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"127.0.0.1:8080", "http://127.0.0.1:8080/"},
		{":9000", "http://localhost:9000/"},
		{"0.0.0.0:80", "http://localhost:80/"},
		{"[::1]:8080", "http://[::1]:8080/"},
		{"example", "http://example/"},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := settingsURL(tt.addr); got != tt.want {
				t.Errorf("settingsURL(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestApplyRunFlags(t *testing.T) {
	defer func() { flagAddr, flagCamera, flagNoTray = "", -1, false }()

	cfg := config.Default()
	applyRunFlags(cfg)
	if cfg.Server.Addr != "127.0.0.1:8080" || cfg.Camera.Device != 0 || !cfg.Tray {
		t.Errorf("unset flags changed config: %+v", cfg.Server)
	}

	flagAddr, flagCamera, flagNoTray = ":9999", 2, true
	applyRunFlags(cfg)
	if cfg.Server.Addr != ":9999" || cfg.Camera.Device != 2 || cfg.Tray {
		t.Errorf("flags not applied: addr=%s device=%d tray=%v", cfg.Server.Addr, cfg.Camera.Device, cfg.Tray)
	}
}

func TestPrintEvents(t *testing.T) {
	var buf bytes.Buffer
	events := []*store.Event{
		{Kind: "volume", Fingers: "11000", Level: 42, CreatedAt: time.Now()},
		{Kind: "scroll_down", Fingers: "11111", Amount: -30, CreatedAt: time.Now()},
	}

	if err := printEvents(&buf, events); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"GESTURE", "volume", "level 42%", "scroll_down", "amount -30"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printEvents(&buf, nil)
	if !strings.Contains(buf.String(), "No events") {
		t.Errorf("unexpected empty output %q", buf.String())
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	if err := printStats(&buf, map[string]int{"click": 3, "anchor": 1}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, two kinds and total, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[1], "anchor") || !strings.HasPrefix(lines[3], "total") || !strings.HasSuffix(lines[3], "4") {
		t.Errorf("unexpected stats:\n%s", buf.String())
	}
}

func writeConfig(t *testing.T, dataDir string) string {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = dataDir

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dataDir, "config.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigCommand_OverlaysStoredSettings(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir)

	st, err := store.New(filepath.Join(dir, "vmouse.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Settings().SetAll(map[string]string{"smoothing": "2", "bogus": "x"}); err != nil {
		t.Fatal(err)
	}
	st.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "--config", path})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got config.Config
	if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out.String())
	}
	if got.Gestures.Smoothing != 2 {
		t.Errorf("smoothing = %d, want stored value 2", got.Gestures.Smoothing)
	}
	if got.Paths.DataDir != dir {
		t.Errorf("data_dir = %q, want %q", got.Paths.DataDir, dir)
	}
}

func TestEventsCommand_RequiresDatabase(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir)

	rootCmd.SetArgs([]string{"events", "--config", path})
	rootCmd.SetErr(&bytes.Buffer{})
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
		cfgFile = ""
	}()

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "no database") {
		t.Errorf("expected a missing database error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "vmouse.db")); statErr == nil {
		t.Error("events should not create a database")
	}
}

func TestEventsCommand_Lists(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir)

	st, err := store.New(filepath.Join(dir, "vmouse.db"))
	if err != nil {
		t.Fatal(err)
	}
	st.Events().Record(&store.Event{Kind: "screenshot", Fingers: "00000"})
	st.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"events", "--config", path, "-n", "5"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
	}()

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "screenshot") {
		t.Errorf("expected the screenshot event, got:\n%s", out.String())
	}
}
