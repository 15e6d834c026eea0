package tray

import (
	"slices"
	"testing"
)

type switchController struct{ enabled bool }

func (c *switchController) SetEnabled(enabled bool) { c.enabled = enabled }
func (c *switchController) IsEnabled() bool         { return c.enabled }

func TestTray_Toggle(t *testing.T) {
	c := &switchController{enabled: true}
	tr := New(c, "http://127.0.0.1:8080", nil)

	if tr.toggle() || c.enabled {
		t.Error("expected first toggle to disable")
	}
	if !tr.toggle() || !c.enabled {
		t.Error("expected second toggle to enable")
	}
}

func TestTray_ToggleFollowsController(t *testing.T) {
	c := &switchController{enabled: true}
	tr := New(c, "", nil)

	// Disabled elsewhere, e.g. over HTTP.
	c.SetEnabled(false)

	if !tr.toggle() {
		t.Error("expected toggle to re-enable a controller disabled elsewhere")
	}
}

func TestTray_LastGesture(t *testing.T) {
	tr := New(&switchController{}, "", nil)

	tr.SetLastGesture("scroll_up")
	if got := tr.LastGesture(); got != "scroll_up" {
		t.Errorf("LastGesture() = %q", got)
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{toggleTitle(true), "● Enabled"},
		{toggleTitle(false), "○ Disabled"},
		{lastGestureTitle(""), "Last: none"},
		{lastGestureTitle("click"), "Last: click"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"darwin", "open", []string{"http://x"}},
		{"linux", "xdg-open", []string{"http://x"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "http://x"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := browserCommand(tt.goos, "http://x")
			if name != tt.name || !slices.Equal(args, tt.args) {
				t.Errorf("browserCommand() = %s %v", name, args)
			}
		})
	}
}
