package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/vmouse/internal/config"
	"github.com/ayusman/vmouse/internal/plugin"
	"github.com/ayusman/vmouse/internal/store"
)

// newTestStore creates a Store backed by a temporary database.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// configService applies settings to an in-memory config.
type configService struct {
	cfg *config.Config
}

func (s *configService) Settings() map[string]string { return s.cfg.Settings() }

func (s *configService) UpdateSettings(values map[string]string) error {
	return s.cfg.ApplySettings(values)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestSettingsHandler_Get(t *testing.T) {
	h := NewSettingsHandler(&configService{cfg: config.Default()})

	rec := do(t, h, http.MethodGet, "/api/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp settingsResponse
	decode(t, rec, &resp)
	if resp.Settings["smoothing"] != "7" {
		t.Errorf("smoothing = %q, want 7", resp.Settings["smoothing"])
	}
	if len(resp.Keys) != len(config.SettingKeys()) {
		t.Errorf("got %d keys, want %d", len(resp.Keys), len(config.SettingKeys()))
	}
}

func TestSettingsHandler_Put(t *testing.T) {
	svc := &configService{cfg: config.Default()}
	h := NewSettingsHandler(svc)

	rec := do(t, h, http.MethodPut, "/api/settings", `{"smoothing": 4, "mirror": false, "click_cooldown": "250ms"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp settingsResponse
	decode(t, rec, &resp)
	if resp.Settings["smoothing"] != "4" || resp.Settings["mirror"] != "false" {
		t.Errorf("unexpected settings: %v", resp.Settings)
	}
	if svc.cfg.Gestures.ClickCooldown != 250*time.Millisecond {
		t.Errorf("ClickCooldown = %v", svc.cfg.Gestures.ClickCooldown)
	}
}

func TestSettingsHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"invalid json", http.MethodPut, `{`, http.StatusBadRequest},
		{"empty object", http.MethodPut, `{}`, http.StatusBadRequest},
		{"nested value", http.MethodPut, `{"smoothing": [1]}`, http.StatusBadRequest},
		{"invalid setting", http.MethodPut, `{"smoothing": 0}`, http.StatusBadRequest},
		{"zero click distance", http.MethodPut, `{"click_distance": 0}`, http.StatusBadRequest},
		{"negative cooldown", http.MethodPut, `{"screenshot_cooldown": "-1s"}`, http.StatusBadRequest},
		{"unknown setting", http.MethodPut, `{"turbo": true}`, http.StatusBadRequest},
		{"wrong method", http.MethodPost, `{}`, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSettingsHandler(&configService{cfg: config.Default()})
			rec := do(t, h, tt.method, "/api/settings", tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func seedEvents(t *testing.T, s *store.Store, kinds ...string) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i, k := range kinds {
		e := &store.Event{Kind: k, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Events().Record(e); err != nil {
			t.Fatalf("failed to record event: %v", err)
		}
	}
}

func TestEventsHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s, "click", "scroll_up", "screenshot")
	h := NewEventsHandler(s.Events())

	rec := do(t, h, http.MethodGet, "/api/events?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp eventsResponse
	decode(t, rec, &resp)
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(resp.Events))
	}
	if resp.Events[0].Kind != "screenshot" {
		t.Errorf("expected newest first, got %s", resp.Events[0].Kind)
	}
}

func TestEventsHandler_ListEmpty(t *testing.T) {
	h := NewEventsHandler(newTestStore(t).Events())

	rec := do(t, h, http.MethodGet, "/api/events", "")
	if !strings.Contains(rec.Body.String(), `"events":[]`) {
		t.Errorf("expected an empty array, got %s", rec.Body.String())
	}
}

func TestEventsHandler_BadLimit(t *testing.T) {
	h := NewEventsHandler(newTestStore(t).Events())

	for _, limit := range []string{"0", "-3", "ten"} {
		rec := do(t, h, http.MethodGet, "/api/events?limit="+limit, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected status %d, got %d", limit, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestEventsHandler_Stats(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s, "click", "click", "volume")
	h := NewEventsHandler(s.Events())

	rec := do(t, h, http.MethodGet, "/api/events/stats", "")
	var resp statsResponse
	decode(t, rec, &resp)

	if resp.Total != 3 || resp.Counts["click"] != 2 || resp.Counts["volume"] != 1 {
		t.Errorf("unexpected stats: %+v", resp)
	}
}

func TestEventsHandler_Prune(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s, "click", "click")
	h := NewEventsHandler(s.Events())

	rec := do(t, h, http.MethodDelete, "/api/events?older_than=2h", "")
	var resp pruneResponse
	decode(t, rec, &resp)
	if resp.Deleted != 0 {
		t.Errorf("expected nothing older than 2h, deleted %d", resp.Deleted)
	}

	rec = do(t, h, http.MethodDelete, "/api/events", "")
	decode(t, rec, &resp)
	if resp.Deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", resp.Deleted)
	}

	rec = do(t, h, http.MethodDelete, "/api/events?older_than=soon", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestEventsHandler_Routing(t *testing.T) {
	h := NewEventsHandler(newTestStore(t).Events())

	if rec := do(t, h, http.MethodPost, "/api/events", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/events/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown path: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

type fakeController struct{ enabled bool }

func (c *fakeController) SetEnabled(enabled bool) { c.enabled = enabled }
func (c *fakeController) IsEnabled() bool         { return c.enabled }

func TestEnabledHandler(t *testing.T) {
	c := &fakeController{enabled: true}
	h := NewEnabledHandler(c)

	rec := do(t, h, http.MethodPut, "/api/enabled", `{"enabled": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if c.enabled {
		t.Error("expected controller to be disabled")
	}

	rec = do(t, h, http.MethodGet, "/api/enabled", "")
	if strings.TrimSpace(rec.Body.String()) != `{"enabled":false}` {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	if rec := do(t, h, http.MethodPut, "/api/enabled", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing field: expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/enabled", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestPluginsHandler(t *testing.T) {
	dir := t.TempDir()
	pdir := filepath.Join(dir, "system-control")
	if err := os.MkdirAll(pdir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name":"system-control","version":"1.0.0","executable":"system-control","actions":["volume-set"]}`
	if err := os.WriteFile(filepath.Join(pdir, plugin.ManifestFile), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	h := NewPluginsHandler(plugin.NewManager(dir))

	var resp listPluginsResponse
	decode(t, do(t, h, http.MethodGet, "/api/plugins", ""), &resp)
	if len(resp.Plugins) != 0 {
		t.Errorf("expected no plugins before discovery, got %d", len(resp.Plugins))
	}

	decode(t, do(t, h, http.MethodPost, "/api/plugins", ""), &resp)
	if len(resp.Plugins) != 1 || resp.Plugins[0].Name != "system-control" {
		t.Fatalf("unexpected plugins: %+v", resp.Plugins)
	}
	if resp.Plugins[0].Actions[0] != "volume-set" {
		t.Errorf("actions = %v", resp.Plugins[0].Actions)
	}
}
