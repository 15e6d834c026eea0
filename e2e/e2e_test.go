package e2e

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/vmouse/internal/action"
	"github.com/ayusman/vmouse/internal/app"
	"github.com/ayusman/vmouse/internal/capture"
	"github.com/ayusman/vmouse/internal/config"
	"github.com/ayusman/vmouse/internal/detector"
	"github.com/ayusman/vmouse/internal/server"
	"github.com/ayusman/vmouse/internal/store"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func put(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewBufferString(body))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT %s error = %v", url, err)
	}
	return resp
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	st, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	settings := config.Default()
	settings.Paths.DataDir = tmpDir
	settings.Paths.ScreenshotDir = filepath.Join(tmpDir, "screenshots")

	black := capture.SolidFrame(640, 480, 0)
	white := capture.SolidFrame(640, 480, 255)
	defer black.Close()
	defer white.Close()
	camera := capture.NewMockCamera([]*gocv.Mat{black, white}, true)

	mockDetector := detector.NewMockDetector()
	recorder := action.NewRecorder()
	hub := server.NewHub(nil)

	application, err := app.New(app.Config{
		Settings:     settings,
		Store:        st,
		Camera:       camera,
		Detector:     mockDetector,
		Dispatcher:   recorder,
		Publisher:    hub,
		ScreenWidth:  1920,
		ScreenHeight: 1080,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	if err := application.LoadSettings(); err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	srv := server.New(server.Config{
		Settings: application,
		Control:  application,
		Status:   application,
		Events:   st.Events(),
		Preview:  application,
		Hub:      hub,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	if err := application.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer application.Stop()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/landmarks", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitFor(t, "websocket client", func() bool { return hub.Clients() == 1 })

	scrollUp := detector.SyntheticHand([5]bool{false, true, true, true, true}, detector.Right)

	t.Run("ScrollGesture", func(t *testing.T) {
		mockDetector.SetHands([]detector.Hand{scrollUp})

		waitFor(t, "scroll dispatch", func() bool {
			return slices.Contains(recorder.Calls(), "scroll 30")
		})
	})

	t.Run("LiveFeed", func(t *testing.T) {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		for {
			var snap app.Snapshot
			if err := conn.ReadJSON(&snap); err != nil {
				t.Fatalf("ReadJSON() error = %v", err)
			}
			if snap.Fingers == "01111" && len(snap.Hands) == 1 {
				if snap.Gesture != "scroll_up" {
					t.Errorf("gesture = %s, want scroll_up", snap.Gesture)
				}
				return
			}
		}
	})

	t.Run("EventHistory", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/events?limit=5")
		if err != nil {
			t.Fatalf("GET /api/events error = %v", err)
		}
		defer resp.Body.Close()

		var listed struct {
			Events []store.Event `json:"events"`
		}
		json.NewDecoder(resp.Body).Decode(&listed)
		if len(listed.Events) == 0 || listed.Events[0].Kind != "scroll_up" || listed.Events[0].Amount != 30 {
			t.Errorf("unexpected events %+v", listed.Events)
		}
	})

	t.Run("LiveSettings", func(t *testing.T) {
		resp := put(t, client, ts.URL+"/api/settings", `{"scroll_amount": 60}`)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("PUT /api/settings status = %d", resp.StatusCode)
		}

		waitFor(t, "new scroll amount", func() bool {
			return slices.Contains(recorder.Calls(), "scroll 60")
		})

		stored, err := st.Settings().Get("scroll_amount")
		if err != nil || stored != "60" {
			t.Errorf("stored scroll_amount = %q, %v", stored, err)
		}
	})

	t.Run("Preview", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/stream")
		if err != nil {
			t.Fatalf("GET /api/stream error = %v", err)
		}
		defer resp.Body.Close()

		part, err := multipart.NewReader(resp.Body, "frame").NextPart()
		if err != nil {
			t.Fatalf("NextPart() error = %v", err)
		}
		if part.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("part Content-Type = %q", part.Header.Get("Content-Type"))
		}
	})

	t.Run("Disable", func(t *testing.T) {
		resp := put(t, client, ts.URL+"/api/enabled", `{"enabled": false}`)
		resp.Body.Close()
		if application.IsEnabled() {
			t.Fatal("expected gesture control disabled")
		}

		// Let the in-flight frame finish before sampling.
		time.Sleep(100 * time.Millisecond)
		calls := mockDetector.Calls()
		time.Sleep(200 * time.Millisecond)
		if got := mockDetector.Calls(); got != calls {
			t.Errorf("detector ran %d more times while disabled", got-calls)
		}
	})

	t.Run("Health", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		defer resp.Body.Close()

		var health struct {
			Running     bool   `json:"running"`
			Enabled     bool   `json:"enabled"`
			LastGesture string `json:"last_gesture"`
		}
		json.NewDecoder(resp.Body).Decode(&health)
		if !health.Running || health.Enabled || health.LastGesture != "scroll_up" {
			t.Errorf("unexpected health %+v", health)
		}
	})
}
