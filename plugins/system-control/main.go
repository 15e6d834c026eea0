// Command system-control is the vmouse volume plugin. It reads one JSON
// request on stdin and drives the output mixer with osascript on macOS or
// pactl on Linux.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

type request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type volumeParams struct {
	Level float64 `json:"level"`
}

// mixer abstracts the platform volume command.
type mixer interface {
	set(level int) error
	step(delta int) error
	toggleMute() error
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		reply(fmt.Errorf("decode request: %w", err))
		return
	}

	m, err := platformMixer()
	if err != nil {
		reply(err)
		return
	}
	reply(handle(m, req))
}

func handle(m mixer, req request) error {
	switch req.Action {
	case "volume-set":
		var p volumeParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return fmt.Errorf("decode params: %w", err)
			}
		}
		return m.set(clampLevel(p.Level))
	case "volume-up":
		return m.step(10)
	case "volume-down":
		return m.step(-10)
	case "volume-mute":
		return m.toggleMute()
	default:
		return fmt.Errorf("unknown action: %s", req.Action)
	}
}

func clampLevel(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(v + 0.5)
}

func reply(err error) {
	resp := response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func platformMixer() (mixer, error) {
	switch runtime.GOOS {
	case "darwin":
		return appleScript{}, nil
	case "linux":
		return pulse{}, nil
	default:
		return nil, fmt.Errorf("volume control not supported on %s", runtime.GOOS)
	}
}

func run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

type appleScript struct{}

func (appleScript) set(level int) error {
	return run("osascript", "-e", "set volume output volume "+strconv.Itoa(level))
}

func (appleScript) step(delta int) error {
	script := fmt.Sprintf("set volume output volume ((output volume of (get volume settings)) + %d)", delta)
	return run("osascript", "-e", script)
}

func (appleScript) toggleMute() error {
	return run("osascript", "-e", "set volume output muted (not (output muted of (get volume settings)))")
}

type pulse struct{}

const sink = "@DEFAULT_SINK@"

func (pulse) set(level int) error {
	return run("pactl", "set-sink-volume", sink, strconv.Itoa(level)+"%")
}

func (pulse) step(delta int) error {
	return run("pactl", "set-sink-volume", sink, fmt.Sprintf("%+d%%", delta))
}

func (pulse) toggleMute() error {
	return run("pactl", "set-sink-mute", sink, "toggle")
}
