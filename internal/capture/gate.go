package capture

import "time"

// ActivityGate switches the pipeline between idle and active frame rates.
// It starts idle, turns active on the first activity and falls back to idle
// once no activity has been seen for the timeout.
type ActivityGate struct {
	idleFPS   int
	activeFPS int
	timeout   time.Duration

	active       bool
	lastActivity time.Time
}

// NewActivityGate creates an idle gate.
func NewActivityGate(idleFPS, activeFPS int, timeout time.Duration) *ActivityGate {
	return &ActivityGate{idleFPS: idleFPS, activeFPS: activeFPS, timeout: timeout}
}

// Update records whether anything happened at now and reports the resulting
// mode and whether it changed.
func (g *ActivityGate) Update(activity bool, now time.Time) (active, changed bool) {
	switch {
	case activity:
		g.lastActivity = now
		if !g.active {
			g.active = true
			return true, true
		}
	case g.active && now.Sub(g.lastActivity) >= g.timeout:
		g.active = false
		return false, true
	}
	return g.active, false
}

// Active reports the current mode.
func (g *ActivityGate) Active() bool {
	return g.active
}

// FPS returns the frame rate for the current mode.
func (g *ActivityGate) FPS() int {
	if g.active {
		return g.activeFPS
	}
	return g.idleFPS
}

// Interval returns the frame period for the current mode.
func (g *ActivityGate) Interval() time.Duration {
	fps := g.FPS()
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}
