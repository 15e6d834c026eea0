package gesture

// DefaultSmoothing is the damping factor applied to cursor motion.
const DefaultSmoothing = 7

// DefaultFrameMargin is the border in pixels excluded from the camera frame
// before mapping to the screen, so the screen edges are reachable without
// the hand leaving the frame.
const DefaultFrameMargin = 100

// Point is a 2D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Smoother is a single-pole low-pass filter for cursor positions.
// Higher factors are smoother but lag more.
type Smoother struct {
	Factor int
}

// Next moves prev a 1/Factor step toward raw on each axis.
// Factors below 1 disable smoothing.
func (s Smoother) Next(prev, raw Point) Point {
	f := float64(s.Factor)
	if f < 1 {
		f = 1
	}
	return Point{
		X: prev.X + (raw.X-prev.X)/f,
		Y: prev.Y + (raw.Y-prev.Y)/f,
	}
}

// ScreenMapper maps camera pixels to screen pixels. The interior of the
// frame, Margin pixels in from every side, is stretched to the full screen.
type ScreenMapper struct {
	FrameWidth   int
	FrameHeight  int
	Margin       int
	ScreenWidth  int
	ScreenHeight int
}

// ToScreen maps a frame position onto the screen, clamping positions in the
// margin to the screen edge.
func (m ScreenMapper) ToScreen(p Point) Point {
	mg := float64(m.Margin)
	return Point{
		X: interp(p.X, mg, float64(m.FrameWidth)-mg, 0, float64(m.ScreenWidth)),
		Y: interp(p.Y, mg, float64(m.FrameHeight)-mg, 0, float64(m.ScreenHeight)),
	}
}

// Mirror flips x across the screen's vertical axis. The camera sees the
// user mirrored, so this makes the cursor follow the hand.
func (m ScreenMapper) Mirror(p Point) Point {
	return Point{X: float64(m.ScreenWidth) - p.X, Y: p.Y}
}

// interp maps x from [x0,x1] onto [y0,y1], clamping to the output range.
func interp(x, x0, x1, y0, y1 float64) float64 {
	if x1 <= x0 {
		return y0
	}
	if x <= x0 {
		return y0
	}
	if x >= x1 {
		return y1
	}
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}
