package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []Hand
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Synthetic hand geometry, in pixels of a 640x480 frame.
const (
	synthWristX   = 320
	synthWristY   = 400
	synthMCPY     = 330
	synthPIPY     = 290
	synthThumbIPX = 250
	synthThumbY   = 340
)

// synthFingerX holds the column of each finger from index to pinky.
var synthFingerX = [4]float64{350, 320, 290, 260}

// SyntheticHand builds a complete 21-landmark hand whose digits are raised
// according to up, in the order thumb, index, middle, ring, pinky.
// Raised fingertips sit 70 px above their PIP joint, lowered ones 30 px below.
func SyntheticHand(up [5]bool, handedness Handedness) Hand {
	hand := Hand{
		Landmarks:  make([]Landmark, NumLandmarks),
		Handedness: handedness,
		Score:      0.95,
	}
	for i := range hand.Landmarks {
		hand.Landmarks[i].ID = i
	}

	set := func(id int, x, y float64) {
		hand.Landmarks[id].X = x
		hand.Landmarks[id].Y = y
	}

	set(Wrist, synthWristX, synthWristY)

	// Thumb extends laterally; which side counts as "out" depends on handedness.
	out := -30.0
	if handedness == Left {
		out = 30.0
	}
	tipX := synthThumbIPX - out
	if up[0] {
		tipX = synthThumbIPX + out
	}
	set(ThumbCMC, synthThumbIPX+40, synthThumbY+30)
	set(ThumbMCP, synthThumbIPX+20, synthThumbY+15)
	set(ThumbIP, synthThumbIPX, synthThumbY)
	set(ThumbTip, tipX, synthThumbY-10)

	for f := 0; f < 4; f++ {
		mcp := IndexMCP + f*4
		x := synthFingerX[f]

		set(mcp, x, synthMCPY)
		set(mcp+1, x, synthPIPY)
		if up[f+1] {
			set(mcp+2, x, synthPIPY-40)
			set(mcp+3, x, synthPIPY-70)
		} else {
			set(mcp+2, x, synthPIPY+20)
			set(mcp+3, x, synthPIPY+30)
		}
	}

	return hand
}

// PointingHand returns a right hand with only the index finger raised.
func PointingHand() Hand {
	return SyntheticHand([5]bool{false, true, false, false, false}, Right)
}

// OpenPalmHand returns a right hand with every digit raised.
func OpenPalmHand() Hand {
	return SyntheticHand([5]bool{true, true, true, true, true}, Right)
}

// FistHand returns a right hand with every digit lowered.
func FistHand() Hand {
	return SyntheticHand([5]bool{}, Right)
}
