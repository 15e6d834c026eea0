// Package detector provides hand detection interfaces and types for gesture recognition.
package detector

import (
	"image"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// BoxPadding is the margin in pixels added around a hand's bounding box.
const BoxPadding = 20

// Handedness labels which hand the detector believes it is looking at.
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// Landmark is a single hand keypoint in frame pixel coordinates.
type Landmark struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Hand is one detected hand for a single frame. Landmarks are ordered by ID.
// A hand carries no identity across frames.
type Hand struct {
	Landmarks  []Landmark `json:"landmarks"`
	Handedness Handedness `json:"handedness"`
	Score      float64    `json:"score"`
}

// Complete reports whether the hand carries all 21 landmarks.
func (h *Hand) Complete() bool {
	return h != nil && len(h.Landmarks) >= NumLandmarks
}

// Point returns the landmark at index id, or false if the hand is missing it.
func (h *Hand) Point(id int) (Landmark, bool) {
	if h == nil || id < 0 || id >= len(h.Landmarks) {
		return Landmark{}, false
	}
	return h.Landmarks[id], true
}

// Distance returns the pixel distance between two landmarks.
// The second result is false when either landmark is absent.
func (h *Hand) Distance(a, b int) (float64, bool) {
	p1, ok := h.Point(a)
	if !ok {
		return 0, false
	}
	p2, ok := h.Point(b)
	if !ok {
		return 0, false
	}
	return math.Hypot(p2.X-p1.X, p2.Y-p1.Y), true
}

// BoundingBox returns the min/max extent of the landmarks padded by BoxPadding.
// An empty rectangle is returned for a hand without landmarks.
func (h *Hand) BoundingBox() image.Rectangle {
	if h == nil || len(h.Landmarks) == 0 {
		return image.Rectangle{}
	}

	minX, minY := h.Landmarks[0].X, h.Landmarks[0].Y
	maxX, maxY := minX, minY
	for _, lm := range h.Landmarks[1:] {
		minX = math.Min(minX, lm.X)
		minY = math.Min(minY, lm.Y)
		maxX = math.Max(maxX, lm.X)
		maxY = math.Max(maxY, lm.Y)
	}

	return image.Rect(
		int(minX)-BoxPadding, int(minY)-BoxPadding,
		int(maxX)+BoxPadding, int(maxY)+BoxPadding,
	)
}

// Point3D is a normalized landmark as reported by MediaPipe (0..1 in x and y).
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromNormalized converts normalized MediaPipe points into a pixel-space Hand
// for a frame of the given size. Coordinates are truncated to whole pixels.
func FromNormalized(points []Point3D, handedness Handedness, score float64, width, height int) Hand {
	hand := Hand{
		Landmarks:  make([]Landmark, 0, NumLandmarks),
		Handedness: handedness,
		Score:      score,
	}

	for i := 0; i < NumLandmarks && i < len(points); i++ {
		hand.Landmarks = append(hand.Landmarks, Landmark{
			ID: i,
			X:  float64(int(points[i].X * float64(width))),
			Y:  float64(int(points[i].Y * float64(height))),
		})
	}

	return hand
}
