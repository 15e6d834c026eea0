// Package gesture turns hand landmarks into pointer, click, scroll, volume and
// screenshot events. It holds no package-level state: everything that must
// survive between frames lives in State, which callers pass in and get back.
package gesture

import (
	"github.com/ayusman/vmouse/internal/detector"
)

// Digit indexes a FingerState.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumDigits
)

// DefaultFingerTolerance is the vertical margin in pixels a fingertip must
// clear above its PIP joint to count as raised.
const DefaultFingerTolerance = 20.0

// FingerState records which digits are raised, in the order thumb, index,
// middle, ring, pinky.
type FingerState [NumDigits]bool

// String renders the state as five 0/1 characters, e.g. "01000".
func (f FingerState) String() string {
	b := make([]byte, NumDigits)
	for i, up := range f {
		b[i] = '0'
		if up {
			b[i] = '1'
		}
	}
	return string(b)
}

// fingertips maps index..pinky to their tip landmark.
var fingertips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// ExtractFingers derives the raised/lowered state of each digit from a single
// hand. It reports false when the hand lacks a full set of landmarks, which
// callers treat as "no gesture".
//
// The thumb moves sideways, so it is compared on x against its IP joint and
// the comparison flips with handedness. The other fingers are compared on y
// against the joint two landmarks down; image y grows downward.
func ExtractFingers(hand *detector.Hand, tolerance float64) (FingerState, bool) {
	var fs FingerState
	if !hand.Complete() {
		return fs, false
	}

	lm := hand.Landmarks
	tip, ip := lm[detector.ThumbTip].X, lm[detector.ThumbIP].X
	if hand.Handedness == detector.Left {
		fs[Thumb] = tip > ip
	} else {
		fs[Thumb] = tip < ip
	}

	for i, t := range fingertips {
		fs[Index+i] = lm[t].Y < lm[t-2].Y-tolerance
	}

	return fs, true
}

// Pattern matches finger states. It is five characters in digit order where
// '1' requires the digit raised, '0' lowered and 'x' accepts either.
type Pattern string

// Matches reports whether fs satisfies the pattern. Malformed patterns never match.
func (p Pattern) Matches(fs FingerState) bool {
	if len(p) != NumDigits {
		return false
	}
	for i := 0; i < NumDigits; i++ {
		switch p[i] {
		case 'x':
		case '1':
			if !fs[i] {
				return false
			}
		case '0':
			if fs[i] {
				return false
			}
		default:
			return false
		}
	}
	return true
}
