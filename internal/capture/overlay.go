package capture

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/vmouse/internal/detector"
)

var (
	marginColor   = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	boxColor      = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	boneColor     = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	landmarkColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	tipColor      = color.RGBA{R: 0, G: 255, B: 255, A: 0}
	labelColor    = color.RGBA{R: 255, G: 255, B: 0, A: 0}
)

// HandConnections are the landmark pairs drawn as the hand skeleton.
var HandConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

// Overlay is what gets drawn on a preview frame.
type Overlay struct {
	// Margin is the inset of the active area rectangle; zero hides it.
	Margin int
	Hands  []detector.Hand
	Label  string
}

// Draw renders o onto img in place.
func (o Overlay) Draw(img *gocv.Mat) {
	if img == nil || img.Empty() {
		return
	}

	if o.Margin > 0 {
		area := image.Rect(o.Margin, o.Margin, img.Cols()-o.Margin, img.Rows()-o.Margin)
		gocv.Rectangle(img, area, marginColor, 2)
	}

	for i := range o.Hands {
		drawHand(img, &o.Hands[i])
	}

	if o.Label != "" {
		gocv.PutText(img, o.Label, image.Pt(10, 30), gocv.FontHersheySimplex, 0.9, labelColor, 2)
	}
}

func drawHand(img *gocv.Mat, h *detector.Hand) {
	for _, c := range HandConnections {
		a, okA := h.Point(c[0])
		b, okB := h.Point(c[1])
		if okA && okB {
			gocv.Line(img, pt(a), pt(b), boneColor, 2)
		}
	}

	for _, lm := range h.Landmarks {
		c := landmarkColor
		if isTip(lm.ID) {
			c = tipColor
		}
		gocv.Circle(img, pt(lm), 4, c, -1)
	}

	if h.Complete() {
		gocv.Rectangle(img, h.BoundingBox(), boxColor, 2)
	}
}

func isTip(id int) bool {
	switch id {
	case detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip:
		return true
	}
	return false
}

func pt(lm detector.Landmark) image.Point {
	return image.Pt(int(lm.X), int(lm.Y))
}

// EncodeJPEG encodes img and returns a Go-owned copy of the bytes.
func EncodeJPEG(img *gocv.Mat) ([]byte, error) {
	if img == nil || img.Empty() {
		return nil, ErrEmptyFrame
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *img)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}
