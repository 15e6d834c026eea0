package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// GaussianBlurSize is the blur kernel edge in pixels.
	GaussianBlurSize = 21
	// DiffThreshold is the per-pixel intensity change counted as motion.
	DiffThreshold = 25
	// DefaultMotionThreshold is the percentage of changed pixels that
	// counts as motion.
	DefaultMotionThreshold = 1.0
)

// MotionDetector reports whether consecutive frames differ enough to be
// worth running hand detection on. Each frame is reduced to a blurred
// grayscale image and compared against the one before it.
//
// Working Mats are created on the first frame and kept until Close, so a
// steady frame size allocates nothing per frame.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64

	baseline gocv.Mat
	size     image.Point
	work     *motionScratch
}

// motionScratch holds the per-frame intermediates.
type motionScratch struct {
	gray, blurred, diff, mask gocv.Mat
}

func newMotionScratch() *motionScratch {
	return &motionScratch{
		gray:    gocv.NewMat(),
		blurred: gocv.NewMat(),
		diff:    gocv.NewMat(),
		mask:    gocv.NewMat(),
	}
}

func (s *motionScratch) close() {
	for _, m := range []*gocv.Mat{&s.gray, &s.blurred, &s.diff, &s.mask} {
		m.Close()
	}
}

// NewMotionDetector creates a MotionDetector. threshold is the percentage of
// pixels that must change; non-positive values select
// DefaultMotionThreshold.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect compares frame with the previous one and returns whether motion
// was seen and the percentage of changed pixels. The first frame, and any
// frame whose size differs from the previous one, only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	if frame == nil || frame.Empty() {
		return false, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.smooth(frame)
	size := image.Pt(current.Cols(), current.Rows())
	if m.baseline.Empty() || size != m.size {
		m.rebase(current, size)
		return false, 0
	}

	pct := m.changed(current)
	m.rebase(current, size)
	return pct > m.threshold, pct
}

// smooth converts frame to blurred grayscale in the scratch buffers.
func (m *MotionDetector) smooth(frame *gocv.Mat) *gocv.Mat {
	if m.work == nil {
		m.work = newMotionScratch()
	}
	src := *frame
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &m.work.gray, gocv.ColorBGRToGray)
		src = m.work.gray
	}
	kernel := image.Pt(GaussianBlurSize, GaussianBlurSize)
	gocv.GaussianBlur(src, &m.work.blurred, kernel, 0, 0, gocv.BorderDefault)
	return &m.work.blurred
}

// changed returns the percentage of pixels of current that moved by more
// than DiffThreshold since the baseline.
func (m *MotionDetector) changed(current *gocv.Mat) float64 {
	gocv.AbsDiff(*current, m.baseline, &m.work.diff)
	gocv.Threshold(m.work.diff, &m.work.mask, DiffThreshold, 255, gocv.ThresholdBinary)

	total := m.size.X * m.size.Y
	if total == 0 {
		return 0
	}
	return 100 * float64(gocv.CountNonZero(m.work.mask)) / float64(total)
}

func (m *MotionDetector) rebase(current *gocv.Mat, size image.Point) {
	current.CopyTo(&m.baseline)
	m.size = size
}

// forget drops the baseline. Callers hold mu.
func (m *MotionDetector) forget() {
	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.size = image.Point{}
}

// Reset drops the baseline so the next frame starts fresh.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forget()
}

// Close releases the baseline and working Mats. The detector stays usable.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forget()
	if m.work != nil {
		m.work.close()
		m.work = nil
	}
}

// SetThreshold changes the changed-pixel percentage. Non-positive values
// are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}
