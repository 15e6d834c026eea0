package gesture

import (
	"github.com/ayusman/vmouse/internal/detector"
)

// Category groups rules so a whole family of gestures can be switched off.
type Category string

const (
	CategoryMove        Category = "move"
	CategoryClick       Category = "click"
	CategoryVolume      Category = "volume"
	CategoryScreenshot  Category = "screenshot"
	CategoryScroll      Category = "scroll"
	CategoryRightClick  Category = "right_click"
	CategoryDoubleClick Category = "double_click"
	CategoryDrag        Category = "drag"
)

// Categories lists every gesture category.
var Categories = []Category{
	CategoryMove,
	CategoryClick,
	CategoryVolume,
	CategoryScreenshot,
	CategoryScroll,
	CategoryRightClick,
	CategoryDoubleClick,
	CategoryDrag,
}

// Default pixel thresholds. They depend on camera resolution and the
// user's distance from the camera and are deliberately not normalized.
const (
	DefaultClickDistance     = 40.0
	DefaultVolumeMinDistance = 30.0
	DefaultVolumeMaxDistance = 200.0
	DefaultScrollAmount      = 30
)

// Thresholds holds the tunable distances used by the rules.
type Thresholds struct {
	FingerTolerance   float64
	ClickDistance     float64
	VolumeMinDistance float64
	VolumeMaxDistance float64
	MinVolume         float64
	MaxVolume         float64
}

// DefaultThresholds returns the stock thresholds with a 0..100 volume range.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FingerTolerance:   DefaultFingerTolerance,
		ClickDistance:     DefaultClickDistance,
		VolumeMinDistance: DefaultVolumeMinDistance,
		VolumeMaxDistance: DefaultVolumeMaxDistance,
		MinVolume:         0,
		MaxVolume:         100,
	}
}

// Input is everything a rule may look at for one frame.
type Input struct {
	Fingers      FingerState
	Hand         *detector.Hand
	Dragging     bool
	Thresholds   Thresholds
	ScrollAmount int
}

// Rule maps a finger pattern to an event. Fire runs only when Pattern
// matches and may still decline the frame by returning false.
type Rule struct {
	Name     string
	Category Category
	Pattern  Pattern
	Fire     func(in *Input) (Event, bool)
}

// DefaultRules returns the gesture table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "move", Category: CategoryMove, Pattern: "01000", Fire: fireAt(Move, detector.IndexTip)},
		{Name: "click", Category: CategoryClick, Pattern: "x1100", Fire: fireClick},
		{Name: "volume", Category: CategoryVolume, Pattern: "110xx", Fire: fireVolume},
		{Name: "screenshot", Category: CategoryScreenshot, Pattern: "00000", Fire: fire(Screenshot)},
		{Name: "scroll-up", Category: CategoryScroll, Pattern: "01111", Fire: fireScroll(ScrollUp, 1)},
		{Name: "scroll-down", Category: CategoryScroll, Pattern: "11111", Fire: fireScroll(ScrollDown, -1)},
		{Name: "right-click", Category: CategoryRightClick, Pattern: "00011", Fire: fire(RightClick)},
		{Name: "double-click", Category: CategoryDoubleClick, Pattern: "00001", Fire: fire(DoubleClick)},
		{Name: "drag", Category: CategoryDrag, Pattern: "00111", Fire: fireDrag},
		{Name: "drag-end", Category: CategoryDrag, Pattern: "xxxxx", Fire: fireDragEnd},
	}
}

func fire(kind Kind) func(*Input) (Event, bool) {
	return func(*Input) (Event, bool) {
		return Event{Kind: kind}, true
	}
}

func fireAt(kind Kind, landmark int) func(*Input) (Event, bool) {
	return func(in *Input) (Event, bool) {
		p, ok := in.Hand.Point(landmark)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: kind, Target: Point{X: p.X, Y: p.Y}}, true
	}
}

func fireClick(in *Input) (Event, bool) {
	d, ok := in.Hand.Distance(detector.IndexTip, detector.MiddleTip)
	if !ok || d >= in.Thresholds.ClickDistance {
		return Event{}, false
	}
	return Event{Kind: Click, Distance: d}, true
}

func fireVolume(in *Input) (Event, bool) {
	d, ok := in.Hand.Distance(detector.ThumbTip, detector.IndexTip)
	if !ok {
		return Event{}, false
	}
	t := in.Thresholds
	level := interp(d, t.VolumeMinDistance, t.VolumeMaxDistance, t.MinVolume, t.MaxVolume)
	return Event{Kind: Volume, Distance: d, Level: level}, true
}

func fireScroll(kind Kind, sign int) func(*Input) (Event, bool) {
	return func(in *Input) (Event, bool) {
		return Event{Kind: kind, Amount: sign * in.ScrollAmount}, true
	}
}

func fireDrag(in *Input) (Event, bool) {
	kind := DragStart
	if in.Dragging {
		kind = DragMove
	}
	return fireAt(kind, detector.MiddleTip)(in)
}

func fireDragEnd(in *Input) (Event, bool) {
	if !in.Dragging {
		return Event{}, false
	}
	return Event{Kind: DragEnd}, true
}

// Classifier evaluates rules in order and returns the first that fires.
type Classifier struct {
	rules    []Rule
	disabled map[Category]bool
}

// NewClassifier creates a classifier over rules. Rules whose category is
// set in disabled are skipped.
func NewClassifier(rules []Rule, disabled map[Category]bool) *Classifier {
	return &Classifier{
		rules:    rules,
		disabled: disabled,
	}
}

// Rules returns the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify returns the event of the first matching rule, or a None event.
func (c *Classifier) Classify(in Input) Event {
	for _, r := range c.rules {
		if c.disabled[r.Category] || !r.Pattern.Matches(in.Fingers) {
			continue
		}
		if ev, ok := r.Fire(&in); ok {
			ev.Rule = r.Name
			return ev
		}
	}
	return Event{Kind: None}
}
