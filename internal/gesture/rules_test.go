package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/vmouse/internal/detector"
)

// fs builds a FingerState from a "01000"-style string.
func fs(s string) FingerState {
	var f FingerState
	for i := 0; i < NumDigits && i < len(s); i++ {
		f[i] = s[i] == '1'
	}
	return f
}

func classify(t *testing.T, c *Classifier, fingers string, dragging bool) Event {
	t.Helper()
	hand := detector.SyntheticHand(fs(fingers), detector.Right)
	return c.Classify(Input{
		Fingers:      fs(fingers),
		Hand:         &hand,
		Dragging:     dragging,
		Thresholds:   DefaultThresholds(),
		ScrollAmount: DefaultScrollAmount,
	})
}

func TestClassifier_RuleTable(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil)

	tests := []struct {
		fingers string
		want    Kind
		rule    string
	}{
		{"01000", Move, "move"},
		{"01100", Click, "click"},
		{"11100", Click, "click"},
		{"11000", Volume, "volume"},
		{"11011", Volume, "volume"},
		{"00000", Screenshot, "screenshot"},
		{"01111", ScrollUp, "scroll-up"},
		{"11111", ScrollDown, "scroll-down"},
		{"00011", RightClick, "right-click"},
		{"00001", DoubleClick, "double-click"},
		{"00111", DragStart, "drag"},
		{"10000", None, ""},
		{"00100", None, ""},
		{"10001", None, ""},
	}

	for _, tt := range tests {
		t.Run(tt.fingers, func(t *testing.T) {
			ev := classify(t, c, tt.fingers, false)
			if ev.Kind != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.fingers, ev.Kind, tt.want)
			}
			if ev.Rule != tt.rule {
				t.Errorf("rule = %q, want %q", ev.Rule, tt.rule)
			}
		})
	}
}

func TestClassifier_FirstMatchWins(t *testing.T) {
	// A catch-all appended after the stock table must never shadow an
	// earlier rule.
	rules := append(DefaultRules(), Rule{
		Name:     "catch-all",
		Category: "test",
		Pattern:  "xxxxx",
		Fire:     fire(Click),
	})
	c := NewClassifier(rules, nil)

	if ev := classify(t, c, "00011", false); ev.Kind != RightClick {
		t.Errorf("expected right click to win, got %s from %q", ev.Kind, ev.Rule)
	}
	if ev := classify(t, c, "10000", false); ev.Rule != "catch-all" {
		t.Errorf("expected catch-all to pick up unmatched state, got %q", ev.Rule)
	}
}

func TestClassifier_Pure(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil)

	for _, fingers := range []string{"01000", "01100", "11000", "01111", "11111", "00111"} {
		first := classify(t, c, fingers, false)
		second := classify(t, c, fingers, false)
		if first != second {
			t.Errorf("%s: classification changed between calls: %+v vs %+v", fingers, first, second)
		}
	}
}

func TestClassifier_Move(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil)
	hand := detector.PointingHand()

	ev := c.Classify(Input{Fingers: fs("01000"), Hand: &hand, Thresholds: DefaultThresholds()})

	tip := hand.Landmarks[detector.IndexTip]
	if ev.Target.X != tip.X || ev.Target.Y != tip.Y {
		t.Errorf("expected target at index tip (%v,%v), got %+v", tip.X, tip.Y, ev.Target)
	}
}

func TestClassifier_ClickDistance(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil)

	tests := []struct {
		name   string
		spread float64
		want   Kind
	}{
		{name: "fingers together", spread: 10, want: Click},
		{name: "just inside", spread: 39.9, want: Click},
		{name: "at threshold", spread: 40, want: None},
		{name: "spread apart", spread: 80, want: None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := detector.SyntheticHand(fs("01100"), detector.Right)
			middle := hand.Landmarks[detector.MiddleTip]
			hand.Landmarks[detector.IndexTip].X = middle.X + tt.spread
			hand.Landmarks[detector.IndexTip].Y = middle.Y

			ev := c.Classify(Input{Fingers: fs("01100"), Hand: &hand, Thresholds: DefaultThresholds()})
			if ev.Kind != tt.want {
				t.Errorf("Classify() = %s, want %s", ev.Kind, tt.want)
			}
		})
	}
}

func TestClassifier_VolumeLevel(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil)

	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{name: "pinched", distance: 10, want: 0},
		{name: "at minimum", distance: 30, want: 0},
		{name: "midway", distance: 115, want: 50},
		{name: "at maximum", distance: 200, want: 100},
		{name: "beyond maximum", distance: 260, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := detector.SyntheticHand(fs("11000"), detector.Right)
			index := hand.Landmarks[detector.IndexTip]
			hand.Landmarks[detector.ThumbTip].X = index.X - tt.distance
			hand.Landmarks[detector.ThumbTip].Y = index.Y

			ev := c.Classify(Input{Fingers: fs("11000"), Hand: &hand, Thresholds: DefaultThresholds()})
			if ev.Kind != Volume {
				t.Fatalf("expected volume, got %s", ev.Kind)
			}
			if math.Abs(ev.Distance-tt.distance) > 1e-9 {
				t.Errorf("distance = %f, want %f", ev.Distance, tt.distance)
			}
			if math.Abs(ev.Level-tt.want) > 1e-9 {
				t.Errorf("level = %f, want %f", ev.Level, tt.want)
			}
		})
	}
}

func TestClassifier_Scroll(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil)

	if ev := classify(t, c, "01111", false); ev.Amount != DefaultScrollAmount {
		t.Errorf("scroll up amount = %d, want %d", ev.Amount, DefaultScrollAmount)
	}
	if ev := classify(t, c, "11111", false); ev.Amount != -DefaultScrollAmount {
		t.Errorf("scroll down amount = %d, want %d", ev.Amount, -DefaultScrollAmount)
	}
}

func TestClassifier_Drag(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil)

	if ev := classify(t, c, "00111", false); ev.Kind != DragStart {
		t.Errorf("expected drag start when not dragging, got %s", ev.Kind)
	}
	if ev := classify(t, c, "00111", true); ev.Kind != DragMove {
		t.Errorf("expected drag move while dragging, got %s", ev.Kind)
	}
	if ev := classify(t, c, "10000", true); ev.Kind != DragEnd {
		t.Errorf("expected drag end for unmatched state while dragging, got %s", ev.Kind)
	}
	if ev := classify(t, c, "10000", false); ev.Kind != None {
		t.Errorf("expected none for unmatched state when idle, got %s", ev.Kind)
	}
}

func TestClassifier_DisabledCategories(t *testing.T) {
	c := NewClassifier(DefaultRules(), map[Category]bool{
		CategoryMove:   true,
		CategoryScroll: true,
	})

	if ev := classify(t, c, "01000", false); ev.Kind != None {
		t.Errorf("expected move to be skipped, got %s", ev.Kind)
	}
	if ev := classify(t, c, "11111", false); ev.Kind != None {
		t.Errorf("expected scroll to be skipped, got %s", ev.Kind)
	}
	if ev := classify(t, c, "00000", false); ev.Kind != Screenshot {
		t.Errorf("expected screenshot to stay enabled, got %s", ev.Kind)
	}
}

func TestClassifier_PartialHand(t *testing.T) {
	c := NewClassifier(DefaultRules(), nil)
	hand := detector.Hand{Landmarks: []detector.Landmark{{ID: 0}}}

	ev := c.Classify(Input{Fingers: fs("01000"), Hand: &hand, Thresholds: DefaultThresholds()})
	if ev.Kind != None {
		t.Errorf("expected none when the target landmark is missing, got %s", ev.Kind)
	}
}
