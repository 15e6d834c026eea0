package gesture

// Kind identifies a recognized action.
type Kind string

const (
	None        Kind = "none"
	Move        Kind = "move"
	Click       Kind = "click"
	RightClick  Kind = "right_click"
	DoubleClick Kind = "double_click"
	Volume      Kind = "volume"
	Screenshot  Kind = "screenshot"
	ScrollUp    Kind = "scroll_up"
	ScrollDown  Kind = "scroll_down"
	DragStart   Kind = "drag_start"
	DragMove    Kind = "drag_move"
	DragEnd     Kind = "drag_end"
)

// Event is one action for the dispatcher.
//
// For Move, DragStart and DragMove the classifier fills Target with the
// fingertip in frame pixels; the Recognizer replaces it with the smoothed
// screen position ready to dispatch.
type Event struct {
	Kind     Kind    `json:"kind"`
	Rule     string  `json:"rule,omitempty"`
	Target   Point   `json:"target,omitzero"`
	Distance float64 `json:"distance,omitempty"`
	Level    float64 `json:"level,omitempty"`
	Amount   int     `json:"amount,omitempty"`
}

// Pointer reports whether the event carries a cursor target.
func (e Event) Pointer() bool {
	return e.Kind == Move || e.Kind == DragStart || e.Kind == DragMove
}
