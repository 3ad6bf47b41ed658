// Package picking turns pointer and touch events into hex cells by casting
// camera rays against placed pieces and the ground pick plane.
package picking

// EventType distinguishes pointer sources. Resolution treats them alike.
type EventType int

const (
	MouseMove EventType = iota
	MouseClick
	TouchStart
	TouchMove
	TouchEnd
)

func (t EventType) String() string {
	switch t {
	case MouseMove:
		return "mousemove"
	case MouseClick:
		return "click"
	case TouchStart:
		return "touchstart"
	case TouchMove:
		return "touchmove"
	case TouchEnd:
		return "touchend"
	}
	return "unknown"
}

// IsTouch reports whether the event came from a touch surface.
func (t EventType) IsTouch() bool {
	return t == TouchStart || t == TouchMove || t == TouchEnd
}

// Touch is one contact point in client coordinates.
type Touch struct {
	ClientX, ClientY float64
}

// Event is a raw pointer event in client coordinates.
type Event struct {
	Type             EventType
	ClientX, ClientY float64
	Touches          []Touch
}

// Point returns the event's screen position: the first touch point when
// touches are present, the mouse position for mouse events, and nothing
// for a touch event without contacts (touch end).
func (e Event) Point() (x, y float64, ok bool) {
	if len(e.Touches) > 0 {
		return e.Touches[0].ClientX, e.Touches[0].ClientY, true
	}
	if e.Type.IsTouch() {
		return 0, 0, false
	}
	return e.ClientX, e.ClientY, true
}
