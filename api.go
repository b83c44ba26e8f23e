package mandel

// EventKind classifies input events.
type EventKind int

const (
	Closed EventKind = iota
	ButtonPressed
	ButtonReleased
)

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonOther
)

type Event struct {
	Kind   EventKind
	Button Button
}

// EventSource is the input side of a window.
// PollEvents drains every pending event without blocking.
type EventSource interface {
	PollEvents() []Event
	PointerPosition() (x, y int)
}

// Presenter puts a finished frame on a display surface.
type Presenter interface {
	Present(colors ColorGrid) error
}

// Pacer throttles the frame loop. It is called once per cycle.
type Pacer interface {
	Wait()
}
