package engine

// EventKind identifies a control event of the engine queue
type EventKind uint8

const (
	EventInitialize EventKind = iota
	EventFinalize
	EventStart
	EventStop
	EventSetOutputTarget
)

func (k EventKind) String() string {
	switch k {
	case EventInitialize:
		return "Initialize"
	case EventFinalize:
		return "Finalize"
	case EventStart:
		return "Start"
	case EventStop:
		return "Stop"
	case EventSetOutputTarget:
		return "SetOutputTarget"
	default:
		return "Unknown"
	}
}

// Event is a queued control event.
// The payload is owned by the engine goroutine once enqueued.
type Event struct {
	Kind    EventKind
	Payload any
}

// InitParams is the payload of EventInitialize
type InitParams struct {
	// AssetsDir is the directory handed to the asset manager
	AssetsDir string
}
