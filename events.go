package tumble

import (
	"math"

	"github.com/akmonengine/tumble/actor"
	"github.com/akmonengine/tumble/constraint"
)

const (
	CONTACT_ENTER EventType = iota
	CONTACT_STAY
	CONTACT_EXIT
	ON_SLEEP
	ON_WAKE
)

const facesCount = 6

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Contact events, one per wall face
type ContactEnterEvent struct {
	Face    constraint.Face
	Contact constraint.Contact
}

func (e ContactEnterEvent) Type() EventType { return CONTACT_ENTER }

type ContactStayEvent struct {
	Face    constraint.Face
	Contact constraint.Contact
}

func (e ContactStayEvent) Type() EventType { return CONTACT_STAY }

type ContactExitEvent struct {
	Face constraint.Face
}

func (e ContactExitEvent) Type() EventType { return CONTACT_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Face tracking for Enter/Stay/Exit detection, the deepest contact of the step is kept
	previousFaces [facesCount]bool
	currentFaces  [facesCount]bool
	contacts      [facesCount]constraint.Contact

	sleepTracked bool
	wasSleeping  bool
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 16),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContacts is called during substeps with the resolved contacts
func (e *Events) recordContacts(contacts []constraint.Contact) {
	for _, c := range contacts {
		face := c.Face()
		if !e.currentFaces[face] || math.Abs(c.Depth) > math.Abs(e.contacts[face].Depth) {
			e.contacts[face] = c
		}
		e.currentFaces[face] = true
	}
}

// processContactEvents compares current and previous faces to detect Enter/Stay/Exit
// Should be called after all substeps
func (e *Events) processContactEvents(body *actor.RigidBody) {
	// A sleeping body is not stepped, its contacts are unchanged
	if body.IsSleeping {
		e.currentFaces = [facesCount]bool{}
		return
	}

	for face := range constraint.Face(facesCount) {
		switch {
		case e.currentFaces[face] && e.previousFaces[face]:
			e.buffer = append(e.buffer, ContactStayEvent{Face: face, Contact: e.contacts[face]})
		case e.currentFaces[face]:
			e.buffer = append(e.buffer, ContactEnterEvent{Face: face, Contact: e.contacts[face]})
		case e.previousFaces[face]:
			e.buffer = append(e.buffer, ContactExitEvent{Face: face})
		}
	}

	// Swap for next step and clear current
	e.previousFaces = e.currentFaces
	e.currentFaces = [facesCount]bool{}
}

func (e *Events) processSleepEvents(body *actor.RigidBody) {
	if !e.sleepTracked {
		e.sleepTracked = true
		e.wasSleeping = body.IsSleeping
		return
	}

	if !e.wasSleeping && body.IsSleeping {
		e.buffer = append(e.buffer, SleepEvent{Body: body})
	} else if e.wasSleeping && !body.IsSleeping {
		e.buffer = append(e.buffer, WakeEvent{Body: body})
	}
	e.wasSleeping = body.IsSleeping
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush(body *actor.RigidBody) {
	e.processContactEvents(body)

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
