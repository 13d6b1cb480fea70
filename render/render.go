package render

import (
	"errors"
	"log"

	"github.com/akmonengine/tumble/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Target receives the frames, *websocket.Conn satisfies it
type Target interface {
	WriteJSON(v any) error
	Close() error
}

// Scene is the read side of the simulation used to build the frames
type Scene interface {
	Gravity() mgl64.Vec3
	Cube() *actor.RigidBox
	Walls() *actor.RigidBox
	Body() *actor.RigidBody
}

type BoxFrame struct {
	Position mgl64.Vec3                     `json:"position"`
	Rotation mgl64.Mat3                     `json:"rotation"` // column major
	Size     mgl64.Vec3                     `json:"size"`
	Corners  [actor.CornersCount]mgl64.Vec3 `json:"corners"`
}

// Frame is the drawn state of one tick
type Frame struct {
	Type     string     `json:"type"`
	Tick     uint64     `json:"tick"`
	Gravity  mgl64.Vec3 `json:"gravity"`
	Cube     BoxFrame   `json:"cube"`
	Walls    BoxFrame   `json:"walls"`
	Sleeping bool       `json:"sleeping"`
}

const MessageTypeFrame = "frame"

func NewBoxFrame(box *actor.RigidBox) BoxFrame {
	return BoxFrame{
		Position: box.Position(),
		Rotation: box.Rotation(),
		Size:     box.Size(),
		Corners:  box.Corners(),
	}
}

// Stream draws the scene by writing one JSON frame per tick to its output target
type Stream struct {
	scene  Scene
	logger *log.Logger

	target      Target
	tick        uint64
	initialized bool
}

func NewStream(scene Scene, logger *log.Logger) *Stream {
	if logger == nil {
		logger = log.Default()
	}

	return &Stream{scene: scene, logger: logger}
}

func (s *Stream) Initialize() error {
	if s.scene == nil {
		return errors.New("render: no scene to draw")
	}
	s.initialized = true
	s.tick = 0

	return nil
}

// Finalize releases the output target; calling it again is a no-op
func (s *Stream) Finalize() error {
	if !s.initialized {
		return nil
	}
	s.initialized = false
	s.SetOutputTarget(nil)

	return nil
}

// SetOutputTarget replaces the output target, the previous one is closed. nil detaches it.
func (s *Stream) SetOutputTarget(target Target) {
	if s.target != nil && s.target != target {
		if err := s.target.Close(); err != nil {
			s.logger.Printf("[Render] closing previous target: %v", err)
		}
	}
	s.target = target

	if target == nil {
		s.logger.Printf("[Render] output detached")
	} else {
		s.logger.Printf("[Render] output attached")
	}
}

// Target returns the current output target
func (s *Stream) Target() Target {
	return s.target
}

// Draw writes the current frame; a failing target is closed and detached
func (s *Stream) Draw() {
	s.tick++
	if s.target == nil {
		return
	}

	if err := s.target.WriteJSON(s.Frame()); err != nil {
		s.logger.Printf("[Render] write failed, detaching output: %v", err)
		s.target.Close()
		s.target = nil
	}
}

// Frame builds the frame of the current tick
func (s *Stream) Frame() Frame {
	return Frame{
		Type:     MessageTypeFrame,
		Tick:     s.tick,
		Gravity:  s.scene.Gravity(),
		Cube:     NewBoxFrame(s.scene.Cube()),
		Walls:    NewBoxFrame(s.scene.Walls()),
		Sleeping: s.scene.Body().IsSleeping,
	}
}
