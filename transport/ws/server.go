package ws

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/akmonengine/tumble/render"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
)

// Controller is the engine side driven by the viewer
type Controller interface {
	Start()
	Stop()
	SetOutputTarget(target render.Target)
}

// SamplePusher receives the accelerometer samples of the viewer
type SamplePusher interface {
	Push(sample mgl64.Vec3) bool
}

// Server is the viewer endpoint: the last connected viewer receives the frames
// and controls the engine.
type Server struct {
	upgrader websocket.Upgrader
	engine   Controller
	input    SamplePusher
	logger   *log.Logger

	mu      sync.Mutex
	current *SafeWriter
}

func NewServer(engine Controller, input SamplePusher, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		engine: engine,
		input:  input,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[WSServer] upgrade failed: %v", err)
		return
	}

	writer := NewSafeWriter(conn)
	if err := writer.WriteJSON(NewInfoMessage("connected")); err != nil {
		s.logger.Printf("[WSServer] %s: %v", r.RemoteAddr, err)
		writer.Close()
		return
	}

	s.mu.Lock()
	s.current = writer
	s.mu.Unlock()

	s.logger.Printf("[WSServer] viewer %s connected", r.RemoteAddr)
	s.engine.SetOutputTarget(writer)

	s.readLoop(conn, writer)

	s.mu.Lock()
	detach := s.current == writer
	if detach {
		s.current = nil
	}
	s.mu.Unlock()

	// a replaced viewer was already released by the renderer
	if detach {
		s.engine.SetOutputTarget(nil)
	}
	s.logger.Printf("[WSServer] viewer %s disconnected", r.RemoteAddr)
}

func (s *Server) readLoop(conn *websocket.Conn, writer *SafeWriter) {
	for {
		var message ClientMessage
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("[WSServer] read failed: %v", err)
			}
			return
		}

		if err := s.handle(message); err != nil {
			if err := writer.WriteJSON(NewErrorMessage(err.Error())); err != nil {
				return
			}
		}
	}
}

func (s *Server) handle(message ClientMessage) error {
	switch message.Type {
	case MessageTypeAccel:
		if s.input == nil {
			return errors.New("no accelerometer")
		}
		s.input.Push(mgl64.Vec3{message.X, message.Y, message.Z})
	case MessageTypeStart:
		s.engine.Start()
	case MessageTypeStop:
		s.engine.Stop()
	default:
		return fmt.Errorf("unknown message type %q", message.Type)
	}

	return nil
}
