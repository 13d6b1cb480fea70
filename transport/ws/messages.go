package ws

const (
	MessageTypeAccel = "accel" // accelerometer sample from the viewer
	MessageTypeStart = "start"
	MessageTypeStop  = "stop"
	MessageTypeInfo  = "info"
	MessageTypeError = "error"
)

// ClientMessage is a control message sent by the viewer
type ClientMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	Z    float64 `json:"z,omitempty"`
}

type ServerMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewInfoMessage(message string) ServerMessage {
	return ServerMessage{Type: MessageTypeInfo, Message: message}
}

func NewErrorMessage(message string) ServerMessage {
	return ServerMessage{Type: MessageTypeError, Message: message}
}
