package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Tools a stroke can be drawn with.
const (
	ToolBrush  = "brush"
	ToolEraser = "eraser"
)

// Client-originated message types.
const (
	TypeUserJoin     = "user:join"
	TypeStrokeStart  = "stroke:start"
	TypeStrokeUpdate = "stroke:update"
	TypeStrokeEnd    = "stroke:end"
	TypeUndo         = "undo"
	TypeRedo         = "redo"
	TypeCursorMove   = "cursor:move"
)

// Server-originated message types.
const (
	TypeHistoryInit   = "history:init"
	TypeHistoryUpdate = "history:update"
	TypeUsersUpdate   = "users:update"
	TypeCursorLeave   = "cursor:leave"
	TypeCursorLast    = "cursor:last"
)

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Point is a canvas-space coordinate. Coordinates are not clamped to
// the canvas bounds.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StrokeOp is one committed drawing gesture. Immutable once created;
// color is ignored for eraser strokes but stored as given.
type StrokeOp struct {
	ID        string  `json:"id"`
	Tool      string  `json:"tool"`
	Color     string  `json:"color"`
	Size      float64 `json:"size"`
	Points    []Point `json:"points"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// UserInfo is the display identity of a connected participant. Color
// is server-assigned, derived from the connection id.
type UserInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type UserJoin struct {
	Name string `json:"name"`
}

type StrokeUpdate struct {
	StrokeID string `json:"strokeId"`
	Point    Point  `json:"point"`
}

type CursorMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CursorLeave struct {
	ID string `json:"id"`
}

type CursorLast struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// RoomInfo is a read-only view of a room for the introspection API.
type RoomInfo struct {
	RoomID         string              `json:"room_id"`
	UserCount      int                 `json:"user_count"`
	OperationCount int                 `json:"operation_count"`
	Users          map[string]UserInfo `json:"users"`
}

// Frame is the raw envelope read off a websocket connection. Payload
// stays undecoded until the type is known.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Event is a decoded client message. The server re-assigns From based
// on the websocket session.
type Event struct {
	Type    string
	From    string
	Payload any
}

// Message is a server-to-client envelope. From tags relayed messages
// with the originating connection id.
type Message struct {
	Type    string `json:"type"`
	From    string `json:"from,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

type Wire struct {
	RX chan Event
	TX chan Message
}

func NewWire() Wire {
	return Wire{
		RX: make(chan Event),
		TX: make(chan Message),
	}
}

// DecodeFrame validates a raw client frame and produces a typed Event.
// Everything past this boundary can assume well-formed payloads.
func DecodeFrame(f Frame) (Event, error) {
	ev := Event{Type: f.Type}
	switch f.Type {
	case TypeUserJoin:
		var p UserJoin
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return ev, errors.Join(ErrInvalidPayload, err)
		}
		if p.Name == "" {
			return ev, fmt.Errorf("%w: empty user name", ErrInvalidPayload)
		}
		ev.Payload = p
	case TypeStrokeStart, TypeStrokeEnd:
		var p StrokeOp
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return ev, errors.Join(ErrInvalidPayload, err)
		}
		if p.ID == "" {
			return ev, fmt.Errorf("%w: empty stroke id", ErrInvalidPayload)
		}
		if len(p.Points) == 0 {
			return ev, fmt.Errorf("%w: stroke without points", ErrInvalidPayload)
		}
		ev.Payload = p
	case TypeStrokeUpdate:
		var p StrokeUpdate
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return ev, errors.Join(ErrInvalidPayload, err)
		}
		if p.StrokeID == "" {
			return ev, fmt.Errorf("%w: empty stroke id", ErrInvalidPayload)
		}
		ev.Payload = p
	case TypeCursorMove:
		var p CursorMove
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return ev, errors.Join(ErrInvalidPayload, err)
		}
		ev.Payload = p
	case TypeUndo, TypeRedo:
		// no payload
	default:
		return ev, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
	return ev, nil
}
