package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestDecodeFrameStroke(t *testing.T) {
	raw := []byte(`{"id":"s1","tool":"brush","color":"#fff","size":4,` +
		`"points":[{"x":1,"y":1},{"x":2,"y":2}],"timestamp":1700000000000}`)

	ev, err := DecodeFrame(Frame{Type: TypeStrokeEnd, Payload: raw})
	assert.Equal(t, nil, err)

	op, ok := ev.Payload.(StrokeOp)
	assert.Equal(t, true, ok)
	assert.Equal(t, "s1", op.ID)
	assert.Equal(t, ToolBrush, op.Tool)
	assert.Equal(t, 2, len(op.Points))
	assert.Equal(t, int64(1700000000000), op.Timestamp)
}

func TestDecodeFrameNoPayloadTypes(t *testing.T) {
	for _, typ := range []string{TypeUndo, TypeRedo} {
		ev, err := DecodeFrame(Frame{Type: typ})
		assert.Equal(t, nil, err)
		assert.Equal(t, typ, ev.Type)
		assert.Equal(t, nil, ev.Payload)
	}
}

func TestDecodeFrameRejects(t *testing.T) {
	cases := []Frame{
		{Type: "bogus"},
		{Type: TypeHistoryUpdate}, // server-originated, never a client frame
		{Type: TypeUserJoin, Payload: json.RawMessage(`{"name":""}`)},
		{Type: TypeStrokeEnd, Payload: json.RawMessage(`{"tool":"brush","points":[{"x":1,"y":1}]}`)},
		{Type: TypeStrokeEnd, Payload: json.RawMessage(`{"id":"s1","tool":"brush","points":[]}`)},
		{Type: TypeStrokeUpdate, Payload: json.RawMessage(`{"point":{"x":1,"y":1}}`)},
		{Type: TypeCursorMove, Payload: json.RawMessage(`"not an object"`)},
	}
	for _, f := range cases {
		_, err := DecodeFrame(f)
		assert.NotEqual(t, err, nil)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	_, err := DecodeFrame(Frame{Type: "bogus"})
	assert.Equal(t, true, errors.Is(err, ErrUnknownType))

	_, err = DecodeFrame(Frame{Type: TypeCursorMove, Payload: json.RawMessage(`[]`)})
	assert.Equal(t, true, errors.Is(err, ErrInvalidPayload))
}
