package relay

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/rs/zerolog"
	"github.com/scrawlkit/scrawl/backend/model"
)

func newWire() model.Wire {
	return model.Wire{
		RX: make(chan model.Event),
		TX: make(chan model.Message, 8),
	}
}

func recv(t *testing.T, w model.Wire) model.Message {
	t.Helper()
	select {
	case msg := <-w.TX:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return model.Message{}
}

func TestSendTo(t *testing.T) {
	logger := zerolog.Nop()
	r := New(&logger)
	ctx := context.Background()

	wa := newWire()
	assert.Equal(t, nil, r.Connect("r1", "A", wa))

	err := r.SendTo(ctx, "r1", "A", model.Message{Type: "t"})
	assert.Equal(t, nil, err)
	assert.Equal(t, "t", recv(t, wa).Type)

	err = r.SendTo(ctx, "r1", "B", model.Message{Type: "t"})
	assert.Equal(t, ErrNotConnected, err)
	err = r.SendTo(ctx, "r2", "A", model.Message{Type: "t"})
	assert.Equal(t, ErrNotConnected, err)
}

func TestBroadcastExcludesSender(t *testing.T) {
	logger := zerolog.Nop()
	r := New(&logger)
	ctx := context.Background()

	wa, wb, wc := newWire(), newWire(), newWire()
	_ = r.Connect("r1", "A", wa)
	_ = r.Connect("r1", "B", wb)
	_ = r.Connect("r1", "C", wc)

	err := r.Broadcast(ctx, "r1", model.Message{Type: "t", From: "A"}, "A")
	assert.Equal(t, nil, err)
	assert.Equal(t, "t", recv(t, wb).Type)
	assert.Equal(t, "t", recv(t, wc).Type)
	assert.Equal(t, 0, len(wa.TX))
}

func TestBroadcastAfterDisconnect(t *testing.T) {
	logger := zerolog.Nop()
	r := New(&logger)
	ctx := context.Background()

	wa, wb := newWire(), newWire()
	_ = r.Connect("r1", "A", wa)
	_ = r.Connect("r1", "B", wb)
	_ = r.Disconnect("r1", "A")

	err := r.Broadcast(ctx, "r1", model.Message{Type: "t"}, "")
	assert.Equal(t, nil, err)
	assert.Equal(t, "t", recv(t, wb).Type)
	assert.Equal(t, 0, len(wa.TX))
}
