// Package relay implements room-scoped message delivery: unicast to a
// single connection and multicast to every connection in a room, with
// an optional sender exclusion for live-stroke and cursor forwarding.
package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/scrawlkit/scrawl/backend/model"
)

const (
	defaultSendTimeout = time.Second
)

var (
	ErrNotConnected = errors.New("connection is not registered")
)

type Relay struct {
	logger zerolog.Logger
	mx     *sync.RWMutex
	groups map[string]map[string]model.Wire
}

func New(logger *zerolog.Logger) *Relay {
	return &Relay{
		logger: logger.With().Str("component", "relay").Logger(),
		mx:     &sync.RWMutex{},
		groups: make(map[string]map[string]model.Wire),
	}
}

// Connect registers a connection's wire with its room group.
func (r *Relay) Connect(roomID, connID string, wire model.Wire) error {
	r.mx.Lock()
	defer func() {
		r.mx.Unlock()
		r.logger.Debug().
			Str("roomID", roomID).
			Str("connID", connID).
			Msg("connection registered")
	}()

	group, ok := r.groups[roomID]
	if !ok {
		group = make(map[string]model.Wire)
	}
	group[connID] = wire
	r.groups[roomID] = group
	return nil
}

// Disconnect removes a connection from its room group. Messages sent
// after this point no longer reach the connection.
func (r *Relay) Disconnect(roomID, connID string) error {
	r.mx.Lock()
	defer func() {
		r.mx.Unlock()
		r.logger.Debug().
			Str("roomID", roomID).
			Str("connID", connID).
			Msg("connection removed")
	}()

	group, ok := r.groups[roomID]
	if ok {
		delete(group, connID)
		r.groups[roomID] = group
	}
	return nil
}

// SendTo delivers a message to a single connection in a room.
func (r *Relay) SendTo(ctx context.Context, roomID, connID string, msg model.Message) error {
	r.mx.RLock()
	wire, ok := r.groups[roomID][connID]
	r.mx.RUnlock()

	if !ok {
		r.logger.Debug().
			Str("roomID", roomID).
			Str("connID", connID).
			Str("type", msg.Type).
			Msg("cannot send, connection not found")
		return ErrNotConnected
	}
	r.send(ctx, msg, connID, wire.TX)
	return nil
}

// Broadcast delivers a message to every connection in a room. A
// non-empty except skips that connection id.
func (r *Relay) Broadcast(ctx context.Context, roomID string, msg model.Message, except string) error {
	r.mx.RLock()
	group := r.groups[roomID]
	wires := make(map[string]model.Wire, len(group))
	for connID, wire := range group {
		wires[connID] = wire
	}
	r.mx.RUnlock()

	var sent bool
	for connID, wire := range wires {
		if connID == except {
			continue
		}
		if canceled := r.send(ctx, msg, connID, wire.TX); canceled {
			break
		}
		sent = true
	}
	if !sent {
		r.logger.Debug().
			Str("roomID", roomID).
			Str("type", msg.Type).
			Str("from", msg.From).
			Msg("broadcast did not reach anyone")
	}
	return nil
}

func (r *Relay) send(ctx context.Context, msg model.Message, connID string, tx chan<- model.Message) bool {
	var canceled bool
	tCh := time.NewTimer(defaultSendTimeout)
	select {
	case <-ctx.Done():
		canceled = true
	case <-tCh.C:
		r.logger.Error().
			Str("connID", connID).
			Str("type", msg.Type).
			Msg("dead connection")
	case tx <- msg:
		r.logger.Trace().
			Str("connID", connID).
			Str("type", msg.Type).
			Msg("message forwarded")
	}
	tCh.Stop()
	return canceled
}
