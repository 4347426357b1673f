package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/scrawlkit/scrawl/backend/model"
	"github.com/scrawlkit/scrawl/backend/room"
)

const (
	// Inbound events queue up here while a room loop is busy
	// broadcasting. Bounds the decoupling between connection readers
	// and the sequencer, not a correctness knob.
	defaultRoomQueueSize = 256
)

var (
	ErrConnect      = errors.New("unable to connect")
	ErrDisconnect   = errors.New("unable to disconnect")
	ErrRoomNotFound = errors.New("room is not found")
)

type (
	RoomStore interface {
		GetRoom(roomID string) *room.State
		Rooms() []string
	}

	Relay interface {
		Connect(roomID, connID string, wire model.Wire) error
		Disconnect(roomID, connID string) error
		SendTo(ctx context.Context, roomID, connID string, msg model.Message) error
		Broadcast(ctx context.Context, roomID string, msg model.Message, except string) error
	}

	// Service sequences every state-changing event of a room through a
	// single goroutine, which is what makes the operation log's
	// undo/redo rules race-free without locks. Each mutation is
	// answered with a full-snapshot broadcast so all room members
	// converge regardless of what they missed.
	Service struct {
		store  RoomStore
		relay  Relay
		logger zerolog.Logger

		mx    sync.Mutex
		rooms map[string]chan roomEvent
	}

	Config struct {
		RoomStore RoomStore
		Relay     Relay
		Logger    *zerolog.Logger
	}
)

// Internal lifecycle events, never seen on the wire.
const (
	evConnect    = "connect"
	evDisconnect = "disconnect"
	evInfo       = "info"
)

type roomEvent struct {
	kind    string
	conn    string
	payload any
	reply   chan model.RoomInfo
}

func NewService(cfg Config) *Service {
	return &Service{
		store:  cfg.RoomStore,
		relay:  cfg.Relay,
		logger: cfg.Logger.With().Str("component", "sync").Logger(),
		rooms:  make(map[string]chan roomEvent),
	}
}

// CreateSession attaches a connection to a room: it joins the room's
// multicast group, hands the connection to the room's event loop (which
// replies with history and presence snapshots), and starts pumping the
// connection's decoded inbound events into that loop.
func (svc *Service) CreateSession(ctx context.Context, roomID, connID string, wire model.Wire) error {
	if err := svc.relay.Connect(roomID, connID, wire); err != nil {
		return errors.Join(ErrConnect, err)
	}
	events := svc.roomEvents(roomID)

	select {
	case events <- roomEvent{kind: evConnect, conn: connID}:
	case <-ctx.Done():
		return ctx.Err()
	}
	svc.logger.Debug().
		Str("roomID", roomID).
		Str("connID", connID).
		Msg("session created")

	go svc.pump(ctx, connID, wire.RX, events)
	return nil
}

// DestroySession detaches a connection. The relay stops delivering to
// it first, so the leave broadcasts only reach the remaining members.
func (svc *Service) DestroySession(ctx context.Context, roomID, connID string) error {
	if err := svc.relay.Disconnect(roomID, connID); err != nil {
		return errors.Join(ErrDisconnect, err)
	}
	events := svc.roomEvents(roomID)

	select {
	case events <- roomEvent{kind: evDisconnect, conn: connID}:
	case <-ctx.Done():
		return ctx.Err()
	}
	svc.logger.Debug().
		Str("roomID", roomID).
		Str("connID", connID).
		Msg("session destroyed")
	return nil
}

// RoomInfo answers through the room's event loop so the returned view
// is consistent with the sequencer's state.
func (svc *Service) RoomInfo(ctx context.Context, roomID string) (model.RoomInfo, error) {
	svc.mx.Lock()
	events, ok := svc.rooms[roomID]
	svc.mx.Unlock()
	if !ok {
		return model.RoomInfo{}, ErrRoomNotFound
	}

	reply := make(chan model.RoomInfo, 1)
	select {
	case events <- roomEvent{kind: evInfo, reply: reply}:
	case <-ctx.Done():
		return model.RoomInfo{}, ctx.Err()
	}
	select {
	case info := <-reply:
		return info, nil
	case <-ctx.Done():
		return model.RoomInfo{}, ctx.Err()
	}
}

// Rooms lists the identifiers of all rooms ever seen.
func (svc *Service) Rooms() []string {
	return svc.store.Rooms()
}

// roomEvents returns the room's inbound event queue, starting the
// room's loop on first reference. Loops run for the remaining process
// lifetime, matching the registry's no-eviction policy.
func (svc *Service) roomEvents(roomID string) chan roomEvent {
	svc.mx.Lock()
	defer svc.mx.Unlock()

	events, ok := svc.rooms[roomID]
	if !ok {
		events = make(chan roomEvent, defaultRoomQueueSize)
		svc.rooms[roomID] = events
		go svc.runRoom(roomID, svc.store.GetRoom(roomID), events)
	}
	return events
}

func (svc *Service) pump(ctx context.Context, connID string, rx <-chan model.Event, events chan<- roomEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-rx:
			if !ok {
				return
			}
			select {
			case events <- roomEvent{kind: ev.Type, conn: connID, payload: ev.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// runRoom is the room's sequencer: it processes one event to
// completion at a time, assigning the total order every client's view
// converges to.
func (svc *Service) runRoom(roomID string, st *room.State, events <-chan roomEvent) {
	ctx := context.Background()
	logger := svc.logger.With().Str("roomID", roomID).Logger()

	for ev := range events {
		switch ev.kind {
		case evConnect:
			svc.handleConnect(ctx, roomID, st, ev.conn)
		case evDisconnect:
			svc.handleDisconnect(ctx, roomID, st, ev.conn)
		case evInfo:
			ev.reply <- model.RoomInfo{
				RoomID:         roomID,
				UserCount:      st.Presence.Len(),
				OperationCount: st.Log.Len(),
				Users:          st.Presence.Users(),
			}

		case model.TypeUserJoin:
			join := ev.payload.(model.UserJoin)
			info := st.Presence.Add(ev.conn, join.Name)
			logger.Debug().
				Str("connID", ev.conn).
				Str("name", info.Name).
				Str("color", info.Color).
				Msg("user joined")
			svc.broadcastUsers(ctx, roomID, st)

		case model.TypeStrokeStart, model.TypeStrokeUpdate:
			// live strokes are relayed, never stored; the log only
			// becomes authoritative at stroke:end
			_ = svc.relay.Broadcast(ctx, roomID, model.Message{
				Type:    ev.kind,
				From:    ev.conn,
				Payload: ev.payload,
			}, ev.conn)

		case model.TypeStrokeEnd:
			st.Log.Append(ev.payload.(model.StrokeOp))
			svc.broadcastHistory(ctx, roomID, st)

		case model.TypeUndo:
			if _, ok := st.Log.Undo(); ok {
				svc.broadcastHistory(ctx, roomID, st)
			}
		case model.TypeRedo:
			if _, ok := st.Log.Redo(); ok {
				svc.broadcastHistory(ctx, roomID, st)
			}

		case model.TypeCursorMove:
			cur := ev.payload.(model.CursorMove)
			st.Presence.TrackCursor(ev.conn, cur.X, cur.Y)
			_ = svc.relay.Broadcast(ctx, roomID, model.Message{
				Type:    model.TypeCursorMove,
				From:    ev.conn,
				Payload: cur,
			}, ev.conn)

		default:
			logger.Error().Str("kind", ev.kind).Msg("event with unknown kind")
		}
	}
}

func (svc *Service) handleConnect(ctx context.Context, roomID string, st *room.State, connID string) {
	_ = svc.relay.SendTo(ctx, roomID, connID, model.Message{
		Type:    model.TypeHistoryInit,
		Payload: st.Log.Snapshot(),
	})
	_ = svc.relay.SendTo(ctx, roomID, connID, model.Message{
		Type:    model.TypeUsersUpdate,
		Payload: st.Presence.Users(),
	})
}

func (svc *Service) handleDisconnect(ctx context.Context, roomID string, st *room.State, connID string) {
	x, y, moved := st.Presence.LastCursor(connID)
	info, joined := st.Presence.Remove(connID)

	_ = svc.relay.Broadcast(ctx, roomID, model.Message{
		Type:    model.TypeCursorLeave,
		Payload: model.CursorLeave{ID: connID},
	}, "")
	if joined && moved {
		_ = svc.relay.Broadcast(ctx, roomID, model.Message{
			Type:    model.TypeCursorLast,
			Payload: model.CursorLast{X: x, Y: y, Color: info.Color},
		}, "")
	}
	if joined {
		svc.broadcastUsers(ctx, roomID, st)
	}
}

func (svc *Service) broadcastHistory(ctx context.Context, roomID string, st *room.State) {
	_ = svc.relay.Broadcast(ctx, roomID, model.Message{
		Type:    model.TypeHistoryUpdate,
		Payload: st.Log.Snapshot(),
	}, "")
}

func (svc *Service) broadcastUsers(ctx context.Context, roomID string, st *room.State) {
	_ = svc.relay.Broadcast(ctx, roomID, model.Message{
		Type:    model.TypeUsersUpdate,
		Payload: st.Presence.Users(),
	}, "")
}
