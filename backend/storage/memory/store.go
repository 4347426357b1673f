package memory

import (
	"sync"

	"github.com/scrawlkit/scrawl/backend/room"
)

// MemStore is the process-wide room registry. Rooms are created on
// first lookup and never evicted: memory grows with the number of
// distinct rooms ever seen, which is an accepted property of this
// non-durable in-memory service.
type MemStore struct {
	mx *sync.Mutex
	db map[string]*room.State
}

func NewMemStore() *MemStore {
	return &MemStore{
		mx: &sync.Mutex{},
		db: make(map[string]*room.State),
	}
}

// GetRoom returns the state for roomID, creating an empty one if the
// room has never been seen. Idempotent.
func (ms *MemStore) GetRoom(roomID string) *room.State {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	st, ok := ms.db[roomID]
	if !ok {
		st = room.NewState()
		ms.db[roomID] = st
	}
	return st
}

// Rooms returns the identifiers of all rooms ever seen.
func (ms *MemStore) Rooms() []string {
	ms.mx.Lock()
	defer ms.mx.Unlock()

	ids := make([]string, 0, len(ms.db))
	for id := range ms.db {
		ids = append(ids, id)
	}
	return ids
}
