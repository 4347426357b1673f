package room

import (
	"fmt"
	"hash/fnv"

	"github.com/scrawlkit/scrawl/backend/model"
)

// Presence tracks the participants of one room keyed by connection id,
// plus each participant's last reported cursor position. Like Log it
// relies on the room event loop for serialization.
type Presence struct {
	users map[string]*participant
}

type participant struct {
	info      model.UserInfo
	cursorX   float64
	cursorY   float64
	hasCursor bool
}

func NewPresence() *Presence {
	return &Presence{
		users: make(map[string]*participant),
	}
}

// Add registers a participant and assigns its color. Re-joining under
// the same connection replaces the previous entry.
func (p *Presence) Add(connID, name string) model.UserInfo {
	info := model.UserInfo{
		Name:  name,
		Color: ColorFor(connID),
	}
	p.users[connID] = &participant{info: info}
	return info
}

// Remove deletes a participant, returning its info if it was present.
func (p *Presence) Remove(connID string) (model.UserInfo, bool) {
	u, ok := p.users[connID]
	if !ok {
		return model.UserInfo{}, false
	}
	delete(p.users, connID)
	return u.info, true
}

// TrackCursor records the participant's last cursor position. Unknown
// connections are ignored.
func (p *Presence) TrackCursor(connID string, x, y float64) {
	u, ok := p.users[connID]
	if !ok {
		return
	}
	u.cursorX, u.cursorY = x, y
	u.hasCursor = true
}

// LastCursor returns the last position reported via TrackCursor.
func (p *Presence) LastCursor(connID string) (float64, float64, bool) {
	u, ok := p.users[connID]
	if !ok || !u.hasCursor {
		return 0, 0, false
	}
	return u.cursorX, u.cursorY, true
}

// Users returns a copy of the presence mapping.
func (p *Presence) Users() map[string]model.UserInfo {
	users := make(map[string]model.UserInfo, len(p.users))
	for id, u := range p.users {
		users[id] = u.info
	}
	return users
}

func (p *Presence) Len() int {
	return len(p.users)
}

// ColorFor derives a stable display color from a connection id by
// hashing it to a hue. Clients treat this as authoritative.
func ColorFor(connID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(connID))
	hue := h.Sum32() % 360
	return fmt.Sprintf("hsl(%d,70%%,50%%)", hue)
}
