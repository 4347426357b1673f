// Package room holds the per-room authoritative state: the stroke
// history with its undo/redo buffer, and the presence registry.
package room

// State is everything a room owns. Created on first reference and
// retained for the lifetime of the process.
type State struct {
	Log      *Log
	Presence *Presence
}

func NewState() *State {
	return &State{
		Log:      &Log{},
		Presence: NewPresence(),
	}
}
