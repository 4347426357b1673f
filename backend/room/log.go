package room

import (
	"github.com/scrawlkit/scrawl/backend/model"
)

// Log is the authoritative, linearly ordered stroke history of one
// room, with an attached redo buffer. It has no internal locking: all
// access goes through the room's single event loop.
type Log struct {
	ops  []model.StrokeOp
	redo []model.StrokeOp
}

// Append commits a finished stroke. Any redoable strokes are discarded
// so the history stays strictly linear.
func (l *Log) Append(op model.StrokeOp) {
	l.ops = append(l.ops, op)
	l.redo = nil
}

// Undo moves the most recent stroke onto the redo buffer. Returns the
// removed stroke, or false with no state change when the log is empty.
func (l *Log) Undo() (model.StrokeOp, bool) {
	if len(l.ops) == 0 {
		return model.StrokeOp{}, false
	}
	op := l.ops[len(l.ops)-1]
	l.ops = l.ops[:len(l.ops)-1]
	l.redo = append(l.redo, op)
	return op, true
}

// Redo moves the most recently undone stroke back onto the history.
func (l *Log) Redo() (model.StrokeOp, bool) {
	if len(l.redo) == 0 {
		return model.StrokeOp{}, false
	}
	op := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.ops = append(l.ops, op)
	return op, true
}

// Snapshot returns a copy of the committed history. Callers cannot
// mutate the log through the returned slice.
func (l *Log) Snapshot() []model.StrokeOp {
	ops := make([]model.StrokeOp, len(l.ops))
	copy(ops, l.ops)
	return ops
}

func (l *Log) Len() int {
	return len(l.ops)
}

// RedoLen reports the number of strokes available for redo.
func (l *Log) RedoLen() int {
	return len(l.redo)
}
