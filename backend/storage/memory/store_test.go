package memory

import (
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/scrawlkit/scrawl/backend/model"
)

var strokeFixture = model.StrokeOp{
	ID:     "s1",
	Tool:   model.ToolBrush,
	Color:  "#ff0000",
	Size:   4,
	Points: []model.Point{{X: 1, Y: 1}},
}

func TestGetRoomIdempotent(t *testing.T) {
	ms := NewMemStore()

	st := ms.GetRoom("alpha")
	assert.NotEqual(t, st, nil)

	st.Log.Append(strokeFixture)
	again := ms.GetRoom("alpha")
	assert.Equal(t, st, again)
	assert.Equal(t, 1, again.Log.Len())
}

func TestGetRoomIsolation(t *testing.T) {
	ms := NewMemStore()

	a := ms.GetRoom("alpha")
	b := ms.GetRoom("beta")
	a.Log.Append(strokeFixture)

	assert.Equal(t, 1, a.Log.Len())
	assert.Equal(t, 0, b.Log.Len())
}

func TestRooms(t *testing.T) {
	ms := NewMemStore()
	assert.Equal(t, 0, len(ms.Rooms()))

	ms.GetRoom("alpha")
	ms.GetRoom("beta")
	ms.GetRoom("alpha")

	ids := ms.Rooms()
	assert.Equal(t, 2, len(ids))
}
