package room

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestPresenceAddRemove(t *testing.T) {
	p := NewPresence()

	n := 20
	for i := 0; i < n; i++ {
		p.Add("conn-"+strconv.Itoa(i), "user-"+strconv.Itoa(i))
	}
	assert.Equal(t, n, p.Len())

	// remove every other participant
	for i := 0; i < n; i += 2 {
		_, ok := p.Remove("conn-" + strconv.Itoa(i))
		assert.Equal(t, true, ok)
	}

	users := p.Users()
	assert.Equal(t, n/2, len(users))
	for i := 1; i < n; i += 2 {
		info, ok := users["conn-"+strconv.Itoa(i)]
		assert.Equal(t, true, ok)
		assert.Equal(t, "user-"+strconv.Itoa(i), info.Name)
	}

	_, ok := p.Remove("conn-0")
	assert.Equal(t, false, ok)
}

func TestPresenceUsersIsCopy(t *testing.T) {
	p := NewPresence()
	p.Add("a", "alice")

	users := p.Users()
	delete(users, "a")
	users["b"] = p.Users()["a"]

	assert.Equal(t, 1, p.Len())
	_, ok := p.Users()["a"]
	assert.Equal(t, true, ok)
}

func TestPresenceCursorTracking(t *testing.T) {
	p := NewPresence()

	// cursor moves from unknown connections are dropped
	p.TrackCursor("ghost", 1, 2)
	_, _, ok := p.LastCursor("ghost")
	assert.Equal(t, false, ok)

	p.Add("a", "alice")
	_, _, ok = p.LastCursor("a")
	assert.Equal(t, false, ok)

	p.TrackCursor("a", 50, 60)
	x, y, ok := p.LastCursor("a")
	assert.Equal(t, true, ok)
	assert.Equal(t, 50.0, x)
	assert.Equal(t, 60.0, y)
}

func TestColorFor(t *testing.T) {
	hsl := regexp.MustCompile(`^hsl\(\d+,70%,50%\)$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := "conn-" + strconv.Itoa(i)
		color := ColorFor(id)
		assert.Equal(t, true, hsl.MatchString(color))
		assert.Equal(t, color, ColorFor(id))
		seen[color] = true
	}
	// hash-to-hue should spread identities over many distinct hues
	assert.Equal(t, true, len(seen) > 50)
}

func TestPresenceJoinAssignsColor(t *testing.T) {
	p := NewPresence()
	info := p.Add("a", "alice")
	assert.Equal(t, "alice", info.Name)
	assert.Equal(t, ColorFor("a"), info.Color)
}
