package views

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/dungeon-builder/internal/geometry"
	"github.com/Ko-stant/dungeon-builder/internal/protocol"
)

func TestIndexPage_EscapesAndListsRooms(t *testing.T) {
	s := protocol.DungeonSnapshot{
		Level: "<Cellars>",
		Graph: "linear",
		Seed:  99,
		ASCII: "#E#\n",
		Rooms: []protocol.RoomLite{
			{ID: "entrance", Type: "Entrance", TemplateID: "entrance-1", Cleared: true, Visited: true,
				Bounds: geometry.Bounds{Upper: geometry.Vec2{X: 9, Y: 9}}},
			{ID: "c1", Type: "CorridorNS", ParentID: "entrance"},
		},
		Game: &protocol.GameStatus{
			State: "playingLevel", Level: 1, CurrentRoom: "entrance", Multiplier: 1,
			Position: geometry.Vec2{X: 4, Y: 5},
			Weapon:   protocol.WeaponLite{Name: "pistol", ClipRemaining: 11, RemainingAmmo: 95, Reloading: true},
			Doors:    map[string][]string{"entrance": {"open", "closed"}},
		},
	}

	var b strings.Builder
	require.NoError(t, IndexPage(s).Render(context.Background(), &b))
	html := b.String()

	assert.Contains(t, html, "&lt;Cellars&gt;")
	assert.NotContains(t, html, "<Cellars>")
	assert.Contains(t, html, "seed <code>99</code>")
	assert.Contains(t, html, "<pre class=\"map\">#E#\n</pre>")
	assert.Contains(t, html, "<td>c1</td>")
	assert.Contains(t, html, "cleared visited")
	assert.Contains(t, html, "state <b>playingLevel</b>")
	assert.Contains(t, html, "/stream")
	assert.Contains(t, html, "weapon <b>pistol</b> 11/95")
	assert.Contains(t, html, `<p class="note">reloading</p>`)
	assert.Contains(t, html, "<td>open, closed</td>")
	assert.Contains(t, html, `<tr class="cleared"><td>entrance</td>`)
	assert.Contains(t, html, "<tr><td>c1</td>")
}

func TestIndexPage_WithoutGame(t *testing.T) {
	s := protocol.DungeonSnapshot{
		Level: "Cellars",
		Rooms: []protocol.RoomLite{{ID: "entrance", Visited: true}},
	}

	var b strings.Builder
	require.NoError(t, IndexPage(s).Render(context.Background(), &b))
	html := b.String()

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.NotContains(t, html, "state <b>")
	assert.NotContains(t, html, "reloading")
	assert.Contains(t, html, "<td></td><td>visited</td>")
}

func TestIndexPage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var b strings.Builder
	assert.ErrorIs(t, IndexPage(protocol.DungeonSnapshot{}).Render(ctx, &b), context.Canceled)
	assert.Empty(t, b.String())
}
