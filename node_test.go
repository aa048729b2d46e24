package snake_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kuredoro/snake"
	"github.com/kuredoro/snake/core"
	"github.com/kuredoro/snake/protocol/heartbeat"
)

func newNode(t *testing.T, ctx context.Context) *snake.Node {
	t.Helper()

	n, err := snake.New(ctx, zerolog.Nop())
	if err != nil {
		t.Skipf("no local network: %v", err)
	}
	t.Cleanup(func() {
		if err := n.Close(); err != nil {
			t.Logf("close node: %v", err)
		}
	})

	return n
}

func TestSpectateBetweenNodes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	player := newNode(t, ctx)
	spectator := newNode(t, ctx)

	if err := spectator.Connect(ctx, player.AddrInfo()); err != nil {
		t.Fatal(err)
	}

	w, err := spectator.Watcher(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	grid := core.Grid{Width: 8, Height: 4, CellSize: 1}
	b := player.Broadcaster(ctx, "session", grid)
	defer b.Close()

	// The gossip mesh takes a moment to form, so keep rendering until the
	// first frame gets through.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	tick := uint64(0)
	for {
		select {
		case f, ok := <-w.Frames():
			if !ok {
				t.Fatalf("frames closed")
			}
			if f.From != player.ID() || f.Session != "session" || f.Grid != grid {
				t.Fatalf("got frame %+v from %s, want the player's session", f.Message, f.From)
			}
			return
		case <-ticker.C:
			tick++
			b.Render(core.Snapshot{Tick: tick, Body: []core.Coord{{X: 1, Y: 1}}})
		case <-ctx.Done():
			t.Fatalf("no frame received")
		}
	}
}

func TestHeartbeatBetweenNodes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := newNode(t, ctx)
	b := newNode(t, ctx)

	if err := a.Connect(ctx, b.AddrInfo()); err != nil {
		t.Fatal(err)
	}

	ch := make(chan heartbeat.PeerStatus)
	hb, err := a.Heartbeat(ctx, b.ID(), ch)
	if err != nil {
		t.Fatal(err)
	}
	defer hb.Close()

	select {
	case s := <-ch:
		if !s.Alive || s.Peer != b.ID() {
			t.Fatalf("got status %+v, want %s alive", s, b.ID())
		}
	case <-ctx.Done():
		t.Fatalf("no status reported")
	}
}
