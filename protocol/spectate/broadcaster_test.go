package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/rs/zerolog"

	"github.com/kuredoro/snake/core"
)

type fakeTopic struct {
	mu        sync.Mutex
	published []Message
	err       error

	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *fakeTopic) Publish(ctx context.Context, data []byte, opts ...pubsub.PubOpt) error {
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	if f.release != nil {
		<-f.release
	}

	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.published = append(f.published, m)
	return f.err
}

func (f *fakeTopic) seqs() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	seqs := make([]uint64, len(f.published))
	for i, m := range f.published {
		seqs[i] = m.Seq
	}
	return seqs
}

func snapshotAt(tick uint64) core.Snapshot {
	return core.Snapshot{
		Tick:   tick,
		Body:   []core.Coord{{X: int(tick), Y: 0}},
		Target: core.Coord{X: 3, Y: 3},
	}
}

var testGrid = core.Grid{Width: 8, Height: 4, CellSize: 1}

func TestBroadcasterPublishesInOrder(t *testing.T) {
	topic := &fakeTopic{}
	b := NewBroadcaster(context.Background(), topic, "s1", testGrid, zerolog.Nop())

	for i := uint64(1); i <= 5; i++ {
		b.Render(snapshotAt(i))
	}

	if err := b.Close(); err != nil {
		t.Fatalf("got error %v, want nil", err)
	}

	seqs := topic.seqs()
	if len(seqs) != 5 {
		t.Fatalf("got %d frames published, want 5", len(seqs))
	}
	for i, seq := range seqs {
		if seq != uint64(i+1) {
			t.Fatalf("got sequence %v, want 1..5", seqs)
		}
	}

	last := topic.published[4]
	if last.Session != "s1" || last.Grid != testGrid || last.Snapshot.Tick != 5 {
		t.Errorf("got message %+v, want session s1, tick 5 on the test grid", last)
	}
	if head := last.Snapshot.Head(); head != (core.Coord{X: 5, Y: 0}) {
		t.Errorf("got head %v, want (5, 0)", head)
	}
}

func TestBroadcasterDropsOldest(t *testing.T) {
	topic := &fakeTopic{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	b := NewBroadcaster(context.Background(), topic, "s1", testGrid, zerolog.Nop())

	// The first frame is held by the publisher, the rest pile up.
	b.Render(snapshotAt(1))
	<-topic.started

	extra := 3
	for i := 2; i <= QueueSize+1+extra; i++ {
		b.Render(snapshotAt(uint64(i)))
	}

	if got := b.Dropped(); got != extra {
		t.Errorf("got %d dropped, want %d", got, extra)
	}

	close(topic.release)
	if err := b.Close(); err != nil {
		t.Fatalf("got error %v, want nil", err)
	}

	seqs := topic.seqs()
	if len(seqs) != QueueSize+1 {
		t.Fatalf("got %d frames published, want %d", len(seqs), QueueSize+1)
	}
	if seqs[0] != 1 || seqs[1] != uint64(2+extra) || seqs[len(seqs)-1] != uint64(QueueSize+1+extra) {
		t.Errorf("got sequence %v, want 1 followed by the newest frames", seqs)
	}
}

func TestBroadcasterCloseReportsErrors(t *testing.T) {
	topic := &fakeTopic{err: errors.New("no peers")}
	b := NewBroadcaster(context.Background(), topic, "s1", testGrid, zerolog.Nop())

	b.Render(snapshotAt(1))
	b.Render(snapshotAt(2))

	if err := b.Close(); err == nil {
		t.Fatalf("got nil error, want publish failures")
	}
}

func TestBroadcasterIgnoresRenderAfterClose(t *testing.T) {
	topic := &fakeTopic{}
	b := NewBroadcaster(context.Background(), topic, "s1", testGrid, zerolog.Nop())

	b.Render(snapshotAt(1))
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	b.Render(snapshotAt(2))
	if err := b.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if seqs := topic.seqs(); len(seqs) != 1 {
		t.Fatalf("got sequence %v, want only the frame before close", seqs)
	}
}
