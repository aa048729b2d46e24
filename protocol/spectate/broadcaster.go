package spectate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/rs/zerolog"

	"github.com/kuredoro/snake/core"
	"github.com/kuredoro/snake/engine"
)

// QueueSize is how many frames may wait for publishing. When the network
// falls behind the oldest frame is dropped.
const QueueSize = 16

// maxErrors caps the publish failures kept for Close.
const maxErrors = 8

type publisher interface {
	Publish(ctx context.Context, data []byte, opts ...pubsub.PubOpt) error
}

var _ engine.Renderer = (*Broadcaster)(nil)

// Broadcaster publishes every snapshot it renders to the spectator topic.
// Render never blocks on the network.
type Broadcaster struct {
	ctx     context.Context
	cancel  func()
	stop    chan struct{}
	done    chan struct{}
	wake    chan struct{}
	topic   publisher
	session string
	grid    core.Grid
	log     zerolog.Logger

	mu      sync.Mutex
	queue   [][]byte
	seq     uint64
	dropped int
	closed  bool
	err     error
	nerr    int
}

func NewBroadcaster(ctx context.Context, topic publisher, session string, grid core.Grid, logger zerolog.Logger) *Broadcaster {
	localCtx, cancel := context.WithCancel(ctx)

	b := &Broadcaster{
		ctx:     localCtx,
		cancel:  cancel,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		wake:    make(chan struct{}, 1),
		topic:   topic,
		session: session,
		grid:    grid,
		log:     logger.With().Str("component", "broadcaster").Str("session", session).Logger(),
	}

	go b.publishLoop()

	return b
}

func (b *Broadcaster) Render(snap core.Snapshot) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	b.seq++
	data, err := json.Marshal(Message{
		Session:  b.session,
		Seq:      b.seq,
		Grid:     b.grid,
		Snapshot: snap,
	})
	if err != nil {
		b.recordErr(fmt.Errorf("marshal frame %d: %v", b.seq, err))
		b.mu.Unlock()
		return
	}

	if len(b.queue) == QueueSize {
		b.queue = b.queue[1:]
		b.dropped++
	}
	b.queue = append(b.queue, data)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Dropped is the number of frames that never made it out of the queue.
func (b *Broadcaster) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.dropped
}

func (b *Broadcaster) publishLoop() {
	defer close(b.done)

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-b.wake:
			b.flush()
		case <-b.stop:
			// The last frames are usually the interesting ones, e.g. the
			// collision.
			b.flush()
			return
		}
	}
}

func (b *Broadcaster) flush() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		data := b.queue[0]
		b.queue = b.queue[1:]
		b.mu.Unlock()

		if err := b.topic.Publish(b.ctx, data); err != nil {
			if b.ctx.Err() != nil {
				return
			}

			b.log.Warn().Err(err).Msg("Publish frame")

			b.mu.Lock()
			b.recordErr(fmt.Errorf("publish frame: %v", err))
			b.mu.Unlock()
		}
	}
}

// recordErr must be called with mu held.
func (b *Broadcaster) recordErr(err error) {
	if b.nerr < maxErrors {
		b.err = multierror.Append(b.err, err)
	}
	b.nerr++
}

// Close publishes whatever is still queued, stops the broadcaster and
// returns the errors it ran into. Frames rendered after Close are ignored.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	close(b.stop)
	<-b.done
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.dropped > 0 {
		b.log.Info().Int("dropped", b.dropped).Msg("Frames dropped")
	}
	if b.nerr > maxErrors {
		b.err = multierror.Append(b.err, fmt.Errorf("%d more errors", b.nerr-maxErrors))
	}

	return b.err
}
