package spectate

import (
	"context"
	"encoding/json"

	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/rs/zerolog"
)

type subscription interface {
	Next(ctx context.Context) (*pubsub.Message, error)
	Cancel()
}

// Watcher turns spectator topic messages into frames. Own messages, garbage
// and frames older than the last one seen for the same session are skipped.
type Watcher struct {
	ctx    context.Context
	cancel func()
	done   chan struct{}

	sub    subscription
	self   peer.ID
	frames chan Frame
	last   map[string]uint64
	log    zerolog.Logger
}

func NewWatcher(ctx context.Context, sub subscription, self peer.ID, logger zerolog.Logger) *Watcher {
	localCtx, cancel := context.WithCancel(ctx)

	w := &Watcher{
		ctx:    localCtx,
		cancel: cancel,
		done:   make(chan struct{}),
		sub:    sub,
		self:   self,
		frames: make(chan Frame, QueueSize),
		last:   make(map[string]uint64),
		log:    logger.With().Str("component", "watcher").Logger(),
	}

	go w.readLoop()

	return w
}

// Frames is closed when the subscription ends or the watcher is closed.
func (w *Watcher) Frames() <-chan Frame {
	return w.frames
}

func (w *Watcher) readLoop() {
	defer close(w.done)
	defer close(w.frames)

	for {
		msg, err := w.sub.Next(w.ctx)
		if err != nil {
			if w.ctx.Err() == nil {
				w.log.Err(err).Msg("Receive next message")
			}
			return
		}

		from := msg.GetFrom()
		if from == w.self {
			continue
		}

		var m Message
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			w.log.Warn().
				Str("peer", from.String()).
				Err(err).
				Msg("Unmarshal frame")
			continue
		}

		if last, seen := w.last[m.Session]; seen && m.Seq <= last {
			continue
		}
		w.last[m.Session] = m.Seq

		select {
		case w.frames <- Frame{From: from, Message: m}:
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) Close() {
	w.cancel()
	w.sub.Cancel()
	<-w.done
}
