package heartbeat

import (
	"context"
	"errors"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/protocol/ping"
	"github.com/rs/zerolog"
)

var Every = 1 * time.Second

type status int

const (
	unknown status = iota
	alive
	dead
)

type Pinger interface {
	Ping(ctx context.Context, p peer.ID) <-chan ping.Result
}

type PeerStatus struct {
	Peer  peer.ID
	Alive bool
}

// Service pings one peer every Every and reports when it comes alive or
// goes silent. Only changes are reported.
type Service struct {
	ctx    context.Context
	cancel func()
	done   chan struct{}

	ping  Pinger
	peer  peer.ID
	every time.Duration
	log   zerolog.Logger

	peerStatus status

	reportCh chan<- PeerStatus
}

func New(ctx context.Context, pinger Pinger, p peer.ID, outCh chan<- PeerStatus, logger zerolog.Logger) (*Service, error) {
	if pinger == nil {
		return nil, errors.New("ping service is nil")
	}

	localCtx, cancel := context.WithCancel(ctx)

	hb := &Service{
		ctx:    localCtx,
		cancel: cancel,
		done:   make(chan struct{}),

		ping:  pinger,
		peer:  p,
		every: Every,
		log:   logger.With().Str("component", "heartbeat").Str("peer", p.String()).Logger(),

		peerStatus: unknown,

		reportCh: outCh,
	}

	go hb.run()

	return hb, nil
}

func (h *Service) run() {
	defer close(h.done)

	pingCtx, cancelPing := context.WithTimeout(h.ctx, h.every)
	resCh := h.ping.Ping(pingCtx, h.peer)

	timer := time.NewTimer(h.every)
	defer timer.Stop()

	for {
		select {
		case <-h.ctx.Done():
			cancelPing()
			return
		case res, ok := <-resCh:
			// A nil channel blocks, so nothing more is read until the
			// next ping.
			resCh = nil
			// Closed without a result: the ping timed out or the stream
			// failed.
			if !ok {
				h.report(dead)
				continue
			}

			if res.Error != nil {
				h.log.Debug().Err(res.Error).Msg("Ping")
				h.report(dead)
				continue
			}
			h.report(alive)
		case <-timer.C:
			if resCh != nil {
				h.report(dead)
			}
			cancelPing()
			pingCtx, cancelPing = context.WithTimeout(h.ctx, h.every)
			resCh = h.ping.Ping(pingCtx, h.peer)
			timer.Reset(h.every)
		}
	}
}

func (h *Service) report(s status) {
	if h.peerStatus == s {
		return
	}
	h.peerStatus = s

	h.log.Info().Bool("alive", s == alive).Msg("Peer status changed")

	select {
	case h.reportCh <- PeerStatus{Peer: h.peer, Alive: s == alive}:
	case <-h.ctx.Done():
	}
}

func (h *Service) Close() {
	h.cancel()
	<-h.done
}
