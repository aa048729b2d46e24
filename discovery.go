package snake

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/rs/zerolog"
)

// DiscoveryTag is the mDNS service name snake nodes announce.
const DiscoveryTag = "snake-spectate"

const connectTimeout = 10 * time.Second

type discoveryNotifee struct {
	h   host.Host
	log zerolog.Logger
}

func (n *discoveryNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if pi.ID == n.h.ID() {
		return
	}

	n.log.Debug().Str("peer", pi.ID.String()).Msg("Discovered")

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := n.h.Connect(ctx, pi); err != nil {
		n.log.Warn().
			Str("peer", pi.ID.String()).
			Err(err).
			Msg("Connect to discovered peer")
		return
	}

	n.log.Info().
		Str("peer", pi.ID.String()).
		Interface("addrs", n.h.Peerstore().PeerInfo(pi.ID).Addrs).
		Msg("Connected")
}

func setupDiscovery(h host.Host, logger zerolog.Logger) (mdns.Service, error) {
	s := mdns.NewMdnsService(h, DiscoveryTag, &discoveryNotifee{h: h, log: logger})
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}
