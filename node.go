package snake

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	libp2p "github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	"github.com/libp2p/go-libp2p/p2p/protocol/ping"
	"github.com/rs/zerolog"

	"github.com/kuredoro/snake/core"
	"github.com/kuredoro/snake/protocol/heartbeat"
	"github.com/kuredoro/snake/protocol/spectate"
)

const ListenAddr = "/ip4/0.0.0.0/tcp/0"

// Node is this process on the local network: a libp2p host that finds
// other snake nodes over mDNS and shares the spectator topic with them.
type Node struct {
	h     host.Host
	ps    *pubsub.PubSub
	topic *pubsub.Topic
	ping  *ping.PingService
	mdns  mdns.Service
	log   zerolog.Logger
}

func New(ctx context.Context, logger zerolog.Logger) (*Node, error) {
	logger = logger.With().Str("component", "node").Logger()

	h, err := libp2p.New(libp2p.ListenAddrStrings(ListenAddr))
	if err != nil {
		return nil, fmt.Errorf("init libp2p host: %v", err)
	}
	logger.Info().
		Str("peer", h.ID().String()).
		Interface("addrs", h.Addrs()).
		Msg("Host started")

	n := &Node{
		h:    h,
		ping: ping.NewPingService(h),
		log:  logger,
	}

	n.mdns, err = setupDiscovery(h, logger)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("setup discovery: %v", err)
	}

	n.ps, err = pubsub.NewGossipSub(ctx, h)
	if err != nil {
		n.Close()
		return nil, fmt.Errorf("enable pubsub: %v", err)
	}

	n.topic, err = n.ps.Join(spectate.Topic)
	if err != nil {
		n.Close()
		return nil, fmt.Errorf("join topic %s: %v", spectate.Topic, err)
	}

	return n, nil
}

func (n *Node) ID() peer.ID {
	return n.h.ID()
}

func (n *Node) AddrInfo() peer.AddrInfo {
	return peer.AddrInfo{
		ID:    n.h.ID(),
		Addrs: n.h.Addrs(),
	}
}

// Connect dials a known peer directly, for networks without multicast.
func (n *Node) Connect(ctx context.Context, pi peer.AddrInfo) error {
	if err := n.h.Connect(ctx, pi); err != nil {
		return fmt.Errorf("connect to %s: %v", pi.ID.ShortString(), err)
	}

	return nil
}

// Broadcaster publishes the frames of one session. Close it before the
// node.
func (n *Node) Broadcaster(ctx context.Context, sessionID string, grid core.Grid) *spectate.Broadcaster {
	return spectate.NewBroadcaster(ctx, n.topic, sessionID, grid, n.log)
}

func (n *Node) Watcher(ctx context.Context) (*spectate.Watcher, error) {
	sub, err := n.topic.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %v", spectate.Topic, err)
	}

	return spectate.NewWatcher(ctx, sub, n.h.ID(), n.log), nil
}

func (n *Node) Heartbeat(ctx context.Context, p peer.ID, ch chan<- heartbeat.PeerStatus) (*heartbeat.Service, error) {
	hb, err := heartbeat.New(ctx, n.ping, p, ch, n.log)
	if err != nil {
		return nil, fmt.Errorf("watch peer %s: %v", p.ShortString(), err)
	}

	return hb, nil
}

func (n *Node) Close() error {
	var merr error

	if n.mdns != nil {
		if err := n.mdns.Close(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("stop discovery: %v", err))
		}
	}

	if err := n.h.Close(); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("close host: %v", err))
	}

	return merr
}
