package spectate

import (
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/kuredoro/snake/core"
)

// Topic carries every spectated session on the network. Sessions are told
// apart by Message.Session.
const Topic = "/snake/spectate/1.0.0"

// Message is one published frame. Seq grows by one with every rendered
// snapshot of a session, frames dropped on the sender leave gaps.
type Message struct {
	Session  string        `json:"session"`
	Seq      uint64        `json:"seq"`
	Grid     core.Grid     `json:"grid"`
	Snapshot core.Snapshot `json:"snapshot"`
}

// Frame is a message together with the peer that published it.
type Frame struct {
	From peer.ID
	Message
}
