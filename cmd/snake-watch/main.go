package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	snake "github.com/kuredoro/snake"
	"github.com/kuredoro/snake/config"
	"github.com/kuredoro/snake/core"
	"github.com/kuredoro/snake/engine/console"
	"github.com/kuredoro/snake/protocol/heartbeat"
	"github.com/kuredoro/snake/protocol/spectate"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Default()
	if err := cfg.LoadEnv(".env"); err != nil {
		printErr("load environment:", err)
		return 2
	}

	peerAddrFlag := flag.String("peer", "", "multiaddr of a player to connect to, mDNS is used otherwise")
	sessionFlag := flag.String("session", "", "only watch this session")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file, logs are discarded if empty")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		printErr("invalid configuration:", err)
		return 2
	}

	zerolog.SetGlobalLevel(cfg.Level())
	log.Logger = zerolog.New(io.Discard)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			printErr("open log:", err)
			return 1
		}
		defer f.Close()
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	node, err := snake.New(ctx, log.Logger)
	if err != nil {
		printErr("init node:", err)
		return 1
	}
	defer func() {
		if err := node.Close(); err != nil {
			log.Err(err).Msg("Close node")
		}
	}()

	if *peerAddrFlag != "" {
		pi, err := peer.AddrInfoFromString(*peerAddrFlag)
		if err != nil {
			printErr("parse peer p2p multiaddr:", err)
			return 2
		}
		if err := node.Connect(ctx, *pi); err != nil {
			printErr("connect:", err)
			return 1
		}
	}

	w, err := node.Watcher(ctx)
	if err != nil {
		printErr("watch:", err)
		return 1
	}
	defer w.Close()

	s, err := tcell.NewScreen()
	if err != nil {
		printErr("create screen:", err)
		return 1
	}
	if err := s.Init(); err != nil {
		printErr("init screen:", err)
		return 1
	}

	v := &viewer{
		s:       s,
		node:    node,
		session: *sessionFlag,
		status:  make(chan heartbeat.PeerStatus),
	}
	last, reason := v.watch(ctx, w.Frames())
	v.close()
	s.Fini()

	if last == nil {
		cfmt.Printf("{{%s}}::lightYellow\n", reason)
		return 0
	}
	cfmt.Printf("{{%s.}}::lightYellow Last seen score {{%d}}::bold at tick %d\n",
		reason, last.Snapshot.Score, last.Snapshot.Tick)
	return 0
}

// viewer draws the first session it sees, or the one it was asked for, and
// keeps an eye on the player publishing it.
type viewer struct {
	s        tcell.Screen
	node     *snake.Node
	session  string
	renderer *console.Renderer
	grid     core.Grid
	hb       *heartbeat.Service
	status   chan heartbeat.PeerStatus
}

func (v *viewer) watch(ctx context.Context, frames <-chan spectate.Frame) (*spectate.Frame, string) {
	done := make(chan struct{})
	defer close(done)

	eventCh := make(chan tcell.Event)
	go func() {
		for {
			e := v.s.PollEvent()
			if e == nil {
				close(eventCh)
				return
			}
			select {
			case eventCh <- e:
			case <-done:
				return
			}
		}
	}()

	var last *spectate.Frame
	for {
		select {
		case <-ctx.Done():
			return last, "Interrupted"
		case f, ok := <-frames:
			if !ok {
				return last, "Feed closed"
			}
			if !v.accept(ctx, f) {
				continue
			}
			last = &f
			v.renderer.Render(f.Snapshot)
		case st := <-v.status:
			if !st.Alive {
				return last, "Player left"
			}
		case ev, ok := <-eventCh:
			if !ok {
				return last, "Screen closed"
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				v.s.Sync()
				if v.renderer != nil {
					v.renderer.Redraw()
				}
			case *tcell.EventKey:
				if cmd, _ := console.Translate(ev); cmd == console.CmdQuit {
					return last, "Stopped watching"
				}
			}
		}
	}
}

// accept locks onto a session with its first frame.
func (v *viewer) accept(ctx context.Context, f spectate.Frame) bool {
	if v.session != "" && f.Session != v.session {
		return false
	}

	if v.renderer == nil || f.Grid != v.grid {
		v.grid = f.Grid
		v.renderer = console.NewRenderer(v.s, f.Grid)
	}

	if v.session == "" {
		v.session = f.Session
		log.Info().Str("session", f.Session).Str("peer", f.From.String()).Msg("Watching")
	}

	if v.hb == nil {
		hb, err := v.node.Heartbeat(ctx, f.From, v.status)
		if err != nil {
			log.Err(err).Msg("Start heartbeat")
		} else {
			v.hb = hb
		}
	}

	return true
}

func (v *viewer) close() {
	if v.hb != nil {
		v.hb.Close()
	}
}

func printErr(m string, args ...interface{}) {
	if len(args) == 0 {
		panic("printErr: no arguments passed")
	}

	err := args[len(args)-1]

	header := m
	if len(args) > 1 {
		header = fmt.Sprintf(m, args[:len(args)-1]...)
	}

	cfmt.Printf("{{error:}}::lightRed|bold %s %v\n", header, err)
}
