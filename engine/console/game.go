package console

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/kuredoro/snake/core"
	"github.com/kuredoro/snake/engine"
)

// Result sums up everything played on one screen.
type Result struct {
	Rounds    int
	BestScore int
	Last      core.Snapshot
}

// Game runs sessions on a terminal screen until the player quits. After a
// collision Enter starts a new round and Esc leaves.
type Game struct {
	s        tcell.Screen
	sc       *engine.SessionContext
	session  *engine.Session
	renderer *Renderer
	newClock func() engine.Clock
}

// NewGame wires sc to draw on s. Renderers already set in sc keep getting
// every snapshot after the screen. newClock is called once per round.
func NewGame(s tcell.Screen, sc *engine.SessionContext, newClock func() engine.Clock) *Game {
	renderer := NewRenderer(s, sc.Grid)
	if sc.Renderer != nil {
		sc.Renderer = engine.MultiRenderer{renderer, sc.Renderer}
	} else {
		sc.Renderer = renderer
	}

	return &Game{
		s:        s,
		sc:       sc,
		session:  engine.NewSession(sc),
		renderer: renderer,
		newClock: newClock,
	}
}

func (g *Game) Run(ctx context.Context) (Result, error) {
	done := make(chan struct{})
	defer close(done)

	eventCh := make(chan tcell.Event)
	go func() {
		for {
			e := g.s.PollEvent()
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

	var res Result
	var cancel context.CancelFunc
	var roundCh chan core.Outcome

	startRound := func() {
		var roundCtx context.Context
		roundCtx, cancel = context.WithCancel(ctx)
		g.sc.Clock = g.newClock()
		roundCh = make(chan core.Outcome, 1)
		res.Rounds++

		go func(ch chan<- core.Outcome) {
			outcome, err := g.session.Run(roundCtx)
			if err != nil {
				log.Err(err).Str("session", g.session.ID()).Msg("Run session")
			}
			ch <- outcome
		}(roundCh)
	}

	stop := func() {
		if roundCh == nil {
			return
		}
		cancel()
		g.finishRound(&res, <-roundCh)
		roundCh = nil
	}

	startRound()
	for {
		select {
		case outcome := <-roundCh:
			cancel()
			roundCh = nil
			g.finishRound(&res, outcome)
			if outcome == core.OutcomeQuit {
				return res, ctx.Err()
			}
		case <-ctx.Done():
			stop()
			return res, ctx.Err()
		case ev, ok := <-eventCh:
			if !ok {
				stop()
				return res, nil
			}

			switch ev := ev.(type) {
			case *tcell.EventResize:
				g.s.Sync()
				g.renderer.Redraw()
			case *tcell.EventKey:
				cmd, dir := Translate(ev)
				switch cmd {
				case CmdQuit:
					stop()
					return res, nil
				case CmdDirection:
					if roundCh != nil {
						g.session.RequestDirection(dir)
					}
				case CmdRestart:
					if roundCh == nil {
						g.session.Reset()
						startRound()
					}
				}
			}
		}
	}
}

func (g *Game) finishRound(res *Result, outcome core.Outcome) {
	res.Last = g.session.Snapshot()
	if res.Last.Score > res.BestScore {
		res.BestScore = res.Last.Score
	}

	log.Info().
		Str("session", g.session.ID()).
		Str("outcome", outcome.String()).
		Int("score", res.Last.Score).
		Int("round", res.Rounds).
		Msg("Round finished")
}
