package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kuredoro/snake/core"
)

// Mode selects how eating relates to growing.
type Mode int

const (
	// ModeGrow grows the snake by one cell per apple.
	ModeGrow Mode = iota
	// ModeFixedLength grows the snake to FixedLength on its own and never
	// grows it on eating. Apples still count towards the score.
	ModeFixedLength
)

const DefaultFixedLength = 5

func (m Mode) String() string {
	switch m {
	case ModeGrow:
		return "grow"
	case ModeFixedLength:
		return "fixed"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "grow":
		return ModeGrow, nil
	case "fixed":
		return ModeFixedLength, nil
	}
	return ModeGrow, fmt.Errorf("parse mode %q: %w", s, core.ErrUnknownValue)
}

type Options struct {
	Start       core.Coord
	Mode        Mode
	FixedLength int
	Placement   Placement
}

func DefaultOptions() Options {
	return Options{
		Start:       core.Coord{X: 1, Y: 1},
		Mode:        ModeGrow,
		FixedLength: DefaultFixedLength,
		Placement:   PlaceAnywhere,
	}
}

// SessionContext holds what a session needs from the outside world. Build
// one per session; nil Renderer and Logger fields get harmless defaults in
// NewSession.
type SessionContext struct {
	ID       string
	Grid     core.Grid
	Rand     Source
	Renderer Renderer
	Clock    Clock
	Logger   zerolog.Logger
	Options  Options
}

func NewSessionContext(grid core.Grid, seed int64, opts Options) *SessionContext {
	id := uuid.New().String()

	return &SessionContext{
		ID:       id,
		Grid:     grid,
		Rand:     NewSource(seed),
		Renderer: discardRenderer{},
		Logger:   log.Logger.With().Str("session", id).Logger(),
		Options:  opts,
	}
}

type Session struct {
	sc    *SessionContext
	log   zerolog.Logger
	snake *Snake
	apple *Apple

	tick    uint64
	score   int
	outcome core.Outcome
}

func NewSession(sc *SessionContext) *Session {
	if sc.Renderer == nil {
		sc.Renderer = discardRenderer{}
	}
	if sc.Options.Mode == ModeFixedLength && sc.Options.FixedLength < 1 {
		sc.Options.FixedLength = DefaultFixedLength
	}

	snake := NewSnake(sc.Grid, sc.Options.Start)

	return &Session{
		sc:    sc,
		log:   sc.Logger,
		snake: snake,
		apple: NewApple(sc.Grid, sc.Rand, sc.Options.Placement, snake.Body()),
	}
}

// RequestDirection is safe to call from an input goroutine.
func (s *Session) RequestDirection(d core.Direction) bool {
	return s.snake.RequestDirection(d)
}

// Tick runs one simulation step: move, then collision, then eating, then
// render. Once the session has ended Tick does nothing and returns the
// final outcome.
func (s *Session) Tick() core.Outcome {
	if s.outcome.Ended() {
		return s.outcome
	}

	if s.sc.Options.Mode == ModeFixedLength && s.snake.Len() < s.sc.Options.FixedLength {
		s.snake.Grow()
	}

	s.tick++
	if s.snake.Advance() == core.OutcomeCollided {
		s.end(core.OutcomeCollided)
		return s.outcome
	}

	if core.EqualCoord(s.snake.Head(), s.apple.Position()) {
		s.score++
		if s.sc.Options.Mode == ModeGrow {
			s.snake.Grow()
		}
		at := s.apple.Relocate(s.snake.Body())

		s.log.Debug().
			Uint64("tick", s.tick).
			Int("score", s.score).
			Str("next_apple", at.String()).
			Msg("Apple eaten")
	}

	s.sc.Renderer.Render(s.Snapshot())
	return core.OutcomeAlive
}

// Run ticks the session on its clock until the snake collides or ctx is
// done. Cancelling ctx ends the session with OutcomeQuit.
func (s *Session) Run(ctx context.Context) (core.Outcome, error) {
	if s.sc.Clock == nil {
		return s.outcome, fmt.Errorf("run session %s: no clock", s.sc.ID)
	}
	defer s.sc.Clock.Stop()

	s.log.Info().
		Int("width", s.sc.Grid.Width).
		Int("height", s.sc.Grid.Height).
		Str("mode", s.sc.Options.Mode.String()).
		Str("placement", s.sc.Options.Placement.String()).
		Msg("Session started")

	s.sc.Renderer.Render(s.Snapshot())

	for !s.outcome.Ended() {
		select {
		case <-ctx.Done():
			s.end(core.OutcomeQuit)
		case <-s.sc.Clock.C():
			s.Tick()
		}
	}

	return s.outcome, nil
}

func (s *Session) end(outcome core.Outcome) {
	s.outcome = outcome

	s.log.Info().
		Str("outcome", outcome.String()).
		Uint64("tick", s.tick).
		Int("score", s.score).
		Int("length", s.snake.Len()).
		Msg("Session ended")

	s.sc.Renderer.Render(s.Snapshot())
}

// Reset starts a new session in place: fresh snake, fresh apple, zeroed
// counters.
func (s *Session) Reset() {
	s.snake.Reset()
	s.apple.Relocate(s.snake.Body())
	s.tick = 0
	s.score = 0
	s.outcome = core.OutcomeAlive

	s.log.Info().Msg("Session reset")
}

func (s *Session) Snapshot() core.Snapshot {
	return core.Snapshot{
		Tick:    s.tick,
		Body:    s.snake.Body(),
		Target:  s.apple.Position(),
		Score:   s.score,
		Outcome: s.outcome,
	}
}

func (s *Session) ID() string {
	return s.sc.ID
}

func (s *Session) Grid() core.Grid {
	return s.sc.Grid
}

func (s *Session) Outcome() core.Outcome {
	return s.outcome
}

func (s *Session) Score() int {
	return s.score
}

func (s *Session) Ticks() uint64 {
	return s.tick
}

func (s *Session) Snake() *Snake {
	return s.snake
}

func (s *Session) Apple() *Apple {
	return s.apple
}
