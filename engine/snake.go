package engine

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/kuredoro/snake/core"
)

type Snake struct {
	grid  core.Grid
	start core.Coord

	body     []core.Coord // head first
	growing  bool
	collided bool

	// mu guards direction and pending. Input may arrive from another
	// goroutine while the tick loop advances.
	mu        sync.Mutex
	direction core.Direction
	pending   core.Direction
}

func NewSnake(grid core.Grid, start core.Coord) *Snake {
	s := &Snake{
		grid:  grid,
		start: grid.Wrap(start),
	}
	s.Reset()

	return s
}

// Reset puts the snake back to a single cell at its start position, heading
// right, with nothing pending.
func (s *Snake) Reset() {
	s.mu.Lock()
	s.direction = core.Right
	s.pending = core.NoDirection
	s.mu.Unlock()

	s.body = []core.Coord{s.start}
	s.growing = false
	s.collided = false
}

// RequestDirection stores d to be applied on the next Advance. Invalid
// directions and reversals of the current direction are ignored. A later
// request overwrites an earlier one that has not been applied yet.
func (s *Snake) RequestDirection(d core.Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !d.Valid() || d == s.direction.Opposite() {
		return false
	}

	s.pending = d
	return true
}

// Grow makes the next Advance keep the tail.
func (s *Snake) Grow() {
	s.growing = true
}

// Advance moves the snake one cell. It reports OutcomeCollided, leaving the
// body as it was, if the new head lands on the body. The tail cell only
// counts as occupied when the snake is growing on this move.
func (s *Snake) Advance() core.Outcome {
	if s.collided {
		return core.OutcomeCollided
	}

	dir := s.applyPending()
	newHead := s.grid.Wrap(s.body[0].Step(dir))

	occupied := s.body
	if !s.growing {
		occupied = s.body[:len(s.body)-1]
	}
	if slices.Contains(occupied, newHead) {
		s.collided = true
		return core.OutcomeCollided
	}

	if s.growing {
		s.body = append(s.body, core.Coord{})
		s.growing = false
	}
	copy(s.body[1:], s.body[:len(s.body)-1])
	s.body[0] = newHead

	return core.OutcomeAlive
}

func (s *Snake) applyPending() core.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != core.NoDirection && s.pending != s.direction.Opposite() {
		s.direction = s.pending
	}
	s.pending = core.NoDirection

	return s.direction
}

func (s *Snake) Direction() core.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.direction
}

func (s *Snake) Head() core.Coord {
	return s.body[0]
}

// Body returns a copy of the occupied cells, head first.
func (s *Snake) Body() []core.Coord {
	body := make([]core.Coord, len(s.body))
	copy(body, s.body)
	return body
}

func (s *Snake) Len() int {
	return len(s.body)
}

func (s *Snake) Alive() bool {
	return !s.collided
}

func (s *Snake) Contains(c core.Coord) bool {
	return slices.Contains(s.body, c)
}

func (s *Snake) Cells() []core.Coord {
	return s.Body()
}

func (s *Snake) Color() core.Color {
	return core.ColorSnake
}
