package engine

import (
	"reflect"
	"sync"
	"testing"

	"github.com/kuredoro/snake/core"
)

var testGrid = core.Grid{Width: 32, Height: 24, CellSize: 1}

func snakeWithBody(grid core.Grid, dir core.Direction, body ...core.Coord) *Snake {
	s := NewSnake(grid, body[0])
	s.body = append([]core.Coord(nil), body...)
	s.direction = dir
	return s
}

func assertBody(t *testing.T, got []core.Coord, want ...core.Coord) {
	t.Helper()

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got body %v, want %v", got, want)
	}
}

func TestSnakeAdvance(t *testing.T) {
	t.Run("moves right from the start cell", func(t *testing.T) {
		s := NewSnake(testGrid, core.Coord{X: 1, Y: 1})

		for i := 0; i < 3; i++ {
			if got := s.Advance(); got != core.OutcomeAlive {
				t.Fatalf("advance #%d: got %v, want alive", i+1, got)
			}
		}

		assertBody(t, s.Body(), core.Coord{X: 4, Y: 1})
	})

	t.Run("body slides without changing length", func(t *testing.T) {
		s := snakeWithBody(testGrid, core.Right,
			core.Coord{X: 5, Y: 5}, core.Coord{X: 4, Y: 5}, core.Coord{X: 3, Y: 5})

		s.Advance()

		assertBody(t, s.Body(),
			core.Coord{X: 6, Y: 5}, core.Coord{X: 5, Y: 5}, core.Coord{X: 4, Y: 5})
	})

	t.Run("grow keeps the tail", func(t *testing.T) {
		s := snakeWithBody(testGrid, core.Right,
			core.Coord{X: 5, Y: 5}, core.Coord{X: 4, Y: 5}, core.Coord{X: 3, Y: 5})

		s.Grow()
		s.Advance()

		assertBody(t, s.Body(),
			core.Coord{X: 6, Y: 5}, core.Coord{X: 5, Y: 5}, core.Coord{X: 4, Y: 5}, core.Coord{X: 3, Y: 5})

		s.Advance()
		if s.Len() != 4 {
			t.Fatalf("growth carried over to the next advance: length %d, want 4", s.Len())
		}
	})

	t.Run("wraps around the right edge", func(t *testing.T) {
		s := NewSnake(testGrid, core.Coord{X: 31, Y: 5})

		s.Advance()

		if got, want := s.Head(), (core.Coord{X: 0, Y: 5}); got != want {
			t.Fatalf("got head %v, want %v", got, want)
		}
	})

	t.Run("wraps around the top edge", func(t *testing.T) {
		s := NewSnake(testGrid, core.Coord{X: 3, Y: 0})
		s.RequestDirection(core.Up)

		s.Advance()

		if got, want := s.Head(), (core.Coord{X: 3, Y: 23}); got != want {
			t.Fatalf("got head %v, want %v", got, want)
		}
	})
}

func TestSnakeCollision(t *testing.T) {
	t.Run("head into body ends the snake and leaves the body alone", func(t *testing.T) {
		body := []core.Coord{{X: 2, Y: 2}, {X: 2, Y: 3}, {X: 3, Y: 3}, {X: 3, Y: 2}, {X: 4, Y: 2}}
		s := snakeWithBody(testGrid, core.Right, body...)

		if got := s.Advance(); got != core.OutcomeCollided {
			t.Fatalf("got %v, want collided", got)
		}
		assertBody(t, s.Body(), body...)

		if s.Alive() {
			t.Errorf("snake still alive after collision")
		}
		if got := s.Advance(); got != core.OutcomeCollided {
			t.Errorf("advance after collision: got %v, want collided", got)
		}
		assertBody(t, s.Body(), body...)
	})

	t.Run("tail cell counts as vacated when not growing", func(t *testing.T) {
		s := snakeWithBody(testGrid, core.Right,
			core.Coord{X: 2, Y: 2}, core.Coord{X: 2, Y: 3}, core.Coord{X: 3, Y: 3}, core.Coord{X: 3, Y: 2})

		if got := s.Advance(); got != core.OutcomeAlive {
			t.Fatalf("got %v, want alive", got)
		}
		assertBody(t, s.Body(),
			core.Coord{X: 3, Y: 2}, core.Coord{X: 2, Y: 2}, core.Coord{X: 2, Y: 3}, core.Coord{X: 3, Y: 3})
	})

	t.Run("tail cell is occupied when growing", func(t *testing.T) {
		s := snakeWithBody(testGrid, core.Right,
			core.Coord{X: 2, Y: 2}, core.Coord{X: 2, Y: 3}, core.Coord{X: 3, Y: 3}, core.Coord{X: 3, Y: 2})

		s.Grow()
		if got := s.Advance(); got != core.OutcomeCollided {
			t.Fatalf("got %v, want collided", got)
		}
	})

	t.Run("single cell on a one cell wide grid never collides", func(t *testing.T) {
		s := NewSnake(core.Grid{Width: 1, Height: 1, CellSize: 1}, core.Coord{})

		if got := s.Advance(); got != core.OutcomeAlive {
			t.Fatalf("got %v, want alive", got)
		}
	})
}

func TestSnakeRequestDirection(t *testing.T) {
	t.Run("reversal is rejected", func(t *testing.T) {
		s := NewSnake(testGrid, core.Coord{X: 5, Y: 5})

		if s.RequestDirection(core.Left) {
			t.Errorf("reversal request was accepted")
		}
		s.Advance()

		if s.Direction() != core.Right {
			t.Fatalf("got direction %v, want right", s.Direction())
		}
		if got, want := s.Head(), (core.Coord{X: 6, Y: 5}); got != want {
			t.Fatalf("got head %v, want %v", got, want)
		}
	})

	t.Run("invalid directions are rejected", func(t *testing.T) {
		s := NewSnake(testGrid, core.Coord{X: 5, Y: 5})

		for _, d := range []core.Direction{core.NoDirection, core.Direction(-1), core.Direction(9)} {
			if s.RequestDirection(d) {
				t.Errorf("request for %v was accepted", d)
			}
		}
	})

	t.Run("last request wins", func(t *testing.T) {
		s := NewSnake(testGrid, core.Coord{X: 5, Y: 5})

		s.RequestDirection(core.Up)
		s.RequestDirection(core.Down)
		s.Advance()

		if s.Direction() != core.Down {
			t.Fatalf("got direction %v, want down", s.Direction())
		}
		if got, want := s.Head(), (core.Coord{X: 5, Y: 6}); got != want {
			t.Fatalf("got head %v, want %v", got, want)
		}
	})

	t.Run("pending direction is consumed once", func(t *testing.T) {
		s := NewSnake(testGrid, core.Coord{X: 5, Y: 5})

		s.RequestDirection(core.Up)
		s.Advance()
		s.Advance()

		if got, want := s.Head(), (core.Coord{X: 5, Y: 3}); got != want {
			t.Fatalf("got head %v, want %v", got, want)
		}
		if s.pending != core.NoDirection {
			t.Fatalf("pending direction %v left after advance", s.pending)
		}
	})

	t.Run("stale reversal is dropped at apply time", func(t *testing.T) {
		s := NewSnake(testGrid, core.Coord{X: 5, Y: 5})
		s.pending = core.Left

		s.Advance()

		if s.Direction() != core.Right {
			t.Fatalf("got direction %v, want right", s.Direction())
		}
		if s.pending != core.NoDirection {
			t.Fatalf("rejected request was kept for the next tick")
		}
	})
}

func TestSnakeNoDuplicatesUntilCollision(t *testing.T) {
	rnd := NewSource(7)
	grid := core.Grid{Width: 8, Height: 6, CellSize: 1}
	s := NewSnake(grid, core.Coord{X: 1, Y: 1})

	dirs := []core.Direction{core.Up, core.Right, core.Down, core.Left}
	for i := 0; i < 1000; i++ {
		s.RequestDirection(dirs[rnd.Intn(len(dirs))])

		growing := rnd.Intn(3) == 0
		if growing {
			s.Grow()
		}

		before := s.Body()
		if s.Advance() == core.OutcomeCollided {
			assertBody(t, s.Body(), before...)
			return
		}

		want := len(before)
		if growing {
			want++
		}
		if s.Len() != want {
			t.Fatalf("step %d: got length %d, want %d", i, s.Len(), want)
		}

		seen := make(map[core.Coord]bool)
		for _, c := range s.Body() {
			if seen[c] {
				t.Fatalf("step %d: duplicate cell %v in %v", i, c, s.Body())
			}
			seen[c] = true
		}
	}
}

func TestSnakeReset(t *testing.T) {
	s := snakeWithBody(testGrid, core.Down,
		core.Coord{X: 5, Y: 5}, core.Coord{X: 4, Y: 5})
	s.start = core.Coord{X: 1, Y: 1}
	s.Grow()
	s.RequestDirection(core.Left)

	s.Reset()

	assertBody(t, s.Body(), core.Coord{X: 1, Y: 1})
	if s.Direction() != core.Right {
		t.Errorf("got direction %v, want right", s.Direction())
	}
	s.Advance()
	assertBody(t, s.Body(), core.Coord{X: 2, Y: 1})
}

func TestSnakeConcurrentRequests(t *testing.T) {
	s := NewSnake(testGrid, core.Coord{X: 5, Y: 5})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.RequestDirection(core.Direction(i%4 + 1))
		}
	}()

	for i := 0; i < 500; i++ {
		if s.Advance() == core.OutcomeCollided {
			break
		}
	}
	wg.Wait()
}
