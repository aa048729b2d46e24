package engine

import (
	"fmt"

	"github.com/kuredoro/snake/core"
)

// Placement decides which cells the apple may be dropped on.
type Placement int

const (
	// PlaceAnywhere draws from the whole grid. The apple may land under the
	// snake and stays out of reach until the body moves off it.
	PlaceAnywhere Placement = iota
	// PlaceAvoidBody draws only from cells the snake does not occupy.
	PlaceAvoidBody
)

func (p Placement) String() string {
	switch p {
	case PlaceAnywhere:
		return "anywhere"
	case PlaceAvoidBody:
		return "avoid-body"
	}
	return fmt.Sprintf("placement(%d)", int(p))
}

func ParsePlacement(s string) (Placement, error) {
	switch s {
	case "anywhere":
		return PlaceAnywhere, nil
	case "avoid-body":
		return PlaceAvoidBody, nil
	}
	return PlaceAnywhere, fmt.Errorf("parse placement %q: %w", s, core.ErrUnknownValue)
}

type Apple struct {
	grid     core.Grid
	rnd      Source
	policy   Placement
	position core.Coord
}

// NewApple places the apple right away. occupied is what the snake covers
// at that moment.
func NewApple(grid core.Grid, rnd Source, policy Placement, occupied []core.Coord) *Apple {
	a := &Apple{
		grid:   grid,
		rnd:    rnd,
		policy: policy,
	}
	a.Relocate(occupied)

	return a
}

// Relocate moves the apple to a fresh random cell and returns it. occupied
// is only consulted under PlaceAvoidBody; if it covers the whole grid the
// draw falls back to the unconstrained one.
func (a *Apple) Relocate(occupied []core.Coord) core.Coord {
	if a.policy == PlaceAvoidBody {
		if c, ok := a.drawFree(occupied); ok {
			a.position = c
			return c
		}
	}

	a.position = core.Coord{
		X: a.rnd.Intn(a.grid.Width),
		Y: a.rnd.Intn(a.grid.Height),
	}
	return a.position
}

// drawFree picks the n-th free cell in row-major order, n uniform over the
// number of free cells.
func (a *Apple) drawFree(occupied []core.Coord) (core.Coord, bool) {
	taken := make(map[core.Coord]struct{}, len(occupied))
	for _, c := range occupied {
		taken[a.grid.Wrap(c)] = struct{}{}
	}

	free := a.grid.Area() - len(taken)
	if free <= 0 {
		return core.Coord{}, false
	}

	n := a.rnd.Intn(free)
	for y := 0; y < a.grid.Height; y++ {
		for x := 0; x < a.grid.Width; x++ {
			c := core.Coord{X: x, Y: y}
			if _, ok := taken[c]; ok {
				continue
			}
			if n == 0 {
				return c, true
			}
			n--
		}
	}

	return core.Coord{}, false
}

func (a *Apple) Position() core.Coord {
	return a.position
}

func (a *Apple) Cells() []core.Coord {
	return []core.Coord{a.position}
}

func (a *Apple) Color() core.Color {
	return core.ColorApple
}
