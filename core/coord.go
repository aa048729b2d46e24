package core

import "fmt"

// Coord is a single grid cell. X is the column, Y is the row, and Y grows
// downward.
type Coord struct {
	X, Y int
}

func EqualCoord(a, b Coord) bool {
	return a.X == b.X && a.Y == b.Y
}

func (c Coord) Add(other Coord) Coord {
	return Coord{X: c.X + other.X, Y: c.Y + other.Y}
}

// Step returns the cell adjacent to c in direction d. The result is not
// wrapped.
func (c Coord) Step(d Direction) Coord {
	return c.Add(d.Delta())
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

type Direction int

const (
	NoDirection Direction = iota
	Up
	Right
	Down
	Left
)

var directionNames = map[Direction]string{
	NoDirection: "none",
	Up:          "up",
	Right:       "right",
	Down:        "down",
	Left:        "left",
}

// Valid reports whether d is one of the four unit directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return NoDirection
}

func (d Direction) Delta() Coord {
	switch d {
	case Up:
		return Coord{X: 0, Y: -1}
	case Down:
		return Coord{X: 0, Y: 1}
	case Left:
		return Coord{X: -1, Y: 0}
	case Right:
		return Coord{X: 1, Y: 0}
	}
	return Coord{}
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if d.Valid() && name == s {
			return d, nil
		}
	}
	return NoDirection, fmt.Errorf("parse direction %q: %w", s, ErrUnknownValue)
}
