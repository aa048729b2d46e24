package core

// Grid is the wrap-around playing field. Width and Height are in cells,
// CellSize is the size of one cell in drawing units of whatever renders it.
type Grid struct {
	Width    int
	Height   int
	CellSize int
}

func NewGrid(width, height, cellSize int) (Grid, error) {
	switch {
	case width <= 0:
		return Grid{}, &ConfigError{Field: "width", Err: ErrNonPositive}
	case height <= 0:
		return Grid{}, &ConfigError{Field: "height", Err: ErrNonPositive}
	case cellSize <= 0:
		return Grid{}, &ConfigError{Field: "cell_size", Err: ErrNonPositive}
	}

	return Grid{Width: width, Height: height, CellSize: cellSize}, nil
}

// Wrap maps c onto the torus. Both axes use Euclidean modulo, so the result
// always lies inside the grid, including for negative inputs.
func (g Grid) Wrap(c Coord) Coord {
	return Coord{X: mod(c.X, g.Width), Y: mod(c.Y, g.Height)}
}

func (g Grid) Contains(c Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

func (g Grid) Area() int {
	return g.Width * g.Height
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
