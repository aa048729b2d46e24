package console

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/kuredoro/snake/core"
	"github.com/kuredoro/snake/engine"
)

var (
	boardStyle  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	borderStyle = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.NewRGBColor(93, 216, 228))
	snakeStyle  = tcell.StyleDefault.Background(tcell.NewRGBColor(0, 255, 0)).Foreground(tcell.ColorBlack)
	appleStyle  = tcell.StyleDefault.Background(tcell.NewRGBColor(255, 0, 0)).Foreground(tcell.ColorWhite)
	boxStyle    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorPurple)
)

var colorStyles = map[core.Color]tcell.Style{
	core.ColorBoard:  boardStyle,
	core.ColorBorder: borderStyle,
	core.ColorSnake:  snakeStyle,
	core.ColorApple:  appleStyle,
}

const (
	headRune  = '@'
	bodyRune  = ' '
	appleRune = '*'
)

type Boundary struct {
	TopLeft     core.Coord
	BottomRight core.Coord
}

// Renderer draws snapshots onto a tcell screen. Every grid cell takes
// CellSize columns and one row; the board is framed by a one cell border
// with a status line under it.
type Renderer struct {
	s     tcell.Screen
	grid  core.Grid
	bound Boundary

	mu   sync.Mutex
	last *core.Snapshot
}

func NewRenderer(s tcell.Screen, grid core.Grid) *Renderer {
	return &Renderer{
		s:    s,
		grid: grid,
		bound: Boundary{
			TopLeft:     core.Coord{X: 0, Y: 0},
			BottomRight: core.Coord{X: grid.Width*grid.CellSize + 1, Y: grid.Height + 1},
		},
	}
}

func (r *Renderer) Render(snap core.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.last = &snap
	r.draw(snap)
}

// Redraw repeats the last frame, e.g. after a resize.
func (r *Renderer) Redraw() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last != nil {
		r.draw(*r.last)
	}
}

func (r *Renderer) draw(snap core.Snapshot) {
	r.s.Clear()

	drawBox(r.s, r.bound, borderStyle, ' ', boardStyle)

	for _, d := range engine.Layers(snap) {
		style := colorStyles[d.Color()]
		for i, c := range d.Cells() {
			r.drawCell(c, cellRune(d.Color(), i), style)
		}
	}

	status := fmt.Sprintf("score %d  length %d", snap.Score, len(snap.Body))
	drawText(r.s, 0, r.bound.BottomRight.Y+1, r.bound.BottomRight.X, r.bound.BottomRight.Y+1, boardStyle, status)

	if snap.Outcome == core.OutcomeCollided {
		r.drawGameOver(snap.Score)
	}

	r.s.Show()
}

func cellRune(color core.Color, i int) rune {
	switch {
	case color == core.ColorApple:
		return appleRune
	case color == core.ColorSnake && i == 0:
		return headRune
	}
	return bodyRune
}

func (r *Renderer) drawCell(c core.Coord, ch rune, style tcell.Style) {
	if !r.grid.Contains(c) {
		return
	}

	x := 1 + c.X*r.grid.CellSize
	y := 1 + c.Y
	for i := 0; i < r.grid.CellSize; i++ {
		cell := ch
		if i > 0 {
			cell = ' '
		}
		r.s.SetContent(x+i, y, cell, nil, style)
	}
}

func (r *Renderer) drawGameOver(score int) {
	lines := []string{
		"Game over",
		fmt.Sprintf("Score: %d", score),
		"Enter: again",
		"Esc: quit",
	}

	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}

	w, h := width+2, len(lines)+2
	cx := (r.bound.TopLeft.X + r.bound.BottomRight.X) / 2
	cy := (r.bound.TopLeft.Y + r.bound.BottomRight.Y) / 2

	// Small boards get the box pinned to the top left corner.
	x1, y1 := max(0, cx-w/2), max(0, cy-h/2)
	box := Boundary{
		TopLeft:     core.Coord{X: x1, Y: y1},
		BottomRight: core.Coord{X: x1 + w - 1, Y: y1 + h - 1},
	}

	drawBox(r.s, box, boxStyle, ' ', boxStyle)
	for i, l := range lines {
		y := box.TopLeft.Y + 1 + i
		drawText(r.s, box.TopLeft.X+1, y, box.BottomRight.X, y, boxStyle, l)
	}
}

func drawText(s tcell.Screen, x1, y1, x2, y2 int, style tcell.Style, text string) {
	row := y1
	col := x1
	for _, r := range text {
		s.SetContent(col, row, r, nil, style)
		col++
		if col >= x2 {
			row++
			col = x1
		}
		if row > y2 {
			break
		}
	}
}

func drawBox(s tcell.Screen, boundary Boundary, style tcell.Style, fill rune, fillStyle tcell.Style) {
	x1, y1 := boundary.TopLeft.X, boundary.TopLeft.Y
	x2, y2 := boundary.BottomRight.X, boundary.BottomRight.Y
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	if x2 < x1 {
		x1, x2 = x2, x1
	}

	for row := y1 + 1; row < y2; row++ {
		for col := x1 + 1; col < x2; col++ {
			s.SetContent(col, row, fill, nil, fillStyle)
		}
	}

	for col := x1; col <= x2; col++ {
		s.SetContent(col, y1, tcell.RuneHLine, nil, style)
		s.SetContent(col, y2, tcell.RuneHLine, nil, style)
	}
	for row := y1 + 1; row < y2; row++ {
		s.SetContent(x1, row, tcell.RuneVLine, nil, style)
		s.SetContent(x2, row, tcell.RuneVLine, nil, style)
	}

	if y1 != y2 && x1 != x2 {
		s.SetContent(x1, y1, tcell.RuneULCorner, nil, style)
		s.SetContent(x2, y1, tcell.RuneURCorner, nil, style)
		s.SetContent(x1, y2, tcell.RuneLLCorner, nil, style)
		s.SetContent(x2, y2, tcell.RuneLRCorner, nil, style)
	}
}
