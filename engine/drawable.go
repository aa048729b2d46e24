package engine

import "github.com/kuredoro/snake/core"

// Drawable is anything that occupies cells on screen. Snake and Apple
// implement it for code holding the live entities; renderers only ever see
// snapshots and get the same drawables from Layers.
type Drawable interface {
	Cells() []core.Coord
	Color() core.Color
}

// Renderer receives one snapshot per tick. It must not keep the Body slice
// beyond the call unless it copies it.
type Renderer interface {
	Render(snap core.Snapshot)
}

// MultiRenderer forwards every snapshot to each of its renderers in order.
type MultiRenderer []Renderer

func (m MultiRenderer) Render(snap core.Snapshot) {
	for _, r := range m {
		r.Render(snap)
	}
}

type discardRenderer struct{}

func (discardRenderer) Render(core.Snapshot) {}

var (
	_ Drawable = (*Snake)(nil)
	_ Drawable = (*Apple)(nil)
)

type layer struct {
	cells []core.Coord
	color core.Color
}

func (l layer) Cells() []core.Coord { return l.cells }
func (l layer) Color() core.Color   { return l.color }

// Layers splits a snapshot into drawables, bottom first: the apple, then the
// snake. An apple under the body is therefore hidden.
func Layers(snap core.Snapshot) []Drawable {
	return []Drawable{
		layer{cells: []core.Coord{snap.Target}, color: core.ColorApple},
		layer{cells: snap.Body, color: core.ColorSnake},
	}
}
