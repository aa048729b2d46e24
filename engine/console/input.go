package console

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kuredoro/snake/core"
)

type Command int

const (
	CmdNone Command = iota
	CmdDirection
	CmdRestart
	CmdQuit
)

var key2Dir = map[tcell.Key]core.Direction{
	tcell.KeyLeft:  core.Left,
	tcell.KeyRight: core.Right,
	tcell.KeyUp:    core.Up,
	tcell.KeyDown:  core.Down,
}

var rune2Dir = map[rune]core.Direction{
	'h': core.Left,
	'j': core.Down,
	'k': core.Up,
	'l': core.Right,
	'a': core.Left,
	's': core.Down,
	'w': core.Up,
	'd': core.Right,
}

// Translate maps a key press onto a game command. Directions come with the
// direction they ask for.
func Translate(ev *tcell.EventKey) (Command, core.Direction) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit, core.NoDirection
	case tcell.KeyEnter:
		return CmdRestart, core.NoDirection
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			return CmdQuit, core.NoDirection
		}
		if dir, ok := rune2Dir[ev.Rune()]; ok {
			return CmdDirection, dir
		}
		return CmdNone, core.NoDirection
	}

	if dir, ok := key2Dir[ev.Key()]; ok {
		return CmdDirection, dir
	}

	return CmdNone, core.NoDirection
}
