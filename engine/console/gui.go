package console

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	welcome  = `Welcome to snake.`
	controls = `Arrows or hjkl to steer, Esc to quit. The edges wrap around.`
)

type Choice int

const (
	ChoiceQuit Choice = iota
	ChoicePlay
)

// Cover builds the start screen. choose is called once with what the
// player picked.
func Cover(choose func(Choice)) tview.Primitive {
	modal := tview.NewModal().
		SetText("Start a new game?").
		AddButtons([]string{"Play", "Quit"}).
		SetDoneFunc(func(index int, label string) {
			if label == "Play" {
				choose(ChoicePlay)
				return
			}
			choose(ChoiceQuit)
		})

	frame := tview.NewFrame(modal).
		SetBorders(0, 0, 0, 0, 0, 0).
		AddText(welcome, true, tview.AlignCenter, tcell.ColorGreen).
		AddText("", true, tview.AlignCenter, tcell.ColorWhite).
		AddText(controls, false, tview.AlignCenter, tcell.ColorDarkMagenta)

	return frame
}

// ShowCover runs the start screen on its own application and returns the
// choice once the player made it. Esc counts as quitting.
func ShowCover() (Choice, error) {
	app := tview.NewApplication()
	choice := ChoiceQuit

	choose := func(c Choice) {
		choice = c
		app.Stop()
	}

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Key() == tcell.KeyCtrlC {
			choose(ChoiceQuit)
			return nil
		}
		return event
	})

	if err := app.SetRoot(Cover(choose), true).EnableMouse(true).Run(); err != nil {
		return ChoiceQuit, err
	}

	return choice, nil
}
