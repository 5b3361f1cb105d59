package terminal

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/lguibr/tetris/game"
)

// KeyName converts a key event to the key names game.CommandFromKey expects.
// quit is set for q, Esc and Ctrl-C.
func KeyName(ev *tcell.EventKey) (key string, quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return "", true
	case tcell.KeyLeft:
		return "ArrowLeft", false
	case tcell.KeyRight:
		return "ArrowRight", false
	case tcell.KeyUp:
		return "ArrowUp", false
	case tcell.KeyDown:
		return "ArrowDown", false
	case tcell.KeyRune:
		r := unicode.ToLower(ev.Rune())
		if r == 'q' {
			return "", true
		}
		return string(r), false
	}
	return "", false
}

// CommandForEvent maps a key event straight to a command.
func CommandForEvent(ev *tcell.EventKey) (cmd game.Command, ok bool, quit bool) {
	key, quit := KeyName(ev)
	if quit {
		return game.CmdNone, false, true
	}
	cmd, ok = game.CommandFromKey(key)
	return cmd, ok, false
}
