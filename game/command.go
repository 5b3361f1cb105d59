package game

import (
	"fmt"

	"github.com/lguibr/tetris/utils"
)

// Command is one discrete input delivered to the Engine.
type Command uint8

const (
	CmdNone Command = iota
	CmdMoveLeft
	CmdMoveRight
	CmdRotate
	CmdSoftDrop
	CmdHardDrop
	CmdTogglePause
	CmdTick
	CmdRestart
)

var commandNames = [...]string{"none", "moveLeft", "moveRight", "rotate", "softDrop", "hardDrop", "togglePause", "tick", "restart"}

func (c Command) String() string {
	if int(c) < len(commandNames) {
		return commandNames[c]
	}
	return fmt.Sprintf("Command(%d)", uint8(c))
}

func (c Command) MarshalText() ([]byte, error) {
	if int(c) >= len(commandNames) {
		return nil, fmt.Errorf("unknown command %d", uint8(c))
	}
	return []byte(commandNames[c]), nil
}

func (c *Command) UnmarshalText(text []byte) error {
	for i, name := range commandNames {
		if name == string(text) {
			*c = Command(i)
			return nil
		}
	}
	return fmt.Errorf("unknown command %q", string(text))
}

// CommandFromKey maps a key name to a command. Arrows move and rotate,
// space hard-drops, P pauses and R restarts.
func CommandFromKey(key string) (Command, bool) {
	switch utils.KeyFromString(key) {
	case "ArrowLeft":
		return CmdMoveLeft, true
	case "ArrowRight":
		return CmdMoveRight, true
	case "ArrowUp":
		return CmdRotate, true
	case "ArrowDown":
		return CmdSoftDrop, true
	case " ":
		return CmdHardDrop, true
	case "p":
		return CmdTogglePause, true
	case "r":
		return CmdRestart, true
	}
	return CmdNone, false
}
