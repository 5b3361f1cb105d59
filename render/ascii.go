package render

import (
	"fmt"
	"strings"

	"github.com/lguibr/tetris/game"
)

const (
	resetCode   = "\033[0m"
	filledCell  = "[]"
	emptyCell   = " ."
	gameOverMsg = "GAME OVER - press R to restart"
	pausedMsg   = "PAUSED - press P to resume"
)

// rgbToAnsi converts a color to an ANSI truecolor foreground escape code.
func rgbToAnsi(color game.Color) string {
	rgb := color.RGB()
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", rgb[0], rgb[1], rgb[2])
}

// Compose overlays the active piece on a copy of the board.
func Compose(state game.GameState) [][]game.Cell {
	board := make([][]game.Cell, len(state.Board))
	for row := range state.Board {
		board[row] = append([]game.Cell(nil), state.Board[row]...)
	}
	for _, b := range state.Piece {
		if b.Row >= 0 && b.Row < len(board) && b.Col >= 0 && b.Col < len(board[b.Row]) {
			board[b.Row][b.Col] = game.Occupied(b.Color)
		}
	}
	return board
}

// StatusLine summarizes score, speed and run state.
func StatusLine(state game.GameState) string {
	line := fmt.Sprintf("Score: %d  Speed: x%.1f", state.Score, state.SpeedScale)
	switch state.RunState {
	case game.Paused:
		line += "  " + pausedMsg
	case game.GameOver:
		line += "  " + gameOverMsg
	}
	return line
}

// RenderToASCII draws the board two characters per cell followed by the
// status line. With color set, occupied cells carry ANSI truecolor codes.
func RenderToASCII(state game.GameState, color bool) string {
	var ascii strings.Builder
	for _, row := range Compose(state) {
		for _, cell := range row {
			if !cell.Occupied {
				ascii.WriteString(emptyCell)
				continue
			}
			if color {
				ascii.WriteString(rgbToAnsi(cell.Color) + filledCell + resetCode)
			} else {
				ascii.WriteString(filledCell)
			}
		}
		ascii.WriteString("\n")
	}
	ascii.WriteString(StatusLine(state))
	ascii.WriteString("\n")
	return ascii.String()
}
