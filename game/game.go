// File: game/game.go
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/lguibr/tetris/utils"
)

// RunState is the engine's lifecycle state.
type RunState uint8

const (
	Running RunState = iota
	Paused
	GameOver
)

var runStateNames = [...]string{"running", "paused", "gameOver"}

func (s RunState) String() string {
	if int(s) < len(runStateNames) {
		return runStateNames[s]
	}
	return fmt.Sprintf("RunState(%d)", uint8(s))
}

func (s RunState) MarshalText() ([]byte, error) {
	if int(s) >= len(runStateNames) {
		return nil, fmt.Errorf("unknown run state %d", uint8(s))
	}
	return []byte(runStateNames[s]), nil
}

func (s *RunState) UnmarshalText(text []byte) error {
	for i, name := range runStateNames {
		if name == string(text) {
			*s = RunState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown run state %q", string(text))
}

// GameState is a copy of everything a renderer needs.
type GameState struct {
	RunState     RunState      `json:"runState"`
	Score        int           `json:"score"`
	SpeedScale   float64       `json:"speedScale"`
	TickPeriod   time.Duration `json:"tickPeriod"`
	LastCleared  int           `json:"lastCleared"`
	PiecesLocked int           `json:"piecesLocked"`
	Board        [][]Cell      `json:"board"`
	Piece        []Block       `json:"piece,omitempty"`
	Shape        string        `json:"shape,omitempty"`
}

// Engine owns the grid, the active piece and the score. It is not safe for
// concurrent use; GameActor serializes access for timer and network drivers.
type Engine struct {
	cfg     utils.Config
	factory *PieceFactory

	grid  *Grid
	piece *Piece
	state RunState

	score        int
	lastCleared  int
	piecesLocked int
}

// NewEngine starts a game with a freshly spawned piece.
func NewEngine(cfg utils.Config, factory *PieceFactory) *Engine {
	if factory == nil {
		factory = NewPieceFactory(cfg.PieceSeed)
	}
	e := &Engine{cfg: cfg, factory: factory}
	e.reset()
	return e
}

func (e *Engine) reset() {
	e.grid = NewGrid()
	e.piece = nil
	e.state = Running
	e.score = 0
	e.lastCleared = 0
	e.piecesLocked = 0
	e.spawnNext()
}

func (e *Engine) spawnNext() {
	piece, err := e.factory.Spawn(e.grid)
	if err != nil {
		if !errors.Is(err, ErrSpawnBlocked) {
			panic(err)
		}
		e.gameOver()
		return
	}
	e.piece = piece
}

func (e *Engine) gameOver() {
	e.state = GameOver
	e.piece = nil
}

func (e *Engine) active() bool {
	return e.state == Running && e.piece != nil
}

func (e *Engine) fits(blocks [4]Block) bool {
	for _, b := range blocks {
		if e.grid.Blocked(b.Col, b.Row) {
			return false
		}
	}
	return true
}

func (e *Engine) shift(dcol int) {
	if !e.active() {
		return
	}
	if e.fits(e.piece.Translated(dcol, 0)) {
		e.piece.Translate(dcol, 0)
	}
}

func (e *Engine) MoveLeft()  { e.shift(-1) }
func (e *Engine) MoveRight() { e.shift(1) }

// Rotate turns the piece a quarter about its pivot when every moved block lands on a free cell.
func (e *Engine) Rotate() {
	if !e.active() || !e.piece.CanRotate() {
		return
	}
	if e.fits(e.piece.Rotated()) {
		e.piece.Rotate()
	}
}

// step moves the piece down one row, locking it when the row below is blocked.
// It reports whether a lock happened.
func (e *Engine) step() bool {
	if e.fits(e.piece.Translated(0, 1)) {
		e.piece.Translate(0, 1)
		return false
	}
	e.lock()
	return true
}

func (e *Engine) lock() {
	e.grid.Lock(e.piece.Cells())
	e.piece = nil
	e.piecesLocked++

	e.lastCleared = e.grid.ClearFullLines()
	e.score += e.lastCleared

	if e.grid.TopRowOccupied() {
		e.gameOver()
		return
	}
	e.spawnNext()
}

func (e *Engine) SoftDrop() {
	if !e.active() {
		return
	}
	e.step()
}

// HardDrop drops the piece until it locks.
func (e *Engine) HardDrop() {
	if !e.active() {
		return
	}
	for !e.step() {
	}
}

// Tick is the timer step: a top row check, then one soft drop.
func (e *Engine) Tick() {
	if !e.active() {
		return
	}
	if e.grid.TopRowOccupied() {
		e.gameOver()
		return
	}
	e.step()
}

func (e *Engine) TogglePause() {
	switch e.state {
	case Running:
		e.state = Paused
	case Paused:
		e.state = Running
	}
}

// Restart discards the board and score. It is the only way out of GameOver.
func (e *Engine) Restart() {
	e.reset()
}

// Apply dispatches a command. Unknown commands are ignored.
func (e *Engine) Apply(cmd Command) {
	switch cmd {
	case CmdMoveLeft:
		e.MoveLeft()
	case CmdMoveRight:
		e.MoveRight()
	case CmdRotate:
		e.Rotate()
	case CmdSoftDrop:
		e.SoftDrop()
	case CmdHardDrop:
		e.HardDrop()
	case CmdTogglePause:
		e.TogglePause()
	case CmdTick:
		e.Tick()
	case CmdRestart:
		e.Restart()
	}
}

func (e *Engine) RunState() RunState { return e.state }
func (e *Engine) Score() int         { return e.score }
func (e *Engine) LastCleared() int   { return e.lastCleared }
func (e *Engine) PiecesLocked() int  { return e.piecesLocked }

// SpeedScale grows by SpeedStep for every cleared line.
func (e *Engine) SpeedScale() float64 {
	return 1 + e.cfg.SpeedStep*float64(e.score)
}

// TickPeriod is the timer period a driver should use at the current speed.
func (e *Engine) TickPeriod() time.Duration {
	return e.cfg.TickPeriod(e.SpeedScale())
}

// SnapshotGrid returns a row-major copy of the board without the active piece.
func (e *Engine) SnapshotGrid() [][]Cell {
	return e.grid.Rows()
}

// SnapshotActivePiece returns false when no piece is in play.
func (e *Engine) SnapshotActivePiece() ([4]Block, bool) {
	if e.piece == nil {
		return [4]Block{}, false
	}
	return e.piece.Cells(), true
}

func (e *Engine) Snapshot() GameState {
	state := GameState{
		RunState:     e.state,
		Score:        e.score,
		SpeedScale:   e.SpeedScale(),
		TickPeriod:   e.TickPeriod(),
		LastCleared:  e.lastCleared,
		PiecesLocked: e.piecesLocked,
		Board:        e.SnapshotGrid(),
	}
	if blocks, ok := e.SnapshotActivePiece(); ok {
		state.Piece = blocks[:]
		state.Shape = e.piece.Shape()
	}
	return state
}
