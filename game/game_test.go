package game

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/lguibr/tetris/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine spawns the named shapes in order, cycling when exhausted.
func newTestEngine(t *testing.T, names ...string) *Engine {
	t.Helper()
	shapes := make([]Shape, 0, len(names))
	for _, name := range names {
		shape := ShapeByName(name)
		require.NotNil(t, shape, "unknown shape %s", name)
		shapes = append(shapes, *shape)
	}
	next := 0
	factory := NewPieceFactoryWithPicker(shapes, func(n int) int {
		i := next % n
		next++
		return i
	})
	return NewEngine(utils.DefaultConfig(), factory)
}

func activeCells(t *testing.T, e *Engine) [4][2]int {
	t.Helper()
	blocks, ok := e.SnapshotActivePiece()
	require.True(t, ok, "expected an active piece")
	return positions(blocks)
}

func assertPieceInPlayfield(t *testing.T, e *Engine) {
	t.Helper()
	blocks, ok := e.SnapshotActivePiece()
	require.True(t, ok)
	for _, b := range blocks {
		assert.False(t, IsBorder(b.Col, b.Row), "block (%d,%d) inside the wall", b.Col, b.Row)
		assert.False(t, e.grid.IsOccupied(b.Col, b.Row), "block (%d,%d) overlaps the grid", b.Col, b.Row)
	}
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t, "T")

	assert.Equal(t, Running, e.RunState())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 1.0, e.SpeedScale())
	assert.Equal(t, time.Second, e.TickPeriod())
	assert.Equal(t, ShapeByName("T").Cells, activeCells(t, e))
	assert.Equal(t, NewGrid().OccupiedCount(), e.grid.OccupiedCount(), "active piece is not part of the grid")
}

func TestNewEngine_DefaultFactory(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.PieceSeed = 7
	e := NewEngine(cfg, nil)
	require.NotNil(t, e.piece)
	assert.NotEmpty(t, e.piece.Shape())
}

func TestEngine_MoveLeftRightStopsAtWalls(t *testing.T) {
	e := newTestEngine(t, "I")

	for i := 0; i < 10; i++ {
		e.MoveLeft()
	}
	assert.Equal(t, [4][2]int{{2, 2}, {3, 2}, {4, 2}, {5, 2}}, activeCells(t, e))

	for i := 0; i < 10; i++ {
		e.MoveRight()
	}
	assert.Equal(t, [4][2]int{{8, 2}, {9, 2}, {10, 2}, {11, 2}}, activeCells(t, e))
}

func TestEngine_MoveBlockedByLockedCells(t *testing.T) {
	e := newTestEngine(t, "O")
	setCell(e.grid, 5, 3, Occupied(ColorBlue))

	before := activeCells(t, e)
	e.MoveLeft()
	assert.Equal(t, before, activeCells(t, e))

	e.MoveRight()
	assert.Equal(t, [4][2]int{{7, 2}, {8, 2}, {7, 3}, {8, 3}}, activeCells(t, e))
}

func TestEngine_RandomMovesNeverLeaveThePlayfield(t *testing.T) {
	for _, shape := range Shapes {
		e := newTestEngine(t, shape.Name)
		setCell(e.grid, 3, 5, Occupied(ColorBlue))
		setCell(e.grid, 10, 4, Occupied(ColorBlue))
		rng := rand.New(rand.NewSource(int64(len(shape.Name)) + int64(shape.Color)))

		for i := 0; i < 300 && e.RunState() == Running; i++ {
			switch rng.Intn(4) {
			case 0:
				e.MoveLeft()
			case 1:
				e.MoveRight()
			case 2:
				e.Rotate()
			case 3:
				if rng.Intn(8) == 0 {
					e.SoftDrop()
				}
			}
			if e.RunState() == Running {
				assertPieceInPlayfield(t, e)
			}
		}
	}
}

func TestEngine_Rotate(t *testing.T) {
	e := newTestEngine(t, "T")

	e.Rotate()
	assert.Equal(t, [4][2]int{{5, 3}, {6, 4}, {6, 3}, {6, 2}}, activeCells(t, e))
}

func TestEngine_RotateBlocked(t *testing.T) {
	e := newTestEngine(t, "T")
	setCell(e.grid, 6, 4, Occupied(ColorBlue))

	before := activeCells(t, e)
	e.Rotate()
	assert.Equal(t, before, activeCells(t, e))
}

func TestEngine_RotateIntoTheWallIsIgnored(t *testing.T) {
	e := newTestEngine(t, "I")

	// At spawn the rotated bar would reach row 1.
	before := activeCells(t, e)
	e.Rotate()
	assert.Equal(t, before, activeCells(t, e))

	e.SoftDrop()
	e.Rotate()
	assert.Equal(t, [4][2]int{{7, 5}, {7, 4}, {7, 3}, {7, 2}}, activeCells(t, e))
}

func TestEngine_SquareNeverRotates(t *testing.T) {
	e := newTestEngine(t, "O")
	before := activeCells(t, e)
	for i := 0; i < 4; i++ {
		e.Rotate()
		assert.Equal(t, before, activeCells(t, e))
	}
}

func TestEngine_TickFallsToTheFloorThenLocks(t *testing.T) {
	e := newTestEngine(t, "T")
	start := activeCells(t, e)
	emptyCount := e.grid.OccupiedCount()

	// The T spawns with its lowest blocks on row 3 and can fall to row 21.
	for drop := 1; drop <= 18; drop++ {
		e.Tick()
		cells := activeCells(t, e)
		for i := range cells {
			assert.Equal(t, start[i][1]+drop, cells[i][1])
			assert.Equal(t, start[i][0], cells[i][0])
		}
	}
	assert.Equal(t, 0, e.PiecesLocked())

	e.Tick()
	assert.Equal(t, 1, e.PiecesLocked())
	assert.Equal(t, emptyCount+4, e.grid.OccupiedCount())
	for _, pos := range [][2]int{{6, 20}, {5, 21}, {6, 21}, {7, 21}} {
		assert.Equal(t, Occupied(ColorOrange), e.grid.At(pos[0], pos[1]))
	}
	assert.Equal(t, start, activeCells(t, e), "a new piece spawns")
	assert.Equal(t, Running, e.RunState())
}

func TestEngine_TickChecksTopRowBeforeMoving(t *testing.T) {
	e := newTestEngine(t, "I")
	setCell(e.grid, 11, 2, Occupied(ColorBlue))

	e.Tick()

	assert.Equal(t, GameOver, e.RunState())
	_, ok := e.SnapshotActivePiece()
	assert.False(t, ok)
	assert.Equal(t, 0, e.PiecesLocked(), "game ended before the piece moved or locked")
}

func TestEngine_LockOnTopRowEndsGame(t *testing.T) {
	e := newTestEngine(t, "O")
	setCell(e.grid, 6, 4, Occupied(ColorBlue))

	e.SoftDrop()

	assert.Equal(t, 1, e.PiecesLocked())
	assert.Equal(t, GameOver, e.RunState())
	assert.True(t, e.grid.TopRowOccupied())
}

func TestEngine_SpawnBlockedEndsGame(t *testing.T) {
	e := newTestEngine(t, "T")
	for _, pos := range ShapeByName("T").Cells {
		setCell(e.grid, pos[0], pos[1], Occupied(ColorBlue))
	}
	before := e.grid.OccupiedCount()
	e.piece = nil

	e.spawnNext()

	assert.Equal(t, GameOver, e.RunState())
	_, ok := e.SnapshotActivePiece()
	assert.False(t, ok, "no piece is created")
	assert.Equal(t, before, e.grid.OccupiedCount())
}

func TestEngine_SpawnBlockedAfterLock(t *testing.T) {
	e := newTestEngine(t, "I", "O")
	// Below the top row, so only the spawn check can end the game.
	setCell(e.grid, 6, 3, Occupied(ColorBlue))
	setCell(e.grid, 7, 3, Occupied(ColorBlue))

	for i := 0; i < 3; i++ {
		e.MoveLeft()
	}
	e.HardDrop()

	assert.Equal(t, 1, e.PiecesLocked())
	assert.False(t, e.grid.TopRowOccupied())
	assert.Equal(t, GameOver, e.RunState())
}

func TestEngine_HardDrop(t *testing.T) {
	e := newTestEngine(t, "T")
	before := e.grid.OccupiedCount()

	e.HardDrop()

	assert.Equal(t, 1, e.PiecesLocked())
	assert.Equal(t, before+4, e.grid.OccupiedCount())
	for _, pos := range [][2]int{{6, 20}, {5, 21}, {6, 21}, {7, 21}} {
		assert.True(t, e.grid.IsOccupied(pos[0], pos[1]))
	}
	assert.Equal(t, ShapeByName("T").Cells, activeCells(t, e))
}

func TestEngine_HardDropLandsOnStack(t *testing.T) {
	e := newTestEngine(t, "O")
	setCell(e.grid, 6, 15, Occupied(ColorBlue))

	e.HardDrop()

	assert.Equal(t, Occupied(ColorPink), e.grid.At(6, 14))
	assert.Equal(t, Occupied(ColorPink), e.grid.At(7, 13))
	assert.True(t, e.grid.At(7, 15).IsEmpty())
}

func TestEngine_LineClearScoresAndSpeedsUp(t *testing.T) {
	e := newTestEngine(t, "I")
	fillRow(e.grid, 21, ColorGreen, 5, 6, 7, 8)
	setCell(e.grid, 2, 20, Occupied(ColorYellow))

	e.HardDrop()

	assert.Equal(t, 1, e.LastCleared())
	assert.Equal(t, 1, e.Score())
	assert.InDelta(t, 1.1, e.SpeedScale(), 1e-9)
	assert.InDelta(t, float64(time.Second)/1.1, float64(e.TickPeriod()), float64(time.Microsecond))
	assert.Equal(t, Occupied(ColorYellow), e.grid.At(2, 21))
	for col := 3; col <= utils.PlayfieldRight; col++ {
		assert.True(t, e.grid.At(col, 21).IsEmpty())
	}
	assert.Equal(t, Running, e.RunState())
}

func TestEngine_MultipleLinesInOneLock(t *testing.T) {
	e := newTestEngine(t, "I")
	e.SoftDrop()
	e.Rotate() // vertical bar in column 7
	for row := 18; row <= 21; row++ {
		fillRow(e.grid, row, ColorGreen, 7)
	}

	e.HardDrop()

	assert.Equal(t, 4, e.LastCleared())
	assert.Equal(t, 4, e.Score())
	assert.InDelta(t, 1.4, e.SpeedScale(), 1e-9)
	assert.Equal(t, NewGrid().OccupiedCount(), e.grid.OccupiedCount())
}

func TestEngine_PauseSuppressesCommands(t *testing.T) {
	e := newTestEngine(t, "T")
	before := activeCells(t, e)

	e.TogglePause()
	assert.Equal(t, Paused, e.RunState())
	for _, cmd := range []Command{CmdTick, CmdMoveLeft, CmdMoveRight, CmdRotate, CmdSoftDrop, CmdHardDrop} {
		e.Apply(cmd)
	}
	assert.Equal(t, before, activeCells(t, e))
	assert.Equal(t, 0, e.PiecesLocked())

	e.TogglePause()
	assert.Equal(t, Running, e.RunState())
	e.Tick()
	assert.Equal(t, before[0][1]+1, activeCells(t, e)[0][1])
}

func TestEngine_GameOverIgnoresEverythingButRestart(t *testing.T) {
	e := newTestEngine(t, "I")
	setCell(e.grid, 11, 2, Occupied(ColorBlue))
	e.Tick()
	require.Equal(t, GameOver, e.RunState())

	for _, cmd := range []Command{CmdTick, CmdMoveLeft, CmdRotate, CmdHardDrop, CmdTogglePause} {
		e.Apply(cmd)
		assert.Equal(t, GameOver, e.RunState(), "command %s", cmd)
	}

	e.Apply(CmdRestart)
	assert.Equal(t, Running, e.RunState())
	assert.Equal(t, 0, e.Score())
	assert.Equal(t, 0, e.PiecesLocked())
	assert.Equal(t, NewGrid().OccupiedCount(), e.grid.OccupiedCount())
	assertPieceInPlayfield(t, e)
}

func TestEngine_Snapshot(t *testing.T) {
	e := newTestEngine(t, "S")
	e.SoftDrop()

	state := e.Snapshot()
	assert.Equal(t, Running, state.RunState)
	assert.Equal(t, "S", state.Shape)
	assert.Len(t, state.Board, utils.BoardHeight)
	require.Len(t, state.Piece, 4)
	assert.Equal(t, Block{Col: 8, Row: 3, Color: ColorTeal}, state.Piece[0])

	state.Board[10][5] = Occupied(ColorBlue)
	assert.True(t, e.grid.At(5, 10).IsEmpty(), "snapshot board is a copy")

	data, err := json.Marshal(state)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "running", decoded["runState"])
	assert.Equal(t, "S", decoded["shape"])
}

func TestRunState_Text(t *testing.T) {
	for _, s := range []RunState{Running, Paused, GameOver} {
		text, err := s.MarshalText()
		require.NoError(t, err)
		var back RunState
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	assert.Equal(t, "RunState(9)", RunState(9).String())
	var s RunState
	assert.Error(t, s.UnmarshalText([]byte("sleeping")))
}
