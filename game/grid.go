// File: game/grid.go
package game

import (
	"fmt"

	"github.com/lguibr/tetris/utils"
)

// Grid is the fixed 14x24 board, stored row-major in a flat array.
// Columns {0,1,12,13} and rows {0,1,22,23} are a permanent wall.
type Grid struct {
	cells [utils.BoardWidth * utils.BoardHeight]Cell
}

func NewGrid() *Grid {
	grid := &Grid{}
	for row := 0; row < utils.BoardHeight; row++ {
		for col := 0; col < utils.BoardWidth; col++ {
			if IsBorder(col, row) {
				grid.cells[row*utils.BoardWidth+col] = Occupied(ColorWall)
			}
		}
	}
	return grid
}

// IsBorder reports whether (col,row) belongs to the wall.
func IsBorder(col, row int) bool {
	return col < utils.PlayfieldLeft || col > utils.PlayfieldRight ||
		row < utils.PlayfieldTop || row > utils.PlayfieldBottom
}

func InBounds(col, row int) bool {
	return col >= 0 && col < utils.BoardWidth && row >= 0 && row < utils.BoardHeight
}

func (grid *Grid) index(col, row int) int {
	if !InBounds(col, row) {
		panic(fmt.Sprintf("grid: cell (%d,%d) outside %dx%d board", col, row, utils.BoardWidth, utils.BoardHeight))
	}
	return row*utils.BoardWidth + col
}

// At returns the cell at (col,row). It panics outside the board.
func (grid *Grid) At(col, row int) Cell {
	return grid.cells[grid.index(col, row)]
}

// IsOccupied panics outside the board; use Blocked for collision tests.
func (grid *Grid) IsOccupied(col, row int) bool {
	return grid.At(col, row).Occupied
}

// Blocked treats anything off the board as solid.
func (grid *Grid) Blocked(col, row int) bool {
	if !InBounds(col, row) {
		return true
	}
	return grid.cells[row*utils.BoardWidth+col].Occupied
}

// Lock copies the blocks into the grid. Every target must be an empty playfield cell.
func (grid *Grid) Lock(blocks [4]Block) {
	for _, b := range blocks {
		i := grid.index(b.Col, b.Row)
		if grid.cells[i].Occupied {
			panic(fmt.Sprintf("grid: lock onto occupied cell (%d,%d)", b.Col, b.Row))
		}
	}
	for _, b := range blocks {
		grid.cells[b.Row*utils.BoardWidth+b.Col] = Occupied(b.Color)
	}
}

func (grid *Grid) rowFull(row int) bool {
	for col := utils.PlayfieldLeft; col <= utils.PlayfieldRight; col++ {
		if !grid.cells[row*utils.BoardWidth+col].Occupied {
			return false
		}
	}
	return true
}

// collapseRow drops every playfield row above row down by one; the top playfield row empties.
func (grid *Grid) collapseRow(row int) {
	for r := row; r > utils.PlayfieldTop; r-- {
		for col := utils.PlayfieldLeft; col <= utils.PlayfieldRight; col++ {
			grid.cells[r*utils.BoardWidth+col] = grid.cells[(r-1)*utils.BoardWidth+col]
		}
	}
	for col := utils.PlayfieldLeft; col <= utils.PlayfieldRight; col++ {
		grid.cells[utils.PlayfieldTop*utils.BoardWidth+col] = Empty
	}
}

// ClearFullLines removes every full playfield row in one top-to-bottom pass
// and returns how many were removed. After a collapse the same row index is
// checked again, since it now holds the row that was above it.
func (grid *Grid) ClearFullLines() int {
	cleared := 0
	for row := utils.PlayfieldTop; row <= utils.PlayfieldBottom; {
		if grid.rowFull(row) {
			grid.collapseRow(row)
			cleared++
			continue
		}
		row++
	}
	return cleared
}

// TopRowOccupied reports whether anything sits in the highest playfield row.
func (grid *Grid) TopRowOccupied() bool {
	for col := utils.PlayfieldLeft; col <= utils.PlayfieldRight; col++ {
		if grid.cells[utils.PlayfieldTop*utils.BoardWidth+col].Occupied {
			return true
		}
	}
	return false
}

// OccupiedCount counts occupied cells, wall included.
func (grid *Grid) OccupiedCount() int {
	count := 0
	for _, c := range grid.cells {
		if c.Occupied {
			count++
		}
	}
	return count
}

// Rows returns a row-major copy of the board.
func (grid *Grid) Rows() [][]Cell {
	rows := make([][]Cell, utils.BoardHeight)
	for row := range rows {
		rows[row] = make([]Cell, utils.BoardWidth)
		copy(rows[row], grid.cells[row*utils.BoardWidth:(row+1)*utils.BoardWidth])
	}
	return rows
}

func (grid *Grid) Clone() *Grid {
	clone := *grid
	return &clone
}

// Compare checks if two grids hold identical cells.
func (grid *Grid) Compare(comparedGrid *Grid) bool {
	if grid == nil || comparedGrid == nil {
		return grid == comparedGrid
	}
	return grid.cells == comparedGrid.cells
}
