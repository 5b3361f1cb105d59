package game

import (
	"errors"
	"time"

	"golang.org/x/exp/rand"
)

// ErrSpawnBlocked means a new piece would overlap occupied cells.
var ErrSpawnBlocked = errors.New("spawn blocked")

// Shape is one entry of the tetromino table: spawn positions, pivot index, color.
type Shape struct {
	Name      string
	Cells     [4][2]int // absolute (col,row) at spawn
	Pivot     int
	Color     Color
	CanRotate bool
}

// Shapes is the fixed table of the seven tetrominoes. Every piece spawns
// touching the top playfield row and rotates about its third block.
var Shapes = [7]Shape{
	{Name: "I", Cells: [4][2]int{{5, 2}, {6, 2}, {7, 2}, {8, 2}}, Pivot: 2, Color: ColorPurple, CanRotate: true},
	{Name: "O", Cells: [4][2]int{{6, 2}, {7, 2}, {6, 3}, {7, 3}}, Pivot: 2, Color: ColorPink, CanRotate: false},
	{Name: "T", Cells: [4][2]int{{6, 2}, {5, 3}, {6, 3}, {7, 3}}, Pivot: 2, Color: ColorOrange, CanRotate: true},
	{Name: "L", Cells: [4][2]int{{5, 3}, {6, 3}, {7, 3}, {7, 2}}, Pivot: 2, Color: ColorYellow, CanRotate: true},
	{Name: "J", Cells: [4][2]int{{8, 3}, {7, 3}, {6, 3}, {6, 2}}, Pivot: 2, Color: ColorGreen, CanRotate: true},
	{Name: "S", Cells: [4][2]int{{8, 2}, {7, 2}, {7, 3}, {6, 3}}, Pivot: 2, Color: ColorTeal, CanRotate: true},
	{Name: "Z", Cells: [4][2]int{{5, 2}, {6, 2}, {6, 3}, {7, 3}}, Pivot: 2, Color: ColorBlue, CanRotate: true},
}

// ShapeByName returns nil for unknown names.
func ShapeByName(name string) *Shape {
	for i := range Shapes {
		if Shapes[i].Name == name {
			return &Shapes[i]
		}
	}
	return nil
}

func (s Shape) newPiece() *Piece {
	p := NewPiece(s.Cells, s.Pivot, s.Color, s.CanRotate)
	p.shape = s.Name
	return p
}

// PieceFactory picks shapes uniformly at random and places them at spawn.
type PieceFactory struct {
	shapes []Shape
	pick   func(n int) int
}

// NewPieceFactory seeds the shape picker; a zero seed uses the clock.
func NewPieceFactory(seed uint64) *PieceFactory {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))
	return NewPieceFactoryWithPicker(Shapes[:], rng.Intn)
}

// NewPieceFactoryWithPicker uses pick(len(shapes)) to choose each shape.
func NewPieceFactoryWithPicker(shapes []Shape, pick func(n int) int) *PieceFactory {
	if len(shapes) == 0 {
		panic("piece factory: empty shape table")
	}
	return &PieceFactory{shapes: shapes, pick: pick}
}

// Spawn returns ErrSpawnBlocked instead of a piece when any target cell is occupied.
func (f *PieceFactory) Spawn(grid *Grid) (*Piece, error) {
	shape := f.shapes[f.pick(len(f.shapes))]
	for _, pos := range shape.Cells {
		if grid.Blocked(pos[0], pos[1]) {
			return nil, ErrSpawnBlocked
		}
	}
	return shape.newPiece(), nil
}
