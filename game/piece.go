package game

// Block is one cell of a piece in board coordinates.
type Block struct {
	Col   int   `json:"col"`
	Row   int   `json:"row"`
	Color Color `json:"color"`
}

// Piece is four blocks sharing a color. One block is the rotation pivot.
type Piece struct {
	blocks    [4]Block
	pivot     int
	canRotate bool
	shape     string
}

// NewPiece builds a piece from absolute (col,row) positions; pivot indexes positions.
func NewPiece(positions [4][2]int, pivot int, color Color, canRotate bool) *Piece {
	if pivot < 0 || pivot >= len(positions) {
		panic("piece: pivot index out of range")
	}
	p := &Piece{pivot: pivot, canRotate: canRotate}
	for i, pos := range positions {
		p.blocks[i] = Block{Col: pos[0], Row: pos[1], Color: color}
	}
	return p
}

func (p *Piece) Cells() [4]Block { return p.blocks }
func (p *Piece) Pivot() Block    { return p.blocks[p.pivot] }
func (p *Piece) CanRotate() bool { return p.canRotate }
func (p *Piece) Color() Color    { return p.blocks[0].Color }
func (p *Piece) Shape() string   { return p.shape }

func (p *Piece) Clone() *Piece {
	clone := *p
	return &clone
}

// Translated returns the blocks moved by the delta; the piece is unchanged.
func (p *Piece) Translated(dcol, drow int) [4]Block {
	moved := p.blocks
	for i := range moved {
		moved[i].Col += dcol
		moved[i].Row += drow
	}
	return moved
}

// Translate moves the piece without any legality check.
func (p *Piece) Translate(dcol, drow int) {
	p.blocks = p.Translated(dcol, drow)
}

// Rotated returns the blocks turned a quarter about the pivot:
//
//	col' = pivot.col - pivot.row + row
//	row' = pivot.row + pivot.col - col
//
// The pivot keeps its position. Non-rotating pieces come back unchanged.
func (p *Piece) Rotated() [4]Block {
	turned := p.blocks
	if !p.canRotate {
		return turned
	}
	pv := p.blocks[p.pivot]
	for i, b := range p.blocks {
		if i == p.pivot {
			continue
		}
		turned[i].Col = pv.Col - pv.Row + b.Row
		turned[i].Row = pv.Row + pv.Col - b.Col
	}
	return turned
}

// Rotate applies Rotated in place. It is a no-op for the square.
func (p *Piece) Rotate() {
	p.blocks = p.Rotated()
}
