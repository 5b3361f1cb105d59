package game

import "fmt"

// Color identifies the fill of an occupied cell.
type Color uint8

const (
	ColorNone Color = iota
	ColorWall
	ColorPurple
	ColorPink
	ColorOrange
	ColorYellow
	ColorGreen
	ColorTeal
	ColorBlue
)

var colorNames = [...]string{
	ColorNone:   "none",
	ColorWall:   "wall",
	ColorPurple: "purple",
	ColorPink:   "pink",
	ColorOrange: "orange",
	ColorYellow: "yellow",
	ColorGreen:  "green",
	ColorTeal:   "teal",
	ColorBlue:   "blue",
}

var colorRGB = [...][3]uint8{
	ColorNone:   {0, 0, 0},
	ColorWall:   {169, 169, 169},
	ColorPurple: {128, 0, 128},
	ColorPink:   {255, 192, 203},
	ColorOrange: {255, 165, 0},
	ColorYellow: {255, 255, 0},
	ColorGreen:  {0, 128, 0},
	ColorTeal:   {0, 128, 128},
	ColorBlue:   {0, 0, 255},
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

// RGB returns the display color.
func (c Color) RGB() [3]uint8 {
	if int(c) < len(colorRGB) {
		return colorRGB[c]
	}
	return colorRGB[ColorNone]
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	for i, name := range colorNames {
		if name == string(text) {
			*c = Color(i)
			return nil
		}
	}
	return fmt.Errorf("unknown color %q", text)
}

// Cell is either Empty or Occupied(color). The zero value is Empty.
type Cell struct {
	Occupied bool  `json:"occupied"`
	Color    Color `json:"color"`
}

// Empty is the unoccupied cell.
var Empty = Cell{}

// Occupied returns a filled cell of the given color.
func Occupied(color Color) Cell {
	return Cell{Occupied: true, Color: color}
}

func (c Cell) IsEmpty() bool { return !c.Occupied }

func (c Cell) String() string {
	if !c.Occupied {
		return "Empty"
	}
	return "Occupied(" + c.Color.String() + ")"
}
