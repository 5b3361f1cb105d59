package utils

import "time"

const (
	BoardWidth  = 14
	BoardHeight = 24

	// Border wall thickness on every side of the board.
	BorderSize = 2

	PlayfieldLeft   = BorderSize
	PlayfieldRight  = BoardWidth - BorderSize - 1  // 11
	PlayfieldTop    = BorderSize                   // 2
	PlayfieldBottom = BoardHeight - BorderSize - 1 // 21

	PlayfieldWidth  = PlayfieldRight - PlayfieldLeft + 1 // 10
	PlayfieldHeight = PlayfieldBottom - PlayfieldTop + 1 // 20

	DefaultTickPeriod = 1 * time.Second
	DefaultSpeedStep  = 0.1
)
