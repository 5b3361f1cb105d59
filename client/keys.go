package client

// keyDecoder turns raw terminal bytes into the key names the server accepts.
// Arrow keys arrive as ESC [ A..D and are decoded across calls.
type keyDecoder struct {
	state int
}

const (
	stateNormal = iota
	stateEsc
	stateCSI
)

// Feed consumes one byte. key is empty when the byte completes nothing the
// server understands; quit is set for q and Ctrl-C.
func (d *keyDecoder) Feed(b byte) (key string, quit bool) {
	switch d.state {
	case stateEsc:
		if b == '[' || b == 'O' {
			d.state = stateCSI
			return "", false
		}
		d.state = stateNormal
	case stateCSI:
		d.state = stateNormal
		switch b {
		case 'A':
			return "ArrowUp", false
		case 'B':
			return "ArrowDown", false
		case 'C':
			return "ArrowRight", false
		case 'D':
			return "ArrowLeft", false
		}
		return "", false
	}

	switch b {
	case 0x1b:
		d.state = stateEsc
	case 0x03, 'q', 'Q':
		return "", true
	case 'a', 'A':
		return "ArrowLeft", false
	case 'd', 'D':
		return "ArrowRight", false
	case 'w', 'W':
		return "ArrowUp", false
	case 's', 'S':
		return "ArrowDown", false
	case ' ':
		return " ", false
	case 'p', 'P':
		return "p", false
	case 'r', 'R':
		return "r", false
	}
	return "", false
}
