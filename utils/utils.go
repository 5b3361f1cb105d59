package utils

import "strings"

// KeyFromString normalizes the key names sent by browsers and terminals
// ("Left", "ArrowLeft", "space", " ", "p") to the DOM KeyboardEvent.key form.
func KeyFromString(key string) string {
	switch strings.ToLower(key) {
	case "arrowleft", "left":
		return "ArrowLeft"
	case "arrowright", "right":
		return "ArrowRight"
	case "arrowup", "up":
		return "ArrowUp"
	case "arrowdown", "down":
		return "ArrowDown"
	case " ", "space", "spacebar":
		return " "
	case "p":
		return "p"
	case "r":
		return "r"
	}
	return ""
}
