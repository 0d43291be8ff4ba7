package camera

// Action is one discrete camera command.
type Action uint8

const (
	None Action = iota
	MoveForward
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	RotateUp
	RotateDown
	RotateLeft
	RotateRight
	RollLeft
	RollRight
	Reset
	Exit
)

var actionNames = [...]string{
	None:         "none",
	MoveForward:  "forward",
	MoveBackward: "backward",
	MoveLeft:     "left",
	MoveRight:    "right",
	MoveUp:       "up",
	MoveDown:     "down",
	RotateUp:     "rotate-up",
	RotateDown:   "rotate-down",
	RotateLeft:   "rotate-left",
	RotateRight:  "rotate-right",
	RollLeft:     "roll-left",
	RollRight:    "roll-right",
	Reset:        "reset",
	Exit:         "exit",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Key is a non-printing key.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEscape
)

// ActionForRune maps a printable key. Both QWERTY (wasd) and AZERTY (zqsd)
// layouts move the camera; r/e and f/c move up and down; ijkl turn.
func ActionForRune(r rune) Action {
	switch r {
	case 'w', 'W', 'z', 'Z':
		return MoveForward
	case 's', 'S':
		return MoveBackward
	case 'a', 'A', 'q', 'Q':
		return MoveLeft
	case 'd', 'D':
		return MoveRight
	case 'r', 'R', 'e', 'E':
		return MoveUp
	case 'f', 'F', 'c', 'C':
		return MoveDown
	case 'i', 'I':
		return RotateUp
	case 'k', 'K':
		return RotateDown
	case 'j', 'J':
		return RotateLeft
	case 'l', 'L':
		return RotateRight
	case 'u', 'U':
		return RollLeft
	case 'o', 'O':
		return RollRight
	case '0':
		return Reset
	}
	return None
}

func ActionForKey(k Key) Action {
	switch k {
	case KeyUp:
		return RotateUp
	case KeyDown:
		return RotateDown
	case KeyLeft:
		return RotateLeft
	case KeyRight:
		return RotateRight
	case KeyHome:
		return Reset
	case KeyEscape:
		return Exit
	}
	return None
}
