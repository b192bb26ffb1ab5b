package core

// Action is a semantic control, decoupled from the key that triggered it.
type Action int

const (
	ActionNone Action = iota
	ActionAngleUp
	ActionAngleDown
	ActionPowerUp
	ActionPowerDown
	ActionFire
	ActionPlayAgain
	ActionHelp
	ActionQuit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionAngleUp:
		return "AngleUp"
	case ActionAngleDown:
		return "AngleDown"
	case ActionPowerUp:
		return "PowerUp"
	case ActionPowerDown:
		return "PowerDown"
	case ActionFire:
		return "Fire"
	case ActionPlayAgain:
		return "PlayAgain"
	case ActionHelp:
		return "Help"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame is the set of actions held during one frame.
type InputFrame uint16

// Set marks an action as held.
func (f *InputFrame) Set(a Action) {
	if a <= ActionNone {
		return
	}
	*f |= 1 << uint(a)
}

// Has reports whether an action is held.
func (f InputFrame) Has(a Action) bool {
	if a <= ActionNone {
		return false
	}
	return f&(1<<uint(a)) != 0
}

// Clear releases every action.
func (f *InputFrame) Clear() {
	*f = 0
}

// Empty reports whether nothing is held.
func (f InputFrame) Empty() bool {
	return f == 0
}
