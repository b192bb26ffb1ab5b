package sim

// EventKind classifies a simulation event.
type EventKind int

const (
	EventFire EventKind = iota
	EventExplosionStart
	EventExplosion
	EventDamage
	EventOutOfBounds
	EventTimeout
	EventTurnStart
	EventGameOver
)

// String returns a human-readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventFire:
		return "fire"
	case EventExplosionStart:
		return "explosion-start"
	case EventExplosion:
		return "explosion"
	case EventDamage:
		return "damage"
	case EventOutOfBounds:
		return "out-of-bounds"
	case EventTimeout:
		return "timeout"
	case EventTurnStart:
		return "turn-start"
	case EventGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Event is something observers may want to render or log. Events live for
// exactly one tick and are neither hashed nor snapshotted.
type Event struct {
	Kind   EventKind
	X, Y   int // position in pixels, where meaningful
	Player int // acting, damaged, or winning player
	Value  int // damage amount, angle, or turn number depending on Kind
	Extra  int // power for EventFire
}
