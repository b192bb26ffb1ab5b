package sim

// Phase is the state of the turn state machine.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseTurnAim
	PhaseProjectileFlight
	PhasePreExplosion
	PhasePostExplosionStabilize
	PhaseGameOver
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "Lobby"
	case PhaseTurnAim:
		return "TurnAim"
	case PhaseProjectileFlight:
		return "ProjectileFlight"
	case PhasePreExplosion:
		return "PreExplosion"
	case PhasePostExplosionStabilize:
		return "Stabilize"
	case PhaseGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// Winner values other than a player index.
const (
	WinnerNone    = -3
	WinnerDraw    = -1
	WinnerAborted = -2
)

// IntSource is the slice of the RNG the rules need.
type IntSource interface {
	NextInt(lo, hi int) int
}

// Rules tracks turn order, timers, wind and the outcome of the match.
type Rules struct {
	Phase          Phase
	ActivePlayer   int
	Turn           int
	TurnTimer      int
	StabilizeTimer int
	DelayTimer     int // pre-explosion countdown
	Wind           int
	Winner         int
}

// NewRules returns rules waiting in the lobby.
func NewRules() Rules {
	return Rules{Phase: PhaseLobby, Winner: WinnerNone}
}

// StartMatch begins turn 1 with player 0 to act.
func (r *Rules) StartMatch(src IntSource) {
	r.Phase = PhaseTurnAim
	r.ActivePlayer = 0
	r.Turn = 1
	r.Winner = WinnerNone
	r.StartTurn(src)
}

// StartTurn resets the turn clock and draws fresh wind.
func (r *Rules) StartTurn(src IntSource) {
	r.TurnTimer = TurnDurationTicks
	r.Wind = DrawWind(src)
}

// NextTurn hands the turn to the other player.
func (r *Rules) NextTurn(src IntSource) {
	r.ActivePlayer = 1 - r.ActivePlayer
	r.Turn++
	r.Phase = PhaseTurnAim
	r.StartTurn(src)
}

// DrawWind averages two uniform draws, which biases wind toward calm.
// Go's integer division truncates toward zero, matching on every platform.
func DrawWind(src IntSource) int {
	a := src.NextInt(-WindMax, WindMax)
	b := src.NextInt(-WindMax, WindMax)
	return (a + b) / 2
}
