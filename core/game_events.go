package core

// Outcome is what a tick reports back to whoever drives the session.
type Outcome int

const (
	OutcomeAlive Outcome = iota
	// OutcomeCollided is terminal: the head ran into the body. Only a reset
	// brings the session back.
	OutcomeCollided
	// OutcomeQuit means the driver stopped the session from outside.
	OutcomeQuit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlive:
		return "alive"
	case OutcomeCollided:
		return "collided"
	case OutcomeQuit:
		return "quit"
	}
	return "unknown"
}

// Ended reports whether no further ticks will change the session.
func (o Outcome) Ended() bool {
	return o != OutcomeAlive
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	Tick    uint64  `json:"tick"`
	Body    []Coord `json:"body"` // head first
	Target  Coord   `json:"target"`
	Score   int     `json:"score"`
	Outcome Outcome `json:"outcome"`
}

func (s Snapshot) Head() Coord {
	return s.Body[0]
}

// Color is a drawing tag; renderers decide what it looks like.
type Color int

const (
	ColorBoard Color = iota
	ColorBorder
	ColorSnake
	ColorApple
)
