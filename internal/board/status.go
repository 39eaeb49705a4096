package board

const (
	StartingHealth    = 3
	InvulnerableTicks = 3
)

// PlayerID is a seat in the match, 0 or 1.
type PlayerID uint8

// Players is the number of seats in every match.
const Players = 2

// Status holds a player's vitals. It is rebuilt from scratch on every replay.
type Status struct {
	Health       int `json:"health" yaml:"health"`
	Invulnerable int `json:"invulnerable" yaml:"invulnerable"`
	Elapsed      int `json:"elapsed" yaml:"elapsed"`
}

// NewStatus returns the vitals a player spawns with.
func NewStatus() Status {
	return Status{Health: StartingHealth}
}

func (s Status) Vulnerable() bool {
	return s.Invulnerable == 0
}

func (s Status) Defeated() bool {
	return s.Health == 0
}

// Damage costs one health and opens the invulnerability window, but only while
// the player is vulnerable.
func (s *Status) Damage() {
	if !s.Vulnerable() || s.Defeated() {
		return
	}
	s.Health--
	s.Invulnerable = InvulnerableTicks
}

// Tick advances the player's own clock by one step.
func (s *Status) Tick() {
	if s.Invulnerable > 0 {
		s.Invulnerable--
	}
	s.Elapsed++
}
