package engine

import (
	"fmt"

	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/space"
)

// ResultKind distinguishes a win from a draw.
type ResultKind uint8

const (
	Win ResultKind = iota
	Draw
)

// Result is the terminal outcome of a match. Winner is only meaningful for
// a Win.
type Result struct {
	Kind   ResultKind     `json:"kind" yaml:"kind"`
	Winner board.PlayerID `json:"winner" yaml:"winner"`
}

func (r Result) String() string {
	switch r.Kind {
	case Win:
		return fmt.Sprintf("player %d wins", r.Winner)
	case Draw:
		return "draw"
	}
	panic(fmt.Sprintf("engine: unknown result kind %d", r.Kind))
}

func (k ResultKind) MarshalText() ([]byte, error) {
	switch k {
	case Win:
		return []byte("Win"), nil
	case Draw:
		return []byte("Draw"), nil
	}
	return nil, fmt.Errorf("unknown result kind %d", uint8(k))
}

func (k *ResultKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Win":
		*k = Win
	case "Draw":
		*k = Draw
	default:
		return fmt.Errorf("unknown result kind %q", text)
	}
	return nil
}

// replay rebuilds the board marks, every player's vitals and the result from
// the histories alone.
func (e *Engine) replay() error {
	for _, history := range e.histories {
		for _, entry := range history {
			if err := e.board.ApplyImpact(entry.Impact); err != nil {
				return fmt.Errorf("%w: %v", ErrInvariant, err)
			}
		}
	}

	for i := range e.stati {
		e.stati[i] = board.NewStatus()
	}
	for i, history := range e.histories {
		for _, entry := range history {
			if err := e.checkDamage(board.PlayerID(i), entry.Source, true); err != nil {
				return err
			}
		}
	}
	// Standing on a hazard in the present still hurts, but it does not cost
	// the player a tick.
	for i, loc := range e.locations {
		if err := e.checkDamage(board.PlayerID(i), loc, false); err != nil {
			return err
		}
	}

	e.result = evaluate(e.stati)
	return nil
}

func (e *Engine) checkDamage(player board.PlayerID, c space.Coord, tick bool) error {
	tile, err := e.board.Read(c)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	status := &e.stati[player]
	if tile.Hazard {
		status.Damage()
	}
	if err := e.board.WriteStatus(c, *status); err != nil {
		return fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	if tick {
		status.Tick()
	}
	return nil
}

func evaluate(stati [board.Players]board.Status) *Result {
	dead0, dead1 := stati[0].Defeated(), stati[1].Defeated()
	switch {
	case dead0 && dead1:
		return &Result{Kind: Draw}
	case dead0:
		return &Result{Kind: Win, Winner: 1}
	case dead1:
		return &Result{Kind: Win, Winner: 0}
	}
	return nil
}
