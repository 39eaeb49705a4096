package engine

import (
	"fmt"

	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/space"
)

// Occupant marks a player in a cell. Active is true only for the player's
// live location.
type Occupant struct {
	Player board.PlayerID `json:"player"`
	Active bool           `json:"active"`
	Status *board.Status  `json:"status,omitempty"`
}

// Incoming is an action that lands on a cell: a move into it or an attack on
// it.
type Incoming struct {
	Player board.PlayerID `json:"player"`
	Action Action         `json:"action"`
	Attack bool           `json:"attack"`
}

// CellView is what the renderer needs to draw one cell.
type CellView struct {
	Occupant *Occupant  `json:"occupant,omitempty"`
	Hazard   bool       `json:"hazard"`
	Outgoing *Action    `json:"outgoing,omitempty"`
	Incoming []Incoming `json:"incoming,omitempty"`
}

// Grid is the projection of the whole timeline, indexed [t][y][x].
type Grid [space.TimelineLength][space.GridSize][space.GridSize]CellView

func (c *CellView) setOccupant(o Occupant) error {
	if c.Occupant != nil {
		return fmt.Errorf("%w: second occupant (player %d over player %d)", ErrInvariant, o.Player, c.Occupant.Player)
	}
	c.Occupant = &o
	return nil
}

func (c *CellView) setOutgoing(a Action) error {
	if c.Outgoing != nil {
		return fmt.Errorf("%w: second outgoing action %v over %v", ErrInvariant, a, *c.Outgoing)
	}
	c.Outgoing = &a
	return nil
}

// Display projects the histories, live locations and vitals onto a grid for
// rendering. It is a pure read of the engine.
func (e *Engine) Display() (Grid, error) {
	var g Grid
	cell := func(c space.Coord) *CellView {
		return &g[c.T][c.Y][c.X]
	}

	for i, history := range e.histories {
		player := board.PlayerID(i)
		for _, entry := range history {
			tile, err := e.board.Read(entry.Source)
			if err != nil {
				return Grid{}, fmt.Errorf("%w: %v", ErrInvariant, err)
			}
			var recorded *board.Status
			if tile.Status != nil {
				s := *tile.Status
				recorded = &s
			}
			src := cell(entry.Source)
			if err := src.setOccupant(Occupant{Player: player, Status: recorded}); err != nil {
				return Grid{}, fmt.Errorf("at %v: %w", entry.Source, err)
			}
			if err := src.setOutgoing(entry.Action); err != nil {
				return Grid{}, fmt.Errorf("at %v: %w", entry.Source, err)
			}

			dest := cell(entry.Impact.Location)
			dest.Incoming = append(dest.Incoming, Incoming{Player: player, Action: entry.Action})

			if h := entry.Impact.Hazard; h != nil {
				struck := cell(*h)
				struck.Incoming = append(struck.Incoming, Incoming{Player: player, Action: entry.Action, Attack: true})
				struck.Hazard = true
			}
		}
	}

	for i, loc := range e.locations {
		status := e.stati[i]
		if err := cell(loc).setOccupant(Occupant{Player: board.PlayerID(i), Active: true, Status: &status}); err != nil {
			return Grid{}, fmt.Errorf("at %v: %w", loc, err)
		}
	}
	return g, nil
}

// Attacks returns the incoming attacks on the cell.
func (c CellView) Attacks() []Incoming {
	var out []Incoming
	for _, in := range c.Incoming {
		if in.Attack {
			out = append(out, in)
		}
	}
	return out
}
