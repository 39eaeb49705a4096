// Package engine resolves simultaneous turns on the space-time board.
//
// Every accepted turn is appended to a per-player history and the whole
// history is replayed to rebuild hazards, vitals and the result. The replay
// never patches state incrementally, so what is shown to players is always a
// function of the log.
package engine

import (
	"fmt"

	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/space"
)

// Entry is one accepted action in a player's history.
type Entry struct {
	Source space.Coord  `json:"source" yaml:"source"`
	Action Action       `json:"action" yaml:"action"`
	Impact board.Impact `json:"impact" yaml:"impact"`
}

// Engine owns the state of one match. It is not safe for concurrent use;
// callers hold a single lock around every call.
type Engine struct {
	board     *board.Board
	histories [board.Players][]Entry
	locations [board.Players]space.Coord
	stati     [board.Players]board.Status
	result    *Result
}

func New() *Engine {
	return &Engine{
		board:     board.Initial(),
		locations: board.Spawns,
		stati:     [board.Players]board.Status{board.NewStatus(), board.NewStatus()},
	}
}

// Replay rebuilds a match from its accepted turns in order.
func Replay(turns [][board.Players]Action) (*Engine, error) {
	e := New()
	for i, actions := range turns {
		if _, err := e.ResolveTurn(actions[0], actions[1]); err != nil {
			return nil, fmt.Errorf("replay turn %d: %w", i+1, err)
		}
	}
	return e, nil
}

// Candidate computes the impact of player taking action from source without
// touching any state.
func (e *Engine) Candidate(player board.PlayerID, action Action, source space.Coord) (board.Impact, error) {
	target, err := source.Add(action.Direction)
	if err != nil {
		return board.Impact{}, invalid(player, err)
	}

	switch action.Kind {
	case Move:
		tile, err := e.board.Read(target)
		if err != nil {
			return board.Impact{}, invalid(player, err)
		}
		// Hazards hurt but never block.
		if tile.Occupied() {
			return board.Impact{}, invalid(player, ErrTargetOccupied)
		}
		return board.Impact{Player: player, Location: target}, nil

	case Attack:
		dest, err := source.Shift(action.Direction.Temporal)
		if err != nil {
			return board.Impact{}, invalid(player, err)
		}
		tile, err := e.board.Read(dest)
		if err != nil {
			return board.Impact{}, invalid(player, err)
		}
		if tile.Occupied() {
			return board.Impact{}, invalid(player, ErrStationaryOccupied)
		}
		return board.Impact{Player: player, Location: dest, Hazard: &target}, nil
	}
	panic(fmt.Sprintf("engine: unknown action kind %d", action.Kind))
}

// ResolveTurn validates both players' actions against their current
// locations and, if both are legal and do not collide, commits them and
// replays the match. A rejected turn leaves the engine untouched and must be
// resubmitted in full.
func (e *Engine) ResolveTurn(a0, a1 Action) (*Result, error) {
	if e.result != nil {
		return nil, ErrGameOver
	}

	actions := [board.Players]Action{a0, a1}
	var impacts [board.Players]board.Impact
	for i, action := range actions {
		player := board.PlayerID(i)
		imp, err := e.Candidate(player, action, e.locations[player])
		if err != nil {
			return nil, err
		}
		impacts[i] = imp
	}
	if impacts[0].Location == impacts[1].Location {
		return nil, &InvalidMoveError{Reason: ErrCollision}
	}

	for i := range impacts {
		e.histories[i] = append(e.histories[i], Entry{
			Source: e.locations[i],
			Action: actions[i],
			Impact: impacts[i],
		})
		e.locations[i] = impacts[i].Location
	}
	if err := e.replay(); err != nil {
		return nil, err
	}
	return e.Result(), nil
}

// Board returns a copy of the board.
func (e *Engine) Board() *board.Board {
	return e.board.Clone()
}

// History returns a copy of player's accepted actions, oldest first.
func (e *Engine) History(player board.PlayerID) []Entry {
	return append([]Entry(nil), e.histories[player]...)
}

// Location is where the player is now, as opposed to every cell they have
// occupied in the past.
func (e *Engine) Location(player board.PlayerID) space.Coord {
	return e.locations[player]
}

func (e *Engine) Stati() [board.Players]board.Status {
	return e.stati
}

// Result returns the terminal outcome, or nil while the match continues.
func (e *Engine) Result() *Result {
	if e.result == nil {
		return nil
	}
	r := *e.result
	return &r
}

// Turn is the number of accepted turns.
func (e *Engine) Turn() int {
	return len(e.histories[0])
}

// Turns returns the accepted action pairs in order, suitable for Replay.
func (e *Engine) Turns() [][board.Players]Action {
	out := make([][board.Players]Action, e.Turn())
	for i := range out {
		out[i] = [board.Players]Action{e.histories[0][i].Action, e.histories[1][i].Action}
	}
	return out
}
