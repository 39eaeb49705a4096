package engine

import (
	"errors"
	"fmt"

	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/space"
)

var (
	// ErrInvalidMove matches every rejected turn. The engine state is
	// unchanged whenever it is returned.
	ErrInvalidMove = errors.New("invalid move")

	ErrTargetOccupied     = errors.New("target occupied")
	ErrStationaryOccupied = errors.New("target occupied (stationary)")
	ErrCollision          = errors.New("collision")

	// ErrGameOver is returned for turns submitted after the result is known.
	ErrGameOver = errors.New("game is over")

	// ErrInvariant means the history is inconsistent. It is a bug, never a
	// game event.
	ErrInvariant = errors.New("invariant violation")
)

// InvalidMoveError describes why a player's action was rejected.
type InvalidMoveError struct {
	// Player is the offending seat; nil when the turn as a whole was refused.
	Player *board.PlayerID
	Reason error
}

func (e *InvalidMoveError) Error() string {
	if e.Player == nil {
		return fmt.Sprintf("invalid move: %v", e.Reason)
	}
	return fmt.Sprintf("invalid move by player %d: %v", *e.Player, e.Reason)
}

func (e *InvalidMoveError) Is(target error) bool {
	return target == ErrInvalidMove
}

func (e *InvalidMoveError) Unwrap() error {
	return e.Reason
}

func invalid(player board.PlayerID, reason error) error {
	return &InvalidMoveError{Player: &player, Reason: reason}
}

// ErrOutOfBounds is re-exported so callers need not import space to test for
// an edge-of-grid rejection.
var ErrOutOfBounds = space.ErrOutOfBounds
