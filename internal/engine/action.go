package engine

import (
	"fmt"

	"github.com/tatianab/timeclash/internal/space"
)

// ActionKind says whether a player walks into the target or strikes it.
type ActionKind uint8

const (
	Move ActionKind = iota
	Attack
)

// Action is one player's intent for a tick.
type Action struct {
	Direction space.Direction `json:"direction" yaml:"direction"`
	Kind      ActionKind      `json:"kind" yaml:"kind"`
}

func (a Action) String() string {
	return a.Kind.String() + " " + a.Direction.String()
}

func (k ActionKind) String() string {
	switch k {
	case Move:
		return "Move"
	case Attack:
		return "Attack"
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

func (k ActionKind) MarshalText() ([]byte, error) {
	switch k {
	case Move, Attack:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("unknown action kind %d", uint8(k))
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Move":
		*k = Move
	case "Attack":
		*k = Attack
	default:
		return fmt.Errorf("unknown action kind %q", text)
	}
	return nil
}
