// Package protocol defines the messages exchanged between the game server and
// its clients. Every message travels as one UTF-8 JSON text frame of the form
//
//	{"kind": "Action", "data": {...}}
//
// where data is omitted for kinds that carry no payload.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/engine"
	"github.com/tatianab/timeclash/internal/space"
)

// ErrDecode is returned for any frame that is not a known, well-formed
// message.
var ErrDecode = errors.New("cannot decode message")

// Kind names a message type on the wire.
type Kind string

const (
	KindJoin    Kind = "Join"
	KindAssign  Kind = "Assign"
	KindAction  Kind = "Action"
	KindLeave   Kind = "Leave"
	KindDisplay Kind = "Display"
	KindStati   Kind = "Stati"
	KindResult  Kind = "Result"
	KindStart   Kind = "Start"
)

// Message is implemented by every message type in this package and nothing
// else.
type Message interface {
	Kind() Kind
	message()
}

// Join asks the server for a seat.
type Join struct{}

// Assign tells a client which seat it holds.
type Assign struct {
	Player board.PlayerID `json:"player"`
}

// Action is one player's intent for the current tick.
type Action struct {
	Action engine.Action `json:"action"`
}

// Leave gives up the client's seat.
type Leave struct{}

// Display carries the current projection of the timeline.
type Display struct {
	Grid engine.Grid `json:"grid"`
}

// Stati carries both players' vitals.
type Stati struct {
	Stati [board.Players]board.Status `json:"stati"`
}

// Result announces the end of the match.
type Result struct {
	Result engine.Result `json:"result"`
}

// Start marks a turn boundary: clients may submit their next action.
type Start struct{}

func (Join) Kind() Kind    { return KindJoin }
func (Assign) Kind() Kind  { return KindAssign }
func (Action) Kind() Kind  { return KindAction }
func (Leave) Kind() Kind   { return KindLeave }
func (Display) Kind() Kind { return KindDisplay }
func (Stati) Kind() Kind   { return KindStati }
func (Result) Kind() Kind  { return KindResult }
func (Start) Kind() Kind   { return KindStart }

func (Join) message()    {}
func (Assign) message()  {}
func (Action) message()  {}
func (Leave) message()   {}
func (Display) message() {}
func (Stati) message()   {}
func (Result) message()  {}
func (Start) message()   {}

type envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode serializes m into a single text frame.
func Encode(m Message) ([]byte, error) {
	env := envelope{Kind: m.Kind()}
	switch m.(type) {
	case Join, Leave, Start:
	case Assign, Action, Display, Stati, Result:
		data, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", m.Kind(), err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Decode parses one text frame. Unknown kinds and malformed or missing
// payloads are reported as ErrDecode.
func Decode(frame []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch env.Kind {
	case KindJoin:
		return Join{}, nil
	case KindLeave:
		return Leave{}, nil
	case KindStart:
		return Start{}, nil
	case KindAssign:
		var w struct {
			Player *board.PlayerID `json:"player"`
		}
		if err := decodeData(env, &w); err != nil {
			return nil, err
		}
		if w.Player == nil {
			return nil, fmt.Errorf("%w: Assign is missing player", ErrDecode)
		}
		if int(*w.Player) >= board.Players {
			return nil, fmt.Errorf("%w: seat %d does not exist", ErrDecode, *w.Player)
		}
		return Assign{Player: *w.Player}, nil
	case KindAction:
		var w wireAction
		if err := decodeData(env, &w); err != nil {
			return nil, err
		}
		return w.action()
	case KindDisplay:
		var w struct {
			Grid *engine.Grid `json:"grid"`
		}
		if err := decodeData(env, &w); err != nil {
			return nil, err
		}
		if w.Grid == nil {
			return nil, fmt.Errorf("%w: Display is missing grid", ErrDecode)
		}
		return Display{Grid: *w.Grid}, nil
	case KindStati:
		var w struct {
			Stati *[board.Players]board.Status `json:"stati"`
		}
		if err := decodeData(env, &w); err != nil {
			return nil, err
		}
		if w.Stati == nil {
			return nil, fmt.Errorf("%w: Stati is missing stati", ErrDecode)
		}
		return Stati{Stati: *w.Stati}, nil
	case KindResult:
		var w wireResult
		if err := decodeData(env, &w); err != nil {
			return nil, err
		}
		return w.result()
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrDecode, env.Kind)
}

// wireAction mirrors Action with every field required: a zero value would
// otherwise decode silently as Move Left/Forward.
type wireAction struct {
	Action *struct {
		Direction *struct {
			Spatial  *space.Spatial  `json:"spatial"`
			Temporal *space.Temporal `json:"temporal"`
		} `json:"direction"`
		Kind *engine.ActionKind `json:"kind"`
	} `json:"action"`
}

func (w wireAction) action() (Message, error) {
	a := w.Action
	if a == nil || a.Kind == nil || a.Direction == nil || a.Direction.Spatial == nil || a.Direction.Temporal == nil {
		return nil, fmt.Errorf("%w: Action is missing a field", ErrDecode)
	}
	return Action{Action: engine.Action{
		Direction: space.Direction{Spatial: *a.Direction.Spatial, Temporal: *a.Direction.Temporal},
		Kind:      *a.Kind,
	}}, nil
}

// wireResult requires the kind, and the winner when there is one: a zero
// value would otherwise read as a win for player 0.
type wireResult struct {
	Result *struct {
		Kind   *engine.ResultKind `json:"kind"`
		Winner *board.PlayerID    `json:"winner"`
	} `json:"result"`
}

func (w wireResult) result() (Message, error) {
	r := w.Result
	if r == nil || r.Kind == nil {
		return nil, fmt.Errorf("%w: Result is missing kind", ErrDecode)
	}
	out := engine.Result{Kind: *r.Kind}
	switch *r.Kind {
	case engine.Win:
		if r.Winner == nil || int(*r.Winner) >= board.Players {
			return nil, fmt.Errorf("%w: Win without a valid winner", ErrDecode)
		}
		out.Winner = *r.Winner
	case engine.Draw:
	}
	return Result{Result: out}, nil
}

func decodeData(env envelope, v any) error {
	if len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return fmt.Errorf("%w: %s without data", ErrDecode, env.Kind)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, env.Kind, err)
	}
	return nil
}
