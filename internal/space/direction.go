package space

import "fmt"

// Spatial is a step on the grid.
type Spatial uint8

const (
	Left Spatial = iota
	Right
	Up
	Down
)

// Temporal is a step along the timeline.
type Temporal uint8

const (
	Forward Temporal = iota
	Backward
)

// Direction always carries both axes; there is no way to stand still.
type Direction struct {
	Spatial  Spatial  `json:"spatial" yaml:"spatial"`
	Temporal Temporal `json:"temporal" yaml:"temporal"`
}

func (d Direction) String() string {
	return d.Spatial.String() + "/" + d.Temporal.String()
}

func (s Spatial) valid() bool {
	switch s {
	case Left, Right, Up, Down:
		return true
	}
	return false
}

func (s Spatial) String() string {
	switch s {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Up:
		return "Up"
	case Down:
		return "Down"
	}
	return fmt.Sprintf("Spatial(%d)", uint8(s))
}

func (s Spatial) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("unknown spatial direction %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Spatial) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Left":
		*s = Left
	case "Right":
		*s = Right
	case "Up":
		*s = Up
	case "Down":
		*s = Down
	default:
		return fmt.Errorf("unknown spatial direction %q", text)
	}
	return nil
}

func (t Temporal) valid() bool {
	switch t {
	case Forward, Backward:
		return true
	}
	return false
}

func (t Temporal) String() string {
	switch t {
	case Forward:
		return "Forward"
	case Backward:
		return "Backward"
	}
	return fmt.Sprintf("Temporal(%d)", uint8(t))
}

func (t Temporal) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("unknown temporal direction %d", uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *Temporal) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Forward":
		*t = Forward
	case "Backward":
		*t = Backward
	default:
		return fmt.Errorf("unknown temporal direction %q", text)
	}
	return nil
}
