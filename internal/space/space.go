// Package space defines coordinates on the space-time grid and the
// directions players can step in.
package space

import (
	"errors"
	"fmt"
)

const (
	GridSize       = 7
	TimelineLength = 5
)

// ErrOutOfBounds is returned when coordinate arithmetic leaves the grid or
// the timeline.
var ErrOutOfBounds = errors.New("coordinate out of bounds")

// Coord identifies one cell of the grid at one timeline slice.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	T int `json:"t" yaml:"t"`
}

// InBounds reports whether c lies inside the grid and the timeline.
func (c Coord) InBounds() bool {
	return c.X >= 0 && c.X < GridSize &&
		c.Y >= 0 && c.Y < GridSize &&
		c.T >= 0 && c.T < TimelineLength
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)@%d", c.X, c.Y, c.T)
}

// Step moves c one cell along the spatial axis.
func (c Coord) Step(s Spatial) (Coord, error) {
	out := c
	switch s {
	case Left:
		out.X--
	case Right:
		out.X++
	case Up:
		out.Y--
	case Down:
		out.Y++
	}
	return out.checked(s.valid())
}

// Shift moves c one slice along the temporal axis.
func (c Coord) Shift(t Temporal) (Coord, error) {
	out := c
	switch t {
	case Forward:
		out.T++
	case Backward:
		out.T--
	}
	return out.checked(t.valid())
}

// Add applies both axes of d to c.
func (c Coord) Add(d Direction) (Coord, error) {
	moved, err := c.Step(d.Spatial)
	if err != nil {
		return moved, err
	}
	return moved.Shift(d.Temporal)
}

func (c Coord) checked(known bool) (Coord, error) {
	if !known {
		panic(fmt.Sprintf("space: unknown direction applied to %v", c))
	}
	if !c.InBounds() {
		return c, fmt.Errorf("%w: %v", ErrOutOfBounds, c)
	}
	return c, nil
}
