// Package board stores the whole timeline of the grid: one slice per moment,
// each cell remembering who has ever stood there and whether it was struck.
package board

import (
	"fmt"
	"strings"

	"github.com/tatianab/timeclash/internal/space"
)

// Tile is one cell at one timeline slice.
type Tile struct {
	Occupant *PlayerID
	Hazard   bool
	Status   *Status
}

// Occupied reports whether a player has ever been recorded here.
func (t Tile) Occupied() bool {
	return t.Occupant != nil
}

// Slice is the grid at a single moment, indexed [y][x].
type Slice [space.GridSize][space.GridSize]Tile

// Board holds every slice of the timeline at once.
type Board struct {
	slices [space.TimelineLength]Slice
}

// Spawns are the fixed starting coordinates of players 0 and 1.
var Spawns = [Players]space.Coord{
	{X: space.GridSize / 2, Y: 1, T: 0},
	{X: space.GridSize / 2, Y: space.GridSize - 2, T: 0},
}

// Impact is the resolved effect of one accepted action.
type Impact struct {
	Player   PlayerID     `json:"player" yaml:"player"`
	Location space.Coord  `json:"location" yaml:"location"`
	Hazard   *space.Coord `json:"hazard,omitempty" yaml:"hazard,omitempty"`
}

// New returns a board with nothing on it.
func New() *Board {
	return &Board{}
}

// Initial returns a board with both players placed on their spawns.
func Initial() *Board {
	b := New()
	for i, spawn := range Spawns {
		id := PlayerID(i)
		b.slices[spawn.T][spawn.Y][spawn.X].Occupant = &id
	}
	return b
}

func (b *Board) tile(c space.Coord) (*Tile, error) {
	if !c.InBounds() {
		return nil, fmt.Errorf("%w: %v", space.ErrOutOfBounds, c)
	}
	return &b.slices[c.T][c.Y][c.X], nil
}

// Read returns a copy of the tile at c.
func (b *Board) Read(c space.Coord) (Tile, error) {
	t, err := b.tile(c)
	if err != nil {
		return Tile{}, err
	}
	return *t, nil
}

// WriteStatus replaces the status snapshot at c. Occupant and hazard are left
// alone.
func (b *Board) WriteStatus(c space.Coord, s Status) error {
	t, err := b.tile(c)
	if err != nil {
		return err
	}
	t.Status = &s
	return nil
}

// ApplyImpact records the player at the impact location and marks the hazard,
// if any. Both writes are plain sets, so applying an impact again is a no-op.
func (b *Board) ApplyImpact(imp Impact) error {
	dest, err := b.tile(imp.Location)
	if err != nil {
		return fmt.Errorf("apply impact for player %d: %w", imp.Player, err)
	}
	var struck *Tile
	if imp.Hazard != nil {
		struck, err = b.tile(*imp.Hazard)
		if err != nil {
			return fmt.Errorf("apply impact for player %d: %w", imp.Player, err)
		}
	}

	id := imp.Player
	dest.Occupant = &id
	if struck != nil {
		struck.Hazard = true
	}
	return nil
}

// Hazards lists every struck coordinate ordered by slice, row, then column.
func (b *Board) Hazards() []space.Coord {
	var out []space.Coord
	for t := range b.slices {
		for y := range b.slices[t] {
			for x, tile := range b.slices[t][y] {
				if tile.Hazard {
					out = append(out, space.Coord{X: x, Y: y, T: t})
				}
			}
		}
	}
	return out
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	out := &Board{slices: b.slices}
	for t := range out.slices {
		for y := range out.slices[t] {
			for x := range out.slices[t][y] {
				tile := &out.slices[t][y][x]
				if tile.Occupant != nil {
					id := *tile.Occupant
					tile.Occupant = &id
				}
				if tile.Status != nil {
					s := *tile.Status
					tile.Status = &s
				}
			}
		}
	}
	return out
}

func (b *Board) String() string {
	var sb strings.Builder
	for t := range b.slices {
		fmt.Fprintf(&sb, "t=%d\n", t)
		for y := range b.slices[t] {
			for _, tile := range b.slices[t][y] {
				switch {
				case tile.Occupant != nil:
					fmt.Fprintf(&sb, "%d", *tile.Occupant)
				case tile.Hazard:
					sb.WriteByte('X')
				default:
					sb.WriteByte('.')
				}
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
