// Package session seats two players, pairs up their actions for each tick and
// serves the match over websockets.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/engine"
	"github.com/tatianab/timeclash/internal/models"
)

var (
	ErrFull      = errors.New("both seats are taken")
	ErrNotSeated = errors.New("player is not seated")
)

// Turn reports what a submission did to the match.
type Turn struct {
	// Resolved is true once both actions were in and the engine ran,
	// whether it accepted them or not.
	Resolved bool
	// Rejected holds the invalid move error when the engine refused the
	// pair. Both players must submit again.
	Rejected error
	Result   *engine.Result
	// Finished is the completed record, set only on the turn that ended
	// the match.
	Finished *models.MatchRecord
}

// State is everything broadcast to players after a turn.
type State struct {
	Grid   engine.Grid
	Stati  [board.Players]board.Status
	Result *engine.Result
}

// Match is one game instance. All access to the engine goes through its
// lock.
type Match struct {
	mu      sync.Mutex
	engine  *engine.Engine
	pending [board.Players]*engine.Action
	seats   [board.Players]bool
	record  *models.MatchRecord
	now     func() time.Time
}

func NewMatch() *Match {
	return &Match{
		engine: engine.New(),
		record: models.NewMatchRecord(time.Now()),
		now:    time.Now,
	}
}

// Join takes the lowest free seat.
func (m *Match) Join() (board.PlayerID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, taken := range m.seats {
		if !taken {
			m.seats[i] = true
			return board.PlayerID(i), nil
		}
	}
	return 0, ErrFull
}

// Leave frees the seat and drops any action it had queued.
func (m *Match) Leave(p board.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(p) >= board.Players {
		return
	}
	m.seats[p] = false
	m.pending[p] = nil
}

// Submit queues p's action for this tick. A second submission from the same
// seat replaces the first. When both seats have an action the turn is
// resolved and both slots are cleared, accepted or not.
func (m *Match) Submit(p board.PlayerID, a engine.Action) (Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if int(p) >= board.Players || !m.seats[p] {
		return Turn{}, ErrNotSeated
	}
	if m.engine.Result() != nil {
		return Turn{}, engine.ErrGameOver
	}

	m.pending[p] = &a
	if m.pending[0] == nil || m.pending[1] == nil {
		return Turn{}, nil
	}
	actions := [board.Players]engine.Action{*m.pending[0], *m.pending[1]}
	m.pending = [board.Players]*engine.Action{}

	res, err := m.engine.ResolveTurn(actions[0], actions[1])
	if errors.Is(err, engine.ErrInvalidMove) {
		m.record.Rejected++
		return Turn{Resolved: true, Rejected: err}, nil
	}
	if err != nil {
		return Turn{}, fmt.Errorf("resolve turn %d: %w", m.engine.Turn()+1, err)
	}

	m.record.AddTurn(actions, m.engine)
	turn := Turn{Resolved: true, Result: res}
	if res != nil {
		m.record.Finish(m.now())
		finished := *m.record
		turn.Finished = &finished
	}
	return turn, nil
}

// Snapshot projects the current state for broadcast.
func (m *Match) Snapshot() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid, err := m.engine.Display()
	if err != nil {
		return State{}, err
	}
	return State{Grid: grid, Stati: m.engine.Stati(), Result: m.engine.Result()}, nil
}

// Record returns a copy of the match record so far.
func (m *Match) Record() models.MatchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := *m.record
	r.Turns = append([]models.TurnRecord(nil), m.record.Turns...)
	return r
}
