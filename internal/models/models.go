package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/engine"
	"github.com/tatianab/timeclash/internal/space"
)

// TurnRecord is one accepted turn.
type TurnRecord struct {
	Number  int                          `yaml:"number"`
	Actions [board.Players]engine.Action `yaml:"actions"`
	Stati   [board.Players]board.Status  `yaml:"stati"` // vitals after the turn
}

// MatchRecord is the archive of one match, enough to rebuild it exactly.
type MatchRecord struct {
	ID         string                      `yaml:"id"`
	StartedAt  time.Time                   `yaml:"started_at"`
	FinishedAt time.Time                   `yaml:"finished_at,omitempty"`
	Turns      []TurnRecord                `yaml:"turns"`
	Rejected   int                         `yaml:"rejected"` // turns refused as invalid
	Hazards    []space.Coord               `yaml:"hazards,omitempty"`
	FinalStati [board.Players]board.Status `yaml:"final_stati"`
	Result     *engine.Result              `yaml:"result,omitempty"`
}

// NewMatchRecord starts an empty record with a fresh id.
func NewMatchRecord(started time.Time) *MatchRecord {
	return &MatchRecord{
		ID:        uuid.NewString(),
		StartedAt: started,
	}
}

// AddTurn appends the turn the engine just accepted.
func (r *MatchRecord) AddTurn(actions [board.Players]engine.Action, e *engine.Engine) {
	r.Turns = append(r.Turns, TurnRecord{
		Number:  len(r.Turns) + 1,
		Actions: actions,
		Stati:   e.Stati(),
	})
	r.FinalStati = e.Stati()
	r.Hazards = e.Board().Hazards()
	r.Result = e.Result()
}

// Finish stamps the end time.
func (r *MatchRecord) Finish(at time.Time) {
	r.FinishedAt = at
}

// Rebuild replays the recorded turns into a fresh engine.
func (r *MatchRecord) Rebuild() (*engine.Engine, error) {
	turns := make([][board.Players]engine.Action, len(r.Turns))
	for i, t := range r.Turns {
		turns[i] = t.Actions
	}
	return engine.Replay(turns)
}
