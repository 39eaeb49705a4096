package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/engine"
	"github.com/tatianab/timeclash/internal/protocol"
	"github.com/tatianab/timeclash/internal/space"
)

type fakeConn struct {
	msgs chan protocol.Message
	sent []protocol.Message
}

func newFakeConn() *fakeConn {
	return &fakeConn{msgs: make(chan protocol.Message, 8)}
}

func (f *fakeConn) Messages() <-chan protocol.Message { return f.msgs }
func (f *fakeConn) Err() error                        { return nil }

func (f *fakeConn) Send(m protocol.Message) error {
	f.sent = append(f.sent, m)
	return nil
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// startedModel feeds the model what the server sends after a join.
func startedModel(t *testing.T, conn *fakeConn) model {
	t.Helper()
	e := engine.New()
	grid, err := e.Display()
	if err != nil {
		t.Fatalf("Display returned error: %v", err)
	}
	m := NewModel(conn)
	for _, msg := range []protocol.Message{
		protocol.Assign{Player: 1},
		protocol.Display{Grid: grid},
		protocol.Stati{Stati: e.Stati()},
		protocol.Start{},
	} {
		m, _ = update(t, m, serverMsg{msg})
	}
	return m
}

func TestJoinFlow(t *testing.T) {
	conn := newFakeConn()
	m := startedModel(t, conn)
	if m.state != stateComposing {
		t.Fatalf("Expected composing state, got %d", m.state)
	}
	if m.seat == nil || *m.seat != 1 {
		t.Fatalf("Expected seat 1, got %v", m.seat)
	}

	view := m.View()
	for _, want := range []string{"t=0", "t=4", "Player 1 (you)", "Next action"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestComposeAndConfirm(t *testing.T) {
	conn := newFakeConn()
	m := startedModel(t, conn)

	for _, k := range []tea.KeyMsg{runes("a"), {Type: tea.KeyLeft}, runes("b")} {
		m, _ = update(t, m, k)
	}
	want := engine.Action{
		Direction: space.Direction{Spatial: space.Left, Temporal: space.Backward},
		Kind:      engine.Attack,
	}
	if m.draft != want {
		t.Fatalf("Expected draft %v, got %v", want, m.draft)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateWaiting || cmd == nil {
		t.Fatalf("Expected to wait with a send command, state %d", m.state)
	}
	cmd()
	if len(conn.sent) != 1 {
		t.Fatalf("Expected one message sent, got %v", conn.sent)
	}
	if a, ok := conn.sent[0].(protocol.Action); !ok || a.Action != want {
		t.Errorf("Expected Action %v, got %#v", want, conn.sent[0])
	}

	// Keys are ignored until the next Start.
	m, _ = update(t, m, runes("m"))
	if m.draft.Kind != engine.Attack {
		t.Errorf("Draft changed while waiting")
	}
}

func TestRejectedTurnIsReported(t *testing.T) {
	m := startedModel(t, newFakeConn())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// The server resends unchanged vitals when the turn is thrown out.
	m, _ = update(t, m, serverMsg{protocol.Stati{Stati: m.stati}})
	m, _ = update(t, m, serverMsg{protocol.Start{}})
	if m.state != stateComposing {
		t.Fatalf("Expected composing state, got %d", m.state)
	}
	if last := m.gameLog[len(m.gameLog)-1]; !strings.Contains(last, "invalid") {
		t.Errorf("Expected an invalid turn notice, got %q", last)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	stati := m.stati
	for i := range stati {
		stati[i].Elapsed = 1
	}
	m, _ = update(t, m, serverMsg{protocol.Stati{Stati: stati}})
	m, _ = update(t, m, serverMsg{protocol.Start{}})
	if last := m.gameLog[len(m.gameLog)-1]; last != "Turn 1 resolved." {
		t.Errorf("Expected a resolved turn notice, got %q", last)
	}
}

func TestResultEndsPlay(t *testing.T) {
	m := startedModel(t, newFakeConn())
	m, _ = update(t, m, serverMsg{protocol.Result{Result: engine.Result{Kind: engine.Win, Winner: 1}}})
	m, _ = update(t, m, serverMsg{protocol.Start{}})
	if m.state != stateOver {
		t.Fatalf("Expected game over state, got %d", m.state)
	}
	if !strings.Contains(m.View(), "You win!") {
		t.Errorf("Expected the win banner")
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.state != stateOver {
		t.Errorf("Confirm should do nothing after the match ends")
	}
}

func TestDisconnect(t *testing.T) {
	m := startedModel(t, newFakeConn())
	m, _ = update(t, m, disconnectedMsg{errors.New("boom")})
	if m.state != stateError || !strings.Contains(m.View(), "boom") {
		t.Errorf("Expected the error view, got state %d", m.state)
	}
}

func TestListen(t *testing.T) {
	conn := newFakeConn()
	m := NewModel(conn)
	conn.msgs <- protocol.Start{}
	if msg, ok := m.listen()().(serverMsg); !ok || msg.msg.Kind() != protocol.KindStart {
		t.Errorf("Expected Start from listen, got %#v", msg)
	}
	close(conn.msgs)
	if _, ok := m.listen()().(disconnectedMsg); !ok {
		t.Errorf("Expected disconnectedMsg after close")
	}
}

func TestRenderCell(t *testing.T) {
	tests := []struct {
		name string
		cell engine.CellView
		want string
	}{
		{"empty", engine.CellView{}, "."},
		{"hazard", engine.CellView{Hazard: true}, "X"},
		{"attacked", engine.CellView{Incoming: []engine.Incoming{{Player: 0, Attack: true}}}, "!"},
		{"entered", engine.CellView{Incoming: []engine.Incoming{{Player: 0}}}, "+"},
		{"occupied", engine.CellView{Occupant: &engine.Occupant{Player: board.PlayerID(1), Active: true}}, "1"},
		{"past on hazard", engine.CellView{Hazard: true, Occupant: &engine.Occupant{Player: board.PlayerID(0)}}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderCell(tt.cell); !strings.Contains(got, tt.want) {
				t.Errorf("renderCell = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestOccupantStyleMarksHazard(t *testing.T) {
	for _, active := range []bool{true, false} {
		o := engine.Occupant{Player: 0, Active: active}
		if got := occupantStyle(o, true).GetBackground(); got != struckColor {
			t.Errorf("Active=%v on a hazard: expected background %v, got %v", active, struckColor, got)
		}
		if got := occupantStyle(o, false).GetBackground(); got == struckColor {
			t.Errorf("Active=%v off a hazard should not be marked", active)
		}
	}
}
