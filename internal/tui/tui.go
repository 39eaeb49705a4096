// Package tui is the terminal client: it draws the timeline, lets the player
// compose an action and talks to the server through a connection.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/engine"
	"github.com/tatianab/timeclash/internal/protocol"
	"github.com/tatianab/timeclash/internal/space"
)

// Conn is the model's link to the server. *session.Client satisfies it.
type Conn interface {
	Messages() <-chan protocol.Message
	Send(protocol.Message) error
	Err() error
}

type sessionState int

const (
	stateJoining sessionState = iota
	stateComposing
	stateWaiting
	stateOver
	stateError
)

const logHeight = 8

type model struct {
	state sessionState
	conn  Conn
	keys  keyMap
	help  help.Model

	seat   *board.PlayerID
	grid   *engine.Grid
	stati  [board.Players]board.Status
	result *engine.Result
	draft  engine.Action
	// submittedAt is the tick count when our last action went out, used to
	// tell an accepted turn from a rejected one.
	submittedAt int

	viewport viewport.Model
	gameLog  []string
	err      error
	width    int
}

// serverMsg carries one message from the server into Update.
type serverMsg struct {
	msg protocol.Message
}

type disconnectedMsg struct {
	err error
}

type errMsg struct {
	err error
}

func NewModel(conn Conn) model {
	return model{
		state: stateJoining,
		conn:  conn,
		keys:  defaultKeys(),
		help:  help.New(),
		draft: engine.Action{
			Direction: space.Direction{Spatial: space.Up, Temporal: space.Forward},
			Kind:      engine.Move,
		},
		viewport: viewport.New(60, logHeight),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.send(protocol.Join{}), m.listen())
}

func (m model) listen() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.conn.Messages()
		if !ok {
			return disconnectedMsg{m.conn.Err()}
		}
		return serverMsg{msg}
	}
}

func (m model) send(msg protocol.Message) tea.Cmd {
	return func() tea.Msg {
		if err := m.conn.Send(msg); err != nil {
			return errMsg{fmt.Errorf("sending %s: %w", msg.Kind(), err)}
		}
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.help.Width = msg.Width
		m.viewport.SetContent(m.renderLog())
		return m, nil

	case serverMsg:
		m = m.handleServer(msg.msg)
		return m, m.listen()

	case disconnectedMsg:
		if m.state != stateOver {
			m.state = stateError
			m.err = msg.err
			if m.err == nil {
				m.err = fmt.Errorf("server closed the connection")
			}
		}
		return m, nil

	case errMsg:
		m.state = stateError
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Sequence(m.send(protocol.Leave{}), tea.Quit)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.state != stateComposing {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		m.draft.Direction.Spatial = space.Left
	case key.Matches(msg, m.keys.Right):
		m.draft.Direction.Spatial = space.Right
	case key.Matches(msg, m.keys.Up):
		m.draft.Direction.Spatial = space.Up
	case key.Matches(msg, m.keys.Down):
		m.draft.Direction.Spatial = space.Down
	case key.Matches(msg, m.keys.Forward):
		m.draft.Direction.Temporal = space.Forward
	case key.Matches(msg, m.keys.Backward):
		m.draft.Direction.Temporal = space.Backward
	case key.Matches(msg, m.keys.Move):
		m.draft.Kind = engine.Move
	case key.Matches(msg, m.keys.Attack):
		m.draft.Kind = engine.Attack
	case key.Matches(msg, m.keys.Confirm):
		m.state = stateWaiting
		m.submittedAt = m.stati[0].Elapsed
		m = m.logf("> %v", m.draft)
		return m, m.send(protocol.Action{Action: m.draft})
	}
	return m, nil
}

func (m model) handleServer(msg protocol.Message) model {
	switch msg := msg.(type) {
	case protocol.Assign:
		p := msg.Player
		m.seat = &p
		m = m.logf("You are player %d.", p)
	case protocol.Display:
		g := msg.Grid
		m.grid = &g
	case protocol.Stati:
		m.stati = msg.Stati
	case protocol.Result:
		r := msg.Result
		if m.result == nil {
			m = m.logf("Match over: %v.", r)
		}
		m.result = &r
		m.state = stateOver
	case protocol.Start:
		if m.result != nil {
			break
		}
		if m.state == stateWaiting {
			if m.stati[0].Elapsed == m.submittedAt {
				m = m.logf("That turn was invalid. Choose again.")
			} else {
				m = m.logf("Turn %d resolved.", m.stati[0].Elapsed)
			}
		}
		m.state = stateComposing
	case protocol.Join, protocol.Action, protocol.Leave:
		m = m.logf("Unexpected %s from server.", msg.Kind())
	}
	return m
}

func (m model) logf(format string, args ...any) model {
	m.gameLog = append(m.gameLog, fmt.Sprintf(format, args...))
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
	return m
}

func (m model) renderLog() string {
	return strings.Join(m.gameLog, "\n")
}

func Run(conn Conn) error {
	p := tea.NewProgram(NewModel(conn), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	sliceStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			Padding(0, 1)

	liveSliceStyle = sliceStyle.BorderForeground(lipgloss.Color("#FFA500"))

	playerStyles = [board.Players]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")).Bold(true),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true),
	}

	struckColor = lipgloss.Color("#5F0000")

	pastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))

	hazardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)

	incomingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))

	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C"))

	draftStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#3C3C3C"))
)

func (m model) View() string {
	var s string

	switch m.state {
	case stateJoining:
		s = "\n  Waiting for a seat...\n"

	case stateComposing, stateWaiting, stateOver:
		s = lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("TIME CLASH"),
			m.renderTimeline(),
			m.renderVitals(),
			m.renderPrompt(),
			logStyle.Render(m.viewport.View()),
			helpStyle.Render(m.help.View(m.keys)),
		)

	case stateError:
		s = fmt.Sprintf("\n  Error: %v\n\nPress q to quit.", m.err)
	}

	return "\n" + s + "\n"
}

// renderTimeline draws every moment side by side, oldest on the left.
func (m model) renderTimeline() string {
	if m.grid == nil {
		return ""
	}
	slices := make([]string, space.TimelineLength)
	for t := range space.TimelineLength {
		slices[t] = m.renderSlice(t)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, slices...)
}

func (m model) renderSlice(t int) string {
	var b strings.Builder
	live := false
	for y := range space.GridSize {
		for x := range space.GridSize {
			c := m.grid[t][y][x]
			if o := c.Occupant; o != nil && o.Active && m.seat != nil && o.Player == *m.seat {
				live = true
			}
			b.WriteString(renderCell(c))
		}
		if y < space.GridSize-1 {
			b.WriteByte('\n')
		}
	}
	style := sliceStyle
	if live {
		style = liveSliceStyle
	}
	return style.Render(fmt.Sprintf("t=%d\n%s", t, b.String()))
}

func renderCell(c engine.CellView) string {
	switch {
	case c.Occupant != nil:
		return occupantStyle(*c.Occupant, c.Hazard).Render(fmt.Sprintf("%d", c.Occupant.Player)) + " "
	case len(c.Attacks()) > 0:
		return incomingStyle.Render("!") + " "
	case c.Hazard:
		return hazardStyle.Render("X") + " "
	case len(c.Incoming) > 0:
		return incomingStyle.Render("+") + " "
	}
	return emptyStyle.Render(".") + " "
}

// occupantStyle colours a player mark, dimmed for past positions and on a red
// ground when the cell was struck.
func occupantStyle(o engine.Occupant, hazard bool) lipgloss.Style {
	style := playerStyles[o.Player]
	if !o.Active {
		style = pastStyle
	}
	if hazard {
		style = style.Background(struckColor)
	}
	return style
}

func (m model) renderVitals() string {
	lines := make([]string, board.Players)
	for i, st := range m.stati {
		p := board.PlayerID(i)
		name := fmt.Sprintf("Player %d", p)
		if m.seat != nil && *m.seat == p {
			name += " (you)"
		}
		hearts := strings.Repeat("♥", max(st.Health, 0)) + strings.Repeat("♡", max(board.StartingHealth-st.Health, 0))
		line := fmt.Sprintf("%-15s %s  invulnerable %d  elapsed %d", name, hearts, st.Invulnerable, st.Elapsed)
		lines[i] = playerStyles[p].Render(line)
	}
	return strings.Join(lines, "\n")
}

func (m model) renderPrompt() string {
	switch m.state {
	case stateComposing:
		return "Next action: " + draftStyle.Render(m.draft.String())
	case stateWaiting:
		return "Sent " + draftStyle.Render(m.draft.String()) + ", waiting for the other player..."
	case stateOver:
		if m.result != nil {
			return titleStyle.Render(resultText(*m.result, m.seat))
		}
	}
	return ""
}

func resultText(r engine.Result, seat *board.PlayerID) string {
	switch r.Kind {
	case engine.Win:
		if seat == nil {
			return r.String()
		}
		if r.Winner == *seat {
			return "You win!"
		}
		return "You lose."
	case engine.Draw:
		return "Draw."
	}
	panic(fmt.Sprintf("tui: unknown result kind %d", r.Kind))
}
