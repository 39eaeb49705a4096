package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/engine"
	"github.com/tatianab/timeclash/internal/models"
	"github.com/tatianab/timeclash/internal/protocol"
	"github.com/tatianab/timeclash/internal/space"
)

func startServer(t *testing.T, saveDir string) (*Server, string) {
	t.Helper()
	srv := NewServer(saveDir)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/play"
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func next(t *testing.T, c *Client) protocol.Message {
	t.Helper()
	select {
	case m, ok := <-c.Messages():
		if !ok {
			t.Fatalf("Connection closed: %v", c.Err())
		}
		return m
	case <-time.After(5 * time.Second):
		t.Fatalf("Timed out waiting for a message")
	}
	return nil
}

// untilStart collects messages up to and including the next Start.
func untilStart(t *testing.T, c *Client) []protocol.Message {
	t.Helper()
	var out []protocol.Message
	for {
		m := next(t, c)
		out = append(out, m)
		if m.Kind() == protocol.KindStart {
			return out
		}
	}
}

func stati(t *testing.T, msgs []protocol.Message) [board.Players]board.Status {
	t.Helper()
	for _, m := range msgs {
		if s, ok := m.(protocol.Stati); ok {
			return s.Stati
		}
	}
	t.Fatalf("No Stati in %v", msgs)
	return [board.Players]board.Status{}
}

func join(t *testing.T, c *Client, want board.PlayerID) {
	t.Helper()
	if err := c.Send(protocol.Join{}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	m := next(t, c)
	a, ok := m.(protocol.Assign)
	if !ok || a.Player != want {
		t.Fatalf("Expected Assign(%d), got %#v", want, m)
	}
	msgs := untilStart(t, c)
	if msgs[0].Kind() != protocol.KindDisplay {
		t.Errorf("Expected Display first, got %s", msgs[0].Kind())
	}
}

func send(t *testing.T, c *Client, s space.Spatial, tm space.Temporal, k engine.ActionKind) {
	t.Helper()
	if err := c.Send(protocol.Action{Action: act(s, tm, k)}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
}

func TestClientCloseWithoutDraining(t *testing.T) {
	flood := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		frame, _ := protocol.Encode(protocol.Start{})
		for range 4 * sendBuffer {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
		conn.ReadMessage()
	}))
	defer flood.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, "ws"+strings.TrimPrefix(flood.URL, "http"))
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(c.Messages()) < sendBuffer {
		if time.Now().After(deadline) {
			t.Fatalf("Buffer never filled, got %d messages", len(c.Messages()))
		}
		time.Sleep(10 * time.Millisecond)
	}

	closed := make(chan struct{})
	go func() {
		c.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatalf("Close blocked on an undrained reader")
	}

	n := 0
	for range c.Messages() {
		n++
	}
	if n > sendBuffer {
		t.Errorf("Expected at most %d buffered messages, got %d", sendBuffer, n)
	}
}

func TestServerPlaysTurns(t *testing.T) {
	_, url := startServer(t, "")
	p0, p1 := dial(t, url), dial(t, url)
	join(t, p0, 0)
	join(t, p1, 1)

	send(t, p0, space.Down, space.Forward, engine.Move)
	send(t, p1, space.Up, space.Forward, engine.Move)
	for _, c := range []*Client{p0, p1} {
		msgs := untilStart(t, c)
		if len(msgs) != 3 {
			t.Errorf("Expected Display, Stati, Start, got %v", msgs)
		}
	}

	send(t, p0, space.Down, space.Forward, engine.Attack)
	send(t, p1, space.Up, space.Forward, engine.Move)
	for _, c := range []*Client{p0, p1} {
		s := stati(t, untilStart(t, c))
		if s[1].Health != 2 || s[0].Health != 3 {
			t.Errorf("Expected player 1 wounded, got %+v", s)
		}
	}
}

func TestServerRebroadcastsOnInvalidMove(t *testing.T) {
	srv, url := startServer(t, "")
	p0, p1 := dial(t, url), dial(t, url)
	join(t, p0, 0)
	join(t, p1, 1)

	send(t, p0, space.Left, space.Backward, engine.Move)
	send(t, p1, space.Up, space.Forward, engine.Move)
	for _, c := range []*Client{p0, p1} {
		s := stati(t, untilStart(t, c))
		if s[0].Elapsed != 0 || s[1].Elapsed != 0 {
			t.Errorf("Rejected turn advanced time: %+v", s)
		}
	}
	if r := srv.Match().Record(); r.Rejected != 1 {
		t.Errorf("Expected 1 rejected turn, got %d", r.Rejected)
	}
}

func TestServerIgnoresBadFrames(t *testing.T) {
	_, url := startServer(t, "")
	c := dial(t, url)
	c.writeMu.Lock()
	err := c.conn.WriteMessage(websocket.TextMessage, []byte(`{"kind":"Teleport"}`))
	c.writeMu.Unlock()
	if err != nil {
		t.Fatalf("WriteMessage returned error: %v", err)
	}
	if err := c.Send(protocol.Start{}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	join(t, c, 0)
}

func waitFree(t *testing.T, m *Match, p board.PlayerID) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		m.mu.Lock()
		taken := m.seats[p]
		m.mu.Unlock()
		if !taken {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Seat %d was never freed", p)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServerFreesSeats(t *testing.T) {
	srv, url := startServer(t, "")
	p0, p1 := dial(t, url), dial(t, url)
	join(t, p0, 0)
	join(t, p1, 1)

	if err := p0.Send(protocol.Leave{}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	waitFree(t, srv.Match(), 0)
	p1.Close()
	waitFree(t, srv.Match(), 1)

	join(t, dial(t, url), 0)
}

func TestServerSavesFinishedMatch(t *testing.T) {
	dir := t.TempDir()
	_, url := startServer(t, dir)
	p0, p1 := dial(t, url), dial(t, url)
	join(t, p0, 0)
	join(t, p1, 1)

	turns := [][board.Players]engine.Action{
		{act(space.Down, space.Forward, engine.Move), act(space.Up, space.Forward, engine.Move)},
		{act(space.Down, space.Forward, engine.Attack), act(space.Up, space.Forward, engine.Move)},
		{act(space.Left, space.Forward, engine.Move), act(space.Left, space.Forward, engine.Move)},
		{act(space.Left, space.Backward, engine.Attack), act(space.Left, space.Backward, engine.Move)},
		{act(space.Left, space.Backward, engine.Attack), act(space.Up, space.Backward, engine.Move)},
		{act(space.Left, space.Backward, engine.Attack), act(space.Left, space.Forward, engine.Move)},
		{act(space.Up, space.Forward, engine.Move), act(space.Right, space.Forward, engine.Move)},
		{act(space.Left, space.Forward, engine.Attack), act(space.Up, space.Backward, engine.Move)},
	}
	var last []protocol.Message
	for _, turn := range turns {
		for i, c := range []*Client{p0, p1} {
			if err := c.Send(protocol.Action{Action: turn[i]}); err != nil {
				t.Fatalf("Send returned error: %v", err)
			}
		}
		last = untilStart(t, p0)
		untilStart(t, p1)
	}

	var res *protocol.Result
	for _, m := range last {
		if r, ok := m.(protocol.Result); ok {
			res = &r
		}
	}
	if res == nil || res.Result.Kind != engine.Win || res.Result.Winner != 0 {
		t.Fatalf("Expected Result(Win 0), got %v", last)
	}

	// The record is written before the final broadcast goes out.
	ids, err := models.ListMatches(dir)
	if err != nil {
		t.Fatalf("ListMatches returned error: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Expected a saved match, got %v", ids)
	}
	r, err := models.LoadMatch(dir, ids[0])
	if err != nil {
		t.Fatalf("LoadMatch returned error: %v", err)
	}
	if len(r.Turns) != len(turns) || r.Result == nil || r.FinishedAt.IsZero() {
		t.Errorf("Unexpected record %+v", r)
	}

	// Actions after the end only earn a fresh copy of the final state.
	send(t, p0, space.Right, space.Forward, engine.Move)
	msgs := untilStart(t, p0)
	if len(msgs) != 4 {
		t.Errorf("Expected Display, Stati, Result, Start, got %v", msgs)
	}
}
