package session

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/engine"
	"github.com/tatianab/timeclash/internal/protocol"
)

const (
	sendBuffer   = 32
	writeTimeout = 5 * time.Second
)

// Server hosts a single match for two websocket clients.
type Server struct {
	match    *Match
	saveDir  string
	upgrader websocket.Upgrader

	mu      sync.Mutex // guards clients and every client's seat
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	seat *board.PlayerID
}

// NewServer creates a server for a fresh match. Finished matches are saved
// under saveDir unless it is empty.
func NewServer(saveDir string) *Server {
	return &Server{
		match:   NewMatch(),
		saveDir: saveDir,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Match exposes the hosted match.
func (s *Server) Match() *Match {
	return s.match
}

// Handler serves the game at /play.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/play", s.servePlay)
	return mux
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() {
		log.Printf("[session] listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) servePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[session] upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go c.writeLoop()
	s.readLoop(c)
	s.drop(c)
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[session] write: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) readLoop(c *client) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[session] read: %v", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			log.Printf("[session] ignoring non-text frame")
			continue
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			log.Printf("[session] %v", err)
			continue
		}
		s.handle(c, msg)
	}
}

func (s *Server) handle(c *client, msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Join:
		s.join(c)
	case protocol.Action:
		s.act(c, m.Action)
	case protocol.Leave:
		s.leave(c)
	case protocol.Assign, protocol.Display, protocol.Stati, protocol.Result, protocol.Start:
		log.Printf("[session] clients may not send %s", msg.Kind())
	}
}

func (s *Server) seatOf(c *client) (board.PlayerID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.seat == nil {
		return 0, false
	}
	return *c.seat, true
}

func (s *Server) join(c *client) {
	log.Printf("[session] join requested")
	p, seated := s.seatOf(c)
	if !seated {
		var err error
		p, err = s.match.Join()
		if err != nil {
			log.Printf("[session] join refused: %v", err)
			return
		}
		s.mu.Lock()
		c.seat = &p
		s.mu.Unlock()
		log.Printf("[session] assigned seat %d", p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueue(c, protocol.Assign{Player: p})
	s.sendState([]*client{c})
}

func (s *Server) act(c *client, a engine.Action) {
	p, seated := s.seatOf(c)
	if !seated {
		log.Printf("[session] action from unseated client ignored")
		return
	}
	log.Printf("[match] received %v from player %d", a, p)

	turn, err := s.match.Submit(p, a)
	if err != nil {
		log.Printf("[match] player %d: %v", p, err)
		if errors.Is(err, engine.ErrGameOver) {
			s.mu.Lock()
			s.sendState([]*client{c})
			s.mu.Unlock()
		}
		return
	}
	if !turn.Resolved {
		return
	}
	if turn.Rejected != nil {
		log.Printf("[match] invalid move (%v), awaiting new actions", turn.Rejected)
	}
	if turn.Result != nil {
		log.Printf("[match] %v", turn.Result)
	}

	if turn.Finished != nil && s.saveDir != "" {
		if err := turn.Finished.Save(s.saveDir); err != nil {
			log.Printf("[match] saving record: %v", err)
		} else {
			log.Printf("[match] saved record %s", turn.Finished.ID)
		}
	}

	s.mu.Lock()
	s.sendState(s.seatedLocked())
	s.mu.Unlock()
}

func (s *Server) leave(c *client) {
	s.mu.Lock()
	seat := c.seat
	c.seat = nil
	s.mu.Unlock()
	if seat == nil {
		return
	}
	s.match.Leave(*seat)
	log.Printf("[session] player %d left", *seat)
}

func (s *Server) drop(c *client) {
	s.leave(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.conn.Close()
	}
}

func (s *Server) seatedLocked() []*client {
	var out []*client
	for c := range s.clients {
		if c.seat != nil {
			out = append(out, c)
		}
	}
	return out
}

// sendState queues Display, Stati, Result when there is one, and Start for
// each target. The caller holds s.mu so that broadcasts never interleave.
func (s *Server) sendState(targets []*client) {
	state, err := s.match.Snapshot()
	if err != nil {
		log.Printf("[match] cannot project state: %v", err)
		return
	}
	msgs := []protocol.Message{
		protocol.Display{Grid: state.Grid},
		protocol.Stati{Stati: state.Stati},
	}
	if state.Result != nil {
		msgs = append(msgs, protocol.Result{Result: *state.Result})
	}
	msgs = append(msgs, protocol.Start{})

	for _, c := range targets {
		for _, m := range msgs {
			s.enqueue(c, m)
		}
	}
}

func (s *Server) enqueue(c *client, m protocol.Message) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	data, err := protocol.Encode(m)
	if err != nil {
		log.Printf("[session] encode %s: %v", m.Kind(), err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[session] client too slow, dropping connection")
		delete(s.clients, c)
		close(c.send)
	}
}
