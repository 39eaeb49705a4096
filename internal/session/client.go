package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tatianab/timeclash/internal/protocol"
)

// Client is a player's connection to a game server.
type Client struct {
	conn    *websocket.Conn
	msgs    chan protocol.Message
	done    chan struct{} // closed by Close
	stopped chan struct{} // closed when readLoop returns

	closeOnce sync.Once

	writeMu sync.Mutex
	errMu   sync.Mutex
	err     error
}

// Dial connects to the server's play endpoint, e.g. ws://host:4444/play.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{
		conn:    conn,
		msgs:    make(chan protocol.Message, sendBuffer),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Messages delivers decoded server messages until the connection ends.
func (c *Client) Messages() <-chan protocol.Message {
	return c.msgs
}

// Err returns the error that ended the connection, if any.
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Client) Send(m protocol.Message) error {
	data, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close says goodbye, closes the connection and waits for the reader to stop.
// Messages is closed afterwards even if nobody was draining it.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.writeMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.stopped
	return err
}

func (c *Client) readLoop() {
	defer close(c.stopped)
	defer close(c.msgs)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.errMu.Lock()
				c.err = err
				c.errMu.Unlock()
			}
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			log.Printf("[client] %v", err)
			continue
		}
		select {
		case c.msgs <- msg:
		case <-c.done:
			return
		}
	}
}
