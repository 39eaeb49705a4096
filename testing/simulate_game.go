package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/tatianab/timeclash/internal/board"
	"github.com/tatianab/timeclash/internal/config"
	"github.com/tatianab/timeclash/internal/engine"
	"github.com/tatianab/timeclash/internal/models"
	"github.com/tatianab/timeclash/internal/narrator"
	"github.com/tatianab/timeclash/internal/protocol"
	"github.com/tatianab/timeclash/internal/session"
	"github.com/tatianab/timeclash/internal/space"
)

func act(s space.Spatial, t space.Temporal, k engine.ActionKind) engine.Action {
	return engine.Action{Direction: space.Direction{Spatial: s, Temporal: t}, Kind: k}
}

// script is a full match that player 0 wins on the eighth accepted turn. The
// fourth entry is thrown out because player 0 steps onto its own past.
var script = [][board.Players]engine.Action{
	{act(space.Down, space.Forward, engine.Move), act(space.Up, space.Forward, engine.Move)},
	{act(space.Down, space.Forward, engine.Attack), act(space.Up, space.Forward, engine.Move)},
	{act(space.Left, space.Forward, engine.Move), act(space.Left, space.Forward, engine.Move)},
	{act(space.Right, space.Backward, engine.Move), act(space.Left, space.Backward, engine.Move)},
	{act(space.Left, space.Backward, engine.Attack), act(space.Left, space.Backward, engine.Move)},
	{act(space.Left, space.Backward, engine.Attack), act(space.Up, space.Backward, engine.Move)},
	{act(space.Left, space.Backward, engine.Attack), act(space.Left, space.Forward, engine.Move)},
	{act(space.Up, space.Forward, engine.Move), act(space.Right, space.Forward, engine.Move)},
	{act(space.Left, space.Forward, engine.Attack), act(space.Up, space.Backward, engine.Move)},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 1. Host a match on a free local port
	fmt.Println("--- Step 1: Starting server ---")
	srv := session.NewServer(cfg.SaveDir)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	go http.Serve(ln, srv.Handler())
	url := fmt.Sprintf("ws://%s/play", ln.Addr())
	fmt.Printf("Serving on %s\n\n", url)

	// 2. Seat two players
	fmt.Println("--- Step 2: Seating players ---")
	var players [board.Players]*session.Client
	for i := range players {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		c, err := session.Dial(ctx, url)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect player %d: %v", i, err)
		}
		defer c.Close()
		if err := c.Send(protocol.Join{}); err != nil {
			log.Fatalf("Failed to join: %v", err)
		}
		drain(c, i == 0)
		players[i] = c
	}

	// 3. Play the script
	for turn, actions := range script {
		fmt.Printf("\n--- Turn %d ---\n", turn+1)
		for i, c := range players {
			fmt.Printf("Player %d: %v\n", i, actions[i])
			if err := c.Send(protocol.Action{Action: actions[i]}); err != nil {
				log.Fatalf("Failed to send action: %v", err)
			}
		}
		result := drain(players[0], true)
		drain(players[1], false)
		if result != nil {
			fmt.Printf("\nGame Ended: %v\n", result)
			break
		}
	}

	record := srv.Match().Record()
	fmt.Printf("Record %s: %d turns, %d rejected\n", record.ID, len(record.Turns), record.Rejected)

	// 4. Commentary, when Gemini is configured
	if cfg.RequireGemini() != nil {
		return
	}
	recap(cfg, &record)
}

// drain reads up to the next Start and returns the result if one arrived.
func drain(c *session.Client, show bool) *engine.Result {
	var result *engine.Result
	for {
		var m protocol.Message
		select {
		case msg, ok := <-c.Messages():
			if !ok {
				log.Fatalf("Connection closed: %v", c.Err())
			}
			m = msg
		case <-time.After(5 * time.Second):
			log.Fatalf("Timed out waiting for the server")
		}

		switch m := m.(type) {
		case protocol.Assign:
			fmt.Printf("Assigned seat %d\n", m.Player)
		case protocol.Display:
			if show {
				printGrid(m.Grid)
			}
		case protocol.Stati:
			if show {
				for p, s := range m.Stati {
					fmt.Printf("Player %d: health=%d invulnerable=%d elapsed=%d\n", p, s.Health, s.Invulnerable, s.Elapsed)
				}
			}
		case protocol.Result:
			r := m.Result
			result = &r
		case protocol.Start:
			return result
		case protocol.Join, protocol.Action, protocol.Leave:
			log.Printf("[client] unexpected %s", m.Kind())
		}
	}
}

func printGrid(g engine.Grid) {
	for t := range space.TimelineLength {
		fmt.Printf("t=%d  ", t)
	}
	fmt.Println()
	for y := range space.GridSize {
		for t := range space.TimelineLength {
			for x := range space.GridSize {
				c := g[t][y][x]
				switch {
				case c.Occupant != nil && c.Occupant.Active:
					fmt.Printf("%d", c.Occupant.Player)
				case c.Occupant != nil:
					fmt.Print("o")
				case c.Hazard:
					fmt.Print("X")
				default:
					fmt.Print(".")
				}
			}
			fmt.Print("  ")
		}
		fmt.Println()
	}
}

func recap(cfg *config.Config, record *models.MatchRecord) {
	fmt.Println("\n--- Step 4: Recap ---")
	ctx := context.Background()
	n, err := narrator.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Printf("Failed to create narrator: %v", err)
		return
	}
	defer n.Close()
	text, err := n.Recap(ctx, record)
	if err != nil {
		log.Printf("Failed to generate recap: %v", err)
		return
	}
	fmt.Println(text)
}
