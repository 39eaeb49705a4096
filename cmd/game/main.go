package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/timeclash/internal/config"
	"github.com/tatianab/timeclash/internal/session"
	"github.com/tatianab/timeclash/internal/tui"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file or nowhere.
	if os.Getenv("DEBUG") != "" {
		f, err := tea.LogToFile("debug.log", "timeclash")
		if err != nil {
			fmt.Printf("Error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := session.Dial(ctx, cfg.ServerURL)
	cancel()
	if err != nil {
		fmt.Printf("Error connecting to %s: %v\n", cfg.ServerURL, err)
		os.Exit(1)
	}
	defer client.Close()

	if err := tui.Run(client); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
