package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tatianab/timeclash/internal/config"
	"github.com/tatianab/timeclash/internal/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := session.NewServer(cfg.SaveDir)
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	log.Printf("[session] shut down")
}
