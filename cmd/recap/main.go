// Command recap prints a commentary for a saved match. With no argument it
// lists the saved matches.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/tatianab/timeclash/internal/config"
	"github.com/tatianab/timeclash/internal/models"
	"github.com/tatianab/timeclash/internal/narrator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if len(os.Args) < 2 {
		ids, err := models.ListMatches(cfg.SaveDir)
		if err != nil {
			log.Fatalf("Failed to list matches: %v", err)
		}
		if len(ids) == 0 {
			fmt.Printf("No saved matches in %s\n", cfg.SaveDir)
			return
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	}

	record, err := models.LoadMatch(cfg.SaveDir, os.Args[1])
	if err != nil {
		log.Fatalf("Failed to load match: %v", err)
	}
	if err := cfg.RequireGemini(); err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	n, err := narrator.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create narrator: %v", err)
	}
	defer n.Close()

	recap, err := n.Recap(ctx, record)
	if err != nil {
		log.Fatalf("Failed to generate recap: %v", err)
	}
	fmt.Println(recap)
}
