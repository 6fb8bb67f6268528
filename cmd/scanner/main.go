package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"meta-scanner/internal/db"
	"meta-scanner/internal/ddragon"
	"meta-scanner/internal/riot"
	"meta-scanner/internal/scanner"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			fmt.Printf("Loaded .env from: %s\n", path)
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		log.Println("No .env file found, using environment variables")
	}

	// Parse flags
	tiers := flag.String("tiers", "CHALLENGER", "Comma-separated tiers to scan (e.g., 'CHALLENGER,GRANDMASTER')")
	platform := flag.String("platform", "na1", "Riot platform routing (na1, euw1, kr, ...)")
	patch := flag.String("patch", "", "Only aggregate matches on this patch (e.g., '14.24'); empty scans all")
	matchesPerPlayer := flag.Int("count", 20, "Number of matches to fetch per player")
	maxMatches := flag.Int("max-matches", 1000, "Maximum matches to process per tier")
	workers := flag.Int("workers", scanner.DefaultWorkerCount, "Fetch worker count")
	sampling := flag.Float64("timeline-sampling", scanner.DefaultTimelineSampling, "Fraction of matches to fetch timelines for (0.0-1.0)")
	flag.Parse()

	if os.Getenv("RIOT_API_KEY") == "" {
		log.Fatal("RIOT_API_KEY environment variable not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown; a second signal forces exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("[Signal] Received %v, initiating graceful shutdown...", sig)
		cancel()

		sig = <-sigChan
		log.Printf("[Signal] Received second %v, forcing exit", sig)
		os.Exit(1)
	}()

	client, err := riot.NewClient(*platform)
	if err != nil {
		log.Fatalf("Failed to create Riot client: %v", err)
	}

	database, err := db.New(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.CreateTables(ctx); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	items := ddragon.NewItemRegistry()
	if err := items.Load(); err != nil {
		log.Fatalf("Failed to load item data: %v", err)
	}
	log.Printf("[Scanner] Loaded %d items from Data Dragon (v%s)", items.Count(), items.Version())

	champions := ddragon.NewChampionRegistry()
	if err := champions.Load(); err != nil {
		log.Fatalf("Failed to load champion data: %v", err)
	}
	log.Printf("[Scanner] Loaded %d champions from Data Dragon", champions.Count())

	for _, tier := range strings.Split(strings.ToUpper(*tiers), ",") {
		tier = strings.TrimSpace(tier)
		if tier == "" {
			continue
		}
		if _, ok := riot.TierOrder[tier]; !ok {
			log.Fatalf("Unknown tier: %s", tier)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Printf("[Scanner] Scanning %s (max %d matches)", tier, *maxMatches)
		s := scanner.New(client, database, items, champions, scanner.Config{
			Tier:             tier,
			Patch:            *patch,
			MatchesPerPlayer: *matchesPerPlayer,
			MaxMatches:       *maxMatches,
			WorkerCount:      *workers,
			TimelineSampling: *sampling,
		})
		if err := s.Run(ctx); err != nil {
			log.Printf("[Scanner] %s scan failed: %v", tier, err)
		}
	}
}
