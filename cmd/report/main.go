package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"meta-scanner/internal/db"
	"meta-scanner/internal/meta"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	rank := flag.String("rank", "EMERALD_PLUS", "Rank bucket (EMERALD_PLUS, DIAMOND_PLUS, ALL, or a single tier)")
	role := flag.String("role", "", "Filter by role (TOP, JUNGLE, MID, ADC, SUPPORT)")
	limit := flag.Int("limit", 30, "Number of champions to show")
	flag.Parse()

	ctx := context.Background()

	database, err := db.New(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	tiers := meta.TargetTiers(strings.ToUpper(*rank))

	total, err := database.CountScanned(ctx, tiers)
	if err != nil {
		log.Fatalf("Failed to count scanned matches: %v", err)
	}
	rows, err := database.GetTierListRows(ctx, tiers)
	if err != nil {
		log.Fatalf("Failed to load champion rows: %v", err)
	}
	matchups, err := database.GetTierListMatchups(ctx, tiers, meta.MinCounterMatches)
	if err != nil {
		log.Fatalf("Failed to load matchups: %v", err)
	}

	entries := meta.BuildTierList(rows, matchups, total, strings.ToUpper(*role))
	if len(entries) > *limit {
		entries = entries[:*limit]
	}

	fmt.Printf("\nTier list for %s (%d scanned matches)\n\n", strings.ToUpper(*rank), total)

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header("#", "CHAMPION", "ROLE", "TIER", "WIN%", "PICK%", "BAN%", "MATCHES", "COUNTERS")

	for i, e := range entries {
		table.Append(
			strconv.Itoa(i+1),
			e.Champion,
			e.Role,
			e.Grade,
			fmt.Sprintf("%.2f", e.WinRate),
			fmt.Sprintf("%.2f", e.PickRate),
			fmt.Sprintf("%.2f", e.BanRate),
			strconv.Itoa(e.Matches),
			strings.Join(e.Counters, ", "),
		)
	}
	table.Render()
}
