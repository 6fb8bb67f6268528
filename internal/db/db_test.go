package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"meta-scanner/internal/meta"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env from project root
	godotenv.Load("../../.env")
}

func skipIfNoDatabase(t *testing.T) *DB {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()
	database, err := New(ctx)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.CreateTables(ctx); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	t.Cleanup(database.Close)
	return database
}

// testKey isolates each run behind a unique patch value so reruns do not
// collide with earlier rows.
func testKey() meta.AggregateKey {
	return meta.AggregateKey{
		Champion: "TestChampion",
		Role:     meta.RoleMid,
		Tier:     "CHALLENGER",
		Patch:    fmt.Sprintf("t%d", time.Now().UnixNano()),
	}
}

func TestApplyParticipant_Integration(t *testing.T) {
	database := skipIfNoDatabase(t)
	ctx := context.Background()
	key := testKey()

	win := &meta.ParticipantStats{
		Champion: key.Champion,
		Role:     key.Role,
		Win:      true,
		Items:    meta.StatBucket{"core_6655-3020-3089": {Wins: 1, Matches: 1}, "6655": {Wins: 1, Matches: 1}},
		Runes:    meta.StatBucket{"8010": {Wins: 1, Matches: 1}},
		Spells:   meta.StatBucket{"4": {Wins: 1, Matches: 1}},
		SkillOrder: meta.StatBucket{
			"Q-W-E": {Wins: 1, Matches: 1},
		},
		Kills: 7, Deaths: 2, Assists: 9, CS: 190, Gold: 13000, Damage: 24000, Vision: 20, Duration: 1800,
	}
	loss := &meta.ParticipantStats{
		Champion: key.Champion,
		Role:     key.Role,
		Win:      false,
		Items:    meta.StatBucket{"6655": {Wins: 0, Matches: 1}, "3089": {Wins: 0, Matches: 1}},
		Runes:    meta.StatBucket{},
		Spells:   meta.StatBucket{},
		SkillOrder: meta.StatBucket{
			"Q-W-E": {Wins: 0, Matches: 1},
		},
		Kills: 2, Deaths: 8, Assists: 3,
	}

	// First apply takes the insert path, second the merge path.
	if err := database.ApplyParticipant(ctx, key, win); err != nil {
		t.Fatalf("ApplyParticipant (insert) failed: %v", err)
	}
	if err := database.ApplyParticipant(ctx, key, loss); err != nil {
		t.Fatalf("ApplyParticipant (merge) failed: %v", err)
	}

	rows, err := database.GetChampionRows(ctx, key.Champion, []string{key.Role}, []string{key.Tier})
	if err != nil {
		t.Fatalf("GetChampionRows failed: %v", err)
	}
	var row *meta.ChampionStatRow
	for i := range rows {
		if rows[i].Patch == key.Patch {
			row = &rows[i]
		}
	}
	if row == nil {
		t.Fatalf("Row for patch %s not found", key.Patch)
	}

	if row.Matches != 2 || row.Wins != 1 {
		t.Errorf("Row = %d matches / %d wins, want 2/1", row.Matches, row.Wins)
	}
	if s := row.Items["6655"]; s.Wins != 1 || s.Matches != 2 {
		t.Errorf("Merged item stat = %+v, want 1 win / 2 matches", s)
	}
	if s := row.Items["core_6655-3020-3089"]; s.Matches != 1 {
		t.Errorf("Insert-seeded core stat = %+v", s)
	}
	if s := row.SkillOrder["Q-W-E"]; s.Wins != 1 || s.Matches != 2 {
		t.Errorf("Merged skill order stat = %+v", s)
	}
}

func TestScannedLedger_Integration(t *testing.T) {
	database := skipIfNoDatabase(t)
	ctx := context.Background()
	matchID := fmt.Sprintf("TEST_%d", time.Now().UnixNano())

	scanned, err := database.IsScanned(ctx, matchID)
	if err != nil {
		t.Fatalf("IsScanned failed: %v", err)
	}
	if scanned {
		t.Fatalf("Fresh match %s already scanned", matchID)
	}

	if err := database.MarkScanned(ctx, matchID, "CHALLENGER", "14.24"); err != nil {
		t.Fatalf("MarkScanned failed: %v", err)
	}
	// Re-marking must be a no-op, not an error.
	if err := database.MarkScanned(ctx, matchID, "CHALLENGER", "14.24"); err != nil {
		t.Fatalf("MarkScanned rerun failed: %v", err)
	}

	scanned, err = database.IsScanned(ctx, matchID)
	if err != nil {
		t.Fatalf("IsScanned failed: %v", err)
	}
	if !scanned {
		t.Error("Match not recorded as scanned")
	}
}

func TestBanCounter_Integration(t *testing.T) {
	database := skipIfNoDatabase(t)
	ctx := context.Background()
	key := testKey()

	for i := 0; i < 3; i++ {
		if err := database.IncrementBan(ctx, key.Champion, key.Tier, key.Patch); err != nil {
			t.Fatalf("IncrementBan failed: %v", err)
		}
	}

	// Ban rows are champion-wide: tier-scoped sum includes other patches from
	// earlier runs, so read the row back directly.
	rows, err := database.GetChampionRows(ctx, key.Champion, []string{meta.RoleAll}, []string{key.Tier})
	if err != nil {
		t.Fatalf("GetChampionRows failed: %v", err)
	}
	found := false
	for _, row := range rows {
		if row.Patch == key.Patch {
			found = true
			if row.Bans != 3 {
				t.Errorf("Bans = %d, want 3", row.Bans)
			}
		}
	}
	if !found {
		t.Errorf("Ban row for patch %s not found", key.Patch)
	}
}
