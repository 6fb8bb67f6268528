package riot

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env from project root
	godotenv.Load("../../.env")
}

func TestNormalizePatch(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"14.24.448.1234", "14.24"},
		{"15.1.5", "15.1"},
		{"14.24", "14.24"},
		{"14", "14"},
	}
	for _, tt := range tests {
		if got := NormalizePatch(tt.version); got != tt.want {
			t.Errorf("NormalizePatch(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestRoutingFor(t *testing.T) {
	tests := []struct {
		platform string
		want     string
	}{
		{"na1", "americas"},
		{"br1", "americas"},
		{"la1", "americas"},
		{"kr", "asia"},
		{"jp1", "asia"},
		{"euw1", "europe"},
		{"eun1", "europe"},
		{"tr1", "europe"},
	}
	for _, tt := range tests {
		if got := RoutingFor(tt.platform); got != tt.want {
			t.Errorf("RoutingFor(%q) = %q, want %q", tt.platform, got, tt.want)
		}
	}
}

func skipIfNoAPIKey(t *testing.T) *Client {
	if os.Getenv("RIOT_API_KEY") == "" {
		t.Skip("RIOT_API_KEY not set, skipping integration test")
	}
	client, err := NewClient("na1")
	if err != nil {
		t.Fatalf("Failed to create Riot client: %v", err)
	}
	return client
}

// Test: league seeding against the live API
func TestGetLeaguePUUIDs_Integration(t *testing.T) {
	client := skipIfNoAPIKey(t)
	ctx := context.Background()

	puuids, err := client.GetLeaguePUUIDs(ctx, "CHALLENGER")
	if err != nil {
		t.Fatalf("GetLeaguePUUIDs failed: %v", err)
	}
	if len(puuids) == 0 {
		t.Fatal("GetLeaguePUUIDs returned no players")
	}
	t.Logf("Got %d challenger players", len(puuids))

	matchIDs, err := client.GetMatchHistory(ctx, puuids[0], 5)
	if err != nil {
		t.Fatalf("GetMatchHistory failed: %v", err)
	}
	if len(matchIDs) == 0 {
		t.Fatal("GetMatchHistory returned no matches")
	}

	match, err := client.GetMatch(ctx, matchIDs[0])
	if err != nil {
		t.Fatalf("GetMatch failed: %v", err)
	}
	if match.Metadata.MatchID == "" {
		t.Error("Match metadata missing matchId")
	}
	if len(match.Info.Participants) != 10 {
		t.Errorf("Expected 10 participants, got %d", len(match.Info.Participants))
	}

	timeline, err := client.GetTimeline(ctx, matchIDs[0])
	if err != nil {
		t.Fatalf("GetTimeline failed: %v", err)
	}
	if len(timeline.Info.Frames) == 0 {
		t.Error("Timeline has no frames")
	}
}

func TestGetLeaguePUUIDsUnknownTier(t *testing.T) {
	client := &Client{apiKey: "test", platform: "na1", routing: "americas"}
	if _, err := client.GetLeaguePUUIDs(context.Background(), "WOOD"); err == nil {
		t.Error("Expected error for unknown tier")
	}
}
