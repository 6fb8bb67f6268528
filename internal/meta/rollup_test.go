package meta

import (
	"reflect"
	"testing"
)

func ahriRow(tier, patch string, matches, wins int, items StatBucket) ChampionStatRow {
	return ChampionStatRow{
		Champion: "Ahri",
		Role:     RoleMid,
		Tier:     tier,
		Patch:    patch,
		Matches:  matches,
		Wins:     wins,
		Items:    items,
		Runes:    StatBucket{},
		Spells: StatBucket{
			"4":  {Wins: wins, Matches: matches},
			"14": {Wins: wins, Matches: matches},
		},
		SkillOrder: StatBucket{
			"Q-W-E-Q": {Wins: wins, Matches: matches},
		},
	}
}

func TestRollupChampion(t *testing.T) {
	rows := []ChampionStatRow{
		ahriRow("CHALLENGER", "14.23", 30, 18, StatBucket{
			"core_6655-3020-3089":           {Wins: 12, Matches: 20},
			"core_6655-3020-3089_slot4_3157": {Wins: 8, Matches: 12},
			"core_6655-3020-3089_slot4_4645": {Wins: 5, Matches: 8},
			"core_3802-3020-3089":           {Wins: 4, Matches: 6},
			"start_1056":                    {Wins: 15, Matches: 25},
		}),
		ahriRow("GRANDMASTER", "14.24", 20, 9, StatBucket{
			"core_6655-3020-3089": {Wins: 6, Matches: 10},
			"start_1056":          {Wins: 5, Matches: 10},
		}),
	}
	matchups := []MatchupRow{
		{Champion: "Ahri", Opponent: "Zed", Role: RoleMid, Wins: 3, Matches: 10},
		{Champion: "Ahri", Opponent: "Zed", Role: RoleMid, Wins: 1, Matches: 2},
		{Champion: "Ahri", Opponent: "Lux", Role: RoleMid, Wins: 7, Matches: 10},
	}
	duos := []DuoRow{
		{Champion: "Ahri", Partner: "LeeSin", Role: RoleMid, PartnerRole: RoleJungle, Wins: 9, Matches: 15},
		{Champion: "Ahri", Partner: "Elise", Role: RoleMid, PartnerRole: RoleJungle, Wins: 3, Matches: 4},
	}

	detail := RollupChampion("Ahri", RoleMid, "MASTER_PLUS", rows, matchups, duos, 40, 1000)
	if detail == nil {
		t.Fatal("RollupChampion returned nil for populated rows")
	}

	if detail.Matches != 50 || detail.Wins != 27 {
		t.Errorf("Totals = %d/%d, want 50/27", detail.Matches, detail.Wins)
	}
	if detail.WinRate != 54.0 {
		t.Errorf("WinRate = %.2f, want 54.00", detail.WinRate)
	}
	if detail.PickRate != 5.0 || detail.BanRate != 4.0 {
		t.Errorf("PickRate/BanRate = %.2f/%.2f, want 5.00/4.00", detail.PickRate, detail.BanRate)
	}
	if detail.Grade != "S+" {
		t.Errorf("Grade = %q, want S+", detail.Grade)
	}
	if detail.Patch != "14.24" {
		t.Errorf("Patch = %q, want the newest patch seen", detail.Patch)
	}

	// Best core merges across rows: 18 wins / 30 matches.
	if len(detail.ItemPaths) != 2 {
		t.Fatalf("ItemPaths = %v", detail.ItemPaths)
	}
	best := detail.ItemPaths[0]
	if best.Key != "core_6655-3020-3089" || best.Matches != 30 || best.Wins != 18 {
		t.Errorf("Best core = %+v", best)
	}
	if !reflect.DeepEqual(best.Path, []int{6655, 3020, 3089}) {
		t.Errorf("Best core path = %v", best.Path)
	}

	// Slot options belong to the best core only, most played first.
	if len(detail.Slot4) != 2 || detail.Slot4[0].ID != 3157 || detail.Slot4[1].ID != 4645 {
		t.Errorf("Slot4 = %+v", detail.Slot4)
	}
	if len(detail.Slot5) != 0 {
		t.Errorf("Slot5 should be empty, got %+v", detail.Slot5)
	}

	if len(detail.Starting) != 1 || !reflect.DeepEqual(detail.Starting[0].Items, []int{1056}) {
		t.Errorf("Starting = %+v", detail.Starting)
	}
	if detail.Starting[0].Matches != 35 {
		t.Errorf("Starting matches = %d, want 35", detail.Starting[0].Matches)
	}

	if len(detail.SkillOrders) != 1 || detail.SkillOrders[0].Path != "Q-W-E-Q" {
		t.Errorf("SkillOrders = %+v", detail.SkillOrders)
	}
	if !reflect.DeepEqual(detail.TopSkillPath, []string{"Q", "W", "E", "Q"}) {
		t.Errorf("TopSkillPath = %v", detail.TopSkillPath)
	}

	// Spells merge across rows and tie-break by ID.
	if len(detail.Spells) != 2 {
		t.Fatalf("Spells = %+v", detail.Spells)
	}
	if detail.Spells[0].ID != 4 || detail.Spells[0].Matches != 50 || detail.Spells[0].Wins != 27 {
		t.Errorf("Top spell = %+v", detail.Spells[0])
	}
	if detail.Spells[1].ID != 14 {
		t.Errorf("Second spell = %+v", detail.Spells[1])
	}

	// Matchups merge per opponent and sort hardest first.
	if len(detail.Matchups) != 2 {
		t.Fatalf("Matchups = %+v", detail.Matchups)
	}
	if detail.Matchups[0].Opponent != "Zed" || detail.Matchups[0].Matches != 12 || detail.Matchups[0].Wins != 4 {
		t.Errorf("Hardest matchup = %+v", detail.Matchups[0])
	}

	if len(detail.Duos) != 2 || detail.Duos[0].Partner != "LeeSin" {
		t.Errorf("Duos = %+v", detail.Duos)
	}
}

func TestRollupChampionNoData(t *testing.T) {
	if detail := RollupChampion("Ahri", RoleMid, "ALL", nil, nil, nil, 0, 500); detail != nil {
		t.Errorf("Expected nil detail for empty rows, got %+v", detail)
	}
}

func TestRollupChampionZeroTotal(t *testing.T) {
	rows := []ChampionStatRow{ahriRow("GOLD", "14.24", 5, 3, StatBucket{})}
	detail := RollupChampion("Ahri", RoleMid, "ALL", rows, nil, nil, 0, 0)
	if detail == nil {
		t.Fatal("RollupChampion returned nil")
	}
	if detail.PickRate != 0 || detail.BanRate != 0 {
		t.Errorf("Rates with zero scanned total = %.2f/%.2f", detail.PickRate, detail.BanRate)
	}
}

func TestBuildTierList(t *testing.T) {
	rows := []ChampionStatRow{
		{Champion: "Ahri", Role: RoleMid, Matches: 100, Wins: 55},
		{Champion: "Ahri", Role: RoleAll, Bans: 30},
		{Champion: "Zed", Role: RoleMid, Matches: 80, Wins: 38},
		{Champion: "Teemo", Role: RoleTop, Matches: 9, Wins: 9}, // below sample floor
	}
	matchups := []MatchupRow{
		{Champion: "Ahri", Opponent: "Zed", Role: RoleMid, Wins: 3, Matches: 10},
		{Champion: "Ahri", Opponent: "Yasuo", Role: RoleMid, Wins: 6, Matches: 10},
		{Champion: "Ahri", Opponent: "Lux", Role: RoleMid, Wins: 2, Matches: 4}, // too few games
	}

	entries := BuildTierList(rows, matchups, 1000, "")
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %+v", len(entries), entries)
	}

	ahri := entries[0]
	if ahri.Champion != "Ahri" {
		t.Fatalf("Expected Ahri first by win rate, got %+v", entries)
	}
	if ahri.WinRate != 55.0 || ahri.PickRate != 10.0 || ahri.BanRate != 3.0 {
		t.Errorf("Ahri rates = %.1f/%.1f/%.1f", ahri.WinRate, ahri.PickRate, ahri.BanRate)
	}
	if ahri.Grade != "S+" {
		t.Errorf("Ahri grade = %q", ahri.Grade)
	}
	if !reflect.DeepEqual(ahri.Counters, []string{"Zed", "Yasuo"}) {
		t.Errorf("Ahri counters = %v", ahri.Counters)
	}

	zed := entries[1]
	if zed.WinRate != 47.5 || zed.BanRate != 0 {
		t.Errorf("Zed = %+v", zed)
	}
}

func TestBuildTierListRoleFilter(t *testing.T) {
	rows := []ChampionStatRow{
		{Champion: "Ahri", Role: RoleMid, Matches: 100, Wins: 55},
		{Champion: "Shen", Role: RoleTop, Matches: 50, Wins: 26},
	}
	entries := BuildTierList(rows, nil, 1000, RoleTop)
	if len(entries) != 1 || entries[0].Champion != "Shen" {
		t.Errorf("Role filter result = %+v", entries)
	}
}

func TestPatchLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"14.9", "14.10", true}, // numeric, not lexicographic
		{"14.24", "15.1", true},
		{"15.1", "14.24", false},
		{"14.24", "14.24", false},
		{"", "14.1", true},
	}
	for _, tt := range tests {
		if got := patchLess(tt.a, tt.b); got != tt.want {
			t.Errorf("patchLess(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
