package web

import (
	"testing"

	"meta-scanner/internal/meta"
)

func detailRows() []meta.ChampionStatRow {
	return []meta.ChampionStatRow{
		{Champion: "Ahri", Role: meta.RoleMid, Tier: "CHALLENGER", Patch: "14.24", Matches: 30, Wins: 16},
		{Champion: "Ahri", Role: meta.RoleMid, Tier: "GRANDMASTER", Patch: "14.24", Matches: 20, Wins: 11},
		{Champion: "Ahri", Role: meta.RoleSupport, Tier: "CHALLENGER", Patch: "14.24", Matches: 5, Wins: 2},
	}
}

func TestSelectRole(t *testing.T) {
	rows := detailRows()

	tests := []struct {
		name     string
		role     string
		wantRole string
		wantRows int
	}{
		{"explicit role filters", meta.RoleSupport, meta.RoleSupport, 1},
		{"empty defaults to most played", "", meta.RoleMid, 2},
		{"all keeps every lane row", meta.RoleAll, meta.RoleAll, 3},
		{"unknown role matches nothing", "JUNGLE", "JUNGLE", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, filtered := selectRole(tt.role, rows)
			if role != tt.wantRole {
				t.Errorf("role = %q, want %q", role, tt.wantRole)
			}
			if len(filtered) != tt.wantRows {
				t.Errorf("filtered = %d rows, want %d", len(filtered), tt.wantRows)
			}
		})
	}
}

// An explicit ALL must merge every lane's rows instead of collapsing to the
// most played lane, and the rollup it feeds reflects the combined totals.
func TestSelectRoleAllMergesLanes(t *testing.T) {
	role, filtered := selectRole(meta.RoleAll, detailRows())

	detail := meta.RollupChampion("Ahri", role, "ALL", filtered, nil, nil, 0, 100)
	if detail == nil {
		t.Fatal("RollupChampion returned nil")
	}
	if detail.Role != meta.RoleAll {
		t.Errorf("Role = %q, want ALL", detail.Role)
	}
	if detail.Matches != 55 || detail.Wins != 29 {
		t.Errorf("Totals = %d matches / %d wins, want 55/29", detail.Matches, detail.Wins)
	}
}

func TestDominantRole(t *testing.T) {
	if got := dominantRole(detailRows()); got != meta.RoleMid {
		t.Errorf("dominantRole = %q, want MID", got)
	}
	if got := dominantRole(nil); got != "" {
		t.Errorf("dominantRole(nil) = %q, want empty", got)
	}
}
