package db

import (
	"context"
	"fmt"
)

// UpsertMatchup increments the lane-opponent counter for one side of a
// matchup. The scanner records each matchup from both champions' sides.
func (db *DB) UpsertMatchup(ctx context.Context, champion, opponent, role, tier, patch string, win bool) error {
	wins := 0
	if win {
		wins = 1
	}
	_, err := db.pool.Exec(ctx, `
		INSERT INTO matchup_stats (champion_id, opponent_id, role, tier, patch, wins, matches)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		ON CONFLICT (champion_id, opponent_id, role, tier, patch) DO UPDATE SET
			wins = matchup_stats.wins + EXCLUDED.wins,
			matches = matchup_stats.matches + 1
	`, champion, opponent, role, tier, patch, wins)
	if err != nil {
		return fmt.Errorf("failed to upsert matchup: %w", err)
	}
	return nil
}

// UpsertDuo increments the same-team duo counter for one direction of a
// valid duo pairing.
func (db *DB) UpsertDuo(ctx context.Context, champion, partner, role, partnerRole, tier, patch string, win bool) error {
	wins := 0
	if win {
		wins = 1
	}
	_, err := db.pool.Exec(ctx, `
		INSERT INTO duo_stats (champion_id, partner_id, role, partner_role, tier, patch, wins, matches)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
		ON CONFLICT (champion_id, partner_id, role, partner_role, tier, patch) DO UPDATE SET
			wins = duo_stats.wins + EXCLUDED.wins,
			matches = duo_stats.matches + 1
	`, champion, partner, role, partnerRole, tier, patch, wins)
	if err != nil {
		return fmt.Errorf("failed to upsert duo: %w", err)
	}
	return nil
}

// IsScanned checks whether a match was already folded into the aggregates.
func (db *DB) IsScanned(ctx context.Context, matchID string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM scanned_matches WHERE match_id = $1)
	`, matchID).Scan(&exists)
	return exists, err
}

// MarkScanned records a match in the idempotency ledger after its
// contributions have been applied.
func (db *DB) MarkScanned(ctx context.Context, matchID, tier, patch string) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO scanned_matches (match_id, tier, patch)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id) DO NOTHING
	`, matchID, tier, patch)
	return err
}

// CountScanned returns the number of scanned matches across the given tiers,
// the denominator for pick and ban rates.
func (db *DB) CountScanned(ctx context.Context, tiers []string) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM scanned_matches WHERE tier = ANY($1)
	`, tiers).Scan(&count)
	return count, err
}
