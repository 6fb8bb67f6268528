package db

import (
	"context"
	"encoding/json"
	"fmt"

	"meta-scanner/internal/meta"
)

// GetChampionRows loads the full aggregate rows (buckets included) for one
// champion across the given roles and tiers.
func (db *DB) GetChampionRows(ctx context.Context, champion string, roles, tiers []string) ([]meta.ChampionStatRow, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT champion_id, role, tier, patch, matches, wins, bans,
		       items, runes, spells, skill_order
		FROM champion_stats
		WHERE champion_id = $1 AND role = ANY($2) AND tier = ANY($3)
	`, champion, roles, tiers)
	if err != nil {
		return nil, fmt.Errorf("failed to query champion rows: %w", err)
	}
	defer rows.Close()

	var out []meta.ChampionStatRow
	for rows.Next() {
		var r meta.ChampionStatRow
		var itemsRaw, runesRaw, spellsRaw, skillRaw []byte
		if err := rows.Scan(&r.Champion, &r.Role, &r.Tier, &r.Patch, &r.Matches, &r.Wins, &r.Bans,
			&itemsRaw, &runesRaw, &spellsRaw, &skillRaw); err != nil {
			return nil, err
		}
		for _, pair := range []struct {
			raw []byte
			dst *meta.StatBucket
		}{
			{itemsRaw, &r.Items},
			{runesRaw, &r.Runes},
			{spellsRaw, &r.Spells},
			{skillRaw, &r.SkillOrder},
		} {
			*pair.dst = make(meta.StatBucket)
			if len(pair.raw) > 0 {
				if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
					return nil, fmt.Errorf("failed to parse bucket: %w", err)
				}
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetBanCount sums the champion's ban counter across the given tiers. Bans
// live on role=ALL rows.
func (db *DB) GetBanCount(ctx context.Context, champion string, tiers []string) (int, error) {
	var bans int
	err := db.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(bans), 0)
		FROM champion_stats
		WHERE champion_id = $1 AND role = $2 AND tier = ANY($3)
	`, champion, meta.RoleAll, tiers).Scan(&bans)
	return bans, err
}

// GetMatchups loads the lane-opponent counters for one champion.
func (db *DB) GetMatchups(ctx context.Context, champion string, roles, tiers []string) ([]meta.MatchupRow, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT champion_id, opponent_id, role, wins, matches
		FROM matchup_stats
		WHERE champion_id = $1 AND role = ANY($2) AND tier = ANY($3)
	`, champion, roles, tiers)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchups: %w", err)
	}
	defer rows.Close()

	var out []meta.MatchupRow
	for rows.Next() {
		var m meta.MatchupRow
		if err := rows.Scan(&m.Champion, &m.Opponent, &m.Role, &m.Wins, &m.Matches); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetDuos loads the duo-synergy counters for one champion.
func (db *DB) GetDuos(ctx context.Context, champion string, roles, tiers []string) ([]meta.DuoRow, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT champion_id, partner_id, role, partner_role, wins, matches
		FROM duo_stats
		WHERE champion_id = $1 AND role = ANY($2) AND tier = ANY($3)
	`, champion, roles, tiers)
	if err != nil {
		return nil, fmt.Errorf("failed to query duos: %w", err)
	}
	defer rows.Close()

	var out []meta.DuoRow
	for rows.Next() {
		var d meta.DuoRow
		if err := rows.Scan(&d.Champion, &d.Partner, &d.Role, &d.PartnerRole, &d.Wins, &d.Matches); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetTierListRows loads the scalar columns for every champion row in the
// given tiers, role=ALL ban rows included. Buckets are skipped: the tier
// list never needs them.
func (db *DB) GetTierListRows(ctx context.Context, tiers []string) ([]meta.ChampionStatRow, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT champion_id, role, tier, patch, matches, wins, bans
		FROM champion_stats
		WHERE tier = ANY($1)
	`, tiers)
	if err != nil {
		return nil, fmt.Errorf("failed to query tier list rows: %w", err)
	}
	defer rows.Close()

	var out []meta.ChampionStatRow
	for rows.Next() {
		var r meta.ChampionStatRow
		if err := rows.Scan(&r.Champion, &r.Role, &r.Tier, &r.Patch, &r.Matches, &r.Wins, &r.Bans); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTierListMatchups loads every matchup counter with enough games to feed
// the tier list's counter picks.
func (db *DB) GetTierListMatchups(ctx context.Context, tiers []string, minMatches int) ([]meta.MatchupRow, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT champion_id, opponent_id, role, SUM(wins)::int, SUM(matches)::int
		FROM matchup_stats
		WHERE tier = ANY($1)
		GROUP BY champion_id, opponent_id, role
		HAVING SUM(matches) >= $2
	`, tiers, minMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to query tier list matchups: %w", err)
	}
	defer rows.Close()

	var out []meta.MatchupRow
	for rows.Next() {
		var m meta.MatchupRow
		if err := rows.Scan(&m.Champion, &m.Opponent, &m.Role, &m.Wins, &m.Matches); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
