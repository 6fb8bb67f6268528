package db

import (
	"context"
	"encoding/json"
	"fmt"

	"meta-scanner/internal/meta"
)

// ApplyParticipant folds one participant's match contribution into the
// champion aggregate row for the given key. Scalars are incremented inside a
// single upsert; the JSONB signature buckets ride along on the insert path
// and are read-merged-written on the update path. The merge is additive, so
// callers must have checked the scanned-match ledger first.
func (db *DB) ApplyParticipant(ctx context.Context, key meta.AggregateKey, ps *meta.ParticipantStats) error {
	items, err := json.Marshal(ps.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}
	runes, err := json.Marshal(ps.Runes)
	if err != nil {
		return fmt.Errorf("failed to marshal runes: %w", err)
	}
	spells, err := json.Marshal(ps.Spells)
	if err != nil {
		return fmt.Errorf("failed to marshal spells: %w", err)
	}
	skillOrder, err := json.Marshal(ps.SkillOrder)
	if err != nil {
		return fmt.Errorf("failed to marshal skill order: %w", err)
	}

	win := 0
	if ps.Win {
		win = 1
	}

	// xmax = 0 distinguishes the insert path (buckets already seeded from the
	// VALUES clause) from the conflict path (buckets still hold the old row).
	var inserted bool
	err = db.pool.QueryRow(ctx, `
		INSERT INTO champion_stats (
			champion_id, role, tier, patch,
			matches, wins,
			kills, deaths, assists, cs, gold, damage, vision, duration,
			items, runes, spells, skill_order
		) VALUES ($1, $2, $3, $4, 1, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (champion_id, role, tier, patch) DO UPDATE SET
			matches = champion_stats.matches + 1,
			wins = champion_stats.wins + EXCLUDED.wins,
			kills = champion_stats.kills + EXCLUDED.kills,
			deaths = champion_stats.deaths + EXCLUDED.deaths,
			assists = champion_stats.assists + EXCLUDED.assists,
			cs = champion_stats.cs + EXCLUDED.cs,
			gold = champion_stats.gold + EXCLUDED.gold,
			damage = champion_stats.damage + EXCLUDED.damage,
			vision = champion_stats.vision + EXCLUDED.vision,
			duration = champion_stats.duration + EXCLUDED.duration
		RETURNING (xmax = 0)
	`, key.Champion, key.Role, key.Tier, key.Patch,
		win, ps.Kills, ps.Deaths, ps.Assists, ps.CS, ps.Gold, ps.Damage, ps.Vision, ps.Duration,
		items, runes, spells, skillOrder).Scan(&inserted)
	if err != nil {
		return fmt.Errorf("failed to upsert champion stats: %w", err)
	}
	if inserted {
		return nil
	}

	return db.mergeBuckets(ctx, key, ps)
}

// mergeBuckets folds the participant's signature buckets into an existing
// row. The scanner is the only writer, so the read-merge-write is not guarded
// by a transaction.
func (db *DB) mergeBuckets(ctx context.Context, key meta.AggregateKey, ps *meta.ParticipantStats) error {
	var itemsRaw, runesRaw, spellsRaw, skillRaw []byte
	err := db.pool.QueryRow(ctx, `
		SELECT items, runes, spells, skill_order
		FROM champion_stats
		WHERE champion_id = $1 AND role = $2 AND tier = $3 AND patch = $4
	`, key.Champion, key.Role, key.Tier, key.Patch).Scan(&itemsRaw, &runesRaw, &spellsRaw, &skillRaw)
	if err != nil {
		return fmt.Errorf("failed to read buckets: %w", err)
	}

	merged := make([][]byte, 4)
	for i, pair := range []struct {
		raw []byte
		src meta.StatBucket
	}{
		{itemsRaw, ps.Items},
		{runesRaw, ps.Runes},
		{spellsRaw, ps.Spells},
		{skillRaw, ps.SkillOrder},
	} {
		bucket := make(meta.StatBucket)
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, &bucket); err != nil {
				return fmt.Errorf("failed to parse bucket: %w", err)
			}
		}
		meta.MergeBucket(bucket, pair.src)
		if merged[i], err = json.Marshal(bucket); err != nil {
			return fmt.Errorf("failed to marshal bucket: %w", err)
		}
	}

	_, err = db.pool.Exec(ctx, `
		UPDATE champion_stats
		SET items = $5, runes = $6, spells = $7, skill_order = $8
		WHERE champion_id = $1 AND role = $2 AND tier = $3 AND patch = $4
	`, key.Champion, key.Role, key.Tier, key.Patch, merged[0], merged[1], merged[2], merged[3])
	if err != nil {
		return fmt.Errorf("failed to write buckets: %w", err)
	}
	return nil
}

// IncrementBan bumps the champion-wide ban counter. Bans have no role, so
// they live on a dedicated role=ALL row per (champion, tier, patch).
func (db *DB) IncrementBan(ctx context.Context, champion, tier, patch string) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO champion_stats (champion_id, role, tier, patch, bans)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (champion_id, role, tier, patch) DO UPDATE SET
			bans = champion_stats.bans + 1
	`, champion, meta.RoleAll, tier, patch)
	if err != nil {
		return fmt.Errorf("failed to increment ban: %w", err)
	}
	return nil
}
