// Package scanner crawls ranked matches from the Riot API and folds each one
// into the per-(champion, role, tier, patch) aggregates.
package scanner

import (
	"context"
	"fmt"
	"log"

	"meta-scanner/internal/meta"
	"meta-scanner/internal/riot"
)

const rankedSoloQueueID = 420

// MatchSource provides match data. Implemented by riot.Client; tests use an
// in-memory fake.
type MatchSource interface {
	GetMatchHistory(ctx context.Context, puuid string, count int) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*riot.MatchResponse, error)
	GetTimeline(ctx context.Context, matchID string) (*riot.TimelineResponse, error)
	GetLeaguePUUIDs(ctx context.Context, tier string) ([]string, error)
}

// StatStore persists aggregate contributions. Implemented by db.DB.
type StatStore interface {
	IsScanned(ctx context.Context, matchID string) (bool, error)
	MarkScanned(ctx context.Context, matchID, tier, patch string) error
	ApplyParticipant(ctx context.Context, key meta.AggregateKey, ps *meta.ParticipantStats) error
	IncrementBan(ctx context.Context, champion, tier, patch string) error
	UpsertMatchup(ctx context.Context, champion, opponent, role, tier, patch string, win bool) error
	UpsertDuo(ctx context.Context, champion, partner, role, partnerRole, tier, patch string, win bool) error
}

// ChampionNames resolves numeric champion IDs from the ban feed.
type ChampionNames interface {
	Name(id int) string
}

// validDuos lists the same-team role pairings tracked as duos.
var validDuos = [][2]string{
	{meta.RoleMid, meta.RoleJungle},
	{meta.RoleADC, meta.RoleSupport},
	{meta.RoleTop, meta.RoleJungle},
}

// ProcessMatch folds one match into the aggregates under the scanner's tier
// label. The whole match is skipped when it was already scanned, is not
// ranked solo queue, or fails mid-apply; only a fully applied match is marked
// scanned. The timeline may be nil, degrading build-path extraction.
func (s *Scanner) ProcessMatch(ctx context.Context, match *riot.MatchResponse, tl *riot.TimelineResponse) error {
	matchID := match.Metadata.MatchID

	scanned, err := s.store.IsScanned(ctx, matchID)
	if err != nil {
		return fmt.Errorf("failed to check scanned ledger: %w", err)
	}
	if scanned {
		return nil
	}

	if match.Info.QueueID != rankedSoloQueueID {
		return nil
	}

	patch := riot.NormalizePatch(match.Info.GameVersion)

	if err := s.applyBans(ctx, match, patch); err != nil {
		return err
	}
	if err := s.applyParticipants(ctx, match, tl, patch); err != nil {
		return err
	}
	if err := s.applyMatchups(ctx, match, patch); err != nil {
		return err
	}
	if err := s.applyDuos(ctx, match, patch); err != nil {
		return err
	}

	if err := s.store.MarkScanned(ctx, matchID, s.tier, patch); err != nil {
		return fmt.Errorf("failed to mark match scanned: %w", err)
	}
	return nil
}

func (s *Scanner) applyBans(ctx context.Context, match *riot.MatchResponse, patch string) error {
	for _, team := range match.Info.Teams {
		for _, ban := range team.Bans {
			if ban.ChampionID <= 0 {
				continue // ban skipped or no champion selected
			}
			name := s.names.Name(ban.ChampionID)
			if name == "" {
				log.Printf("[Scanner] Unknown banned champion id %d in %s", ban.ChampionID, match.Metadata.MatchID)
				continue
			}
			if err := s.store.IncrementBan(ctx, name, s.tier, patch); err != nil {
				return fmt.Errorf("failed to record ban: %w", err)
			}
		}
	}
	return nil
}

func (s *Scanner) applyParticipants(ctx context.Context, match *riot.MatchResponse, tl *riot.TimelineResponse, patch string) error {
	for i := range match.Info.Participants {
		p := &match.Info.Participants[i]
		role, ok := meta.NormalizeRole(p.TeamPosition)
		if !ok {
			// Remakes and bugged games leave teamPosition blank.
			continue
		}

		ps := meta.ExtractParticipant(p, &match.Info, tl, s.catalog)
		key := meta.AggregateKey{
			Champion: p.ChampionName,
			Role:     role,
			Tier:     s.tier,
			Patch:    patch,
		}
		if err := s.store.ApplyParticipant(ctx, key, &ps); err != nil {
			return fmt.Errorf("failed to apply participant %s: %w", p.ChampionName, err)
		}
	}
	return nil
}

// applyMatchups records the lane opponent for every role with exactly one
// champion per team, from both champions' sides.
func (s *Scanner) applyMatchups(ctx context.Context, match *riot.MatchResponse, patch string) error {
	byRole := make(map[string][]*riot.MatchParticipant)
	for i := range match.Info.Participants {
		p := &match.Info.Participants[i]
		if role, ok := meta.NormalizeRole(p.TeamPosition); ok {
			byRole[role] = append(byRole[role], p)
		}
	}

	for role, pair := range byRole {
		if len(pair) != 2 || pair[0].TeamID == pair[1].TeamID {
			continue
		}
		a, b := pair[0], pair[1]
		if err := s.store.UpsertMatchup(ctx, a.ChampionName, b.ChampionName, role, s.tier, patch, a.Win); err != nil {
			return fmt.Errorf("failed to record matchup: %w", err)
		}
		if err := s.store.UpsertMatchup(ctx, b.ChampionName, a.ChampionName, role, s.tier, patch, b.Win); err != nil {
			return fmt.Errorf("failed to record matchup: %w", err)
		}
	}
	return nil
}

// applyDuos records the tracked same-team role pairings, one row per
// direction so each champion can be queried as the anchor.
func (s *Scanner) applyDuos(ctx context.Context, match *riot.MatchResponse, patch string) error {
	type teamRole struct {
		teamID int
		role   string
	}
	byTeamRole := make(map[teamRole]*riot.MatchParticipant)
	teams := make(map[int]bool)
	for i := range match.Info.Participants {
		p := &match.Info.Participants[i]
		if role, ok := meta.NormalizeRole(p.TeamPosition); ok {
			byTeamRole[teamRole{p.TeamID, role}] = p
			teams[p.TeamID] = true
		}
	}

	for teamID := range teams {
		for _, duo := range validDuos {
			a := byTeamRole[teamRole{teamID, duo[0]}]
			b := byTeamRole[teamRole{teamID, duo[1]}]
			if a == nil || b == nil {
				continue
			}
			if err := s.store.UpsertDuo(ctx, a.ChampionName, b.ChampionName, duo[0], duo[1], s.tier, patch, a.Win); err != nil {
				return fmt.Errorf("failed to record duo: %w", err)
			}
			if err := s.store.UpsertDuo(ctx, b.ChampionName, a.ChampionName, duo[1], duo[0], s.tier, patch, b.Win); err != nil {
				return fmt.Errorf("failed to record duo: %w", err)
			}
		}
	}
	return nil
}
