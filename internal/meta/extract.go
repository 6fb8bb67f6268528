package meta

import (
	"strconv"
	"strings"

	"meta-scanner/internal/riot"
)

// AggregateKey identifies one persisted champion aggregate row.
type AggregateKey struct {
	Champion string
	Role     string
	Tier     string
	Patch    string
}

// ParticipantStats is everything one participant contributes to the aggregate
// row for their (champion, role, tier, patch) key: four signature buckets plus
// the scalar counters taken from the match summary.
type ParticipantStats struct {
	Champion string
	Role     string
	Win      bool

	Items      StatBucket
	Runes      StatBucket
	Spells     StatBucket
	SkillOrder StatBucket

	Kills    int
	Deaths   int
	Assists  int
	CS       int
	Gold     int
	Damage   int
	Vision   int
	Duration int
}

// ExtractParticipant derives the per-match statistic buckets for one
// participant. The timeline may be nil (fetch failed or not sampled): build
// path and skill order extraction are skipped, while final-item, rune, spell
// and scalar stats still come from the match summary alone.
func ExtractParticipant(p *riot.MatchParticipant, info *riot.MatchInfo, tl *riot.TimelineResponse, catalog ItemCatalog) ParticipantStats {
	role, _ := NormalizeRole(p.TeamPosition)

	ps := ParticipantStats{
		Champion:   p.ChampionName,
		Role:       role,
		Win:        p.Win,
		Runes:      make(StatBucket),
		Spells:     make(StatBucket),
		SkillOrder: make(StatBucket),
		Kills:      p.Kills,
		Deaths:     p.Deaths,
		Assists:    p.Assists,
		CS:         p.TotalMinionsKilled + p.NeutralMinionsKilled,
		Gold:       p.GoldEarned,
		Damage:     p.TotalDamageToChamps,
		Vision:     p.VisionScore,
		Duration:   info.GameDuration,
	}

	finalItems := FinalInventory([]int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5})

	var cls BuildClassification
	if tl != nil {
		clean := ReplayItemEvents(CollectItemEvents(tl, p.ParticipantID))
		cls = ClassifyBuild(clean, finalItems, catalog)

		if order := SkillOrder(tl, p.ParticipantID); order != "" {
			ps.SkillOrder.Add(order, p.Win)
		}
	}
	ps.Items = ItemSignatures(cls, finalItems, p.Win)

	extractRunes(&ps, &p.Perks, p.Win)

	if p.Summoner1ID != 0 {
		ps.Spells.Add(strconv.Itoa(p.Summoner1ID), p.Win)
	}
	if p.Summoner2ID != 0 {
		ps.Spells.Add(strconv.Itoa(p.Summoner2ID), p.Win)
	}

	return ps
}

// RunePageKey builds the full-page signature:
// primaryStyle-subStyle-<primary perks>-<sub perks>-<offense/flex/defense>.
// Returns "" when either style group is missing from the feed.
func RunePageKey(perks *riot.Perks) string {
	var primary, sub *riot.PerkStyle
	for i := range perks.Styles {
		switch perks.Styles[i].Description {
		case "primaryStyle":
			primary = &perks.Styles[i]
		case "subStyle":
			sub = &perks.Styles[i]
		}
	}
	if primary == nil || sub == nil {
		return ""
	}

	parts := []string{strconv.Itoa(primary.Style), strconv.Itoa(sub.Style)}
	for _, sel := range primary.Selections {
		parts = append(parts, strconv.Itoa(sel.Perk))
	}
	for _, sel := range sub.Selections {
		parts = append(parts, strconv.Itoa(sel.Perk))
	}
	for _, shard := range []int{perks.StatPerks.Offense, perks.StatPerks.Flex, perks.StatPerks.Defense} {
		if shard != 0 {
			parts = append(parts, strconv.Itoa(shard))
		}
	}
	return strings.Join(parts, "-")
}

// extractRunes emits one page_<signature> entry plus a flat entry per selected
// perk and stat shard, so both full-page and per-rune win rates stay queryable.
func extractRunes(ps *ParticipantStats, perks *riot.Perks, win bool) {
	if key := RunePageKey(perks); key != "" {
		ps.Runes.Add("page_"+key, win)
	}

	for _, style := range perks.Styles {
		for _, sel := range style.Selections {
			ps.Runes.Add(strconv.Itoa(sel.Perk), win)
		}
	}
	for _, shard := range []int{perks.StatPerks.Offense, perks.StatPerks.Flex, perks.StatPerks.Defense} {
		if shard != 0 {
			ps.Runes.Add(strconv.Itoa(shard), win)
		}
	}
}
