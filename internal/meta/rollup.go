package meta

import (
	"sort"
	"strconv"
	"strings"
)

// ChampionStatRow mirrors one persisted champion aggregate row.
type ChampionStatRow struct {
	Champion string
	Role     string
	Tier     string
	Patch    string
	Matches  int
	Wins     int
	Bans     int

	Items      StatBucket
	Runes      StatBucket
	Spells     StatBucket
	SkillOrder StatBucket
}

// MatchupRow is one persisted lane-opponent counter.
type MatchupRow struct {
	Champion string
	Opponent string
	Role     string
	Wins     int
	Matches  int
}

// DuoRow is one persisted duo-synergy counter.
type DuoRow struct {
	Champion    string
	Partner     string
	Role        string
	PartnerRole string
	Wins        int
	Matches     int
}

// CoreBuild is a 3-item core path with its counters.
type CoreBuild struct {
	Key     string  `json:"key"`
	Path    []int   `json:"path"`
	Wins    int     `json:"wins"`
	Matches int     `json:"matches"`
	WinRate float64 `json:"winRate"`
}

// SlotOption is a 4th/5th/6th item alternative relative to the best core.
type SlotOption struct {
	ID      int     `json:"id"`
	Wins    int     `json:"wins"`
	Matches int     `json:"matches"`
	WinRate float64 `json:"winRate"`
}

// StartingGroup is one starting-item set with its counters.
type StartingGroup struct {
	Items   []int   `json:"items"`
	Wins    int     `json:"wins"`
	Matches int     `json:"matches"`
	WinRate float64 `json:"winRate"`
}

// SkillOrderStat is one full level-up sequence with its counters.
type SkillOrderStat struct {
	Path    string  `json:"path"`
	Wins    int     `json:"wins"`
	Matches int     `json:"matches"`
	WinRate float64 `json:"winRate"`
}

// SpellStat is one summoner spell with its counters. Spells are counted
// per slot, so match totals sum to twice the champion's matches.
type SpellStat struct {
	ID      int     `json:"id"`
	Wins    int     `json:"wins"`
	Matches int     `json:"matches"`
	WinRate float64 `json:"winRate"`
}

// RunePage is one decoded full rune page with its counters.
type RunePage struct {
	PrimaryStyle int     `json:"primaryStyle"`
	SubStyle     int     `json:"subStyle"`
	Perks        []int   `json:"perks"`
	Wins         int     `json:"wins"`
	Matches      int     `json:"matches"`
	WinRate      float64 `json:"winRate"`
}

// MatchupSummary is an aggregated lane matchup from the played champion's side.
type MatchupSummary struct {
	Opponent string  `json:"opponentId"`
	Wins     int     `json:"wins"`
	Matches  int     `json:"matches"`
	WinRate  float64 `json:"winRate"`
}

// DuoSummary is an aggregated duo pairing.
type DuoSummary struct {
	Partner     string  `json:"partnerId"`
	PartnerRole string  `json:"partnerRole"`
	Wins        int     `json:"wins"`
	Matches     int     `json:"matches"`
	WinRate     float64 `json:"winRate"`
}

// ChampionDetail is the denormalized champion view served to the UI: many
// per-(role, tier, patch) rows flattened back into a single payload.
type ChampionDetail struct {
	Champion     string           `json:"championId"`
	Role         string           `json:"role"`
	Rank         string           `json:"rank"`
	Grade        string           `json:"tier"`
	Patch        string           `json:"patch"`
	Matches      int              `json:"matches"`
	Wins         int              `json:"wins"`
	WinRate      float64          `json:"winRate"`
	PickRate     float64          `json:"pickRate"`
	BanRate      float64          `json:"banRate"`
	TotalMatches int              `json:"totalMatches"`
	ItemPaths    []CoreBuild      `json:"itemPaths"`
	Starting     []StartingGroup  `json:"startingItems"`
	Slot4        []SlotOption     `json:"slot4"`
	Slot5        []SlotOption     `json:"slot5"`
	Slot6        []SlotOption     `json:"slot6"`
	SkillOrders  []SkillOrderStat `json:"skillOrders"`
	TopSkillPath []string         `json:"topSkillPath"`
	RunePages    []RunePage       `json:"runePages"`
	Spells       []SpellStat      `json:"spells"`
	Matchups     []MatchupSummary `json:"matchups"`
	Duos         []DuoSummary     `json:"duos"`
}

// RollupChampion merges every persisted row for one champion into the
// denormalized detail view. rows is the champion's aggregate rows across the
// requested roles/tiers/patches, bans the summed ban counter, totalScanned the
// number of scanned matches in the requested tier range. Returns nil when
// there is no data, so callers can turn it into a 404 without a divide by
// zero.
func RollupChampion(champion, role, rank string, rows []ChampionStatRow, matchups []MatchupRow, duos []DuoRow, bans, totalScanned int) *ChampionDetail {
	merged := struct {
		matches    int
		wins       int
		items      StatBucket
		runes      StatBucket
		spells     StatBucket
		skillOrder StatBucket
	}{
		items:      make(StatBucket),
		runes:      make(StatBucket),
		spells:     make(StatBucket),
		skillOrder: make(StatBucket),
	}

	patch := ""
	for _, row := range rows {
		merged.matches += row.Matches
		merged.wins += row.Wins
		MergeBucket(merged.items, row.Items)
		MergeBucket(merged.runes, row.Runes)
		MergeBucket(merged.spells, row.Spells)
		MergeBucket(merged.skillOrder, row.SkillOrder)
		if patchLess(patch, row.Patch) {
			patch = row.Patch
		}
	}

	if merged.matches == 0 {
		return nil
	}

	detail := &ChampionDetail{
		Champion:     champion,
		Role:         role,
		Rank:         rank,
		Patch:        patch,
		Matches:      merged.matches,
		Wins:         merged.wins,
		TotalMatches: totalScanned,
		WinRate:      pct(merged.wins, merged.matches),
	}
	if totalScanned > 0 {
		detail.PickRate = pct(merged.matches, totalScanned)
		detail.BanRate = pct(bans, totalScanned)
	}
	detail.Grade = Grade(detail.WinRate, detail.PickRate)

	detail.ItemPaths = coreBuilds(merged.items)
	if len(detail.ItemPaths) > 0 {
		best := detail.ItemPaths[0]
		detail.Slot4 = slotOptions(merged.items, best.Key, 4)
		detail.Slot5 = slotOptions(merged.items, best.Key, 5)
		detail.Slot6 = slotOptions(merged.items, best.Key, 6)
	}
	detail.Starting = startingGroups(merged.items)
	detail.SkillOrders = skillOrders(merged.skillOrder)
	if len(detail.SkillOrders) > 0 {
		detail.TopSkillPath = strings.Split(detail.SkillOrders[0].Path, "-")
	}
	detail.RunePages = runePages(merged.runes)
	detail.Spells = spellStats(merged.spells)
	detail.Matchups = rollupMatchups(matchups)
	detail.Duos = rollupDuos(duos)

	return detail
}

func coreBuilds(items StatBucket) []CoreBuild {
	var builds []CoreBuild
	for key, s := range items {
		if !strings.HasPrefix(key, "core_") {
			continue
		}
		builds = append(builds, CoreBuild{
			Key:     key,
			Path:    parseIDs(strings.TrimPrefix(key, "core_")),
			Wins:    s.Wins,
			Matches: s.Matches,
			WinRate: pct(s.Wins, s.Matches),
		})
	}
	sort.Slice(builds, func(i, j int) bool {
		if builds[i].Matches != builds[j].Matches {
			return builds[i].Matches > builds[j].Matches
		}
		return builds[i].Key < builds[j].Key
	})
	return builds
}

func slotOptions(items StatBucket, coreKey string, slot int) []SlotOption {
	prefix := coreKey + "_slot" + strconv.Itoa(slot) + "_"

	var opts []SlotOption
	for key, s := range items {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(key, prefix))
		if err != nil {
			continue
		}
		opts = append(opts, SlotOption{
			ID:      id,
			Wins:    s.Wins,
			Matches: s.Matches,
			WinRate: pct(s.Wins, s.Matches),
		})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Matches != opts[j].Matches {
			return opts[i].Matches > opts[j].Matches
		}
		return opts[i].ID < opts[j].ID
	})
	if len(opts) > 5 {
		opts = opts[:5]
	}
	return opts
}

func startingGroups(items StatBucket) []StartingGroup {
	var groups []StartingGroup
	for key, s := range items {
		if !strings.HasPrefix(key, "start_") {
			continue
		}
		groups = append(groups, StartingGroup{
			Items:   parseIDs(strings.TrimPrefix(key, "start_")),
			Wins:    s.Wins,
			Matches: s.Matches,
			WinRate: pct(s.Wins, s.Matches),
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Matches > groups[j].Matches
	})
	if len(groups) > 3 {
		groups = groups[:3]
	}
	return groups
}

func skillOrders(bucket StatBucket) []SkillOrderStat {
	var orders []SkillOrderStat
	for key, s := range bucket {
		orders = append(orders, SkillOrderStat{
			Path:    key,
			Wins:    s.Wins,
			Matches: s.Matches,
			WinRate: pct(s.Wins, s.Matches),
		})
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Matches != orders[j].Matches {
			return orders[i].Matches > orders[j].Matches
		}
		return orders[i].Path < orders[j].Path
	})
	if len(orders) > 3 {
		orders = orders[:3]
	}
	return orders
}

func runePages(runes StatBucket) []RunePage {
	var pages []RunePage
	for key, s := range runes {
		if !strings.HasPrefix(key, "page_") {
			continue
		}
		ids := parseIDs(strings.TrimPrefix(key, "page_"))
		if len(ids) < 2 {
			continue
		}
		pages = append(pages, RunePage{
			PrimaryStyle: ids[0],
			SubStyle:     ids[1],
			Perks:        ids[2:],
			Wins:         s.Wins,
			Matches:      s.Matches,
			WinRate:      pct(s.Wins, s.Matches),
		})
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Matches > pages[j].Matches
	})
	if len(pages) > 3 {
		pages = pages[:3]
	}
	return pages
}

func spellStats(spells StatBucket) []SpellStat {
	var out []SpellStat
	for key, s := range spells {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out = append(out, SpellStat{
			ID:      id,
			Wins:    s.Wins,
			Matches: s.Matches,
			WinRate: pct(s.Wins, s.Matches),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Matches != out[j].Matches {
			return out[i].Matches > out[j].Matches
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// rollupMatchups sums matchup rows per opponent and sorts hardest counters
// first (lowest win rate from the champion's side).
func rollupMatchups(rows []MatchupRow) []MatchupSummary {
	byOpponent := make(map[string]Stat)
	for _, m := range rows {
		s := byOpponent[m.Opponent]
		s.Wins += m.Wins
		s.Matches += m.Matches
		byOpponent[m.Opponent] = s
	}

	out := make([]MatchupSummary, 0, len(byOpponent))
	for opp, s := range byOpponent {
		out = append(out, MatchupSummary{
			Opponent: opp,
			Wins:     s.Wins,
			Matches:  s.Matches,
			WinRate:  pct(s.Wins, s.Matches),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate < out[j].WinRate
		}
		return out[i].Opponent < out[j].Opponent
	})
	return out
}

func rollupDuos(rows []DuoRow) []DuoSummary {
	type duoKey struct{ partner, role string }
	byPartner := make(map[duoKey]Stat)
	for _, d := range rows {
		k := duoKey{d.Partner, d.PartnerRole}
		s := byPartner[k]
		s.Wins += d.Wins
		s.Matches += d.Matches
		byPartner[k] = s
	}

	out := make([]DuoSummary, 0, len(byPartner))
	for k, s := range byPartner {
		out = append(out, DuoSummary{
			Partner:     k.partner,
			PartnerRole: k.role,
			Wins:        s.Wins,
			Matches:     s.Matches,
			WinRate:     pct(s.Wins, s.Matches),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Matches != out[j].Matches {
			return out[i].Matches > out[j].Matches
		}
		return out[i].Partner < out[j].Partner
	})
	return out
}

// TierListEntry is one row of the champion tier list.
type TierListEntry struct {
	Champion string   `json:"id"`
	Role     string   `json:"role"`
	Grade    string   `json:"tier"`
	WinRate  float64  `json:"winRate"`
	PickRate float64  `json:"pickRate"`
	BanRate  float64  `json:"banRate"`
	Matches  int      `json:"matches"`
	Counters []string `json:"counters"`
}

const (
	// TierListMinMatches is the sample floor below which a champion/role pair
	// is dropped from the tier list.
	TierListMinMatches = 10

	// MinCounterMatches is the sample floor for a matchup to qualify as a
	// counter pick.
	MinCounterMatches = 5

	tierListCounterLimit = 3
)

// BuildTierList flattens champion aggregate rows into tier-list entries.
// Ban counters live on role=ALL rows and apply champion-wide; per-role rows
// below the minimum sample are dropped. Counters are the opponents with the
// lowest win rate from the champion's side, given enough games.
func BuildTierList(rows []ChampionStatRow, matchups []MatchupRow, totalScanned int, roleFilter string) []TierListEntry {
	type aggKey struct{ champion, role string }

	bans := make(map[string]int)
	agg := make(map[aggKey]Stat)

	for _, row := range rows {
		if row.Role == RoleAll {
			bans[row.Champion] += row.Bans
			continue
		}
		if roleFilter != "" && roleFilter != "ALL" && row.Role != roleFilter {
			continue
		}
		k := aggKey{row.Champion, row.Role}
		s := agg[k]
		s.Wins += row.Wins
		s.Matches += row.Matches
		agg[k] = s
	}

	counters := make(map[aggKey][]MatchupRow)
	for _, m := range matchups {
		if m.Matches < MinCounterMatches {
			continue
		}
		k := aggKey{m.Champion, m.Role}
		counters[k] = append(counters[k], m)
	}

	var entries []TierListEntry
	for k, s := range agg {
		if s.Matches < TierListMinMatches {
			continue
		}

		winRate := pct(s.Wins, s.Matches)
		pickRate := 0.0
		banRate := 0.0
		if totalScanned > 0 {
			pickRate = pct(s.Matches, totalScanned)
			banRate = pct(bans[k.champion], totalScanned)
		}

		entry := TierListEntry{
			Champion: k.champion,
			Role:     k.role,
			Grade:    Grade(winRate, pickRate),
			WinRate:  winRate,
			PickRate: pickRate,
			BanRate:  banRate,
			Matches:  s.Matches,
		}

		if ms := rollupMatchups(counters[k]); len(ms) > 0 {
			limit := tierListCounterLimit
			if len(ms) < limit {
				limit = len(ms)
			}
			for _, m := range ms[:limit] {
				entry.Counters = append(entry.Counters, m.Opponent)
			}
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].WinRate != entries[j].WinRate {
			return entries[i].WinRate > entries[j].WinRate
		}
		return entries[i].Champion < entries[j].Champion
	})
	return entries
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func parseIDs(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "-")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// patchLess compares two normalized patch strings (major.minor) numerically.
func patchLess(a, b string) bool {
	if a == "" {
		return b != ""
	}
	am, an := splitPatch(a)
	bm, bn := splitPatch(b)
	if am != bm {
		return am < bm
	}
	return an < bn
}

func splitPatch(p string) (int, int) {
	parts := strings.SplitN(p, ".", 2)
	major, _ := strconv.Atoi(parts[0])
	minor := 0
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}
