package riot

import "strings"

// MatchResponse represents the response from /lol/match/v5/matches/{matchId}
type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation int64              `json:"gameCreation"`
	GameDuration int                `json:"gameDuration"`
	GameVersion  string             `json:"gameVersion"`
	QueueID      int                `json:"queueId"`
	Participants []MatchParticipant `json:"participants"`
	Teams        []MatchTeam        `json:"teams"`
}

type MatchTeam struct {
	TeamID int        `json:"teamId"`
	Win    bool       `json:"win"`
	Bans   []MatchBan `json:"bans"`
}

type MatchBan struct {
	ChampionID int `json:"championId"` // -1 when no champion was banned
	PickTurn   int `json:"pickTurn"`
}

type MatchParticipant struct {
	ParticipantID        int    `json:"participantId"`
	PUUID                string `json:"puuid"`
	TeamID               int    `json:"teamId"`
	ChampionID           int    `json:"championId"`
	ChampionName         string `json:"championName"`
	TeamPosition         string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	Win                  bool   `json:"win"`
	Item0                int    `json:"item0"`
	Item1                int    `json:"item1"`
	Item2                int    `json:"item2"`
	Item3                int    `json:"item3"`
	Item4                int    `json:"item4"`
	Item5                int    `json:"item5"`
	Item6                int    `json:"item6"` // Trinket
	Summoner1ID          int    `json:"summoner1Id"`
	Summoner2ID          int    `json:"summoner2Id"`
	Kills                int    `json:"kills"`
	Deaths               int    `json:"deaths"`
	Assists              int    `json:"assists"`
	GoldEarned           int    `json:"goldEarned"`
	TotalDamageToChamps  int    `json:"totalDamageDealtToChampions"`
	TotalMinionsKilled   int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled int    `json:"neutralMinionsKilled"`
	VisionScore          int    `json:"visionScore"`
	Perks                Perks  `json:"perks"`
}

// Perks is the rune page a participant locked in for the match.
type Perks struct {
	StatPerks StatPerks   `json:"statPerks"`
	Styles    []PerkStyle `json:"styles"`
}

type StatPerks struct {
	Offense int `json:"offense"`
	Flex    int `json:"flex"`
	Defense int `json:"defense"`
}

type PerkStyle struct {
	Description string          `json:"description"` // "primaryStyle" or "subStyle"
	Style       int             `json:"style"`
	Selections  []PerkSelection `json:"selections"`
}

type PerkSelection struct {
	Perk int `json:"perk"`
}

// TimelineResponse represents the response from /lol/match/v5/matches/{matchId}/timeline
type TimelineResponse struct {
	Metadata TimelineMetadata `json:"metadata"`
	Info     TimelineInfo     `json:"info"`
}

type TimelineMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type TimelineInfo struct {
	FrameInterval int             `json:"frameInterval"`
	Frames        []TimelineFrame `json:"frames"`
}

type TimelineFrame struct {
	Timestamp int             `json:"timestamp"`
	Events    []TimelineEvent `json:"events"`
}

// TimelineEvent is a single timestamped occurrence inside a frame. ItemID is set
// for ITEM_PURCHASED/ITEM_SOLD, BeforeID/AfterID for ITEM_UNDO, SkillSlot for
// SKILL_LEVEL_UP.
type TimelineEvent struct {
	Type          string `json:"type"`
	Timestamp     int    `json:"timestamp"`
	ParticipantID int    `json:"participantId,omitempty"`
	ItemID        int    `json:"itemId,omitempty"`
	BeforeID      int    `json:"beforeId,omitempty"`
	AfterID       int    `json:"afterId,omitempty"`
	SkillSlot     int    `json:"skillSlot,omitempty"`
	LevelUpType   string `json:"levelUpType,omitempty"`
}

// LeagueListResponse represents a league page from /lol/league/v4/{tier}leagues
type LeagueListResponse struct {
	LeagueID string        `json:"leagueId"`
	Tier     string        `json:"tier"`
	Queue    string        `json:"queue"`
	Entries  []LeagueEntry `json:"entries"`
}

// LeagueEntry is one ranked entry, either from a league page or from
// /lol/league/v4/entries/{queue}/{tier}/{division}.
type LeagueEntry struct {
	PUUID        string `json:"puuid"`
	Tier         string `json:"tier,omitempty"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Tier order for comparison (higher index = higher rank)
var TierOrder = map[string]int{
	"IRON":        0,
	"BRONZE":      1,
	"SILVER":      2,
	"GOLD":        3,
	"PLATINUM":    4,
	"EMERALD":     5,
	"DIAMOND":     6,
	"MASTER":      7,
	"GRANDMASTER": 8,
	"CHALLENGER":  9,
}

// ApexTiers are the tiers served by dedicated league-v4 endpoints rather than
// the paged entries endpoint.
var ApexTiers = map[string]string{
	"CHALLENGER":  "challengerleagues",
	"GRANDMASTER": "grandmasterleagues",
	"MASTER":      "masterleagues",
}

// NormalizePatch truncates a game version to its first two segments
// (e.g., 14.24.448 -> 14.24).
func NormalizePatch(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}
	return version
}
