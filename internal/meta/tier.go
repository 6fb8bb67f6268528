package meta

// TierOrder lists the ranked tiers highest first.
var TierOrder = []string{
	"CHALLENGER", "GRANDMASTER", "MASTER", "DIAMOND", "EMERALD",
	"PLATINUM", "GOLD", "SILVER", "BRONZE", "IRON",
}

// TargetTiers expands a rank bucket ("EMERALD_PLUS", "ALL", or a single tier)
// into the set of tiers whose aggregate rows it covers.
func TargetTiers(rank string) []string {
	switch rank {
	case "ALL":
		return append([]string(nil), TierOrder...)
	case "GOLD_PLUS":
		return tiersDownTo("GOLD")
	case "GOLD_MINUS":
		for i, t := range TierOrder {
			if t == "GOLD" {
				return append([]string(nil), TierOrder[i:]...)
			}
		}
	case "PLATINUM_PLUS":
		return tiersDownTo("PLATINUM")
	case "EMERALD_PLUS":
		return tiersDownTo("EMERALD")
	case "DIAMOND_PLUS":
		return tiersDownTo("DIAMOND")
	}
	return []string{rank}
}

func tiersDownTo(tier string) []string {
	for i, t := range TierOrder {
		if t == tier {
			return append([]string(nil), TierOrder[:i+1]...)
		}
	}
	return append([]string(nil), TierOrder...)
}

// Grade turns a champion's win rate and pick rate (both in percent) into the
// tier-list letter grade. The top grade additionally requires a pick-rate
// floor so a 10-game pocket pick cannot top the list.
func Grade(winRate, pickRate float64) string {
	switch {
	case winRate >= 53 && pickRate > 1:
		return "S+"
	case winRate >= 52:
		return "S"
	case winRate >= 51:
		return "A+"
	case winRate >= 50:
		return "A"
	case winRate >= 48:
		return "B"
	case winRate >= 45:
		return "C"
	default:
		return "D"
	}
}
