package meta

// Role names used in aggregate keys.
const (
	RoleTop     = "TOP"
	RoleJungle  = "JUNGLE"
	RoleMid     = "MID"
	RoleADC     = "ADC"
	RoleSupport = "SUPPORT"

	// RoleAll keys rows that aggregate across roles (ban counters).
	RoleAll = "ALL"
)

// Roles lists the per-position aggregation roles in display order.
var Roles = []string{RoleTop, RoleJungle, RoleMid, RoleADC, RoleSupport}

// NormalizeRole maps a Riot teamPosition to the aggregation role. The second
// return is false for empty or unrecognized positions; such participants are
// excluded from per-role aggregation for the match.
func NormalizeRole(teamPosition string) (string, bool) {
	switch teamPosition {
	case "TOP":
		return RoleTop, true
	case "JUNGLE":
		return RoleJungle, true
	case "MIDDLE":
		return RoleMid, true
	case "BOTTOM":
		return RoleADC, true
	case "UTILITY":
		return RoleSupport, true
	default:
		return "", false
	}
}
