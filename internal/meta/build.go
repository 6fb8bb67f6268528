package meta

import (
	"sort"
	"strconv"
	"strings"
)

const (
	// StartingWindowMS is the game-time cutoff for "starting items".
	StartingWindowMS = 60000

	// CorePathCap is the number of terminal items that make up the core build.
	CorePathCap = 3
)

// ItemInfo describes an item's build relationships from static item data.
type ItemInfo struct {
	Name string
	Into []int // items this builds into; empty means terminal
	Tags []string
}

// IsBoots reports whether the item carries the Boots tag. Boots stay
// core-eligible even while a tier-2 upgrade exists for them.
func (i ItemInfo) IsBoots() bool {
	for _, t := range i.Tags {
		if t == "Boots" {
			return true
		}
	}
	return false
}

// ItemCatalog resolves static item relationships. Implemented by the
// DataDragon item registry; tests use a map-backed fake.
type ItemCatalog interface {
	Item(id int) (ItemInfo, bool)
}

// Wards, trinkets and other vision purchases excluded from starting items.
var visionItems = map[int]bool{
	3340: true, 3363: true, 3364: true, 3330: true,
	2055: true, 2049: true, 2045: true, 2044: true,
}

// Trinkets, consumables and starter items filtered from the final inventory.
var ignoredFinalItems = map[int]bool{
	3340: true, 3363: true, 3364: true, 3330: true, // trinkets
	2003: true, 2055: true, 2140: true, 2138: true, 2139: true, // consumables
	1054: true, 1055: true, 1056: true, 1082: true, 1083: true, // starters
	1101: true, 1102: true, 1103: true, // jungle starters
}

// FinalInventory filters a participant's six end-of-game item slots down to
// the build items that count toward classification.
func FinalInventory(slots []int) []int {
	items := make([]int, 0, len(slots))
	for _, id := range slots {
		if id != 0 && !ignoredFinalItems[id] {
			items = append(items, id)
		}
	}
	return items
}

// BuildClassification is the per-participant artifact derived from the clean
// purchase timeline and the final inventory.
type BuildClassification struct {
	StartingItems []int // purchased within the starting window, vision excluded
	CorePath      []int // first CorePathCap terminal items, purchase order
	FullPath      []int // the uncapped unique terminal-item sequence
}

// ClassifyBuild derives the starting items and the terminal-item build path
// for one participant. Terminal means the item either has no upgrade target in
// the catalog or is tagged Boots; an item the catalog does not know stays
// eligible. Only items still present in the final inventory count: a purchase
// that was later sold or replaced is not part of the build that won or lost the
// game. Rebuying an already-counted terminal item does not advance the path.
func ClassifyBuild(clean []ItemEvent, finalItems []int, catalog ItemCatalog) BuildClassification {
	var cls BuildClassification

	for _, ev := range clean {
		if ev.Type == EventPurchased && ev.Timestamp <= StartingWindowMS && !visionItems[ev.ItemID] {
			cls.StartingItems = append(cls.StartingItems, ev.ItemID)
		}
	}

	finalSet := make(map[int]bool, len(finalItems))
	for _, id := range finalItems {
		finalSet[id] = true
	}

	seen := make(map[int]bool)
	for _, ev := range clean {
		if ev.Type != EventPurchased || !finalSet[ev.ItemID] || seen[ev.ItemID] {
			continue
		}
		if info, ok := catalog.Item(ev.ItemID); ok {
			if !info.IsBoots() && len(info.Into) > 0 {
				continue
			}
		}
		seen[ev.ItemID] = true
		cls.FullPath = append(cls.FullPath, ev.ItemID)
	}

	n := len(cls.FullPath)
	if n > CorePathCap {
		n = CorePathCap
	}
	cls.CorePath = cls.FullPath[:n]

	return cls
}

// CoreKey is the signature of a core build path: "core_" + hyphen-joined ids
// in purchase order.
func CoreKey(core []int) string {
	return "core_" + joinIDs(core)
}

// StartKey is the signature of a starting item group: "start_" + sorted ids.
func StartKey(items []int) string {
	sorted := append([]int(nil), items...)
	sort.Ints(sorted)
	return "start_" + joinIDs(sorted)
}

// SlotKey keys an option-slot item to the exact core it followed. Options are
// only meaningful relative to the specific core actually built, so the core
// signature is embedded in the key.
func SlotKey(coreKey string, slot, itemID int) string {
	return coreKey + "_slot" + strconv.Itoa(slot) + "_" + strconv.Itoa(itemID)
}

// ItemSignatures folds every item-derived signature for one participant into a
// fresh bucket: the full final-build key, one flat entry per final item, and -
// when the clean timeline is available - the starting group, core path and
// option slots.
func ItemSignatures(cls BuildClassification, finalItems []int, win bool) StatBucket {
	items := make(StatBucket)

	if len(finalItems) > 0 {
		sorted := append([]int(nil), finalItems...)
		sort.Ints(sorted)
		items.Add(joinIDs(sorted), win)
	}
	for _, id := range finalItems {
		items.Add(strconv.Itoa(id), win)
	}

	if len(cls.StartingItems) > 0 {
		items.Add(StartKey(cls.StartingItems), win)
	}

	if len(cls.CorePath) > 0 {
		coreKey := CoreKey(cls.CorePath)
		items.Add(coreKey, win)

		// Slot options are keyed off the unique sequence, so positions 4-6
		// only exist once the build actually reached that depth.
		for slot := CorePathCap + 1; slot <= 6 && slot <= len(cls.FullPath); slot++ {
			items.Add(SlotKey(coreKey, slot, cls.FullPath[slot-1]), win)
		}
	}

	return items
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, "-")
}
