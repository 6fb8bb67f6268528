package meta

import (
	"reflect"
	"testing"
)

// fakeCatalog is a map-backed ItemCatalog for tests.
type fakeCatalog map[int]ItemInfo

func (c fakeCatalog) Item(id int) (ItemInfo, bool) {
	info, ok := c[id]
	return info, ok
}

var testCatalog = fakeCatalog{
	1055: {Name: "Doran's Blade"},
	1036: {Name: "Long Sword", Into: []int{3134, 6692}},
	1001: {Name: "Boots", Into: []int{3006, 3047}, Tags: []string{"Boots"}},
	3006: {Name: "Berserker's Greaves", Tags: []string{"Boots"}},
	3031: {Name: "Infinity Edge"},
	3072: {Name: "Bloodthirster"},
	3036: {Name: "Lord Dominik's Regards"},
	6672: {Name: "Kraken Slayer"},
	3046: {Name: "Phantom Dancer"},
}

func TestFinalInventory(t *testing.T) {
	slots := []int{3031, 0, 3340, 2003, 1055, 3072}
	want := []int{3031, 3072}
	if got := FinalInventory(slots); !reflect.DeepEqual(got, want) {
		t.Errorf("FinalInventory = %v, want %v", got, want)
	}
}

func TestClassifyBuildStartingWindow(t *testing.T) {
	clean := []ItemEvent{
		purchase(0, 1055),
		purchase(30000, 3340),  // trinket, vision-excluded
		purchase(60000, 2003),  // exactly at the cutoff, included
		purchase(60001, 1036),  // past the cutoff
		purchase(120000, 3031),
	}
	cls := ClassifyBuild(clean, []int{3031}, testCatalog)

	want := []int{1055, 2003}
	if !reflect.DeepEqual(cls.StartingItems, want) {
		t.Errorf("StartingItems = %v, want %v", cls.StartingItems, want)
	}
}

func TestClassifyBuildCorePath(t *testing.T) {
	clean := []ItemEvent{
		purchase(1000, 1055),
		purchase(200000, 1036),  // component, upgrades exist, skipped
		purchase(400000, 6672),  // terminal
		purchase(500000, 1001),  // boots tag keeps it core-eligible
		purchase(700000, 3031),  // terminal
		purchase(900000, 3046),  // terminal, past the core cap
		purchase(950000, 3036),  // terminal
	}
	finalItems := []int{6672, 1001, 3031, 3046, 3036}

	cls := ClassifyBuild(clean, finalItems, testCatalog)

	wantCore := []int{6672, 1001, 3031}
	if !reflect.DeepEqual(cls.CorePath, wantCore) {
		t.Errorf("CorePath = %v, want %v", cls.CorePath, wantCore)
	}
	wantFull := []int{6672, 1001, 3031, 3046, 3036}
	if !reflect.DeepEqual(cls.FullPath, wantFull) {
		t.Errorf("FullPath = %v, want %v", cls.FullPath, wantFull)
	}
}

func TestClassifyBuildIgnoresSoldItems(t *testing.T) {
	// 6672 was purchased but is gone from the final slots: it never joins
	// the path, no matter how early it was bought.
	clean := []ItemEvent{
		purchase(300000, 6672),
		purchase(600000, 3031),
		purchase(800000, 3072),
	}
	cls := ClassifyBuild(clean, []int{3031, 3072}, testCatalog)

	want := []int{3031, 3072}
	if !reflect.DeepEqual(cls.CorePath, want) {
		t.Errorf("CorePath = %v, want %v", cls.CorePath, want)
	}
}

func TestClassifyBuildRebuyDoesNotAdvance(t *testing.T) {
	clean := []ItemEvent{
		purchase(300000, 3031),
		purchase(400000, 3031), // sold and rebought, first occurrence counts
		purchase(600000, 3072),
	}
	cls := ClassifyBuild(clean, []int{3031, 3072}, testCatalog)

	want := []int{3031, 3072}
	if !reflect.DeepEqual(cls.FullPath, want) {
		t.Errorf("FullPath = %v, want %v", cls.FullPath, want)
	}
}

func TestClassifyBuildUnknownItemStaysEligible(t *testing.T) {
	// 9999 is not in the catalog, so it cannot be proven a component.
	clean := []ItemEvent{purchase(300000, 9999)}
	cls := ClassifyBuild(clean, []int{9999}, testCatalog)

	if !reflect.DeepEqual(cls.CorePath, []int{9999}) {
		t.Errorf("CorePath = %v, want [9999]", cls.CorePath)
	}
}

func TestItemSignatures(t *testing.T) {
	cls := BuildClassification{
		StartingItems: []int{2003, 1055}, // deliberately unsorted
		CorePath:      []int{6672, 1001, 3031},
		FullPath:      []int{6672, 1001, 3031, 3046, 3036},
	}
	finalItems := []int{6672, 1001, 3031, 3046, 3036}

	items := ItemSignatures(cls, finalItems, true)

	wantKeys := []string{
		"1001-3031-3036-3046-6672", // full build, sorted
		"6672", "1001", "3031", "3046", "3036",
		"start_1055-2003", // sorted
		"core_6672-1001-3031",
		"core_6672-1001-3031_slot4_3046",
		"core_6672-1001-3031_slot5_3036",
	}
	for _, key := range wantKeys {
		s, ok := items[key]
		if !ok {
			t.Errorf("Missing signature %q", key)
			continue
		}
		if s.Wins != 1 || s.Matches != 1 {
			t.Errorf("Signature %q = %+v, want 1 win / 1 match", key, s)
		}
	}
	if len(items) != len(wantKeys) {
		t.Errorf("Got %d signatures, want %d: %v", len(items), len(wantKeys), items)
	}

	// No slot6 entry: the build never reached a sixth terminal item.
	for key := range items {
		if key == "core_6672-1001-3031_slot6_0" {
			t.Errorf("Unexpected slot6 signature")
		}
	}
}

func TestItemSignaturesLoss(t *testing.T) {
	items := ItemSignatures(BuildClassification{}, []int{3031, 1001}, false)

	s := items["3031"]
	if s.Wins != 0 || s.Matches != 1 {
		t.Errorf("Flat item stat = %+v, want 0 wins / 1 match", s)
	}
}

// With exactly one final item the full-build key and the flat per-item key
// are the same string, so that signature counts the match twice. Kept on
// purpose: readers split on the key shape, not the count.
func TestItemSignaturesSingleItemKeyOverlap(t *testing.T) {
	items := ItemSignatures(BuildClassification{}, []int{3031}, true)

	if len(items) != 1 {
		t.Fatalf("Got %d signatures, want 1: %v", len(items), items)
	}
	s := items["3031"]
	if s.Wins != 2 || s.Matches != 2 {
		t.Errorf("Overlapping signature = %+v, want 2 wins / 2 matches", s)
	}
}
