package meta

import "meta-scanner/internal/riot"

// Timeline event types consumed by the pipeline.
const (
	EventPurchased    = "ITEM_PURCHASED"
	EventSold         = "ITEM_SOLD"
	EventUndo         = "ITEM_UNDO"
	EventSkillLevelUp = "SKILL_LEVEL_UP"
)

// ItemEvent is one purchase/sale/undo occurrence for a single participant,
// in timeline order.
type ItemEvent struct {
	Type      string
	Timestamp int // ms from game start
	ItemID    int
	BeforeID  int // UNDO only: the item whose purchase is being undone
	AfterID   int // UNDO only: the item whose sale is being undone
}

// CollectItemEvents pulls the shop events for one participant out of a match
// timeline, preserving feed order.
func CollectItemEvents(tl *riot.TimelineResponse, participantID int) []ItemEvent {
	var events []ItemEvent
	for _, frame := range tl.Info.Frames {
		for _, ev := range frame.Events {
			if ev.ParticipantID != participantID {
				continue
			}
			switch ev.Type {
			case EventPurchased, EventSold, EventUndo:
				events = append(events, ItemEvent{
					Type:      ev.Type,
					Timestamp: ev.Timestamp,
					ItemID:    ev.ItemID,
					BeforeID:  ev.BeforeID,
					AfterID:   ev.AfterID,
				})
			}
		}
	}
	return events
}

// ReplayItemEvents replays a participant's shop event stream into the net list
// of purchase/sale actions that survived UNDO cancellation. The shop undo
// button only ever reverts the most recent action, so an UNDO is matched
// against the last accumulated entry only: a purchase is cancelled when its
// itemId equals the UNDO's beforeId, a sale when its itemId equals the UNDO's
// afterId. An UNDO that matches neither is dropped rather than treated as an
// error, tolerating malformed feeds.
func ReplayItemEvents(events []ItemEvent) []ItemEvent {
	clean := make([]ItemEvent, 0, len(events))
	for _, ev := range events {
		switch ev.Type {
		case EventPurchased, EventSold:
			clean = append(clean, ev)
		case EventUndo:
			if len(clean) == 0 {
				continue
			}
			last := clean[len(clean)-1]
			if (last.Type == EventPurchased && last.ItemID == ev.BeforeID) ||
				(last.Type == EventSold && last.ItemID == ev.AfterID) {
				clean = clean[:len(clean)-1]
			}
		}
	}
	return clean
}

var skillLetters = map[int]string{1: "Q", 2: "W", 3: "E", 4: "R"}

// SkillOrder extracts a participant's level-up sequence from the timeline as a
// hyphen-joined Q/W/E/R string. Slots outside 1-4 are ignored. Returns "" when
// the timeline carries no skill events for the participant.
func SkillOrder(tl *riot.TimelineResponse, participantID int) string {
	var order []byte
	for _, frame := range tl.Info.Frames {
		for _, ev := range frame.Events {
			if ev.Type != EventSkillLevelUp || ev.ParticipantID != participantID {
				continue
			}
			letter, ok := skillLetters[ev.SkillSlot]
			if !ok {
				continue
			}
			if len(order) > 0 {
				order = append(order, '-')
			}
			order = append(order, letter...)
		}
	}
	return string(order)
}
