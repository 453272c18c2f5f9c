package cet

import "github.com/the4estate/t4e/internal/calendar"

// TimelineItem is one pending entry on the world timeline: consumed and
// discarded exactly once when its slot is reached. Content ids are plain
// strings so items stay flat for persistence.
type TimelineItem struct {
	ID           string
	When         calendar.Date
	PayloadKind  string // "event" | "meeting" | "trial" | "letter"
	SpawnNewsIDs []string
	SpawnLeadIDs []string
}
