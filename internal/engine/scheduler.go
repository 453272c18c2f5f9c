package engine

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
)

// TimelineScheduler holds pending timeline items keyed by target slot
// and emits each exactly once when its slot is reached.
//
// The key space is a sorted multimap: composite keys are the slot prefix
// (year, week, weekday, segment; fixed width, so lexicographic order is
// chronological) plus the item id, so all items in one slot sort
// contiguously and distinct ids fire in lexicographic id order. Two
// items sharing an id in the same slot are both kept (list, not set) and
// fire in insertion order.
//
// The scheduler checks only the current slot on each tick; items left in
// a past slot never fire retroactively. Correctness therefore rests on
// the calendar never skipping a tick, which NextSegment guarantees.
type TimelineScheduler struct {
	keys  []string // sorted composite keys
	items map[string][]cet.TimelineItem
	hub   *Hub
	log   *slog.Logger
}

// NewTimelineScheduler creates a scheduler subscribed to hub's segment
// ticks. Subscribe it before any listener that must observe this tick's
// spawned effects.
func NewTimelineScheduler(hub *Hub, log *slog.Logger) *TimelineScheduler {
	if log == nil {
		log = slog.Default()
	}
	s := &TimelineScheduler{
		items: make(map[string][]cet.TimelineItem, 16),
		hub:   hub,
		log:   log,
	}
	hub.OnSegmentAdvanced(s.onSegmentAdvanced)
	return s
}

// Enqueue inserts an item at its slot. O(log n) position search plus the
// slice insert.
func (s *TimelineScheduler) Enqueue(item cet.TimelineItem) {
	key := item.When.SlotKey() + item.ID
	if existing, ok := s.items[key]; ok {
		s.items[key] = append(existing, item)
		return
	}
	pos := sort.SearchStrings(s.keys, key)
	s.keys = append(s.keys, "")
	copy(s.keys[pos+1:], s.keys[pos:])
	s.keys[pos] = key
	s.items[key] = []cet.TimelineItem{item}
}

// Len returns the number of pending items.
func (s *TimelineScheduler) Len() int {
	n := 0
	for _, list := range s.items {
		n += len(list)
	}
	return n
}

// Pending returns all queued items in firing order, for persistence.
func (s *TimelineScheduler) Pending() []cet.TimelineItem {
	out := make([]cet.TimelineItem, 0, len(s.keys))
	for _, key := range s.keys {
		out = append(out, s.items[key]...)
	}
	return out
}

// Restore replaces the queue with items from a save.
func (s *TimelineScheduler) Restore(items []cet.TimelineItem) {
	s.keys = s.keys[:0]
	s.items = make(map[string][]cet.TimelineItem, len(items))
	for _, item := range items {
		s.Enqueue(item)
	}
}

// onSegmentAdvanced emits every item whose slot is exactly now, in key
// order, then removes the fired keys.
func (s *TimelineScheduler) onSegmentAdvanced(now calendar.Date) {
	prefix := now.SlotKey()

	start := sort.SearchStrings(s.keys, prefix)
	end := start
	for end < len(s.keys) && strings.HasPrefix(s.keys[end], prefix) {
		end++
	}
	if start == end {
		return
	}

	due := make([]string, end-start)
	copy(due, s.keys[start:end])
	s.keys = append(s.keys[:start], s.keys[end:]...)

	for _, key := range due {
		for _, item := range s.items[key] {
			s.log.Debug("timeline item due", "item", item.ID, "at", now.String())
			s.hub.RaiseItemDue(item, now)
		}
		delete(s.items, key)
	}
}
