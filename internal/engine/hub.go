package engine

import (
	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
)

// Hub is the fan-out point for time-shaped notifications. One Hub is
// constructed per simulation instance and passed by reference to every
// component that publishes or subscribes, never a process-wide global,
// so independent simulations can coexist and tests cannot leak
// subscribers into each other.
//
// Delivery is synchronous and assumed total: subscribers run inline in
// subscription order and must not panic. The hub does not defend
// against throwing subscribers; that is a fatal defect in the
// subscriber, not a condition to handle here.
type Hub struct {
	segment []subscriber[calendar.Date]
	day     []subscriber[calendar.Date]
	week    []subscriber[calendar.Date]
	itemDue []subscriber[itemDueEvent]

	nextID int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

type itemDueEvent struct {
	item cet.TimelineItem
	at   calendar.Date
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// OnSegmentAdvanced registers fn for every segment tick. The returned
// func removes the subscription; calling it twice is a no-op.
func (h *Hub) OnSegmentAdvanced(fn func(calendar.Date)) (remove func()) {
	h.nextID++
	id := h.nextID
	h.segment = append(h.segment, subscriber[calendar.Date]{id: id, fn: fn})
	return func() { h.segment = removeSubscriber(h.segment, id) }
}

// OnDayAdvanced registers fn for ticks that roll the weekday.
func (h *Hub) OnDayAdvanced(fn func(calendar.Date)) (remove func()) {
	h.nextID++
	id := h.nextID
	h.day = append(h.day, subscriber[calendar.Date]{id: id, fn: fn})
	return func() { h.day = removeSubscriber(h.day, id) }
}

// OnWeekAdvanced registers fn for ticks that roll the week.
func (h *Hub) OnWeekAdvanced(fn func(calendar.Date)) (remove func()) {
	h.nextID++
	id := h.nextID
	h.week = append(h.week, subscriber[calendar.Date]{id: id, fn: fn})
	return func() { h.week = removeSubscriber(h.week, id) }
}

// OnItemDue registers fn for scheduled items reaching their slot.
func (h *Hub) OnItemDue(fn func(cet.TimelineItem, calendar.Date)) (remove func()) {
	h.nextID++
	id := h.nextID
	wrapped := func(ev itemDueEvent) { fn(ev.item, ev.at) }
	h.itemDue = append(h.itemDue, subscriber[itemDueEvent]{id: id, fn: wrapped})
	return func() { h.itemDue = removeSubscriber(h.itemDue, id) }
}

// RaiseSegmentAdvanced notifies all segment subscribers, in order.
func (h *Hub) RaiseSegmentAdvanced(d calendar.Date) { notify(h.segment, d) }

// RaiseDayAdvanced notifies all day subscribers, in order.
func (h *Hub) RaiseDayAdvanced(d calendar.Date) { notify(h.day, d) }

// RaiseWeekAdvanced notifies all week subscribers, in order.
func (h *Hub) RaiseWeekAdvanced(d calendar.Date) { notify(h.week, d) }

// RaiseItemDue notifies all item-due subscribers, in order.
func (h *Hub) RaiseItemDue(item cet.TimelineItem, at calendar.Date) {
	notify(h.itemDue, itemDueEvent{item: item, at: at})
}

func notify[T any](subs []subscriber[T], v T) {
	// Snapshot so a subscriber adding/removing subscriptions mid-delivery
	// does not disturb this delivery pass.
	snapshot := make([]subscriber[T], len(subs))
	copy(snapshot, subs)
	for _, s := range snapshot {
		s.fn(v)
	}
}

func removeSubscriber[T any](subs []subscriber[T], id int) []subscriber[T] {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
