package engine

import (
	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
)

// ClockTriggers bridges calendar signals onto the trigger bus: every
// segment, day and week advance becomes an on_segment_start,
// on_day_start or on_week_start trigger.
//
// Instance ids derive from the slot key, so the same slot always yields
// the same id. Replaying a tick after a crash therefore reuses the id
// and the fired ledger suppresses the rules that already ran.
type ClockTriggers struct {
	bus *TriggerBus
}

// NewClockTriggers subscribes the bridge to hub. Wire it after the
// scheduler so that items due in a slot are spawned before the slot's
// rules evaluate.
func NewClockTriggers(hub *Hub, bus *TriggerBus) *ClockTriggers {
	c := &ClockTriggers{bus: bus}
	hub.OnSegmentAdvanced(c.onSegment)
	hub.OnDayAdvanced(c.onDay)
	hub.OnWeekAdvanced(c.onWeek)
	return c
}

func (c *ClockTriggers) onSegment(now calendar.Date) {
	c.bus.Publish(cet.TriggerContext{
		Kind:       cet.TriggerSegmentStart,
		Date:       now,
		InstanceID: "seg@" + now.SlotKey(),
	})
}

func (c *ClockTriggers) onDay(now calendar.Date) {
	c.bus.Publish(cet.TriggerContext{
		Kind:       cet.TriggerDayStart,
		Date:       now,
		InstanceID: "day@" + now.SlotKey(),
	})
}

func (c *ClockTriggers) onWeek(now calendar.Date) {
	c.bus.Publish(cet.TriggerContext{
		Kind:       cet.TriggerWeekStart,
		Date:       now,
		InstanceID: "week@" + now.SlotKey(),
	})
}
