package engine

import (
	"log/slog"

	"github.com/the4estate/t4e/internal/calendar"
)

// TimeService owns the current calendar point and drives the hub.
// Every intermediate slot raises its own notifications (a day advance
// is four observable segment ticks, a week advance twenty-eight), so
// downstream listeners see every slot and the scheduler can never miss
// one.
type TimeService struct {
	current calendar.Date
	hub     *Hub
	log     *slog.Logger
}

// NewTimeService starts the clock at start.
func NewTimeService(hub *Hub, start calendar.Date, log *slog.Logger) *TimeService {
	if log == nil {
		log = slog.Default()
	}
	return &TimeService{current: start, hub: hub, log: log}
}

// Current returns the current calendar point.
func (t *TimeService) Current() calendar.Date {
	return t.current
}

// Restore jumps the clock to a saved point without raising signals.
// Used only by save loading, before any tick runs.
func (t *TimeService) Restore(d calendar.Date) {
	t.current = d
}

// AdvanceSegment moves to the next slot and raises segment-advanced,
// plus day/week-advanced when those rolled.
func (t *TimeService) AdvanceSegment() {
	next := t.current.NextSegment()
	dayChanged := next.Day != t.current.Day
	weekChanged := next.Week != t.current.Week || next.Year != t.current.Year
	t.current = next

	t.log.Debug("segment advanced", "now", next.String())
	t.hub.RaiseSegmentAdvanced(next)
	if dayChanged {
		t.hub.RaiseDayAdvanced(next)
	}
	if weekChanged {
		t.hub.RaiseWeekAdvanced(next)
	}
}

// AdvanceDay performs four segment advances.
func (t *TimeService) AdvanceDay() {
	for i := 0; i < calendar.SegmentsPerDay; i++ {
		t.AdvanceSegment()
	}
}

// AdvanceWeek performs seven day advances.
func (t *TimeService) AdvanceWeek() {
	for i := 0; i < calendar.DaysPerWeek; i++ {
		t.AdvanceDay()
	}
}
