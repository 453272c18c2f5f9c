package engine

import (
	"log/slog"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
)

// Flag keys maintained by the weekly cadence.
const (
	FlagEditorialUnlocked       = "editorial_unlocked"
	FlagApplyPublicationEffects = "apply_publication_consequences"
)

// CadenceRules pins the weekly newspaper rhythm to the calendar: Sunday
// morning opens the editorial phase, Monday morning requests that the
// previous edition's consequences be applied. Content rules react to
// these flags rather than to raw weekday checks.
type CadenceRules struct {
	commands WorldCommands
	log      *slog.Logger
}

// NewCadenceRules subscribes the cadence to hub's segment ticks.
func NewCadenceRules(hub *Hub, commands WorldCommands, log *slog.Logger) *CadenceRules {
	if log == nil {
		log = slog.Default()
	}
	c := &CadenceRules{commands: commands, log: log}
	hub.OnSegmentAdvanced(c.onSegment)
	return c
}

func (c *CadenceRules) onSegment(now calendar.Date) {
	if now.Segment != calendar.Morning {
		return
	}
	switch now.Day {
	case calendar.Sunday:
		c.setFlag(FlagEditorialUnlocked, now)
	case calendar.Monday:
		c.setFlag(FlagApplyPublicationEffects, now)
	}
}

func (c *CadenceRules) setFlag(key string, now calendar.Date) {
	if err := c.commands.Apply(cet.SetFlag{Key: key, Value: 1}); err != nil {
		c.log.Warn("cadence flag failed", "flag", key, "err", err)
		return
	}
	c.log.Debug("cadence flag set", "flag", key, "at", now.String())
}
