package cet

import "github.com/the4estate/t4e/internal/calendar"

// Effect is the closed sum of authored mutation kinds. Effects are
// descriptions only; the world's command surface interprets them.
type Effect interface {
	effect()
}

// SetFlag writes Value under Key in the world flag map.
type SetFlag struct {
	Key   string
	Value int
}

// ClearFlag removes Key from the world flag map.
type ClearFlag struct {
	Key string
}

// MoodDelta shifts the global mood accumulator by Delta.
type MoodDelta struct {
	Delta int
}

// CredibilityDelta shifts agency credibility by Delta.
type CredibilityDelta struct {
	Delta int
}

// PersonaSuspicionDelta shifts one persona's suspicion by Delta.
type PersonaSuspicionDelta struct {
	Persona string
	Delta   int
}

// FactionMoodDelta shifts one faction's mood by Delta.
type FactionMoodDelta struct {
	Faction string
	Delta   int
}

// AddLead makes a lead visible in the world lead set.
type AddLead struct {
	LeadID string
}

// RemoveLead withdraws a lead from the world lead set.
type RemoveLead struct {
	LeadID string
}

// AddEvidence grants one collected evidence item toward a lead.
type AddEvidence struct {
	LeadID       string
	EvidenceType string
	EvidenceID   string
}

// AddNews makes a news item available in the world news set.
type AddNews struct {
	NewsID string
}

// ScheduleItem enqueues a timeline item at a slot derived from the
// current date and Spec.
type ScheduleItem struct {
	ItemID       string
	PayloadKind  string
	Spec         ScheduleSpec
	SpawnNewsIDs []string
	SpawnLeadIDs []string
}

// Fine deducts Amount from the agency treasury.
type Fine struct {
	Amount int
}

// Arrest detains a persona for DurationDays.
type Arrest struct {
	Persona      string
	DurationDays int
}

// RegimePressureDelta shifts regime pressure by Delta.
type RegimePressureDelta struct {
	Delta int
}

// AddMemoryLog appends a free-form entry to the memory log.
type AddMemoryLog struct {
	Entry string
}

// UnlockSource makes a source count toward credibility scoring.
type UnlockSource struct {
	SourceID string
}

func (SetFlag) effect()               {}
func (ClearFlag) effect()             {}
func (MoodDelta) effect()             {}
func (CredibilityDelta) effect()      {}
func (PersonaSuspicionDelta) effect() {}
func (FactionMoodDelta) effect()      {}
func (AddLead) effect()               {}
func (RemoveLead) effect()            {}
func (AddEvidence) effect()           {}
func (AddNews) effect()               {}
func (ScheduleItem) effect()          {}
func (Fine) effect()                  {}
func (Arrest) effect()                {}
func (RegimePressureDelta) effect()   {}
func (AddMemoryLog) effect()          {}
func (UnlockSource) effect()          {}

// ScheduleSpec shapes a relative target slot for ScheduleItem effects.
// Zero values mean "keep the current date's component".
type ScheduleSpec struct {
	WeekRelative int    // +0 this week, +1 next week, ...
	OffsetDays   int    // +n days after the week shift
	DayOfWeek    string // optional "Monday".."Sunday"; pins the weekday
	Segment      string // optional "Morning".."Night"; pins the segment
}

// Resolve computes the concrete slot for a spec relative to now.
// Week shift applies first, then the optional weekday pin, then the day
// offset, then the optional segment pin. The pin walks forward to the
// next matching weekday, so it crosses into the following week when the
// pinned day already passed in the shifted one.
func (s ScheduleSpec) Resolve(now calendar.Date) (calendar.Date, error) {
	target := now.AddWeeks(s.WeekRelative)

	if s.DayOfWeek != "" {
		day, err := calendar.ParseWeekday(s.DayOfWeek)
		if err != nil {
			return calendar.Date{}, err
		}
		for target.Day != day {
			target = target.AddDays(1)
		}
	}

	target = target.AddDays(s.OffsetDays)

	if s.Segment != "" {
		seg, err := calendar.ParseSegment(s.Segment)
		if err != nil {
			return calendar.Date{}, err
		}
		target.Segment = seg
	}

	return target, nil
}
