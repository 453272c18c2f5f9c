package cet

import "github.com/the4estate/t4e/internal/calendar"

// Condition is the closed sum of authored predicate kinds. All conditions
// of a rule are ANDed; evaluation short-circuits on the first failure.
type Condition interface {
	condition()
}

// WeekAtLeast holds when the snapshot week is >= Week.
type WeekAtLeast struct {
	Week int
}

// WeekInRange holds when Min <= week <= Max (inclusive).
type WeekInRange struct {
	Min, Max int
}

// SegmentIs holds when the trigger fired in the given day segment.
type SegmentIs struct {
	Segment calendar.Segment
}

// DayIs holds when the trigger fired on the given weekday.
type DayIs struct {
	Day calendar.Weekday
}

// FlagExists holds when the world has any value for Key.
type FlagExists struct {
	Key string
}

// FlagEquals holds when the world flag Key exists and equals Value.
type FlagEquals struct {
	Key   string
	Value int
}

// ContextEquals holds when the trigger context carries Key with exactly Value.
type ContextEquals struct {
	Key   string
	Value string
}

// ContextIn holds when the trigger context value for Key is one of Values.
type ContextIn struct {
	Key    string
	Values []string
}

// GlobalMoodAtLeast holds when agency credibility is >= Min.
type GlobalMoodAtLeast struct {
	Min int
}

// GlobalMoodAtMost holds when agency credibility is <= Max.
type GlobalMoodAtMost struct {
	Max int
}

// RegimePressureAtLeast holds when regime pressure is >= Min.
type RegimePressureAtLeast struct {
	Min int
}

// PersonaSuspicionAtLeast holds when the persona's suspicion is >= Min.
// An unknown persona reads as suspicion 0.
type PersonaSuspicionAtLeast struct {
	Persona string
	Min     int
}

// PersonaSuspicionAtMost holds when the persona's suspicion is <= Max.
type PersonaSuspicionAtMost struct {
	Persona string
	Max     int
}

// FactionMoodAtLeast holds when the faction's mood is >= Min.
type FactionMoodAtLeast struct {
	Faction string
	Min     int
}

// FactionMoodAtMost holds when the faction's mood is <= Max.
type FactionMoodAtMost struct {
	Faction string
	Max     int
}

func (WeekAtLeast) condition()             {}
func (WeekInRange) condition()             {}
func (SegmentIs) condition()               {}
func (DayIs) condition()                   {}
func (FlagExists) condition()              {}
func (FlagEquals) condition()              {}
func (ContextEquals) condition()           {}
func (ContextIn) condition()               {}
func (GlobalMoodAtLeast) condition()       {}
func (GlobalMoodAtMost) condition()        {}
func (RegimePressureAtLeast) condition()   {}
func (PersonaSuspicionAtLeast) condition() {}
func (PersonaSuspicionAtMost) condition()  {}
func (FactionMoodAtLeast) condition()      {}
func (FactionMoodAtMost) condition()       {}
