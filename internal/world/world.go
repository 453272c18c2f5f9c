// Package world holds the single mutable store of simulation facts and
// the adapter that funnels staged effects into it.
//
// WorldState has exactly one writer role: all mutation goes through
// Apply or the small set of named commands. Readers take Snapshot, which
// is a defensive copy: snapshots never alias the live collections, so
// evaluation can neither observe nor cause mutation.
package world

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
)

// State is the live world store. Not safe for concurrent use; a
// multi-threaded host must serialize whole ticks around it.
type State struct {
	news              map[string]struct{}
	leads             map[string]struct{}
	flags             map[string]int
	unlockedSources   map[string]struct{}
	agencyCredibility int
	globalMood        int
	regimePressure    int
	treasury          int
	personaSuspicion  map[string]int
	factionMood       map[string]int
	arrestedUntil     map[string]calendar.Date

	log *slog.Logger
}

// NewState creates an empty world.
func NewState(log *slog.Logger) *State {
	if log == nil {
		log = slog.Default()
	}
	return &State{
		news:             make(map[string]struct{}, 16),
		leads:            make(map[string]struct{}, 16),
		flags:            make(map[string]int, 16),
		unlockedSources:  make(map[string]struct{}, 8),
		personaSuspicion: make(map[string]int, 8),
		factionMood:      make(map[string]int, 8),
		arrestedUntil:    make(map[string]calendar.Date, 4),
		log:              log,
	}
}

// Snapshot returns a read-only copy of the world as of date. All
// collections are fresh copies.
func (s *State) Snapshot(date calendar.Date) cet.Snapshot {
	return cet.Snapshot{
		Date:              date,
		Flags:             copyMap(s.flags),
		UnlockedSources:   copySet(s.unlockedSources),
		AgencyCredibility: s.agencyCredibility,
		RegimePressure:    s.regimePressure,
		PersonaSuspicion:  copyMap(s.personaSuspicion),
		FactionMood:       copyMap(s.factionMood),
	}
}

// Apply performs the mutation an effect describes. Unrecognized effect
// kinds are a silent no-op; effects referencing an empty id fail so the
// applier can report them. ScheduleItem is not handled here; the
// applier resolves and enqueues it before the world ever sees it.
func (s *State) Apply(e cet.Effect) error {
	switch e := e.(type) {
	case cet.AddNews:
		if e.NewsID == "" {
			return fmt.Errorf("add news: empty id")
		}
		s.news[e.NewsID] = struct{}{}
	case cet.AddLead:
		if e.LeadID == "" {
			return fmt.Errorf("add lead: empty id")
		}
		s.leads[e.LeadID] = struct{}{}
	case cet.RemoveLead:
		if e.LeadID == "" {
			return fmt.Errorf("remove lead: empty id")
		}
		delete(s.leads, e.LeadID)
	case cet.SetFlag:
		if e.Key == "" {
			return fmt.Errorf("set flag: empty key")
		}
		s.flags[e.Key] = e.Value
	case cet.ClearFlag:
		if e.Key == "" {
			return fmt.Errorf("clear flag: empty key")
		}
		delete(s.flags, e.Key)
	case cet.UnlockSource:
		if e.SourceID == "" {
			return fmt.Errorf("unlock source: empty id")
		}
		s.unlockedSources[e.SourceID] = struct{}{}
	case cet.CredibilityDelta:
		s.agencyCredibility += e.Delta
	case cet.MoodDelta:
		s.globalMood += e.Delta
	case cet.RegimePressureDelta:
		s.regimePressure += e.Delta
	case cet.Fine:
		s.treasury -= e.Amount
	case cet.PersonaSuspicionDelta:
		if e.Persona == "" {
			return fmt.Errorf("persona suspicion delta: empty persona")
		}
		s.personaSuspicion[e.Persona] += e.Delta
	case cet.FactionMoodDelta:
		if e.Faction == "" {
			return fmt.Errorf("faction mood delta: empty faction")
		}
		s.factionMood[e.Faction] += e.Delta
	default:
		s.log.Debug("ignoring unrecognized effect kind", "effect", fmt.Sprintf("%T", e))
	}
	return nil
}

// AdjustAgencyCredibility is the named command used by the publish flow.
func (s *State) AdjustAgencyCredibility(delta int) {
	s.agencyCredibility += delta
}

// UnlockSource is the named command for source unlocks. Empty ids are
// ignored.
func (s *State) UnlockSource(sourceID string) {
	if sourceID == "" {
		return
	}
	s.unlockedSources[sourceID] = struct{}{}
}

// Arrest marks the persona as detained until the given slot. A second
// arrest extends the detention only if it ends later.
func (s *State) Arrest(persona string, until calendar.Date) {
	if prev, ok := s.arrestedUntil[persona]; ok && until.Before(prev) {
		return
	}
	s.arrestedUntil[persona] = until
}

// Arrested reports whether the persona is detained as of now.
func (s *State) Arrested(persona string, now calendar.Date) bool {
	until, ok := s.arrestedUntil[persona]
	return ok && now.Before(until)
}

// HasNews reports whether the news item is present in the world.
func (s *State) HasNews(id string) bool {
	_, ok := s.news[id]
	return ok
}

// HasLead reports whether the lead is present in the world.
func (s *State) HasLead(id string) bool {
	_, ok := s.leads[id]
	return ok
}

// Flag returns the flag value and whether it exists.
func (s *State) Flag(key string) (int, bool) {
	v, ok := s.flags[key]
	return v, ok
}

// NewsCount returns the size of the news set.
func (s *State) NewsCount() int { return len(s.news) }

// LeadCount returns the size of the lead set.
func (s *State) LeadCount() int { return len(s.leads) }

// FlagCount returns the number of set flags.
func (s *State) FlagCount() int { return len(s.flags) }

// AgencyCredibility returns the current credibility accumulator.
func (s *State) AgencyCredibility() int { return s.agencyCredibility }

// RegimePressure returns the current regime pressure accumulator.
func (s *State) RegimePressure() int { return s.regimePressure }

// Treasury returns the agency treasury balance.
func (s *State) Treasury() int { return s.treasury }

// NewsIDs returns the news set in sorted order, for persistence.
func (s *State) NewsIDs() []string { return sortedKeys(s.news) }

// LeadIDs returns the lead set in sorted order, for persistence.
func (s *State) LeadIDs() []string { return sortedKeys(s.leads) }

// Flags returns a copy of the flag map, for persistence.
func (s *State) Flags() map[string]int { return copyMap(s.flags) }

// UnlockedSources returns the unlocked source ids in sorted order.
func (s *State) UnlockedSources() []string { return sortedKeys(s.unlockedSources) }

// Restore overwrites world collections from persisted values. Used only
// by save loading, before any tick runs.
func (s *State) Restore(news, leads, sources []string, flags map[string]int, agencyCredibility int) {
	s.news = make(map[string]struct{}, len(news))
	for _, id := range news {
		s.news[id] = struct{}{}
	}
	s.leads = make(map[string]struct{}, len(leads))
	for _, id := range leads {
		s.leads[id] = struct{}{}
	}
	s.unlockedSources = make(map[string]struct{}, len(sources))
	for _, id := range sources {
		s.unlockedSources[id] = struct{}{}
	}
	s.flags = copyMap(flags)
	s.agencyCredibility = agencyCredibility
}

func copyMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySet(m map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
