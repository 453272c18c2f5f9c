package world

import (
	"fmt"
	"log/slog"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
)

// Enqueuer is the scheduling port the applier needs. Satisfied by
// engine.TimelineScheduler.
type Enqueuer interface {
	Enqueue(item cet.TimelineItem)
}

// EvidenceSink receives evidence grants produced by effects. Satisfied
// by leads.Tracker.
type EvidenceSink interface {
	AddEvidence(leadID, evidenceType, evidenceID string) error
}

// MemoryWriter receives memory log entries. Satisfied by *MemoryLog.
type MemoryWriter interface {
	Append(now calendar.Date, entry string)
}

// ApplyFailure records one effect that could not be applied. The batch
// continues past a failure; callers get the full list.
type ApplyFailure struct {
	Invocation cet.EffectInvocation
	Err        error
}

func (f ApplyFailure) Error() string {
	return fmt.Sprintf("effect of rule %s: %v", f.Invocation.StableKey(), f.Err)
}

// EffectApplier runs a staged batch against the world, in order. Most
// effects go straight to the state store; schedule, evidence and memory
// effects are routed to their ports instead.
type EffectApplier struct {
	state     *State
	scheduler Enqueuer
	evidence  EvidenceSink
	memory    MemoryWriter
	log       *slog.Logger
}

// NewEffectApplier wires the applier to its state and ports. Evidence
// and memory ports may be nil; effects targeting a nil port fail.
func NewEffectApplier(state *State, scheduler Enqueuer, evidence EvidenceSink, memory MemoryWriter, log *slog.Logger) *EffectApplier {
	if log == nil {
		log = slog.Default()
	}
	return &EffectApplier{state: state, scheduler: scheduler, evidence: evidence, memory: memory, log: log}
}

// Apply runs every invocation in slice order. A failing effect is
// recorded and skipped; later effects still run. Returns the count of
// effects applied successfully and the failures in encounter order.
func (a *EffectApplier) Apply(now calendar.Date, staged []cet.EffectInvocation) (applied int, failures []ApplyFailure) {
	for _, inv := range staged {
		if err := a.applyOne(now, inv.Effect); err != nil {
			a.log.Warn("effect failed",
				"rule", inv.StableKey(),
				"effect", fmt.Sprintf("%T", inv.Effect),
				"err", err)
			failures = append(failures, ApplyFailure{Invocation: inv, Err: err})
			continue
		}
		applied++
	}
	return applied, failures
}

func (a *EffectApplier) applyOne(now calendar.Date, e cet.Effect) error {
	switch e := e.(type) {
	case cet.ScheduleItem:
		if e.ItemID == "" {
			return fmt.Errorf("schedule item: empty id")
		}
		when, err := e.Spec.Resolve(now)
		if err != nil {
			return fmt.Errorf("schedule item %s: %w", e.ItemID, err)
		}
		a.scheduler.Enqueue(cet.TimelineItem{
			ID:           e.ItemID,
			When:         when,
			PayloadKind:  e.PayloadKind,
			SpawnNewsIDs: e.SpawnNewsIDs,
			SpawnLeadIDs: e.SpawnLeadIDs,
		})
		return nil
	case cet.AddEvidence:
		if a.evidence == nil {
			return fmt.Errorf("add evidence: no evidence sink wired")
		}
		return a.evidence.AddEvidence(e.LeadID, e.EvidenceType, e.EvidenceID)
	case cet.AddMemoryLog:
		if a.memory == nil {
			return fmt.Errorf("add memory log: no memory log wired")
		}
		a.memory.Append(now, e.Entry)
		return nil
	case cet.Arrest:
		if e.Persona == "" {
			return fmt.Errorf("arrest: empty persona")
		}
		a.state.Arrest(e.Persona, now.AddDays(e.DurationDays))
		return nil
	default:
		return a.state.Apply(e)
	}
}
