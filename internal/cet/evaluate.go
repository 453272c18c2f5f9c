package cet

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// RuleSource yields compiled rules per trigger kind. Implemented by the
// content repository; the evaluator asks once per kind at construction.
type RuleSource interface {
	RulesByTrigger(kind TriggerKind) []*Rule
}

// Evaluator stages effects for trigger occurrences. It is pure: no
// mutation of world state, the ledger, or the rules themselves.
//
// Rules are pre-indexed by trigger kind at construction; the index is
// never rebuilt, so the candidate order for a kind is fixed for the
// lifetime of the evaluator (it is the content declaration order).
type Evaluator struct {
	fired     Ledger
	byTrigger map[TriggerKind][]*Rule
	log       *slog.Logger
}

// NewEvaluator builds the trigger index from source and wires the
// idempotency ledger.
func NewEvaluator(source RuleSource, fired Ledger, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	byTrigger := make(map[TriggerKind][]*Rule, len(TriggerKinds))
	for _, kind := range TriggerKinds {
		if rules := source.RulesByTrigger(kind); len(rules) > 0 {
			byTrigger[kind] = rules
		}
	}
	return &Evaluator{fired: fired, byTrigger: byTrigger, log: log}
}

// Evaluate returns the deterministically ordered effect list for one
// trigger occurrence.
//
// Candidates are walked in declaration order. A rule is skipped when it
// already fired for this trigger instance, or when any condition is
// false. Staged invocations are then ordered by rule priority descending
// with rule EventID ascending as the tie-break; the sort key is
// per-source-rule only, so effects of one rule stay contiguous in
// authored order.
func (e *Evaluator) Evaluate(trigger TriggerContext, snapshot Snapshot) []EffectInvocation {
	rules := e.byTrigger[trigger.Kind]
	if len(rules) == 0 {
		return nil
	}

	staged := make([]EffectInvocation, 0, 8)
	for _, rule := range rules {
		if e.fired.HasFired(rule.EventID, rule.RuleIndex, trigger.InstanceID) {
			continue
		}
		if !e.allHold(rule.Conditions, trigger, snapshot) {
			continue
		}
		for _, eff := range rule.Effects {
			staged = append(staged, EffectInvocation{Source: rule, Effect: eff})
		}
	}

	sort.SliceStable(staged, func(i, j int) bool {
		a, b := staged[i].Source, staged[j].Source
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return strings.Compare(a.EventID, b.EventID) < 0
	})

	return staged
}

func (e *Evaluator) allHold(conditions []Condition, trigger TriggerContext, snapshot Snapshot) bool {
	for _, c := range conditions {
		if !e.holds(c, trigger, snapshot) {
			return false
		}
	}
	return true
}

// holds evaluates a single condition. An unrecognized condition type
// evaluates to false so the rule simply never fires; a warning makes the
// authoring mistake visible without breaking the tick.
func (e *Evaluator) holds(c Condition, trigger TriggerContext, snapshot Snapshot) bool {
	switch c := c.(type) {
	case WeekAtLeast:
		return snapshot.Date.Week >= c.Week
	case WeekInRange:
		return snapshot.Date.Week >= c.Min && snapshot.Date.Week <= c.Max
	case SegmentIs:
		return trigger.Date.Segment == c.Segment
	case DayIs:
		return trigger.Date.Day == c.Day
	case FlagExists:
		_, ok := snapshot.Flags[c.Key]
		return ok
	case FlagEquals:
		v, ok := snapshot.Flags[c.Key]
		return ok && v == c.Value
	case ContextEquals:
		v, ok := trigger.ContextValue(c.Key)
		return ok && v == c.Value
	case ContextIn:
		v, ok := trigger.ContextValue(c.Key)
		if !ok {
			return false
		}
		for _, want := range c.Values {
			if v == want {
				return true
			}
		}
		return false
	case GlobalMoodAtLeast:
		return snapshot.AgencyCredibility >= c.Min
	case GlobalMoodAtMost:
		return snapshot.AgencyCredibility <= c.Max
	case RegimePressureAtLeast:
		return snapshot.RegimePressure >= c.Min
	case PersonaSuspicionAtLeast:
		return snapshot.PersonaSuspicion[c.Persona] >= c.Min
	case PersonaSuspicionAtMost:
		return snapshot.PersonaSuspicion[c.Persona] <= c.Max
	case FactionMoodAtLeast:
		return snapshot.FactionMood[c.Faction] >= c.Min
	case FactionMoodAtMost:
		return snapshot.FactionMood[c.Faction] <= c.Max
	default:
		e.log.Warn("unrecognized condition kind evaluates false",
			"condition", fmt.Sprintf("%T", c),
		)
		return false
	}
}
