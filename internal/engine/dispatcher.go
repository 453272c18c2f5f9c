package engine

import (
	"log/slog"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
	"github.com/the4estate/t4e/internal/world"
)

// RuleEvaluator is the evaluation port. Satisfied by cet.Evaluator.
type RuleEvaluator interface {
	Evaluate(trigger cet.TriggerContext, snap cet.Snapshot) []cet.EffectInvocation
}

// Applier is the effect application port. Satisfied by
// world.EffectApplier.
type Applier interface {
	Apply(now calendar.Date, staged []cet.EffectInvocation) (applied int, failures []world.ApplyFailure)
}

// SnapshotSource produces the read-only world view evaluation runs
// against. Satisfied by world.State.
type SnapshotSource interface {
	Snapshot(date calendar.Date) cet.Snapshot
}

// Marker is the write half of the idempotency ledger. Satisfied by
// FiredLedger.
type Marker interface {
	MarkFired(eventID string, ruleIndex int, triggerInstanceID string)
}

// TriggerDispatcher is the pipeline head: for every published trigger it
// snapshots the world, evaluates, applies the staged batch, then marks
// every staged rule fired.
//
// Marking happens after application and unconditionally, even when some
// effects in the batch failed. A rule that half-applied must not run
// again on a replayed trigger; the failure list is the record of what
// was lost.
type TriggerDispatcher struct {
	eval    RuleEvaluator
	applier Applier
	source  SnapshotSource
	ledger  Marker
	log     *slog.Logger
}

// NewTriggerDispatcher wires the dispatcher and subscribes it to bus.
func NewTriggerDispatcher(bus *TriggerBus, eval RuleEvaluator, applier Applier, source SnapshotSource, ledger Marker, log *slog.Logger) *TriggerDispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &TriggerDispatcher{eval: eval, applier: applier, source: source, ledger: ledger, log: log}
	bus.Subscribe(d.onTrigger)
	return d
}

func (d *TriggerDispatcher) onTrigger(tc cet.TriggerContext) {
	snap := d.source.Snapshot(tc.Date)
	staged := d.eval.Evaluate(tc, snap)
	if len(staged) == 0 {
		return
	}

	applied, failures := d.applier.Apply(tc.Date, staged)
	d.log.Debug("trigger dispatched",
		"kind", string(tc.Kind),
		"instance", tc.InstanceID,
		"staged", len(staged),
		"applied", applied,
		"failed", len(failures))

	for _, inv := range staged {
		d.ledger.MarkFired(inv.Source.EventID, inv.Source.RuleIndex, tc.InstanceID)
	}
}

// WorldCommands is the mutation port timeline spawning uses. Satisfied
// by world.State.
type WorldCommands interface {
	Apply(e cet.Effect) error
}

// TimelineDispatcher turns due timeline items into world facts: each
// spawn list entry becomes an AddNews or AddLead against the world.
type TimelineDispatcher struct {
	commands WorldCommands
	log      *slog.Logger
}

// NewTimelineDispatcher wires the dispatcher and subscribes it to hub's
// item-due signal.
func NewTimelineDispatcher(hub *Hub, commands WorldCommands, log *slog.Logger) *TimelineDispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &TimelineDispatcher{commands: commands, log: log}
	hub.OnItemDue(d.onItemDue)
	return d
}

func (d *TimelineDispatcher) onItemDue(item cet.TimelineItem, now calendar.Date) {
	for _, id := range item.SpawnNewsIDs {
		if err := d.commands.Apply(cet.AddNews{NewsID: id}); err != nil {
			d.log.Warn("timeline spawn failed", "item", item.ID, "news", id, "err", err)
		}
	}
	for _, id := range item.SpawnLeadIDs {
		if err := d.commands.Apply(cet.AddLead{LeadID: id}); err != nil {
			d.log.Warn("timeline spawn failed", "item", item.ID, "lead", id, "err", err)
		}
	}
}
