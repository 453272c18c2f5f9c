package engine

import (
	"fmt"
	"sort"
)

// FiredLedger is the idempotency cache: it records whether a given
// (rule, trigger occurrence) pair has already produced effects.
//
// Entries are never unmarked (there is no "unfire" operation) and the
// ledger does not evict. Trigger instance ids are unique per occurrence
// and the simulation horizon is bounded by a play session, so unbounded
// accumulation is acceptable.
type FiredLedger struct {
	fired map[string]struct{}
}

// NewFiredLedger creates an empty ledger.
func NewFiredLedger() *FiredLedger {
	return &FiredLedger{fired: make(map[string]struct{}, 64)}
}

func ledgerKey(eventID string, ruleIndex int, triggerInstanceID string) string {
	return fmt.Sprintf("%s#%d@%s", eventID, ruleIndex, triggerInstanceID)
}

// HasFired reports whether the rule already produced effects for this
// trigger occurrence. Absence means "not yet fired".
func (l *FiredLedger) HasFired(eventID string, ruleIndex int, triggerInstanceID string) bool {
	_, ok := l.fired[ledgerKey(eventID, ruleIndex, triggerInstanceID)]
	return ok
}

// MarkFired records the pair. Marking twice is a no-op.
func (l *FiredLedger) MarkFired(eventID string, ruleIndex int, triggerInstanceID string) {
	l.fired[ledgerKey(eventID, ruleIndex, triggerInstanceID)] = struct{}{}
}

// Keys returns every recorded key in sorted order, for persistence.
func (l *FiredLedger) Keys() []string {
	keys := make([]string, 0, len(l.fired))
	for k := range l.fired {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Restore marks raw keys loaded from a save. Existing entries are kept.
func (l *FiredLedger) Restore(keys []string) {
	for _, k := range keys {
		l.fired[k] = struct{}{}
	}
}

// Len returns the number of recorded keys.
func (l *FiredLedger) Len() int {
	return len(l.fired)
}
