package cet

import "fmt"

// Rule is one authored condition->effect mapping. Rules are immutable
// after content compilation; RuleIndex is stable within its EventID so
// (EventID, RuleIndex) identifies the rule across saves and replays.
type Rule struct {
	EventID       string
	RuleIndex     int
	Trigger       TriggerKind
	Priority      int
	Conditions    []Condition
	Effects       []Effect
	ExclusiveFlag string
	SlotKind      string
	Background    bool
}

// EffectInvocation pairs a staged effect with its owning rule. The pair
// is used both to apply the effect and to compute the idempotency key.
type EffectInvocation struct {
	Source *Rule
	Effect Effect
}

// StableKey identifies the owning rule: "eventID#ruleIndex".
func (e EffectInvocation) StableKey() string {
	return fmt.Sprintf("%s#%d", e.Source.EventID, e.Source.RuleIndex)
}
