package cet

import "github.com/the4estate/t4e/internal/calendar"

// TriggerKind names the class of occurrence a rule listens for.
type TriggerKind string

const (
	TriggerSegmentStart        TriggerKind = "on_segment_start"
	TriggerDayStart            TriggerKind = "on_day_start"
	TriggerWeekStart           TriggerKind = "on_week_start"
	TriggerPublish             TriggerKind = "on_publish"
	TriggerEditorialSubmitted  TriggerKind = "on_editorial_submitted"
	TriggerLeadInvestigated    TriggerKind = "on_lead_investigated"
	TriggerEvidenceAdded       TriggerKind = "on_evidence_added"
	TriggerMeetingAttended     TriggerKind = "on_meeting_attended"
	TriggerMeetingMissed       TriggerKind = "on_meeting_missed"
	TriggerManifestDistributed TriggerKind = "on_manifest_distributed"
	TriggerTrialVerdict        TriggerKind = "on_trial_verdict"
)

// TriggerKinds lists every kind the engine dispatches, in declaration
// order. The evaluator index is built over this list.
var TriggerKinds = []TriggerKind{
	TriggerSegmentStart,
	TriggerDayStart,
	TriggerWeekStart,
	TriggerPublish,
	TriggerEditorialSubmitted,
	TriggerLeadInvestigated,
	TriggerEvidenceAdded,
	TriggerMeetingAttended,
	TriggerMeetingMissed,
	TriggerManifestDistributed,
	TriggerTrialVerdict,
}

// TriggerContext is the immutable input for one evaluation pass.
//
// InstanceID must be unique per logical occurrence (a specific segment
// tick, a specific player action). It is the idempotency scope: the same
// rule never produces effects twice for the same InstanceID.
type TriggerContext struct {
	Kind       TriggerKind
	Date       calendar.Date
	Context    map[string]string // keyed ids from the producer (lead_id, tone, ...)
	InstanceID string
}

// ContextValue looks up a producer-supplied key; ok is false when absent
// or when no context map was attached.
func (t TriggerContext) ContextValue(key string) (string, bool) {
	if t.Context == nil {
		return "", false
	}
	v, ok := t.Context[key]
	return v, ok
}

// Snapshot is the read-only world view conditions evaluate against.
// It is produced by copying, never aliases live state, and is safe to
// retain for the duration of one evaluation.
type Snapshot struct {
	Date              calendar.Date
	Flags             map[string]int
	UnlockedSources   map[string]struct{}
	AgencyCredibility int
	RegimePressure    int
	PersonaSuspicion  map[string]int
	FactionMood       map[string]int
}

// Ledger answers whether a (rule, trigger occurrence) pair already fired.
// Implemented by the engine's fired ledger; the evaluator only reads.
type Ledger interface {
	HasFired(eventID string, ruleIndex int, triggerInstanceID string) bool
}
