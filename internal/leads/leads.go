// Package leads tracks investigation progress. Each lead moves through a
// one-way ladder: Hidden, Active, ReadyToExpose, Completed. The stage is
// recomputed from collected evidence and only ever moves forward;
// Completed is terminal.
package leads

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Sentinel errors. Callers match with errors.Is.
var (
	ErrNotFound     = errors.New("lead not found")
	ErrInvalidState = errors.New("invalid lead state")
)

// Stage is a lead's position on the progress ladder.
type Stage int

const (
	Hidden Stage = iota
	Active
	ReadyToExpose
	Completed
)

var stageNames = [...]string{"Hidden", "Active", "ReadyToExpose", "Completed"}

func (s Stage) String() string {
	if s < Hidden || s > Completed {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Definition is the authored shape of a lead: which evidence types count
// toward it and how many distinct pieces complete the case.
type Definition struct {
	ID           string
	Title        string
	ExposeText   string
	AllowedTypes []string
	MinEvidence  int
	ExposeNewsID string // news unlocked when the lead is exposed; optional
}

// AllowsType reports whether the definition accepts the evidence type,
// case-insensitively.
func (d Definition) AllowsType(evidenceType string) bool {
	for _, typ := range d.AllowedTypes {
		if strings.EqualFold(typ, evidenceType) {
			return true
		}
	}
	return false
}

// DefinitionSource resolves lead definitions. Satisfied by the content
// repository.
type DefinitionSource interface {
	Lead(id string) (Definition, bool)
}

// Evidence is one collected piece, as recorded (original casing).
type Evidence struct {
	Type string
	ID   string
}

type progress struct {
	completed bool
	evidence  []Evidence
	seen      map[string]struct{} // lowercased "type\x00id"
}

func (p *progress) stage(def Definition) Stage {
	switch {
	case p.completed:
		return Completed
	case len(p.evidence) >= def.MinEvidence && def.MinEvidence > 0:
		return ReadyToExpose
	case len(p.evidence) > 0:
		return Active
	}
	return Hidden
}

// Tracker holds per-lead progress for one simulation. Not safe for
// concurrent use.
type Tracker struct {
	defs  DefinitionSource
	leads map[string]*progress
	log   *slog.Logger
}

// NewTracker creates a tracker over the given definitions.
func NewTracker(defs DefinitionSource, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{defs: defs, leads: make(map[string]*progress, 8), log: log}
}

// Stage returns the lead's current stage. Leads never touched are Hidden.
func (t *Tracker) Stage(leadID string) Stage {
	def, ok := t.defs.Lead(leadID)
	if !ok {
		return Hidden
	}
	p, ok := t.leads[leadID]
	if !ok {
		return Hidden
	}
	return p.stage(def)
}

// Collect records one collected piece toward a lead and recomputes its
// stage. Three rejections return added=false without error, as normal
// outcomes: the lead is already Completed, the evidence type is not in
// the lead's allow-list, or the (type, id) pair was already collected.
// The pair comparison is case-insensitive. An unknown lead id is a
// NotFound error.
func (t *Tracker) Collect(leadID, evidenceType, evidenceID string) (added bool, stage Stage, err error) {
	def, ok := t.defs.Lead(leadID)
	if !ok {
		return false, Hidden, fmt.Errorf("collect evidence for %s: %w", leadID, ErrNotFound)
	}
	p := t.leads[leadID]
	if p == nil {
		p = &progress{seen: make(map[string]struct{}, 4)}
		t.leads[leadID] = p
	}
	if p.completed {
		return false, Completed, nil
	}
	if !def.AllowsType(evidenceType) {
		return false, p.stage(def), nil
	}

	key := strings.ToLower(evidenceType) + "\x00" + strings.ToLower(evidenceID)
	if _, dup := p.seen[key]; dup {
		return false, p.stage(def), nil
	}
	p.seen[key] = struct{}{}
	p.evidence = append(p.evidence, Evidence{Type: evidenceType, ID: evidenceID})

	stage = p.stage(def)
	t.log.Debug("evidence collected", "lead", leadID, "type", evidenceType, "id", evidenceID, "stage", stage.String())
	return true, stage, nil
}

// AddEvidence is the effect-pipeline entry point: a rejected collection
// is not an error there either, so only NotFound propagates.
func (t *Tracker) AddEvidence(leadID, evidenceType, evidenceID string) error {
	_, _, err := t.Collect(leadID, evidenceType, evidenceID)
	return err
}

// MarkCompleted forces the lead into its terminal stage, regardless of
// collected evidence.
func (t *Tracker) MarkCompleted(leadID string) error {
	if _, ok := t.defs.Lead(leadID); !ok {
		return fmt.Errorf("complete %s: %w", leadID, ErrNotFound)
	}
	p := t.leads[leadID]
	if p == nil {
		p = &progress{seen: make(map[string]struct{})}
		t.leads[leadID] = p
	}
	p.completed = true
	return nil
}

// Expose completes a lead that is ReadyToExpose and returns its
// definition so the caller can unlock the expose news and score the
// story. Any other stage is an InvalidState error.
func (t *Tracker) Expose(leadID string) (Definition, error) {
	def, ok := t.defs.Lead(leadID)
	if !ok {
		return Definition{}, fmt.Errorf("expose %s: %w", leadID, ErrNotFound)
	}
	p, ok := t.leads[leadID]
	if !ok || p.stage(def) != ReadyToExpose {
		stage := Hidden
		if ok {
			stage = p.stage(def)
		}
		return Definition{}, fmt.Errorf("expose %s from %s: %w", leadID, stage, ErrInvalidState)
	}
	p.completed = true
	t.log.Debug("lead exposed", "lead", leadID)
	return def, nil
}

// EvidenceFor returns the recorded pieces for a lead in collection order.
func (t *Tracker) EvidenceFor(leadID string) []Evidence {
	p, ok := t.leads[leadID]
	if !ok {
		return nil
	}
	out := make([]Evidence, len(p.evidence))
	copy(out, p.evidence)
	return out
}

// Snapshot returns every touched lead's record, sorted by lead id, for
// persistence.
func (t *Tracker) Snapshot() []LeadRecord {
	ids := make([]string, 0, len(t.leads))
	for id := range t.leads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]LeadRecord, 0, len(ids))
	for _, id := range ids {
		p := t.leads[id]
		evidence := make([]Evidence, len(p.evidence))
		copy(evidence, p.evidence)
		out = append(out, LeadRecord{LeadID: id, Completed: p.completed, Evidence: evidence})
	}
	return out
}

// Restore overwrites progress from persisted records.
func (t *Tracker) Restore(records []LeadRecord) {
	t.leads = make(map[string]*progress, len(records))
	for _, rec := range records {
		p := &progress{completed: rec.Completed, seen: make(map[string]struct{}, len(rec.Evidence))}
		for _, ev := range rec.Evidence {
			key := strings.ToLower(ev.Type) + "\x00" + strings.ToLower(ev.ID)
			if _, dup := p.seen[key]; dup {
				continue
			}
			p.seen[key] = struct{}{}
			p.evidence = append(p.evidence, ev)
		}
		t.leads[rec.LeadID] = p
	}
}

// LeadRecord is the persisted form of one lead's progress. The stage is
// not stored; it is recomputed from evidence and the completed bit.
type LeadRecord struct {
	LeadID    string
	Completed bool
	Evidence  []Evidence
}
