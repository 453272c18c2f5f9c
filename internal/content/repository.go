// Package content compiles authored CUE packs into the engine's
// immutable content model and serves them through a repository.
package content

import (
	"github.com/the4estate/t4e/internal/cet"
	"github.com/the4estate/t4e/internal/leads"
	"github.com/the4estate/t4e/internal/news"
)

// Source is an authored informant or record the player can unlock.
// Weight is the evidentiary value the source contributes to a story.
type Source struct {
	ID     string
	Name   string
	Weight int
}

// Pack is one compiled content pack. All fields are immutable after
// compilation.
type Pack struct {
	Rules    []cet.Rule
	News     []news.Item
	Leads    []leads.Definition
	Sources  []Source
	Timeline []cet.TimelineItem
}

// Repository serves a compiled pack to the engine: rules by trigger
// kind, lead definitions, news items and the authored timeline.
type Repository struct {
	byTrigger map[cet.TriggerKind][]*cet.Rule
	newsByID  map[string]news.Item
	leadsByID map[string]leads.Definition
	sources   map[string]Source
	timeline  []cet.TimelineItem
}

// NewRepository indexes a pack. Rules keep declaration order within
// each trigger kind.
func NewRepository(pack Pack) *Repository {
	r := &Repository{
		byTrigger: make(map[cet.TriggerKind][]*cet.Rule, 8),
		newsByID:  make(map[string]news.Item, len(pack.News)),
		leadsByID: make(map[string]leads.Definition, len(pack.Leads)),
		sources:   make(map[string]Source, len(pack.Sources)),
		timeline:  pack.Timeline,
	}
	for i := range pack.Rules {
		rule := &pack.Rules[i]
		r.byTrigger[rule.Trigger] = append(r.byTrigger[rule.Trigger], rule)
	}
	for _, item := range pack.News {
		r.newsByID[item.ID] = item
	}
	for _, def := range pack.Leads {
		r.leadsByID[def.ID] = def
	}
	for _, src := range pack.Sources {
		r.sources[src.ID] = src
	}
	return r
}

// RulesByTrigger returns the rules listening on kind, in declaration
// order.
func (r *Repository) RulesByTrigger(kind cet.TriggerKind) []*cet.Rule {
	return r.byTrigger[kind]
}

// News resolves a news item by id.
func (r *Repository) News(id string) (news.Item, bool) {
	item, ok := r.newsByID[id]
	return item, ok
}

// Lead resolves a lead definition by id.
func (r *Repository) Lead(id string) (leads.Definition, bool) {
	def, ok := r.leadsByID[id]
	return def, ok
}

// Source resolves a source definition by id.
func (r *Repository) Source(id string) (Source, bool) {
	src, ok := r.sources[id]
	return src, ok
}

// Timeline returns the authored schedule, in declaration order. The
// composition root enqueues these at simulation start.
func (r *Repository) Timeline() []cet.TimelineItem {
	out := make([]cet.TimelineItem, len(r.timeline))
	copy(out, r.timeline)
	return out
}

// Counts reports pack sizes, for logging and the validate command.
func (r *Repository) Counts() (rules, newsItems, leadDefs, sources, timeline int) {
	for _, list := range r.byTrigger {
		rules += len(list)
	}
	return rules, len(r.newsByID), len(r.leadsByID), len(r.sources), len(r.timeline)
}
