// Package sim is the composition root: it wires the calendar, hub,
// scheduler, trigger pipeline, world, leads and publish use cases into
// one simulation instance and exposes the host-facing operations.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
	"github.com/the4estate/t4e/internal/content"
	"github.com/the4estate/t4e/internal/engine"
	"github.com/the4estate/t4e/internal/leads"
	"github.com/the4estate/t4e/internal/news"
	"github.com/the4estate/t4e/internal/rng"
	"github.com/the4estate/t4e/internal/store"
	"github.com/the4estate/t4e/internal/world"
)

// ErrNotFound wraps the use-case lookups that fail on unknown ids.
var ErrNotFound = errors.New("not found")

// Options configure a new simulation.
type Options struct {
	Start  calendar.Date
	Seed   uint32
	Tokens engine.TokenSource // nil means random UUIDs
	Logger *slog.Logger
}

// Simulation is one fully wired instance. Multiple instances coexist in
// a process; nothing here is global. Not safe for concurrent use.
type Simulation struct {
	repo      *content.Repository
	hub       *engine.Hub
	bus       *engine.TriggerBus
	clock     *engine.TimeService
	scheduler *engine.TimelineScheduler
	ledger    *engine.FiredLedger
	state     *world.State
	memory    *world.MemoryLog
	tracker   *leads.Tracker
	applier   *world.EffectApplier
	publisher *news.Publisher
	random    *rng.Generator
	tokens    engine.TokenSource
	log       *slog.Logger
}

// New wires a simulation over a compiled content repository.
//
// Subscription order on the hub is the determinism contract: the
// scheduler first, so a slot's due items are spawned into the world;
// then cadence flags; then the clock-trigger bridge, so rule evaluation
// observes this tick's spawns and flags. The authored timeline is
// enqueued before the first tick.
func New(repo *content.Repository, opts Options) *Simulation {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = engine.UUIDTokenSource{}
	}

	hub := engine.NewHub()
	bus := engine.NewTriggerBus()
	state := world.NewState(log)
	memory := world.NewMemoryLog()
	tracker := leads.NewTracker(repo, log)
	ledger := engine.NewFiredLedger()

	scheduler := engine.NewTimelineScheduler(hub, log)
	engine.NewTimelineDispatcher(hub, state, log)
	engine.NewCadenceRules(hub, state, log)
	engine.NewClockTriggers(hub, bus)

	applier := world.NewEffectApplier(state, scheduler, tracker, memory, log)
	evaluator := cet.NewEvaluator(repo, ledger, log)
	engine.NewTriggerDispatcher(bus, evaluator, applier, state, ledger, log)

	s := &Simulation{
		repo:      repo,
		hub:       hub,
		bus:       bus,
		clock:     engine.NewTimeService(hub, opts.Start, log),
		scheduler: scheduler,
		ledger:    ledger,
		state:     state,
		memory:    memory,
		tracker:   tracker,
		applier:   applier,
		publisher: news.NewPublisher(repo, state, applier, memory, log),
		random:    rng.New(opts.Seed),
		tokens:    tokens,
		log:       log,
	}

	for _, item := range repo.Timeline() {
		scheduler.Enqueue(item)
	}
	return s
}

// Now returns the current calendar point.
func (s *Simulation) Now() calendar.Date { return s.clock.Current() }

// AdvanceSegment advances one slot, running all scheduling, cadence and
// rule evaluation for it before returning.
func (s *Simulation) AdvanceSegment() { s.clock.AdvanceSegment() }

// AdvanceDay advances four slots.
func (s *Simulation) AdvanceDay() { s.clock.AdvanceDay() }

// AdvanceWeek advances twenty-eight slots.
func (s *Simulation) AdvanceWeek() { s.clock.AdvanceWeek() }

// Enqueue schedules a timeline item.
func (s *Simulation) Enqueue(item cet.TimelineItem) { s.scheduler.Enqueue(item) }

// PublishTrigger injects a host-driven trigger occurrence. The host owns
// the instance id; reusing one replays against the fired ledger.
func (s *Simulation) PublishTrigger(tc cet.TriggerContext) { s.bus.Publish(tc) }

// World exposes the live world store, read-only by convention.
func (s *Simulation) World() *world.State { return s.state }

// Memory exposes the memory log.
func (s *Simulation) Memory() *world.MemoryLog { return s.memory }

// Leads exposes the progress tracker.
func (s *Simulation) Leads() *leads.Tracker { return s.tracker }

// RNG exposes the deterministic generator for host-side rolls.
func (s *Simulation) RNG() *rng.Generator { return s.random }

// CollectEvidence records one piece of evidence toward a lead. On an
// accepted piece an evidence trigger fires so content can react.
func (s *Simulation) CollectEvidence(leadID, evidenceType, evidenceID string) (bool, leads.Stage, error) {
	added, stage, err := s.tracker.Collect(leadID, evidenceType, evidenceID)
	if err != nil {
		return false, stage, err
	}
	if added {
		s.bus.Publish(cet.TriggerContext{
			Kind: cet.TriggerEvidenceAdded,
			Date: s.clock.Current(),
			Context: map[string]string{
				"lead_id":       leadID,
				"evidence_type": evidenceType,
				"evidence_id":   evidenceID,
			},
			InstanceID: s.tokens.Next("evidence"),
		})
	}
	return added, stage, nil
}

// InvestigateLead runs an investigation beat on a visible lead: content
// rules listening on the investigation trigger decide what the player
// finds. Fails NotFound when the lead is not in the world.
func (s *Simulation) InvestigateLead(leadID string) error {
	if _, ok := s.repo.Lead(leadID); !ok {
		return fmt.Errorf("investigate %s: %w", leadID, ErrNotFound)
	}
	if !s.state.HasLead(leadID) {
		return fmt.Errorf("investigate %s: lead not discovered: %w", leadID, ErrNotFound)
	}
	s.bus.Publish(cet.TriggerContext{
		Kind:       cet.TriggerLeadInvestigated,
		Date:       s.clock.Current(),
		Context:    map[string]string{"lead_id": leadID},
		InstanceID: s.tokens.Next("investigate"),
	})
	return nil
}

// ExposeLead completes a ready lead: the lead leaves the active set,
// its expose news becomes available, and a memory entry is recorded.
// Returns the lead's title and expose text.
func (s *Simulation) ExposeLead(leadID string) (title, exposeText string, err error) {
	def, err := s.tracker.Expose(leadID)
	if err != nil {
		return "", "", err
	}

	now := s.clock.Current()
	if err := s.state.Apply(cet.RemoveLead{LeadID: leadID}); err != nil {
		s.log.Warn("expose cleanup failed", "lead", leadID, "err", err)
	}
	if def.ExposeNewsID != "" {
		if err := s.state.Apply(cet.AddNews{NewsID: def.ExposeNewsID}); err != nil {
			s.log.Warn("expose news failed", "lead", leadID, "news", def.ExposeNewsID, "err", err)
		}
	}
	s.memory.Append(now, fmt.Sprintf("Exposed %q.", def.Title))
	return def.Title, def.ExposeText, nil
}

// PublishStory publishes a news item under a tone and fires the publish
// trigger with the outcome in its context.
func (s *Simulation) PublishStory(newsID, tone string) (news.Publication, error) {
	now := s.clock.Current()
	pub, err := s.publisher.Publish(now, newsID, tone)
	if err != nil {
		return news.Publication{}, err
	}
	if err := s.state.Apply(cet.AddNews{NewsID: newsID}); err != nil {
		s.log.Warn("publish record failed", "news", newsID, "err", err)
	}
	s.bus.Publish(cet.TriggerContext{
		Kind: cet.TriggerPublish,
		Date: now,
		Context: map[string]string{
			"news_id": newsID,
			"tone":    pub.Tone,
			"tier":    pub.Tier.String(),
		},
		InstanceID: s.tokens.Next("publish"),
	})
	return pub, nil
}

// Save writes the simulation into a store slot.
func (s *Simulation) Save(ctx context.Context, st *store.Store, slot string) error {
	return st.Save(ctx, slot, store.SaveState{
		Date:              s.clock.Current(),
		RNGState:          s.random.State(),
		AgencyCredibility: s.state.AgencyCredibility(),
		News:              s.state.NewsIDs(),
		Leads:             s.state.LeadIDs(),
		Sources:           s.state.UnlockedSources(),
		Flags:             s.state.Flags(),
		FiredKeys:         s.ledger.Keys(),
		Queue:             s.scheduler.Pending(),
		Progress:          s.tracker.Snapshot(),
	})
}

// Load overwrites the simulation from a store slot. The authored
// timeline enqueued at construction is replaced by the saved queue.
func (s *Simulation) Load(ctx context.Context, st *store.Store, slot string) error {
	saved, err := st.Load(ctx, slot)
	if err != nil {
		return err
	}
	s.clock.Restore(saved.Date)
	s.random.Restore(saved.RNGState)
	s.state.Restore(saved.News, saved.Leads, saved.Sources, saved.Flags, saved.AgencyCredibility)
	s.ledger.Restore(saved.FiredKeys)
	s.scheduler.Restore(saved.Queue)
	s.tracker.Restore(saved.Progress)
	s.log.Info("save loaded", "slot", slot, "at", saved.Date.String())
	return nil
}
