package news

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
	"github.com/the4estate/t4e/internal/world"
)

// Sentinel errors. Callers match with errors.Is.
var (
	ErrNotFound     = errors.New("news not found")
	ErrInvalidState = errors.New("invalid publish state")
)

// Variant is one tone's rendering of a news item, with the effects that
// publishing under that tone applies.
type Variant struct {
	Headline string
	Short    string
	Body     string
	Effects  []cet.Effect
}

// Item is an authored news item: the tones it may be published under and
// the sources its claims rest on.
type Item struct {
	ID           string
	AllowedTones []string
	Variants     map[string]Variant
	Supporting   []WeightedSource
	Conflicting  []WeightedSource
}

// ItemSource resolves news items. Satisfied by the content repository.
type ItemSource interface {
	News(id string) (Item, bool)
}

// WorldView is the world surface publishing needs. Satisfied by
// world.State.
type WorldView interface {
	Snapshot(date calendar.Date) cet.Snapshot
	AdjustAgencyCredibility(delta int)
}

// EffectPort applies a tone's effects. Satisfied by world.EffectApplier.
type EffectPort interface {
	Apply(now calendar.Date, staged []cet.EffectInvocation) (applied int, failures []world.ApplyFailure)
}

// MemoryWriter records the publication in the memory log.
type MemoryWriter interface {
	Append(now calendar.Date, entry string)
}

// Publication is the outcome of a successful publish.
type Publication struct {
	NewsID   string
	Tone     string
	Headline string
	Short    string
	Body     string
	Tier     Tier
	Net      int
	Delta    int // agency credibility shift applied
}

// Contested reports whether the story published under dispute.
func (p Publication) Contested() bool { return p.Tier == Contested }

// Publisher runs the publish use case.
type Publisher struct {
	items   ItemSource
	view    WorldView
	effects EffectPort
	memory  MemoryWriter
	log     *slog.Logger
}

// NewPublisher wires the use case to its ports.
func NewPublisher(items ItemSource, view WorldView, effects EffectPort, memory MemoryWriter, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{items: items, view: view, effects: effects, memory: memory, log: log}
}

// credibilityDelta maps the story's tier to the agency credibility shift
// publishing it causes. A contested story moves nothing.
func credibilityDelta(tier Tier) int {
	switch tier {
	case Weak:
		return -1
	case Solid:
		return 1
	case Corroborated:
		return 2
	}
	return 0
}

// Publish releases a news item under the given tone.
//
// Fails NotFound for an unknown news id, InvalidState when the tone is
// not in the item's allow-list or the tone has no authored variant.
// On success: the story is scored against currently unlocked sources,
// agency credibility shifts by the tier's delta, the variant's effects
// apply with partial-failure semantics, and one memory entry is
// recorded.
func (p *Publisher) Publish(now calendar.Date, newsID, tone string) (Publication, error) {
	item, ok := p.items.News(newsID)
	if !ok {
		return Publication{}, fmt.Errorf("publish %s: %w", newsID, ErrNotFound)
	}
	tone, ok = canonicalTone(item.AllowedTones, tone)
	if !ok {
		return Publication{}, fmt.Errorf("publish %s: tone %q not allowed: %w", newsID, tone, ErrInvalidState)
	}
	variant, ok := item.Variants[tone]
	if !ok {
		return Publication{}, fmt.Errorf("publish %s: no variant for tone %q: %w", newsID, tone, ErrInvalidState)
	}

	snap := p.view.Snapshot(now)
	tier, net := EvaluateCredibility(item.Supporting, item.Conflicting, snap.UnlockedSources)
	delta := credibilityDelta(tier)
	p.view.AdjustAgencyCredibility(delta)

	if len(variant.Effects) > 0 {
		source := &cet.Rule{EventID: "publish:" + newsID + ":" + tone}
		staged := make([]cet.EffectInvocation, len(variant.Effects))
		for i, e := range variant.Effects {
			staged[i] = cet.EffectInvocation{Source: source, Effect: e}
		}
		applied, failures := p.effects.Apply(now, staged)
		p.log.Debug("publish effects applied", "news", newsID, "tone", tone, "applied", applied, "failed", len(failures))
	}

	p.memory.Append(now, fmt.Sprintf("Published %q under a %s tone (%s).", variant.Headline, tone, tier))
	p.log.Info("story published", "news", newsID, "tone", tone, "tier", tier.String(), "net", net, "delta", delta)

	return Publication{
		NewsID:   newsID,
		Tone:     tone,
		Headline: variant.Headline,
		Short:    variant.Short,
		Body:     variant.Body,
		Tier:     tier,
		Net:      net,
		Delta:    delta,
	}, nil
}

// canonicalTone matches tone against the allow-list case-insensitively
// and returns the authored spelling, which is also the variant map key.
func canonicalTone(allowed []string, tone string) (string, bool) {
	for _, t := range allowed {
		if strings.EqualFold(t, tone) {
			return t, true
		}
	}
	return tone, false
}
