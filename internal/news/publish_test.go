package news

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
	"github.com/the4estate/t4e/internal/world"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func monday() calendar.Date {
	return calendar.Date{Year: 1, Week: 1, Day: calendar.Monday, Segment: calendar.Morning}
}

type itemMap map[string]Item

func (m itemMap) News(id string) (Item, bool) {
	item, ok := m[id]
	return item, ok
}

func strikeItem() Item {
	return Item{
		ID:           "news_strike",
		AllowedTones: []string{"Neutral", "Incendiary"},
		Variants: map[string]Variant{
			"Neutral": {
				Headline: "Dockworkers Down Tools",
				Short:    "Strike at the harbor.",
				Body:     "The harbor fell silent this morning.",
				Effects:  []cet.Effect{cet.SetFlag{Key: "strike_reported", Value: 1}},
			},
			"Incendiary": {
				Headline: "Regime Starves the Docks",
			},
		},
		Supporting:  []WeightedSource{{"src_clerk", 5}, {"src_union", 3}},
		Conflicting: []WeightedSource{{"src_ministry", 4}},
	}
}

func newPublisher(t *testing.T, items itemMap) (*Publisher, *world.State, *world.MemoryLog) {
	t.Helper()
	state := world.NewState(discardLogger())
	memory := world.NewMemoryLog()
	applier := world.NewEffectApplier(state, nopEnqueuer{}, nil, memory, discardLogger())
	return NewPublisher(items, state, applier, memory, discardLogger()), state, memory
}

type nopEnqueuer struct{}

func (nopEnqueuer) Enqueue(cet.TimelineItem) {}

func TestPublishHappyPath(t *testing.T) {
	pub, state, memory := newPublisher(t, itemMap{"news_strike": strikeItem()})
	state.UnlockSource("src_clerk")
	state.UnlockSource("src_union")

	result, err := pub.Publish(monday(), "news_strike", "Neutral")
	require.NoError(t, err)

	assert.Equal(t, "Dockworkers Down Tools", result.Headline)
	assert.Equal(t, Corroborated, result.Tier)
	assert.Equal(t, 8, result.Net)
	assert.Equal(t, 2, result.Delta)
	assert.False(t, result.Contested())

	assert.Equal(t, 2, state.AgencyCredibility())
	flag, ok := state.Flag("strike_reported")
	assert.True(t, ok, "tone effects applied")
	assert.Equal(t, 1, flag)
	require.Equal(t, 1, memory.Len(), "exactly one memory entry")
	assert.Contains(t, memory.Entries()[0].Entry, "Dockworkers Down Tools")
}

func TestPublishUnknownNews(t *testing.T) {
	pub, _, _ := newPublisher(t, itemMap{})
	_, err := pub.Publish(monday(), "news_ghost", "Neutral")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublishDisallowedTone(t *testing.T) {
	pub, state, memory := newPublisher(t, itemMap{"news_strike": strikeItem()})

	_, err := pub.Publish(monday(), "news_strike", "Satirical")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Zero(t, state.AgencyCredibility(), "a failed publish changes nothing")
	assert.Zero(t, memory.Len())
}

func TestPublishToneIsCaseInsensitive(t *testing.T) {
	pub, _, _ := newPublisher(t, itemMap{"news_strike": strikeItem()})

	result, err := pub.Publish(monday(), "news_strike", "neutral")
	require.NoError(t, err)
	assert.Equal(t, "Neutral", result.Tone, "canonical authored spelling")
	assert.Equal(t, "Dockworkers Down Tools", result.Headline)
}

func TestPublishMissingVariant(t *testing.T) {
	item := strikeItem()
	item.AllowedTones = append(item.AllowedTones, "Mournful")
	pub, _, _ := newPublisher(t, itemMap{"news_strike": item})

	_, err := pub.Publish(monday(), "news_strike", "Mournful")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestPublishContestedStoryMovesNothing(t *testing.T) {
	pub, state, _ := newPublisher(t, itemMap{"news_strike": strikeItem()})
	state.UnlockSource("src_clerk")
	state.UnlockSource("src_ministry")

	// S=5, C=4: contested, delta 0
	result, err := pub.Publish(monday(), "news_strike", "Neutral")
	require.NoError(t, err)
	assert.Equal(t, Contested, result.Tier)
	assert.True(t, result.Contested())
	assert.Equal(t, 0, result.Delta)
	assert.Equal(t, 0, state.AgencyCredibility())
}

func TestPublishWeakStoryCostsCredibility(t *testing.T) {
	pub, state, _ := newPublisher(t, itemMap{"news_strike": strikeItem()})
	// nothing unlocked: S=0, net=0, Weak

	result, err := pub.Publish(monday(), "news_strike", "Incendiary")
	require.NoError(t, err)
	assert.Equal(t, Weak, result.Tier)
	assert.Equal(t, -1, result.Delta)
	assert.Equal(t, -1, state.AgencyCredibility())
}
