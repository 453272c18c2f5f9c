package content

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
)

const samplePack = `
source: {
	src_clerk: {name: "Ministry clerk", weight: 5}
	src_union: {weight: 3}
}

lead: lead_ledger: {
	title:         "The Doctored Ledger"
	expose_text:   "The numbers never added up."
	allowed_types: ["Document", "Witness"]
	min_evidence:  2
	expose_news:   "news_ledger"
}

news: news_ledger: {
	tones: ["Neutral"]
	variants: Neutral: {
		headline: "Ledger Fraud Uncovered"
		short:    "Years of doctored accounts."
		body:     "Documents show systematic falsification."
		effects: [
			{kind: "set_flag", key: "ledger_exposed"},
		]
	}
	supports: ["src_clerk", {source: "src_union", weight: 4}]
	conflicts: [{source: "src_ministry", weight: 2}]
}

event: ev_crackdown: {
	rules: [
		{
			trigger:  "on_week_start"
			priority: 5
			conditions: [
				{kind: "week_at_least", week: 3},
				{kind: "flag_equals", key: "ledger_exposed", value: 1},
			]
			effects: [
				{kind: "regime_pressure_delta", delta: 2},
				{kind: "arrest", persona: "clerk", days: 3},
				{kind: "schedule_item", item: "tl_trial", week_relative: 1, day_of_week: "Friday", segment: "Morning", spawn_news: ["news_ledger"]},
			]
		},
		{
			trigger: "on_publish"
			conditions: [
				{kind: "context_in", key: "tone", values: ["Neutral", "Incendiary"]},
			]
			effects: [
				{kind: "unlock_source", source: "src_union"},
			]
		},
	]
}

timeline: [
	{id: "tl_opening", week: 1, day: "Wednesday", segment: "Afternoon", payload: "arc", spawn_news: ["news_ledger"], spawn_lead: ["lead_ledger"]},
]
`

func compileSample(t *testing.T, src string) Pack {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	pack, err := CompilePack(v)
	require.NoError(t, err)
	return pack
}

func TestCompilePack(t *testing.T) {
	pack := compileSample(t, samplePack)

	require.Len(t, pack.Rules, 2)
	first := pack.Rules[0]
	assert.Equal(t, "ev_crackdown", first.EventID)
	assert.Equal(t, 0, first.RuleIndex)
	assert.Equal(t, cet.TriggerWeekStart, first.Trigger)
	assert.Equal(t, 5, first.Priority)
	require.Len(t, first.Conditions, 2)
	assert.Equal(t, cet.WeekAtLeast{Week: 3}, first.Conditions[0])
	assert.Equal(t, cet.FlagEquals{Key: "ledger_exposed", Value: 1}, first.Conditions[1])
	require.Len(t, first.Effects, 3)
	assert.Equal(t, cet.RegimePressureDelta{Delta: 2}, first.Effects[0])
	assert.Equal(t, cet.Arrest{Persona: "clerk", DurationDays: 3}, first.Effects[1])
	sched, ok := first.Effects[2].(cet.ScheduleItem)
	require.True(t, ok)
	assert.Equal(t, "tl_trial", sched.ItemID)
	assert.Equal(t, 1, sched.Spec.WeekRelative)
	assert.Equal(t, "Friday", sched.Spec.DayOfWeek)
	assert.Equal(t, []string{"news_ledger"}, sched.SpawnNewsIDs)

	second := pack.Rules[1]
	assert.Equal(t, 1, second.RuleIndex)
	assert.Equal(t, cet.TriggerPublish, second.Trigger)
	assert.Equal(t, cet.ContextIn{Key: "tone", Values: []string{"Neutral", "Incendiary"}}, second.Conditions[0])

	require.Len(t, pack.Sources, 2)
	require.Len(t, pack.Leads, 1)
	lead := pack.Leads[0]
	assert.Equal(t, "lead_ledger", lead.ID)
	assert.Equal(t, []string{"Document", "Witness"}, lead.AllowedTypes)
	assert.Equal(t, 2, lead.MinEvidence)
	assert.Equal(t, "news_ledger", lead.ExposeNewsID)

	require.Len(t, pack.News, 1)
	item := pack.News[0]
	assert.Equal(t, []string{"Neutral"}, item.AllowedTones)
	variant := item.Variants["Neutral"]
	assert.Equal(t, "Ledger Fraud Uncovered", variant.Headline)
	require.Len(t, variant.Effects, 1)
	assert.Equal(t, cet.SetFlag{Key: "ledger_exposed", Value: 1}, variant.Effects[0],
		"set_flag value defaults to 1")

	// citation weights: table weight, inline override, inline-only
	require.Len(t, item.Supporting, 2)
	assert.Equal(t, 5, item.Supporting[0].Weight)
	assert.Equal(t, 4, item.Supporting[1].Weight)
	require.Len(t, item.Conflicting, 1)
	assert.Equal(t, 2, item.Conflicting[0].Weight)

	require.Len(t, pack.Timeline, 1)
	tl := pack.Timeline[0]
	assert.Equal(t, "tl_opening", tl.ID)
	assert.Equal(t, calendar.Date{Year: 1, Week: 1, Day: calendar.Wednesday, Segment: calendar.Afternoon}, tl.When,
		"year defaults to 1")
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown trigger",
			src:  `event: e: rules: [{trigger: "on_eclipse", effects: [{kind: "set_flag", key: "k"}]}]`,
			want: "unknown trigger kind",
		},
		{
			name: "missing effects",
			src:  `event: e: rules: [{trigger: "on_day_start"}]`,
			want: "effects list is required",
		},
		{
			name: "empty effects",
			src:  `event: e: rules: [{trigger: "on_day_start", effects: []}]`,
			want: "at least one effect is required",
		},
		{
			name: "unknown condition kind",
			src:  `event: e: rules: [{trigger: "on_day_start", conditions: [{kind: "moon_phase"}], effects: [{kind: "mood_delta", delta: 1}]}]`,
			want: "unknown condition kind",
		},
		{
			name: "unknown effect kind",
			src:  `event: e: rules: [{trigger: "on_day_start", effects: [{kind: "summon"}]}]`,
			want: "unknown effect kind",
		},
		{
			name: "unknown cited source",
			src:  `news: n: {tones: ["Neutral"], supports: ["src_ghost"]}`,
			want: "unknown source",
		},
		{
			name: "lead without min_evidence",
			src:  `lead: l: {title: "T", allowed_types: ["Document"]}`,
			want: "min_evidence is required",
		},
		{
			name: "lead min_evidence below one",
			src:  `lead: l: {title: "T", allowed_types: ["Document"], min_evidence: 0}`,
			want: "must be at least 1",
		},
		{
			name: "timeline week out of range",
			src:  `timeline: [{id: "tl", week: 53, day: "Monday", segment: "Morning"}]`,
			want: "out of range",
		},
		{
			name: "timeline bad weekday",
			src:  `timeline: [{id: "tl", week: 1, day: "Blursday", segment: "Morning"}]`,
			want: "unknown weekday",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := cuecontext.New().CompileString(tc.src)
			require.NoError(t, v.Err())
			_, err := CompilePack(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCompileNormalizesToNFC(t *testing.T) {
	// headline authored in NFD: "cafe" plus a combining acute accent
	src := "news: n: {tones: [\"Neutral\"], variants: Neutral: {headline: \"cafe\u0301 raid\"}}"
	pack := compileSample(t, src)
	require.Len(t, pack.News, 1)
	assert.Equal(t, "caf\u00e9 raid", pack.News[0].Variants["Neutral"].Headline)
}

func TestRepositoryIndexing(t *testing.T) {
	pack := compileSample(t, samplePack)
	repo := NewRepository(pack)

	weekRules := repo.RulesByTrigger(cet.TriggerWeekStart)
	require.Len(t, weekRules, 1)
	assert.Equal(t, "ev_crackdown", weekRules[0].EventID)
	assert.Len(t, repo.RulesByTrigger(cet.TriggerPublish), 1)
	assert.Empty(t, repo.RulesByTrigger(cet.TriggerDayStart))

	item, ok := repo.News("news_ledger")
	require.True(t, ok)
	assert.Equal(t, "news_ledger", item.ID)
	_, ok = repo.News("news_ghost")
	assert.False(t, ok)

	def, ok := repo.Lead("lead_ledger")
	require.True(t, ok)
	assert.Equal(t, 2, def.MinEvidence)

	src, ok := repo.Source("src_clerk")
	require.True(t, ok)
	assert.Equal(t, 5, src.Weight)

	timeline := repo.Timeline()
	require.Len(t, timeline, 1)
	timeline[0].ID = "tampered"
	assert.Equal(t, "tl_opening", repo.Timeline()[0].ID, "Timeline returns a copy")

	rules, newsItems, leadDefs, sources, tl := repo.Counts()
	assert.Equal(t, 2, rules)
	assert.Equal(t, 1, newsItems)
	assert.Equal(t, 1, leadDefs)
	assert.Equal(t, 2, sources)
	assert.Equal(t, 1, tl)
}

func TestValidatePack(t *testing.T) {
	pack := compileSample(t, samplePack)
	assert.Empty(t, Validate(pack))
}

func TestValidateFindsDanglingReferences(t *testing.T) {
	src := `
lead: lead_x: {title: "X", allowed_types: ["Document"], min_evidence: 1, expose_news: "news_missing"}
news: news_half: {tones: ["Neutral", "Mournful"], variants: Neutral: {headline: "H"}}
event: e: rules: [{trigger: "on_day_start", effects: [
	{kind: "add_news", news: "news_ghost"},
	{kind: "add_lead", lead: "lead_ghost"},
	{kind: "unlock_source", source: "src_ghost"},
]}]
timeline: [{id: "tl", week: 1, day: "Monday", segment: "Morning", spawn_news: ["news_ghost"]}]
`
	pack := compileSample(t, src)
	errs := Validate(pack)
	require.Len(t, errs, 6)

	var messages []string
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	joined := ""
	for _, m := range messages {
		joined += m + "\n"
	}
	assert.Contains(t, joined, `unknown news "news_ghost"`)
	assert.Contains(t, joined, `unknown lead "lead_ghost"`)
	assert.Contains(t, joined, `unknown source "src_ghost"`)
	assert.Contains(t, joined, `tone "Mournful" has no variant`)
	assert.Contains(t, joined, `unknown expose news "news_missing"`)
}
