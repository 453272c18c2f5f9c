package harness

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/the4estate/t4e/internal/content"
	"github.com/the4estate/t4e/internal/engine"
	"github.com/the4estate/t4e/internal/sim"
)

// Result is a finished scenario run: the simulation in its final state
// and the rendered trace, one line per observable step.
type Result struct {
	Sim   *sim.Simulation
	Trace []string
}

// TraceText renders the trace as one newline-terminated block.
func (r *Result) TraceText() []byte {
	return []byte(strings.Join(r.Trace, "\n") + "\n")
}

// Run loads the scenario's content pack, wires a simulation with a
// sequential token source and executes every step. Step-level failures
// (unknown lead, disallowed tone) are recorded in the trace, not
// returned; only setup problems fail the run.
func Run(sc *Scenario) (*Result, error) {
	pack, err := content.LoadPack(sc.Pack)
	if err != nil {
		return nil, err
	}
	if errs := content.Validate(pack); len(errs) > 0 {
		return nil, fmt.Errorf("content pack %s: %d validation errors, first: %w", sc.Pack, len(errs), errs[0])
	}
	repo := content.NewRepository(pack)

	start, err := sc.Start.Date()
	if err != nil {
		return nil, err
	}
	s := sim.New(repo, sim.Options{
		Start:  start,
		Seed:   sc.Seed,
		Tokens: &engine.SequentialTokenSource{},
		Logger: slog.New(slog.DiscardHandler),
	})

	r := &Result{Sim: s}
	r.line("scenario %s", sc.Name)
	rules, newsItems, leadDefs, sources, timeline := repo.Counts()
	r.line("pack rules=%d news=%d leads=%d sources=%d timeline=%d",
		rules, newsItems, leadDefs, sources, timeline)
	r.line("start %s seed=%d", start, sc.Seed)

	for _, step := range sc.Steps {
		r.runStep(s, step)
	}
	r.finalSection(s)
	return r, nil
}

func (r *Result) line(format string, args ...any) {
	r.Trace = append(r.Trace, fmt.Sprintf(format, args...))
}

func (r *Result) runStep(s *sim.Simulation, step Step) {
	switch {
	case step.Advance != "":
		times := step.Times
		if times == 0 {
			times = 1
		}
		for i := 0; i < times; i++ {
			switch step.Advance {
			case "segment":
				s.AdvanceSegment()
			case "day":
				s.AdvanceDay()
			case "week":
				s.AdvanceWeek()
			}
			r.line("advance %s -> %s", step.Advance, s.Now())
		}
	case step.Unlock != "":
		s.World().UnlockSource(step.Unlock)
		r.line("unlock %s", step.Unlock)
	case step.Collect != nil:
		c := step.Collect
		added, stage, err := s.CollectEvidence(c.Lead, c.Type, c.ID)
		if err != nil {
			r.line("collect %s %s/%s -> error: %v", c.Lead, c.Type, c.ID, err)
			return
		}
		r.line("collect %s %s/%s -> added=%t stage=%s", c.Lead, c.Type, c.ID, added, stage)
	case step.Investigate != "":
		if err := s.InvestigateLead(step.Investigate); err != nil {
			r.line("investigate %s -> error: %v", step.Investigate, err)
			return
		}
		r.line("investigate %s -> ok", step.Investigate)
	case step.Expose != "":
		title, _, err := s.ExposeLead(step.Expose)
		if err != nil {
			r.line("expose %s -> error: %v", step.Expose, err)
			return
		}
		r.line("expose %s -> %q", step.Expose, title)
	case step.Publish != nil:
		p := step.Publish
		pub, err := s.PublishStory(p.News, p.Tone)
		if err != nil {
			r.line("publish %s/%s -> error: %v", p.News, p.Tone, err)
			return
		}
		r.line("publish %s/%s -> tier=%s net=%d delta=%d", p.News, p.Tone, pub.Tier, pub.Net, pub.Delta)
	}
}

func (r *Result) finalSection(s *sim.Simulation) {
	r.line("-- final --")
	r.line("date %s", s.Now())
	r.line("credibility %d", s.World().AgencyCredibility())
	r.line("pressure %d", s.World().RegimePressure())
	r.line("treasury %d", s.World().Treasury())
	r.line("news [%s]", strings.Join(s.World().NewsIDs(), " "))
	r.line("leads [%s]", strings.Join(s.World().LeadIDs(), " "))
	r.line("sources [%s]", strings.Join(s.World().UnlockedSources(), " "))

	flags := s.World().Flags()
	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%d", k, flags[k])
	}
	r.line("flags [%s]", strings.Join(pairs, " "))
	r.line("memory %d", s.Memory().Len())
}
