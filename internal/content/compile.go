package content

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/the4estate/t4e/internal/calendar"
	"github.com/the4estate/t4e/internal/cet"
	"github.com/the4estate/t4e/internal/leads"
	"github.com/the4estate/t4e/internal/news"
)

// CompileError is a compilation error carrying the CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}

// LoadPack loads every CUE file under dir as one instance and compiles
// it into a Pack.
func LoadPack(dir string) (Pack, error) {
	if info, err := os.Stat(dir); err != nil {
		return Pack{}, fmt.Errorf("content pack %s: %w", dir, err)
	} else if !info.IsDir() {
		return Pack{}, fmt.Errorf("content pack %s: not a directory", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return Pack{}, fmt.Errorf("content pack %s: no CUE instances", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return Pack{}, fmt.Errorf("content pack %s: %w", dir, formatCUEError(inst.Err))
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return Pack{}, fmt.Errorf("content pack %s: %w", dir, formatCUEError(err))
	}
	return CompilePack(value)
}

// CompilePack parses a built CUE value into a Pack. Top-level fields:
// event (rules grouped by event id), news, lead, source, timeline.
// Authored text is normalized to NFC so that id comparison and
// case-insensitive dedup behave the same regardless of how the file was
// typed.
func CompilePack(v cue.Value) (Pack, error) {
	if err := v.Err(); err != nil {
		return Pack{}, formatCUEError(err)
	}

	pack := Pack{}
	var err error
	if pack.Rules, err = compileEvents(v.LookupPath(cue.ParsePath("event"))); err != nil {
		return Pack{}, err
	}
	if pack.Sources, err = compileSources(v.LookupPath(cue.ParsePath("source"))); err != nil {
		return Pack{}, err
	}

	weights := make(map[string]int, len(pack.Sources))
	for _, src := range pack.Sources {
		weights[src.ID] = src.Weight
	}
	if pack.News, err = compileNews(v.LookupPath(cue.ParsePath("news")), weights); err != nil {
		return Pack{}, err
	}
	if pack.Leads, err = compileLeads(v.LookupPath(cue.ParsePath("lead"))); err != nil {
		return Pack{}, err
	}
	if pack.Timeline, err = compileTimeline(v.LookupPath(cue.ParsePath("timeline"))); err != nil {
		return Pack{}, err
	}
	return pack, nil
}

func compileEvents(v cue.Value) ([]cet.Rule, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []cet.Rule
	for iter.Next() {
		eventID := norm.NFC.String(iter.Label())
		rulesVal := iter.Value().LookupPath(cue.ParsePath("rules"))
		if !rulesVal.Exists() {
			return nil, &CompileError{
				Field:   "event." + eventID,
				Message: "rules list is required",
				Pos:     iter.Value().Pos(),
			}
		}
		list, err := rulesVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		index := 0
		for list.Next() {
			rule, err := compileRule(list.Value(), eventID, index)
			if err != nil {
				return nil, err
			}
			out = append(out, rule)
			index++
		}
		if index == 0 {
			return nil, &CompileError{
				Field:   "event." + eventID,
				Message: "at least one rule is required",
				Pos:     rulesVal.Pos(),
			}
		}
	}
	return out, nil
}

func compileRule(v cue.Value, eventID string, index int) (cet.Rule, error) {
	field := fmt.Sprintf("event.%s.rules[%d]", eventID, index)

	trigger, err := requiredString(v, "trigger", field)
	if err != nil {
		return cet.Rule{}, err
	}
	kind, ok := triggerKind(trigger)
	if !ok {
		return cet.Rule{}, &CompileError{
			Field:   field + ".trigger",
			Message: fmt.Sprintf("unknown trigger kind %q", trigger),
			Pos:     v.Pos(),
		}
	}

	rule := cet.Rule{
		EventID:   eventID,
		RuleIndex: index,
		Trigger:   kind,
	}
	if rule.Priority, err = optionalInt(v, "priority", 0); err != nil {
		return cet.Rule{}, err
	}
	if rule.ExclusiveFlag, err = optionalString(v, "exclusive_flag"); err != nil {
		return cet.Rule{}, err
	}
	if rule.SlotKind, err = optionalString(v, "slot_kind"); err != nil {
		return cet.Rule{}, err
	}
	if bg := v.LookupPath(cue.ParsePath("background")); bg.Exists() {
		if rule.Background, err = bg.Bool(); err != nil {
			return cet.Rule{}, formatCUEError(err)
		}
	}

	if conds := v.LookupPath(cue.ParsePath("conditions")); conds.Exists() {
		list, err := conds.List()
		if err != nil {
			return cet.Rule{}, formatCUEError(err)
		}
		for list.Next() {
			c, err := compileCondition(list.Value(), field)
			if err != nil {
				return cet.Rule{}, err
			}
			rule.Conditions = append(rule.Conditions, c)
		}
	}

	effectsVal := v.LookupPath(cue.ParsePath("effects"))
	if !effectsVal.Exists() {
		return cet.Rule{}, &CompileError{
			Field:   field,
			Message: "effects list is required",
			Pos:     v.Pos(),
		}
	}
	list, err := effectsVal.List()
	if err != nil {
		return cet.Rule{}, formatCUEError(err)
	}
	for list.Next() {
		e, err := compileEffect(list.Value(), field)
		if err != nil {
			return cet.Rule{}, err
		}
		rule.Effects = append(rule.Effects, e)
	}
	if len(rule.Effects) == 0 {
		return cet.Rule{}, &CompileError{
			Field:   field,
			Message: "at least one effect is required",
			Pos:     effectsVal.Pos(),
		}
	}
	return rule, nil
}

func triggerKind(s string) (cet.TriggerKind, bool) {
	for _, kind := range cet.TriggerKinds {
		if string(kind) == s {
			return kind, true
		}
	}
	return "", false
}

func compileCondition(v cue.Value, field string) (cet.Condition, error) {
	kind, err := requiredString(v, "kind", field+".conditions")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "week_at_least":
		week, err := requiredInt(v, "week", field)
		if err != nil {
			return nil, err
		}
		return cet.WeekAtLeast{Week: week}, nil
	case "week_in_range":
		min, err := requiredInt(v, "min", field)
		if err != nil {
			return nil, err
		}
		max, err := requiredInt(v, "max", field)
		if err != nil {
			return nil, err
		}
		return cet.WeekInRange{Min: min, Max: max}, nil
	case "segment_is":
		name, err := requiredString(v, "segment", field)
		if err != nil {
			return nil, err
		}
		seg, err := calendar.ParseSegment(name)
		if err != nil {
			return nil, &CompileError{Field: field + ".segment", Message: err.Error(), Pos: v.Pos()}
		}
		return cet.SegmentIs{Segment: seg}, nil
	case "day_is":
		name, err := requiredString(v, "day", field)
		if err != nil {
			return nil, err
		}
		day, err := calendar.ParseWeekday(name)
		if err != nil {
			return nil, &CompileError{Field: field + ".day", Message: err.Error(), Pos: v.Pos()}
		}
		return cet.DayIs{Day: day}, nil
	case "flag_exists":
		key, err := requiredString(v, "key", field)
		if err != nil {
			return nil, err
		}
		return cet.FlagExists{Key: key}, nil
	case "flag_equals":
		key, err := requiredString(v, "key", field)
		if err != nil {
			return nil, err
		}
		value, err := requiredInt(v, "value", field)
		if err != nil {
			return nil, err
		}
		return cet.FlagEquals{Key: key, Value: value}, nil
	case "context_equals":
		key, err := requiredString(v, "key", field)
		if err != nil {
			return nil, err
		}
		value, err := requiredString(v, "value", field)
		if err != nil {
			return nil, err
		}
		return cet.ContextEquals{Key: key, Value: value}, nil
	case "context_in":
		key, err := requiredString(v, "key", field)
		if err != nil {
			return nil, err
		}
		values, err := stringList(v, "values")
		if err != nil {
			return nil, err
		}
		return cet.ContextIn{Key: key, Values: values}, nil
	case "mood_at_least":
		min, err := requiredInt(v, "min", field)
		if err != nil {
			return nil, err
		}
		return cet.GlobalMoodAtLeast{Min: min}, nil
	case "mood_at_most":
		max, err := requiredInt(v, "max", field)
		if err != nil {
			return nil, err
		}
		return cet.GlobalMoodAtMost{Max: max}, nil
	case "regime_pressure_at_least":
		min, err := requiredInt(v, "min", field)
		if err != nil {
			return nil, err
		}
		return cet.RegimePressureAtLeast{Min: min}, nil
	case "persona_suspicion_at_least":
		persona, err := requiredString(v, "persona", field)
		if err != nil {
			return nil, err
		}
		min, err := requiredInt(v, "min", field)
		if err != nil {
			return nil, err
		}
		return cet.PersonaSuspicionAtLeast{Persona: persona, Min: min}, nil
	case "persona_suspicion_at_most":
		persona, err := requiredString(v, "persona", field)
		if err != nil {
			return nil, err
		}
		max, err := requiredInt(v, "max", field)
		if err != nil {
			return nil, err
		}
		return cet.PersonaSuspicionAtMost{Persona: persona, Max: max}, nil
	case "faction_mood_at_least":
		faction, err := requiredString(v, "faction", field)
		if err != nil {
			return nil, err
		}
		min, err := requiredInt(v, "min", field)
		if err != nil {
			return nil, err
		}
		return cet.FactionMoodAtLeast{Faction: faction, Min: min}, nil
	case "faction_mood_at_most":
		faction, err := requiredString(v, "faction", field)
		if err != nil {
			return nil, err
		}
		max, err := requiredInt(v, "max", field)
		if err != nil {
			return nil, err
		}
		return cet.FactionMoodAtMost{Faction: faction, Max: max}, nil
	}
	return nil, &CompileError{
		Field:   field + ".conditions",
		Message: fmt.Sprintf("unknown condition kind %q", kind),
		Pos:     v.Pos(),
	}
}

func compileEffect(v cue.Value, field string) (cet.Effect, error) {
	kind, err := requiredString(v, "kind", field+".effects")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "set_flag":
		key, err := requiredString(v, "key", field)
		if err != nil {
			return nil, err
		}
		value, err := optionalInt(v, "value", 1)
		if err != nil {
			return nil, err
		}
		return cet.SetFlag{Key: key, Value: value}, nil
	case "clear_flag":
		key, err := requiredString(v, "key", field)
		if err != nil {
			return nil, err
		}
		return cet.ClearFlag{Key: key}, nil
	case "mood_delta":
		delta, err := requiredInt(v, "delta", field)
		if err != nil {
			return nil, err
		}
		return cet.MoodDelta{Delta: delta}, nil
	case "credibility_delta":
		delta, err := requiredInt(v, "delta", field)
		if err != nil {
			return nil, err
		}
		return cet.CredibilityDelta{Delta: delta}, nil
	case "persona_suspicion_delta":
		persona, err := requiredString(v, "persona", field)
		if err != nil {
			return nil, err
		}
		delta, err := requiredInt(v, "delta", field)
		if err != nil {
			return nil, err
		}
		return cet.PersonaSuspicionDelta{Persona: persona, Delta: delta}, nil
	case "faction_mood_delta":
		faction, err := requiredString(v, "faction", field)
		if err != nil {
			return nil, err
		}
		delta, err := requiredInt(v, "delta", field)
		if err != nil {
			return nil, err
		}
		return cet.FactionMoodDelta{Faction: faction, Delta: delta}, nil
	case "add_lead":
		lead, err := requiredString(v, "lead", field)
		if err != nil {
			return nil, err
		}
		return cet.AddLead{LeadID: lead}, nil
	case "remove_lead":
		lead, err := requiredString(v, "lead", field)
		if err != nil {
			return nil, err
		}
		return cet.RemoveLead{LeadID: lead}, nil
	case "add_evidence":
		lead, err := requiredString(v, "lead", field)
		if err != nil {
			return nil, err
		}
		typ, err := requiredString(v, "type", field)
		if err != nil {
			return nil, err
		}
		id, err := requiredString(v, "id", field)
		if err != nil {
			return nil, err
		}
		return cet.AddEvidence{LeadID: lead, EvidenceType: typ, EvidenceID: id}, nil
	case "add_news":
		id, err := requiredString(v, "news", field)
		if err != nil {
			return nil, err
		}
		return cet.AddNews{NewsID: id}, nil
	case "schedule_item":
		return compileScheduleItem(v, field)
	case "fine":
		amount, err := requiredInt(v, "amount", field)
		if err != nil {
			return nil, err
		}
		return cet.Fine{Amount: amount}, nil
	case "arrest":
		persona, err := requiredString(v, "persona", field)
		if err != nil {
			return nil, err
		}
		days, err := requiredInt(v, "days", field)
		if err != nil {
			return nil, err
		}
		return cet.Arrest{Persona: persona, DurationDays: days}, nil
	case "regime_pressure_delta":
		delta, err := requiredInt(v, "delta", field)
		if err != nil {
			return nil, err
		}
		return cet.RegimePressureDelta{Delta: delta}, nil
	case "add_memory_log":
		entry, err := requiredString(v, "entry", field)
		if err != nil {
			return nil, err
		}
		return cet.AddMemoryLog{Entry: entry}, nil
	case "unlock_source":
		id, err := requiredString(v, "source", field)
		if err != nil {
			return nil, err
		}
		return cet.UnlockSource{SourceID: id}, nil
	}
	return nil, &CompileError{
		Field:   field + ".effects",
		Message: fmt.Sprintf("unknown effect kind %q", kind),
		Pos:     v.Pos(),
	}
}

func compileScheduleItem(v cue.Value, field string) (cet.Effect, error) {
	item, err := requiredString(v, "item", field)
	if err != nil {
		return nil, err
	}
	eff := cet.ScheduleItem{ItemID: item}
	if eff.PayloadKind, err = optionalString(v, "payload"); err != nil {
		return nil, err
	}
	if eff.Spec.WeekRelative, err = optionalInt(v, "week_relative", 0); err != nil {
		return nil, err
	}
	if eff.Spec.OffsetDays, err = optionalInt(v, "offset_days", 0); err != nil {
		return nil, err
	}
	if eff.Spec.DayOfWeek, err = optionalString(v, "day_of_week"); err != nil {
		return nil, err
	}
	if eff.Spec.Segment, err = optionalString(v, "segment"); err != nil {
		return nil, err
	}
	if eff.SpawnNewsIDs, err = stringList(v, "spawn_news"); err != nil {
		return nil, err
	}
	if eff.SpawnLeadIDs, err = stringList(v, "spawn_lead"); err != nil {
		return nil, err
	}
	return eff, nil
}

func compileNews(v cue.Value, sourceWeights map[string]int) ([]news.Item, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []news.Item
	for iter.Next() {
		id := norm.NFC.String(iter.Label())
		nv := iter.Value()
		field := "news." + id

		item := news.Item{ID: id, Variants: make(map[string]news.Variant)}
		if item.AllowedTones, err = stringList(nv, "tones"); err != nil {
			return nil, err
		}
		if len(item.AllowedTones) == 0 {
			return nil, &CompileError{Field: field, Message: "at least one tone is required", Pos: nv.Pos()}
		}

		variantsVal := nv.LookupPath(cue.ParsePath("variants"))
		if variantsVal.Exists() {
			vIter, err := variantsVal.Fields()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for vIter.Next() {
				tone := norm.NFC.String(vIter.Label())
				variant, err := compileVariant(vIter.Value(), field+".variants."+tone)
				if err != nil {
					return nil, err
				}
				item.Variants[tone] = variant
			}
		}

		if item.Supporting, err = compileCitations(nv, "supports", sourceWeights, field); err != nil {
			return nil, err
		}
		if item.Conflicting, err = compileCitations(nv, "conflicts", sourceWeights, field); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func compileVariant(v cue.Value, field string) (news.Variant, error) {
	variant := news.Variant{}
	var err error
	if variant.Headline, err = requiredString(v, "headline", field); err != nil {
		return news.Variant{}, err
	}
	if variant.Short, err = optionalString(v, "short"); err != nil {
		return news.Variant{}, err
	}
	if variant.Body, err = optionalString(v, "body"); err != nil {
		return news.Variant{}, err
	}
	if effs := v.LookupPath(cue.ParsePath("effects")); effs.Exists() {
		list, err := effs.List()
		if err != nil {
			return news.Variant{}, formatCUEError(err)
		}
		for list.Next() {
			e, err := compileEffect(list.Value(), field)
			if err != nil {
				return news.Variant{}, err
			}
			variant.Effects = append(variant.Effects, e)
		}
	}
	return variant, nil
}

// compileCitations reads a list of source ids and joins each against the
// source table for its weight. A citation may override the weight
// inline: {source: "src_x", weight: 3}.
func compileCitations(v cue.Value, path string, weights map[string]int, field string) ([]news.WeightedSource, error) {
	listVal := v.LookupPath(cue.ParsePath(path))
	if !listVal.Exists() {
		return nil, nil
	}
	list, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []news.WeightedSource
	for list.Next() {
		cv := list.Value()
		if id, err := cv.String(); err == nil {
			id = norm.NFC.String(id)
			weight, ok := weights[id]
			if !ok {
				return nil, &CompileError{
					Field:   field + "." + path,
					Message: fmt.Sprintf("unknown source %q", id),
					Pos:     cv.Pos(),
				}
			}
			out = append(out, news.WeightedSource{SourceID: id, Weight: weight})
			continue
		}
		id, err := requiredString(cv, "source", field+"."+path)
		if err != nil {
			return nil, err
		}
		weight, known := weights[id]
		if wv := cv.LookupPath(cue.ParsePath("weight")); wv.Exists() {
			n, err := wv.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			weight, known = int(n), true
		}
		if !known {
			return nil, &CompileError{
				Field:   field + "." + path,
				Message: fmt.Sprintf("unknown source %q and no inline weight", id),
				Pos:     cv.Pos(),
			}
		}
		out = append(out, news.WeightedSource{SourceID: id, Weight: weight})
	}
	return out, nil
}

func compileLeads(v cue.Value) ([]leads.Definition, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []leads.Definition
	for iter.Next() {
		id := norm.NFC.String(iter.Label())
		lv := iter.Value()
		field := "lead." + id

		def := leads.Definition{ID: id}
		if def.Title, err = requiredString(lv, "title", field); err != nil {
			return nil, err
		}
		if def.ExposeText, err = optionalString(lv, "expose_text"); err != nil {
			return nil, err
		}
		if def.AllowedTypes, err = stringList(lv, "allowed_types"); err != nil {
			return nil, err
		}
		if len(def.AllowedTypes) == 0 {
			return nil, &CompileError{Field: field, Message: "allowed_types must not be empty", Pos: lv.Pos()}
		}
		if def.MinEvidence, err = requiredInt(lv, "min_evidence", field); err != nil {
			return nil, err
		}
		if def.MinEvidence < 1 {
			return nil, &CompileError{Field: field + ".min_evidence", Message: "must be at least 1", Pos: lv.Pos()}
		}
		if def.ExposeNewsID, err = optionalString(lv, "expose_news"); err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

func compileSources(v cue.Value) ([]Source, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []Source
	for iter.Next() {
		id := norm.NFC.String(iter.Label())
		sv := iter.Value()
		field := "source." + id

		src := Source{ID: id}
		if src.Name, err = optionalString(sv, "name"); err != nil {
			return nil, err
		}
		if src.Weight, err = requiredInt(sv, "weight", field); err != nil {
			return nil, err
		}
		if src.Weight < 0 {
			return nil, &CompileError{Field: field + ".weight", Message: "must not be negative", Pos: sv.Pos()}
		}
		out = append(out, src)
	}
	return out, nil
}

func compileTimeline(v cue.Value) ([]cet.TimelineItem, error) {
	if !v.Exists() {
		return nil, nil
	}
	list, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []cet.TimelineItem
	index := 0
	for list.Next() {
		tv := list.Value()
		field := fmt.Sprintf("timeline[%d]", index)

		item := cet.TimelineItem{}
		if item.ID, err = requiredString(tv, "id", field); err != nil {
			return nil, err
		}
		if item.When, err = compileDate(tv, field); err != nil {
			return nil, err
		}
		if item.PayloadKind, err = optionalString(tv, "payload"); err != nil {
			return nil, err
		}
		if item.SpawnNewsIDs, err = stringList(tv, "spawn_news"); err != nil {
			return nil, err
		}
		if item.SpawnLeadIDs, err = stringList(tv, "spawn_lead"); err != nil {
			return nil, err
		}
		out = append(out, item)
		index++
	}
	return out, nil
}

func compileDate(v cue.Value, field string) (calendar.Date, error) {
	week, err := requiredInt(v, "week", field)
	if err != nil {
		return calendar.Date{}, err
	}
	if week < 1 || week > calendar.WeeksPerYear {
		return calendar.Date{}, &CompileError{
			Field:   field + ".week",
			Message: fmt.Sprintf("week %d out of range 1..%d", week, calendar.WeeksPerYear),
			Pos:     v.Pos(),
		}
	}
	dayName, err := requiredString(v, "day", field)
	if err != nil {
		return calendar.Date{}, err
	}
	day, err := calendar.ParseWeekday(dayName)
	if err != nil {
		return calendar.Date{}, &CompileError{Field: field + ".day", Message: err.Error(), Pos: v.Pos()}
	}
	segName, err := requiredString(v, "segment", field)
	if err != nil {
		return calendar.Date{}, err
	}
	seg, err := calendar.ParseSegment(segName)
	if err != nil {
		return calendar.Date{}, &CompileError{Field: field + ".segment", Message: err.Error(), Pos: v.Pos()}
	}
	year, err := optionalInt(v, "year", 1)
	if err != nil {
		return calendar.Date{}, err
	}
	return calendar.Date{Year: year, Week: week, Day: day, Segment: seg}, nil
}

// requiredString reads a required string field, NFC-normalized.
func requiredString(v cue.Value, path, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field + "." + path,
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return norm.NFC.String(s), nil
}

// optionalString reads an optional string field, NFC-normalized; absent
// means empty.
func optionalString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return norm.NFC.String(s), nil
}

func requiredInt(v cue.Value, path, field string) (int, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, &CompileError{
			Field:   field + "." + path,
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func optionalInt(v cue.Value, path string, fallback int) (int, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return fallback, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// stringList reads an optional list of strings, each NFC-normalized.
func stringList(v cue.Value, path string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil, nil
	}
	list, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, norm.NFC.String(s))
	}
	return out, nil
}
