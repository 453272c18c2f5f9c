package content

import (
	"fmt"

	"github.com/the4estate/t4e/internal/cet"
)

// ValidateError is one referential defect found in a compiled pack.
type ValidateError struct {
	Path    string
	Message string
}

func (e *ValidateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate cross-checks a compiled pack: every id an effect, citation or
// spawn list references must exist, and every allowed tone must have an
// authored variant. All defects are collected; an empty slice means the
// pack is internally consistent.
func Validate(pack Pack) []error {
	newsIDs := make(map[string]struct{}, len(pack.News))
	for _, item := range pack.News {
		newsIDs[item.ID] = struct{}{}
	}
	leadIDs := make(map[string]struct{}, len(pack.Leads))
	for _, def := range pack.Leads {
		leadIDs[def.ID] = struct{}{}
	}
	sourceIDs := make(map[string]struct{}, len(pack.Sources))
	for _, src := range pack.Sources {
		sourceIDs[src.ID] = struct{}{}
	}

	var errs []error
	fail := func(path, format string, args ...any) {
		errs = append(errs, &ValidateError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	checkEffect := func(path string, e cet.Effect) {
		switch e := e.(type) {
		case cet.AddNews:
			if _, ok := newsIDs[e.NewsID]; !ok {
				fail(path, "unknown news %q", e.NewsID)
			}
		case cet.AddLead:
			if _, ok := leadIDs[e.LeadID]; !ok {
				fail(path, "unknown lead %q", e.LeadID)
			}
		case cet.RemoveLead:
			if _, ok := leadIDs[e.LeadID]; !ok {
				fail(path, "unknown lead %q", e.LeadID)
			}
		case cet.AddEvidence:
			if _, ok := leadIDs[e.LeadID]; !ok {
				fail(path, "unknown lead %q", e.LeadID)
			}
		case cet.UnlockSource:
			if _, ok := sourceIDs[e.SourceID]; !ok {
				fail(path, "unknown source %q", e.SourceID)
			}
		case cet.ScheduleItem:
			for _, id := range e.SpawnNewsIDs {
				if _, ok := newsIDs[id]; !ok {
					fail(path, "unknown news %q in spawn list", id)
				}
			}
			for _, id := range e.SpawnLeadIDs {
				if _, ok := leadIDs[id]; !ok {
					fail(path, "unknown lead %q in spawn list", id)
				}
			}
		}
	}

	for _, rule := range pack.Rules {
		path := fmt.Sprintf("event.%s.rules[%d]", rule.EventID, rule.RuleIndex)
		for _, e := range rule.Effects {
			checkEffect(path, e)
		}
	}

	for _, item := range pack.News {
		path := "news." + item.ID
		for _, tone := range item.AllowedTones {
			if _, ok := item.Variants[tone]; !ok {
				fail(path, "tone %q has no variant", tone)
			}
		}
		for tone, variant := range item.Variants {
			for _, e := range variant.Effects {
				checkEffect(path+".variants."+tone, e)
			}
		}
	}

	for _, def := range pack.Leads {
		if def.ExposeNewsID == "" {
			continue
		}
		if _, ok := newsIDs[def.ExposeNewsID]; !ok {
			fail("lead."+def.ID, "unknown expose news %q", def.ExposeNewsID)
		}
	}

	for i, item := range pack.Timeline {
		path := fmt.Sprintf("timeline[%d]", i)
		for _, id := range item.SpawnNewsIDs {
			if _, ok := newsIDs[id]; !ok {
				fail(path, "unknown news %q in spawn list", id)
			}
		}
		for _, id := range item.SpawnLeadIDs {
			if _, ok := leadIDs[id]; !ok {
				fail(path, "unknown lead %q in spawn list", id)
			}
		}
	}

	return errs
}
