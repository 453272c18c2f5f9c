// Package harness runs authored scenarios against a fully wired
// simulation and renders a deterministic trace for golden-file
// comparison.
package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/the4estate/t4e/internal/calendar"
)

// Scenario is one scripted run: a content pack, a starting slot and a
// list of steps.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Pack is the content pack directory, relative to the scenario file.
	Pack string `yaml:"pack"`

	// Start is the slot the clock begins at.
	Start StartClause `yaml:"start"`

	// Seed seeds the deterministic generator. Zero selects the default.
	Seed uint32 `yaml:"seed,omitempty"`

	// Steps is the script. Each step carries exactly one action.
	Steps []Step `yaml:"steps"`
}

// StartClause names the starting slot in authored terms.
type StartClause struct {
	Week    int    `yaml:"week"`
	Day     string `yaml:"day"`
	Segment string `yaml:"segment"`
}

// Date resolves the clause to a calendar point.
func (c StartClause) Date() (calendar.Date, error) {
	day, err := calendar.ParseWeekday(c.Day)
	if err != nil {
		return calendar.Date{}, err
	}
	seg, err := calendar.ParseSegment(c.Segment)
	if err != nil {
		return calendar.Date{}, err
	}
	if c.Week < 1 || c.Week > calendar.WeeksPerYear {
		return calendar.Date{}, fmt.Errorf("start week %d out of range 1..%d", c.Week, calendar.WeeksPerYear)
	}
	return calendar.Date{Year: 1, Week: c.Week, Day: day, Segment: seg}, nil
}

// Step is one scripted action. Exactly one field must be set.
type Step struct {
	// Advance moves the clock: "segment", "day" or "week".
	Advance string `yaml:"advance,omitempty"`

	// Times repeats an advance. Defaults to 1.
	Times int `yaml:"times,omitempty"`

	// Unlock unlocks a source for credibility scoring.
	Unlock string `yaml:"unlock,omitempty"`

	// Collect records evidence toward a lead.
	Collect *CollectClause `yaml:"collect,omitempty"`

	// Investigate runs an investigation beat on a lead.
	Investigate string `yaml:"investigate,omitempty"`

	// Expose completes a ready lead.
	Expose string `yaml:"expose,omitempty"`

	// Publish releases a news item under a tone.
	Publish *PublishClause `yaml:"publish,omitempty"`
}

// CollectClause names one piece of evidence.
type CollectClause struct {
	Lead string `yaml:"lead"`
	Type string `yaml:"type"`
	ID   string `yaml:"id"`
}

// PublishClause names a story and tone.
type PublishClause struct {
	News string `yaml:"news"`
	Tone string `yaml:"tone"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so that typos fail loudly. The pack path is resolved
// relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if sc.Pack != "" && !filepath.IsAbs(sc.Pack) {
		sc.Pack = filepath.Join(filepath.Dir(path), sc.Pack)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &sc, nil
}

func validateScenario(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sc.Pack == "" {
		return fmt.Errorf("pack is required")
	}
	if _, err := sc.Start.Date(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range sc.Steps {
		if err := validateStep(&step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(s *Step) error {
	actions := 0
	if s.Advance != "" {
		actions++
		switch s.Advance {
		case "segment", "day", "week":
		default:
			return fmt.Errorf("advance must be segment, day or week, got %q", s.Advance)
		}
		if s.Times < 0 {
			return fmt.Errorf("times must not be negative")
		}
	} else if s.Times != 0 {
		return fmt.Errorf("times is only valid with advance")
	}
	if s.Unlock != "" {
		actions++
	}
	if s.Collect != nil {
		actions++
		if s.Collect.Lead == "" || s.Collect.Type == "" || s.Collect.ID == "" {
			return fmt.Errorf("collect requires lead, type and id")
		}
	}
	if s.Investigate != "" {
		actions++
	}
	if s.Expose != "" {
		actions++
	}
	if s.Publish != nil {
		actions++
		if s.Publish.News == "" || s.Publish.Tone == "" {
			return fmt.Errorf("publish requires news and tone")
		}
	}
	if actions != 1 {
		return fmt.Errorf("exactly one action per step, got %d", actions)
	}
	return nil
}
