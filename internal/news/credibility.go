// Package news implements source-credibility scoring and the publish
// use case.
package news

import "fmt"

// Tier is the qualitative credibility classification of a story.
type Tier int

const (
	Weak Tier = iota
	Solid
	Corroborated
	Contested
)

var tierNames = [...]string{"Weak", "Solid", "Corroborated", "Contested"}

func (t Tier) String() string {
	if t < Weak || t > Contested {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// WeightedSource is one cited source with its evidentiary weight.
type WeightedSource struct {
	SourceID string
	Weight   int
}

// EvaluateCredibility scores a story from its cited sources.
//
// Only sources the player has unlocked contribute; locked sources add
// nothing even when content cites them. S is the unlocked supporting
// weight sum, C the unlocked conflicting sum, net = S - C. The story is
// contested when both sides have weight and C reaches at least half of S
// (integer division). Contested overrides the numeric band; otherwise
// net <= 3 is Weak, net <= 7 is Solid, and anything above is
// Corroborated.
func EvaluateCredibility(supporting, conflicting []WeightedSource, unlocked map[string]struct{}) (Tier, int) {
	s := unlockedWeight(supporting, unlocked)
	c := unlockedWeight(conflicting, unlocked)
	net := s - c

	if s > 0 && c > 0 && c >= s/2 {
		return Contested, net
	}
	switch {
	case net <= 3:
		return Weak, net
	case net <= 7:
		return Solid, net
	}
	return Corroborated, net
}

func unlockedWeight(sources []WeightedSource, unlocked map[string]struct{}) int {
	total := 0
	for _, src := range sources {
		if _, ok := unlocked[src.SourceID]; ok {
			total += src.Weight
		}
	}
	return total
}
