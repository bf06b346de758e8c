package service

import (
	"math"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
)

// ClassifierUnavailableReason is appended when scoring falls back to heuristics.
const ClassifierUnavailableReason = "classifier unavailable, heuristic-only result"

// Blend bounds for the classifier weight.
const (
	MinClassifierWeight = 0.3
	MaxClassifierWeight = 0.7
)

// ScoreCombiner fuses the heuristic score with the classifier probability.
type ScoreCombiner struct {
	minWeight float64
	maxWeight float64
}

// NewScoreCombiner creates a combiner with the default blend bounds.
func NewScoreCombiner() *ScoreCombiner {
	return &ScoreCombiner{minWeight: MinClassifierWeight, maxWeight: MaxClassifierWeight}
}

// ClassifierWeight returns the blend weight for probability p. It grows
// linearly with the classifier's certainty |p - 0.5| from the minimum at
// p = 0.5 to the maximum at p = 0 or p = 1.
func (c *ScoreCombiner) ClassifierWeight(p float64) float64 {
	certainty := math.Abs(valueobject.ClampUnit(p)-0.5) * 2
	return c.minWeight + (c.maxWeight-c.minWeight)*certainty
}

// Combine returns the final score and any reasons the combiner adds. A nil
// probability means the classifier was unavailable. The result never drops
// below the heuristic floor.
func (c *ScoreCombiner) Combine(h model.HeuristicResult, probability *float64) (float64, []string) {
	heuristic := valueobject.ClampUnit(h.Score)

	if probability == nil {
		return heuristic, []string{ClassifierUnavailableReason}
	}

	p := valueobject.ClampUnit(*probability)
	w := c.ClassifierWeight(p)
	final := w*p + (1-w)*heuristic
	final = max(final, valueobject.ClampUnit(h.Floor))
	return valueobject.ClampUnit(final), nil
}
