package model

import "github.com/phishsense/phishsense/internal/domain/valueobject"

// NoIndicatorsReason is reported when nothing suspicious was found.
const NoIndicatorsReason = "No obvious phishing indicators detected"

// HeuristicResult is the bounded rule-engine score with triggered reasons in
// rule evaluation order.
type HeuristicResult struct {
	Score     float64  `json:"score"`
	Floor     float64  `json:"floor"`
	Reasons   []string `json:"reasons"`
	Triggered []string `json:"triggered"`
}

// DetectionResult is the final verdict for one URL.
type DetectionResult struct {
	URL                   string                  `json:"url"`
	IsPhishing            bool                    `json:"is_phishing"`
	Confidence            float64                 `json:"confidence"`
	ThreatLevel           valueobject.ThreatLevel `json:"threat_level"`
	Reasons               []string                `json:"reasons"`
	HeuristicScore        float64                 `json:"heuristic_score"`
	ClassifierProbability *float64                `json:"classifier_probability,omitempty"`
	Features              FeatureVector           `json:"-"`
	Facts                 RawFacts                `json:"-"`
}

// NewDetectionResult assembles a result from a final score. The score is clamped
// and an empty reason list is replaced with NoIndicatorsReason.
func NewDetectionResult(
	url string,
	finalScore float64,
	heuristic HeuristicResult,
	classifierProbability *float64,
	reasons []string,
	features FeatureVector,
	facts RawFacts,
) DetectionResult {
	score := valueobject.ClampUnit(finalScore)

	out := make([]string, len(reasons))
	copy(out, reasons)
	if len(out) == 0 {
		out = []string{NoIndicatorsReason}
	}

	var prob *float64
	if classifierProbability != nil {
		p := valueobject.ClampUnit(*classifierProbability)
		prob = &p
	}

	return DetectionResult{
		URL:                   url,
		IsPhishing:            valueobject.IsPhishingScore(score),
		Confidence:            score,
		ThreatLevel:           valueobject.ThreatLevelFromScore(score),
		Reasons:               out,
		HeuristicScore:        valueobject.ClampUnit(heuristic.Score),
		ClassifierProbability: prob,
		Features:              features,
		Facts:                 facts,
	}
}

// ClassifierAvailable reports whether the classifier contributed to the score.
func (r DetectionResult) ClassifierAvailable() bool {
	return r.ClassifierProbability != nil
}

// Verdict returns the binary verdict.
func (r DetectionResult) Verdict() valueobject.Verdict {
	return valueobject.VerdictFromScore(r.Confidence)
}
