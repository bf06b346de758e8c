package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/port"
)

// Detector runs the full pipeline: extraction, heuristics, classification,
// fusion and threat classification.
type Detector struct {
	extractor  *FeatureExtractor
	heuristics *HeuristicEngine
	classifier port.Classifier
	combiner   *ScoreCombiner
	logger     *slog.Logger
}

// NewDetector wires a detector. A nil classifier yields heuristic-only results.
func NewDetector(
	extractor *FeatureExtractor,
	heuristics *HeuristicEngine,
	classifier port.Classifier,
	combiner *ScoreCombiner,
	logger *slog.Logger,
) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		extractor:  extractor,
		heuristics: heuristics,
		classifier: classifier,
		combiner:   combiner,
		logger:     logger,
	}
}

// Detect classifies rawURL. The only error it returns wraps
// port.ErrFeatureContract; every other failure degrades the result instead.
func (d *Detector) Detect(ctx context.Context, rawURL string) (model.DetectionResult, error) {
	features, facts := d.extractor.Extract(ctx, rawURL)
	heuristic := d.heuristics.Evaluate(facts)

	probability, err := d.predict(ctx, features)
	if err != nil {
		return model.DetectionResult{}, err
	}

	final, extra := d.combiner.Combine(heuristic, probability)

	reasons := make([]string, 0, len(heuristic.Reasons)+len(extra))
	reasons = append(reasons, heuristic.Reasons...)
	reasons = append(reasons, extra...)

	return model.NewDetectionResult(rawURL, final, heuristic, probability, reasons, features, facts), nil
}

func (d *Detector) predict(ctx context.Context, features model.FeatureVector) (*float64, error) {
	if d.classifier == nil {
		return nil, nil
	}

	p, err := d.classifier.Predict(ctx, features)
	switch {
	case err == nil:
		return &p, nil
	case errors.Is(err, port.ErrFeatureContract):
		return nil, fmt.Errorf("classifier rejected feature vector: %w", err)
	case errors.Is(err, port.ErrClassifierUnavailable):
		d.logger.DebugContext(ctx, "classifier unavailable, using heuristics only", "error", err)
		return nil, nil
	default:
		d.logger.WarnContext(ctx, "classifier prediction failed, using heuristics only", "error", err)
		return nil, nil
	}
}
