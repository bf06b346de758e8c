package port

import (
	"context"
	"errors"

	"github.com/phishsense/phishsense/internal/domain/model"
)

var (
	// ErrClassifierUnavailable means no usable model artifact is loaded.
	// Detection falls back to heuristic-only scoring.
	ErrClassifierUnavailable = errors.New("classifier unavailable")

	// ErrFeatureContract means the loaded model expects a different feature
	// layout than the extractor produces. Detection must abort.
	ErrFeatureContract = errors.New("feature contract violation")
)

// Classifier returns the phishing-class probability for a feature vector.
type Classifier interface {
	Predict(ctx context.Context, features model.FeatureVector) (float64, error)
}
