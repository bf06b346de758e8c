package ml

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/port"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
)

// Classifier implements port.Classifier over a model artifact on disk.
//
// The artifact is loaded at most once, on the first prediction, and kept for
// the lifetime of the process. Concurrent first callers wait for the single
// load. A missing or corrupt artifact makes every prediction return
// port.ErrClassifierUnavailable; a feature list that differs from the
// extractor's makes every prediction return port.ErrFeatureContract.
type Classifier struct {
	readFile  func(string) ([]byte, error)
	logger    *slog.Logger
	predictor predictor
	loadErr   error
	path      string
	features  []string
	kind      string
	once      sync.Once
}

// NewClassifier creates a classifier for the artifact at path. An empty path
// yields a permanently unavailable classifier.
func NewClassifier(path string, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		path:     path,
		logger:   logger,
		readFile: os.ReadFile,
	}
}

func (c *Classifier) load() {
	if c.path == "" {
		c.loadErr = fmt.Errorf("%w: no model path configured", port.ErrClassifierUnavailable)
		return
	}

	data, err := c.readFile(c.path)
	if err != nil {
		c.loadErr = fmt.Errorf("%w: read %s: %v", port.ErrClassifierUnavailable, c.path, err)
		c.logger.Warn("model artifact not loaded, using heuristics only", "path", c.path, "error", err)
		return
	}

	artifact, err := ParseArtifact(data)
	if err != nil {
		c.loadErr = fmt.Errorf("%w: %s: %v", port.ErrClassifierUnavailable, c.path, err)
		c.logger.Warn("model artifact is corrupt, using heuristics only", "path", c.path, "error", err)
		return
	}

	c.predictor = artifact.predictor()
	c.features = artifact.Features
	c.kind = artifact.Kind
	c.logger.Info("model artifact loaded",
		"path", c.path,
		"kind", artifact.Kind,
		"features", len(artifact.Features),
		"trained_at", artifact.TrainedAt,
	)
}

// Predict returns the phishing probability for features, clamped to [0,1].
func (c *Classifier) Predict(_ context.Context, features model.FeatureVector) (float64, error) {
	c.once.Do(c.load)
	if c.loadErr != nil {
		return 0, c.loadErr
	}

	if err := checkContract(c.features); err != nil {
		return 0, err
	}

	return valueobject.ClampUnit(c.predictor.predict(features.Values())), nil
}

// Available loads the artifact if needed and reports whether predictions can be made.
func (c *Classifier) Available() bool {
	c.once.Do(c.load)
	return c.loadErr == nil
}

// Kind returns the loaded model kind, or "" when unavailable.
func (c *Classifier) Kind() string {
	c.once.Do(c.load)
	return c.kind
}

func checkContract(trained []string) error {
	expected := model.FeatureNames()
	if len(trained) != len(expected) {
		return fmt.Errorf("%w: model expects %d features, extractor produces %d",
			port.ErrFeatureContract, len(trained), len(expected))
	}
	if !slices.Equal(trained, expected) {
		for i := range expected {
			if trained[i] != expected[i] {
				return fmt.Errorf("%w: feature %d is %q in the model but %q in the extractor",
					port.ErrFeatureContract, i, trained[i], expected[i])
			}
		}
	}
	return nil
}
