package ml

import (
	"encoding/json"
	"fmt"
	"math"
)

// ArtifactFormat identifies a phishsense model document.
const ArtifactFormat = "phishsense-model"

// ArtifactVersion is the only document version this package reads.
const ArtifactVersion = 1

// Model kinds.
const (
	KindLogistic = "logistic"
	KindForest   = "forest"
)

// Artifact is the persisted form of a trained classifier. Features lists the
// input order the model was trained against.
type Artifact struct {
	Format    string          `json:"format"`
	Version   int             `json:"version"`
	Kind      string          `json:"kind"`
	TrainedAt string          `json:"trained_at,omitempty"`
	Features  []string        `json:"features"`
	Logistic  *LogisticParams `json:"logistic,omitempty"`
	Forest    *ForestParams   `json:"forest,omitempty"`
}

// LogisticParams is a standardised logistic regression:
// p = sigmoid(intercept + sum(coef[i] * (x[i] - mean[i]) / scale[i])).
type LogisticParams struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Means        []float64 `json:"means,omitempty"`
	Scales       []float64 `json:"scales,omitempty"`
}

// ForestParams is an ensemble of binary decision trees whose leaf values are
// phishing probabilities. The prediction is the mean over trees.
type ForestParams struct {
	Trees []Tree `json:"trees"`
}

// Tree is a flattened binary decision tree rooted at node 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split (x[Feature] <= Threshold goes Left) or a leaf.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
}

// predictor scores a vector laid out in the artifact's feature order.
type predictor interface {
	predict(x []float64) float64
}

// ParseArtifact decodes and validates a model document.
func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the artifact is internally consistent. It does not compare
// the feature list with the extractor.
func (a *Artifact) Validate() error {
	if a.Format != ArtifactFormat {
		return fmt.Errorf("unexpected artifact format %q", a.Format)
	}
	if a.Version != ArtifactVersion {
		return fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	if len(a.Features) == 0 {
		return fmt.Errorf("artifact declares no features")
	}

	n := len(a.Features)
	switch a.Kind {
	case KindLogistic:
		l := a.Logistic
		if l == nil {
			return fmt.Errorf("logistic artifact has no parameters")
		}
		if len(l.Coefficients) != n {
			return fmt.Errorf("logistic artifact has %d coefficients for %d features", len(l.Coefficients), n)
		}
		if len(l.Means) != 0 && len(l.Means) != n {
			return fmt.Errorf("logistic artifact has %d means for %d features", len(l.Means), n)
		}
		if len(l.Scales) != 0 && len(l.Scales) != n {
			return fmt.Errorf("logistic artifact has %d scales for %d features", len(l.Scales), n)
		}
	case KindForest:
		f := a.Forest
		if f == nil || len(f.Trees) == 0 {
			return fmt.Errorf("forest artifact has no trees")
		}
		for i, t := range f.Trees {
			if err := t.validate(n); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
		}
	default:
		return fmt.Errorf("unknown model kind %q", a.Kind)
	}
	return nil
}

func (t Tree) validate(features int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, node := range t.Nodes {
		if node.Leaf {
			if node.Value < 0 || node.Value > 1 || math.IsNaN(node.Value) {
				return fmt.Errorf("node %d: leaf value %v outside [0,1]", i, node.Value)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= features {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.Feature)
		}
		// Children must point forward so traversal always terminates.
		if node.Left <= i || node.Left >= len(t.Nodes) || node.Right <= i || node.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, node.Left, node.Right)
		}
	}
	return nil
}

func (a *Artifact) predictor() predictor {
	if a.Kind == KindForest {
		return forest{trees: a.Forest.Trees}
	}
	return logistic{params: *a.Logistic}
}

type logistic struct {
	params LogisticParams
}

func (l logistic) predict(x []float64) float64 {
	z := l.params.Intercept
	for i, coef := range l.params.Coefficients {
		v := x[i]
		if len(l.params.Means) > 0 {
			v -= l.params.Means[i]
		}
		if len(l.params.Scales) > 0 && l.params.Scales[i] != 0 {
			v /= l.params.Scales[i]
		}
		z += coef * v
	}
	return 1 / (1 + math.Exp(-z))
}

type forest struct {
	trees []Tree
}

func (f forest) predict(x []float64) float64 {
	sum := 0.0
	for _, t := range f.trees {
		i := 0
		for !t.Nodes[i].Leaf {
			n := t.Nodes[i]
			if x[n.Feature] <= n.Threshold {
				i = n.Left
			} else {
				i = n.Right
			}
		}
		sum += t.Nodes[i].Value
	}
	return sum / float64(len(f.trees))
}
