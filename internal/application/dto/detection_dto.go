package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phishsense/phishsense/internal/domain/model"
)

// ScorePlaces is the number of decimals scores are reported with.
const ScorePlaces = 3

// DetectRequest is the input DTO for the DetectURL use case.
type DetectRequest struct {
	URL     string `json:"url"`
	Verbose bool   `json:"verbose,omitempty"`
}

// GetDetectionRequest is the input DTO for retrieving a stored detection.
type GetDetectionRequest struct {
	ID uuid.UUID `json:"id"`
}

// DetectionResponse is the output DTO for a detection.
type DetectionResponse struct {
	DetectedAt  time.Time         `json:"detected_at"`
	Details     *DetectionDetails `json:"details,omitempty"`
	URL         string            `json:"url"`
	ThreatLevel string            `json:"threat_level"`
	Reasons     []string          `json:"reasons"`
	Confidence  float64           `json:"confidence"`
	IsPhishing  bool              `json:"is_phishing"`
	ID          uuid.UUID         `json:"id"`
}

// DetectionDetails carries the verbose breakdown of a detection.
type DetectionDetails struct {
	ClassifierProbability *float64  `json:"classifier_probability"`
	Facts                 *Facts    `json:"facts,omitempty"`
	Features              []Feature `json:"features,omitempty"`
	HeuristicScore        float64   `json:"heuristic_score"`
	ClassifierAvailable   bool      `json:"classifier_available"`
}

// Feature is one named entry of the feature vector, in vector order.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Facts is the display form of the lookup facts.
type Facts struct {
	Host             string `json:"host"`
	RegisteredDomain string `json:"registered_domain,omitempty"`
	TLD              string `json:"tld,omitempty"`
	DomainAge        string `json:"domain_age"`
	SSLValid         string `json:"ssl_valid"`
	DNSResolves      string `json:"dns_resolves"`
	Typosquat        string `json:"typosquat_of,omitempty"`
}

// Round reports v with ScorePlaces decimals, rounding down. Every threat-level
// and verdict boundary is a multiple of 0.001, so the reported value stays on
// the same side of each of them as v.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).RoundFloor(ScorePlaces).InexactFloat64()
}

// FromModel maps a stored detection to the response DTO.
func FromModel(d *model.Detection) DetectionResponse {
	reasons := d.Reasons()
	if reasons == nil {
		reasons = []string{}
	}
	return DetectionResponse{
		ID:          d.ID(),
		URL:         d.URL(),
		IsPhishing:  d.IsPhishing(),
		Confidence:  Round(d.Confidence()),
		ThreatLevel: d.ThreatLevel().String(),
		Reasons:     reasons,
		DetectedAt:  d.DetectedAt(),
		Details: &DetectionDetails{
			HeuristicScore:        Round(d.HeuristicScore()),
			ClassifierProbability: roundPtr(d.ClassifierProbability()),
			ClassifierAvailable:   d.ClassifierProbability() != nil,
		},
	}
}

// FromResult maps a fresh detection to the response DTO. Verbose adds the
// feature vector and lookup facts; otherwise Details is omitted.
func FromResult(d *model.Detection, result model.DetectionResult, verbose bool) DetectionResponse {
	resp := FromModel(d)
	if !verbose {
		resp.Details = nil
		return resp
	}

	names := model.FeatureNames()
	features := make([]Feature, len(names))
	for i, name := range names {
		features[i] = Feature{Name: name, Value: result.Features.At(i)}
	}
	resp.Details.Features = features

	facts := result.Facts
	resp.Details.Facts = &Facts{
		Host:             facts.Host,
		RegisteredDomain: facts.RegisteredDomain,
		TLD:              facts.TLD,
		DomainAge:        facts.DomainAge.String(),
		SSLValid:         facts.SSLValid.String(),
		DNSResolves:      facts.DNSResolves.String(),
	}
	if facts.Typosquat != nil {
		resp.Details.Facts.Typosquat = facts.Typosquat.Brand
	}
	return resp
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v)
	return &r
}

// ListDetectionsRequest is the input DTO for browsing a host's history.
type ListDetectionsRequest struct {
	Host   string `json:"host"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// DetectionListResponse is a page of stored detections.
type DetectionListResponse struct {
	Host       string              `json:"host"`
	Detections []DetectionResponse `json:"detections"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}
