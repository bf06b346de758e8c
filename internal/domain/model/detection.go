package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phishsense/phishsense/internal/domain/event"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
	"github.com/phishsense/phishsense/pkg/events"
)

// Detection is the aggregate root for a recorded URL detection. The embedded
// result is never mutated after the detection is created.
type Detection struct {
	events.EventCollector
	detectedAt            time.Time
	url                   string
	host                  string
	threatLevel           valueobject.ThreatLevel
	reasons               []string
	classifierProbability *float64
	confidence            float64
	heuristicScore        float64
	isPhishing            bool
	id                    uuid.UUID
}

// NewDetection records a finished detection and emits its domain events.
func NewDetection(result DetectionResult, detectedAt time.Time) (*Detection, error) {
	if result.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if result.ThreatLevel.IsZero() {
		return nil, fmt.Errorf("threat level is required")
	}

	d := &Detection{
		id:                    uuid.New(),
		url:                   result.URL,
		host:                  result.Facts.Host,
		isPhishing:            result.IsPhishing,
		confidence:            result.Confidence,
		threatLevel:           result.ThreatLevel,
		reasons:               append([]string(nil), result.Reasons...),
		heuristicScore:        result.HeuristicScore,
		classifierProbability: result.ClassifierProbability,
		detectedAt:            detectedAt.UTC(),
	}

	d.Record(event.NewDetectionCompleted(
		d.id, d.url, d.isPhishing, d.confidence,
		d.threatLevel.String(), d.reasons, d.detectedAt,
	))

	if d.isPhishing {
		d.Record(event.NewPhishingDetected(
			d.id, d.url, d.host, d.confidence,
			d.threatLevel.String(), d.reasons, d.detectedAt,
		))
	}

	return d, nil
}

// Reconstruct rebuilds a Detection from persisted data (no validation, no events).
func Reconstruct(
	id uuid.UUID,
	url, host string,
	isPhishing bool,
	confidence float64,
	threatLevel valueobject.ThreatLevel,
	reasons []string,
	heuristicScore float64,
	classifierProbability *float64,
	detectedAt time.Time,
) *Detection {
	return &Detection{
		id:                    id,
		url:                   url,
		host:                  host,
		isPhishing:            isPhishing,
		confidence:            confidence,
		threatLevel:           threatLevel,
		reasons:               reasons,
		heuristicScore:        heuristicScore,
		classifierProbability: classifierProbability,
		detectedAt:            detectedAt,
	}
}

// --- Accessors ---

func (d *Detection) ID() uuid.UUID                        { return d.id }
func (d *Detection) URL() string                          { return d.url }
func (d *Detection) Host() string                         { return d.host }
func (d *Detection) IsPhishing() bool                     { return d.isPhishing }
func (d *Detection) Confidence() float64                  { return d.confidence }
func (d *Detection) ThreatLevel() valueobject.ThreatLevel { return d.threatLevel }
func (d *Detection) Reasons() []string                    { return d.reasons }
func (d *Detection) HeuristicScore() float64              { return d.heuristicScore }
func (d *Detection) ClassifierProbability() *float64      { return d.classifierProbability }
func (d *Detection) DetectedAt() time.Time                { return d.detectedAt }

// DomainEvents returns all accumulated domain events and clears them.
func (d *Detection) DomainEvents() []events.DomainEvent {
	return d.ClearEvents()
}
