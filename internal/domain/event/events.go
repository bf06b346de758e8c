package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/phishsense/phishsense/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	// EventTypeDetectionCompleted is emitted for every finished detection.
	EventTypeDetectionCompleted = "phishsense.detection.completed"

	// EventTypePhishingDetected is emitted when a URL is classified as phishing.
	EventTypePhishingDetected = "phishsense.phishing.detected"

	aggregateType = "Detection"
)

// DetectionCompleted is published when a URL detection has finished.
type DetectionCompleted struct {
	events.BaseEvent
	URL         string   `json:"url"`
	IsPhishing  bool     `json:"is_phishing"`
	Confidence  float64  `json:"confidence"`
	ThreatLevel string   `json:"threat_level"`
	Reasons     []string `json:"reasons"`
}

func NewDetectionCompleted(
	detectionID uuid.UUID,
	url string,
	isPhishing bool,
	confidence float64,
	threatLevel string,
	reasons []string,
	detectedAt time.Time,
) DetectionCompleted {
	return DetectionCompleted{
		BaseEvent:   events.NewBaseEvent(EventTypeDetectionCompleted, detectionID, aggregateType, detectedAt),
		URL:         url,
		IsPhishing:  isPhishing,
		Confidence:  confidence,
		ThreatLevel: threatLevel,
		Reasons:     reasons,
	}
}

// PhishingDetected is published when a detection crosses the phishing threshold,
// so that downstream blocklists can react.
type PhishingDetected struct {
	events.BaseEvent
	URL         string   `json:"url"`
	Host        string   `json:"host"`
	Confidence  float64  `json:"confidence"`
	ThreatLevel string   `json:"threat_level"`
	Reasons     []string `json:"reasons"`
}

func NewPhishingDetected(
	detectionID uuid.UUID,
	url, host string,
	confidence float64,
	threatLevel string,
	reasons []string,
	detectedAt time.Time,
) PhishingDetected {
	return PhishingDetected{
		BaseEvent:   events.NewBaseEvent(EventTypePhishingDetected, detectionID, aggregateType, detectedAt),
		URL:         url,
		Host:        host,
		Confidence:  confidence,
		ThreatLevel: threatLevel,
		Reasons:     reasons,
	}
}
