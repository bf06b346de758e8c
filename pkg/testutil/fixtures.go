// Package testutil provides containers and fixtures for integration tests.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
)

// Fixed values for deterministic testing.
var (
	TestDetectionID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestDetectedAt  = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

// PhishingDetection returns a stored-form phishing detection for host.
func PhishingDetection(id uuid.UUID, host string, detectedAt time.Time) *model.Detection {
	p := 0.91
	return model.Reconstruct(id, "http://"+host+"/login/verify", host, true, 0.874,
		valueobject.ThreatLevelCritical,
		[]string{"Suspicious keywords found: login, verify", "Domain is newly registered (12 days old)"},
		0.62, &p, detectedAt)
}

// SafeDetection returns a stored-form heuristic-only detection for host.
func SafeDetection(id uuid.UUID, host string, detectedAt time.Time) *model.Detection {
	return model.Reconstruct(id, "https://"+host+"/", host, false, 0.05,
		valueobject.ThreatLevelSafe, []string{model.NoIndicatorsReason}, 0.05, nil, detectedAt)
}
