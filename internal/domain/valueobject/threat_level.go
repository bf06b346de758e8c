package valueobject

import (
	"encoding/json"
	"fmt"
)

// ThreatLevel is an immutable value object representing the ordinal threat bucket of a URL.
type ThreatLevel struct {
	value string
	rank  int
}

var (
	ThreatLevelSafe     = ThreatLevel{value: "SAFE", rank: 0}
	ThreatLevelLow      = ThreatLevel{value: "LOW", rank: 1}
	ThreatLevelMedium   = ThreatLevel{value: "MEDIUM", rank: 2}
	ThreatLevelHigh     = ThreatLevel{value: "HIGH", rank: 3}
	ThreatLevelCritical = ThreatLevel{value: "CRITICAL", rank: 4}
)

// PhishingThreshold is the combined score at or above which a URL is reported as phishing.
const PhishingThreshold = 0.5

// ThreatLevelFromString reconstructs a ThreatLevel from its string representation.
func ThreatLevelFromString(s string) (ThreatLevel, error) {
	switch s {
	case "SAFE":
		return ThreatLevelSafe, nil
	case "LOW":
		return ThreatLevelLow, nil
	case "MEDIUM":
		return ThreatLevelMedium, nil
	case "HIGH":
		return ThreatLevelHigh, nil
	case "CRITICAL":
		return ThreatLevelCritical, nil
	default:
		return ThreatLevel{}, fmt.Errorf("invalid threat level: %s", s)
	}
}

// ThreatLevelFromScore maps a combined score in [0,1] to its bucket.
// Boundaries are closed-open: [0,0.2) SAFE, [0.2,0.4) LOW, [0.4,0.6) MEDIUM,
// [0.6,0.8) HIGH, [0.8,1] CRITICAL. Out-of-range scores are clamped first.
func ThreatLevelFromScore(score float64) ThreatLevel {
	score = ClampUnit(score)
	switch {
	case score < 0.2:
		return ThreatLevelSafe
	case score < 0.4:
		return ThreatLevelLow
	case score < 0.6:
		return ThreatLevelMedium
	case score < 0.8:
		return ThreatLevelHigh
	default:
		return ThreatLevelCritical
	}
}

// IsPhishingScore reports whether a combined score crosses the phishing threshold.
// It is independent of the threat-level bucketing.
func IsPhishingScore(score float64) bool {
	return ClampUnit(score) >= PhishingThreshold
}

// String returns the string representation.
func (t ThreatLevel) String() string {
	return t.value
}

// Rank returns the ordinal position, SAFE=0 through CRITICAL=4.
func (t ThreatLevel) Rank() int {
	return t.rank
}

// AtLeast reports whether t is the same as or more severe than other.
func (t ThreatLevel) AtLeast(other ThreatLevel) bool {
	return t.rank >= other.rank
}

// IsZero returns true if the ThreatLevel has not been set.
func (t ThreatLevel) IsZero() bool {
	return t.value == ""
}

// Equal checks equality with another ThreatLevel.
func (t ThreatLevel) Equal(other ThreatLevel) bool {
	return t.value == other.value
}

// MarshalJSON encodes the level as its string form.
func (t ThreatLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.value)
}

// UnmarshalJSON decodes a level from its string form.
func (t *ThreatLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level, err := ThreatLevelFromString(s)
	if err != nil {
		return err
	}
	*t = level
	return nil
}
