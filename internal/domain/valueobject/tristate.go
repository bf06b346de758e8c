package valueobject

import (
	"encoding/json"
	"fmt"
)

// TriState is the outcome of a network-dependent check: true, false, or unknown
// when the lookup did not complete. Unknown is a first-class value, not an error.
type TriState struct {
	value string
}

var (
	Unknown = TriState{}
	True    = TriState{value: "true"}
	False   = TriState{value: "false"}
)

// TriStateOf wraps a resolved boolean outcome.
func TriStateOf(b bool) TriState {
	if b {
		return True
	}
	return False
}

// IsKnown reports whether the lookup completed.
func (s TriState) IsKnown() bool { return s.value != "" }

// IsTrue reports a known true outcome.
func (s TriState) IsTrue() bool { return s.value == "true" }

// IsFalse reports a known false outcome.
func (s TriState) IsFalse() bool { return s.value == "false" }

// Feature encodes the state for the classifier: true=1, false=-1, unknown=0.
// Unknown sits at the neutral midpoint so it never reads as either outcome.
func (s TriState) Feature() float64 {
	switch s.value {
	case "true":
		return 1
	case "false":
		return -1
	default:
		return 0
	}
}

func (s TriState) String() string {
	if s.value == "" {
		return "unknown"
	}
	return s.value
}

// MarshalJSON encodes the state as true, false or the string "unknown".
func (s TriState) MarshalJSON() ([]byte, error) {
	switch s.value {
	case "true":
		return []byte("true"), nil
	case "false":
		return []byte("false"), nil
	default:
		return json.Marshal("unknown")
	}
}

// UnmarshalJSON accepts true, false, null or "unknown".
func (s *TriState) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*s = True
	case "false":
		*s = False
	case "null", `"unknown"`:
		*s = Unknown
	default:
		return fmt.Errorf("invalid tri-state value: %s", data)
	}
	return nil
}

// DomainAge is the registration age of a domain in whole days, or unknown.
type DomainAge struct {
	days  int
	known bool
}

// UnknownDomainAge is the sentinel for an age lookup that did not complete.
var UnknownDomainAge = DomainAge{}

// MedianDomainAgeDays stands in for an unknown age in the feature vector.
const MedianDomainAgeDays = 3650

// DomainAgeOf wraps a resolved age; negative ages are clamped to zero.
func DomainAgeOf(days int) DomainAge {
	if days < 0 {
		days = 0
	}
	return DomainAge{days: days, known: true}
}

// Days returns the age and whether it is known.
func (a DomainAge) Days() (int, bool) { return a.days, a.known }

// IsKnown reports whether the lookup completed.
func (a DomainAge) IsKnown() bool { return a.known }

// Feature encodes the age for the classifier, substituting the median when unknown.
func (a DomainAge) Feature() float64 {
	if !a.known {
		return MedianDomainAgeDays
	}
	return float64(a.days)
}

func (a DomainAge) String() string {
	if !a.known {
		return "unknown"
	}
	return fmt.Sprintf("%d days", a.days)
}

// MarshalJSON encodes the age as a number of days or the string "unknown".
func (a DomainAge) MarshalJSON() ([]byte, error) {
	if !a.known {
		return json.Marshal("unknown")
	}
	return json.Marshal(a.days)
}
