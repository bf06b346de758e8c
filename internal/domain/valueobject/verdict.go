package valueobject

// Verdict is the binary outcome of a detection.
type Verdict struct {
	value string
}

var (
	VerdictLegitimate = Verdict{value: "LEGITIMATE"}
	VerdictPhishing   = Verdict{value: "PHISHING"}
)

// VerdictOf returns the verdict for a phishing flag.
func VerdictOf(isPhishing bool) Verdict {
	if isPhishing {
		return VerdictPhishing
	}
	return VerdictLegitimate
}

// VerdictFromScore applies PhishingThreshold to a combined score.
func VerdictFromScore(score float64) Verdict {
	return VerdictOf(IsPhishingScore(score))
}

// String returns the string representation.
func (v Verdict) String() string {
	return v.value
}

// IsPhishing returns true if the verdict is PHISHING.
func (v Verdict) IsPhishing() bool {
	return v.value == "PHISHING"
}
