package model

import (
	"encoding/binary"
	"math"
)

// Feature indices. The order is a contract with trained model artifacts and
// must never change without retraining.
const (
	FeatureURLLength = iota
	FeatureHostnameLength
	FeaturePathLength
	FeatureQueryLength
	FeaturePathSegments
	FeatureNumParams
	FeatureNumDots
	FeatureNumSpecialChars
	FeatureNumAtSymbols
	FeatureHasScheme
	FeatureHasHost
	FeatureHasPort
	FeatureSuspiciousKeywords
	FeatureHostDigitRatio
	FeatureHostHyphens
	FeatureHasRedirectParam
	FeatureSuspiciousTLD
	FeatureSubdomainDepth
	FeatureIsIP
	FeatureIsPunycode
	FeatureDomainAgeDays
	FeatureDomainAgeKnown
	FeatureHasHTTPS
	FeatureSSLValid
	FeatureDNSResolves
	FeatureIsShortened
	FeatureTyposquatDistance
	FeatureBrandInSubdomain
	FeatureDotsToLength
	FeatureHyphensToLength

	FeatureCount
)

var featureNames = [FeatureCount]string{
	"url_length",
	"hostname_length",
	"path_length",
	"query_length",
	"path_segments",
	"num_params",
	"num_dots",
	"num_special_chars",
	"num_at_symbols",
	"has_scheme",
	"has_host",
	"has_port",
	"suspicious_keywords",
	"host_digit_ratio",
	"host_hyphens",
	"has_redirect_param",
	"suspicious_tld",
	"subdomain_depth",
	"is_ip",
	"is_punycode",
	"domain_age_days",
	"domain_age_known",
	"has_https",
	"ssl_valid",
	"dns_resolves",
	"is_shortened",
	"typosquat_distance",
	"brand_in_subdomain",
	"dots_to_length",
	"hyphens_to_length",
}

// FeatureNames returns the feature names in vector order.
func FeatureNames() []string {
	names := make([]string, FeatureCount)
	copy(names, featureNames[:])
	return names
}

// FeatureVector is the fixed-arity numeric encoding of a URL consumed by the classifier.
// It is a value type; copies never share state.
type FeatureVector struct {
	values [FeatureCount]float64
}

// NewFeatureVector wraps the given values. Non-finite values are stored as zero.
func NewFeatureVector(values [FeatureCount]float64) FeatureVector {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[i] = 0
		}
	}
	return FeatureVector{values: values}
}

// Len returns the vector arity.
func (v FeatureVector) Len() int { return FeatureCount }

// At returns the value at index i.
func (v FeatureVector) At(i int) float64 { return v.values[i] }

// Values returns a copy of the values in vector order.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v.values[:])
	return out
}

// Named returns the vector as a name to value map.
func (v FeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, FeatureCount)
	for i, name := range featureNames {
		out[name] = v.values[i]
	}
	return out
}

// Bytes returns the little-endian IEEE 754 encoding of the vector.
func (v FeatureVector) Bytes() []byte {
	buf := make([]byte, 8*FeatureCount)
	for i, f := range v.values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// Equal reports whether two vectors hold identical values.
func (v FeatureVector) Equal(other FeatureVector) bool {
	return v.values == other.values
}
