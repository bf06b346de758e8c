package service

import (
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/phishsense/phishsense/internal/domain/model"
)

// NoBrandDistance is the typosquat distance reported when there is no host to compare.
const NoBrandDistance = 10

// brand is an allow-listed domain split into its registrable label.
type brand struct {
	domain string
	label  string
}

func newBrands(domains []string) []brand {
	out := make([]brand, 0, len(domains))
	for _, d := range domains {
		out = append(out, brand{domain: d, label: registrableLabel(d)})
	}
	return out
}

// registrableLabel strips the public suffix from a registered domain:
// "paypal.co.uk" becomes "paypal".
func registrableLabel(domain string) string {
	suffix, _ := publicsuffix.PublicSuffix(domain)
	label := strings.TrimSuffix(domain, suffix)
	return strings.TrimSuffix(label, ".")
}

// maxTyposquatDistance is the largest edit distance from candidate to a brand
// label treated as imitation. Labels of up to six characters only count a
// single substitution (paypa1, amaz0n): dropping or adding a letter there
// lands on ordinary words such as cloud, bay or case.
func maxTyposquatDistance(candidate, label string) int {
	if len(label) <= 6 {
		if len(candidate) != len(label) {
			return 0
		}
		return 1
	}
	return 2
}

// nearestBrand returns the minimum edit distance from label to any brand label,
// and the brand the label imitates when the distance is within threshold.
// An exact label match is the brand itself (or a regional variant) and never
// counts as a typosquat.
func nearestBrand(label string, brands []brand) (int, *model.TyposquatMatch) {
	if label == "" || len(brands) == 0 {
		return NoBrandDistance, nil
	}

	best := NoBrandDistance
	var match *model.TyposquatMatch
	for _, b := range brands {
		d := levenshtein(label, b.label)
		if d < best {
			best = d
		}
		if d == 0 || d > maxTyposquatDistance(label, b.label) {
			continue
		}
		if match == nil || d < match.Distance {
			match = &model.TyposquatMatch{Brand: b.domain, Distance: d}
		}
	}
	return best, match
}

// embeddedBrand returns the brand domain whose label appears as a whole
// hyphen-separated token in the subdomain labels, or as a token of a hyphenated
// registrable label, of a host that is not that brand's own domain.
func embeddedBrand(subdomain, label, registered string, brands []brand) string {
	var tokens []string
	if subdomain != "" {
		for _, part := range strings.Split(subdomain, ".") {
			tokens = append(tokens, strings.Split(part, "-")...)
		}
	}
	if strings.Contains(label, "-") {
		tokens = append(tokens, strings.Split(label, "-")...)
	}

	for _, b := range brands {
		if b.label == "" || registered == b.domain || label == b.label {
			continue
		}
		for _, t := range tokens {
			if t == b.label {
				return b.domain
			}
		}
	}
	return ""
}

// levenshtein computes the edit distance between a and b over bytes.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
