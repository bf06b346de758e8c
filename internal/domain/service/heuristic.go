package service

import (
	"fmt"
	"strings"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
)

// Rule thresholds.
const (
	LongURLThreshold         = 75
	NewDomainDays            = 30
	ExcessiveSubdomainDepth  = 3
	SpecialCharThreshold     = 5
	SuspiciousKeywordMinimum = 1
)

// MaxRuleFloor caps any rule floor. It sits below the phishing threshold, so a
// floor can lift the threat level but never decides the verdict alone.
const MaxRuleFloor = 0.4

// Rule is a single weighted heuristic. Floor, when non-zero, is the minimum
// score a detection may receive once the rule fires, capped at MaxRuleFloor.
type Rule struct {
	ID     string
	Weight float64
	Floor  float64
	Match  func(model.RawFacts) bool
	Reason func(model.RawFacts) string
}

func staticReason(s string) func(model.RawFacts) string {
	return func(model.RawFacts) string { return s }
}

// DefaultRules returns the rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID: "malformed_url", Weight: 0.15,
			Match:  func(f model.RawFacts) bool { return f.Malformed },
			Reason: staticReason("URL is malformed or has no resolvable host"),
		},
		{
			ID: "suspicious_tld", Weight: 0.15,
			Match: func(f model.RawFacts) bool { return f.SuspiciousTLD },
			Reason: func(f model.RawFacts) string {
				return fmt.Sprintf("Uses suspicious top-level domain (.%s)", f.TLD)
			},
		},
		{
			ID: "ip_literal", Weight: 0.25, Floor: MaxRuleFloor,
			Match:  func(f model.RawFacts) bool { return f.IsIP },
			Reason: staticReason("Domain is an IP address"),
		},
		{
			ID: "no_https", Weight: 0.15,
			Match:  func(f model.RawFacts) bool { return !f.Malformed && !f.HasHTTPS },
			Reason: staticReason("Does not use HTTPS"),
		},
		{
			ID: "ssl_invalid", Weight: 0.15,
			Match:  func(f model.RawFacts) bool { return f.HasHTTPS && f.SSLValid.IsFalse() },
			Reason: staticReason("HTTPS certificate is invalid"),
		},
		{
			ID: "ssl_unverified", Weight: 0.05,
			Match:  func(f model.RawFacts) bool { return f.HasHTTPS && !f.Malformed && !f.SSLValid.IsKnown() },
			Reason: staticReason("HTTPS certificate could not be verified"),
		},
		{
			ID: "shortener", Weight: 0.10,
			Match:  func(f model.RawFacts) bool { return f.Shortener },
			Reason: staticReason("Uses URL shortening service"),
		},
		{
			ID: "typosquat", Weight: 0.25, Floor: MaxRuleFloor,
			Match: func(f model.RawFacts) bool { return f.Typosquat != nil },
			Reason: func(f model.RawFacts) string {
				return fmt.Sprintf("Domain %s closely resembles %s (possible typosquatting)", f.RegisteredDomain, f.Typosquat.Brand)
			},
		},
		{
			ID: "brand_in_subdomain", Weight: 0.15, Floor: MaxRuleFloor,
			Match: func(f model.RawFacts) bool { return f.BrandInSubdomain != "" },
			Reason: func(f model.RawFacts) string {
				return fmt.Sprintf("Legitimate domain %s appears in a foreign host (possible impersonation)", f.BrandInSubdomain)
			},
		},
		{
			ID: "excessive_subdomains", Weight: 0.10,
			Match: func(f model.RawFacts) bool { return f.SubdomainDepth >= ExcessiveSubdomainDepth },
			Reason: func(f model.RawFacts) string {
				return fmt.Sprintf("Excessive subdomain depth (%d levels)", f.SubdomainDepth)
			},
		},
		{
			ID: "suspicious_keywords", Weight: 0.10,
			Match: func(f model.RawFacts) bool { return len(f.KeywordHits) >= SuspiciousKeywordMinimum },
			Reason: func(f model.RawFacts) string {
				return fmt.Sprintf("Contains %d suspicious keywords (%s)", len(f.KeywordHits), strings.Join(f.KeywordHits, ", "))
			},
		},
		{
			ID: "new_domain", Weight: 0.15,
			Match: func(f model.RawFacts) bool {
				days, known := f.DomainAge.Days()
				return known && days < NewDomainDays
			},
			Reason: func(f model.RawFacts) string {
				days, _ := f.DomainAge.Days()
				return fmt.Sprintf("Domain is very new (%d days old)", days)
			},
		},
		{
			ID: "dns_unresolvable", Weight: 0.10,
			Match:  func(f model.RawFacts) bool { return f.DNSResolves.IsFalse() },
			Reason: staticReason("Domain does not resolve in DNS"),
		},
		{
			ID: "punycode_host", Weight: 0.10,
			Match:  func(f model.RawFacts) bool { return f.IsPunycode },
			Reason: staticReason("Host uses punycode (internationalised) labels"),
		},
		{
			ID: "long_url", Weight: 0.05,
			Match: func(f model.RawFacts) bool { return f.URLLength > LongURLThreshold },
			Reason: func(f model.RawFacts) string {
				return fmt.Sprintf("URL is unusually long (%d characters)", f.URLLength)
			},
		},
		{
			ID: "at_symbol", Weight: 0.10,
			Match:  func(f model.RawFacts) bool { return f.HasAt },
			Reason: staticReason("URL contains an @ symbol"),
		},
		{
			ID: "redirect_param", Weight: 0.05,
			Match:  func(f model.RawFacts) bool { return f.HasRedirect },
			Reason: staticReason("Query contains a redirect parameter"),
		},
		{
			ID: "special_chars", Weight: 0.05,
			Match: func(f model.RawFacts) bool { return f.SpecialChars >= SpecialCharThreshold },
			Reason: func(f model.RawFacts) string {
				return fmt.Sprintf("High number of special characters (%d)", f.SpecialChars)
			},
		},
	}
}

// HeuristicEngine evaluates an ordered rule set against RawFacts.
type HeuristicEngine struct {
	rules       []Rule
	totalWeight float64
}

// NewHeuristicEngine creates an engine over rules. Rules with a non-positive
// weight are ignored.
func NewHeuristicEngine(rules []Rule) *HeuristicEngine {
	kept := make([]Rule, 0, len(rules))
	total := 0.0
	for _, r := range rules {
		if r.Weight <= 0 || r.Match == nil {
			continue
		}
		kept = append(kept, r)
		total += r.Weight
	}
	return &HeuristicEngine{rules: kept, totalWeight: total}
}

// Evaluate applies every rule without short-circuiting. The score is the
// triggered weight over the total weight, raised to the highest floor among
// triggered rules, and always lies in [0,1].
func (h *HeuristicEngine) Evaluate(facts model.RawFacts) model.HeuristicResult {
	result := model.HeuristicResult{
		Reasons:   make([]string, 0),
		Triggered: make([]string, 0),
	}

	sum := 0.0
	for _, r := range h.rules {
		if !r.Match(facts) {
			continue
		}
		sum += r.Weight
		result.Triggered = append(result.Triggered, r.ID)
		if r.Reason != nil {
			result.Reasons = append(result.Reasons, r.Reason(facts))
		}
		if r.Floor > result.Floor {
			result.Floor = r.Floor
		}
	}

	if h.totalWeight > 0 {
		result.Score = sum / h.totalWeight
	}
	result.Floor = min(valueobject.ClampUnit(result.Floor), MaxRuleFloor)
	result.Score = valueobject.ClampUnit(max(result.Score, result.Floor))
	return result
}

// TotalWeight returns the normalisation denominator.
func (h *HeuristicEngine) TotalWeight() float64 {
	return h.totalWeight
}
