package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/service"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
)

func cleanFacts() model.RawFacts {
	return model.RawFacts{
		URL:              "https://www.wikipedia.org",
		Host:             "www.wikipedia.org",
		RegisteredDomain: "wikipedia.org",
		TLD:              "org",
		URLLength:        25,
		SubdomainDepth:   1,
		HasHTTPS:         true,
		DomainAge:        valueobject.DomainAgeOf(8000),
		SSLValid:         valueobject.True,
		DNSResolves:      valueobject.True,
	}
}

func TestHeuristicEngine_CleanFacts(t *testing.T) {
	h := service.NewHeuristicEngine(service.DefaultRules())

	result := h.Evaluate(cleanFacts())

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0.0, result.Floor)
	assert.Empty(t, result.Reasons)
	assert.Empty(t, result.Triggered)
}

func TestHeuristicEngine_IndividualRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.RawFacts)
		rule   string
		reason string
	}{
		{name: "malformed", rule: "malformed_url", reason: "malformed", mutate: func(f *model.RawFacts) {
			*f = model.RawFacts{URL: "http://", Malformed: true}
		}},
		{name: "suspicious tld", rule: "suspicious_tld", reason: ".tk", mutate: func(f *model.RawFacts) {
			f.SuspiciousTLD, f.TLD = true, "tk"
		}},
		{name: "no https", rule: "no_https", reason: "HTTPS", mutate: func(f *model.RawFacts) {
			f.HasHTTPS, f.SSLValid = false, valueobject.Unknown
		}},
		{name: "invalid certificate", rule: "ssl_invalid", reason: "invalid", mutate: func(f *model.RawFacts) {
			f.SSLValid = valueobject.False
		}},
		{name: "unverified certificate", rule: "ssl_unverified", reason: "could not be verified", mutate: func(f *model.RawFacts) {
			f.SSLValid = valueobject.Unknown
		}},
		{name: "shortener", rule: "shortener", reason: "shortening", mutate: func(f *model.RawFacts) {
			f.Shortener = true
		}},
		{name: "subdomains", rule: "excessive_subdomains", reason: "4 levels", mutate: func(f *model.RawFacts) {
			f.SubdomainDepth = 4
		}},
		{name: "keywords", rule: "suspicious_keywords", reason: "verify, account", mutate: func(f *model.RawFacts) {
			f.KeywordHits = []string{"verify", "account"}
		}},
		{name: "new domain", rule: "new_domain", reason: "5 days", mutate: func(f *model.RawFacts) {
			f.DomainAge = valueobject.DomainAgeOf(5)
		}},
		{name: "dns", rule: "dns_unresolvable", reason: "DNS", mutate: func(f *model.RawFacts) {
			f.DNSResolves = valueobject.False
		}},
		{name: "punycode", rule: "punycode_host", reason: "punycode", mutate: func(f *model.RawFacts) {
			f.IsPunycode = true
		}},
		{name: "long url", rule: "long_url", reason: "long", mutate: func(f *model.RawFacts) {
			f.URLLength = 120
		}},
		{name: "at symbol", rule: "at_symbol", reason: "@", mutate: func(f *model.RawFacts) {
			f.HasAt = true
		}},
		{name: "redirect", rule: "redirect_param", reason: "redirect", mutate: func(f *model.RawFacts) {
			f.HasRedirect = true
		}},
		{name: "special chars", rule: "special_chars", reason: "special characters", mutate: func(f *model.RawFacts) {
			f.SpecialChars = 9
		}},
	}

	h := service.NewHeuristicEngine(service.DefaultRules())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cleanFacts()
			tt.mutate(&f)

			result := h.Evaluate(f)

			assert.Contains(t, result.Triggered, tt.rule)
			require.NotEmpty(t, result.Reasons)
			assert.Contains(t, result.Reasons[len(result.Reasons)-1]+" "+result.Reasons[0], tt.reason)
			assert.Greater(t, result.Score, 0.0)
			assert.LessOrEqual(t, result.Score, 1.0)
		})
	}
}

func TestHeuristicEngine_UnknownLookupsDoNotCountAsNegative(t *testing.T) {
	h := service.NewHeuristicEngine(service.DefaultRules())

	f := cleanFacts()
	f.DNSResolves = valueobject.Unknown
	f.DomainAge = valueobject.UnknownDomainAge

	result := h.Evaluate(f)
	assert.NotContains(t, result.Triggered, "dns_unresolvable")
	assert.NotContains(t, result.Triggered, "new_domain")
}

func TestHeuristicEngine_NoDoubleCountingForPlainHTTP(t *testing.T) {
	h := service.NewHeuristicEngine(service.DefaultRules())

	f := cleanFacts()
	f.HasHTTPS = false
	f.SSLValid = valueobject.False

	result := h.Evaluate(f)
	assert.Equal(t, []string{"no_https"}, result.Triggered)
}

func TestHeuristicEngine_IPLiteralFloor(t *testing.T) {
	h := service.NewHeuristicEngine(service.DefaultRules())

	f := model.RawFacts{
		URL:         "http://192.168.1.1/login",
		Host:        "192.168.1.1",
		IsIP:        true,
		KeywordHits: []string{"login"},
		DomainAge:   valueobject.UnknownDomainAge,
		DNSResolves: valueobject.True,
	}

	result := h.Evaluate(f)

	assert.Equal(t, []string{"ip_literal", "no_https", "suspicious_keywords"}, result.Triggered)
	assert.Equal(t, "Domain is an IP address", result.Reasons[0])
	assert.Equal(t, "Does not use HTTPS", result.Reasons[1])
	assert.Equal(t, 0.4, result.Floor)
	assert.GreaterOrEqual(t, result.Score, 0.4)
}

func TestHeuristicEngine_TyposquatNamesBrand(t *testing.T) {
	h := service.NewHeuristicEngine(service.DefaultRules())

	f := cleanFacts()
	f.Host, f.RegisteredDomain = "paypa1.com", "paypa1.com"
	f.Typosquat = &model.TyposquatMatch{Brand: "paypal.com", Distance: 1}

	result := h.Evaluate(f)

	assert.Contains(t, result.Triggered, "typosquat")
	assert.Contains(t, result.Reasons[0], "paypal.com")
	assert.GreaterOrEqual(t, result.Score, service.MaxRuleFloor)
}

func TestHeuristicEngine_FloorNeverReachesPhishingThreshold(t *testing.T) {
	for _, r := range service.DefaultRules() {
		assert.Less(t, r.Floor, valueobject.PhishingThreshold, "rule %s", r.ID)
	}

	h := service.NewHeuristicEngine([]service.Rule{
		{ID: "loud", Weight: 0.1, Floor: 0.9, Match: func(model.RawFacts) bool { return true }},
		{ID: "quiet", Weight: 10, Match: func(model.RawFacts) bool { return false }},
	})
	result := h.Evaluate(cleanFacts())

	assert.Equal(t, service.MaxRuleFloor, result.Floor)
	assert.False(t, valueobject.IsPhishingScore(result.Score))
}

func TestHeuristicEngine_Normalisation(t *testing.T) {
	rules := []service.Rule{
		{ID: "a", Weight: 1, Match: func(model.RawFacts) bool { return true }},
		{ID: "b", Weight: 3, Match: func(model.RawFacts) bool { return false }},
		{ID: "ignored", Weight: 0, Match: func(model.RawFacts) bool { return true }},
	}
	h := service.NewHeuristicEngine(rules)

	result := h.Evaluate(model.RawFacts{})

	assert.Equal(t, 4.0, h.TotalWeight())
	assert.InDelta(t, 0.25, result.Score, 1e-12)
	assert.Equal(t, []string{"a"}, result.Triggered)
	assert.Empty(t, result.Reasons)
}

func TestHeuristicEngine_AllRulesBounded(t *testing.T) {
	rules := service.DefaultRules()
	for i := range rules {
		rules[i].Match = func(model.RawFacts) bool { return true }
	}
	h := service.NewHeuristicEngine(rules)

	f := cleanFacts()
	f.Typosquat = &model.TyposquatMatch{Brand: "paypal.com", Distance: 1}
	result := h.Evaluate(f)

	assert.Len(t, result.Reasons, len(rules))
	assert.InDelta(t, 1.0, result.Score, 1e-9)
}

func TestHeuristicEngine_EmptyRules(t *testing.T) {
	h := service.NewHeuristicEngine(nil)
	assert.Equal(t, 0.0, h.Evaluate(cleanFacts()).Score)
}
