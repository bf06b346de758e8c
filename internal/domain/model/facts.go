package model

import "github.com/phishsense/phishsense/internal/domain/valueobject"

// TyposquatMatch names the brand domain a host imitates.
type TyposquatMatch struct {
	Brand    string `json:"brand"`
	Distance int    `json:"distance"`
}

// RawFacts holds the intermediate observations about a URL that heuristic rules
// evaluate directly. Network-dependent facts are tri-state.
type RawFacts struct {
	URL              string                `json:"url"`
	Host             string                `json:"host"`
	RegisteredDomain string                `json:"registered_domain"`
	TLD              string                `json:"tld"`
	URLLength        int                   `json:"url_length"`
	SpecialChars     int                   `json:"special_chars"`
	SubdomainDepth   int                   `json:"subdomain_depth"`
	KeywordHits      []string              `json:"keyword_hits"`
	Malformed        bool                  `json:"malformed"`
	IsIP             bool                  `json:"is_ip"`
	IsPunycode       bool                  `json:"is_punycode"`
	HasHTTPS         bool                  `json:"has_https"`
	HasAt            bool                  `json:"has_at"`
	HasRedirect      bool                  `json:"has_redirect"`
	SuspiciousTLD    bool                  `json:"suspicious_tld"`
	Shortener        bool                  `json:"shortener"`
	BrandInSubdomain string                `json:"brand_in_subdomain,omitempty"`
	Typosquat        *TyposquatMatch       `json:"typosquat,omitempty"`
	DomainAge        valueobject.DomainAge `json:"domain_age"`
	SSLValid         valueobject.TriState  `json:"ssl_valid"`
	DNSResolves      valueobject.TriState  `json:"dns_resolves"`
}

// Unresolved reports whether the URL produced no usable host.
func (f RawFacts) Unresolved() bool {
	return f.Malformed || f.Host == ""
}
