package service

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/port"
	"github.com/phishsense/phishsense/internal/domain/valueobject"
)

const (
	// DefaultLookupTimeout bounds each network lookup independently.
	DefaultLookupTimeout = 3 * time.Second

	defaultScheme = "https://"
)

// ExtractorOption configures a FeatureExtractor.
type ExtractorOption func(*FeatureExtractor)

// WithHostResolver enables DNS resolution checks.
func WithHostResolver(r port.HostResolver) ExtractorOption {
	return func(e *FeatureExtractor) { e.resolver = r }
}

// WithCertificateVerifier enables TLS certificate checks for HTTPS URLs.
func WithCertificateVerifier(v port.CertificateVerifier) ExtractorOption {
	return func(e *FeatureExtractor) { e.certs = v }
}

// WithDomainAgeLookup enables registration age lookups.
func WithDomainAgeLookup(l port.DomainAgeLookup) ExtractorOption {
	return func(e *FeatureExtractor) { e.ages = l }
}

// WithLookupTimeout sets the per-lookup timeout.
func WithLookupTimeout(d time.Duration) ExtractorOption {
	return func(e *FeatureExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithClock overrides the time source used to compute domain age.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *FeatureExtractor) { e.now = now }
}

// WithExtractorLogger sets the logger used for lookup degradations.
func WithExtractorLogger(l *slog.Logger) ExtractorOption {
	return func(e *FeatureExtractor) { e.logger = l }
}

// FeatureExtractor parses a URL into RawFacts and a FeatureVector. A lookup
// that is not configured, fails or times out yields its unknown sentinel.
type FeatureExtractor struct {
	resolver port.HostResolver
	certs    port.CertificateVerifier
	ages     port.DomainAgeLookup
	now      func() time.Time
	logger   *slog.Logger
	lists    Lists
	keywords []string
	tlds     map[string]struct{}
	brands   []brand
	timeout  time.Duration
}

// NewFeatureExtractor creates an extractor over the given lists. Without lookup
// options the extractor runs fully offline.
func NewFeatureExtractor(lists Lists, opts ...ExtractorOption) *FeatureExtractor {
	lists = lists.Normalize()
	e := &FeatureExtractor{
		lists:    lists,
		keywords: lists.SuspiciousKeywords,
		tlds:     make(map[string]struct{}, len(lists.SuspiciousTLDs)),
		brands:   newBrands(lists.Brands),
		timeout:  DefaultLookupTimeout,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, tld := range lists.SuspiciousTLDs {
		e.tlds[tld] = struct{}{}
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// parsedURL is the normalised form of the input.
type parsedURL struct {
	raw       string
	u         *url.URL
	host      string
	hadScheme bool
	malformed bool
}

func parseURL(raw string) parsedURL {
	p := parsedURL{raw: strings.TrimSpace(raw)}
	normalized := p.raw
	p.hadScheme = strings.Contains(normalized, "://")
	if !p.hadScheme {
		normalized = defaultScheme + normalized
	}

	u, err := url.Parse(normalized)
	if err != nil {
		p.malformed = true
		return p
	}
	p.u = u

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" {
		p.malformed = true
		return p
	}
	if !isASCII(host) {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			p.malformed = true
			return p
		}
		host = ascii
	}
	p.host = host
	return p
}

// Extract derives the facts and feature vector for raw. It never fails:
// malformed input yields neutral defaults with Malformed set.
func (e *FeatureExtractor) Extract(ctx context.Context, raw string) (model.FeatureVector, model.RawFacts) {
	p := parseURL(raw)

	facts := model.RawFacts{
		URL:         raw,
		Malformed:   p.malformed,
		DomainAge:   valueobject.UnknownDomainAge,
		SSLValid:    valueobject.Unknown,
		DNSResolves: valueobject.Unknown,
	}

	var values [model.FeatureCount]float64
	values[model.FeatureTyposquatDistance] = NoBrandDistance
	values[model.FeatureDomainAgeDays] = facts.DomainAge.Feature()
	if p.hadScheme {
		values[model.FeatureHasScheme] = 1
	}

	if p.malformed {
		if p.u != nil {
			facts.HasHTTPS = strings.EqualFold(p.u.Scheme, "https")
		}
		return model.NewFeatureVector(values), facts
	}

	e.structural(p, &facts, &values)
	e.domain(p, &facts, &values)
	e.lookups(ctx, p, &facts)

	values[model.FeatureDomainAgeDays] = facts.DomainAge.Feature()
	if facts.DomainAge.IsKnown() {
		values[model.FeatureDomainAgeKnown] = 1
	}
	values[model.FeatureSSLValid] = facts.SSLValid.Feature()
	values[model.FeatureDNSResolves] = facts.DNSResolves.Feature()

	return model.NewFeatureVector(values), facts
}

func (e *FeatureExtractor) structural(p parsedURL, facts *model.RawFacts, values *[model.FeatureCount]float64) {
	u := p.u
	lower := strings.ToLower(p.raw)
	query := strings.ToLower(u.RawQuery)

	facts.URLLength = len(p.raw)
	facts.SpecialChars = strings.Count(p.raw, "-") + strings.Count(p.raw, "_") +
		strings.Count(p.raw, "@") + strings.Count(p.raw, "%")
	facts.HasAt = strings.Contains(p.raw, "@")
	facts.HasRedirect = strings.Contains(query, "redirect") || strings.Contains(query, "url=")
	facts.HasHTTPS = strings.EqualFold(u.Scheme, "https")

	for _, kw := range e.keywords {
		if strings.Contains(lower, kw) {
			facts.KeywordHits = append(facts.KeywordHits, kw)
		}
	}

	segments := 0
	for _, s := range strings.Split(u.EscapedPath(), "/") {
		if s != "" {
			segments++
		}
	}

	length := float64(facts.URLLength)
	values[model.FeatureURLLength] = length
	values[model.FeatureHostnameLength] = float64(len(p.host))
	values[model.FeaturePathLength] = float64(len(u.EscapedPath()))
	values[model.FeatureQueryLength] = float64(len(u.RawQuery))
	values[model.FeaturePathSegments] = float64(segments)
	values[model.FeatureNumParams] = float64(len(u.Query()))
	values[model.FeatureNumDots] = float64(strings.Count(p.raw, "."))
	values[model.FeatureNumSpecialChars] = float64(facts.SpecialChars)
	values[model.FeatureNumAtSymbols] = float64(strings.Count(p.raw, "@"))
	values[model.FeatureHasHost] = 1
	values[model.FeatureSuspiciousKeywords] = float64(len(facts.KeywordHits))
	values[model.FeatureHasRedirectParam] = boolFeature(facts.HasRedirect)
	values[model.FeatureHasHTTPS] = boolFeature(facts.HasHTTPS)
	if u.Port() != "" {
		values[model.FeatureHasPort] = 1
	}
	if length > 0 {
		values[model.FeatureDotsToLength] = float64(strings.Count(p.raw, ".")) / length
		values[model.FeatureHyphensToLength] = float64(strings.Count(p.raw, "-")) / length
	}
}

func (e *FeatureExtractor) domain(p parsedURL, facts *model.RawFacts, values *[model.FeatureCount]float64) {
	host := p.host
	facts.Host = host
	facts.IsIP = isIPHost(host)

	digits := 0
	for _, r := range host {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	values[model.FeatureHostDigitRatio] = float64(digits) / float64(len(host))
	values[model.FeatureHostHyphens] = float64(strings.Count(host, "-"))
	values[model.FeatureIsIP] = boolFeature(facts.IsIP)

	if facts.IsIP {
		return
	}

	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "xn--") {
			facts.IsPunycode = true
			break
		}
	}

	suffix, _ := publicsuffix.PublicSuffix(host)
	facts.TLD = suffix
	registered, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		registered = host
	}
	facts.RegisteredDomain = registered

	subdomain := strings.TrimSuffix(strings.TrimSuffix(host, registered), ".")
	if subdomain != "" {
		facts.SubdomainDepth = strings.Count(subdomain, ".") + 1
	}

	last := suffix
	if i := strings.LastIndexByte(suffix, '.'); i >= 0 {
		last = suffix[i+1:]
	}
	_, byLast := e.tlds[last]
	_, bySuffix := e.tlds[suffix]
	facts.SuspiciousTLD = byLast || bySuffix

	for _, s := range e.lists.Shorteners {
		if host == s || strings.HasSuffix(host, "."+s) {
			facts.Shortener = true
			break
		}
	}

	label := registrableLabel(registered)
	distance, match := nearestBrand(label, e.brands)
	facts.Typosquat = match
	facts.BrandInSubdomain = embeddedBrand(subdomain, label, registered, e.brands)

	values[model.FeatureSuspiciousTLD] = boolFeature(facts.SuspiciousTLD)
	values[model.FeatureSubdomainDepth] = float64(facts.SubdomainDepth)
	values[model.FeatureIsPunycode] = boolFeature(facts.IsPunycode)
	values[model.FeatureIsShortened] = boolFeature(facts.Shortener)
	values[model.FeatureTyposquatDistance] = float64(distance)
	values[model.FeatureBrandInSubdomain] = boolFeature(facts.BrandInSubdomain != "")
}

// lookups runs the network checks concurrently, each under its own timeout.
// IP literals resolve trivially and have no registration record.
func (e *FeatureExtractor) lookups(ctx context.Context, p parsedURL, facts *model.RawFacts) {
	var wg sync.WaitGroup

	if facts.IsIP {
		facts.DNSResolves = valueobject.True
	} else if e.resolver != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			facts.DNSResolves = e.resolve(ctx, p.host)
		}()
	}

	if facts.HasHTTPS && e.certs != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			facts.SSLValid = e.verify(ctx, p.host, tlsPort(p.u))
		}()
	}

	if !facts.IsIP && facts.RegisteredDomain != "" && e.ages != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			facts.DomainAge = e.age(ctx, facts.RegisteredDomain)
		}()
	}

	wg.Wait()
}

func (e *FeatureExtractor) resolve(ctx context.Context, host string) valueobject.TriState {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	n, err := e.resolver.LookupHost(ctx, host)
	if err != nil {
		e.logger.DebugContext(ctx, "dns lookup unresolved", "host", host, "error", err)
		return valueobject.Unknown
	}
	return valueobject.TriStateOf(n > 0)
}

func (e *FeatureExtractor) verify(ctx context.Context, host string, port int) valueobject.TriState {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ok, err := e.certs.VerifyCertificate(ctx, host, port)
	if err != nil {
		e.logger.DebugContext(ctx, "tls check unresolved", "host", host, "error", err)
		return valueobject.Unknown
	}
	return valueobject.TriStateOf(ok)
}

func (e *FeatureExtractor) age(ctx context.Context, domain string) valueobject.DomainAge {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	created, err := e.ages.CreatedAt(ctx, domain)
	if err != nil || created.IsZero() {
		e.logger.DebugContext(ctx, "domain age unresolved", "domain", domain, "error", err)
		return valueobject.UnknownDomainAge
	}
	return valueobject.DomainAgeOf(int(e.now().Sub(created).Hours() / 24))
}

func tlsPort(u *url.URL) int {
	if p, err := strconv.Atoi(u.Port()); err == nil && p > 0 {
		return p
	}
	return 443
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
