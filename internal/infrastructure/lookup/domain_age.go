package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// ErrNoCreationDate is returned when a registry answered without a usable
// registration date.
var ErrNoCreationDate = errors.New("registry returned no creation date")

// FallbackRDAPEndpoint is the bootstrap redirector used for TLDs without a
// known registry endpoint.
const FallbackRDAPEndpoint = "https://rdap.org/"

var rdapEndpoints = map[string]string{
	"com":    "https://rdap.verisign.com/com/v1/",
	"net":    "https://rdap.verisign.com/net/v1/",
	"org":    "https://rdap.publicinterestregistry.net/rdap/",
	"io":     "https://rdap.nic.io/",
	"dev":    "https://rdap.nic.google/",
	"app":    "https://rdap.nic.google/",
	"uk":     "https://rdap.nominet.uk/uk/",
	"eu":     "https://rdap.eu/",
	"nl":     "https://rdap.sidn.nl/rdap/",
	"au":     "https://rdap.auda.org.au/rdap/",
	"cc":     "https://rdap.verisign.com/cc/v1/",
	"tv":     "https://rdap.verisign.com/tv/v1/",
	"xyz":    "https://rdap.centralnic.com/xyz/",
	"co":     "https://rdap.nic.co/",
	"me":     "https://rdap.nic.me/",
	"ai":     "https://rdap.nic.ai/",
	"info":   "https://rdap.afilias.net/rdap/info/",
	"biz":    "https://rdap.nic.biz/",
	"top":    "https://rdap.nic.top/",
	"site":   "https://rdap.centralnic.com/site/",
	"store":  "https://rdap.centralnic.com/store/",
	"online": "https://rdap.centralnic.com/online/",
}

// whoisDateLayouts are the creation date formats seen in registry responses.
var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"02/01/2006",
	"January 2 2006",
}

// DomainAgeClient implements port.DomainAgeLookup. It queries RDAP first and
// falls back to WHOIS when RDAP has no answer.
type DomainAgeClient struct {
	httpClient *http.Client
	whois      *whois.Client
	logger     *slog.Logger
	baseURL    string
	useWhois   bool
}

// DomainAgeOption configures a DomainAgeClient.
type DomainAgeOption func(*DomainAgeClient)

// WithRDAPBaseURL sends every RDAP query to a single server instead of the
// per-TLD registry table.
func WithRDAPBaseURL(u string) DomainAgeOption {
	return func(c *DomainAgeClient) {
		if u != "" && !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.baseURL = u
	}
}

// WithHTTPClient sets the client used for RDAP.
func WithHTTPClient(h *http.Client) DomainAgeOption {
	return func(c *DomainAgeClient) { c.httpClient = h }
}

// WithoutWhois disables the WHOIS fallback.
func WithoutWhois() DomainAgeOption {
	return func(c *DomainAgeClient) { c.useWhois = false }
}

// NewDomainAgeClient creates a client. The timeout applies to each WHOIS query;
// RDAP requests are bounded by the caller's context.
func NewDomainAgeClient(timeout time.Duration, logger *slog.Logger, opts ...DomainAgeOption) *DomainAgeClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &DomainAgeClient{
		httpClient: &http.Client{Timeout: timeout},
		whois:      whois.NewClient().SetTimeout(timeout),
		logger:     logger,
		useWhois:   true,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CreatedAt returns the registration time of domain.
func (c *DomainAgeClient) CreatedAt(ctx context.Context, domain string) (time.Time, error) {
	created, err := c.rdapCreatedAt(ctx, domain)
	if err == nil {
		return created, nil
	}
	if !c.useWhois || ctx.Err() != nil {
		return time.Time{}, err
	}

	c.logger.DebugContext(ctx, "rdap lookup failed, falling back to whois", "domain", domain, "error", err)
	created, werr := c.whoisCreatedAt(ctx, domain)
	if werr != nil {
		return time.Time{}, fmt.Errorf("rdap: %v; whois: %w", err, werr)
	}
	return created, nil
}

type rdapDomain struct {
	Events []struct {
		Action string `json:"eventAction"`
		Date   string `json:"eventDate"`
	} `json:"events"`
}

func (c *DomainAgeClient) rdapEndpoint(domain string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	tld := domain
	if i := strings.LastIndexByte(domain, '.'); i >= 0 {
		tld = domain[i+1:]
	}
	if ep, ok := rdapEndpoints[tld]; ok {
		return ep
	}
	return FallbackRDAPEndpoint
}

func (c *DomainAgeClient) rdapCreatedAt(ctx context.Context, domain string) (time.Time, error) {
	endpoint := c.rdapEndpoint(domain) + "domain/" + domain

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("build rdap request: %w", err)
	}
	req.Header.Set("Accept", "application/rdap+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("rdap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("rdap %s: status %d", domain, resp.StatusCode)
	}

	var doc rdapDomain
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return time.Time{}, fmt.Errorf("decode rdap response: %w", err)
	}

	for _, ev := range doc.Events {
		if ev.Action != "registration" {
			continue
		}
		t, err := time.Parse(time.RFC3339, ev.Date)
		if err != nil {
			return time.Time{}, fmt.Errorf("rdap registration date %q: %w", ev.Date, err)
		}
		return t, nil
	}
	return time.Time{}, ErrNoCreationDate
}

func (c *DomainAgeClient) whoisCreatedAt(ctx context.Context, domain string) (time.Time, error) {
	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := c.whois.Whois(domain)
		ch <- result{text: text, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case r = <-ch:
	}
	if r.err != nil {
		return time.Time{}, fmt.Errorf("whois query: %w", r.err)
	}
	return parseWhoisCreated(r.text)
}

func parseWhoisCreated(text string) (time.Time, error) {
	info, err := whoisparser.Parse(text)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse whois: %w", err)
	}
	if info.Domain == nil || info.Domain.CreatedDate == "" {
		return time.Time{}, ErrNoCreationDate
	}
	return parseDate(info.Domain.CreatedDate)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range whoisDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised creation date %q", s)
}
