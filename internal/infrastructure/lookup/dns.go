package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/miekg/dns"
)

// DefaultResolvers are used when no resolver is configured and the system
// configuration cannot be read.
var DefaultResolvers = []string{"1.1.1.1:53", "8.8.8.8:53"}

const defaultDNSTimeout = 2 * time.Second

// DNSResolver implements port.HostResolver with direct A/AAAA queries.
type DNSResolver struct {
	servers []string
	timeout time.Duration
	logger  *slog.Logger
}

// NewDNSResolver creates a resolver that queries servers in order. Servers
// without a port default to 53. An empty list falls back to /etc/resolv.conf
// and then DefaultResolvers.
func NewDNSResolver(servers []string, timeout time.Duration, logger *slog.Logger) *DNSResolver {
	if len(servers) == 0 {
		servers = systemResolvers()
	}
	normalized := make([]string, 0, len(servers))
	for _, s := range servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		normalized = append(normalized, s)
	}
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DNSResolver{servers: normalized, timeout: timeout, logger: logger}
}

func systemResolvers() []string {
	cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(cfg.Servers) == 0 {
		return DefaultResolvers
	}
	out := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		out = append(out, net.JoinHostPort(s, cfg.Port))
	}
	return out
}

// LookupHost returns the number of A and AAAA records for host. NXDOMAIN and
// empty answers return zero with a nil error.
func (r *DNSResolver) LookupHost(ctx context.Context, host string) (int, error) {
	total := 0
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg, err := r.query(ctx, host, qtype)
		if err != nil {
			return 0, err
		}
		if msg.Rcode == dns.RcodeNameError {
			return 0, nil
		}
		if msg.Rcode != dns.RcodeSuccess {
			return 0, fmt.Errorf("dns %s %s: %s", dns.TypeToString[qtype], host, dns.RcodeToString[msg.Rcode])
		}
		for _, rr := range msg.Answer {
			switch rr.(type) {
			case *dns.A, *dns.AAAA:
				total++
			}
		}
		if total > 0 {
			return total, nil
		}
	}
	return total, nil
}

func (r *DNSResolver) query(ctx context.Context, host string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		resp, err := r.exchange(ctx, msg, server)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		r.logger.DebugContext(ctx, "dns resolver failed, trying next", "resolver", server, "error", err)
	}
	if lastErr == nil {
		lastErr = errors.New("no dns resolvers configured")
	}
	return nil, fmt.Errorf("dns %s %s: %w", dns.TypeToString[qtype], host, lastErr)
}

// exchange sends msg over UDP and retries over TCP when the answer is truncated.
func (r *DNSResolver) exchange(ctx context.Context, msg *dns.Msg, server string) (*dns.Msg, error) {
	client := &dns.Client{Net: "udp", Timeout: r.timeout}
	resp, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		tcp := &dns.Client{Net: "tcp", Timeout: r.timeout}
		resp, _, err = tcp.ExchangeContext(ctx, msg, server)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}
