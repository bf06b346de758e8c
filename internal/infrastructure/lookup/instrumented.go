package lookup

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/phishsense/phishsense/internal/domain/port"
)

const instrumentationName = "github.com/phishsense/phishsense/internal/infrastructure/lookup"

// Instruments records a span and an outcome counter for every lookup.
type Instruments struct {
	tracer   trace.Tracer
	outcomes metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewInstruments creates lookup instruments on the given meter provider and
// the global tracer provider.
func NewInstruments(provider metric.MeterProvider) (*Instruments, error) {
	meter := provider.Meter(instrumentationName)

	outcomes, err := meter.Int64Counter("phishsense.lookup.outcomes",
		metric.WithDescription("Network lookups by lookup name and outcome"))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("phishsense.lookup.duration",
		metric.WithDescription("Network lookup latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		tracer:   otel.Tracer(instrumentationName),
		outcomes: outcomes,
		latency:  latency,
	}, nil
}

func (in *Instruments) observe(ctx context.Context, lookup, target string, fn func(context.Context) (string, error)) {
	ctx, span := in.tracer.Start(ctx, "lookup."+lookup, trace.WithAttributes(attribute.String("lookup.target", target)))
	defer span.End()

	start := time.Now()
	outcome, err := fn(ctx)
	if err != nil {
		outcome = "unknown"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("lookup.outcome", outcome))

	attrs := metric.WithAttributes(attribute.String("lookup", lookup), attribute.String("outcome", outcome))
	in.outcomes.Add(ctx, 1, attrs)
	in.latency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attribute.String("lookup", lookup)))
}

// Resolver wraps r with instrumentation.
func (in *Instruments) Resolver(r port.HostResolver) port.HostResolver {
	return instrumentedResolver{in: in, next: r}
}

// Verifier wraps v with instrumentation.
func (in *Instruments) Verifier(v port.CertificateVerifier) port.CertificateVerifier {
	return instrumentedVerifier{in: in, next: v}
}

// DomainAges wraps l with instrumentation.
func (in *Instruments) DomainAges(l port.DomainAgeLookup) port.DomainAgeLookup {
	return instrumentedAges{in: in, next: l}
}

type instrumentedResolver struct {
	in   *Instruments
	next port.HostResolver
}

func (r instrumentedResolver) LookupHost(ctx context.Context, host string) (n int, err error) {
	r.in.observe(ctx, "dns", host, func(ctx context.Context) (string, error) {
		n, err = r.next.LookupHost(ctx, host)
		if n == 0 {
			return "nxdomain", err
		}
		return "resolved", err
	})
	return n, err
}

type instrumentedVerifier struct {
	in   *Instruments
	next port.CertificateVerifier
}

func (v instrumentedVerifier) VerifyCertificate(ctx context.Context, host string, p int) (ok bool, err error) {
	v.in.observe(ctx, "tls", host, func(ctx context.Context) (string, error) {
		ok, err = v.next.VerifyCertificate(ctx, host, p)
		if !ok {
			return "invalid", err
		}
		return "valid", err
	})
	return ok, err
}

type instrumentedAges struct {
	in   *Instruments
	next port.DomainAgeLookup
}

func (a instrumentedAges) CreatedAt(ctx context.Context, domain string) (t time.Time, err error) {
	a.in.observe(ctx, "domain_age", domain, func(ctx context.Context) (string, error) {
		t, err = a.next.CreatedAt(ctx, domain)
		return "found", err
	})
	return t, err
}
