package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type stubResolver struct {
	n   int
	err error
}

func (s stubResolver) LookupHost(context.Context, string) (int, error) { return s.n, s.err }

type stubVerifier struct{ ok bool }

func (s stubVerifier) VerifyCertificate(context.Context, string, int) (bool, error) { return s.ok, nil }

type stubAges struct{ err error }

func (s stubAges) CreatedAt(context.Context, string) (time.Time, error) {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), s.err
}

func outcomeCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "phishsense.lookup.outcomes" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				lookup, _ := dp.Attributes.Value(attribute.Key("lookup"))
				outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
				counts[lookup.AsString()+"/"+outcome.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestInstruments_RecordOutcomes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	in, err := NewInstruments(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)
	ctx := context.Background()

	n, err := in.Resolver(stubResolver{n: 2}).LookupHost(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, _ = in.Resolver(stubResolver{}).LookupHost(ctx, "missing.example")
	_, err = in.Resolver(stubResolver{err: errors.New("timeout")}).LookupHost(ctx, "slow.example")
	require.Error(t, err)

	ok, err := in.Verifier(stubVerifier{ok: true}).VerifyCertificate(ctx, "example.com", 443)
	require.NoError(t, err)
	assert.True(t, ok)
	_, _ = in.Verifier(stubVerifier{}).VerifyCertificate(ctx, "example.com", 443)

	created, err := in.DomainAges(stubAges{}).CreatedAt(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, 2020, created.Year())
	_, _ = in.DomainAges(stubAges{err: ErrNoCreationDate}).CreatedAt(ctx, "example.com")

	assert.Equal(t, map[string]int64{
		"dns/resolved":       1,
		"dns/nxdomain":       1,
		"dns/unknown":        1,
		"tls/valid":          1,
		"tls/invalid":        1,
		"domain_age/found":   1,
		"domain_age/unknown": 1,
	}, outcomeCounts(t, reader))
}
