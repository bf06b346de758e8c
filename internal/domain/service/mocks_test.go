package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/phishsense/phishsense/internal/domain/model"
)

var errLookup = errors.New("lookup failed")

type mockResolver struct {
	err   error
	count int
}

func (m *mockResolver) LookupHost(_ context.Context, _ string) (int, error) {
	return m.count, m.err
}

type mockVerifier struct {
	err   error
	valid bool
	mu    sync.Mutex
	calls []string
}

func (m *mockVerifier) VerifyCertificate(_ context.Context, host string, _ int) (bool, error) {
	m.mu.Lock()
	m.calls = append(m.calls, host)
	m.mu.Unlock()
	return m.valid, m.err
}

type mockAges struct {
	err     error
	created time.Time
}

func (m *mockAges) CreatedAt(_ context.Context, _ string) (time.Time, error) {
	return m.created, m.err
}

// blockingLookups never answers before the context expires.
type blockingLookups struct{}

func (blockingLookups) LookupHost(ctx context.Context, _ string) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func (blockingLookups) VerifyCertificate(ctx context.Context, _ string, _ int) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func (blockingLookups) CreatedAt(ctx context.Context, _ string) (time.Time, error) {
	<-ctx.Done()
	return time.Time{}, ctx.Err()
}

type mockClassifier struct {
	err         error
	probability float64
	calls       int
}

func (m *mockClassifier) Predict(_ context.Context, _ model.FeatureVector) (float64, error) {
	m.calls++
	return m.probability, m.err
}
