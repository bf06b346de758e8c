package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishsense/phishsense/internal/application/usecase"
	"github.com/phishsense/phishsense/internal/domain/model"
	pkgkafka "github.com/phishsense/phishsense/pkg/kafka"
)

type recordingDetector struct {
	urls []string
	err  error
}

func (d *recordingDetector) Detect(_ context.Context, rawURL string) (model.DetectionResult, error) {
	d.urls = append(d.urls, rawURL)
	if d.err != nil {
		return model.DetectionResult{}, d.err
	}
	facts := model.RawFacts{URL: rawURL, Host: "example.com"}
	return model.NewDetectionResult(rawURL, 0.1, model.HeuristicResult{Score: 0.1}, nil, nil, model.FeatureVector{}, facts), nil
}

func newHandler(d *recordingDetector) *ScanHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScanHandler(usecase.NewDetectURL(d, logger), logger)
}

func TestScanHandler_Handle(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantURL []string
	}{
		{name: "json request", value: `{"url":"https://example.com/a"}`, wantURL: []string{"https://example.com/a"}},
		{name: "bare url", value: "  https://example.com/b\n", wantURL: []string{"https://example.com/b"}},
		{name: "empty message is dropped", value: "   "},
		{name: "broken json is dropped", value: `{"url":`},
		{name: "json without url is dropped", value: `{"href":"https://example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &recordingDetector{}
			err := newHandler(d).Handle(context.Background(), pkgkafka.Message{Value: []byte(tt.value)})
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, d.urls)
		})
	}
}

func TestScanHandler_DetectionFailureIsReturned(t *testing.T) {
	d := &recordingDetector{err: errors.New("resolver down")}
	err := newHandler(d).Handle(context.Background(), pkgkafka.Message{Value: []byte("https://example.com")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver down")
}
