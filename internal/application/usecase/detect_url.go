package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/phishsense/phishsense/internal/application/dto"
	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/domain/port"
)

const instrumentationName = "github.com/phishsense/phishsense/internal/application/usecase"

// MaxURLLength bounds the URLs accepted by the service surfaces.
const MaxURLLength = 8192

// ErrInvalidURL is returned for empty or oversized input.
var ErrInvalidURL = errors.New("invalid url")

// URLDetector runs the detection pipeline. *service.Detector implements it.
type URLDetector interface {
	Detect(ctx context.Context, rawURL string) (model.DetectionResult, error)
}

// DetectURL is the use case for classifying a URL and recording the outcome.
type DetectURL struct {
	detector  URLDetector
	repo      port.DetectionRepository
	publisher port.EventPublisher
	logger    *slog.Logger
	tracer    trace.Tracer
	counter   metric.Int64Counter
	now       func() time.Time
}

// Option configures DetectURL.
type Option func(*DetectURL)

// WithRepository stores every detection.
func WithRepository(repo port.DetectionRepository) Option {
	return func(uc *DetectURL) { uc.repo = repo }
}

// WithPublisher publishes the detection events.
func WithPublisher(publisher port.EventPublisher) Option {
	return func(uc *DetectURL) { uc.publisher = publisher }
}

// WithMeterProvider counts detections by threat level.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(uc *DetectURL) {
		counter, err := provider.Meter(instrumentationName).Int64Counter("phishsense.detections",
			metric.WithDescription("Detections by threat level and classifier availability"))
		if err == nil {
			uc.counter = counter
		}
	}
}

// WithNow overrides the detection clock.
func WithNow(now func() time.Time) Option {
	return func(uc *DetectURL) { uc.now = now }
}

// NewDetectURL creates a new DetectURL use case. History and events are off
// unless enabled with options.
func NewDetectURL(detector URLDetector, logger *slog.Logger, opts ...Option) *DetectURL {
	if logger == nil {
		logger = slog.Default()
	}
	counter, _ := noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("phishsense.detections")
	uc := &DetectURL{
		detector: detector,
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		counter:  counter,
		now:      time.Now,
	}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

// Execute detects the URL, stores the detection and publishes its events.
// A failed publish is logged; a failed save is returned.
func (uc *DetectURL) Execute(ctx context.Context, req dto.DetectRequest) (dto.DetectionResponse, error) {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return dto.DetectionResponse{}, fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	if len(rawURL) > MaxURLLength {
		return dto.DetectionResponse{}, fmt.Errorf("%w: url exceeds %d bytes", ErrInvalidURL, MaxURLLength)
	}

	ctx, span := uc.tracer.Start(ctx, "DetectURL")
	defer span.End()

	// 1. Run the detection pipeline.
	result, err := uc.detector.Detect(ctx, rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.DetectionResponse{}, fmt.Errorf("failed to detect url: %w", err)
	}

	// 2. Record the detection aggregate.
	detection, err := model.NewDetection(result, uc.now())
	if err != nil {
		return dto.DetectionResponse{}, fmt.Errorf("failed to record detection: %w", err)
	}
	span.SetAttributes(
		attribute.String("detection.id", detection.ID().String()),
		attribute.String("detection.threat_level", result.ThreatLevel.String()),
		attribute.String("detection.verdict", result.Verdict().String()),
	)
	uc.counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("threat_level", result.ThreatLevel.String()),
		attribute.Bool("classifier_available", result.ClassifierAvailable()),
	))

	// 3. Persist the detection.
	if uc.repo != nil {
		if err := uc.repo.Save(ctx, detection); err != nil {
			return dto.DetectionResponse{}, fmt.Errorf("failed to save detection: %w", err)
		}
	}

	// 4. Publish domain events.
	events := detection.DomainEvents()
	if uc.publisher != nil && len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			uc.logger.WarnContext(ctx, "failed to publish detection events",
				"detection_id", detection.ID(),
				"error", err,
			)
		}
	}

	uc.logger.InfoContext(ctx, "url detected",
		"detection_id", detection.ID(),
		"host", detection.Host(),
		"threat_level", result.ThreatLevel.String(),
		"verdict", result.Verdict().String(),
		"classifier_available", result.ClassifierAvailable(),
	)

	return dto.FromResult(detection, result, req.Verbose), nil
}

// IsFatal reports whether err means the model and extractor disagree.
func IsFatal(err error) bool {
	return errors.Is(err, port.ErrFeatureContract)
}
