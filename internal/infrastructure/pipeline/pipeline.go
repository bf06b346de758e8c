// Package pipeline assembles the detection pipeline from configuration.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/phishsense/phishsense/internal/domain/service"
	"github.com/phishsense/phishsense/internal/infrastructure/config"
	"github.com/phishsense/phishsense/internal/infrastructure/lookup"
	"github.com/phishsense/phishsense/internal/infrastructure/ml"
)

// Options selects the pipeline's collaborators.
type Options struct {
	// Lists defaults to the built-in vocabularies; ListsFile overrides it.
	Lists     *service.Lists
	ListsFile string
	ModelPath string

	// NetworkLookups off runs DNS, TLS and domain age checks as unknown.
	NetworkLookups bool
	LookupTimeout  time.Duration
	DNSServers     []string
	RDAPBaseURL    string

	// MeterProvider instruments the network lookups when set.
	MeterProvider metric.MeterProvider
	Logger        *slog.Logger
}

// FromConfig maps service configuration to pipeline options.
func FromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		ListsFile:      cfg.ListsFile,
		ModelPath:      cfg.ModelPath,
		NetworkLookups: cfg.NetworkLookups,
		LookupTimeout:  cfg.LookupTimeout,
		DNSServers:     cfg.DNSServers,
		RDAPBaseURL:    cfg.RDAPBaseURL,
		Logger:         logger,
	}
}

// Pipeline is an assembled detector with the classifier it scores with.
type Pipeline struct {
	Detector   *service.Detector
	Classifier *ml.Classifier
}

// New builds the detector. The classifier artifact is loaded lazily on the
// first detection.
func New(opts Options) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.LookupTimeout
	if timeout <= 0 {
		timeout = service.DefaultLookupTimeout
	}

	lists := service.DefaultLists()
	switch {
	case opts.ListsFile != "":
		loaded, err := config.LoadLists(opts.ListsFile)
		if err != nil {
			return nil, err
		}
		lists = loaded
	case opts.Lists != nil:
		lists = opts.Lists.Normalize()
	}

	extractorOpts := []service.ExtractorOption{
		service.WithLookupTimeout(timeout),
		service.WithExtractorLogger(logger),
	}
	if opts.NetworkLookups {
		var (
			resolver = lookup.NewDNSResolver(opts.DNSServers, timeout, logger)
			verifier = lookup.NewTLSVerifier(nil)
			ages     = lookup.NewDomainAgeClient(timeout, logger, lookup.WithRDAPBaseURL(opts.RDAPBaseURL))
		)
		if opts.MeterProvider != nil {
			instruments, err := lookup.NewInstruments(opts.MeterProvider)
			if err != nil {
				return nil, fmt.Errorf("create lookup instruments: %w", err)
			}
			extractorOpts = append(extractorOpts,
				service.WithHostResolver(instruments.Resolver(resolver)),
				service.WithCertificateVerifier(instruments.Verifier(verifier)),
				service.WithDomainAgeLookup(instruments.DomainAges(ages)),
			)
		} else {
			extractorOpts = append(extractorOpts,
				service.WithHostResolver(resolver),
				service.WithCertificateVerifier(verifier),
				service.WithDomainAgeLookup(ages),
			)
		}
	}

	classifier := ml.NewClassifier(opts.ModelPath, logger)
	detector := service.NewDetector(
		service.NewFeatureExtractor(lists, extractorOpts...),
		service.NewHeuristicEngine(service.DefaultRules()),
		classifier,
		service.NewScoreCombiner(),
		logger,
	)

	return &Pipeline{Detector: detector, Classifier: classifier}, nil
}
