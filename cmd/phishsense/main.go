// Command phishsense classifies a URL as phishing or legitimate.
//
// Usage:
//
//	phishsense [--json] [--verbose] [--model PATH] [--timeout D] [--offline] [--no-color] URL
//
// The exit code is 0 for a legitimate URL, 1 for phishing and 2 when no
// verdict could be produced.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/phishsense/phishsense/internal/application/dto"
	"github.com/phishsense/phishsense/internal/application/usecase"
	"github.com/phishsense/phishsense/internal/infrastructure/config"
	"github.com/phishsense/phishsense/internal/infrastructure/pipeline"
	"github.com/phishsense/phishsense/internal/presentation/cli"
	grpcpresentation "github.com/phishsense/phishsense/internal/presentation/grpc"
	"github.com/phishsense/phishsense/pkg/observability"
	"github.com/phishsense/phishsense/pkg/tlsutil"
)

type options struct {
	json     bool
	verbose  bool
	offline  bool
	noColor  bool
	model    string
	lists    string
	server   string
	serverCA string
	timeout  time.Duration
	url      string
}

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("phishsense", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.json, "json", false, "Print the result as JSON")
	fs.BoolVar(&opts.verbose, "verbose", false, "Include features, lookups and component scores")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose (alias)")
	fs.BoolVar(&opts.offline, "offline", false, "Skip DNS, TLS and domain age lookups")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&opts.model, "model", "", "Model artifact path (default $MODEL_PATH)")
	fs.StringVar(&opts.lists, "lists", "", "Detection lists YAML file (default $DETECTION_LISTS_FILE)")
	fs.StringVar(&opts.server, "server", "", "Ask a phishsense server at host:port instead of detecting locally")
	fs.StringVar(&opts.serverCA, "server-ca", "", "CA certificate for a TLS server")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Per-lookup timeout (default $LOOKUP_TIMEOUT)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: phishsense [flags] URL")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errors.New("exactly one URL is required")
	}
	opts.url = fs.Arg(0)
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cli.ExitSafe
		}
		return cli.ExitFatal
	}

	cli.SetNoColor(opts.noColor || os.Getenv("NO_COLOR") != "")
	printer := cli.NewPrinter(stdout, opts.json)
	fail := func(err error) int {
		if opts.json {
			_ = printer.PrintError(err)
		} else {
			_ = cli.NewPrinter(stderr, false).PrintError(err)
		}
		return cli.ExitFatal
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	logger := observability.InitLogger(observability.LogConfig{
		Output: stderr,
		Level:  cliLogLevel(),
		Format: cfg.LogFormat,
	})

	var report cli.Report
	if opts.server != "" {
		report, err = detectRemote(ctx, opts)
	} else {
		if opts.model != "" {
			cfg.ModelPath = opts.model
		}
		if opts.lists != "" {
			cfg.ListsFile = opts.lists
		}
		if opts.timeout > 0 {
			cfg.LookupTimeout = opts.timeout
		}
		if opts.offline {
			cfg.NetworkLookups = false
		}

		var p *pipeline.Pipeline
		if p, err = pipeline.New(pipeline.FromConfig(cfg, logger)); err != nil {
			return fail(err)
		}
		var resp dto.DetectionResponse
		resp, err = usecase.NewDetectURL(p.Detector, logger).
			Execute(ctx, dto.DetectRequest{URL: opts.url, Verbose: opts.verbose})
		report = cli.FromResponse(resp)
	}
	if err != nil {
		return fail(err)
	}

	if err := printer.Print(report); err != nil {
		return fail(err)
	}
	return report.ExitCode()
}

func detectRemote(ctx context.Context, opts options) (cli.Report, error) {
	var creds credentials.TransportCredentials = insecure.NewCredentials()
	if opts.serverCA != "" {
		var err error
		if creds, err = tlsutil.ClientTLSConfig(opts.serverCA, false); err != nil {
			return cli.Report{}, err
		}
	}

	conn, err := grpclib.NewClient(opts.server, grpclib.WithTransportCredentials(creds))
	if err != nil {
		return cli.Report{}, fmt.Errorf("connect to %s: %w", opts.server, err)
	}
	defer conn.Close()

	timeout := 30 * time.Second
	if opts.timeout > 0 {
		timeout = 4 * opts.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := grpcpresentation.NewDetectionServiceClient(conn).
		Detect(ctx, &grpcpresentation.DetectRequest{URL: opts.url, Verbose: opts.verbose})
	if err != nil {
		return cli.Report{}, err
	}
	return cli.FromMessage(resp.Detection, opts.verbose), nil
}

// cliLogLevel keeps diagnostics quiet unless LOG_LEVEL asks otherwise.
func cliLogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "warn"
}
