package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishsense/phishsense/internal/application/usecase"
	"github.com/phishsense/phishsense/internal/domain/model"
	"github.com/phishsense/phishsense/internal/infrastructure/ml"
	"github.com/phishsense/phishsense/internal/infrastructure/pipeline"
	"github.com/phishsense/phishsense/internal/presentation/cli"
	grpcpresentation "github.com/phishsense/phishsense/internal/presentation/grpc"
	"github.com/phishsense/phishsense/pkg/tlsutil"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("MODEL_PATH", filepath.Join(t.TempDir(), "absent.json"))
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_JSONExitCodeFollowsVerdict(t *testing.T) {
	for _, url := range []string{
		"http://192.168.1.1/secure-login/verify-account",
		"https://www.wikipedia.org/wiki/Go",
	} {
		t.Run(url, func(t *testing.T) {
			code, stdout, _ := runCLI(t, "--json", "--offline", url)

			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(stdout), &got))
			assert.Equal(t, url, got["url"])
			require.Contains(t, got, "is_phishing")
			require.Contains(t, got, "threat_level")

			want := cli.ExitSafe
			if got["is_phishing"] == true {
				want = cli.ExitPhishing
			}
			assert.Equal(t, want, code)
		})
	}
}

func TestRun_VerbosePlainOutput(t *testing.T) {
	_, stdout, _ := runCLI(t, "--offline", "--no-color", "--verbose", "http://192.168.1.1/login")

	assert.Contains(t, stdout, "Threat level:")
	assert.Contains(t, stdout, "IP address used instead of domain name")
	assert.Contains(t, stdout, "unavailable")
	for _, name := range model.FeatureNames() {
		assert.Contains(t, stdout, name)
	}
}

func TestRun_FatalDiagnostics(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		code, _, stderr := runCLI(t, "--json")
		assert.Equal(t, cli.ExitFatal, code)
		assert.Contains(t, stderr, "Usage")
	})

	t.Run("unknown flag", func(t *testing.T) {
		code, _, _ := runCLI(t, "--bogus", "https://example.com")
		assert.Equal(t, cli.ExitFatal, code)
	})

	t.Run("blank url", func(t *testing.T) {
		code, _, stderr := runCLI(t, "--offline", "  ")
		assert.Equal(t, cli.ExitFatal, code)
		assert.Contains(t, stderr, "url is required")
	})

	t.Run("model out of sync with extractor", func(t *testing.T) {
		names := model.FeatureNames()[:model.FeatureCount-1]
		artifact := ml.Artifact{
			Format:   ml.ArtifactFormat,
			Version:  ml.ArtifactVersion,
			Kind:     ml.KindLogistic,
			Features: names,
			Logistic: &ml.LogisticParams{Coefficients: make([]float64, len(names))},
		}
		data, err := json.Marshal(artifact)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		code, stdout, _ := runCLI(t, "--json", "--offline", "--model", path, "https://example.com")
		assert.Equal(t, cli.ExitFatal, code)
		assert.Contains(t, stdout, "feature contract violation")
	})
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCLI(t, "-h")
	assert.Equal(t, cli.ExitSafe, code)
	assert.Contains(t, stderr, "-offline")
}

func TestRun_RemoteServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := pipeline.New(pipeline.Options{Logger: logger})
	require.NoError(t, err)

	handler := grpcpresentation.NewDetectionServiceHandler(
		usecase.NewDetectURL(p.Detector, logger), usecase.NewGetDetection(nil), usecase.NewListDetections(nil), logger)
	srv, err := grpcpresentation.NewServer(handler, grpcpresentation.ServerConfig{}, logger)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	code, stdout, _ := runCLI(t, "--json", "--verbose", "--server", lis.Addr().String(), "http://192.168.1.1/login")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "http://192.168.1.1/login", got["url"])
	assert.Len(t, got["features"], model.FeatureCount)
	assert.Contains(t, []int{cli.ExitSafe, cli.ExitPhishing}, code)
}

func TestRun_RemoteServerTLS(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := pipeline.New(pipeline.Options{Logger: logger})
	require.NoError(t, err)

	dir := t.TempDir()
	certFile, keyFile, err := tlsutil.DevServerFiles(dir, []string{"127.0.0.1"})
	require.NoError(t, err)

	handler := grpcpresentation.NewDetectionServiceHandler(
		usecase.NewDetectURL(p.Detector, logger), usecase.NewGetDetection(nil), usecase.NewListDetections(nil), logger)
	srv, err := grpcpresentation.NewServer(handler, grpcpresentation.ServerConfig{CertFile: certFile, KeyFile: keyFile}, logger)
	require.NoError(t, err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	code, stdout, _ := runCLI(t, "--json", "--server", lis.Addr().String(),
		"--server-ca", filepath.Join(dir, tlsutil.CAFile), "http://3232235777/login")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), stdout)
	assert.Equal(t, "http://3232235777/login", got["url"])
	assert.Contains(t, got["reasons"], "Domain is an IP address")
	assert.Contains(t, []int{cli.ExitSafe, cli.ExitPhishing}, code)
}
