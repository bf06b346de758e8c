package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/phishsense/phishsense/internal/domain/service"
	pkgkafka "github.com/phishsense/phishsense/pkg/kafka"
	"github.com/phishsense/phishsense/pkg/tlsutil"
)

// Config holds all configuration for the detection service and CLI.
type Config struct {
	GRPCPort    string
	HTTPPort    string
	Environment string
	LogLevel    string
	LogFormat   string

	// DatabaseURL enables detection history when set.
	DatabaseURL   string
	MigrationsDir string

	// KafkaBrokers enables detection events and queued scans when set.
	KafkaBrokers       []string
	KafkaTopic         string
	KafkaScanTopic     string
	KafkaConsumerGroup string
	KafkaTLS           bool

	ModelPath      string
	ListsFile      string
	LookupTimeout  time.Duration
	NetworkLookups bool
	DNSServers     []string
	RDAPBaseURL    string

	RateLimitRPS   float64
	RateLimitBurst int

	OTLPEndpoint    string
	GRPCTLSCertFile string
	GRPCTLSKeyFile  string
	// GRPCTLSDevCertDir holds generated development certificates. It is only
	// honoured in development and never together with a real key pair.
	GRPCTLSDevCertDir string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		GRPCPort:           getEnv("GRPC_PORT", "9090"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", ""),
		KafkaBrokers:       pkgkafka.ParseBrokers(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "phishsense.detections"),
		KafkaScanTopic:     getEnv("KAFKA_SCAN_TOPIC", ""),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "phishsense"),
		ModelPath:          getEnv("MODEL_PATH", "models/phishing_model.json"),
		ListsFile:          getEnv("DETECTION_LISTS_FILE", ""),
		DNSServers:         splitList(getEnv("DNS_SERVER", "")),
		RDAPBaseURL:        getEnv("RDAP_BASE_URL", ""),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		GRPCTLSCertFile:    getEnv("GRPC_TLS_CERT_FILE", ""),
		GRPCTLSKeyFile:     getEnv("GRPC_TLS_KEY_FILE", ""),
		GRPCTLSDevCertDir:  getEnv("GRPC_TLS_DEV_CERT_DIR", ""),
	}

	var err error
	if cfg.LookupTimeout, err = getDuration("LOOKUP_TIMEOUT", service.DefaultLookupTimeout); err != nil {
		return nil, err
	}
	if cfg.NetworkLookups, err = getBool("NETWORK_LOOKUPS", true); err != nil {
		return nil, err
	}
	if cfg.KafkaTLS, err = getBool("KAFKA_TLS", false); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	if cfg.LookupTimeout <= 0 {
		return nil, fmt.Errorf("LOOKUP_TIMEOUT must be positive, got %s", cfg.LookupTimeout)
	}
	if (cfg.GRPCTLSCertFile == "") != (cfg.GRPCTLSKeyFile == "") {
		return nil, fmt.Errorf("GRPC_TLS_CERT_FILE and GRPC_TLS_KEY_FILE must be set together")
	}
	if cfg.GRPCTLSDevCertDir != "" {
		if cfg.Environment != "development" {
			return nil, fmt.Errorf("GRPC_TLS_DEV_CERT_DIR is only allowed when ENVIRONMENT=development")
		}
		if cfg.GRPCTLSCertFile != "" {
			return nil, fmt.Errorf("GRPC_TLS_DEV_CERT_DIR and GRPC_TLS_CERT_FILE are mutually exclusive")
		}
	}
	return cfg, nil
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// GRPCTLSFiles returns the gRPC server key pair, generating development
// certificates when GRPCTLSDevCertDir is set. Empty paths mean plaintext.
func (c *Config) GRPCTLSFiles() (certFile, keyFile string, err error) {
	if c.GRPCTLSCertFile != "" || c.GRPCTLSDevCertDir == "" {
		return c.GRPCTLSCertFile, c.GRPCTLSKeyFile, nil
	}
	return tlsutil.DevServerFiles(c.GRPCTLSDevCertDir, devCertHosts)
}

var devCertHosts = []string{"localhost", "127.0.0.1", "::1"}

// HistoryEnabled reports whether detections are persisted.
func (c *Config) HistoryEnabled() bool { return c.DatabaseURL != "" }

// EventsEnabled reports whether detection events are published.
func (c *Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Kafka returns the broker connection settings.
func (c *Config) Kafka() pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       c.KafkaBrokers,
		ConsumerGroup: c.KafkaConsumerGroup,
		TLS:           c.KafkaTLS,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, defaultValue int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
