package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/trackota-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatasetsDir       string
	DatasetTracks     []string
	RowLimit          int
	TelemetryRowLimit int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Report publishing configuration.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaTopic         string
	BatchSize          int
	PublishInterval    time.Duration
	PublishConcurrency int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	datasetsDir, err := parseDatasetsDir()
	if err != nil {
		return nil, err
	}

	rowLimit, err := parsePositiveInt("ROW_LIMIT", domain.DefaultRowLimit)
	if err != nil {
		return nil, err
	}
	telemetryRowLimit, err := parsePositiveInt("TELEMETRY_ROW_LIMIT", domain.TelemetryRowLimit)
	if err != nil {
		return nil, err
	}
	concurrency, err := parsePositiveInt("PUBLISH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}

	interval, err := time.ParseDuration(sharedcfg.EnvOrDefault("PUBLISH_INTERVAL", "5m"))
	if err != nil || interval < 0 {
		return nil, errors.New("invalid PUBLISH_INTERVAL")
	}

	kafkaEnabled := false
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid KAFKA_ENABLED")
		}
	}

	cfg := &Config{
		DatasetsDir:       datasetsDir,
		DatasetTracks:     ParseTracks(sharedcfg.EnvOrDefault("DATASET_TRACKS", "barber")),
		RowLimit:          rowLimit,
		TelemetryRowLimit: telemetryRowLimit,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "trackota-dataset-reports"),
		BatchSize:          batchSize,
		PublishInterval:    interval,
		PublishConcurrency: concurrency,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}

	return cfg, nil
}

func parseDatasetsDir() (string, error) {
	if dir := os.Getenv("TRACKOTA_DATASETS_DIR"); dir != "" {
		return dir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve default TRACKOTA_DATASETS_DIR: %w", err)
	}
	return filepath.Join(cwd, "data", "datasets"), nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

// ParseTracks splits a comma separated track list, trimming entries and
// dropping empty ones.
func ParseTracks(s string) []string {
	var tracks []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tracks = append(tracks, t)
		}
	}
	return tracks
}
