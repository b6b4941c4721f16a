package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	DataDir          string
	TrainFile        string
	PredictionFile   string
	OutputPredFile   string
	OutputSortedFile string

	HeatmapFile   string
	HistogramFile string
	ScatterFile   string

	HumidityConstant float64
	LassoAlpha       float64
	LassoMaxIter     int
	LassoTol         float64

	// Optional exports; empty disables.
	GeoJSONFile  string
	XLSXFile     string
	HotspotLimit int
	KafkaBrokers []string
	KafkaTopic   string
	MetricsFile  string

	LogLevel   string
	LogFormat  string
	RunTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	dataDir := sharedcfg.EnvOrDefault("DATA_DIR", "data")

	humidity, err := parseFloat("HUMIDITY_CONSTANT", "60")
	if err != nil {
		return nil, err
	}
	alpha, err := parseFloat("LASSO_ALPHA", "0.0001")
	if err != nil {
		return nil, err
	}
	if alpha < 0 {
		return nil, errors.New("invalid LASSO_ALPHA: must not be negative")
	}
	maxIter, err := parsePositiveInt("LASSO_MAX_ITER", "1000")
	if err != nil {
		return nil, err
	}
	tol, err := parseFloat("LASSO_TOL", "1e-4")
	if err != nil {
		return nil, err
	}
	if tol <= 0 {
		return nil, errors.New("invalid LASSO_TOL: must be positive")
	}
	hotspots, err := parsePositiveInt("HOTSPOT_LIMIT", "100")
	if err != nil {
		return nil, err
	}
	runTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("RUN_TIMEOUT", "5m"))
	if err != nil || runTimeout <= 0 {
		return nil, errors.New("invalid RUN_TIMEOUT")
	}

	cfg := &Config{
		DataDir:          dataDir,
		TrainFile:        underDir(dataDir, sharedcfg.EnvOrDefault("TRAIN_FILE", "final_realistic_augmented_dataset.csv")),
		PredictionFile:   underDir(dataDir, sharedcfg.EnvOrDefault("PRED_FILE", "NDVI_LST_Chennai_July2025_with_LST.csv")),
		OutputPredFile:   underDir(dataDir, sharedcfg.EnvOrDefault("OUTPUT_PRED_FILE", "utei_predictions.csv")),
		OutputSortedFile: underDir(dataDir, sharedcfg.EnvOrDefault("OUTPUT_SORTED_FILE", "utei_sorted.csv")),

		HeatmapFile:   sharedcfg.EnvOrDefault("HEATMAP_FILE", "temperature_heatmap.html"),
		HistogramFile: sharedcfg.EnvOrDefault("HISTOGRAM_FILE", "predicted_temperature_hist.png"),
		ScatterFile:   sharedcfg.EnvOrDefault("SCATTER_FILE", "ndvi_vs_temperature.png"),

		HumidityConstant: humidity,
		LassoAlpha:       alpha,
		LassoMaxIter:     maxIter,
		LassoTol:         tol,

		GeoJSONFile:  sharedcfg.EnvOrDefault("GEOJSON_FILE", ""),
		XLSXFile:     sharedcfg.EnvOrDefault("XLSX_FILE", ""),
		HotspotLimit: hotspots,
		KafkaBrokers: parseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "utei-rankings"),
		MetricsFile:  sharedcfg.EnvOrDefault("METRICS_FILE", ""),

		LogLevel:   sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:  sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		RunTimeout: runTimeout,
	}

	if cfg.TrainFile == cfg.PredictionFile {
		return nil, errors.New("TRAIN_FILE and PRED_FILE must differ")
	}
	if cfg.OutputPredFile == cfg.OutputSortedFile {
		return nil, errors.New("OUTPUT_PRED_FILE and OUTPUT_SORTED_FILE must differ")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

// KafkaEnabled reports whether rankings are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// underDir resolves relative file names against the data directory.
func underDir(dir, name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return filepath.Join(dir, name)
}

func parseBrokers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return sharedcfg.ParseBrokers(s)
}

func parseFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parsePositiveInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}
