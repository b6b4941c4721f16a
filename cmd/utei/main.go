// Command utei trains the temperature model, scores the prediction grid,
// and writes the UTEI tables, figures and optional exports.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/adapter/chart"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/adapter/csvfile"
	geojsonadapter "github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/adapter/geojson"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/adapter/heatmap"
	kafkaadapter "github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/adapter/kafka"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/adapter/xlsx"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/config"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/model"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/observability"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		var missing *domain.MissingColumnsError
		if errors.As(err, &missing) {
			logger.Error("input table is missing columns", "table", missing.Table, "columns", missing.Columns)
		}
		logger.Error("run failed", "error", err)
		writeMetrics(cfg, metrics, logger)
		os.Exit(1)
	}
	writeMetrics(cfg, metrics, logger)
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	lasso := model.Lasso{Alpha: cfg.LassoAlpha, MaxIter: cfg.LassoMaxIter, Tol: cfg.LassoTol}
	p := pipeline.New(
		csvfile.NewReader(cfg.TrainFile, cfg.PredictionFile, logger),
		pipeline.NewTrainer(lasso, logger),
		csvfile.NewWriter(cfg.OutputPredFile, cfg.OutputSortedFile, logger),
		logger,
		metrics,
		pipeline.Settings{Humidity: cfg.HumidityConstant, HotspotLimit: cfg.HotspotLimit},
	)
	for _, r := range renderers(cfg, logger) {
		p.AddRenderer(r)
	}

	if cfg.GeoJSONFile != "" {
		p.AddExporter(geojsonadapter.NewExporter(cfg.GeoJSONFile, logger))
	}
	if cfg.XLSXFile != "" {
		p.AddExporter(xlsx.NewExporter(cfg.XLSXFile, logger))
	}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		p.AddExporter(writer)
		logger.Info("kafka export enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	sum, err := p.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("run complete",
		"training_rows", sum.TrainingRows,
		"training_dropped", sum.TrainingDropped,
		"prediction_rows", sum.PredictionRows,
		"rows_scored", sum.ScoredRows,
		"hotspots", sum.Hotspots,
		"coefficients", sum.Coefficients,
		"intercept", sum.Intercept,
		"converged", sum.Converged,
		"duration", sum.Duration,
	)
	return nil
}

// renderers returns the figures in output order: histogram, scatter, heatmap.
func renderers(cfg *config.Config, logger *slog.Logger) []pipeline.Renderer {
	return []pipeline.Renderer{
		chart.NewHistogram(cfg.HistogramFile, logger),
		chart.NewScatter(cfg.ScatterFile, logger),
		heatmap.NewRenderer(cfg.HeatmapFile, logger),
	}
}

func writeMetrics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Error("metrics write failed", "path", cfg.MetricsFile, "error", err)
		return
	}
	logger.Debug("metrics written", "path", cfg.MetricsFile)
}
