package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/model"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/observability"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

// Loader reads the raw training and prediction tables.
type Loader interface {
	LoadTraining(ctx context.Context) (*table.Table, error)
	LoadPrediction(ctx context.Context) (*table.Table, error)
}

// Trainer fits the temperature model on a cleaned training table.
type Trainer interface {
	Train(ctx context.Context, t *table.Table) (*model.Fitted, domain.FitMetrics, error)
}

// Persister writes the scored table and its UTEI ranking.
type Persister interface {
	Persist(ctx context.Context, scored, ranked *table.Table) error
}

// Renderer produces a visual artifact from the scored table.
type Renderer interface {
	Name() string
	Render(ctx context.Context, scored *table.Table) error
}

// Exporter publishes ranked hotspots to an optional destination.
type Exporter interface {
	Name() string
	Export(ctx context.Context, hotspots []domain.Hotspot) error
}

// Settings holds the tunables that are not owned by a stage.
type Settings struct {
	Humidity     float64
	HotspotLimit int
}

// Summary describes a completed run.
type Summary struct {
	TrainingRows    int
	TrainingDropped int
	PredictionRows  int
	ScoredRows      int
	Hotspots        int

	Coefficients map[string]float64
	Intercept    float64
	Fit          domain.FitMetrics
	Converged    bool
	Iterations   int

	Duration   time.Duration
	FinishedAt time.Time
}

// Pipeline runs load, train, score, persist, render and export once, in
// that order, stopping at the first failure.
type Pipeline struct {
	loader    Loader
	trainer   Trainer
	persister Persister
	renderers []Renderer
	exporters []Exporter
	settings  Settings
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Pipeline with the required stages.
func New(l Loader, t Trainer, p Persister, logger *slog.Logger, metrics *observability.Metrics, settings Settings) *Pipeline {
	return &Pipeline{
		loader:    l,
		trainer:   t,
		persister: p,
		settings:  settings,
		logger:    logger,
		metrics:   metrics,
	}
}

// AddRenderer appends a visual output stage.
func (p *Pipeline) AddRenderer(r Renderer) {
	p.renderers = append(p.renderers, r)
}

// AddExporter appends an optional hotspot export stage.
func (p *Pipeline) AddExporter(e Exporter) {
	p.exporters = append(p.exporters, e)
}

// Run executes every stage once.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	p.logger.Info("pipeline started", "renderers", len(p.renderers), "exporters", len(p.exporters))

	var (
		sum      Summary
		training *table.Table
		fit      *model.Fitted
		scored   *table.Table
		ranked   *table.Table
	)

	err := p.stage(ctx, "load_training", func() error {
		var err error
		if training, err = p.loader.LoadTraining(ctx); err != nil {
			return err
		}
		dropped, err := CleanTraining(training, p.settings.Humidity)
		if err != nil {
			return err
		}
		sum.TrainingRows = training.Len()
		sum.TrainingDropped = dropped
		p.metrics.RowsLoaded.WithLabelValues("training").Add(float64(training.Len()))
		p.metrics.RowsDropped.WithLabelValues("training").Add(float64(dropped))
		p.logger.Info("training data loaded", "rows", training.Len(), "rows_dropped", dropped)
		return nil
	})
	if err != nil {
		return sum, err
	}

	err = p.stage(ctx, "train", func() error {
		var err error
		var fm domain.FitMetrics
		if fit, fm, err = p.trainer.Train(ctx, training); err != nil {
			return err
		}
		sum.Fit = fm
		sum.Converged = fit.Converged
		sum.Iterations = fit.Iter
		sum.Intercept = fit.Intercept
		sum.Coefficients = make(map[string]float64, len(fit.Coef))
		for i, name := range domain.FeatureColumns {
			sum.Coefficients[name] = fit.Coef[i]
			p.metrics.ModelCoefficient.WithLabelValues(name).Set(fit.Coef[i])
		}
		p.metrics.ModelCoefficient.WithLabelValues("intercept").Set(fit.Intercept)
		p.metrics.TrainRMSE.Set(fm.RMSE)
		p.metrics.TrainMAE.Set(fm.MAE)
		p.metrics.TrainR2.Set(fm.R2)
		return nil
	})
	if err != nil {
		return sum, err
	}

	err = p.stage(ctx, "score", func() error {
		var err error
		if scored, err = p.loader.LoadPrediction(ctx); err != nil {
			return err
		}
		if err := PreparePrediction(scored, p.settings.Humidity); err != nil {
			return err
		}
		n, err := Score(scored, fit)
		if err != nil {
			return err
		}
		if ranked, err = scored.SortedDesc(domain.ColUTEI); err != nil {
			return err
		}
		sum.PredictionRows = scored.Len()
		sum.ScoredRows = n
		p.metrics.RowsLoaded.WithLabelValues("prediction").Add(float64(scored.Len()))
		p.metrics.RowsScored.Add(float64(n))
		p.logger.Info("prediction data scored", "rows", scored.Len(), "rows_scored", n)
		return nil
	})
	if err != nil {
		return sum, err
	}

	err = p.stage(ctx, "persist", func() error {
		return p.persister.Persist(ctx, scored, ranked)
	})
	if err != nil {
		return sum, err
	}

	for _, r := range p.renderers {
		err = p.stage(ctx, "render_"+r.Name(), func() error {
			return r.Render(ctx, scored)
		})
		if err != nil {
			return sum, err
		}
	}

	if len(p.exporters) > 0 {
		cols, err := RankedColumns(ranked)
		if err != nil {
			return sum, fmt.Errorf("export: %w", err)
		}
		hotspots := domain.BuildHotspots(cols, p.settings.HotspotLimit)
		sum.Hotspots = len(hotspots)
		for _, e := range p.exporters {
			err = p.stage(ctx, "export_"+e.Name(), func() error {
				return e.Export(ctx, hotspots)
			})
			if err != nil {
				return sum, err
			}
		}
	}

	sum.Duration = time.Since(start)
	sum.FinishedAt = domain.Now().UTC()
	p.metrics.LastSuccess.Set(float64(sum.FinishedAt.Unix()))
	p.logger.Info("pipeline finished",
		"duration", sum.Duration,
		"train_rmse", sum.Fit.RMSE,
		"train_mae", sum.Fit.MAE,
		"train_r2", sum.Fit.R2,
		"rows_scored", sum.ScoredRows,
	)
	return sum, nil
}

// stage runs fn unless ctx is done, recording its duration and failures.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	start := time.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.StageErrors.WithLabelValues(name).Inc()
		p.logger.Error("stage failed", "stage", name, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}
	p.logger.Debug("stage complete", "stage", name, "duration", time.Since(start))
	return nil
}
