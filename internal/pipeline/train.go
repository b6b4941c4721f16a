package pipeline

import (
	"context"
	"log/slog"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/model"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

// LassoTrainer implements Trainer with an L1-regularised linear model over
// Humidity, LST_C and NDVI.
type LassoTrainer struct {
	lasso  model.Lasso
	logger *slog.Logger
}

// NewTrainer creates a LassoTrainer.
func NewTrainer(lasso model.Lasso, logger *slog.Logger) *LassoTrainer {
	return &LassoTrainer{lasso: lasso, logger: logger}
}

// Train fits the model and reports its error on the same rows. There is no
// held-out split, so the metrics describe fit quality only.
func (t *LassoTrainer) Train(_ context.Context, tbl *table.Table) (*model.Fitted, domain.FitMetrics, error) {
	features := make([][]float64, len(domain.FeatureColumns))
	for i, col := range domain.FeatureColumns {
		v, err := tbl.Floats(col)
		if err != nil {
			return nil, domain.FitMetrics{}, err
		}
		features[i] = v
	}
	y, err := tbl.Floats(domain.ColTemperature)
	if err != nil {
		return nil, domain.FitMetrics{}, err
	}

	X, err := model.FeatureMatrix(features...)
	if err != nil {
		return nil, domain.FitMetrics{}, err
	}
	fit, err := t.lasso.Fit(X, y)
	if err != nil {
		return nil, domain.FitMetrics{}, err
	}
	if !fit.Converged {
		t.logger.Warn("lasso did not converge, keeping last iterate",
			"iterations", fit.Iter, "tol", t.lasso.Tol)
	}

	preds, err := fit.Predict(X)
	if err != nil {
		return nil, domain.FitMetrics{}, err
	}
	metrics, err := domain.ComputeFitMetrics(y, preds)
	if err != nil {
		return nil, domain.FitMetrics{}, err
	}

	t.logger.Info("model trained",
		"rows", len(y),
		"alpha", t.lasso.Alpha,
		"iterations", fit.Iter,
		"coef_humidity", fit.Coef[0],
		"coef_lst", fit.Coef[1],
		"coef_ndvi", fit.Coef[2],
		"intercept", fit.Intercept,
		"train_rmse", metrics.RMSE,
		"train_mae", metrics.MAE,
		"train_r2", metrics.R2,
	)
	return fit, metrics, nil
}
