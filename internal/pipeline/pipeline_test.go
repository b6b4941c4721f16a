package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/model"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/observability"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/pipeline"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

// --- mocks ---

type mockLoader struct {
	training   func() (*table.Table, error)
	prediction func() (*table.Table, error)
	calls      *[]string
}

func (m *mockLoader) LoadTraining(context.Context) (*table.Table, error) {
	*m.calls = append(*m.calls, "load_training")
	return m.training()
}

func (m *mockLoader) LoadPrediction(context.Context) (*table.Table, error) {
	*m.calls = append(*m.calls, "load_prediction")
	return m.prediction()
}

type mockTrainer struct {
	fit   *model.Fitted
	err   error
	calls *[]string
}

func (m *mockTrainer) Train(context.Context, *table.Table) (*model.Fitted, domain.FitMetrics, error) {
	*m.calls = append(*m.calls, "train")
	if m.err != nil {
		return nil, domain.FitMetrics{}, m.err
	}
	return m.fit, domain.FitMetrics{RMSE: 0.5, MAE: 0.25, R2: 0.9}, nil
}

type mockPersister struct {
	scored, ranked *table.Table
	err            error
	calls          *[]string
}

func (m *mockPersister) Persist(_ context.Context, scored, ranked *table.Table) error {
	*m.calls = append(*m.calls, "persist")
	m.scored, m.ranked = scored, ranked
	return m.err
}

type mockRenderer struct {
	name  string
	err   error
	calls *[]string
}

func (m *mockRenderer) Name() string { return m.name }

func (m *mockRenderer) Render(context.Context, *table.Table) error {
	*m.calls = append(*m.calls, "render_"+m.name)
	return m.err
}

type mockExporter struct {
	got   []domain.Hotspot
	calls *[]string
}

func (m *mockExporter) Name() string { return "mock" }

func (m *mockExporter) Export(_ context.Context, hotspots []domain.Hotspot) error {
	*m.calls = append(*m.calls, "export")
	m.got = hotspots
	return nil
}

// --- fixtures ---

func trainingTable(t *testing.T) *table.Table {
	t.Helper()
	lst := []float64{25, 28, 31, 34, 37, 40}
	temp := make([]float64, len(lst))
	for i, v := range lst {
		temp[i] = 0.8*v + 4
	}
	tbl, err := table.FromColumns(
		[]string{"Temperature", "Humidity", " Latitude (°N) ", "Longitude (°E)", "LST", "NDVI"},
		map[string][]float64{
			"Temperature":     temp,
			"Humidity":        {55, 58, 61, 64, 67, 70},
			" Latitude (°N) ": {13.0, 13.01, 13.02, 13.03, 13.04, 13.05},
			"Longitude (°E)":  {80.2, 80.21, 80.22, 80.23, 80.24, 80.25},
			"LST":             lst,
			"NDVI":            {0.6, 0.2, 0.5, 0.1, 0.4, 0.3},
		})
	require.NoError(t, err)
	return tbl
}

func predictionTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.FromColumns(
		[]string{"Latitude", "Longitude", "LST_C", "NDVI"},
		map[string][]float64{
			"Latitude":  {13.1, 13.2, 13.3, 13.4},
			"Longitude": {80.1, 80.2, 80.3, 80.4},
			"LST_C":     {30, 40, 20, 35},
			"NDVI":      {0.5, 0.1, 0.7, 0.3},
		})
	require.NoError(t, err)
	return tbl
}

type harness struct {
	calls     []string
	loader    *mockLoader
	persister *mockPersister
	metrics   *observability.Metrics
}

func newHarness(t *testing.T) *harness {
	h := &harness{metrics: observability.NewMetrics()}
	h.loader = &mockLoader{
		training:   func() (*table.Table, error) { return trainingTable(t), nil },
		prediction: func() (*table.Table, error) { return predictionTable(t), nil },
		calls:      &h.calls,
	}
	h.persister = &mockPersister{calls: &h.calls}
	return h
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2025, time.July, 15, 6, 0, 0, 0, time.UTC))
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })

	h := newHarness(t)
	trainer := pipeline.NewTrainer(model.NewLasso(), slog.Default())
	exp := &mockExporter{calls: &h.calls}

	p := pipeline.New(h.loader, trainer, h.persister, slog.Default(), h.metrics,
		pipeline.Settings{Humidity: domain.DefaultHumidity, HotspotLimit: 2})
	p.AddRenderer(&mockRenderer{name: "heatmap", calls: &h.calls})
	p.AddExporter(exp)

	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"load_training", "load_prediction", "persist", "render_heatmap", "export"}, h.calls)
	assert.Equal(t, 6, sum.TrainingRows)
	assert.Equal(t, 0, sum.TrainingDropped)
	assert.Equal(t, 4, sum.PredictionRows)
	assert.Equal(t, 4, sum.ScoredRows)
	assert.Equal(t, 2, sum.Hotspots)
	assert.Positive(t, sum.Iterations)
	assert.InDelta(t, 0.0, sum.Coefficients[domain.ColHumidity], 1e-12)
	assert.Equal(t, fake.Now(), sum.FinishedAt)

	scored := h.persister.scored
	require.NotNil(t, scored)
	assert.Equal(t, []string{
		"Latitude", "Longitude", "LST_C", "NDVI", "Humidity",
		"Predicted_Temperature", "LST_norm", "NDVI_norm", "Humidity_norm", "UTEI",
	}, scored.Names())

	humidity, err := scored.Floats(domain.ColHumidity)
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 60, 60, 60}, humidity)

	// Recompute UTEI from the normalised columns.
	lstN, _ := scored.Floats(domain.ColLSTNorm)
	ndviN, _ := scored.Floats(domain.ColNDVINorm)
	humN, _ := scored.Floats(domain.ColHumidityNorm)
	utei, _ := scored.Floats(domain.ColUTEI)
	for i := range utei {
		assert.InDelta(t, lstN[i]+humN[i]-ndviN[i], utei[i], 1e-12)
		assert.Equal(t, 0.0, humN[i])
	}

	ranked, err := h.persister.ranked.Floats(domain.ColUTEI)
	require.NoError(t, err)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1], ranked[i])
	}
	lat, _ := h.persister.ranked.Floats(domain.ColLatitude)
	assert.Equal(t, 13.2, lat[0])

	require.Len(t, exp.got, 2)
	assert.Equal(t, 1, exp.got[0].Rank)
	require.NotNil(t, exp.got[0].Geo)
	assert.Equal(t, 13.2, exp.got[0].Geo.Lat)
	assert.Equal(t, fake.Now(), exp.got[0].ScoredAt)

	assert.InDelta(t, 6, testutil.ToFloat64(h.metrics.RowsLoaded.WithLabelValues("training")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(h.metrics.RowsScored), 0)
	assert.Positive(t, testutil.ToFloat64(h.metrics.LastSuccess))
}

func TestPipeline_Run_PredictionWithHumidityKept(t *testing.T) {
	h := newHarness(t)
	h.loader.prediction = func() (*table.Table, error) {
		tbl := predictionTable(t)
		require.NoError(t, tbl.SetFloats(domain.ColHumidity, []float64{40, 50, 60, 70}))
		return tbl, nil
	}
	trainer := &mockTrainer{fit: &model.Fitted{Coef: []float64{0, 0.8, 0}, Intercept: 4}, calls: &h.calls}

	p := pipeline.New(h.loader, trainer, h.persister, slog.Default(), h.metrics,
		pipeline.Settings{Humidity: domain.DefaultHumidity})
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	humN, err := h.persister.scored.Floats(domain.ColHumidityNorm)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1.0 / 3, 2.0 / 3, 1}, humN, 1e-12)

	pred, err := h.persister.scored.Floats(domain.ColPredicted)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{28, 36, 20, 32}, pred, 1e-12)
}

func TestPipeline_Run_MissingTrainingColumns(t *testing.T) {
	h := newHarness(t)
	h.loader.training = func() (*table.Table, error) {
		return table.FromColumns([]string{"Temperature", "LST", "NDVI"}, map[string][]float64{
			"Temperature": {30}, "LST": {32}, "NDVI": {0.4},
		})
	}
	trainer := &mockTrainer{calls: &h.calls}

	p := pipeline.New(h.loader, trainer, h.persister, slog.Default(), h.metrics, pipeline.Settings{})
	_, err := p.Run(context.Background())
	require.Error(t, err)

	var missing *domain.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "training", missing.Table)
	assert.Equal(t, []string{"Humidity", "Latitude", "Longitude"}, missing.Columns)
	assert.Equal(t, []string{"load_training"}, h.calls)
	assert.Nil(t, h.persister.scored)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.StageErrors.WithLabelValues("load_training")), 0)
}

func TestPipeline_Run_MissingPredictionColumns(t *testing.T) {
	h := newHarness(t)
	h.loader.prediction = func() (*table.Table, error) {
		return table.FromColumns([]string{"NDVI"}, map[string][]float64{"NDVI": {0.3}})
	}
	trainer := &mockTrainer{fit: &model.Fitted{Coef: []float64{0, 1, 0}}, calls: &h.calls}

	p := pipeline.New(h.loader, trainer, h.persister, slog.Default(), h.metrics, pipeline.Settings{})
	_, err := p.Run(context.Background())

	var missing *domain.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "prediction", missing.Table)
	assert.Equal(t, []string{"LST_C"}, missing.Columns)
	assert.NotContains(t, h.calls, "persist")
}

func TestPipeline_Run_TrainError(t *testing.T) {
	h := newHarness(t)
	trainer := &mockTrainer{err: errors.New("singular"), calls: &h.calls}

	p := pipeline.New(h.loader, trainer, h.persister, slog.Default(), h.metrics, pipeline.Settings{})
	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "train: singular")
	assert.Equal(t, []string{"load_training", "train"}, h.calls)
}

func TestPipeline_Run_RendererErrorStopsExports(t *testing.T) {
	h := newHarness(t)
	trainer := &mockTrainer{fit: &model.Fitted{Coef: []float64{0, 1, 0}}, calls: &h.calls}
	exp := &mockExporter{calls: &h.calls}

	p := pipeline.New(h.loader, trainer, h.persister, slog.Default(), h.metrics, pipeline.Settings{})
	p.AddRenderer(&mockRenderer{name: "histogram", err: errors.New("disk full"), calls: &h.calls})
	p.AddExporter(exp)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render_histogram")
	assert.NotContains(t, h.calls, "export")
	assert.Nil(t, exp.got)
}

func TestPipeline_Run_ContextCancelled(t *testing.T) {
	h := newHarness(t)
	trainer := &mockTrainer{calls: &h.calls}

	p := pipeline.New(h.loader, trainer, h.persister, slog.Default(), h.metrics, pipeline.Settings{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.calls)
}

func TestPipeline_Run_NaNPredictionRowsRankLast(t *testing.T) {
	h := newHarness(t)
	h.loader.prediction = func() (*table.Table, error) {
		return table.FromColumns([]string{"LST_C", "NDVI"}, map[string][]float64{
			"LST_C": {30, math.NaN(), 40},
			"NDVI":  {0.2, 0.4, 0.6},
		})
	}
	trainer := &mockTrainer{fit: &model.Fitted{Coef: []float64{0, 1, 0}}, calls: &h.calls}

	p := pipeline.New(h.loader, trainer, h.persister, slog.Default(), h.metrics, pipeline.Settings{})
	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.PredictionRows)
	assert.Equal(t, 2, sum.ScoredRows)

	ranked, err := h.persister.ranked.Floats(domain.ColUTEI)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.False(t, math.IsNaN(ranked[0]))
	assert.True(t, math.IsNaN(ranked[2]))
}
