package pipeline

import (
	"fmt"
	"math"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/model"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

// CleanTraining drops rows with any missing value, canonicalises headers,
// checks the required columns and overwrites Humidity with the constant.
// It returns the number of dropped rows. Running it twice is a no-op.
func CleanTraining(t *table.Table, humidity float64) (int, error) {
	dropped, err := t.DropMissing()
	if err != nil {
		return 0, err
	}
	if err := t.RenameColumns(domain.CanonicalColumnName); err != nil {
		return 0, err
	}
	if err := domain.CheckColumns("training", t.Names(), domain.RequiredTrainingColumns); err != nil {
		return 0, err
	}
	if err := t.SetConstant(domain.ColHumidity, humidity); err != nil {
		return 0, err
	}
	return dropped, nil
}

// PreparePrediction synthesises Humidity when the table has none.
func PreparePrediction(t *table.Table, humidity float64) error {
	if t.Has(domain.ColHumidity) {
		return nil
	}
	return t.SetConstant(domain.ColHumidity, humidity)
}

// Score appends Predicted_Temperature, the three normalised inputs and UTEI
// to a prepared prediction table. It returns the number of rows with a UTEI
// value.
func Score(t *table.Table, fit *model.Fitted) (int, error) {
	if err := domain.CheckColumns("prediction", t.Names(), domain.RequiredPredictionColumns); err != nil {
		return 0, err
	}

	features := make([][]float64, len(domain.FeatureColumns))
	for i, col := range domain.FeatureColumns {
		v, err := t.Floats(col)
		if err != nil {
			return 0, err
		}
		features[i] = v
	}
	humidity, lst, ndvi := features[0], features[1], features[2]

	X, err := model.FeatureMatrix(features...)
	if err != nil {
		return 0, err
	}
	preds, err := fit.Predict(X)
	if err != nil {
		return 0, err
	}

	idx, err := domain.ComputeIndex(lst, ndvi, humidity)
	if err != nil {
		return 0, err
	}

	derived := []struct {
		name   string
		values []float64
	}{
		{domain.ColPredicted, preds},
		{domain.ColLSTNorm, idx.LSTNorm},
		{domain.ColNDVINorm, idx.NDVINorm},
		{domain.ColHumidityNorm, idx.HumidityNorm},
		{domain.ColUTEI, idx.UTEI},
	}
	for _, d := range derived {
		if err := t.SetFloats(d.name, d.values); err != nil {
			return 0, fmt.Errorf("score: %w", err)
		}
	}

	scored := 0
	for _, u := range idx.UTEI {
		if !math.IsNaN(u) {
			scored++
		}
	}
	return scored, nil
}

type columnTarget struct {
	name string
	dst  *[]float64
}

// RankedColumns extracts the hotspot columns from a ranked table.
// Coordinates are included only when both are present.
func RankedColumns(t *table.Table) (domain.ScoredColumns, error) {
	var cols domain.ScoredColumns
	targets := []columnTarget{
		{domain.ColLST, &cols.LST},
		{domain.ColNDVI, &cols.NDVI},
		{domain.ColHumidity, &cols.Humidity},
		{domain.ColPredicted, &cols.Predicted},
		{domain.ColLSTNorm, &cols.LSTNorm},
		{domain.ColNDVINorm, &cols.NDVINorm},
		{domain.ColHumidityNorm, &cols.HumidityNorm},
		{domain.ColUTEI, &cols.UTEI},
	}
	if t.Has(domain.ColLatitude, domain.ColLongitude) {
		targets = append(targets,
			columnTarget{domain.ColLatitude, &cols.Latitude},
			columnTarget{domain.ColLongitude, &cols.Longitude},
		)
	}
	for _, tg := range targets {
		v, err := t.Floats(tg.name)
		if err != nil {
			return domain.ScoredColumns{}, err
		}
		*tg.dst = v
	}
	return cols, nil
}
