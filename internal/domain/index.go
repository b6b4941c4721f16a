package domain

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinMax scales values into [0, 1] using their own minimum and maximum.
// NaN entries are ignored for the range and stay NaN. A column whose
// non-missing values are all equal maps to 0.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	lo, hi, ok := finiteRange(values)
	if !ok {
		copy(out, values)
		return out
	}
	span := hi - lo
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = math.NaN()
		case span == 0:
			out[i] = 0
		default:
			out[i] = (v - lo) / span
		}
	}
	return out
}

// finiteRange returns min and max over the non-NaN values.
func finiteRange(values []float64) (lo, hi float64, ok bool) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return 0, 0, false
	}
	return floats.Min(present), floats.Max(present), true
}

// UTEI combines normalised inputs: LST_norm + Humidity_norm - NDVI_norm.
func UTEI(lstNorm, humidityNorm, ndviNorm float64) float64 {
	return lstNorm + humidityNorm - ndviNorm
}

// IndexColumns holds the normalised inputs and the resulting index per row.
type IndexColumns struct {
	LSTNorm      []float64
	NDVINorm     []float64
	HumidityNorm []float64
	UTEI         []float64
}

// ComputeIndex normalises the three raw columns and derives UTEI row by row.
func ComputeIndex(lst, ndvi, humidity []float64) (IndexColumns, error) {
	if len(lst) != len(ndvi) || len(lst) != len(humidity) {
		return IndexColumns{}, errors.New("compute index: column lengths differ")
	}
	idx := IndexColumns{
		LSTNorm:      MinMax(lst),
		NDVINorm:     MinMax(ndvi),
		HumidityNorm: MinMax(humidity),
		UTEI:         make([]float64, len(lst)),
	}
	for i := range idx.UTEI {
		idx.UTEI[i] = UTEI(idx.LSTNorm[i], idx.HumidityNorm[i], idx.NDVINorm[i])
	}
	return idx, nil
}
