package domain

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// FitMetrics summarises how well a model reproduces the rows it was fitted
// on. It says nothing about generalisation.
type FitMetrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// ComputeFitMetrics compares predictions against observed targets.
func ComputeFitMetrics(observed, predicted []float64) (FitMetrics, error) {
	if len(observed) != len(predicted) {
		return FitMetrics{}, errors.New("fit metrics: length mismatch")
	}
	if len(observed) == 0 {
		return FitMetrics{}, errors.New("fit metrics: no rows")
	}

	var sq, abs float64
	for i := range observed {
		d := observed[i] - predicted[i]
		sq += d * d
		abs += math.Abs(d)
	}
	n := float64(len(observed))

	return FitMetrics{
		RMSE: math.Sqrt(sq / n),
		MAE:  abs / n,
		R2:   rSquared(observed, predicted, sq),
	}, nil
}

// rSquared is 1 - SSres/SStot. A constant target has no variance to
// explain: a perfect fit scores 1, anything else 0.
func rSquared(observed, predicted []float64, ssRes float64) float64 {
	mean := stat.Mean(observed, nil)
	var ssTot float64
	for _, v := range observed {
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(predicted, observed, nil)
}
