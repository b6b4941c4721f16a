// Package model fits the air temperature regression used to score
// prediction tables.
package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Default Lasso settings.
const (
	DefaultAlpha   = 0.0001
	DefaultMaxIter = 1000
	DefaultTol     = 1e-4
)

// Lasso configures an L1-regularised least squares fit minimising
//
//	(1/2n) * ||y - Xw - b||^2 + Alpha * ||w||_1
//
// by cyclic coordinate descent. The intercept b is not penalised.
type Lasso struct {
	Alpha   float64
	MaxIter int
	Tol     float64
}

// NewLasso returns a Lasso with the default settings.
func NewLasso() Lasso {
	return Lasso{Alpha: DefaultAlpha, MaxIter: DefaultMaxIter, Tol: DefaultTol}
}

// Fitted is a trained linear model.
type Fitted struct {
	Coef      []float64
	Intercept float64
	Iter      int
	Converged bool
}

// Fit trains on X (rows x features) and y.
func (l Lasso) Fit(X mat.Matrix, y []float64) (*Fitted, error) {
	n, p := X.Dims()
	if n == 0 {
		return nil, errors.New("lasso: no training rows")
	}
	if len(y) != n {
		return nil, fmt.Errorf("lasso: %d targets for %d rows", len(y), n)
	}
	if l.Alpha < 0 {
		return nil, fmt.Errorf("lasso: negative alpha %g", l.Alpha)
	}
	if l.MaxIter <= 0 {
		return nil, fmt.Errorf("lasso: max iterations must be positive, got %d", l.MaxIter)
	}
	if err := checkFinite(X, y); err != nil {
		return nil, err
	}

	// Centre columns and target so the intercept drops out of the updates.
	cols := make([][]float64, p)
	means := make([]float64, p)
	sqNorms := make([]float64, p)
	for j := 0; j < p; j++ {
		col := mat.Col(nil, j, X)
		means[j] = stat.Mean(col, nil)
		floats.AddConst(-means[j], col)
		cols[j] = col
		sqNorms[j] = floats.Dot(col, col)
	}
	yMean := stat.Mean(y, nil)
	resid := make([]float64, n)
	for i := range y {
		resid[i] = y[i] - yMean
	}

	w := make([]float64, p)
	threshold := l.Alpha * float64(n)
	fit := &Fitted{Coef: w}

	for iter := 1; iter <= l.MaxIter; iter++ {
		var maxDelta, maxW float64
		for j := 0; j < p; j++ {
			if sqNorms[j] == 0 {
				continue
			}
			old := w[j]
			// rho = x_j . (resid + x_j * w_j)
			rho := floats.Dot(cols[j], resid) + sqNorms[j]*old
			w[j] = softThreshold(rho, threshold) / sqNorms[j]
			if delta := w[j] - old; delta != 0 {
				floats.AddScaled(resid, -delta, cols[j])
				maxDelta = math.Max(maxDelta, math.Abs(delta))
			}
			maxW = math.Max(maxW, math.Abs(w[j]))
		}
		fit.Iter = iter
		if maxW == 0 || maxDelta/maxW < l.Tol {
			fit.Converged = true
			break
		}
	}

	fit.Intercept = yMean - floats.Dot(means, w)
	return fit, nil
}

// Predict returns one estimate per row of X. Rows holding NaN yield NaN.
func (f *Fitted) Predict(X mat.Matrix) ([]float64, error) {
	n, p := X.Dims()
	if n == 0 {
		return []float64{}, nil
	}
	if p != len(f.Coef) {
		return nil, fmt.Errorf("predict: %d features, model has %d", p, len(f.Coef))
	}
	out := mat.NewVecDense(n, nil)
	out.MulVec(X, mat.NewVecDense(p, f.Coef))
	preds := out.RawVector().Data
	floats.AddConst(f.Intercept, preds)
	return preds, nil
}

// PredictRow evaluates the model on a single feature vector.
func (f *Fitted) PredictRow(x []float64) (float64, error) {
	if len(x) != len(f.Coef) {
		return 0, fmt.Errorf("predict: %d features, model has %d", len(x), len(f.Coef))
	}
	return floats.Dot(f.Coef, x) + f.Intercept, nil
}

func softThreshold(x, lambda float64) float64 {
	switch {
	case x > lambda:
		return x - lambda
	case x < -lambda:
		return x + lambda
	default:
		return 0
	}
}

func checkFinite(X mat.Matrix, y []float64) error {
	n, p := X.Dims()
	for i := 0; i < n; i++ {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return fmt.Errorf("lasso: non-finite target at row %d", i)
		}
		for j := 0; j < p; j++ {
			if v := X.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("lasso: non-finite feature %d at row %d", j, i)
			}
		}
	}
	return nil
}
