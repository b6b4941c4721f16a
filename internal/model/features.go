package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FeatureMatrix stacks equally long columns into a rows x len(cols) matrix.
func FeatureMatrix(cols ...[]float64) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("feature matrix: no columns")
	}
	n := len(cols[0])
	for j, c := range cols {
		if len(c) != n {
			return nil, fmt.Errorf("feature matrix: column %d has %d rows, want %d", j, len(c), n)
		}
	}
	if n == 0 {
		return &mat.Dense{}, nil
	}
	X := mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		X.SetCol(j, c)
	}
	return X, nil
}
