package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

func TestCheckNormalised(t *testing.T) {
	p := &phase{}
	checkNormalised(p, "LST_norm", []float64{20, 30, 40}, []float64{0, 0.5, 1})
	assert.True(t, p.passed())

	p = &phase{}
	checkNormalised(p, "LST_norm", []float64{20, 30, 40}, []float64{0, 0.4, 1})
	assert.Len(t, p.errors, 1)

	p = &phase{}
	checkNormalised(p, "Humidity_norm", []float64{60, 60}, []float64{0, 0})
	assert.True(t, p.passed())
}

func TestCheckOrder(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		ok     bool
	}{
		{"descending", []float64{0.5, 0.5, 0.2, -0.1}, true},
		{"nan last", []float64{0.5, 0.2, math.NaN()}, true},
		{"ascending", []float64{0.2, 0.5}, false},
		{"nan first", []float64{math.NaN(), 0.2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &phase{}
			checkOrder(p, tt.values)
			assert.Equal(t, tt.ok, p.passed())
		})
	}
}

func writeOutputs(t *testing.T, utei []float64) (string, string) {
	t.Helper()
	names := []string{"LST_C", "NDVI", "Humidity", "Predicted_Temperature", "LST_norm", "NDVI_norm", "Humidity_norm", "UTEI"}
	pred, err := table.FromColumns(names, map[string][]float64{
		"LST_C":                 {20, 30, 40},
		"NDVI":                  {0.1, 0.1, 0.1},
		"Humidity":              {60, 60, 60},
		"Predicted_Temperature": {20, 28, 36},
		"LST_norm":              {0, 0.5, 1},
		"NDVI_norm":             {0, 0, 0},
		"Humidity_norm":         {0, 0, 0},
		"UTEI":                  utei,
	})
	require.NoError(t, err)
	sorted, err := pred.SortedDesc("UTEI")
	require.NoError(t, err)

	dir := t.TempDir()
	write := func(name string, tbl *table.Table) string {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, tbl.WriteCSV(f))
		require.NoError(t, f.Close())
		return path
	}
	return write("pred.csv", pred), write("sorted.csv", sorted)
}

func TestRun(t *testing.T) {
	pred, sorted := writeOutputs(t, []float64{0, 0.5, 1})
	assert.Equal(t, 0, run(pred, sorted))
}

func TestRun_WrongIndex(t *testing.T) {
	pred, sorted := writeOutputs(t, []float64{0, 0.3, 1})
	assert.Equal(t, 1, run(pred, sorted))
}

func TestRun_MissingFile(t *testing.T) {
	assert.Equal(t, 1, run(filepath.Join(t.TempDir(), "nope.csv"), "also-nope.csv"))
}
