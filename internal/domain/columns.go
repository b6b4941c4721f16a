package domain

import (
	"fmt"
	"strings"
)

// Column names used across the pipeline.
const (
	ColTemperature = "Temperature"
	ColHumidity    = "Humidity"
	ColLatitude    = "Latitude"
	ColLongitude   = "Longitude"
	ColLST         = "LST_C"
	ColNDVI        = "NDVI"

	ColPredicted    = "Predicted_Temperature"
	ColLSTNorm      = "LST_norm"
	ColNDVINorm     = "NDVI_norm"
	ColHumidityNorm = "Humidity_norm"
	ColUTEI         = "UTEI"
)

// DefaultHumidity is the relative humidity assumed for every row.
const DefaultHumidity = 60.0

// FeatureColumns lists the regression inputs in model order.
var FeatureColumns = []string{ColHumidity, ColLST, ColNDVI}

// RequiredTrainingColumns must all be present after header cleanup.
var RequiredTrainingColumns = []string{
	ColTemperature, ColHumidity, ColLatitude, ColLongitude, ColLST, ColNDVI,
}

// RequiredPredictionColumns must be present in a table before scoring.
// Humidity is synthesised when absent.
var RequiredPredictionColumns = []string{ColLST, ColNDVI}

// renameMap maps normalised source headers to canonical names.
var renameMap = map[string]string{
	"LST":            ColLST,
	"Latitude_(°N)":  ColLatitude,
	"Longitude_(°E)": ColLongitude,
}

// NormalizeColumnName trims surrounding whitespace and replaces inner spaces
// with underscores: " Latitude (°N) " -> "Latitude_(°N)".
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// CanonicalColumnName normalises a header and applies the rename map.
func CanonicalColumnName(name string) string {
	n := NormalizeColumnName(name)
	if renamed, ok := renameMap[n]; ok {
		return renamed
	}
	return n
}

// MissingColumns returns the entries of want that are absent from have,
// in the order of want.
func MissingColumns(have, want []string) []string {
	present := make(map[string]struct{}, len(have))
	for _, h := range have {
		present[h] = struct{}{}
	}
	var missing []string
	for _, w := range want {
		if _, ok := present[w]; !ok {
			missing = append(missing, w)
		}
	}
	return missing
}

// MissingColumnsError reports required columns absent from a table.
type MissingColumnsError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing columns in %s data: %s", e.Table, strings.Join(e.Columns, ", "))
}

// CheckColumns returns a *MissingColumnsError when any of want is absent.
func CheckColumns(table string, have, want []string) error {
	if missing := MissingColumns(have, want); len(missing) > 0 {
		return &MissingColumnsError{Table: table, Columns: missing}
	}
	return nil
}
