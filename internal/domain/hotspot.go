package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Hotspot is one scored prediction row in ranking order.
type Hotspot struct {
	Rank                 int       `json:"rank"`
	Geo                  *Geo      `json:"geo,omitempty"`
	LST                  float64   `json:"lst_c"`
	NDVI                 float64   `json:"ndvi"`
	Humidity             float64   `json:"humidity"`
	PredictedTemperature float64   `json:"predicted_temperature"`
	LSTNorm              float64   `json:"lst_norm"`
	NDVINorm             float64   `json:"ndvi_norm"`
	HumidityNorm         float64   `json:"humidity_norm"`
	UTEI                 float64   `json:"utei"`
	ScoredAt             time.Time `json:"scored_at"`
}

// ScoredColumns is the column-oriented form of a ranked prediction table.
// Latitude and Longitude may be nil when the table has no coordinates.
type ScoredColumns struct {
	Latitude     []float64
	Longitude    []float64
	LST          []float64
	NDVI         []float64
	Humidity     []float64
	Predicted    []float64
	LSTNorm      []float64
	NDVINorm     []float64
	HumidityNorm []float64
	UTEI         []float64
}

// BuildHotspots converts ranked columns into at most limit hotspots.
// Rows without a UTEI value are skipped. A limit <= 0 keeps every row.
func BuildHotspots(cols ScoredColumns, limit int) []Hotspot {
	scoredAt := clock.Now().UTC()
	hasGeo := cols.Latitude != nil && cols.Longitude != nil

	out := make([]Hotspot, 0, len(cols.UTEI))
	for i, u := range cols.UTEI {
		if limit > 0 && len(out) >= limit {
			break
		}
		if math.IsNaN(u) {
			continue
		}
		h := Hotspot{
			Rank:                 len(out) + 1,
			LST:                  cols.LST[i],
			NDVI:                 cols.NDVI[i],
			Humidity:             cols.Humidity[i],
			PredictedTemperature: cols.Predicted[i],
			LSTNorm:              cols.LSTNorm[i],
			NDVINorm:             cols.NDVINorm[i],
			HumidityNorm:         cols.HumidityNorm[i],
			UTEI:                 u,
			ScoredAt:             scoredAt,
		}
		if hasGeo && !math.IsNaN(cols.Latitude[i]) && !math.IsNaN(cols.Longitude[i]) {
			h.Geo = &Geo{Lat: cols.Latitude[i], Lon: cols.Longitude[i]}
		}
		out = append(out, h)
	}
	return out
}

// OutputMessage is the serialized form of a hotspot for message sinks.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeHotspot marshals a hotspot with its rank as key.
func SerializeHotspot(h Hotspot) (OutputMessage, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return OutputMessage{}, fmt.Errorf("serialize hotspot: %w", err)
	}
	return OutputMessage{
		Key:   []byte(fmt.Sprintf("rank-%d", h.Rank)),
		Value: data,
		Headers: map[string]string{
			"rank":      strconv.Itoa(h.Rank),
			"scored_at": h.ScoredAt.Format(time.RFC3339),
		},
	}, nil
}
