package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColumns() ScoredColumns {
	return ScoredColumns{
		Latitude:     []float64{13.08, 13.05, math.NaN()},
		Longitude:    []float64{80.27, 80.21, 80.25},
		LST:          []float64{41, 38, 30},
		NDVI:         []float64{0.1, 0.2, 0.5},
		Humidity:     []float64{60, 60, 60},
		Predicted:    []float64{35.2, 33.9, 30.1},
		LSTNorm:      []float64{1, 0.73, 0},
		NDVINorm:     []float64{0, 0.25, 1},
		HumidityNorm: []float64{0, 0, 0},
		UTEI:         []float64{1, 0.48, -1},
	}
}

func TestBuildHotspots(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, time.July, 14, 9, 30, 0, 0, time.UTC))
	SetClock(fakeClock)
	t.Cleanup(func() { SetClock(nil) })

	hs := BuildHotspots(testColumns(), 0)
	require.Len(t, hs, 3)

	assert.Equal(t, 1, hs[0].Rank)
	assert.Equal(t, 3, hs[2].Rank)
	require.NotNil(t, hs[0].Geo)
	assert.Equal(t, 13.08, hs[0].Geo.Lat)
	assert.Equal(t, 80.27, hs[0].Geo.Lon)
	assert.Nil(t, hs[2].Geo, "row with missing latitude has no geo")
	assert.Equal(t, 35.2, hs[0].PredictedTemperature)
	assert.Equal(t, fakeClock.Now(), hs[1].ScoredAt)
}

func TestBuildHotspots_Limit(t *testing.T) {
	hs := BuildHotspots(testColumns(), 2)
	require.Len(t, hs, 2)
	assert.Equal(t, 2, hs[1].Rank)
}

func TestBuildHotspots_SkipsMissingIndex(t *testing.T) {
	cols := testColumns()
	cols.UTEI[0] = math.NaN()

	hs := BuildHotspots(cols, 0)
	require.Len(t, hs, 2)
	assert.Equal(t, 1, hs[0].Rank)
	assert.Equal(t, 0.48, hs[0].UTEI)
}

func TestBuildHotspots_NoCoordinates(t *testing.T) {
	cols := testColumns()
	cols.Latitude = nil
	cols.Longitude = nil

	for _, h := range BuildHotspots(cols, 0) {
		assert.Nil(t, h.Geo)
	}
}

func TestSerializeHotspot(t *testing.T) {
	scoredAt := time.Date(2025, time.July, 14, 9, 30, 0, 0, time.UTC)
	h := Hotspot{
		Rank:     4,
		Geo:      &Geo{Lat: 13.0, Lon: 80.2},
		UTEI:     1.25,
		ScoredAt: scoredAt,
	}

	out, err := SerializeHotspot(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("rank-4"), out.Key)
	assert.Equal(t, "4", out.Headers["rank"])
	assert.Equal(t, "2025-07-14T09:30:00Z", out.Headers["scored_at"])

	var roundtrip Hotspot
	require.NoError(t, json.Unmarshal(out.Value, &roundtrip))
	assert.Equal(t, 4, roundtrip.Rank)
	assert.Equal(t, 1.25, roundtrip.UTEI)
	require.NotNil(t, roundtrip.Geo)
	assert.Equal(t, 80.2, roundtrip.Geo.Lon)
}
