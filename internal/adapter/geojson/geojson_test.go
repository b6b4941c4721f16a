package geojson

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
)

func testHotspots() []domain.Hotspot {
	at := time.Date(2025, 7, 15, 6, 0, 0, 0, time.UTC)
	return []domain.Hotspot{
		{Rank: 1, Geo: &domain.Geo{Lat: 13.08, Lon: 80.27}, LST: 41, UTEI: 0.62, ScoredAt: at},
		{Rank: 2, LST: 40, UTEI: 0.55, ScoredAt: at},
		{Rank: 3, Geo: &domain.Geo{Lat: 12.98, Lon: 80.21}, LST: 39, UTEI: 0.51, ScoredAt: at},
	}
}

func TestFeatureCollection(t *testing.T) {
	fc, skipped := FeatureCollection(testHotspots())
	assert.Equal(t, 1, skipped)
	require.Len(t, fc.Features, 2)

	first := fc.Features[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, []float64{80.27, 13.08}, first.Geometry.FlatCoords())
	assert.Equal(t, 0.62, first.Properties["utei"])
	assert.Equal(t, "2025-07-15T06:00:00Z", first.Properties["scored_at"])

	require.NotNil(t, fc.BBox)
	assert.Equal(t, 80.21, fc.BBox.Min(0))
	assert.Equal(t, 13.08, fc.BBox.Max(1))
}

func TestExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotspots.geojson")
	e := NewExporter(path, slog.Default())
	assert.Equal(t, "geojson", e.Name())
	require.NoError(t, e.Export(context.Background(), testHotspots()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 2)
	assert.Equal(t, "Point", doc.Features[1].Geometry.Type)
	assert.Equal(t, []float64{80.21, 12.98}, doc.Features[1].Geometry.Coordinates)
	assert.InDelta(t, 3, doc.Features[1].Properties["rank"], 0)
}

func TestExporter_EmptyRanking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.geojson")
	require.NoError(t, NewExporter(path, slog.Default()).Export(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
}
