// Package geojson exports ranked hotspots as a GeoJSON FeatureCollection.
package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
)

// Exporter implements pipeline.Exporter.
type Exporter struct {
	path   string
	logger *slog.Logger
}

// NewExporter creates an Exporter writing to path.
func NewExporter(path string, logger *slog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

func (e *Exporter) Name() string { return "geojson" }

// Export writes one point feature per hotspot. Hotspots without coordinates
// cannot be placed and are left out.
func (e *Exporter) Export(_ context.Context, hotspots []domain.Hotspot) error {
	fc, skipped := FeatureCollection(hotspots)
	if skipped > 0 {
		e.logger.Warn("hotspots without coordinates left out of geojson", "count", skipped)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create geojson dir: %w", err)
		}
	}
	if err := os.WriteFile(e.path, data, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	e.logger.Info("geojson saved", "path", e.path, "features", len(fc.Features))
	return nil
}

// FeatureCollection builds the collection and reports how many hotspots had
// no coordinates.
func FeatureCollection(hotspots []domain.Hotspot) (*geojson.FeatureCollection, int) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(hotspots))}
	skipped := 0
	flat := make([]float64, 0, 2*len(hotspots))
	for _, h := range hotspots {
		if h.Geo == nil {
			skipped++
			continue
		}
		flat = append(flat, h.Geo.Lon, h.Geo.Lat)
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.Itoa(h.Rank),
			Geometry:   geom.NewPointFlat(geom.XY, []float64{h.Geo.Lon, h.Geo.Lat}),
			Properties: properties(h),
		})
	}
	if len(flat) > 0 {
		fc.BBox = geom.NewMultiPointFlat(geom.XY, flat).Bounds()
	}
	return fc, skipped
}

func properties(h domain.Hotspot) map[string]any {
	return map[string]any{
		"rank":                  h.Rank,
		"lst_c":                 h.LST,
		"ndvi":                  h.NDVI,
		"humidity":              h.Humidity,
		"predicted_temperature": h.PredictedTemperature,
		"lst_norm":              h.LSTNorm,
		"ndvi_norm":             h.NDVINorm,
		"humidity_norm":         h.HumidityNorm,
		"utei":                  h.UTEI,
		"scored_at":             h.ScoredAt.Format(time.RFC3339),
	}
}
