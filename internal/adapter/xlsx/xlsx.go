// Package xlsx exports the hotspot ranking as an Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
)

// SheetName is the worksheet holding the ranking.
const SheetName = "UTEI"

var header = []string{
	"Rank", "Latitude", "Longitude", "LST_C", "NDVI", "Humidity",
	"Predicted_Temperature", "LST_norm", "NDVI_norm", "Humidity_norm", "UTEI", "Scored_At",
}

// Exporter implements pipeline.Exporter.
type Exporter struct {
	path   string
	logger *slog.Logger
}

// NewExporter creates an Exporter writing to path.
func NewExporter(path string, logger *slog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

func (e *Exporter) Name() string { return "xlsx" }

func (e *Exporter) Export(_ context.Context, hotspots []domain.Hotspot) error {
	f, err := Workbook(hotspots)
	if err != nil {
		return err
	}
	defer f.Close()

	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create xlsx dir: %w", err)
		}
	}
	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	e.logger.Info("xlsx saved", "path", e.path, "rows", len(hotspots))
	return nil
}

// Workbook lays the ranking out on a single sheet with a frozen header row.
func Workbook(hotspots []domain.Hotspot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for col, name := range header {
		if err := setCell(f, col+1, 1, name); err != nil {
			f.Close()
			return nil, err
		}
	}
	for i, h := range hotspots {
		row := i + 2
		for col, v := range rowValues(h) {
			if err := setCell(f, col+1, row, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("xlsx panes: %w", err)
	}
	return f, nil
}

func rowValues(h domain.Hotspot) []any {
	var lat, lon any
	if h.Geo != nil {
		lat, lon = h.Geo.Lat, h.Geo.Lon
	}
	return []any{
		h.Rank, lat, lon, h.LST, h.NDVI, h.Humidity,
		h.PredictedTemperature, h.LSTNorm, h.NDVINorm, h.HumidityNorm, h.UTEI,
		h.ScoredAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func setCell(f *excelize.File, col, row int, v any) error {
	if v == nil {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("xlsx cell: %w", err)
	}
	if err := f.SetCellValue(SheetName, cell, v); err != nil {
		return fmt.Errorf("xlsx cell %s: %w", cell, err)
	}
	return nil
}
