// Package heatmap renders an interactive Leaflet heat layer of predicted
// temperature as a standalone HTML page.
package heatmap

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"math"

	"github.com/twpayne/go-geom"
	"gonum.org/v1/gonum/stat"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/atomicfile"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

// Layer settings for leaflet.heat.
const (
	zoomStart = 12
	radius    = 12
	blur      = 15
	maxZoom   = 1
)

var page = template.Must(template.New("heatmap").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Predicted Temperature Heatmap</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map").setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer("https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png", {
  attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
  subdomains: "abcd",
  maxZoom: 20
}).addTo(map);
L.heatLayer({{.Points}}, {radius: {{.Radius}}, blur: {{.Blur}}, maxZoom: {{.MaxZoom}}}).addTo(map);
{{- if .Bounds}}
L.rectangle({{.Bounds}}, {color: "#555", weight: 1, fill: false, dashArray: "4"}).addTo(map);
{{- end}}
</script>
</body>
</html>
`))

type pageData struct {
	CenterLat, CenterLon float64
	Zoom                 int
	Points               [][3]float64
	Radius, Blur         int
	MaxZoom              int
	Bounds               [][2]float64
}

// Renderer implements pipeline.Renderer.
type Renderer struct {
	path   string
	logger *slog.Logger
}

// NewRenderer creates a heatmap Renderer writing HTML to path.
func NewRenderer(path string, logger *slog.Logger) *Renderer {
	return &Renderer{path: path, logger: logger}
}

func (r *Renderer) Name() string { return "heatmap" }

// Render writes the page. Tables without coordinates, or with no row where
// latitude, longitude and prediction are all present, are skipped with a
// warning.
func (r *Renderer) Render(_ context.Context, scored *table.Table) error {
	if !scored.Has(domain.ColLatitude, domain.ColLongitude) {
		r.logger.Warn("heatmap skipped, table has no coordinates", "path", r.path)
		return nil
	}
	lat, err := scored.Floats(domain.ColLatitude)
	if err != nil {
		return err
	}
	lon, err := scored.Floats(domain.ColLongitude)
	if err != nil {
		return err
	}
	temp, err := scored.Floats(domain.ColPredicted)
	if err != nil {
		return err
	}

	data, ok := buildPage(lat, lon, temp)
	if !ok {
		r.logger.Warn("heatmap skipped, no complete coordinate rows", "path", r.path)
		return nil
	}

	if err := atomicfile.Write(r.path, func(w io.Writer) error { return write(w, data) }); err != nil {
		return err
	}
	r.logger.Info("heatmap saved", "path", r.path, "points", len(data.Points))
	return nil
}

func write(w io.Writer, data pageData) error {
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render heatmap: %w", err)
	}
	return nil
}

// buildPage keeps the complete rows, centres the view on their mean and
// frames them with their bounding box.
func buildPage(lat, lon, temp []float64) (pageData, bool) {
	points := make([][3]float64, 0, len(lat))
	flat := make([]float64, 0, 2*len(lat))
	lats := make([]float64, 0, len(lat))
	lons := make([]float64, 0, len(lat))
	for i := range lat {
		if math.IsNaN(lat[i]) || math.IsNaN(lon[i]) || math.IsNaN(temp[i]) {
			continue
		}
		points = append(points, [3]float64{lat[i], lon[i], temp[i]})
		flat = append(flat, lon[i], lat[i])
		lats = append(lats, lat[i])
		lons = append(lons, lon[i])
	}
	if len(points) == 0 {
		return pageData{}, false
	}

	data := pageData{
		CenterLat: stat.Mean(lats, nil),
		CenterLon: stat.Mean(lons, nil),
		Zoom:      zoomStart,
		Points:    points,
		Radius:    radius,
		Blur:      blur,
		MaxZoom:   maxZoom,
	}
	b := geom.NewMultiPointFlat(geom.XY, flat).Bounds()
	if b.Min(0) < b.Max(0) || b.Min(1) < b.Max(1) {
		data.Bounds = [][2]float64{{b.Min(1), b.Min(0)}, {b.Max(1), b.Max(0)}}
	}
	return data, true
}
