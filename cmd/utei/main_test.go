package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/config"
)

func TestRenderers_Order(t *testing.T) {
	cfg := &config.Config{HeatmapFile: "map.html", HistogramFile: "hist.png", ScatterFile: "scatter.png"}

	var names []string
	for _, r := range renderers(cfg, slog.Default()) {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"histogram", "scatter", "heatmap"}, names)
}
