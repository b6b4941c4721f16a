// Command gensample writes synthetic training and prediction CSVs shaped like
// the Chennai inputs, so the pipeline can be exercised without field data.
//
// Usage:
//
//	go run ./cmd/gensample \
//	  -train-out data/final_realistic_augmented_dataset.csv \
//	  -pred-out data/NDVI_LST_Chennai_July2025_with_LST.csv \
//	  -train-rows 2000 -pred-rows 5000 -seed 7
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

// Raw training headers as they appear in the field exports.
var trainingHeader = []string{"Temperature", "Humidity", " Latitude (°N) ", "Longitude (°E)", "LST", "NDVI"}

var predictionHeader = []string{"Latitude", "Longitude", "LST_C", "NDVI"}

type options struct {
	trainRows, predRows int
	lat, lon, spread    float64
	missingRate         float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	trainOut := flag.String("train-out", "data/final_realistic_augmented_dataset.csv", "output path for the training CSV")
	predOut := flag.String("pred-out", "data/NDVI_LST_Chennai_July2025_with_LST.csv", "output path for the prediction CSV")
	seed := flag.Uint64("seed", 1, "PRNG seed")
	var opts options
	flag.IntVar(&opts.trainRows, "train-rows", 1000, "training rows")
	flag.IntVar(&opts.predRows, "pred-rows", 2500, "prediction grid rows")
	flag.Float64Var(&opts.lat, "lat", 13.0827, "city centre latitude")
	flag.Float64Var(&opts.lon, "lon", 80.2707, "city centre longitude")
	flag.Float64Var(&opts.spread, "spread", 0.15, "half width of the sampled area in degrees")
	flag.Float64Var(&opts.missingRate, "missing-rate", 0.02, "share of training cells left blank")
	flag.Parse()

	if opts.trainRows <= 0 || opts.predRows <= 0 {
		flag.Usage()
		return fmt.Errorf("row counts must be positive")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))

	train, err := trainingTable(rng, opts)
	if err != nil {
		return err
	}
	if err := writeTable(*trainOut, train); err != nil {
		return fmt.Errorf("writing training data: %w", err)
	}
	log.Printf("wrote %d training rows: %s", train.Len(), *trainOut)

	pred, err := predictionTable(rng, opts)
	if err != nil {
		return err
	}
	if err := writeTable(*predOut, pred); err != nil {
		return fmt.Errorf("writing prediction data: %w", err)
	}
	log.Printf("wrote %d prediction rows: %s", pred.Len(), *predOut)
	return nil
}

// sample draws one location with surface conditions. Land surface
// temperature rises toward the centre and falls with vegetation.
func sample(rng *rand.Rand, o options) (lat, lon, lst, ndvi float64) {
	lat = o.lat + (rng.Float64()*2-1)*o.spread
	lon = o.lon + (rng.Float64()*2-1)*o.spread
	dist := math.Hypot(lat-o.lat, lon-o.lon) / o.spread
	ndvi = clamp(0.15+0.45*dist+rng.NormFloat64()*0.08, -0.1, 0.85)
	lst = 42 - 6*dist - 8*ndvi + rng.NormFloat64()*1.2
	return lat, lon, lst, ndvi
}

func trainingTable(rng *rand.Rand, o options) (*table.Table, error) {
	cols := make(map[string][]float64, len(trainingHeader))
	for i := 0; i < o.trainRows; i++ {
		lat, lon, lst, ndvi := sample(rng, o)
		humidity := 55 + rng.Float64()*25
		temp := 4 + 0.8*lst - 1.5*ndvi + rng.NormFloat64()*0.6
		row := []float64{temp, humidity, lat, lon, lst, ndvi}
		for j, name := range trainingHeader {
			v := row[j]
			if rng.Float64() < o.missingRate {
				v = math.NaN()
			}
			cols[name] = append(cols[name], v)
		}
	}
	return table.FromColumns(trainingHeader, cols)
}

func predictionTable(rng *rand.Rand, o options) (*table.Table, error) {
	cols := make(map[string][]float64, len(predictionHeader))
	for i := 0; i < o.predRows; i++ {
		lat, lon, lst, ndvi := sample(rng, o)
		for j, v := range []float64{lat, lon, lst, ndvi} {
			cols[predictionHeader[j]] = append(cols[predictionHeader[j]], v)
		}
	}
	return table.FromColumns(predictionHeader, cols)
}

func writeTable(path string, t *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
