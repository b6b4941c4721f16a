// Package csvfile loads the input tables from disk and persists the scored
// outputs as CSV.
package csvfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/atomicfile"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

// Reader implements pipeline.Loader over two CSV files.
type Reader struct {
	trainPath string
	predPath  string
	logger    *slog.Logger
}

// NewReader creates a Reader for the training and prediction files.
func NewReader(trainPath, predPath string, logger *slog.Logger) *Reader {
	return &Reader{trainPath: trainPath, predPath: predPath, logger: logger}
}

func (r *Reader) LoadTraining(ctx context.Context) (*table.Table, error) {
	return r.load(ctx, "training", r.trainPath)
}

func (r *Reader) LoadPrediction(ctx context.Context) (*table.Table, error) {
	return r.load(ctx, "prediction", r.predPath)
}

func (r *Reader) load(ctx context.Context, name, path string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s data: %w", name, err)
	}
	defer f.Close()

	t, err := table.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s data %s: %w", name, path, err)
	}
	r.logger.Debug("csv loaded", "table", name, "path", path, "rows", t.Len(), "columns", len(t.Names()))
	return t, nil
}

// Writer implements pipeline.Persister. Both files are written through a
// temporary sibling and renamed into place.
type Writer struct {
	predPath   string
	sortedPath string
	logger     *slog.Logger
}

// NewWriter creates a Writer for the predictions and ranking files.
func NewWriter(predPath, sortedPath string, logger *slog.Logger) *Writer {
	return &Writer{predPath: predPath, sortedPath: sortedPath, logger: logger}
}

func (w *Writer) Persist(ctx context.Context, scored, ranked *table.Table) error {
	if err := writeFile(ctx, w.predPath, scored); err != nil {
		return err
	}
	if err := writeFile(ctx, w.sortedPath, ranked); err != nil {
		return err
	}
	w.logger.Info("results saved",
		"predictions_path", w.predPath,
		"sorted_path", w.sortedPath,
		"rows", scored.Len(),
	)
	return nil
}

func writeFile(ctx context.Context, path string, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return atomicfile.Write(path, t.WriteCSV)
}
