// Command validate checks the invariants of a finished run: normalised
// columns, UTEI recomputation, ranking order and row counts across the
// predictions and sorted CSVs.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -predictions data/utei_predictions.csv \
//	  -sorted data/utei_sorted.csv
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/domain"
	"github.com/pixelpitstop/Urban-Heat-Islands-Project/internal/table"
)

// tolerance absorbs floating point rounding in the recomputation.
const tolerance = 1e-9

var outputColumns = []string{
	domain.ColLST, domain.ColNDVI, domain.ColHumidity, domain.ColPredicted,
	domain.ColLSTNorm, domain.ColNDVINorm, domain.ColHumidityNorm, domain.ColUTEI,
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	predPath := flag.String("predictions", "data/utei_predictions.csv", "path to the predictions CSV")
	sortedPath := flag.String("sorted", "data/utei_sorted.csv", "path to the sorted CSV")
	flag.Parse()

	if code := run(*predPath, *sortedPath); code != 0 {
		os.Exit(code)
	}
}

func run(predPath, sortedPath string) int {
	fmt.Println("=== UTEI Output Validation ===")
	fmt.Println()

	pred, err := load(predPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load predictions: %v\n", err)
		return 1
	}
	sorted, err := load(sortedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load sorted: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSchema(pred, sorted),
	}
	if phases[0].passed() {
		phases = append(phases,
			validateNormalisation(pred),
			validateIndex(pred),
			validateRanking(pred, sorted),
		)
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d predictions, %d sorted\n", pred.Len(), sorted.Len())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func load(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return table.ReadCSV(f)
}

// ── Phases ──

func validateSchema(pred, sorted *table.Table) *phase {
	p := &phase{name: "Schema and row counts"}
	for name, t := range map[string]*table.Table{"predictions": pred, "sorted": sorted} {
		if missing := domain.MissingColumns(t.Names(), outputColumns); len(missing) > 0 {
			p.errorf("%s: missing columns %v", name, missing)
		}
	}
	if pred.Len() != sorted.Len() {
		p.errorf("row counts differ: predictions=%d sorted=%d", pred.Len(), sorted.Len())
	}
	return p
}

func validateNormalisation(t *table.Table) *phase {
	p := &phase{name: "Min-max normalisation"}
	pairs := []struct{ raw, norm string }{
		{domain.ColLST, domain.ColLSTNorm},
		{domain.ColNDVI, domain.ColNDVINorm},
		{domain.ColHumidity, domain.ColHumidityNorm},
	}
	for _, pair := range pairs {
		raw, err := t.Floats(pair.raw)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		norm, err := t.Floats(pair.norm)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		checkNormalised(p, pair.norm, raw, norm)
	}
	return p
}

func checkNormalised(p *phase, name string, raw, norm []float64) {
	want := domain.MinMax(raw)
	for i := range norm {
		switch {
		case math.IsNaN(want[i]) != math.IsNaN(norm[i]):
			p.errorf("%s row %d: got %v, want %v", name, i+1, norm[i], want[i])
		case math.IsNaN(norm[i]):
		case norm[i] < -tolerance || norm[i] > 1+tolerance:
			p.errorf("%s row %d: %v outside [0,1]", name, i+1, norm[i])
		case math.Abs(norm[i]-want[i]) > tolerance:
			p.errorf("%s row %d: got %v, want %v", name, i+1, norm[i], want[i])
		}
	}
}

func validateIndex(t *table.Table) *phase {
	p := &phase{name: "UTEI recomputation"}
	cols := make(map[string][]float64, 4)
	for _, name := range []string{domain.ColLSTNorm, domain.ColHumidityNorm, domain.ColNDVINorm, domain.ColUTEI} {
		v, err := t.Floats(name)
		if err != nil {
			p.errorf("%v", err)
			return p
		}
		cols[name] = v
	}
	utei := cols[domain.ColUTEI]
	for i := range utei {
		want := domain.UTEI(cols[domain.ColLSTNorm][i], cols[domain.ColHumidityNorm][i], cols[domain.ColNDVINorm][i])
		if math.IsNaN(want) && math.IsNaN(utei[i]) {
			continue
		}
		if math.Abs(want-utei[i]) > tolerance {
			p.errorf("row %d: UTEI %v, recomputed %v", i+1, utei[i], want)
		}
	}
	return p
}

func validateRanking(pred, sorted *table.Table) *phase {
	p := &phase{name: "Ranking order"}
	ranked, err := sorted.Floats(domain.ColUTEI)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	checkOrder(p, ranked)

	scored, err := pred.Floats(domain.ColUTEI)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	a, b := sortedCopy(scored), sortedCopy(ranked)
	if len(a) != len(b) {
		p.errorf("sorted output is not a permutation: %d vs %d scored rows", len(a), len(b))
		return p
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tolerance {
			p.errorf("sorted output is not a permutation of predictions")
			break
		}
	}
	return p
}

// checkOrder requires non-increasing values with missing values last.
func checkOrder(p *phase, values []float64) {
	seenNaN := false
	for i, v := range values {
		if math.IsNaN(v) {
			seenNaN = true
			continue
		}
		if seenNaN {
			p.errorf("row %d: value %v after a missing UTEI", i+1, v)
			return
		}
		if i > 0 && v > values[i-1]+tolerance {
			p.errorf("row %d: UTEI %v above previous %v", i+1, v, values[i-1])
			return
		}
	}
}

// sortedCopy returns the non-missing values in ascending order.
func sortedCopy(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
