// Package table wraps a gota DataFrame with the column operations the UTEI
// pipeline needs: header cleanup, missing-row removal, float column access
// and ranked CSV output.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// missingTokens are cell values read as missing. The list matches the
// pandas read_csv defaults plus gota's own "<nil>".
var missingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null", "<nil>",
}

// Table is a column-named tabular dataset.
type Table struct {
	df dataframe.DataFrame
}

// ReadCSV parses a header-first CSV stream.
func ReadCSV(r io.Reader) (*Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// FromColumns builds a table of float columns in the given order.
func FromColumns(names []string, cols map[string][]float64) (*Table, error) {
	ss := make([]series.Series, 0, len(names))
	for _, name := range names {
		values, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("from columns: no values for %q", name)
		}
		ss = append(ss, series.New(values, series.Float, name))
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return nil, fmt.Errorf("from columns: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Names returns the column names in order.
func (t *Table) Names() []string { return t.df.Names() }

// Len returns the number of rows.
func (t *Table) Len() int { return t.df.Nrow() }

// Has reports whether every named column exists.
func (t *Table) Has(cols ...string) bool {
	names := make(map[string]struct{}, t.df.Ncol())
	for _, n := range t.df.Names() {
		names[n] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := names[c]; !ok {
			return false
		}
	}
	return true
}

// RenameColumns applies fn to every header. It fails when two columns would
// end up with the same name.
func (t *Table) RenameColumns(fn func(string) string) error {
	old := t.df.Names()
	seen := make(map[string]string, len(old))
	renamed := make([]string, len(old))
	for i, name := range old {
		n := fn(name)
		if prev, dup := seen[n]; dup {
			return fmt.Errorf("rename columns: %q and %q both become %q", prev, name, n)
		}
		seen[n] = name
		renamed[i] = n
	}

	df := t.df
	for i := range old {
		if old[i] == renamed[i] {
			continue
		}
		df = df.Rename(renamed[i], old[i])
		if df.Err != nil {
			return fmt.Errorf("rename %q: %w", old[i], df.Err)
		}
	}
	t.df = df
	return nil
}

// DropMissing removes every row holding a missing value in any column and
// returns how many rows were dropped.
func (t *Table) DropMissing() (int, error) {
	n := t.df.Nrow()
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for _, name := range t.df.Names() {
		for i, nan := range t.df.Col(name).IsNaN() {
			if nan {
				keep[i] = false
			}
		}
	}

	rows := make([]int, 0, n)
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	if len(rows) == n {
		return 0, nil
	}
	if err := t.subset(rows); err != nil {
		return 0, fmt.Errorf("drop missing: %w", err)
	}
	return n - len(rows), nil
}

// Floats returns a column as float64 values. Missing cells are NaN.
func (t *Table) Floats(col string) ([]float64, error) {
	if !t.Has(col) {
		return nil, fmt.Errorf("column %q not found", col)
	}
	s := t.df.Col(col)
	switch s.Type() {
	case series.Float, series.Int:
	default:
		if !allMissing(s) {
			return nil, fmt.Errorf("column %q is %s, not numeric", col, s.Type())
		}
	}
	values := s.Float()
	for i, nan := range s.IsNaN() {
		if nan {
			values[i] = math.NaN()
		}
	}
	return values, nil
}

// SetFloats adds or replaces a float column.
func (t *Table) SetFloats(col string, values []float64) error {
	if len(values) != t.df.Nrow() {
		return fmt.Errorf("set %q: %d values for %d rows", col, len(values), t.df.Nrow())
	}
	df := t.df.Mutate(series.New(values, series.Float, col))
	if df.Err != nil {
		return fmt.Errorf("set %q: %w", col, df.Err)
	}
	t.df = df
	return nil
}

// SetConstant adds or replaces col with v on every row.
func (t *Table) SetConstant(col string, v float64) error {
	values := make([]float64, t.df.Nrow())
	for i := range values {
		values[i] = v
	}
	return t.SetFloats(col, values)
}

// SortedDesc returns a copy of the table ordered by col descending. Equal
// values keep their relative order and missing values go last.
func (t *Table) SortedDesc(col string) (*Table, error) {
	values, err := t.Floats(col)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	rows := make([]int, len(values))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		va, vb := values[rows[a]], values[rows[b]]
		if math.IsNaN(vb) {
			return !math.IsNaN(va)
		}
		if math.IsNaN(va) {
			return false
		}
		return va > vb
	})

	out := &Table{df: t.df}
	if err := out.subset(rows); err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	return out, nil
}

// WriteCSV writes the header and rows without an index column. Floats are
// written in their shortest exact form and missing cells are left empty.
func (t *Table) WriteCSV(w io.Writer) error {
	names := t.df.Names()
	cells := make([][]string, len(names))
	for j, name := range names {
		cells[j] = columnCells(t.df.Col(name))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	row := make([]string, len(names))
	for i := 0; i < t.df.Nrow(); i++ {
		for j := range names {
			row[j] = cells[j][i]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func columnCells(s series.Series) []string {
	missing := s.IsNaN()
	var out []string
	if s.Type() == series.Float {
		values := s.Float()
		out = make([]string, len(values))
		for i, v := range values {
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	} else {
		out = s.Records()
	}
	for i, nan := range missing {
		if nan {
			out[i] = ""
		}
	}
	return out
}

func (t *Table) subset(rows []int) error {
	if len(rows) == 0 {
		t.df = emptyLike(t.df)
		return t.df.Err
	}
	df := t.df.Subset(rows)
	if df.Err != nil {
		return df.Err
	}
	t.df = df
	return nil
}

// emptyLike keeps the header of df with zero rows. gota rejects an empty
// index selection, so columns are rebuilt instead.
func emptyLike(df dataframe.DataFrame) dataframe.DataFrame {
	ss := make([]series.Series, 0, df.Ncol())
	for _, name := range df.Names() {
		col := df.Col(name)
		ss = append(ss, series.New([]string{}, col.Type(), name))
	}
	if len(ss) == 0 {
		return dataframe.DataFrame{Err: errors.New("table has no columns")}
	}
	return dataframe.New(ss...)
}

func allMissing(s series.Series) bool {
	for _, nan := range s.IsNaN() {
		if !nan {
			return false
		}
	}
	return true
}
