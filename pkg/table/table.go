// Package table validates and stores the tabular payload of snow profiles.
//
// A Frame is the loose column-oriented input. Validate checks it against a
// Contract and returns an immutable Table whose rows are sorted from the
// snow surface down to the ground.
package table

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/chrissnell/snowprofile/internal/log"
)

// MaxPlausibleDepth is the height above which a warning is logged.
const MaxPlausibleDepth = 10.0

// Frame is column-oriented input: column name to cell values. A nil cell,
// a NaN float or a zero time is a null.
type Frame map[string][]any

// Len returns the row count of the longest column.
func (f Frame) Len() int {
	n := 0
	for _, c := range f {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}

// SchemaError reports a frame that violates its contract.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return "schema error: " + e.Reason
	}
	return fmt.Sprintf("schema error on column %s: %s", e.Column, e.Reason)
}

func schemaErrorf(column, format string, args ...any) *SchemaError {
	return &SchemaError{Column: column, Reason: fmt.Sprintf(format, args...)}
}

// Table is a validated, immutable table. Null cells are stored as nil.
type Table struct {
	kind    Kind
	columns []string
	data    map[string][]any
	rows    int
	// derived is the layer index column computed from the other two.
	derived string
}

// Validate checks frame against contract and returns the normalized table.
// All failures are *SchemaError.
func Validate(frame Frame, contract *Contract) (*Table, error) {
	if contract == nil {
		return nil, &SchemaError{Reason: "no contract"}
	}
	kind := contract.Kind

	n := -1
	for name, col := range frame {
		if n == -1 {
			n = len(col)
			continue
		}
		if len(col) != n {
			return nil, schemaErrorf(name, "has %d rows, expected %d", len(col), n)
		}
	}
	if n < 0 {
		n = 0
	}

	index := kind.IndexColumns()
	if err := checkColumnSet(frame, contract, index); err != nil {
		return nil, err
	}

	t := &Table{kind: kind, data: map[string][]any{}, rows: n}

	depths := map[string][]float64{}
	for _, name := range index {
		col, ok := frame[name]
		if !ok {
			continue
		}
		values := make([]float64, n)
		for i, v := range col {
			if isNull(v) {
				return nil, schemaErrorf(name, "null value at row %d", i)
			}
			f, err := toFloat(v)
			if err != nil {
				return nil, schemaErrorf(name, "row %d: %v", i, err)
			}
			if math.IsNaN(f) {
				return nil, schemaErrorf(name, "null value at row %d", i)
			}
			values[i] = f
		}
		depths[name] = values
	}

	if kind == Layer {
		t.derived = deriveLayer(depths, n)
	}

	for _, name := range index {
		values := depths[name]
		for i, f := range values {
			if f < 0 {
				return nil, schemaErrorf(name, "negative value %g at row %d", f, i)
			}
		}
		if kind != Spectral && len(values) > 0 && maxOf(values) > MaxPlausibleDepth {
			log.Warnw("values above 10m, please check the data", "column", name)
		}
	}

	for _, name := range index {
		t.columns = append(t.columns, name)
		cells := make([]any, n)
		for i, f := range depths[name] {
			cells[i] = f
		}
		t.data[name] = cells
	}

	for _, c := range contract.Columns {
		in, ok := frame[c.Name]
		if !ok {
			continue
		}
		cells := make([]any, n)
		for i, v := range in {
			out, err := c.coerce(v)
			if err != nil {
				return nil, schemaErrorf(c.Name, "row %d: %v", i, err)
			}
			if out == nil && !c.NullAllowed {
				return nil, schemaErrorf(c.Name, "null value at row %d", i)
			}
			cells[i] = out
		}
		t.columns = append(t.columns, c.Name)
		t.data[c.Name] = cells
	}

	t.sortDescending(depths[kind.SortColumn()])
	return t, nil
}

func checkColumnSet(frame Frame, contract *Contract, index []string) error {
	if contract.Kind == Layer {
		present := 0
		for _, name := range index {
			if _, ok := frame[name]; ok {
				present++
			}
		}
		if present != 2 {
			return schemaErrorf("", "exactly two of %s are required, got %d", strings.Join(index, ", "), present)
		}
	} else {
		for _, name := range index {
			if _, ok := frame[name]; !ok {
				return schemaErrorf(name, "required column is missing")
			}
		}
	}

	for _, c := range contract.Columns {
		if _, ok := frame[c.Name]; !ok && !c.Optional {
			return schemaErrorf(c.Name, "required column is missing")
		}
	}

	var unknown []string
	for name := range frame {
		if contains(index, name) {
			continue
		}
		if _, ok := contract.column(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return schemaErrorf(unknown[0], "unexpected column (accepted: %s)", strings.Join(accepted(contract, index), ", "))
	}
	return nil
}

func accepted(contract *Contract, index []string) []string {
	out := append([]string(nil), index...)
	for _, c := range contract.Columns {
		out = append(out, c.Name)
	}
	return out
}

// deriveLayer fills in the missing layer index column and returns its name.
func deriveLayer(d map[string][]float64, n int) string {
	top, hasTop := d[TopDepth]
	bottom, hasBottom := d[BottomDepth]
	thickness, hasThickness := d[Thickness]

	switch {
	case !hasTop:
		top = make([]float64, n)
		for i := range top {
			top[i] = bottom[i] + thickness[i]
		}
		d[TopDepth] = top
		return TopDepth
	case !hasBottom:
		bottom = make([]float64, n)
		for i := range bottom {
			bottom[i] = top[i] - thickness[i]
		}
		d[BottomDepth] = bottom
		return BottomDepth
	case !hasThickness:
		thickness = make([]float64, n)
		for i := range thickness {
			thickness[i] = top[i] - bottom[i]
		}
		d[Thickness] = thickness
		return Thickness
	}
	return ""
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

func (t *Table) sortDescending(key []float64) {
	order := make([]int, t.rows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key[order[a]] > key[order[b]]
	})

	for name, cells := range t.data {
		sorted := make([]any, len(cells))
		for i, j := range order {
			sorted[i] = cells[j]
		}
		t.data[name] = sorted
	}
}

// Kind returns the table indexing kind.
func (t *Table) Kind() Kind { return t.kind }

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Columns returns the column names, index columns first.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.columns...)
}

// Has reports whether the table carries column name.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.data[name]
	return ok
}

// Value returns the raw cell, nil when null or absent.
func (t *Table) Value(name string, row int) any {
	if !t.Has(name) || row < 0 || row >= t.rows {
		return nil
	}
	return t.data[name][row]
}

// Float returns a numeric cell, NaN when null or absent.
func (t *Table) Float(name string, row int) float64 {
	switch v := t.Value(name, row).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return math.NaN()
}

// Int returns an integer cell.
func (t *Table) Int(name string, row int) (int64, bool) {
	switch v := t.Value(name, row).(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// String returns a string cell.
func (t *Table) String(name string, row int) (string, bool) {
	s, ok := t.Value(name, row).(string)
	return s, ok
}

// Time returns a time cell.
func (t *Table) Time(name string, row int) (time.Time, bool) {
	v, ok := t.Value(name, row).(time.Time)
	return v, ok
}

// FloatList returns a list cell.
func (t *Table) FloatList(name string, row int) []float64 {
	l, _ := t.Value(name, row).([]float64)
	return append([]float64(nil), l...)
}

// Floats returns a whole numeric column with NaN for nulls.
func (t *Table) Floats(name string) []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = t.Float(name, i)
	}
	return out
}

// Frame returns a copy of the table that is valid input to Validate. Layer
// tables leave out the derived index column, so validating the frame again
// gives back the same values.
func (t *Table) Frame() Frame {
	f := Frame{}
	if t == nil {
		return f
	}
	for _, name := range t.columns {
		if t.kind == Layer && name == t.derived {
			continue
		}
		f[name] = append([]any(nil), t.data[name]...)
	}
	return f
}

// DecodeFrame decodes a JSON object of columns, as written by MarshalJSON,
// into a Frame for kind.
func DecodeFrame(data []byte, kind Kind) (Frame, error) {
	var raw map[string][]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding table: %w", err)
	}
	f := Frame(raw)
	if f == nil {
		f = Frame{}
	}
	if kind == Layer {
		_, top := f[TopDepth]
		_, bottom := f[BottomDepth]
		_, thickness := f[Thickness]
		if top && bottom && thickness {
			delete(f, derivedColumn(f))
		}
	}
	return f, nil
}

// derivedColumn picks the layer index column that the other two reproduce
// exactly, so dropping it loses nothing. Tables read from CAAML carry top
// depth and thickness, hence bottom depth when nothing matches.
func derivedColumn(f Frame) string {
	top, errTop := floatColumn(f[TopDepth])
	bottom, errBottom := floatColumn(f[BottomDepth])
	thickness, errThickness := floatColumn(f[Thickness])
	if errTop != nil || errBottom != nil || errThickness != nil ||
		len(top) != len(bottom) || len(top) != len(thickness) {
		return BottomDepth
	}
	candidates := []struct {
		name   string
		derive func(i int) float64
		values []float64
	}{
		{Thickness, func(i int) float64 { return top[i] - bottom[i] }, thickness},
		{BottomDepth, func(i int) float64 { return top[i] - thickness[i] }, bottom},
		{TopDepth, func(i int) float64 { return bottom[i] + thickness[i] }, top},
	}
	for _, c := range candidates {
		exact := true
		for i, v := range c.values {
			if c.derive(i) != v {
				exact = false
				break
			}
		}
		if exact {
			return c.name
		}
	}
	return BottomDepth
}

func floatColumn(cells []any) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, v := range cells {
		if isNull(v) {
			return nil, fmt.Errorf("null value at row %d", i)
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// MarshalJSON encodes the table as an object of columns.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := make(map[string][]any, len(t.columns))
	for _, name := range t.columns {
		cells := make([]any, t.rows)
		for i, v := range t.data[name] {
			if tm, ok := v.(time.Time); ok {
				cells[i] = tm.Format(time.RFC3339Nano)
				continue
			}
			cells[i] = v
		}
		out[name] = cells
	}
	return json.Marshal(out)
}
