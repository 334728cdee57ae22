package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind selects how a table is indexed along the vertical (or spectral) axis.
type Kind int

const (
	// Layer rows are height intervals: top_depth, bottom_depth and thickness.
	Layer Kind = iota
	// Point rows are single heights in the depth column.
	Point
	// Spectral rows are wavelength bands.
	Spectral
)

// Index column names. Despite their names, depth columns hold heights in
// metres measured upward from the ground.
const (
	TopDepth      = "top_depth"
	BottomDepth   = "bottom_depth"
	Thickness     = "thickness"
	Depth         = "depth"
	MinWavelength = "min_wavelength"
	MaxWavelength = "max_wavelength"
)

func (k Kind) String() string {
	switch k {
	case Layer:
		return "Layer"
	case Point:
		return "Point"
	case Spectral:
		return "Spectral"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IndexColumns returns the index columns a validated table of this kind
// always carries.
func (k Kind) IndexColumns() []string {
	switch k {
	case Layer:
		return []string{TopDepth, BottomDepth, Thickness}
	case Point:
		return []string{Depth}
	case Spectral:
		return []string{MinWavelength, MaxWavelength}
	}
	return nil
}

// SortColumn is the column rows are ordered by, descending.
func (k Kind) SortColumn() string {
	return k.IndexColumns()[0]
}

// Type is the storage type a column is coerced into.
type Type int

const (
	Float Type = iota
	Int
	String
	Time
	FloatList
	Any
)

func (t Type) String() string {
	switch t {
	case Float:
		return "float"
	case Int:
		return "int"
	case String:
		return "string"
	case Time:
		return "time"
	case FloatList:
		return "float list"
	case Any:
		return "any"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Column is the contract for one non-index column.
type Column struct {
	Name        string
	Type        Type
	Optional    bool
	NullAllowed bool
	Min         *float64
	Max         *float64
	// Values restricts string columns to an enumeration.
	Values []string
	// Levels restricts numeric columns to a set of allowed values.
	Levels []float64
	// Translate maps string input onto stored values before coercion.
	Translate map[string]any
	// Length fixes the length of every FloatList cell when non-zero.
	Length int
}

// Bound is a helper for the Min and Max fields.
func Bound(v float64) *float64 {
	return &v
}

// Contract is the declarative column set of one profile kind.
type Contract struct {
	Kind    Kind
	Columns []Column
}

func (c *Contract) column(name string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// levelTolerance is the slack allowed when matching a numeric level.
const levelTolerance = 1e-6

func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case *float64:
		return x == nil || math.IsNaN(*x)
	case *string:
		return x == nil
	case time.Time:
		return x.IsZero()
	}
	return false
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case *float64:
		return *x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("cannot convert %T to a number", v)
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err == nil {
			return i, nil
		}
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	return int64(f), nil
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case *string:
		return *x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	return "", fmt.Errorf("cannot convert %T to a string", v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the timestamp layouts accepted in tables and CAAML
// documents. A timestamp without a zone is taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a timestamp", s)
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case *time.Time:
		return *x, nil
	case string:
		return ParseTime(x)
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to a time", v)
}

func toFloatList(v any, length int) ([]float64, error) {
	var out []float64
	switch x := v.(type) {
	case []float64:
		out = append([]float64(nil), x...)
	case []any:
		out = make([]float64, len(x))
		for i, e := range x {
			f, err := toFloat(e)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
	case string:
		for _, field := range strings.Fields(x) {
			f, err := toFloat(field)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	default:
		return nil, fmt.Errorf("cannot convert %T to a list of numbers", v)
	}
	if length > 0 && len(out) != length {
		return nil, fmt.Errorf("expected %d values, got %d", length, len(out))
	}
	return out, nil
}

// coerce converts one non-null cell according to the column contract.
func (c Column) coerce(v any) (any, error) {
	if s, ok := v.(string); ok && c.Translate != nil {
		if tr, found := c.Translate[s]; found {
			v = tr
		}
	}
	if isNull(v) {
		return nil, nil
	}

	switch c.Type {
	case Float:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) {
			return nil, nil
		}
		if err := c.checkNumber(f); err != nil {
			return nil, err
		}
		return f, nil
	case Int:
		i, err := toInt(v)
		if err != nil {
			return nil, err
		}
		if err := c.checkNumber(float64(i)); err != nil {
			return nil, err
		}
		return i, nil
	case String:
		s, err := toString(v)
		if err != nil {
			return nil, err
		}
		if len(c.Values) > 0 && !contains(c.Values, s) {
			return nil, fmt.Errorf("value %q is not one of %s", s, strings.Join(c.Values, ", "))
		}
		return s, nil
	case Time:
		t, err := toTime(v)
		if err != nil {
			return nil, err
		}
		if t.Location() == time.Local {
			t = t.UTC()
		}
		return t, nil
	case FloatList:
		l, err := toFloatList(v, c.Length)
		if err != nil {
			return nil, err
		}
		for _, f := range l {
			if err := c.checkNumber(f); err != nil {
				return nil, err
			}
		}
		return l, nil
	}
	return v, nil
}

func (c Column) checkNumber(f float64) error {
	if c.Min != nil && f < *c.Min {
		return fmt.Errorf("value %g is below the minimum %g", f, *c.Min)
	}
	if c.Max != nil && f > *c.Max {
		return fmt.Errorf("value %g is above the maximum %g", f, *c.Max)
	}
	if len(c.Levels) > 0 {
		for _, l := range c.Levels {
			if math.Abs(f-l) < levelTolerance {
				return nil
			}
		}
		return fmt.Errorf("value %g is not an accepted level", f)
	}
	return nil
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
