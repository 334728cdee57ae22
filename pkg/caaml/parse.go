package caaml

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/table"
)

// Unit divisors from CAAML wire units to SI: a wire value is divided on read
// and multiplied on write.
const (
	unit = 1.0
	cm   = 100.0  // cm -> m
	mm   = 1000.0 // mm -> m
	cm2  = 1e4    // cm2 -> m2
	cm3  = 1e6    // cm3 -> m3
	nm   = 1e9    // nm -> m
)

// absentValues are the CAAML nil reasons and placeholders read as no value.
var absentValues = map[string]bool{
	"":             true,
	"inapplicable": true,
	"missing":      true,
	"template":     true,
	"unknown":      true,
	"withheld":     true,
}

// compassAspects converts compass aspect codes to degrees.
var compassAspects = map[string]float64{
	"N": 0, "NNE": 22.5, "NE": 45, "ENE": 67.5,
	"E": 90, "ESE": 112.5, "SE": 135, "SSE": 157.5,
	"S": 180, "SSW": 202.5, "SW": 225, "WSW": 247.5,
	"W": 270, "WNW": 292.5, "NW": 315, "NNW": 337.5,
}

// reader extracts values from a parsed document. Lookups use unprefixed
// paths which match elements of any namespace, so documents without a
// namespace read the same way. Conversion failures are logged and the
// value is left empty.
type reader struct {
	source string
	errs   int
}

func (r *reader) fieldError(path, value string, err error) {
	r.errs++
	log.Warnw("could not parse CAAML field", "source", r.source,
		"error", &FieldParseError{Path: path, Value: value, Err: err})
}

// element returns the first element matching one of paths, in order.
func element(e *etree.Element, paths ...string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, p := range paths {
		if f := e.FindElement(p); f != nil {
			return f
		}
	}
	return nil
}

func elements(e *etree.Element, path string) []*etree.Element {
	if e == nil {
		return nil
	}
	return e.FindElements(path)
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if absentValues[strings.ToLower(s)] {
		return ""
	}
	return s
}

// text returns the trimmed text of the first element found, or "" for
// absent and placeholder values.
func text(e *etree.Element, paths ...string) string {
	f := element(e, paths...)
	if f == nil {
		return ""
	}
	return clean(f.Text())
}

// attr returns an attribute of e. The name matches any namespace prefix, so
// "id" finds gml:id.
func attr(e *etree.Element, name string) string {
	if e == nil {
		return ""
	}
	return clean(e.SelectAttrValue(name, ""))
}

func fields(s string) []string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil
	}
	return f
}

func (r *reader) parseNumber(path, s string, div float64) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fieldError(path, s, err)
		return nil
	}
	f /= div
	return &f
}

// number reads a numeric element and converts it from wire units with div.
func (r *reader) number(e *etree.Element, div float64, paths ...string) *float64 {
	return r.parseNumber(paths[0], text(e, paths...), div)
}

func (r *reader) integer(e *etree.Element, path string) *int {
	s := text(e, path)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		r.fieldError(path, s, err)
		return nil
	}
	i := int(f)
	return &i
}

// aspect reads an aspect in degrees or as a compass code.
func (r *reader) aspect(e *etree.Element, paths ...string) *float64 {
	s := text(e, paths...)
	if deg, ok := compassAspects[strings.ToUpper(s)]; ok {
		return &deg
	}
	return r.parseNumber(paths[0], s, unit)
}

func (r *reader) time(e *etree.Element, path string) *time.Time {
	s := text(e, path)
	if s == "" {
		return nil
	}
	t, err := table.ParseTime(s)
	if err != nil {
		r.fieldError(path, s, err)
		return nil
	}
	if t.Location() == time.Local {
		t = t.UTC()
	}
	return &t
}

// latLon reads a gml:Point position given as "lat lon". A missing or
// unreadable position falls back to 0, 0.
func (r *reader) latLon(e *etree.Element) (float64, float64) {
	pos := text(e, "Point/pos")
	parts := strings.Fields(pos)
	if len(parts) >= 2 {
		lat, errLat := strconv.ParseFloat(parts[0], 64)
		lon, errLon := strconv.ParseFloat(parts[1], 64)
		if errLat == nil && errLon == nil {
			return lat, lon
		}
	}
	log.Errorw("could not parse latitude/longitude, using 0, 0", "source", r.source, "pos", pos)
	return 0, 0
}

type valueKind int

const (
	textValue valueKind = iota
	numberValue
	listValue
	customValue
)

// column describes how one table column is read from each row element.
type column struct {
	name  string
	paths []string
	// attr reads an attribute of the element found rather than its text.
	attr string
	kind valueKind
	div  float64
	// height converts a depth below the surface to a height above ground.
	height bool
}

func textColumn(name string, paths ...string) column {
	return column{name: name, paths: paths, kind: textValue}
}

func numberColumn(name string, div float64, paths ...string) column {
	return column{name: name, paths: paths, kind: numberValue, div: div}
}

// measuredColumns is a value column with its uncertainty and quality
// attributes.
func measuredColumns(name string, div float64, paths ...string) []column {
	return []column{
		numberColumn(name, div, paths...),
		{name: "uncertainty", paths: paths, attr: "uncertainty", kind: numberValue, div: unit},
		{name: "quality", paths: paths, attr: "quality", kind: textValue},
	}
}

func layerColumns(extra ...column) []column {
	return append([]column{
		{name: table.TopDepth, paths: []string{"depthTop"}, kind: numberValue, div: cm, height: true},
		numberColumn(table.Thickness, cm, "thickness"),
	}, extra...)
}

// rows reads columns from every row element. total is the profile depth
// used for the height conversion. Columns without any value are left out.
func (r *reader) rows(elems []*etree.Element, columns []column, total float64) table.Frame {
	frame := table.Frame{}
	for _, c := range columns {
		cells := make([]any, len(elems))
		present := false
		for i, e := range elems {
			if v := r.cell(e, c, total); v != nil {
				cells[i] = v
				present = true
			}
		}
		if present {
			frame[c.name] = cells
		}
	}
	return frame
}

func (r *reader) cell(e *etree.Element, c column, total float64) any {
	f := element(e, c.paths...)
	if f == nil {
		return nil
	}
	if c.kind == customValue {
		if ad := capture(f); ad != nil {
			return ad.Data
		}
		return nil
	}
	var s string
	if c.attr != "" {
		s = attr(f, c.attr)
	} else {
		s = clean(f.Text())
	}
	if s == "" {
		return nil
	}
	switch c.kind {
	case numberValue:
		v := r.parseNumber(c.paths[0], s, c.div)
		if v == nil {
			return nil
		}
		if c.height {
			return total - *v
		}
		return *v
	case listValue:
		var out []float64
		for _, field := range strings.Fields(s) {
			v := r.parseNumber(c.paths[0], field, c.div)
			if v == nil {
				return nil
			}
			out = append(out, *v)
		}
		return out
	}
	return s
}
