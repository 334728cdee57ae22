package caaml

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// formatNumber writes v with 12 significant digits.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func addElement(parent *etree.Element, tag string) *etree.Element {
	return parent.CreateElement("caaml:" + tag)
}

// addText adds a text element unless value is empty.
func addText(parent *etree.Element, tag, value string) *etree.Element {
	if value == "" {
		return nil
	}
	e := addElement(parent, tag)
	e.SetText(value)
	return e
}

// addFloat adds a numeric element unless v is NaN. An empty uom writes no
// unit attribute.
func addFloat(parent *etree.Element, tag string, v float64, uom string) *etree.Element {
	if math.IsNaN(v) {
		return nil
	}
	e := addElement(parent, tag)
	if uom != "" {
		e.CreateAttr("uom", uom)
	}
	e.SetText(formatNumber(v))
	return e
}

// addNumber adds *v converted to wire units with mul.
func addNumber(parent *etree.Element, tag string, v *float64, mul float64, uom string) *etree.Element {
	if v == nil {
		return nil
	}
	return addFloat(parent, tag, *v*mul, uom)
}

// addPosition writes v as tag/wrapper/position, the CAAML shape of
// elevations, aspects and slope angles.
func addPosition(parent *etree.Element, tag, wrapper string, v *float64, mul float64, uom string) {
	if v == nil {
		return
	}
	w := addElement(addElement(parent, tag), wrapper)
	if uom != "" {
		w.CreateAttr("uom", uom)
	}
	addFloat(w, "position", *v*mul, "")
}

func addTime(parent *etree.Element, tag string, t *time.Time) {
	if t != nil {
		addText(parent, tag, formatTime(*t))
	}
}

// addComment adds a metaData/comment pair unless comment is empty.
func addComment(parent *etree.Element, comment string) {
	if comment != "" {
		addText(addElement(parent, "metaData"), "comment", comment)
	}
}

// notes collects "title: value" lines for values the target version has
// no element for.
type notes []string

func (n *notes) add(title, value string) {
	*n = append(*n, title+": "+value)
}

// comment appends the notes to base, separated by a blank line.
func (n notes) comment(base string) string {
	folded := strings.Join(n, "\n")
	switch {
	case folded == "":
		return base
	case base == "":
		return folded
	}
	return base + "\n\n" + folded
}

// metaBuilder fills a metaData element. Values the version cannot carry
// are folded into its comment when the builder is closed.
type metaBuilder struct {
	version Version
	elem    *etree.Element
	notes   notes
}

func newMeta(parent *etree.Element, tag string, v Version) *metaBuilder {
	return &metaBuilder{version: v, elem: addElement(parent, tag)}
}

// text writes value as an element from version since on, as a note with
// title before.
func (m *metaBuilder) text(since Version, tag, title, value string) {
	if value == "" {
		return
	}
	if m.version.AtLeast(since) {
		addText(m.elem, tag, value)
		return
	}
	m.notes.add(title, value)
}

// number is text for a numeric value, suffix being the unit of the note.
func (m *metaBuilder) number(since Version, tag, title string, v *float64, mul float64, uom, suffix string) {
	if v == nil {
		return
	}
	if m.version.AtLeast(since) {
		addNumber(m.elem, tag, v, mul, uom)
		return
	}
	m.notes.add(title, formatNumber(*v)+suffix)
}

// method writes a method of measurement. Before 6.0.6 values outside
// allowed are written as "other" with the method kept in a note.
func (m *metaBuilder) method(value string, allowed []string) {
	if value == "" {
		return
	}
	if m.version.AtLeast(V606) || allowed == nil || contains(allowed, value) {
		addText(m.elem, "methodOfMeas", value)
		return
	}
	addText(m.elem, "methodOfMeas", "other")
	m.notes.add("Measurement method", value)
}

// close writes the comment first in the metadata and drops the element
// when it stayed empty.
func (m *metaBuilder) close(comment string) {
	if c := m.notes.comment(comment); c != "" {
		e := etree.NewElement("caaml:comment")
		e.SetText(c)
		m.elem.InsertChildAt(0, e)
	}
	if len(m.elem.ChildElements()) == 0 {
		if parent := m.elem.Parent(); parent != nil {
			parent.RemoveChild(m.elem)
		}
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
