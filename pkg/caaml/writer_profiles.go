package caaml

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
	"github.com/chrissnell/snowprofile/pkg/table"
)

// Methods of measurement known to CAAML 6.0.5. Other methods are written as
// "other" with the method kept in the profile comment.
var (
	densityMethods605  = []string{"Snow Tube", "Snow Cylinder", "Snow Cutter", "Denoth Probe", "other"}
	lwcMethods605      = []string{"Denoth Probe", "Snow Fork", "other"}
	ssaMethods605      = []string{"Ice Cube", "other"}
	hardnessMethods605 = []string{"SnowMicroPen", "Ram Sonde", "Push-Pull Gauge", "other"}
)

// profileWriter writes one profile element: attributes, metadata and rows.
type profileWriter struct {
	s    *session
	tag  string
	id   string
	elem *etree.Element
	meta *metaBuilder
	data *table.Table
	// total is the snow depth row depths are measured from.
	total float64
	// dropped is set once the loss of row uncertainty and quality has been
	// logged.
	dropped bool
}

func (s *session) newProfile(parent *etree.Element, tag, metaTag string, pm snowprofile.ProfileMeta, nr *int, data *table.Table) *profileWriter {
	e := addElement(parent, tag)
	id := s.ids.next(pm.ID, tag)
	e.CreateAttr("gml:id", id)
	if pm.Name != "" {
		e.CreateAttr("name", pm.Name)
	}
	if len(pm.RelatedProfiles) > 0 {
		e.CreateAttr("relatedProfiles", strings.Join(pm.RelatedProfiles, " "))
	}
	if nr != nil {
		addText(e, "profileNr", strconv.Itoa(*nr))
	}

	pw := &profileWriter{s: s, tag: tag, id: id, elem: e, meta: newMeta(e, metaTag, s.version), data: data, total: s.depth}
	m := pw.meta
	addRecordTime(m.elem, pm.RecordTime, pm.RecordPeriod)

	// Profile depth and SWE are written only where they differ from the
	// document values.
	depth := pm.ProfileDepth
	if depth != nil && *depth == s.depth {
		depth = nil
	}
	swe := pm.ProfileSWE
	if swe != nil && s.swe != nil && *swe == *s.swe {
		swe = nil
	}
	if s.version.AtLeast(V606) {
		addComponents(m.elem, "hS", depth, swe)
		if depth != nil {
			pw.total = *depth
		}
	} else {
		m.number(V606, "", "Profile depth", depth, unit, "", " m")
		m.number(V606, "", "Profile SWE", swe, unit, "", " kg/m2")
	}
	return pw
}

// measurement writes the quality and uncertainty of the whole profile.
// Uncertainty is an element in every version unless gated is set.
func (pw *profileWriter) measurement(mm snowprofile.MeasurementMeta, uom string, gated bool) {
	pw.meta.text(V606, "qualityOfMeas", "Quality of measurement", mm.QualityOfMeasurement)
	since := V605
	if gated {
		since = V606
	}
	title := "Uncertainty of measurement"
	if uom != "" {
		title += " (" + uom + ")"
	}
	pw.meta.number(since, "uncertaintyOfMeas", title, mm.UncertaintyOfMeasurement, unit, uom, "")
}

func (pw *profileWriter) close(pm snowprofile.ProfileMeta) {
	pw.meta.close(pm.Comment)
	appendCustomData(pw.elem, pm.AdditionalData)
}

func (pw *profileWriter) layer(i int) *etree.Element {
	e := addElement(pw.elem, "Layer")
	addFloat(e, "depthTop", (pw.total-pw.data.Float(table.TopDepth, i))*cm, "cm")
	addFloat(e, "thickness", pw.data.Float(table.Thickness, i)*cm, "cm")
	return e
}

func (pw *profileWriter) point(i int) *etree.Element {
	e := addElement(pw.elem, "Obs")
	addFloat(e, "depth", (pw.total-pw.data.Float(table.Depth, i))*cm, "cm")
	return e
}

// value writes column of row i as tag. The row uncertainty and quality go
// in attributes of the element.
func (pw *profileWriter) value(row *etree.Element, tag, column string, i int, mul float64, uom string) *etree.Element {
	e := addFloat(row, tag, pw.data.Float(column, i)*mul, uom)
	if e != nil {
		pw.rowAttrs(e, i)
	}
	return e
}

func (pw *profileWriter) rowAttrs(e *etree.Element, i int) {
	u := pw.data.Float("uncertainty", i)
	q, _ := pw.data.String("quality", i)
	if math.IsNaN(u) && q == "" {
		return
	}
	if !pw.s.version.AtLeast(V606) {
		pw.drop()
		return
	}
	if !math.IsNaN(u) {
		e.CreateAttr("uncertainty", formatNumber(u))
	}
	if q != "" {
		e.CreateAttr("quality", q)
	}
}

func (pw *profileWriter) drop() {
	if pw.dropped {
		return
	}
	pw.dropped = true
	log.Warnw("row uncertainty and quality need CAAML 6.0.6, dropping them",
		"profile", pw.tag, "id", pw.id, "version", pw.s.version.String(), "feature", "row quality")
}

// singletons keeps the first profile of a kind for versions that allow only
// one per document.
func singletons[T any](s *session, tag string, profiles []T) []T {
	if s.version.AtLeast(V606) || len(profiles) <= 1 {
		return profiles
	}
	log.Errorw("only one profile of each kind is allowed in this CAAML version, writing the first one",
		"profile", tag, "count", len(profiles), "version", s.version.String())
	return profiles[:1]
}

func (s *session) profiles(meas *etree.Element, sp *snowprofile.SnowProfile) {
	if sp.Stratigraphy != nil {
		s.stratigraphy(meas, sp.Stratigraphy)
	}
	for _, p := range singletons(s, "tempProfile", sp.TemperatureProfiles) {
		s.temperature(meas, p)
	}
	for _, p := range singletons(s, "densityProfile", sp.DensityProfiles) {
		s.density(meas, p)
	}
	for _, p := range singletons(s, "lwcProfile", sp.LWCProfiles) {
		s.lwc(meas, p)
	}
	for _, p := range singletons(s, "specSurfAreaProfile", sp.SSAProfiles) {
		s.ssa(meas, p)
	}
	for _, p := range singletons(s, "hardnessProfile", sp.HardnessProfiles) {
		s.hardness(meas, p)
	}
	for _, p := range singletons(s, "strengthProfile", sp.StrengthProfiles) {
		s.strength(meas, p)
	}
	for _, p := range singletons(s, "impurityProfile", sp.ImpurityProfiles) {
		s.impurity(meas, p)
	}

	if !s.version.AtLeast(V606) {
		if n := len(sp.OtherScalarProfiles) + len(sp.OtherVectProfiles); n > 0 {
			log.Warnw("other scalar and vectorial profiles need CAAML 6.0.6, skipping",
				"count", n, "version", s.version.String(), "feature", "other profiles")
		}
		return
	}
	for _, p := range sp.OtherScalarProfiles {
		s.scalar(meas, p)
	}
	for _, p := range sp.OtherVectProfiles {
		s.vectorial(meas, p)
	}
}

func (s *session) stratigraphy(meas *etree.Element, p *snowprofile.Stratigraphy) {
	data := p.Data()
	pw := s.newProfile(meas, "stratProfile", "stratMetaData", p.ProfileMeta, nil, data)
	if data.Has("uncertainty") || data.Has("quality") {
		log.Warnw("stratigraphy layers have no uncertainty or quality in CAAML, dropping them",
			"id", pw.id, "feature", "row quality")
	}
	for i := 0; i < data.Len(); i++ {
		l := pw.layer(i)
		g1, ok := data.String("grain_1", i)
		if ok {
			addText(l, "grainFormPrimary", g1)
			if g2, ok := data.String("grain_2", i); ok {
				addText(l, "grainFormSecondary", g2)
			}
		}
		size, sizeMax := data.Float("grain_size", i), data.Float("grain_size_max", i)
		if !math.IsNaN(size) || !math.IsNaN(sizeMax) {
			c := addElement(addElement(l, "grainSize"), "Components")
			c.CreateAttr("uom", "mm")
			addFloat(c, "avg", size*mm, "")
			addFloat(c, "avgMax", sizeMax*mm, "")
		}
		if h := data.Float("hardness", i); !math.IsNaN(h) {
			addText(l, "hardness", snowprofile.HardnessCode(h))
		}
		if w := data.Float("wetness", i); !math.IsNaN(w) {
			addText(l, "wetness", snowprofile.WetnessCode(w))
		}
		if loc, ok := data.String("loc", i); ok {
			addText(l, "layerOfConcern", loc)
		}
		if c, ok := data.String("comment", i); ok {
			addComment(l, c)
		}
		if t, ok := data.Time("formation_time", i); ok {
			addTime(addElement(addElement(l, "validFormationTime"), "TimeInstant"), "timePosition", &t)
		} else {
			begin, okBegin := data.Time("formation_period_begin", i)
			end, okEnd := data.Time("formation_period_end", i)
			if okBegin && okEnd {
				tp := addElement(addElement(l, "validFormationTime"), "TimePeriod")
				addTime(tp, "beginPosition", &begin)
				addTime(tp, "endPosition", &end)
			}
		}
		if ad, ok := data.String("additional_data", i); ok {
			appendCustomData(l, &snowprofile.AdditionalData{Data: ad, Origin: snowprofile.OriginCAAML6})
		}
	}
	pw.close(p.ProfileMeta)
}

// temperature writes a temperature profile. CAAML 6.0.5 has no method,
// quality or uncertainty for it, so they go to the comment; row values are
// child elements of each observation rather than attributes.
func (s *session) temperature(meas *etree.Element, p *snowprofile.TemperatureProfile) {
	data := p.Data()
	pw := s.newProfile(meas, "tempProfile", "tempMetaData", p.ProfileMeta, p.ProfileNr, data)
	pw.meta.text(V606, "methodOfMeas", "Measurement method", p.MethodOfMeasurement)
	pw.measurement(p.MeasurementMeta, "degC", true)
	for i := 0; i < data.Len(); i++ {
		o := pw.point(i)
		addFloat(o, "snowTemp", data.Float("temperature", i), "degC")
		u := data.Float("uncertainty", i)
		q, _ := data.String("quality", i)
		if math.IsNaN(u) && q == "" {
			continue
		}
		if !s.version.AtLeast(V606) {
			pw.drop()
			continue
		}
		addFloat(o, "uncertaintyOfMeas", u, "degC")
		addText(o, "qualityOfMeas", q)
	}
	pw.close(p.ProfileMeta)
}

func (s *session) density(meas *etree.Element, p *snowprofile.DensityProfile) {
	data := p.Data()
	pw := s.newProfile(meas, "densityProfile", "densityMetaData", p.ProfileMeta, p.ProfileNr, data)
	pw.meta.method(p.MethodOfMeasurement, densityMethods605)
	pw.measurement(p.MeasurementMeta, "kgm-3", false)
	addNumber(pw.meta.elem, "probeVolume", p.ProbedVolume, cm3, "cm3")
	addNumber(pw.meta.elem, "probeDiameter", p.ProbedDiameter, cm, "cm")
	addNumber(pw.meta.elem, "probeLength", p.ProbedLength, cm, "cm")
	addNumber(pw.meta.elem, "probedThickness", p.ProbedThickness, cm, "cm")
	for i := 0; i < data.Len(); i++ {
		pw.value(pw.layer(i), "density", "density", i, unit, "kgm-3")
	}
	pw.close(p.ProfileMeta)
}

func (s *session) lwc(meas *etree.Element, p *snowprofile.LWCProfile) {
	data := p.Data()
	pw := s.newProfile(meas, "lwcProfile", "lwcMetaData", p.ProfileMeta, p.ProfileNr, data)
	pw.meta.method(p.MethodOfMeasurement, lwcMethods605)
	pw.measurement(p.MeasurementMeta, "% by Vol", false)
	addNumber(pw.meta.elem, "probedThickness", p.ProbedThickness, cm, "cm")
	for i := 0; i < data.Len(); i++ {
		pw.value(pw.layer(i), "lwc", "lwc", i, unit, "% by Vol")
	}
	pw.close(p.ProfileMeta)
}

func (s *session) ssa(meas *etree.Element, p *snowprofile.SSAProfile) {
	data := p.Data()
	pw := s.newProfile(meas, "specSurfAreaProfile", "specSurfAreaMetaData", p.ProfileMeta, p.ProfileNr, data)
	pw.meta.method(p.MethodOfMeasurement, ssaMethods605)
	pw.measurement(p.MeasurementMeta, "m2kg-1", false)
	addNumber(pw.meta.elem, "probedThickness", p.ProbedThickness, cm, "cm")
	for i := 0; i < data.Len(); i++ {
		row := pw.point
		if !p.IsPoint() {
			row = pw.layer
		}
		pw.value(row(i), "specSurfArea", "ssa", i, unit, "m2kg-1")
	}
	pw.close(p.ProfileMeta)
}

func (s *session) hardness(meas *etree.Element, p *snowprofile.HardnessProfile) {
	data := p.Data()
	pw := s.newProfile(meas, "hardnessProfile", "hardnessMetaData", p.ProfileMeta, p.ProfileNr, data)
	pw.meta.method(p.MethodOfMeasurement, hardnessMethods605)
	pw.measurement(p.MeasurementMeta, "N", false)
	for i := 0; i < data.Len(); i++ {
		l := pw.layer(i)
		pw.value(l, "hardness", "hardness", i, unit, "N")
		if !p.RamSonde {
			continue
		}
		addFloat(l, "weightHammer", data.Float("weight_hammer", i), "kg")
		addFloat(l, "weightTube", data.Float("weight_tube", i), "kg")
		if n, ok := data.Int("n_drops", i); ok {
			addText(l, "nDrops", strconv.FormatInt(n, 10))
		}
		addFloat(l, "dropHeight", data.Float("drop_height", i)*cm, "cm")
	}
	pw.close(p.ProfileMeta)
}

func (s *session) strength(meas *etree.Element, p *snowprofile.StrengthProfile) {
	data := p.Data()
	pw := s.newProfile(meas, "strengthProfile", "strengthMetaData", p.ProfileMeta, p.ProfileNr, data)
	pw.meta.text(V605, "strengthType", "", p.StrengthType)
	pw.meta.method(p.MethodOfMeasurement, nil)
	pw.measurement(p.MeasurementMeta, "Nm-2", false)
	addNumber(pw.meta.elem, "probedArea", p.ProbedArea, cm2, "cm2")
	for i := 0; i < data.Len(); i++ {
		l := pw.layer(i)
		pw.value(l, "strengthValue", "strength", i, unit, "Nm-2")
		if fc, ok := data.String("fracture_character", i); ok {
			addText(l, "fractureCharacter", fc)
		}
	}
	pw.close(p.ProfileMeta)
}

// impurity writes mass and volume fractions. The row uncertainty and quality
// go on the volume fraction when there is one.
func (s *session) impurity(meas *etree.Element, p *snowprofile.ImpurityProfile) {
	data := p.Data()
	pw := s.newProfile(meas, "impurityProfile", "impurityMetaData", p.ProfileMeta, p.ProfileNr, data)
	addText(pw.meta.elem, "impurity", p.ImpurityType)
	pw.meta.method(p.MethodOfMeasurement, nil)
	pw.measurement(p.MeasurementMeta, "%", false)
	addNumber(pw.meta.elem, "probeVolume", p.ProbedVolume, cm3, "cm3")
	addNumber(pw.meta.elem, "probeDiameter", p.ProbedDiameter, cm, "cm")
	addNumber(pw.meta.elem, "probeLength", p.ProbedLength, cm, "cm")
	addNumber(pw.meta.elem, "probedThickness", p.ProbedThickness, cm, "cm")
	for i := 0; i < data.Len(); i++ {
		l := pw.layer(i)
		mass := addFloat(l, "massFraction", data.Float("mass_fraction", i), "%")
		volume := addFloat(l, "volumeFraction", data.Float("volume_fraction", i), "%")
		switch {
		case volume != nil:
			pw.rowAttrs(volume, i)
		case mass != nil:
			pw.rowAttrs(mass, i)
		}
	}
	pw.close(p.ProfileMeta)
}

func (s *session) scalar(meas *etree.Element, p *snowprofile.ScalarProfile) {
	data := p.Data()
	pw := s.newProfile(meas, "otherScalarProfile", "otherScalarMetaData", p.ProfileMeta, p.ProfileNr, data)
	addText(pw.meta.elem, "parameter", p.Parameter)
	addText(pw.meta.elem, "uom", p.Unit)
	pw.meta.method(p.MethodOfMeasurement, nil)
	pw.measurement(p.MeasurementMeta, p.Unit, false)
	for i := 0; i < data.Len(); i++ {
		pw.value(pw.layer(i), "value", "data", i, unit, p.Unit)
	}
	pw.close(p.ProfileMeta)
}

func (s *session) vectorial(meas *etree.Element, p *snowprofile.VectorialProfile) {
	data := p.Data()
	pw := s.newProfile(meas, "otherVectorialProfile", "otherVectorialMetaData", p.ProfileMeta, p.ProfileNr, data)
	addText(pw.meta.elem, "parameter", p.Parameter)
	addText(pw.meta.elem, "uom", p.Unit)
	addText(pw.meta.elem, "rank", strconv.Itoa(p.Rank))
	pw.meta.method(p.MethodOfMeasurement, nil)
	pw.measurement(p.MeasurementMeta, p.Unit, false)
	for i := 0; i < data.Len(); i++ {
		l := pw.layer(i)
		values := data.FloatList("data", i)
		if len(values) == 0 {
			continue
		}
		parts := make([]string, len(values))
		for j, v := range values {
			parts[j] = formatNumber(v)
		}
		e := addText(l, "value", strings.Join(parts, " "))
		if p.Unit != "" {
			e.CreateAttr("uom", p.Unit)
		}
		pw.rowAttrs(e, i)
	}
	pw.close(p.ProfileMeta)
}
