package caaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/beevik/etree"

	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

// CRS84 is the coordinate reference system of gml:Point locations.
const CRS84 = "urn:ogc:def:crs:OGC:1.3:CRS84"

// session is the state of one document being written. Ids are unique within
// a session only.
type session struct {
	version Version
	// depth and swe are the document snow depth (m) and SWE that profile
	// depths are measured from unless a profile overrides them.
	depth float64
	swe   *float64
	ids   idRegistry
}

// Write encodes sp as a CAAML document of the given version ("6.0.5",
// "6.0.6" or empty for the default) to path. Nothing is written for an
// unsupported version.
func Write(sp *snowprofile.SnowProfile, path, version string) error {
	v, err := ParseVersion(version)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(sp, &buf, v); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing CAAML file: %w", err)
	}
	log.Infow("wrote CAAML document", "path", path, "version", v.String())
	return nil
}

// Encode writes sp to w as a CAAML document of version v.
func Encode(sp *snowprofile.SnowProfile, w io.Writer, v Version) error {
	if _, ok := versionNames[v]; !ok {
		return &UnsupportedVersionError{Version: v.String()}
	}
	if sp == nil {
		return errors.New("no snow profile to encode")
	}

	s := &session{version: v, swe: sp.ProfileSWE, ids: idRegistry{}}
	if sp.ProfileDepth != nil {
		s.depth = *sp.ProfileDepth
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	s.document(doc, sp)
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("encoding CAAML document: %w", err)
	}
	return nil
}

func (s *session) document(doc *etree.Document, sp *snowprofile.SnowProfile) {
	root := doc.CreateElement("caaml:SnowProfile")
	root.CreateAttr("xmlns:caaml", s.version.Namespace())
	root.CreateAttr("xmlns:gml", GMLNamespace)
	root.CreateAttr("gml:id", s.ids.next(sp.ID, "snowprofile"))

	addComment(root, sp.Comment)
	s.timeRef(root, sp.Time)
	s.srcRef(root, sp.Observer)
	s.locRef(root, sp.Location, sp.Environment)

	meas := addElement(addElement(root, "snowProfileResultsOf"), "SnowProfileMeasurements")
	meas.CreateAttr("dir", "top down")
	addComment(meas, sp.ProfileComment)
	s.weather(meas, sp.Weather)
	s.snowPack(meas, sp)
	s.surface(meas, sp.SurfaceConditions)
	s.profiles(meas, sp)
	if len(sp.StabilityTests) > 0 {
		log.Warnw("writing stability tests to CAAML is not supported, skipping",
			"count", len(sp.StabilityTests), "feature", "stability tests")
	}
	appendCustomData(meas, sp.ProfilesAdditionalData)

	addText(root, "application", sp.Application)
	addText(root, "applicationVersion", sp.ApplicationVersion)
	appendCustomData(root, sp.AdditionalData)
}

// addRecordTime writes a complete period, or else the instant. It reports
// whether anything was written.
func addRecordTime(parent *etree.Element, instant *time.Time, period snowprofile.Period) bool {
	switch {
	case period.Complete():
		p := addElement(addElement(parent, "recordTime"), "TimePeriod")
		addTime(p, "beginPosition", period.Begin)
		addTime(p, "endPosition", period.End)
	case instant != nil:
		addTime(addElement(addElement(parent, "recordTime"), "TimeInstant"), "timePosition", instant)
	default:
		return false
	}
	return true
}

func (s *session) timeRef(root *etree.Element, tr snowprofile.TimeRef) {
	e := addElement(root, "timeRef")
	if !addRecordTime(e, tr.RecordTime, tr.RecordPeriod) {
		log.Errorw("no valid record time or period, using the current time")
		now := time.Now().UTC()
		addRecordTime(e, &now, snowprofile.Period{})
	}
	addTime(e, "dateTimeReport", tr.ReportTime)
	addTime(e, "dateTimeLastEdit", tr.LastEditionTime)
	addComment(e, tr.Comment)
	appendCustomData(e, tr.AdditionalData)
}

// srcRef writes the observer. Without a source name a single person is the
// source; otherwise the source is an operation listing its contact persons.
func (s *session) srcRef(root *etree.Element, o snowprofile.Observer) {
	src := addElement(root, "srcRef")
	if o.SourceName == "" && len(o.ContactPersons) > 0 {
		if len(o.ContactPersons) > 1 {
			log.Errorw("an observer with several contact persons needs a source name, writing the first person only",
				"persons", len(o.ContactPersons))
		}
		s.person(src, "Person", o.ContactPersons[0])
		return
	}

	op := addElement(src, "Operation")
	op.CreateAttr("gml:id", s.ids.next(o.SourceID, "operation"))
	name := o.SourceName
	if name == "" {
		name = "unknown"
	}
	addText(op, "name", name)
	addComment(op, o.SourceComment)
	for _, p := range o.ContactPersons {
		s.person(op, "contactPerson", p)
	}
	appendCustomData(op, o.SourceAdditionalData)
}

func (s *session) person(parent *etree.Element, tag string, p snowprofile.Person) {
	e := addElement(parent, tag)
	e.CreateAttr("gml:id", s.ids.next(p.ID, "person"))
	addText(e, "name", p.Name)
	addComment(e, p.Comment)
	appendCustomData(e, p.AdditionalData)
}

func (s *session) locRef(root *etree.Element, l snowprofile.Location, env snowprofile.Environment) {
	loc := addElement(root, "locRef")
	loc.CreateAttr("gml:id", s.ids.next(l.ID, "location"))
	addComment(loc, l.Comment)
	addText(loc, "name", l.Name)
	addText(loc, "obsPointSubType", l.PointType)
	addPosition(loc, "validElevation", "ElevationPosition", l.Elevation, unit, "m")
	addPosition(loc, "validAspect", "AspectPosition", l.Aspect, unit, "")
	addPosition(loc, "validSlopeAngle", "SlopeAnglePosition", l.Slope, unit, "deg")

	point := addElement(loc, "pointLocation").CreateElement("gml:Point")
	point.CreateAttr("gml:id", s.ids.next("", "pointID"))
	point.CreateAttr("srsName", CRS84)
	point.CreateAttr("srsDimension", "2")
	point.CreateElement("gml:pos").SetText(formatNumber(l.Latitude) + " " + formatNumber(l.Longitude))

	addText(loc, "country", l.Country)
	addText(loc, "region", l.Region)
	s.environment(loc, env)
	appendCustomData(loc, l.AdditionalData)
}

func (s *session) environment(loc *etree.Element, env snowprofile.Environment) {
	if len(env.SolarMask) > 0 {
		log.Warnw("writing the solar mask to CAAML is not supported, skipping",
			"points", len(env.SolarMask), "feature", "solar mask")
	}
	if !env.HasPointEnvironment() {
		return
	}
	if !s.version.AtLeast(V606) {
		log.Warnw("the observation point environment needs CAAML 6.0.6, skipping",
			"version", s.version.String(), "feature", "point environment")
		return
	}
	e := addElement(loc, "obsPointEnvironment")
	addText(e, "bedSurface", env.BedSurface)
	addText(e, "bedSurfaceComment", env.BedSurfaceComment)
	addNumber(e, "litterThickness", env.LitterThickness, unit, "m")
	addNumber(e, "iceThickness", env.IceThickness, unit, "m")
	addNumber(e, "lowVegetationHeight", env.LowVegetationHeight, unit, "m")
	addNumber(e, "lai", env.LAI, unit, "")
	addText(e, "forestPresence", env.ForestPresence)
	addText(e, "forestComment", env.ForestPresenceComment)
	addNumber(e, "skyViewFactor", env.SkyViewFactor, unit, "")
	addNumber(e, "treeHeight", env.TreeHeight, unit, "m")
}

func (s *session) weather(meas *etree.Element, w snowprofile.Weather) {
	e := addElement(meas, "weatherCond")
	m := newMeta(e, "metaData", s.version)
	m.number(V606, "airTempMeasurementHeight", "Height of the temperature measurement", w.AirTemperatureMeasurementHeight, unit, "m", " m")
	m.number(V606, "windMeasurementHeight", "Height of the wind measurement", w.WindMeasurementHeight, unit, "m", " m")
	m.close(w.Comment)

	addText(e, "skyCond", w.Cloudiness)
	addText(e, "precipTI", w.Precipitation)
	addNumber(e, "airTempPres", w.AirTemperature, unit, "degC")
	addNumber(e, "windSpd", w.WindSpeed, unit, "ms-1")
	addPosition(e, "windDir", "AspectPosition", w.WindDirection, unit, "")
	appendCustomData(e, w.AdditionalData)
}

// addComponents writes tag/Components with a height (cm) and a water
// equivalent, leaving tag out when both are unset.
func addComponents(parent *etree.Element, tag string, height, swe *float64) {
	if height == nil && swe == nil {
		return
	}
	c := addElement(addElement(parent, tag), "Components")
	addNumber(c, "height", height, cm, "cm")
	addNumber(c, "waterEquivalent", swe, unit, "kgm-2")
}

func (s *session) snowPack(meas *etree.Element, sp *snowprofile.SnowProfile) {
	e := addElement(meas, "snowPackCond")
	m := newMeta(e, "metaData", s.version)
	addComponents(e, "hS", sp.ProfileDepth, sp.ProfileSWE)
	if s.version.AtLeast(V606) {
		addComponents(e, "hSVariability", sp.ProfileDepthStd, sp.ProfileSWEStd)
	} else {
		m.number(V606, "", "Profile depth variability", sp.ProfileDepthStd, unit, "", " m")
		m.number(V606, "", "Profile SWE variability", sp.ProfileSWEStd, unit, "", " kg/m2")
	}
	addComponents(e, "hN24", sp.NewSnow24Depth, sp.NewSnow24SWE)
	addComponents(e, "hIN", sp.NewSnow24DepthStd, sp.NewSnow24SWEStd)
	if s.version.AtLeast(V606) {
		addText(e, "snowTransport", sp.SnowTransport)
		addNumber(e, "snowTransportOccurence24", sp.SnowTransportOccurrence24, unit, "%")
	} else {
		m.text(V606, "", "Snow transport", sp.SnowTransport)
		m.number(V606, "", "Snow transport occurrence over 24h", sp.SnowTransportOccurrence24, unit, "", " %")
	}
	m.close("")
}

func (s *session) surface(meas *etree.Element, sc snowprofile.SurfaceConditions) {
	e := addElement(meas, "surfCond")
	m := newMeta(e, "metaData", s.version)
	addNumber(e, "penetrationRam", sc.PenetrationRam, cm, "cm")
	addNumber(e, "penetrationFoot", sc.PenetrationFoot, cm, "cm")
	addNumber(e, "penetrationSki", sc.PenetrationSki, cm, "cm")

	features := addElement(e, "surfFeatures")
	c := addElement(features, "Components")
	addText(c, "surfRoughness", sc.SurfaceRoughness)
	if s.version.AtLeast(V606) {
		addText(c, "surfWindFeatures", sc.SurfaceWindFeatures)
		addText(c, "surfMeltRainFeatures", sc.SurfaceMeltRainFeatures)
	} else {
		m.text(V606, "", "Wind surface features", sc.SurfaceWindFeatures)
		m.text(V606, "", "Melt and rain surface features", sc.SurfaceMeltRainFeatures)
	}
	addRange(c, "validAmplitude", "Amplitude", sc.SurfaceFeaturesAmplitude,
		sc.SurfaceFeaturesAmplitudeMin, sc.SurfaceFeaturesAmplitudeMax, cm, "cm")
	addRange(c, "validWavelength", "Wavelength", sc.SurfaceFeaturesWavelength,
		sc.SurfaceFeaturesWavelengthMin, sc.SurfaceFeaturesWavelengthMax, unit, "m")
	addPosition(c, "validAspect", "AspectPosition", sc.SurfaceFeaturesAspect, unit, "")

	if s.version.AtLeast(V606) {
		addText(c, "lapPresence", sc.LAPPresence)
		if sc.SurfaceTemperature != nil {
			t := addElement(c, "surfTemp")
			addText(t, "methodOfMeas", sc.SurfaceTemperatureMethod)
			addNumber(t, "data", sc.SurfaceTemperature, unit, "degC")
		}
	} else {
		m.text(V606, "", "LAP presence", sc.LAPPresence)
		m.number(V606, "", "Surface temperature", sc.SurfaceTemperature, unit, "", " degC")
		m.text(V606, "", "Surface temperature measurement method", sc.SurfaceTemperatureMethod)
	}
	if len(c.ChildElements()) == 0 {
		e.RemoveChild(features)
	}

	if sc.SurfaceAlbedo != nil || len(sc.SpectralAlbedo) > 0 {
		log.Warnw("writing surface albedo to CAAML is not supported, skipping", "feature", "surface albedo")
	}
	m.close(sc.Comment)
	appendCustomData(e, sc.AdditionalData)
}

// addRange writes a position or, when only both bounds are known, a range.
// A position wins over bounds given alongside it.
func addRange(parent *etree.Element, tag, kind string, v, lo, hi *float64, mul float64, uom string) {
	switch {
	case v != nil:
		if lo != nil || hi != nil {
			log.Warnw("CAAML cannot hold both a value and a range, writing the value", "element", tag)
		}
		addPosition(parent, tag, kind+"Position", v, mul, uom)
	case lo != nil && hi != nil:
		r := addElement(addElement(parent, tag), kind+"Range")
		r.CreateAttr("uom", uom)
		addNumber(r, "beginPosition", lo, mul, "")
		addNumber(r, "endPosition", hi, mul, "")
	}
}
