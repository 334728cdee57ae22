package caaml

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

// Read parses the CAAML v6 SnowProfile document at path.
func Read(path string) (*snowprofile.SnowProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CAAML file: %w", err)
	}
	defer f.Close()

	sp, _, err := decode(f, path)
	return sp, err
}

// Decode parses a CAAML v6 SnowProfile document from r.
func Decode(r io.Reader) (*snowprofile.SnowProfile, error) {
	sp, _, err := decode(r, "input")
	return sp, err
}

// DecodeVersion is Decode also returning the schema version of the
// document. Documents without a known CAAML namespace report
// DefaultVersion.
func DecodeVersion(r io.Reader) (*snowprofile.SnowProfile, Version, error) {
	return decode(r, "input")
}

func decode(in io.Reader, source string) (*snowprofile.SnowProfile, Version, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(in); err != nil {
		log.Errorf("failed to parse CAAML document %s: %v", source, err)
		return nil, 0, &ParseError{Source: source, Reason: "malformed XML", Err: err}
	}
	root := doc.Root()
	if root == nil || root.Tag != "SnowProfile" {
		log.Errorf("root element of %s is not a SnowProfile element", source)
		return nil, 0, &ParseError{Source: source, Reason: "root element is not a SnowProfile element"}
	}

	version, ok := VersionFromNamespace(root.NamespaceURI())
	if !ok {
		log.Debugw("no supported CAAML namespace, reading with default version",
			"source", source, "namespace", root.NamespaceURI())
		version = DefaultVersion
	}

	r := &reader{source: source}
	sp := r.document(root)
	if r.errs > 0 {
		log.Warnw("some CAAML fields could not be parsed and were left empty", "source", source, "count", r.errs)
	}
	if err := sp.Validate(); err != nil {
		log.Errorw("CAAML document does not validate", "source", source, "error", err)
	}
	return sp, version, nil
}

func (r *reader) document(root *etree.Element) *snowprofile.SnowProfile {
	meas := element(root, "snowProfileResultsOf/SnowProfileMeasurements")
	pack := element(meas, "snowPackCond")

	sp := snowprofile.New()
	sp.ID = attr(root, "id")
	sp.Comment = text(root, "metaData/comment")
	sp.ProfileComment = text(meas, "metaData/comment")
	sp.Time = r.timeRef(root)
	sp.Observer = r.observer(root)
	sp.Location = r.location(element(root, "locRef"))
	sp.Environment = r.environment(element(root, "locRef"))
	sp.Weather = r.weather(element(meas, "weatherCond", "weathercond"))
	sp.SurfaceConditions = r.surface(element(meas, "surfCond"))
	if app := text(root, "application"); app != "" {
		sp.Application = app
	}
	sp.ApplicationVersion = text(root, "applicationVersion")

	sp.ProfileDepth = r.number(pack, cm, "hS/Components/height")
	sp.ProfileDepthStd = r.number(pack, cm, "hSVariability/Components/height")
	sp.ProfileSWE = r.number(pack, unit, "hS/Components/waterEquivalent")
	sp.ProfileSWEStd = r.number(pack, unit, "hSVariability/Components/waterEquivalent")
	sp.NewSnow24Depth = r.number(pack, cm, "hN24/Components/height")
	sp.NewSnow24DepthStd = r.number(pack, cm, "hIN/Components/height")
	sp.NewSnow24SWE = r.number(pack, unit, "hN24/Components/waterEquivalent")
	sp.NewSnow24SWEStd = r.number(pack, unit, "hIN/Components/waterEquivalent")
	sp.SnowTransport = text(pack, "snowTransport")
	sp.SnowTransportOccurrence24 = r.number(pack, unit, "snowTransportOccurence24")

	depth := 0.0
	if sp.ProfileDepth != nil {
		depth = *sp.ProfileDepth
	}
	r.profiles(sp, meas, depth)
	if element(meas, "stbTests") != nil {
		log.Warnw("reading CAAML stability tests is not supported, skipping", "source", r.source, "feature", "stability tests")
	}

	sp.AdditionalData = capture(element(root, "customData"))
	sp.ProfilesAdditionalData = capture(element(meas, "customData"))
	return sp
}

func (r *reader) timeRef(root *etree.Element) snowprofile.TimeRef {
	tr := element(root, "timeRef")
	return snowprofile.TimeRef{
		RecordTime: r.time(tr, "recordTime/TimeInstant/timePosition"),
		RecordPeriod: snowprofile.Period{
			Begin: r.time(tr, "recordTime/TimePeriod/beginPosition"),
			End:   r.time(tr, "recordTime/TimePeriod/endPosition"),
		},
		ReportTime:      r.firstTime(tr, root, "dateTimeReport"),
		LastEditionTime: r.firstTime(tr, root, "dateTimeLastEdit"),
		Comment:         text(tr, "metaData/comment"),
		AdditionalData:  capture(element(tr, "customData")),
	}
}

// firstTime reads path under tr, falling back to the document root where
// some writers put the report times.
func (r *reader) firstTime(tr, root *etree.Element, path string) *time.Time {
	if t := r.time(tr, path); t != nil {
		return t
	}
	return r.time(root, path)
}

func (r *reader) observer(root *etree.Element) snowprofile.Observer {
	op := element(root, "srcRef/Operation")
	o := snowprofile.Observer{
		SourceID:             attr(op, "id"),
		SourceName:           text(op, "name"),
		SourceComment:        text(op, "metaData/comment"),
		SourceAdditionalData: capture(element(op, "customData")),
	}
	persons := append(elements(op, "contactPerson"), elements(root, "srcRef/Person")...)
	for _, p := range persons {
		o.ContactPersons = append(o.ContactPersons, snowprofile.Person{
			ID:             attr(p, "id"),
			Name:           text(p, "name"),
			Comment:        text(p, "metaData/comment"),
			AdditionalData: capture(element(p, "customData")),
		})
	}
	return o
}

func (r *reader) location(loc *etree.Element) snowprofile.Location {
	lat, lon := r.latLon(element(loc, "pointLocation"))
	return snowprofile.Location{
		ID:             attr(loc, "id"),
		Name:           text(loc, "name"),
		PointType:      text(loc, "obsPointSubType"),
		Aspect:         r.aspect(loc, "validAspect/AspectPosition/position", "validAspect"),
		Elevation:      r.number(loc, unit, "validElevation/ElevationPosition/position", "validElevation"),
		Slope:          r.number(loc, unit, "validSlopeAngle/SlopeAnglePosition/position", "validSlopeAngle"),
		Latitude:       lat,
		Longitude:      lon,
		Country:        text(loc, "country"),
		Region:         text(loc, "region"),
		Comment:        text(loc, "metaData/comment"),
		AdditionalData: capture(element(loc, "customData")),
	}
}

func (r *reader) environment(loc *etree.Element) snowprofile.Environment {
	mask := element(loc, "solarMask")
	maskMeta := element(mask, "solarMaskMetaData")
	env := element(loc, "obsPointEnvironment")
	e := snowprofile.Environment{
		SolarMaskMethodOfMeasurement: text(maskMeta, "methodOfMeas"),
		SolarMaskUncertainty:         r.number(maskMeta, unit, "uncertaintyOfMeas"),
		SolarMaskQuality:             text(maskMeta, "qualityOfMeas"),
		SolarMaskComment:             text(maskMeta, "comment"),
		SolarMaskAdditionalData:      capture(element(mask, "customData")),

		BedSurface:            text(env, "bedSurface"),
		BedSurfaceComment:     text(env, "bedSurfaceComment"),
		LitterThickness:       r.number(env, unit, "litterThickness"),
		IceThickness:          r.number(env, unit, "iceThickness"),
		LowVegetationHeight:   r.number(env, unit, "lowVegetationHeight"),
		LAI:                   r.number(env, unit, "lai"),
		ForestPresence:        text(env, "forestPresence"),
		ForestPresenceComment: text(env, "forestComment"),
		SkyViewFactor:         r.number(env, unit, "skyViewFactor"),
		TreeHeight:            r.number(env, unit, "treeHeight"),
	}
	for _, d := range elements(mask, "Data") {
		az, el := r.number(d, unit, "azimuth"), r.number(d, unit, "elevation")
		if az == nil || el == nil {
			continue
		}
		e.SolarMask = append(e.SolarMask, snowprofile.SolarMaskPoint{Azimuth: *az, Elevation: *el})
	}
	return e
}

func (r *reader) weather(w *etree.Element) snowprofile.Weather {
	return snowprofile.Weather{
		Cloudiness:                      r.cloudiness(w),
		Precipitation:                   text(w, "precipTI"),
		AirTemperature:                  r.number(w, unit, "airTempPres"),
		WindSpeed:                       r.number(w, unit, "windSpd"),
		WindDirection:                   r.aspect(w, "windDir/AspectPosition/position", "windDir"),
		AirTemperatureMeasurementHeight: r.number(w, unit, "metaData/airTempMeasurementHeight"),
		WindMeasurementHeight:           r.number(w, unit, "metaData/windMeasurementHeight"),
		Comment:                         text(w, "metaData/comment"),
		AdditionalData:                  capture(element(w, "customData")),
	}
}

// cloudiness reads the METAR sky condition. A number is taken as octas.
func (r *reader) cloudiness(w *etree.Element) string {
	s := text(w, "skyCond", "skiCond")
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	code, ok := snowprofile.CloudinessFromOctas(n)
	if !ok {
		r.fieldError("skyCond", s, fmt.Errorf("%d octas is out of range", n))
	}
	return code
}

func (r *reader) surface(s *etree.Element) snowprofile.SurfaceConditions {
	c := element(s, "surfFeatures/Components")
	temp := element(s, "surfFeatures/Components/surfTemp", "surfFeatures/surfTemp")
	albedo := element(s, "surfFeatures/surfAlbedo")
	sc := snowprofile.SurfaceConditions{
		SurfaceRoughness:             text(c, "surfRoughness"),
		SurfaceWindFeatures:          text(c, "surfWindFeatures"),
		SurfaceMeltRainFeatures:      text(c, "surfMeltRainFeatures"),
		SurfaceFeaturesAmplitude:     r.number(c, cm, "validAmplitude/AmplitudePosition/position"),
		SurfaceFeaturesAmplitudeMin:  r.number(c, cm, "validAmplitude/AmplitudeRange/beginPosition"),
		SurfaceFeaturesAmplitudeMax:  r.number(c, cm, "validAmplitude/AmplitudeRange/endPosition"),
		SurfaceFeaturesWavelength:    r.number(c, unit, "validWavelength/WavelengthPosition/position"),
		SurfaceFeaturesWavelengthMin: r.number(c, unit, "validWavelength/WavelengthRange/beginPosition"),
		SurfaceFeaturesWavelengthMax: r.number(c, unit, "validWavelength/WavelengthRange/endPosition"),
		SurfaceFeaturesAspect:        r.aspect(c, "validAspect/AspectPosition/position", "validAspect/position"),
		LAPPresence:                  text(s, "surfFeatures/Components/lapPresence", "surfFeatures/lapPresence"),
		SurfaceTemperature:           r.number(temp, unit, "data"),
		SurfaceTemperatureMethod:     text(temp, "methodOfMeas"),
		SurfaceAlbedo:                r.number(albedo, unit, "albedo/albedoMeasurement"),
		SurfaceAlbedoComment:         text(albedo, "albedo/metaData/comment"),
		PenetrationRam:               r.number(s, cm, "penetrationRam", "surfFeatures/penetrationRam"),
		PenetrationFoot:              r.number(s, cm, "penetrationFoot", "surfFeatures/penetrationFoot"),
		PenetrationSki:               r.number(s, cm, "penetrationSki", "surfFeatures/penetrationSki"),
		Comment:                      text(s, "metaData/comment"),
		AdditionalData:               capture(element(s, "customData")),
	}
	sc.SpectralAlbedo = r.spectralAlbedo(elements(albedo, "spectralAlbedo"))
	return sc
}
