package caaml

import (
	"github.com/beevik/etree"

	"github.com/chrissnell/snowprofile/internal/log"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
	"github.com/chrissnell/snowprofile/pkg/table"
)

// profileElement is one profile element with its metadata read.
type profileElement struct {
	elem *etree.Element
	meta *etree.Element
	pm   snowprofile.ProfileMeta
	// total is the snow depth heights are measured from: the profile's
	// own depth if it has one, the document depth otherwise.
	total float64
}

func (r *reader) profileElements(meas *etree.Element, tag, metaTag string, depth float64) []profileElement {
	var out []profileElement
	for _, e := range elements(meas, tag) {
		meta := element(e, metaTag)
		pe := profileElement{
			elem: e,
			meta: meta,
			pm: snowprofile.ProfileMeta{
				ID:              attr(e, "id"),
				Name:            attr(e, "name"),
				RelatedProfiles: fields(attr(e, "relatedProfiles")),
				Comment:         text(meta, "comment"),
				RecordTime:      r.time(meta, "recordTime/TimeInstant/timePosition"),
				RecordPeriod: snowprofile.Period{
					Begin: r.time(meta, "recordTime/TimePeriod/beginPosition"),
					End:   r.time(meta, "recordTime/TimePeriod/endPosition"),
				},
				ProfileDepth:   r.number(meta, cm, "hS/Components/height"),
				ProfileSWE:     r.number(meta, unit, "hS/Components/waterEquivalent"),
				AdditionalData: capture(element(e, "customData")),
			},
			total: depth,
		}
		if pe.pm.ProfileDepth != nil {
			pe.total = *pe.pm.ProfileDepth
		}
		out = append(out, pe)
	}
	return out
}

func (r *reader) measurement(pe profileElement) snowprofile.MeasurementMeta {
	return snowprofile.MeasurementMeta{
		QualityOfMeasurement:     text(pe.meta, "qualityOfMeas"),
		UncertaintyOfMeasurement: r.number(pe.meta, unit, "uncertaintyOfMeas"),
		ProfileNr:                r.integer(pe.elem, "profileNr"),
	}
}

// skip logs a profile that could not be built. It is left out of the
// document rather than kept half valid.
func (r *reader) skip(pe profileElement, err error) bool {
	if err == nil {
		return false
	}
	log.Errorw("skipping invalid profile", "source", r.source, "profile", pe.elem.Tag, "id", pe.pm.ID, "error", err)
	return true
}

func (r *reader) layers(pe profileElement, columns ...column) table.Frame {
	return r.rows(elements(pe.elem, "Layer"), layerColumns(columns...), pe.total)
}

func (r *reader) points(pe profileElement, columns ...column) table.Frame {
	depth := column{name: table.Depth, paths: []string{"depth"}, kind: numberValue, div: cm, height: true}
	return r.rows(elements(pe.elem, "Obs"), append([]column{depth}, columns...), pe.total)
}

// profiles reads every profile family of the measurements element into sp.
// depth is the document snow depth.
func (r *reader) profiles(sp *snowprofile.SnowProfile, meas *etree.Element, depth float64) {
	sp.Stratigraphy = r.stratigraphy(meas, depth)
	sp.TemperatureProfiles = r.temperatureProfiles(meas, depth)
	sp.DensityProfiles = r.densityProfiles(meas, depth)
	sp.LWCProfiles = r.lwcProfiles(meas, depth)
	sp.SSAProfiles = r.ssaProfiles(meas, depth)
	sp.HardnessProfiles = r.hardnessProfiles(meas, depth)
	sp.StrengthProfiles = r.strengthProfiles(meas, depth)
	sp.ImpurityProfiles = r.impurityProfiles(meas, depth)
	sp.OtherScalarProfiles = r.scalarProfiles(meas, depth)
	sp.OtherVectProfiles = r.vectorialProfiles(meas, depth)
}

var stratigraphyColumns = []column{
	textColumn("grain_1", "grainFormPrimary"),
	textColumn("grain_2", "grainFormSecondary"),
	numberColumn("grain_size", mm, "grainSize/Components/avg"),
	numberColumn("grain_size_max", mm, "grainSize/Components/avgMax"),
	textColumn("hardness", "hardness"),
	textColumn("wetness", "wetness"),
	textColumn("loc", "layerOfConcern"),
	textColumn("comment", "metaData/comment"),
	{name: "additional_data", paths: []string{"customData", "metaData/customData"}, kind: customValue},
	textColumn("formation_time", "validFormationTime/TimeInstant/timePosition"),
	textColumn("formation_period_begin", "validFormationTime/TimePeriod/beginPosition"),
	textColumn("formation_period_end", "validFormationTime/TimePeriod/endPosition"),
}

func (r *reader) stratigraphy(meas *etree.Element, depth float64) *snowprofile.Stratigraphy {
	elems := r.profileElements(meas, "stratProfile", "stratMetaData", depth)
	if len(elems) > 1 {
		log.Warnw("more than one stratigraphy profile, only the first one is read", "source", r.source, "count", len(elems))
	}
	for _, pe := range elems {
		p, err := snowprofile.NewStratigraphy(snowprofile.Stratigraphy{ProfileMeta: pe.pm}, r.layers(pe, stratigraphyColumns...))
		if r.skip(pe, err) {
			return nil
		}
		return p
	}
	return nil
}

func (r *reader) temperatureProfiles(meas *etree.Element, depth float64) []*snowprofile.TemperatureProfile {
	var out []*snowprofile.TemperatureProfile
	for _, pe := range r.profileElements(meas, "tempProfile", "tempMetaData", depth) {
		frame := r.points(pe,
			numberColumn("temperature", unit, "snowTemp"),
			numberColumn("uncertainty", unit, "uncertaintyOfMeas"),
			textColumn("quality", "qualityOfMeas"))
		p, err := snowprofile.NewTemperatureProfile(snowprofile.TemperatureProfile{
			ProfileMeta:         pe.pm,
			MeasurementMeta:     r.measurement(pe),
			MethodOfMeasurement: text(pe.meta, "methodOfMeas"),
		}, frame)
		if r.skip(pe, err) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *reader) densityProfiles(meas *etree.Element, depth float64) []*snowprofile.DensityProfile {
	var out []*snowprofile.DensityProfile
	for _, pe := range r.profileElements(meas, "densityProfile", "densityMetaData", depth) {
		p, err := snowprofile.NewDensityProfile(snowprofile.DensityProfile{
			ProfileMeta:         pe.pm,
			MeasurementMeta:     r.measurement(pe),
			MethodOfMeasurement: text(pe.meta, "methodOfMeas"),
			ProbedVolume:        r.number(pe.meta, cm3, "probeVolume"),
			ProbedDiameter:      r.number(pe.meta, cm, "probeDiameter"),
			ProbedLength:        r.number(pe.meta, cm, "probeLength"),
			ProbedThickness:     r.number(pe.meta, cm, "probedThickness", "probeThickness"),
		}, r.layers(pe, measuredColumns("density", unit, "density")...))
		if r.skip(pe, err) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *reader) lwcProfiles(meas *etree.Element, depth float64) []*snowprofile.LWCProfile {
	var out []*snowprofile.LWCProfile
	for _, pe := range r.profileElements(meas, "lwcProfile", "lwcMetaData", depth) {
		p, err := snowprofile.NewLWCProfile(snowprofile.LWCProfile{
			ProfileMeta:         pe.pm,
			MeasurementMeta:     r.measurement(pe),
			MethodOfMeasurement: text(pe.meta, "methodOfMeas"),
			ProbedThickness:     r.number(pe.meta, cm, "probedThickness", "probeThickness"),
		}, r.layers(pe, measuredColumns("lwc", unit, "lwc")...))
		if r.skip(pe, err) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ssaProfiles reads layer profiles from Layer rows and point profiles from
// Obs rows.
func (r *reader) ssaProfiles(meas *etree.Element, depth float64) []*snowprofile.SSAProfile {
	var out []*snowprofile.SSAProfile
	for _, pe := range r.profileElements(meas, "specSurfAreaProfile", "specSurfAreaMetaData", depth) {
		values := measuredColumns("ssa", unit, "specSurfArea")
		var frame table.Frame
		if element(pe.elem, "Obs") != nil {
			frame = r.points(pe, values...)
		} else {
			frame = r.layers(pe, values...)
		}
		p, err := snowprofile.NewSSAProfile(snowprofile.SSAProfile{
			ProfileMeta:         pe.pm,
			MeasurementMeta:     r.measurement(pe),
			MethodOfMeasurement: text(pe.meta, "methodOfMeas"),
			ProbedThickness:     r.number(pe.meta, cm, "probedThickness", "probeThickness"),
		}, frame)
		if r.skip(pe, err) {
			continue
		}
		out = append(out, p)
	}
	return out
}

var ramSondeColumns = []column{
	numberColumn("weight_hammer", unit, "weightHammer"),
	numberColumn("weight_tube", unit, "weightTube"),
	numberColumn("n_drops", unit, "nDrops"),
	numberColumn("drop_height", cm, "dropHeight"),
}

// hardnessProfiles reads penetrometer and ram sonde profiles. A profile is a
// ram sonde profile when its method says so or its layers carry hammer
// weights.
func (r *reader) hardnessProfiles(meas *etree.Element, depth float64) []*snowprofile.HardnessProfile {
	var out []*snowprofile.HardnessProfile
	for _, pe := range r.profileElements(meas, "hardnessProfile", "hardnessMetaData", depth) {
		method := text(pe.meta, "methodOfMeas")
		ram := method == "Ram Sonde" || element(pe.elem, "Layer/weightHammer") != nil
		columns := measuredColumns("hardness", unit, "hardness")
		if ram {
			columns = append(columns, ramSondeColumns...)
		}
		p, err := snowprofile.NewHardnessProfile(snowprofile.HardnessProfile{
			ProfileMeta:         pe.pm,
			MeasurementMeta:     r.measurement(pe),
			MethodOfMeasurement: method,
			RamSonde:            ram,
		}, r.layers(pe, columns...))
		if r.skip(pe, err) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *reader) strengthProfiles(meas *etree.Element, depth float64) []*snowprofile.StrengthProfile {
	var out []*snowprofile.StrengthProfile
	for _, pe := range r.profileElements(meas, "strengthProfile", "strengthMetaData", depth) {
		columns := append(measuredColumns("strength", unit, "strengthValue"), textColumn("fracture_character", "fractureCharacter"))
		p, err := snowprofile.NewStrengthProfile(snowprofile.StrengthProfile{
			ProfileMeta:         pe.pm,
			MeasurementMeta:     r.measurement(pe),
			MethodOfMeasurement: text(pe.meta, "methodOfMeas"),
			StrengthType:        text(pe.meta, "strengthType"),
			ProbedArea:          r.number(pe.meta, cm2, "probedArea"),
		}, r.layers(pe, columns...))
		if r.skip(pe, err) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *reader) impurityProfiles(meas *etree.Element, depth float64) []*snowprofile.ImpurityProfile {
	fractions := []string{"volumeFraction", "massFraction"}
	columns := []column{
		numberColumn("mass_fraction", unit, "massFraction"),
		numberColumn("volume_fraction", unit, "volumeFraction"),
		{name: "uncertainty", paths: fractions, attr: "uncertainty", kind: numberValue, div: unit},
		{name: "quality", paths: fractions, attr: "quality", kind: textValue},
	}
	var out []*snowprofile.ImpurityProfile
	for _, pe := range r.profileElements(meas, "impurityProfile", "impurityMetaData", depth) {
		p, err := snowprofile.NewImpurityProfile(snowprofile.ImpurityProfile{
			ProfileMeta:         pe.pm,
			MeasurementMeta:     r.measurement(pe),
			ImpurityType:        text(pe.meta, "impurity"),
			MethodOfMeasurement: text(pe.meta, "methodOfMeas"),
			ProbedVolume:        r.number(pe.meta, cm3, "probeVolume"),
			ProbedDiameter:      r.number(pe.meta, cm, "probeDiameter"),
			ProbedLength:        r.number(pe.meta, cm, "probeLength"),
			ProbedThickness:     r.number(pe.meta, cm, "probedThickness", "probeThickness"),
		}, r.layers(pe, columns...))
		if r.skip(pe, err) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *reader) scalarProfiles(meas *etree.Element, depth float64) []*snowprofile.ScalarProfile {
	var out []*snowprofile.ScalarProfile
	for _, pe := range r.profileElements(meas, "otherScalarProfile", "otherScalarMetaData", depth) {
		p, err := snowprofile.NewScalarProfile(snowprofile.ScalarProfile{
			ProfileMeta:         pe.pm,
			MeasurementMeta:     r.measurement(pe),
			MethodOfMeasurement: text(pe.meta, "methodOfMeas"),
			Parameter:           text(pe.meta, "parameter"),
			Unit:                text(pe.meta, "uom"),
		}, r.layers(pe, measuredColumns("data", unit, "value")...))
		if r.skip(pe, err) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *reader) vectorialProfiles(meas *etree.Element, depth float64) []*snowprofile.VectorialProfile {
	values := measuredColumns("data", unit, "value")
	values[0].kind = listValue
	var out []*snowprofile.VectorialProfile
	for _, pe := range r.profileElements(meas, "otherVectorialProfile", "otherVectorialMetaData", depth) {
		rank := 0
		if n := r.integer(pe.meta, "rank"); n != nil {
			rank = *n
		}
		p, err := snowprofile.NewVectorialProfile(snowprofile.VectorialProfile{
			ProfileMeta:         pe.pm,
			MeasurementMeta:     r.measurement(pe),
			MethodOfMeasurement: text(pe.meta, "methodOfMeas"),
			Parameter:           text(pe.meta, "parameter"),
			Unit:                text(pe.meta, "uom"),
			Rank:                rank,
		}, r.layers(pe, values...))
		if r.skip(pe, err) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// spectralAlbedo reads the spectral albedo measurements of the surface.
// Wavelengths are given in nm.
func (r *reader) spectralAlbedo(elems []*etree.Element) []*snowprofile.SpectralAlbedo {
	columns := append([]column{
		numberColumn(table.MinWavelength, nm, "minWaveLength"),
		numberColumn(table.MaxWavelength, nm, "maxWaveLength"),
	}, measuredColumns("albedo", unit, "albedo")...)

	var out []*snowprofile.SpectralAlbedo
	for _, e := range elems {
		frame := r.rows(elements(e, "spectralAlbedoMeasurement"), columns, 0)
		sa, err := snowprofile.NewSpectralAlbedo(text(e, "metaData/comment"), frame)
		if err != nil {
			log.Errorw("skipping invalid spectral albedo", "source", r.source, "error", err)
			continue
		}
		out = append(out, sa)
	}
	return out
}
