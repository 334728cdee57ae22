package snowprofile

import (
	"strings"
	"time"
)

// TimeRef holds the observation date and the report bookkeeping times.
type TimeRef struct {
	RecordTime      *time.Time      `json:"record_time,omitempty"`
	RecordPeriod    Period          `json:"record_period"`
	ReportTime      *time.Time      `json:"report_time,omitempty"`
	LastEditionTime *time.Time      `json:"last_edition_time,omitempty"`
	Comment         string          `json:"comment,omitempty"`
	AdditionalData  *AdditionalData `json:"additional_data,omitempty"`
}

func (t *TimeRef) Validate() error {
	return t.RecordPeriod.validate("record period")
}

// Person is an individual observer.
type Person struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Comment        string          `json:"comment,omitempty"`
	AdditionalData *AdditionalData `json:"additional_data,omitempty"`
}

// Observer is the observing institution (source) and its contact persons.
type Observer struct {
	SourceID             string          `json:"source_id,omitempty"`
	SourceName           string          `json:"source_name,omitempty"`
	SourceComment        string          `json:"source_comment,omitempty"`
	SourceAdditionalData *AdditionalData `json:"source_additional_data,omitempty"`
	ContactPersons       []Person        `json:"contact_persons,omitempty"`
}

func (o *Observer) Validate() error {
	if err := checkID("source id", o.SourceID); err != nil {
		return err
	}
	for _, p := range o.ContactPersons {
		if err := checkID("person id", p.ID); err != nil {
			return err
		}
	}
	return nil
}

// Location is the geographical position of the observation.
type Location struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	PointType string `json:"point_type,omitempty"`
	// Aspect is the slope orientation in degrees from north.
	Aspect *float64 `json:"aspect,omitempty"`
	// Elevation is in metres above sea level.
	Elevation *float64 `json:"elevation,omitempty"`
	// Slope is the slope inclination in degrees.
	Slope     *float64 `json:"slope,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	// Country is an ISO 3166-1 alpha-2 code.
	Country        string          `json:"country,omitempty"`
	Region         string          `json:"region,omitempty"`
	Comment        string          `json:"comment,omitempty"`
	AdditionalData *AdditionalData `json:"additional_data,omitempty"`
}

func (l *Location) Validate() error {
	if l.Slope != nil && (*l.Slope < 0 || *l.Slope >= 90) {
		return invalid("slope", "%g is outside [0, 90)", *l.Slope)
	}
	return firstError(
		checkID("location id", l.ID),
		checkRange("aspect", l.Aspect, 0, 360),
		checkRange("latitude", &l.Latitude, -90, 90),
		checkRange("longitude", &l.Longitude, -180, 180),
		checkEnum("country", strings.ToUpper(l.Country), CountryCodes),
	)
}

// SolarMaskPoint is the horizon elevation (degrees) seen at one azimuth.
type SolarMaskPoint struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
}

// Environment describes the surroundings of the observation point.
type Environment struct {
	SolarMask                    []SolarMaskPoint `json:"solar_mask,omitempty"`
	SolarMaskMethodOfMeasurement string           `json:"solar_mask_method_of_measurement,omitempty"`
	SolarMaskUncertainty         *float64         `json:"solar_mask_uncertainty,omitempty"`
	SolarMaskQuality             string           `json:"solar_mask_quality,omitempty"`
	SolarMaskComment             string           `json:"solar_mask_comment,omitempty"`
	SolarMaskAdditionalData      *AdditionalData  `json:"solar_mask_additional_data,omitempty"`

	BedSurface        string `json:"bed_surface,omitempty"`
	BedSurfaceComment string `json:"bed_surface_comment,omitempty"`
	// Thicknesses and heights are in metres.
	LitterThickness       *float64 `json:"litter_thickness,omitempty"`
	IceThickness          *float64 `json:"ice_thickness,omitempty"`
	LowVegetationHeight   *float64 `json:"low_vegetation_height,omitempty"`
	LAI                   *float64 `json:"lai,omitempty"`
	ForestPresence        string   `json:"forest_presence,omitempty"`
	ForestPresenceComment string   `json:"forest_presence_comment,omitempty"`
	SkyViewFactor         *float64 `json:"sky_view_factor,omitempty"`
	TreeHeight            *float64 `json:"tree_height,omitempty"`
}

// Empty reports whether nothing is known about the environment.
func (e *Environment) Empty() bool {
	return e == nil || (len(e.SolarMask) == 0 && !e.HasPointEnvironment())
}

// HasPointEnvironment reports whether any obsPointEnvironment value is set.
func (e *Environment) HasPointEnvironment() bool {
	return e.BedSurface != "" || e.BedSurfaceComment != "" || e.LitterThickness != nil ||
		e.IceThickness != nil || e.LowVegetationHeight != nil || e.LAI != nil ||
		e.ForestPresence != "" || e.ForestPresenceComment != "" || e.SkyViewFactor != nil ||
		e.TreeHeight != nil
}

func (e *Environment) Validate() error {
	for _, p := range e.SolarMask {
		if p.Azimuth < 0 || p.Azimuth > 360 {
			return invalid("solar mask azimuth", "%g is outside [0, 360]", p.Azimuth)
		}
		if p.Elevation < -90 || p.Elevation > 90 {
			return invalid("solar mask elevation", "%g is outside [-90, 90]", p.Elevation)
		}
	}
	return firstError(
		checkEnum("solar mask quality", e.SolarMaskQuality, QualityFlags),
		checkNonNegative("litter thickness", e.LitterThickness),
		checkNonNegative("ice thickness", e.IceThickness),
		checkNonNegative("low vegetation height", e.LowVegetationHeight),
		checkNonNegative("LAI", e.LAI),
		checkRange("sky view factor", e.SkyViewFactor, 0, 1),
		checkNonNegative("tree height", e.TreeHeight),
	)
}

// Weather at the time of observation.
type Weather struct {
	// Cloudiness is a METAR code, see CloudinessFromOctas for octas.
	Cloudiness string `json:"cloudiness,omitempty"`
	// Precipitation is a METAR precipitation code.
	Precipitation  string   `json:"precipitation,omitempty"`
	AirTemperature *float64 `json:"air_temperature,omitempty"`
	// WindSpeed is in m/s and WindDirection in degrees.
	WindSpeed     *float64 `json:"wind_speed,omitempty"`
	WindDirection *float64 `json:"wind_direction,omitempty"`
	// Measurement heights are in metres.
	AirTemperatureMeasurementHeight *float64        `json:"air_temperature_measurement_height,omitempty"`
	WindMeasurementHeight           *float64        `json:"wind_measurement_height,omitempty"`
	Comment                         string          `json:"comment,omitempty"`
	AdditionalData                  *AdditionalData `json:"additional_data,omitempty"`
}

func (w *Weather) Validate() error {
	return firstError(
		checkEnum("cloudiness", w.Cloudiness, Cloudiness),
		checkEnum("precipitation", w.Precipitation, Precipitations),
		checkNonNegative("wind speed", w.WindSpeed),
		checkRange("wind direction", w.WindDirection, 0, 360),
		checkPositive("air temperature measurement height", w.AirTemperatureMeasurementHeight),
		checkPositive("wind measurement height", w.WindMeasurementHeight),
	)
}

// SurfaceConditions describes the snow surface. Lengths are in metres.
type SurfaceConditions struct {
	SurfaceRoughness             string            `json:"surface_roughness,omitempty"`
	SurfaceWindFeatures          string            `json:"surface_wind_features,omitempty"`
	SurfaceMeltRainFeatures      string            `json:"surface_melt_rain_features,omitempty"`
	SurfaceFeaturesAmplitude     *float64          `json:"surface_features_amplitude,omitempty"`
	SurfaceFeaturesAmplitudeMin  *float64          `json:"surface_features_amplitude_min,omitempty"`
	SurfaceFeaturesAmplitudeMax  *float64          `json:"surface_features_amplitude_max,omitempty"`
	SurfaceFeaturesWavelength    *float64          `json:"surface_features_wavelength,omitempty"`
	SurfaceFeaturesWavelengthMin *float64          `json:"surface_features_wavelength_min,omitempty"`
	SurfaceFeaturesWavelengthMax *float64          `json:"surface_features_wavelength_max,omitempty"`
	SurfaceFeaturesAspect        *float64          `json:"surface_features_aspect,omitempty"`
	LAPPresence                  string            `json:"lap_presence,omitempty"`
	SurfaceTemperature           *float64          `json:"surface_temperature,omitempty"`
	SurfaceTemperatureMethod     string            `json:"surface_temperature_measurement_method,omitempty"`
	SurfaceAlbedo                *float64          `json:"surface_albedo,omitempty"`
	SurfaceAlbedoComment         string            `json:"surface_albedo_comment,omitempty"`
	SpectralAlbedo               []*SpectralAlbedo `json:"spectral_albedo,omitempty"`
	PenetrationRam               *float64          `json:"penetration_ram,omitempty"`
	PenetrationFoot              *float64          `json:"penetration_foot,omitempty"`
	PenetrationSki               *float64          `json:"penetration_ski,omitempty"`
	Comment                      string            `json:"comment,omitempty"`
	AdditionalData               *AdditionalData   `json:"additional_data,omitempty"`
}

func (s *SurfaceConditions) Validate() error {
	return firstError(
		checkEnum("surface roughness", s.SurfaceRoughness, SurfaceRoughness),
		checkEnum("surface wind features", s.SurfaceWindFeatures, SurfaceWindFeatures),
		checkEnum("surface melt and rain features", s.SurfaceMeltRainFeatures, SurfaceMeltRainFeatures),
		checkPositive("surface features amplitude", s.SurfaceFeaturesAmplitude),
		checkNonNegative("surface features amplitude min", s.SurfaceFeaturesAmplitudeMin),
		checkNonNegative("surface features amplitude max", s.SurfaceFeaturesAmplitudeMax),
		checkPositive("surface features wavelength", s.SurfaceFeaturesWavelength),
		checkNonNegative("surface features wavelength min", s.SurfaceFeaturesWavelengthMin),
		checkNonNegative("surface features wavelength max", s.SurfaceFeaturesWavelengthMax),
		checkRange("surface features aspect", s.SurfaceFeaturesAspect, 0, 360),
		checkEnum("LAP presence", s.LAPPresence, LAPPresence),
		checkEnum("surface temperature measurement method", s.SurfaceTemperatureMethod, SurfaceTemperatureMethods),
		checkRange("surface albedo", s.SurfaceAlbedo, 0, 1),
		checkNonNegative("ram penetration", s.PenetrationRam),
		checkNonNegative("foot penetration", s.PenetrationFoot),
		checkNonNegative("ski penetration", s.PenetrationSki),
	)
}
