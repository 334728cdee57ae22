package snowprofile

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/snowprofile/pkg/table"
)

// Summary condenses an observation into a few bulk snowpack values. Fields
// are nil when the profiles needed to compute them are missing.
type Summary struct {
	ID           string   `json:"id,omitempty"`
	LocationName string   `json:"location_name,omitempty"`
	RecordTime   *string  `json:"record_time,omitempty"`
	ProfileDepth *float64 `json:"profile_depth,omitempty"`
	Layers       int      `json:"layers"`
	Profiles     int      `json:"profiles"`
	SWE          *float64 `json:"swe,omitempty"`
	MeanDensity  *float64 `json:"mean_density,omitempty"`
	MinSnowTemp  *float64 `json:"min_snow_temperature,omitempty"`
	TempGradient *float64 `json:"temperature_gradient,omitempty"`
	Kinds        []string `json:"kinds,omitempty"`
}

// Summarize computes the summary of s. The snow depth falls back to the top
// of the highest stratigraphy layer when the observation does not give one.
// SWE and mean density come from the first density profile and the
// temperature gradient (degC/m) from a least squares fit of the first
// temperature profile.
func Summarize(s *SnowProfile) Summary {
	sum := Summary{
		ID:           s.ID,
		LocationName: s.Location.Name,
		ProfileDepth: s.ProfileDepth,
		Profiles:     len(s.Profiles()),
	}
	if t := s.Time.RecordTime; t != nil {
		ts := t.UTC().Format("2006-01-02T15:04:05Z")
		sum.RecordTime = &ts
	}
	if s.Stratigraphy != nil && s.Stratigraphy.Data() != nil {
		data := s.Stratigraphy.Data()
		sum.Layers = data.Len()
		if sum.ProfileDepth == nil && data.Len() > 0 {
			sum.ProfileDepth = Float(floats.Max(data.Floats(table.TopDepth)))
		}
	}
	if len(s.DensityProfiles) > 0 && s.DensityProfiles[0].Data() != nil {
		sum.SWE, sum.MeanDensity = densityBulk(s.DensityProfiles[0].Data())
	}
	if len(s.TemperatureProfiles) > 0 && s.TemperatureProfiles[0].Data() != nil {
		sum.MinSnowTemp, sum.TempGradient = temperatureBulk(s.TemperatureProfiles[0].Data())
	}
	for _, p := range s.Profiles() {
		sum.Kinds = appendUnique(sum.Kinds, kindName(p))
	}
	return sum
}

func densityBulk(data *table.Table) (*float64, *float64) {
	var rho, thick []float64
	for i := 0; i < data.Len(); i++ {
		d, h := data.Float("density", i), data.Float(table.Thickness, i)
		if math.IsNaN(d) || math.IsNaN(h) {
			continue
		}
		rho = append(rho, d)
		thick = append(thick, h)
	}
	if len(rho) == 0 {
		return nil, nil
	}
	swe := floats.Dot(rho, thick)
	if floats.Sum(thick) == 0 {
		return Float(swe), nil
	}
	return Float(swe), Float(stat.Mean(rho, thick))
}

func temperatureBulk(data *table.Table) (*float64, *float64) {
	var heights, temps []float64
	for i := 0; i < data.Len(); i++ {
		z, t := data.Float(table.Depth, i), data.Float("temperature", i)
		if math.IsNaN(z) || math.IsNaN(t) {
			continue
		}
		heights = append(heights, z)
		temps = append(temps, t)
	}
	if len(temps) == 0 {
		return nil, nil
	}
	coldest := Float(floats.Min(temps))
	if len(temps) < 2 || floats.Max(heights) == floats.Min(heights) {
		return coldest, nil
	}
	_, slope := stat.LinearRegression(heights, temps, nil, false)
	return coldest, Float(slope)
}

func kindName(p Profile) string {
	switch v := p.(type) {
	case *Stratigraphy:
		return "stratigraphy"
	case *TemperatureProfile:
		return "temperature"
	case *DensityProfile:
		return "density"
	case *LWCProfile:
		return "lwc"
	case *SSAProfile:
		if v.IsPoint() {
			return "ssa_point"
		}
		return "ssa"
	case *HardnessProfile:
		if v.RamSonde {
			return "ram_sonde"
		}
		return "hardness"
	case *StrengthProfile:
		return "strength"
	case *ImpurityProfile:
		return "impurity"
	case *ScalarProfile:
		return "other_scalar"
	case *VectorialProfile:
		return "other_vectorial"
	}
	return "unknown"
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
