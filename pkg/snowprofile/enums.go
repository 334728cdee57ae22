package snowprofile

import (
	"math"
	"strings"
)

// QualityFlags are the qualitative measurement quality levels.
var QualityFlags = []string{"Good", "Uncertain", "Low", "Bad"}

// GrainShapes lists the grain shape codes of the International
// Classification for Seasonal Snow on the Ground (Fierz et al., 2009).
var GrainShapes = []string{
	"PP", "PPco", "PPnd", "PPpl", "PPsd", "PPir", "PPgp", "PPhl", "PPip", "PPrm",
	"MM", "MMrp", "MMci",
	"DF", "DFdc", "DFbk",
	"RG", "RGsr", "RGlr", "RGwp", "RGxf",
	"FC", "FCso", "FCsf", "FCxr",
	"DH", "DHcp", "DHpr", "DHch", "DHla", "DHxr",
	"SH", "SHsu", "SHcv", "SHxr",
	"MF", "MFcl", "MFpc", "MFsl", "MFcr",
	"IF", "IFil", "IFic", "IFbi", "IFrc", "IFsc",
}

// LayerOfConcern values for the stratigraphy loc column.
var LayerOfConcern = []string{"no", "top", "bottom", "all", "true", "false"}

// FractureCharacters for strength profiles and stability test results.
var FractureCharacters = []string{"SDN", "SP", "SC", "RES", "PC", "RP", "BRK", "B", "X"}

var (
	// DensityMethods are the accepted density measurement methods.
	DensityMethods = []string{
		"Snow Tube", "Snow Cylinder", "Snow Cutter", "Snow wedge Cutter", "other gravimetric measurement method",
		"Denoth Probe", "SnowPro Probe", "Snow Fork", "other dielectric permittivity method",
		"Tomography", "SMP", "Neutron scattering probe", "other",
	}
	// LWCMethods are the accepted liquid water content measurement methods.
	LWCMethods = []string{
		"Denoth Probe", "Snow Fork", "SnowPro Probe", "WISe", "other dielectric permittivity method",
		"MRI", "other",
	}
	// SSAMethods are the accepted specific surface area measurement methods.
	SSAMethods = []string{
		"Ice Cube", "IRIS", "InfraSnow", "DUFFISSS-1310", "DUFFISSS-1550",
		"HISSGraS", "ASSSAP", "other IR integrating sphere",
		"SWIRcam", "SnowImager", "other NIR method",
		"Tomography", "SMP", "other",
	}
	// HardnessMethods are the accepted hardness measurement methods.
	HardnessMethods = []string{
		"SnowMicroPen", "Ram Sonde", "Push-Pull Gauge",
		"Avatech SP1", "Avatech SP2", "Scope propagation labs",
		"other automatic penetrometer", "other",
	}
	StrengthMethods = []string{"Shear Frame", "other"}
	StrengthTypes   = []string{"compressive", "tensile", "shear", "mixed", "other"}
	ImpurityMethods = []string{"other"}
	ImpurityTypes   = []string{"Black Carbon", "Dust", "Isotopes", "Other"}
)

var (
	SnowTransports = []string{"No snow transport", "Modified saltation", "Drifting snow", "Blowing snow"}

	Cloudiness = []string{"CLR", "FEW", "SCT", "BKN", "OVC", "X"}

	Precipitations = []string{
		"-DZ", "DZ", "+DZ", "-RA", "RA", "+RA", "-SN", "SN", "+SN",
		"-SG", "SG", "+SG", "-IC", "IC", "+IC", "-PE", "PE", "+PE",
		"-GR", "GR", "+GR", "-GS", "GS", "+GS",
		"UP", "Nil", "RASN", "FZRA",
	}

	SurfaceRoughness = []string{"rsm", "rwa", "rcv", "rcx", "rrd"}

	SurfaceWindFeatures = []string{
		"No observable wind bedforms", "Snowdrift around obstacles", "Snow ripples", "Snow waves",
		"Barchan dunes", "Dunes", "Loose patches", "Pits", "Snow steps", "Sastrugi", "mixed", "other",
	}

	SurfaceMeltRainFeatures = []string{"Sun cups", "Penitents", "Melt or rain furrows", "other"}

	LAPPresence = []string{"No LAP", "Black Carbon", "Dust", "Mixed", "other"}

	SurfaceTemperatureMethods = []string{"Thermometer", "Hemispheric IR", "IR thermometer", "other"}
)

// octasToMETAR converts a cloud cover in octas, -1 meaning sky obscured.
var octasToMETAR = map[int]string{
	-1: "X", 0: "CLR", 1: "FEW", 2: "FEW", 3: "SCT", 4: "SCT", 5: "BKN", 6: "BKN", 7: "BKN", 8: "OVC",
}

// CloudinessFromOctas returns the METAR code for a cloud cover in octas.
func CloudinessFromOctas(octas int) (string, bool) {
	c, ok := octasToMETAR[octas]
	return c, ok
}

// CountryCodes are the ISO 3166-1 alpha-2 codes accepted for a location.
var CountryCodes = []string{
	"AD", "AE", "AF", "AG", "AL", "AM", "AO", "AR", "AT", "AU",
	"AZ", "BA", "BB", "BD", "BE", "BF", "BG", "BH", "BI", "BJ",
	"BN", "BO", "BQ", "BR", "BS", "BT", "BW", "BY", "BZ", "CA",
	"CD", "CF", "CG", "CH", "CI", "CL", "CM", "CN", "CO", "CR",
	"CU", "CV", "CY", "CZ", "DE", "DJ", "DK", "DM", "DO", "DZ",
	"EC", "EE", "EG", "ER", "ES", "ET", "FI", "FJ", "FM", "FR",
	"GA", "GB", "GD", "GE", "GH", "GL", "GM", "GN", "GQ", "GR",
	"GT", "GW", "GY", "HN", "HR", "HT", "HU", "ID", "IE", "IL",
	"IN", "IQ", "IR", "IS", "IT", "JM", "JO", "JP", "KE", "KG",
	"KH", "KI", "KM", "KN", "KP", "KR", "KW", "KZ", "LA", "LB",
	"LC", "LI", "LK", "LR", "LS", "LT", "LU", "LV", "LY", "MA",
	"MC", "MD", "ME", "MG", "MH", "MK", "ML", "MM", "MN", "MR",
	"MT", "MU", "MV", "MW", "MX", "MY", "MZ", "NA", "NE", "NG",
	"NI", "NL", "NO", "NP", "NR", "NZ", "OM", "PA", "PE", "PG",
	"PH", "PK", "PL", "PS", "PT", "PW", "PY", "QA", "RO", "RS",
	"RU", "RW", "SA", "SB", "SC", "SD", "SE", "SG", "SH", "SI",
	"SK", "SL", "SM", "SN", "SO", "SR", "SS", "ST", "SV", "SY",
	"SZ", "TD", "TG", "TH", "TJ", "TL", "TM", "TN", "TO", "TR",
	"TT", "TV", "TW", "TZ", "UA", "UG", "UM", "US", "UY", "UZ",
	"VC", "VE", "VN", "VU", "WF", "WS", "YE", "ZA", "ZM", "ZW",
}

// ordinalScale is a manual observation scale: base codes mapped to 1, 2, ...
// with "X-" and "X+" one third below and above X, and "X-Y" halfway between
// two neighbouring classes.
type ordinalScale struct {
	codes     map[string]float64
	canonical []scaleLevel
}

type scaleLevel struct {
	code  string
	value float64
}

func newOrdinalScale(base ...string) *ordinalScale {
	s := &ordinalScale{codes: map[string]float64{}}
	add := func(code string, v float64) {
		s.codes[code] = v
		s.canonical = append(s.canonical, scaleLevel{code, v})
	}
	for i, code := range base {
		v := float64(i + 1)
		add(code+"-", v-1.0/3)
		add(code, v)
		add(code+"+", v+1.0/3)
		if i+1 < len(base) {
			add(code+"-"+base[i+1], v+0.5)
		}
	}
	return s
}

func (s *ordinalScale) translate() map[string]any {
	m := make(map[string]any, len(s.codes))
	for code, v := range s.codes {
		m[code] = v
	}
	return m
}

func (s *ordinalScale) levels() []float64 {
	out := make([]float64, len(s.canonical))
	for i, l := range s.canonical {
		out[i] = l.value
	}
	return out
}

func (s *ordinalScale) value(code string) (float64, bool) {
	v, ok := s.codes[strings.TrimSpace(code)]
	return v, ok
}

func (s *ordinalScale) code(v float64) string {
	best, dist := "", math.Inf(1)
	for _, l := range s.canonical {
		if d := math.Abs(l.value - v); d < dist {
			best, dist = l.code, d
		}
	}
	return best
}

var (
	hardnessScale = newOrdinalScale("F", "4F", "1F", "P", "K", "I")
	wetnessScale  = newOrdinalScale("D", "M", "W", "V", "S")
)

// HardnessClass converts a hand hardness code such as "4F" or "1F+" to its
// numeric class (F=1 ... I=6).
func HardnessClass(code string) (float64, bool) { return hardnessScale.value(code) }

// HardnessCode converts a numeric hand hardness class back to its code.
func HardnessCode(class float64) string { return hardnessScale.code(class) }

// WetnessClass converts a manual wetness code (D, M, W, V, S and
// intermediates) to its numeric class.
func WetnessClass(code string) (float64, bool) { return wetnessScale.value(code) }

// WetnessCode converts a numeric wetness class back to its code.
func WetnessCode(class float64) string { return wetnessScale.code(class) }
