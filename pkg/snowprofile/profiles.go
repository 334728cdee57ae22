package snowprofile

import (
	"github.com/chrissnell/snowprofile/pkg/table"
)

// Profile is implemented by every vertical profile kind.
type Profile interface {
	Meta() *ProfileMeta
	// Data returns the validated table. Depth columns hold heights above
	// the ground in metres.
	Data() *table.Table
	// SetData validates frame and replaces the whole table.
	SetData(frame table.Frame) error
	// Validate checks the metadata of the profile.
	Validate() error
}

// MeasuredProfile is a Profile with measurement metadata.
type MeasuredProfile interface {
	Profile
	Measurement() *MeasurementMeta
}

type profileData struct {
	data *table.Table
}

// Data returns the validated table.
func (p *profileData) Data() *table.Table { return p.data }

func (p *profileData) replace(frame table.Frame, contract *table.Contract) error {
	t, err := table.Validate(frame, contract)
	if err != nil {
		return err
	}
	p.data = t
	return nil
}

var (
	uncertaintyColumn = table.Column{Name: "uncertainty", Type: table.Float, Optional: true, NullAllowed: true, Min: table.Bound(0)}
	qualityColumn     = table.Column{Name: "quality", Type: table.String, Optional: true, NullAllowed: true, Values: QualityFlags}
)

func measured(kind table.Kind, columns ...table.Column) *table.Contract {
	return &table.Contract{Kind: kind, Columns: append(columns, uncertaintyColumn, qualityColumn)}
}

// Column contracts of each profile kind.
var (
	StratigraphyContract = &table.Contract{
		Kind: table.Layer,
		Columns: []table.Column{
			{Name: "grain_1", Type: table.String, Optional: true, NullAllowed: true, Values: GrainShapes},
			{Name: "grain_2", Type: table.String, Optional: true, NullAllowed: true, Values: GrainShapes},
			{Name: "grain_size", Type: table.Float, Optional: true, NullAllowed: true, Min: table.Bound(0)},
			{Name: "grain_size_max", Type: table.Float, Optional: true, NullAllowed: true, Min: table.Bound(0)},
			{Name: "hardness", Type: table.Float, Optional: true, NullAllowed: true,
				Translate: hardnessScale.translate(), Levels: hardnessScale.levels()},
			{Name: "wetness", Type: table.Float, Optional: true, NullAllowed: true,
				Translate: wetnessScale.translate(), Levels: wetnessScale.levels()},
			{Name: "loc", Type: table.String, Optional: true, NullAllowed: true, Values: LayerOfConcern},
			uncertaintyColumn,
			qualityColumn,
			{Name: "comment", Type: table.String, Optional: true, NullAllowed: true},
			{Name: "additional_data", Type: table.String, Optional: true, NullAllowed: true},
			{Name: "formation_time", Type: table.Time, Optional: true, NullAllowed: true},
			{Name: "formation_period_begin", Type: table.Time, Optional: true, NullAllowed: true},
			{Name: "formation_period_end", Type: table.Time, Optional: true, NullAllowed: true},
		},
	}

	TemperatureContract = measured(table.Point,
		table.Column{Name: "temperature", Type: table.Float, Max: table.Bound(0)})

	DensityContract = measured(table.Layer,
		table.Column{Name: "density", Type: table.Float, Min: table.Bound(0), Max: table.Bound(917)})

	LWCContract = measured(table.Layer,
		table.Column{Name: "lwc", Type: table.Float, Min: table.Bound(0), Max: table.Bound(100)})

	SSAContract = measured(table.Layer,
		table.Column{Name: "ssa", Type: table.Float, Min: table.Bound(0)})

	SSAPointContract = measured(table.Point,
		table.Column{Name: "ssa", Type: table.Float, Min: table.Bound(0)})

	HardnessContract = measured(table.Layer,
		table.Column{Name: "hardness", Type: table.Float, Min: table.Bound(0)})

	RamSondeContract = measured(table.Layer,
		table.Column{Name: "hardness", Type: table.Float, Optional: true, NullAllowed: true, Min: table.Bound(0)},
		table.Column{Name: "weight_hammer", Type: table.Float, Min: table.Bound(0)},
		table.Column{Name: "weight_tube", Type: table.Float, Min: table.Bound(0)},
		table.Column{Name: "n_drops", Type: table.Int, Min: table.Bound(0)},
		table.Column{Name: "drop_height", Type: table.Float, Min: table.Bound(0)})

	StrengthContract = measured(table.Layer,
		table.Column{Name: "strength", Type: table.Float, Min: table.Bound(0)},
		table.Column{Name: "fracture_character", Type: table.String, Optional: true, NullAllowed: true, Values: FractureCharacters})

	ImpurityContract = measured(table.Layer,
		table.Column{Name: "mass_fraction", Type: table.Float, Optional: true, NullAllowed: true, Min: table.Bound(0), Max: table.Bound(100)},
		table.Column{Name: "volume_fraction", Type: table.Float, Optional: true, NullAllowed: true, Min: table.Bound(0), Max: table.Bound(100)})

	ScalarContract = measured(table.Layer,
		table.Column{Name: "data", Type: table.Float})

	SpectralAlbedoContract = measured(table.Spectral,
		table.Column{Name: "albedo", Type: table.Float, Min: table.Bound(0), Max: table.Bound(1)})
)

// VectorialContract is the contract of a vectorial profile of the given rank.
func VectorialContract(rank int) *table.Contract {
	return measured(table.Layer,
		table.Column{Name: "data", Type: table.FloatList, Length: rank})
}

// Stratigraphy is the layer-by-layer description of the snowpack: grain
// shapes and sizes, hand hardness and wetness classes.
type Stratigraphy struct {
	ProfileMeta
	profileData
}

// NewStratigraphy validates the metadata of p and the frame and returns the
// profile.
func NewStratigraphy(p Stratigraphy, frame table.Frame) (*Stratigraphy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetData validates frame and replaces the layers. On error the profile is
// left unchanged.
func (p *Stratigraphy) SetData(frame table.Frame) error { return p.replace(frame, StratigraphyContract) }
// Validate checks the profile metadata.
func (p *Stratigraphy) Validate() error { return p.ProfileMeta.validate() }

// TemperatureProfile holds point measurements of snow temperature (degC).
type TemperatureProfile struct {
	ProfileMeta
	MeasurementMeta
	MethodOfMeasurement string `json:"method_of_measurement,omitempty"`
	profileData
}

// NewTemperatureProfile returns a validated temperature point profile.
func NewTemperatureProfile(p TemperatureProfile, frame table.Frame) (*TemperatureProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *TemperatureProfile) SetData(frame table.Frame) error {
	return p.replace(frame, TemperatureContract)
}

// Validate checks the metadata and the measurement fields.
func (p *TemperatureProfile) Validate() error {
	return firstError(p.ProfileMeta.validate(), p.MeasurementMeta.validate())
}

// DensityProfile holds layer densities (kg/m3).
type DensityProfile struct {
	ProfileMeta
	MeasurementMeta
	MethodOfMeasurement string   `json:"method_of_measurement,omitempty"`
	ProbedVolume        *float64 `json:"probed_volume,omitempty"`
	ProbedDiameter      *float64 `json:"probed_diameter,omitempty"`
	ProbedLength        *float64 `json:"probed_length,omitempty"`
	ProbedThickness     *float64 `json:"probed_thickness,omitempty"`
	profileData
}

// NewDensityProfile returns a validated density layer profile.
func NewDensityProfile(p DensityProfile, frame table.Frame) (*DensityProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *DensityProfile) SetData(frame table.Frame) error { return p.replace(frame, DensityContract) }

func (p *DensityProfile) Validate() error {
	return firstError(
		p.ProfileMeta.validate(),
		p.MeasurementMeta.validate(),
		checkEnum("density method of measurement", p.MethodOfMeasurement, DensityMethods),
		checkNonNegative("probed volume", p.ProbedVolume),
		checkNonNegative("probed diameter", p.ProbedDiameter),
		checkNonNegative("probed length", p.ProbedLength),
		checkNonNegative("probed thickness", p.ProbedThickness),
	)
}

// LWCProfile holds layer liquid water content (% by volume).
type LWCProfile struct {
	ProfileMeta
	MeasurementMeta
	MethodOfMeasurement string   `json:"method_of_measurement,omitempty"`
	ProbedThickness     *float64 `json:"probed_thickness,omitempty"`
	profileData
}

// NewLWCProfile returns a validated liquid water content profile.
func NewLWCProfile(p LWCProfile, frame table.Frame) (*LWCProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *LWCProfile) SetData(frame table.Frame) error { return p.replace(frame, LWCContract) }

func (p *LWCProfile) Validate() error {
	return firstError(
		p.ProfileMeta.validate(),
		p.MeasurementMeta.validate(),
		checkEnum("LWC method of measurement", p.MethodOfMeasurement, LWCMethods),
		checkNonNegative("probed thickness", p.ProbedThickness),
	)
}

// SSAProfile holds specific surface area (m2/kg), either per layer or per
// point depending on the index columns of the data.
type SSAProfile struct {
	ProfileMeta
	MeasurementMeta
	MethodOfMeasurement string   `json:"method_of_measurement,omitempty"`
	ProbedThickness     *float64 `json:"probed_thickness,omitempty"`
	profileData
}

// NewSSAProfile returns a validated specific surface area profile, point or
// layer depending on frame.
func NewSSAProfile(p SSAProfile, frame table.Frame) (*SSAProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetData accepts a point table when frame has a depth column and a layer
// table otherwise.
func (p *SSAProfile) SetData(frame table.Frame) error {
	if _, ok := frame[table.Depth]; ok {
		return p.replace(frame, SSAPointContract)
	}
	return p.replace(frame, SSAContract)
}

// IsPoint reports whether the data is a point profile.
func (p *SSAProfile) IsPoint() bool {
	return p.data != nil && p.data.Kind() == table.Point
}

func (p *SSAProfile) Validate() error {
	return firstError(
		p.ProfileMeta.validate(),
		p.MeasurementMeta.validate(),
		checkEnum("SSA method of measurement", p.MethodOfMeasurement, SSAMethods),
		checkNonNegative("probed thickness", p.ProbedThickness),
	)
}

// HardnessProfile holds penetration resistance (N). Ram sonde profiles
// also carry the hammer, tube, drop count and drop height of every layer.
type HardnessProfile struct {
	ProfileMeta
	MeasurementMeta
	MethodOfMeasurement string `json:"method_of_measurement,omitempty"`
	RamSonde            bool   `json:"ram_sonde,omitempty"`
	profileData
}

// NewHardnessProfile returns a validated hardness profile.
func NewHardnessProfile(p HardnessProfile, frame table.Frame) (*HardnessProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *HardnessProfile) SetData(frame table.Frame) error {
	if p.RamSonde {
		return p.replace(frame, RamSondeContract)
	}
	return p.replace(frame, HardnessContract)
}

func (p *HardnessProfile) Validate() error {
	return firstError(
		p.ProfileMeta.validate(),
		p.MeasurementMeta.validate(),
		checkEnum("hardness method of measurement", p.MethodOfMeasurement, HardnessMethods),
	)
}

// StrengthProfile holds layer strength (N) and optional fracture character.
type StrengthProfile struct {
	ProfileMeta
	MeasurementMeta
	MethodOfMeasurement string   `json:"method_of_measurement,omitempty"`
	StrengthType        string   `json:"strength_type,omitempty"`
	ProbedArea          *float64 `json:"probed_area,omitempty"`
	profileData
}

// NewStrengthProfile returns a validated strength profile.
func NewStrengthProfile(p StrengthProfile, frame table.Frame) (*StrengthProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *StrengthProfile) SetData(frame table.Frame) error { return p.replace(frame, StrengthContract) }

func (p *StrengthProfile) Validate() error {
	return firstError(
		p.ProfileMeta.validate(),
		p.MeasurementMeta.validate(),
		checkEnum("strength method of measurement", p.MethodOfMeasurement, StrengthMethods),
		checkEnum("strength type", p.StrengthType, StrengthTypes),
		checkNonNegative("probed area", p.ProbedArea),
	)
}

// ImpurityProfile holds mass or volume fraction (%) of one impurity type.
type ImpurityProfile struct {
	ProfileMeta
	MeasurementMeta
	ImpurityType        string   `json:"impurity_type"`
	MethodOfMeasurement string   `json:"method_of_measurement,omitempty"`
	ProbedVolume        *float64 `json:"probed_volume,omitempty"`
	ProbedDiameter      *float64 `json:"probed_diameter,omitempty"`
	ProbedLength        *float64 `json:"probed_length,omitempty"`
	ProbedThickness     *float64 `json:"probed_thickness,omitempty"`
	profileData
}

// NewImpurityProfile returns a validated impurity profile.
func NewImpurityProfile(p ImpurityProfile, frame table.Frame) (*ImpurityProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *ImpurityProfile) SetData(frame table.Frame) error { return p.replace(frame, ImpurityContract) }

func (p *ImpurityProfile) Validate() error {
	if p.ImpurityType == "" {
		return invalid("impurity type", "is required")
	}
	return firstError(
		p.ProfileMeta.validate(),
		p.MeasurementMeta.validate(),
		checkEnum("impurity type", p.ImpurityType, ImpurityTypes),
		checkEnum("impurity method of measurement", p.MethodOfMeasurement, ImpurityMethods),
		checkNonNegative("probed volume", p.ProbedVolume),
		checkNonNegative("probed diameter", p.ProbedDiameter),
		checkNonNegative("probed length", p.ProbedLength),
		checkNonNegative("probed thickness", p.ProbedThickness),
	)
}

// ScalarProfile holds any other scalar layer quantity.
type ScalarProfile struct {
	ProfileMeta
	MeasurementMeta
	MethodOfMeasurement string `json:"method_of_measurement,omitempty"`
	Parameter           string `json:"parameter"`
	// Unit should be an SI unit.
	Unit string `json:"unit"`
	profileData
}

// NewScalarProfile returns a validated profile of an unmodeled scalar quantity.
func NewScalarProfile(p ScalarProfile, frame table.Frame) (*ScalarProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *ScalarProfile) SetData(frame table.Frame) error { return p.replace(frame, ScalarContract) }

func (p *ScalarProfile) Validate() error {
	if p.Parameter == "" {
		return invalid("parameter", "is required")
	}
	if p.Unit == "" {
		return invalid("unit", "is required")
	}
	return firstError(p.ProfileMeta.validate(), p.MeasurementMeta.validate())
}

// VectorialProfile holds a layer quantity with Rank components.
type VectorialProfile struct {
	ProfileMeta
	MeasurementMeta
	MethodOfMeasurement string `json:"method_of_measurement,omitempty"`
	Parameter           string `json:"parameter"`
	Unit                string `json:"unit"`
	Rank                int    `json:"rank"`
	profileData
}

// NewVectorialProfile returns a validated profile of an unmodeled vectorial
// quantity.
func NewVectorialProfile(p VectorialProfile, frame table.Frame) (*VectorialProfile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetData(frame); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *VectorialProfile) SetData(frame table.Frame) error {
	return p.replace(frame, VectorialContract(p.Rank))
}

func (p *VectorialProfile) Validate() error {
	if p.Parameter == "" {
		return invalid("parameter", "is required")
	}
	if p.Unit == "" {
		return invalid("unit", "is required")
	}
	if p.Rank <= 1 {
		return invalid("rank", "%d must be above 1, use a scalar profile instead", p.Rank)
	}
	return firstError(p.ProfileMeta.validate(), p.MeasurementMeta.validate())
}

// SpectralAlbedo holds albedo per wavelength band (m).
type SpectralAlbedo struct {
	Comment string `json:"comment,omitempty"`
	profileData
}

// NewSpectralAlbedo returns a validated spectral albedo table.
func NewSpectralAlbedo(comment string, frame table.Frame) (*SpectralAlbedo, error) {
	s := &SpectralAlbedo{Comment: comment}
	if err := s.SetData(frame); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SpectralAlbedo) SetData(frame table.Frame) error {
	return s.replace(frame, SpectralAlbedoContract)
}
