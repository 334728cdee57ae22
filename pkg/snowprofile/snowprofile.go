package snowprofile

// DefaultApplication is the application name recorded in new profiles.
const DefaultApplication = "snowprofile"

// SnowProfile is a complete snow pit observation: when, where and by whom
// it was made, the conditions at the time and every measured profile.
//
// Snowpack quantities are in SI units: depths in m and water equivalents in
// kg/m2.
type SnowProfile struct {
	ID string `json:"id,omitempty"`
	// Comment is about the whole observation, ProfileComment about the
	// snow profile itself and ProfilesComment about the set of measured
	// profiles.
	Comment         string `json:"comment,omitempty"`
	ProfileComment  string `json:"profile_comment,omitempty"`
	ProfilesComment string `json:"profiles_comment,omitempty"`

	Time              TimeRef           `json:"time"`
	Observer          Observer          `json:"observer"`
	Location          Location          `json:"location"`
	Environment       Environment       `json:"environment"`
	Weather           Weather           `json:"weather"`
	SurfaceConditions SurfaceConditions `json:"surface_conditions"`

	Application        string `json:"application,omitempty"`
	ApplicationVersion string `json:"application_version,omitempty"`

	ProfileDepth              *float64 `json:"profile_depth,omitempty"`
	ProfileDepthStd           *float64 `json:"profile_depth_std,omitempty"`
	ProfileSWE                *float64 `json:"profile_swe,omitempty"`
	ProfileSWEStd             *float64 `json:"profile_swe_std,omitempty"`
	NewSnow24Depth            *float64 `json:"new_snow_24_depth,omitempty"`
	NewSnow24DepthStd         *float64 `json:"new_snow_24_depth_std,omitempty"`
	NewSnow24SWE              *float64 `json:"new_snow_24_swe,omitempty"`
	NewSnow24SWEStd           *float64 `json:"new_snow_24_swe_std,omitempty"`
	SnowTransport             string   `json:"snow_transport,omitempty"`
	SnowTransportOccurrence24 *float64 `json:"snow_transport_occurence_24,omitempty"`

	Stratigraphy        *Stratigraphy         `json:"stratigraphy_profile,omitempty"`
	TemperatureProfiles []*TemperatureProfile `json:"temperature_profiles,omitempty"`
	DensityProfiles     []*DensityProfile     `json:"density_profiles,omitempty"`
	LWCProfiles         []*LWCProfile         `json:"lwc_profiles,omitempty"`
	SSAProfiles         []*SSAProfile         `json:"ssa_profiles,omitempty"`
	HardnessProfiles    []*HardnessProfile    `json:"hardness_profiles,omitempty"`
	StrengthProfiles    []*StrengthProfile    `json:"strength_profiles,omitempty"`
	ImpurityProfiles    []*ImpurityProfile    `json:"impurity_profiles,omitempty"`
	OtherScalarProfiles []*ScalarProfile      `json:"other_scalar_profiles,omitempty"`
	OtherVectProfiles   []*VectorialProfile   `json:"other_vectorial_profiles,omitempty"`
	StabilityTests      []*StabilityTest      `json:"stability_tests,omitempty"`

	AdditionalData         *AdditionalData `json:"additional_data,omitempty"`
	ProfilesAdditionalData *AdditionalData `json:"profiles_additional_data,omitempty"`
}

// New returns an empty profile tagged with the default application name.
func New() *SnowProfile {
	return &SnowProfile{Application: DefaultApplication}
}

// Profiles returns every profile of the observation, stratigraphy first and
// then in the order of the kinds in the struct.
func (s *SnowProfile) Profiles() []Profile {
	var out []Profile
	if s.Stratigraphy != nil {
		out = append(out, s.Stratigraphy)
	}
	for _, p := range s.TemperatureProfiles {
		out = append(out, p)
	}
	for _, p := range s.DensityProfiles {
		out = append(out, p)
	}
	for _, p := range s.LWCProfiles {
		out = append(out, p)
	}
	for _, p := range s.SSAProfiles {
		out = append(out, p)
	}
	for _, p := range s.HardnessProfiles {
		out = append(out, p)
	}
	for _, p := range s.StrengthProfiles {
		out = append(out, p)
	}
	for _, p := range s.ImpurityProfiles {
		out = append(out, p)
	}
	for _, p := range s.OtherScalarProfiles {
		out = append(out, p)
	}
	for _, p := range s.OtherVectProfiles {
		out = append(out, p)
	}
	return out
}

// Validate checks every record and profile of the observation. Profile
// tables are already checked when they are set.
func (s *SnowProfile) Validate() error {
	if err := checkID("profile id", s.ID); err != nil {
		return err
	}
	if err := s.Time.Validate(); err != nil {
		return err
	}
	if err := s.Observer.Validate(); err != nil {
		return err
	}
	if err := s.Location.Validate(); err != nil {
		return err
	}
	if err := s.Environment.Validate(); err != nil {
		return err
	}
	if err := s.Weather.Validate(); err != nil {
		return err
	}
	if err := s.SurfaceConditions.Validate(); err != nil {
		return err
	}
	err := firstError(
		checkNonNegative("profile depth", s.ProfileDepth),
		checkNonNegative("profile depth std", s.ProfileDepthStd),
		checkNonNegative("profile SWE", s.ProfileSWE),
		checkNonNegative("profile SWE std", s.ProfileSWEStd),
		checkNonNegative("new snow 24h depth", s.NewSnow24Depth),
		checkNonNegative("new snow 24h depth std", s.NewSnow24DepthStd),
		checkNonNegative("new snow 24h SWE", s.NewSnow24SWE),
		checkNonNegative("new snow 24h SWE std", s.NewSnow24SWEStd),
		checkEnum("snow transport", s.SnowTransport, SnowTransports),
		checkRange("snow transport occurrence", s.SnowTransportOccurrence24, 0, 100),
	)
	if err != nil {
		return err
	}
	for _, p := range s.Profiles() {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, t := range s.StabilityTests {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}
