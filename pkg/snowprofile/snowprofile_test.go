package snowprofile

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/snowprofile/pkg/table"
)

func testProfile(t *testing.T) *SnowProfile {
	t.Helper()

	s := New()
	s.ID = "pit-1"
	s.Comment = "Test pit"
	s.Time.RecordTime = Timestamp(time.Date(2024, 1, 10, 10, 30, 0, 0, time.UTC))
	s.Observer = Observer{
		SourceID:       "SLF",
		SourceName:     "Institute",
		ContactPersons: []Person{{ID: "obs-1", Name: "A. Observer"}},
	}
	s.Location = Location{
		ID:        "loc-1",
		Name:      "Col de Porte",
		Aspect:    Float(180),
		Elevation: Float(1325),
		Slope:     Float(12),
		Latitude:  45.295,
		Longitude: 5.765,
		Country:   "FR",
	}
	s.Weather = Weather{Cloudiness: "FEW", AirTemperature: Float(-4.5), WindSpeed: Float(3)}
	s.ProfileDepth = Float(1.2)

	strat, err := NewStratigraphy(Stratigraphy{}, table.Frame{
		table.TopDepth:  {1.2, 0.5},
		table.Thickness: {0.7, 0.5},
		"grain_1":       {"FC", "RG"},
		"hardness":      {"4F", "1F"},
		"wetness":       {"D", nil},
	})
	require.NoError(t, err)
	s.Stratigraphy = strat

	density, err := NewDensityProfile(DensityProfile{
		ProfileMeta:         ProfileMeta{ID: "density-1"},
		MethodOfMeasurement: "Snow Cylinder",
		ProbedVolume:        Float(1e-4),
	}, table.Frame{
		table.TopDepth:    {1.0, 0.5},
		table.BottomDepth: {0.5, 0.0},
		"density":         {200.0, 300.0},
	})
	require.NoError(t, err)
	s.DensityProfiles = append(s.DensityProfiles, density)

	temp, err := NewTemperatureProfile(TemperatureProfile{}, table.Frame{
		table.Depth:   {0.0, 1.0, 0.5},
		"temperature": {0.0, -10.0, -5.0},
	})
	require.NoError(t, err)
	s.TemperatureProfiles = append(s.TemperatureProfiles, temp)

	s.StabilityTests = []*StabilityTest{{
		Type:    ExtendedColumnTest,
		Results: []StabilityResult{{Height: Float(0.6), Score: 12, Propagation: new(bool)}},
	}}

	require.NoError(t, s.Validate())
	return s
}

func TestNewSetsApplication(t *testing.T) {
	assert.Equal(t, DefaultApplication, New().Application)
}

func TestProfilesOrder(t *testing.T) {
	s := testProfile(t)
	profiles := s.Profiles()
	require.Len(t, profiles, 3)
	assert.IsType(t, &Stratigraphy{}, profiles[0])
	assert.IsType(t, &TemperatureProfile{}, profiles[1])
	assert.IsType(t, &DensityProfile{}, profiles[2])
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *SnowProfile)
		field  string
	}{
		{
			name:   "slope of 90 degrees",
			mutate: func(s *SnowProfile) { s.Location.Slope = Float(90) },
			field:  "slope",
		},
		{
			name:   "unknown country",
			mutate: func(s *SnowProfile) { s.Location.Country = "XX" },
			field:  "country",
		},
		{
			name:   "latitude out of range",
			mutate: func(s *SnowProfile) { s.Location.Latitude = 91 },
			field:  "latitude",
		},
		{
			name:   "id with spaces",
			mutate: func(s *SnowProfile) { s.ID = "pit 1" },
			field:  "profile id",
		},
		{
			name:   "negative snow depth",
			mutate: func(s *SnowProfile) { s.ProfileDepth = Float(-1) },
			field:  "profile depth",
		},
		{
			name:   "snow transport occurrence above 100%",
			mutate: func(s *SnowProfile) { s.SnowTransportOccurrence24 = Float(150) },
			field:  "snow transport occurrence",
		},
		{
			name:   "unknown snow transport",
			mutate: func(s *SnowProfile) { s.SnowTransport = "Blizzard" },
			field:  "snow transport",
		},
		{
			name:   "unknown cloudiness",
			mutate: func(s *SnowProfile) { s.Weather.Cloudiness = "cloudy" },
			field:  "cloudiness",
		},
		{
			name:   "record period ending before it begins",
			mutate: func(s *SnowProfile) {
				s.Time.RecordPeriod = Period{
					Begin: Timestamp(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
					End:   Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
				}
			},
			field: "record period",
		},
		{
			name:   "rutschblock score above 7",
			mutate: func(s *SnowProfile) { s.StabilityTests[0] = &StabilityTest{Type: RutschblockTest, Results: []StabilityResult{{Score: 8}}} },
			field:  "RB result 0",
		},
		{
			name:   "unknown density method",
			mutate: func(s *SnowProfile) { s.DensityProfiles[0].MethodOfMeasurement = "Scale" },
			field:  "density method of measurement",
		},
		{
			name:   "zero uncertainty",
			mutate: func(s *SnowProfile) { s.TemperatureProfiles[0].UncertaintyOfMeasurement = Float(0) },
			field:  "uncertainty of measurement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testProfile(t)
			tt.mutate(s)
			err := s.Validate()
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateAcceptsLowerCaseCountry(t *testing.T) {
	s := testProfile(t)
	s.Location.Country = "fr"
	assert.NoError(t, s.Validate())
}

func TestProfileConstructors(t *testing.T) {
	layers := table.Frame{
		table.TopDepth:    {1.0},
		table.BottomDepth: {0.0},
		"data":            {1.5},
	}

	_, err := NewScalarProfile(ScalarProfile{Parameter: "permittivity"}, layers)
	assert.Error(t, err, "unit is required")

	_, err = NewScalarProfile(ScalarProfile{Parameter: "permittivity", Unit: "1"}, layers)
	assert.NoError(t, err)

	_, err = NewVectorialProfile(VectorialProfile{Parameter: "wind", Unit: "m/s", Rank: 1}, layers)
	assert.Error(t, err)

	v, err := NewVectorialProfile(VectorialProfile{Parameter: "wind", Unit: "m/s", Rank: 2}, table.Frame{
		table.TopDepth:    {1.0},
		table.BottomDepth: {0.0},
		"data":            {[]any{1.0, 2.0}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, v.Data().FloatList("data", 0))

	_, err = NewImpurityProfile(ImpurityProfile{}, layers)
	assert.Error(t, err, "impurity type is required")

	ssa, err := NewSSAProfile(SSAProfile{}, table.Frame{table.Depth: {0.3, 0.1}, "ssa": {20.0, 12.0}})
	require.NoError(t, err)
	assert.True(t, ssa.IsPoint())

	ram, err := NewHardnessProfile(HardnessProfile{RamSonde: true}, table.Frame{
		table.TopDepth:    {1.0},
		table.BottomDepth: {0.5},
		"weight_hammer":   {1.0},
		"weight_tube":     {0.5},
		"n_drops":         {3},
		"drop_height":     {0.2},
	})
	require.NoError(t, err)
	n, ok := ram.Data().Int("n_drops", 0)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	_, err = NewHardnessProfile(HardnessProfile{}, table.Frame{
		table.TopDepth:    {1.0},
		table.BottomDepth: {0.5},
		"weight_hammer":   {1.0},
	})
	assert.Error(t, err, "a plain hardness profile needs a hardness column")
}

func TestStratigraphyTranslatesCodes(t *testing.T) {
	s := testProfile(t)
	data := s.Stratigraphy.Data()
	assert.Equal(t, 2.0, data.Float("hardness", 0))
	assert.Equal(t, 3.0, data.Float("hardness", 1))
	assert.InDeltaSlice(t, []float64{0.5, 0}, data.Floats(table.BottomDepth), 1e-9)
}
