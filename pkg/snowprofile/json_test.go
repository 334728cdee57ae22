package snowprofile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/snowprofile/pkg/table"
)

func TestJSONRoundTrip(t *testing.T) {
	s := testProfile(t)
	s.AdditionalData = &AdditionalData{Data: "<x:a xmlns:x=\"urn:x\"/>", Origin: OriginCAAML6}

	b, err := ToJSON(s)
	require.NoError(t, err)

	got, err := FromJSON(b)
	require.NoError(t, err)

	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.Location, got.Location)
	assert.True(t, s.Time.RecordTime.Equal(*got.Time.RecordTime))
	assert.Equal(t, s.AdditionalData, got.AdditionalData)

	require.NotNil(t, got.Stratigraphy)
	assert.Equal(t, s.Stratigraphy.Data().Floats(table.TopDepth), got.Stratigraphy.Data().Floats(table.TopDepth))
	assert.Equal(t, s.Stratigraphy.Data().Floats("hardness"), got.Stratigraphy.Data().Floats("hardness"))
	grain, ok := got.Stratigraphy.Data().String("grain_1", 1)
	assert.True(t, ok)
	assert.Equal(t, "RG", grain)

	require.Len(t, got.DensityProfiles, 1)
	d := got.DensityProfiles[0]
	assert.Equal(t, "density-1", d.ID)
	assert.Equal(t, "Snow Cylinder", d.MethodOfMeasurement)
	assert.Equal(t, []float64{200, 300}, d.Data().Floats("density"))

	require.Len(t, got.TemperatureProfiles, 1)
	assert.Equal(t, []float64{1, 0.5, 0}, got.TemperatureProfiles[0].Data().Floats(table.Depth))

	require.Len(t, got.StabilityTests, 1)
	assert.Equal(t, ExtendedColumnTest, got.StabilityTests[0].Type)
}

func TestProfileJSONHasDataKey(t *testing.T) {
	s := testProfile(t)

	b, err := json.Marshal(s.DensityProfiles[0])
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Contains(t, fields, "data")
	assert.Contains(t, fields, "id")
	assert.Contains(t, fields, "method_of_measurement")
}

func TestProfileJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing data", `{"id": "d1"}`},
		{"density out of range", `{"data": {"top_depth": [1.0], "bottom_depth": [0.0], "density": [1000]}}`},
		{"invalid id", `{"id": "d 1", "data": {"top_depth": [1.0], "bottom_depth": [0.0], "density": [100]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p DensityProfile
			assert.Error(t, json.Unmarshal([]byte(tt.json), &p))
		})
	}
}

func TestVectorialJSONUsesRank(t *testing.T) {
	var p VectorialProfile
	err := json.Unmarshal([]byte(`{"parameter": "wind", "unit": "m/s", "rank": 3,
		"data": {"top_depth": [1.0], "bottom_depth": [0.5], "data": [[1, 2, 3]]}}`), &p)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, p.Data().FloatList("data", 0))

	err = json.Unmarshal([]byte(`{"parameter": "wind", "unit": "m/s", "rank": 2,
		"data": {"top_depth": [1.0], "bottom_depth": [0.5], "data": [[1, 2, 3]]}}`), &p)
	assert.Error(t, err)
}
