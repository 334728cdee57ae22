package snowprofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := testProfile(t)
	s.ProfileDepth = nil

	sum := Summarize(s)

	assert.Equal(t, "pit-1", sum.ID)
	assert.Equal(t, "Col de Porte", sum.LocationName)
	require.NotNil(t, sum.RecordTime)
	assert.Equal(t, "2024-01-10T10:30:00Z", *sum.RecordTime)
	assert.Equal(t, 2, sum.Layers)
	assert.Equal(t, 3, sum.Profiles)
	require.NotNil(t, sum.ProfileDepth)
	assert.InDelta(t, 1.2, *sum.ProfileDepth, 1e-9)

	require.NotNil(t, sum.SWE)
	assert.InDelta(t, 250, *sum.SWE, 1e-9)
	require.NotNil(t, sum.MeanDensity)
	assert.InDelta(t, 250, *sum.MeanDensity, 1e-9)

	require.NotNil(t, sum.MinSnowTemp)
	assert.Equal(t, -10.0, *sum.MinSnowTemp)
	require.NotNil(t, sum.TempGradient)
	assert.InDelta(t, -10, *sum.TempGradient, 1e-9)

	assert.Equal(t, []string{"stratigraphy", "temperature", "density"}, sum.Kinds)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(New())
	assert.Zero(t, sum.Layers)
	assert.Nil(t, sum.SWE)
	assert.Nil(t, sum.MinSnowTemp)
	assert.Nil(t, sum.ProfileDepth)
	assert.Empty(t, sum.Kinds)
}
