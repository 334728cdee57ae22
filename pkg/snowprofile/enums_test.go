package snowprofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHardnessClass(t *testing.T) {
	tests := []struct {
		code string
		want float64
	}{
		{"F", 1},
		{"4F", 2},
		{"1F", 3},
		{"P", 4},
		{"K", 5},
		{"I", 6},
		{"1F+", 3 + 1.0/3},
		{"P-", 4 - 1.0/3},
		{"F-4F", 1.5},
		{" K ", 5},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := HardnessClass(tt.code)
			assert.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, ok := HardnessClass("hard")
	assert.False(t, ok)
}

func TestHardnessCodeNearest(t *testing.T) {
	tests := []struct {
		class float64
		want  string
	}{
		{1, "F"},
		{2.1, "4F"},
		{3.4, "1F+"},
		{4.5, "P-K"},
		{6.1, "I"},
		{9, "I+"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, HardnessCode(tt.class))
		})
	}
}

func TestWetness(t *testing.T) {
	v, ok := WetnessClass("M")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	v, ok = WetnessClass("W-V")
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)

	assert.Equal(t, "D", WetnessCode(1))
	assert.Equal(t, "S", WetnessCode(5))
}

func TestCloudinessFromOctas(t *testing.T) {
	tests := []struct {
		octas int
		want  string
		ok    bool
	}{
		{-1, "X", true},
		{0, "CLR", true},
		{2, "FEW", true},
		{4, "SCT", true},
		{7, "BKN", true},
		{8, "OVC", true},
		{9, "", false},
	}

	for _, tt := range tests {
		got, ok := CloudinessFromOctas(tt.octas)
		assert.Equal(t, tt.ok, ok, "octas %d", tt.octas)
		assert.Equal(t, tt.want, got, "octas %d", tt.octas)
	}
}
