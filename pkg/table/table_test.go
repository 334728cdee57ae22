package table

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chrissnell/snowprofile/internal/log"
)

var densityContract = &Contract{
	Kind: Layer,
	Columns: []Column{
		{Name: "density", Type: Float, Min: Bound(0), Max: Bound(917)},
		{Name: "uncertainty", Type: Float, Optional: true, NullAllowed: true, Min: Bound(0)},
		{Name: "quality", Type: String, Optional: true, NullAllowed: true, Values: []string{"Good", "Uncertain", "Low", "Bad"}},
	},
}

var hardnessContract = &Contract{
	Kind: Layer,
	Columns: []Column{
		{Name: "hardness", Type: Float, Optional: true, NullAllowed: true,
			Translate: map[string]any{"F": 1.0, "4F": 2.0, "1F": 3.0},
			Levels:    []float64{1, 2, 3}},
	},
}

func requireSchemaError(t *testing.T, err error) *SchemaError {
	t.Helper()
	var se *SchemaError
	require.Error(t, err)
	require.True(t, errors.As(err, &se), "expected *SchemaError, got %T", err)
	return se
}

func TestValidateDerivesLayerColumn(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{
			name: "top and bottom",
			frame: Frame{
				TopDepth:    {1.2, 0.5, 0.8},
				BottomDepth: {0.8, 0.0, 0.5},
				"density":   {300, 350.0, 320},
			},
		},
		{
			name: "top and thickness",
			frame: Frame{
				TopDepth:  {1.2, 0.5, 0.8},
				Thickness: {0.4, 0.5, 0.3},
				"density": {300, 350.0, 320},
			},
		},
		{
			name: "bottom and thickness",
			frame: Frame{
				BottomDepth: {0.8, 0.0, 0.5},
				Thickness:   {0.4, 0.5, 0.3},
				"density":   {300, 350.0, 320},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Validate(tt.frame, densityContract)
			require.NoError(t, err)
			require.Equal(t, 3, tbl.Len())
			assert.Equal(t, []string{TopDepth, BottomDepth, Thickness, "density"}, tbl.Columns())

			for i := 0; i < tbl.Len(); i++ {
				assert.InDelta(t, tbl.Float(TopDepth, i), tbl.Float(BottomDepth, i)+tbl.Float(Thickness, i), 1e-9)
			}
			assert.InDeltaSlice(t, []float64{1.2, 0.8, 0.5}, tbl.Floats(TopDepth), 1e-9)
			assert.Equal(t, []float64{300, 320, 350}, tbl.Floats("density"))
		})
	}
}

func TestValidateStableDescendingSort(t *testing.T) {
	tbl, err := Validate(Frame{
		Depth:         {0.1, 0.5, 0.5, 0.3},
		"temperature": {-1.0, -2.0, -3.0, -4.0},
	}, &Contract{Kind: Point, Columns: []Column{{Name: "temperature", Type: Float, Max: Bound(0)}}})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 0.5, 0.3, 0.1}, tbl.Floats(Depth))
	assert.Equal(t, []float64{-2, -3, -4, -1}, tbl.Floats("temperature"))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		frame    Frame
		contract *Contract
		column   string
	}{
		{
			name:     "density above ice",
			frame:    Frame{TopDepth: {1.0}, BottomDepth: {0.5}, "density": {1000.0}},
			contract: densityContract,
			column:   "density",
		},
		{
			name:     "null thickness",
			frame:    Frame{TopDepth: {1.0, 0.5}, Thickness: {0.5, nil}, "density": {200.0, 300.0}},
			contract: densityContract,
			column:   Thickness,
		},
		{
			name:     "NaN top depth",
			frame:    Frame{TopDepth: {math.NaN()}, Thickness: {0.5}, "density": {200.0}},
			contract: densityContract,
			column:   TopDepth,
		},
		{
			name:     "one index column",
			frame:    Frame{TopDepth: {1.0}, "density": {200.0}},
			contract: densityContract,
		},
		{
			name:     "three index columns",
			frame:    Frame{TopDepth: {1.0}, BottomDepth: {0.5}, Thickness: {0.5}, "density": {200.0}},
			contract: densityContract,
		},
		{
			name:     "required column missing",
			frame:    Frame{TopDepth: {1.0}, BottomDepth: {0.5}},
			contract: densityContract,
			column:   "density",
		},
		{
			name:     "unexpected column",
			frame:    Frame{TopDepth: {1.0}, BottomDepth: {0.5}, "density": {200.0}, "colour": {"blue"}},
			contract: densityContract,
			column:   "colour",
		},
		{
			name:     "negative derived thickness",
			frame:    Frame{TopDepth: {0.5}, BottomDepth: {1.0}, "density": {200.0}},
			contract: densityContract,
			column:   Thickness,
		},
		{
			name:     "ragged columns",
			frame:    Frame{TopDepth: {1.0, 0.5}, BottomDepth: {0.5, 0.0}, "density": {200.0}},
			contract: densityContract,
		},
		{
			name:     "quality outside enumeration",
			frame:    Frame{TopDepth: {1.0}, BottomDepth: {0.5}, "density": {200.0}, "quality": {"Excellent"}},
			contract: densityContract,
			column:   "quality",
		},
		{
			name:     "unknown hardness code",
			frame:    Frame{TopDepth: {1.0}, BottomDepth: {0.5}, "hardness": {"Q"}},
			contract: hardnessContract,
			column:   "hardness",
		},
		{
			name:     "hardness off level",
			frame:    Frame{TopDepth: {1.0}, BottomDepth: {0.5}, "hardness": {2.5}},
			contract: hardnessContract,
			column:   "hardness",
		},
		{
			name:     "missing point depth",
			frame:    Frame{"temperature": {-1.0}},
			contract: &Contract{Kind: Point, Columns: []Column{{Name: "temperature", Type: Float}}},
			column:   Depth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.frame, tt.contract)
			se := requireSchemaError(t, err)
			if tt.column != "" {
				assert.Equal(t, tt.column, se.Column)
			}
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	tbl, err := Validate(Frame{
		TopDepth:      {1.0, 0.5},
		BottomDepth:   {0.5, 0.0},
		"density":     {400.0, "350"},
		"uncertainty": {nil, math.NaN()},
		"quality":     {"Good", nil},
	}, densityContract)
	require.NoError(t, err)
	assert.Equal(t, 400.0, tbl.Float("density", 0))
	assert.Equal(t, 350.0, tbl.Float("density", 1))
	assert.True(t, math.IsNaN(tbl.Float("uncertainty", 0)))
	assert.Nil(t, tbl.Value("uncertainty", 1))
	q, ok := tbl.String("quality", 0)
	assert.True(t, ok)
	assert.Equal(t, "Good", q)
	_, ok = tbl.String("quality", 1)
	assert.False(t, ok)
}

func TestValidateTranslates(t *testing.T) {
	tbl, err := Validate(Frame{
		TopDepth:   {1.0, 0.5},
		Thickness:  {0.5, 0.5},
		"hardness": {"4F", 3},
	}, hardnessContract)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, tbl.Floats("hardness"))
}

func TestValidateWarnsAboveTenMetres(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log.SetLogger(zap.New(core))

	_, err := Validate(Frame{TopDepth: {12.0}, BottomDepth: {0.0}, "density": {300.0}}, densityContract)
	require.NoError(t, err)
	assert.NotZero(t, logs.FilterMessageSnippet("above 10m").Len())
}

func TestValidateCoercesTypes(t *testing.T) {
	contract := &Contract{
		Kind: Layer,
		Columns: []Column{
			{Name: "n_drops", Type: Int, Min: Bound(0)},
			{Name: "formed", Type: Time, Optional: true, NullAllowed: true},
			{Name: "data", Type: FloatList, Optional: true, Length: 2},
		},
	}
	tbl, err := Validate(Frame{
		TopDepth:    {1.0},
		BottomDepth: {0.9},
		"n_drops":   {3.0},
		"formed":    {"2024-01-02T03:04:05"},
		"data":      {[]any{1.0, 2}},
	}, contract)
	require.NoError(t, err)

	n, ok := tbl.Int("n_drops", 0)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	tm, ok := tbl.Time("formed", 0)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), tm)
	assert.Equal(t, []float64{1, 2}, tbl.FloatList("data", 0))

	_, err = Validate(Frame{TopDepth: {1.0}, BottomDepth: {0.9}, "n_drops": {2.5}}, contract)
	requireSchemaError(t, err)
	_, err = Validate(Frame{TopDepth: {1.0}, BottomDepth: {0.9}, "n_drops": {1}, "data": {[]float64{1}}}, contract)
	requireSchemaError(t, err)
}

func TestTableJSONRoundTrip(t *testing.T) {
	tbl, err := Validate(Frame{
		TopDepth:    {1.0, 0.5},
		BottomDepth: {0.5, 0.0},
		"density":   {400.0, 350.0},
		"quality":   {"Good", nil},
	}, densityContract)
	require.NoError(t, err)

	data, err := json.Marshal(tbl)
	require.NoError(t, err)
	frame, err := DecodeFrame(data, Layer)
	require.NoError(t, err)
	assert.NotContains(t, frame, Thickness)

	again, err := Validate(frame, densityContract)
	require.NoError(t, err)
	assert.Equal(t, tbl.Floats(Thickness), again.Floats(Thickness))
	assert.Equal(t, tbl.Floats("density"), again.Floats("density"))
}

func TestFrameKeepsSuppliedColumns(t *testing.T) {
	tests := []struct {
		name     string
		supplied Frame
		derived  string
	}{
		{
			name:     "top and thickness",
			supplied: Frame{TopDepth: {1.83, 0.83, 0.3}, Thickness: {0.3, 0.05, 0.3}},
			derived:  BottomDepth,
		},
		{
			name:     "bottom and thickness",
			supplied: Frame{BottomDepth: {1.53, 0.78, 0.0}, Thickness: {0.3, 0.05, 0.3}},
			derived:  TopDepth,
		},
		{
			name:     "top and bottom",
			supplied: Frame{TopDepth: {1.83, 0.83, 0.3}, BottomDepth: {1.53, 0.78, 0.0}},
			derived:  Thickness,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := Frame{"density": {120.0, 250.0, 310.0}}
			for name, values := range tt.supplied {
				frame[name] = values
			}
			tbl, err := Validate(frame, densityContract)
			require.NoError(t, err)

			again, err := Validate(tbl.Frame(), densityContract)
			require.NoError(t, err)
			assert.NotContains(t, tbl.Frame(), tt.derived)

			data, err := json.Marshal(tbl)
			require.NoError(t, err)
			decoded, err := DecodeFrame(data, Layer)
			require.NoError(t, err)
			fromJSON, err := Validate(decoded, densityContract)
			require.NoError(t, err)

			for name := range tt.supplied {
				assert.Equal(t, tbl.Floats(name), again.Floats(name), "frame %s", name)
				assert.Equal(t, tbl.Floats(name), fromJSON.Floats(name), "json %s", name)
			}
			for _, name := range []string{TopDepth, BottomDepth, Thickness} {
				assert.Equal(t, tbl.Floats(name), fromJSON.Floats(name), "json %s", name)
			}
		})
	}
}

func TestDecodeFrameDropsBottomWhenInconsistent(t *testing.T) {
	frame, err := DecodeFrame([]byte(`{"top_depth":[1.0],"bottom_depth":[0.2],"thickness":[0.5],"density":[300]}`), Layer)
	require.NoError(t, err)
	assert.Contains(t, frame, TopDepth)
	assert.Contains(t, frame, Thickness)
	assert.NotContains(t, frame, BottomDepth)
}

