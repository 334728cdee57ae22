package caaml

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{in: "", want: DefaultVersion},
		{in: "6.0.5", want: V605},
		{in: "v6.0.6", want: V606},
		{in: " 6.0.6 ", want: V606},
		{in: "6.0.4", wantErr: true},
		{in: "latest", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseVersion(tt.in)
			if tt.wantErr {
				var uv *UnsupportedVersionError
				require.True(t, errors.As(err, &uv))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestVersionFromNamespace(t *testing.T) {
	v, ok := VersionFromNamespace("http://caaml.org/Schemas/SnowProfileIACS/v6.0.6")
	assert.True(t, ok)
	assert.Equal(t, V606, v)

	_, ok = VersionFromNamespace("http://caaml.org/Schemas/SnowProfileIACS/v5.0")
	assert.False(t, ok)
	_, ok = VersionFromNamespace(GMLNamespace)
	assert.False(t, ok)

	assert.Equal(t, "http://caaml.org/Schemas/SnowProfileIACS/v6.0.5", V605.Namespace())
}

func TestVersionOrder(t *testing.T) {
	assert.True(t, V606.AtLeast(V605))
	assert.True(t, V605.AtLeast(V605))
	assert.False(t, V605.AtLeast(V606))
	assert.Equal(t, "6.0.6", V606.String())
	assert.Equal(t, "Version(7)", Version(7).String())
}
