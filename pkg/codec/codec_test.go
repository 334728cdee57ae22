package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/snowprofile/pkg/caaml"
	"github.com/chrissnell/snowprofile/pkg/snowprofile"
)

func readFixture(t *testing.T) *snowprofile.SnowProfile {
	t.Helper()
	sp, err := caaml.Read("../caaml/testdata/profile_v606.xml")
	require.NoError(t, err)
	return sp
}

func toJSON(t *testing.T, sp *snowprofile.SnowProfile) string {
	t.Helper()
	b, err := snowprofile.ToJSON(sp)
	require.NoError(t, err)
	return string(b)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "caaml", want: CAAML},
		{in: "XML", want: CAAML},
		{in: "json", want: JSON},
		{in: " msgpack ", want: Msgpack},
		{in: "mpk", want: Msgpack},
		{in: "yaml", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, JSON, FormatFromPath("pit.JSON"))
	assert.Equal(t, Msgpack, FormatFromPath("/tmp/pit.msgpack"))
	assert.Equal(t, Msgpack, FormatFromPath("pit.mpk"))
	assert.Equal(t, CAAML, FormatFromPath("pit.caaml"))
	assert.Equal(t, CAAML, FormatFromPath("pit"))
	assert.Equal(t, "application/x-msgpack", Msgpack.ContentType())
	assert.Equal(t, "application/xml", CAAML.ContentType())
}

func TestRoundTripEachFormat(t *testing.T) {
	sp := readFixture(t)
	want := toJSON(t, sp)

	for _, f := range []Format{CAAML, JSON, Msgpack} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, sp, f, caaml.V606))
			got, err := Decode(&buf, f)
			require.NoError(t, err)
			assert.JSONEq(t, want, toJSON(t, got))
		})
	}
}

func TestMsgpackIsStable(t *testing.T) {
	sp := readFixture(t)
	a, err := MarshalMsgpack(sp)
	require.NoError(t, err)
	b, err := MarshalMsgpack(sp)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUnmarshalMsgpackValidates(t *testing.T) {
	_, err := UnmarshalMsgpack([]byte{0xc1})
	assert.Error(t, err)

	// A density of 1000 kg/m3 is rejected on decode.
	b, err := JSONToMsgpack([]byte(`{"density_profiles": [{"data": {
		"top_depth": [1.0], "bottom_depth": [0.5], "density": [1000]}}]}`))
	require.NoError(t, err)
	_, err = UnmarshalMsgpack(b)
	assert.Error(t, err)
}

func TestUnknownFormat(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, snowprofile.New(), Format("csv"), caaml.DefaultVersion))
	_, err := Decode(bytes.NewReader(nil), Format("csv"))
	assert.Error(t, err)
}
