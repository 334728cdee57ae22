package snowprofile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chrissnell/snowprofile/pkg/table"
)

// ToJSON encodes a whole observation. Profile tables are written under a
// "data" key as objects of columns.
func ToJSON(s *SnowProfile) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// FromJSON decodes an observation written by ToJSON and validates it.
func FromJSON(data []byte) (*SnowProfile, error) {
	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

var errMissingData = errors.New("profile has no data")

// withData encodes the exported fields of v and adds the table under "data".
func withData(v any, data *table.Table) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return b, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	if fields["data"], err = data.MarshalJSON(); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// decodeProfile decodes the exported fields into v, then the "data" table
// through set and finally runs validate on the metadata.
func decodeProfile(b []byte, v any, kind table.Kind, set func(table.Frame) error, validate func() error) error {
	if err := json.Unmarshal(b, v); err != nil {
		return err
	}
	var raw struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return errMissingData
	}
	frame, err := table.DecodeFrame(raw.Data, kind)
	if err != nil {
		return err
	}
	if err := set(frame); err != nil {
		return fmt.Errorf("profile data: %w", err)
	}
	if validate != nil {
		return validate()
	}
	return nil
}

func (p *Stratigraphy) MarshalJSON() ([]byte, error) {
	type plain Stratigraphy
	return withData((*plain)(p), p.data)
}

func (p *Stratigraphy) UnmarshalJSON(b []byte) error {
	type plain Stratigraphy
	return decodeProfile(b, (*plain)(p), table.Layer, p.SetData, p.Validate)
}

func (p *TemperatureProfile) MarshalJSON() ([]byte, error) {
	type plain TemperatureProfile
	return withData((*plain)(p), p.data)
}

func (p *TemperatureProfile) UnmarshalJSON(b []byte) error {
	type plain TemperatureProfile
	return decodeProfile(b, (*plain)(p), table.Point, p.SetData, p.Validate)
}

func (p *DensityProfile) MarshalJSON() ([]byte, error) {
	type plain DensityProfile
	return withData((*plain)(p), p.data)
}

func (p *DensityProfile) UnmarshalJSON(b []byte) error {
	type plain DensityProfile
	return decodeProfile(b, (*plain)(p), table.Layer, p.SetData, p.Validate)
}

func (p *LWCProfile) MarshalJSON() ([]byte, error) {
	type plain LWCProfile
	return withData((*plain)(p), p.data)
}

func (p *LWCProfile) UnmarshalJSON(b []byte) error {
	type plain LWCProfile
	return decodeProfile(b, (*plain)(p), table.Layer, p.SetData, p.Validate)
}

func (p *SSAProfile) MarshalJSON() ([]byte, error) {
	type plain SSAProfile
	return withData((*plain)(p), p.data)
}

// UnmarshalJSON accepts both layer and point tables.
func (p *SSAProfile) UnmarshalJSON(b []byte) error {
	type plain SSAProfile
	return decodeProfile(b, (*plain)(p), table.Layer, p.SetData, p.Validate)
}

func (p *HardnessProfile) MarshalJSON() ([]byte, error) {
	type plain HardnessProfile
	return withData((*plain)(p), p.data)
}

func (p *HardnessProfile) UnmarshalJSON(b []byte) error {
	type plain HardnessProfile
	return decodeProfile(b, (*plain)(p), table.Layer, p.SetData, p.Validate)
}

func (p *StrengthProfile) MarshalJSON() ([]byte, error) {
	type plain StrengthProfile
	return withData((*plain)(p), p.data)
}

func (p *StrengthProfile) UnmarshalJSON(b []byte) error {
	type plain StrengthProfile
	return decodeProfile(b, (*plain)(p), table.Layer, p.SetData, p.Validate)
}

func (p *ImpurityProfile) MarshalJSON() ([]byte, error) {
	type plain ImpurityProfile
	return withData((*plain)(p), p.data)
}

func (p *ImpurityProfile) UnmarshalJSON(b []byte) error {
	type plain ImpurityProfile
	return decodeProfile(b, (*plain)(p), table.Layer, p.SetData, p.Validate)
}

func (p *ScalarProfile) MarshalJSON() ([]byte, error) {
	type plain ScalarProfile
	return withData((*plain)(p), p.data)
}

func (p *ScalarProfile) UnmarshalJSON(b []byte) error {
	type plain ScalarProfile
	return decodeProfile(b, (*plain)(p), table.Layer, p.SetData, p.Validate)
}

func (p *VectorialProfile) MarshalJSON() ([]byte, error) {
	type plain VectorialProfile
	return withData((*plain)(p), p.data)
}

func (p *VectorialProfile) UnmarshalJSON(b []byte) error {
	type plain VectorialProfile
	return decodeProfile(b, (*plain)(p), table.Layer, p.SetData, p.Validate)
}

func (s *SpectralAlbedo) MarshalJSON() ([]byte, error) {
	type plain SpectralAlbedo
	return withData((*plain)(s), s.data)
}

func (s *SpectralAlbedo) UnmarshalJSON(b []byte) error {
	type plain SpectralAlbedo
	return decodeProfile(b, (*plain)(s), table.Spectral, s.SetData, nil)
}
