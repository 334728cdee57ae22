package snowprofile

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// OriginCAAML6 tags additional data captured from a CAAML v6 customData
// element.
const OriginCAAML6 = "caamlxml6"

// AdditionalData carries content the model does not understand so that it
// can be written back untouched. Data is an XML fragment when Origin is
// OriginCAAML6.
type AdditionalData struct {
	Data   string `json:"data"`
	Origin string `json:"origin,omitempty"`
}

// Empty reports whether there is nothing to carry.
func (a *AdditionalData) Empty() bool {
	return a == nil || strings.TrimSpace(a.Data) == ""
}

// ValidationError reports a field of an entity outside its allowed domain.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Timestamp returns a pointer to t, forced to UTC when it carries no zone.
func Timestamp(t time.Time) *time.Time {
	t = ForceUTC(t)
	return &t
}

// ForceUTC assumes UTC for a timestamp without a zone.
func ForceUTC(t time.Time) time.Time {
	if t.Location() == time.Local {
		return t.UTC()
	}
	return t
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

func checkID(field, id string) error {
	if id != "" && !idPattern.MatchString(id) {
		return invalid(field, "%q must only contain letters, digits and dashes", id)
	}
	return nil
}

func checkEnum(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return invalid(field, "%q is not one of %s", value, strings.Join(allowed, ", "))
}

func checkRange(field string, v *float64, min, max float64) error {
	if v == nil {
		return nil
	}
	if *v < min || *v > max {
		return invalid(field, "%g is outside [%g, %g]", *v, min, max)
	}
	return nil
}

func checkNonNegative(field string, v *float64) error {
	if v != nil && *v < 0 {
		return invalid(field, "%g is negative", *v)
	}
	return nil
}

func checkPositive(field string, v *float64) error {
	if v != nil && *v <= 0 {
		return invalid(field, "%g must be strictly positive", *v)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Period is a time interval. Either bound may be unknown.
type Period struct {
	Begin *time.Time `json:"begin,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Complete reports whether both bounds are known.
func (p Period) Complete() bool {
	return p.Begin != nil && p.End != nil
}

func (p Period) validate(field string) error {
	if p.Complete() && p.End.Before(*p.Begin) {
		return invalid(field, "ends before it begins")
	}
	return nil
}

// ProfileMeta is the metadata shared by every profile kind.
type ProfileMeta struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name,omitempty"`
	RelatedProfiles []string `json:"related_profiles,omitempty"`
	Comment         string   `json:"comment,omitempty"`

	RecordTime   *time.Time `json:"record_time,omitempty"`
	RecordPeriod Period     `json:"record_period"`

	// ProfileDepth and ProfileSWE override the document-level values when the
	// profile was observed at a slightly different place (m, kg/m2).
	ProfileDepth *float64 `json:"profile_depth,omitempty"`
	ProfileSWE   *float64 `json:"profile_swe,omitempty"`

	AdditionalData *AdditionalData `json:"additional_data,omitempty"`
}

// Meta returns the profile metadata. It lets every profile kind satisfy
// Profile through embedding.
func (m *ProfileMeta) Meta() *ProfileMeta { return m }

func (m *ProfileMeta) validate() error {
	for _, rel := range m.RelatedProfiles {
		if err := checkID("related profile", rel); err != nil {
			return err
		}
	}
	return firstError(
		checkID("profile id", m.ID),
		m.RecordPeriod.validate("record period"),
		checkNonNegative("profile depth", m.ProfileDepth),
		checkNonNegative("profile SWE", m.ProfileSWE),
	)
}

// MeasurementMeta is the measurement metadata of every profile kind except
// stratigraphy.
type MeasurementMeta struct {
	QualityOfMeasurement     string   `json:"quality_of_measurement,omitempty"`
	UncertaintyOfMeasurement *float64 `json:"uncertainty_of_measurement,omitempty"`
	ProfileNr                *int     `json:"profile_nr,omitempty"`
}

// Measurement returns the measurement metadata.
func (m *MeasurementMeta) Measurement() *MeasurementMeta { return m }

func (m *MeasurementMeta) validate() error {
	if m.ProfileNr != nil && *m.ProfileNr < 0 {
		return invalid("profile number", "%d is negative", *m.ProfileNr)
	}
	return firstError(
		checkEnum("quality of measurement", m.QualityOfMeasurement, QualityFlags),
		checkPositive("uncertainty of measurement", m.UncertaintyOfMeasurement),
	)
}
