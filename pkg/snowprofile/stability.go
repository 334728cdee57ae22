package snowprofile

import (
	"fmt"
	"math"
)

// StabilityTestType identifies a snowpack stability test.
type StabilityTestType string

const (
	RutschblockTest    StabilityTestType = "RB"
	CompressionTest    StabilityTestType = "CT"
	ExtendedColumnTest StabilityTestType = "ECT"
	PropagationSawTest StabilityTestType = "PST"
	ShearFrameTest     StabilityTestType = "ShearFrame"
)

// scoreRange returns the inclusive bounds of a result score: the
// rutschblock step, the number of taps for CT and ECT, the cut length ratio
// in % for PST and the shear strength (N) for shear frame tests.
func (t StabilityTestType) scoreRange() (float64, float64, error) {
	switch t {
	case RutschblockTest:
		return 1, 7, nil
	case CompressionTest, ExtendedColumnTest:
		return 0, 30, nil
	case PropagationSawTest:
		return 0, 100, nil
	case ShearFrameTest:
		return 0, math.Inf(1), nil
	}
	return 0, 0, fmt.Errorf("unknown stability test %q", string(t))
}

// StabilityResult is one failure observed during a test.
type StabilityResult struct {
	// Height of the failure layer above the ground (m).
	Height            *float64 `json:"height,omitempty"`
	Score             float64  `json:"score"`
	FractureCharacter string   `json:"fracture_character,omitempty"`
	// Propagation is set for ECT and PST results.
	Propagation *bool  `json:"propagation,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// StabilityTest is one stability test and its ordered results.
type StabilityTest struct {
	ID             string            `json:"id,omitempty"`
	Name           string            `json:"name,omitempty"`
	Type           StabilityTestType `json:"type"`
	Comment        string            `json:"comment,omitempty"`
	Results        []StabilityResult `json:"results,omitempty"`
	AdditionalData *AdditionalData   `json:"additional_data,omitempty"`
}

func (s *StabilityTest) Validate() error {
	lo, hi, err := s.Type.scoreRange()
	if err != nil {
		return invalid("stability test type", "%v", err)
	}
	if err := checkID("stability test id", s.ID); err != nil {
		return err
	}
	for i, r := range s.Results {
		if r.Score < lo || r.Score > hi {
			return invalid(fmt.Sprintf("%s result %d", s.Type, i), "score %g is outside [%g, %g]", r.Score, lo, hi)
		}
		if err := checkEnum("fracture character", r.FractureCharacter, FractureCharacters); err != nil {
			return err
		}
		if err := checkNonNegative("failure height", r.Height); err != nil {
			return err
		}
	}
	return nil
}
