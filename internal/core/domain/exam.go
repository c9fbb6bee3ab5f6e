package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDeviceModel is the stimulation device recorded when none is given.
const DefaultDeviceModel = "Beurer EM 49"

// Limb identifies the affected limb and side.
type Limb string

// Supported limbs.
const (
	LimbLegRight Limb = "leg-right"
	LimbLegLeft  Limb = "leg-left"
	LimbArmRight Limb = "arm-right"
	LimbArmLeft  Limb = "arm-left"
)

// IsValid returns true if the limb is recognised.
func (l Limb) IsValid() bool {
	switch l {
	case LimbLegRight, LimbLegLeft, LimbArmRight, LimbArmLeft:
		return true
	default:
		return false
	}
}

// IsLeg reports whether the limb is a leg.
func (l Limb) IsLeg() bool {
	return strings.HasPrefix(string(l), "leg")
}

// IsArm reports whether the limb is an arm.
func (l Limb) IsArm() bool {
	return strings.HasPrefix(string(l), "arm")
}

// Description returns a human-readable limb name.
func (l Limb) Description() string {
	switch l {
	case LimbLegRight:
		return "Right leg"
	case LimbLegLeft:
		return "Left leg"
	case LimbArmRight:
		return "Right arm"
	case LimbArmLeft:
		return "Left arm"
	default:
		return unknownDescription
	}
}

// Location identifies the amputation level.
type Location string

// Supported amputation levels.
const (
	LocationAboveKnee  Location = "above-knee"
	LocationBelowKnee  Location = "below-knee"
	LocationAboveElbow Location = "above-elbow"
	LocationBelowElbow Location = "below-elbow"
)

// IsValid returns true if the location is recognised.
func (l Location) IsValid() bool {
	switch l {
	case LocationAboveKnee, LocationBelowKnee, LocationAboveElbow, LocationBelowElbow:
		return true
	default:
		return false
	}
}

// Description returns a human-readable location name.
func (l Location) Description() string {
	switch l {
	case LocationAboveKnee:
		return "Above knee"
	case LocationBelowKnee:
		return "Below knee"
	case LocationAboveElbow:
		return "Above elbow"
	case LocationBelowElbow:
		return "Below elbow"
	default:
		return unknownDescription
	}
}

const unknownDescription = "Unknown"

// AllLimbs returns every supported limb.
func AllLimbs() []Limb {
	return []Limb{LimbLegRight, LimbLegLeft, LimbArmRight, LimbArmLeft}
}

// AllLocations returns every supported amputation level.
func AllLocations() []Location {
	return []Location{LocationAboveKnee, LocationBelowKnee, LocationAboveElbow, LocationBelowElbow}
}

// Exam is a mapping session for one patient and one limb model.
type Exam struct {
	ID            string    `json:"id"`
	PatientName   string    `json:"patientName"`
	PatientID     string    `json:"patientId"`
	Limb          Limb      `json:"limb"`
	Location      Location  `json:"location"`
	TherapistName string    `json:"therapistName"`
	DeviceModel   string    `json:"deviceModel"`
	DateTime      time.Time `json:"dateTime"`
	CreatedAt     time.Time `json:"createdAt"`
	LastEdited    time.Time `json:"lastEdited"`
}

// Validate checks the fields required to open an exam.
func (e Exam) Validate() error {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(e.PatientName) == "" {
		missing = append(missing, "patient name")
	}
	if strings.TrimSpace(e.PatientID) == "" {
		missing = append(missing, "patient id")
	}
	if e.Limb == "" {
		missing = append(missing, "limb")
	}
	if e.Location == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(e.TherapistName) == "" {
		missing = append(missing, "therapist name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if !e.Limb.IsValid() {
		return fmt.Errorf("%w: unknown limb %q", ErrInvalidInput, e.Limb)
	}
	if !e.Location.IsValid() {
		return fmt.Errorf("%w: unknown location %q", ErrInvalidInput, e.Location)
	}
	return nil
}

// RequiresPointReset reports whether changing e into next moves the mesh
// that point coordinates are defined on.
func (e Exam) RequiresPointReset(next Exam) bool {
	return e.Limb != next.Limb || e.Location != next.Location
}

// ModelFiles names the stump and full-limb mesh files for the exam.
// The stump falls back to the full model when no level-specific mesh exists.
func (e Exam) ModelFiles() (stump, full string) {
	switch {
	case e.Limb.IsLeg():
		full = "right-leg-full.obj"
		switch e.Location {
		case LocationBelowKnee:
			stump = "right-leg-below-knee.obj"
		case LocationAboveKnee:
			stump = "right-leg-above-knee.obj"
		}
	case e.Limb.IsArm():
		full = "right-arm-full.obj"
		switch e.Location {
		case LocationBelowElbow:
			stump = "right-arm-below-elbow.obj"
		case LocationAboveElbow:
			stump = "right-arm-above-elbow.obj"
		}
	}
	if stump == "" {
		stump = full
	}
	return stump, full
}
