package insurance

import (
	"math"

	"medicost/model"
)

// Domain limits for each profile field. These mirror the ranges the model
// was trained on; values outside them never reach the pipeline.
const (
	MinAge      = 18
	MaxAge      = 65
	MinBMI      = 15.0
	MaxBMI      = 55.0
	MinChildren = 0
	MaxChildren = 5
)

const (
	SexMale   = "male"
	SexFemale = "female"

	SmokerYes = "yes"
	SmokerNo  = "no"
)

// Regions lists the recognized geographical regions, spelled exactly as the
// training data spelled them.
var Regions = []string{"southeast", "southwest", "northeast", "northwest"}

// Profile describes one individual. Immutable once constructed; the
// collaborator fills it from user input and Validate guards the trust
// boundary in front of the model.
type Profile struct {
	Age      int     `json:"age"`
	Sex      string  `json:"sex"`
	BMI      float64 `json:"bmi"`
	Children int     `json:"children"`
	Smoker   string  `json:"smoker"`
	Region   string  `json:"region"`
}

// Validate re-checks every field's domain and reports the first violation.
// The underlying encoder reacts unpredictably to unseen categories, so
// unrecognized enum values are rejected here rather than at inference time.
func (p Profile) Validate() *PredictionError {
	if p.Age < MinAge {
		return NewInvalidProfileError("age", "below minimum")
	}
	if p.Age > MaxAge {
		return NewInvalidProfileError("age", "above maximum")
	}
	if p.Sex != SexMale && p.Sex != SexFemale {
		return NewInvalidProfileError("sex", "unrecognized value")
	}
	if math.IsNaN(p.BMI) {
		return NewInvalidProfileError("bmi", "not a number")
	}
	if p.BMI < MinBMI {
		return NewInvalidProfileError("bmi", "below minimum")
	}
	if p.BMI > MaxBMI {
		return NewInvalidProfileError("bmi", "above maximum")
	}
	if p.Children < MinChildren {
		return NewInvalidProfileError("children", "below minimum")
	}
	if p.Children > MaxChildren {
		return NewInvalidProfileError("children", "above maximum")
	}
	if p.Smoker != SmokerYes && p.Smoker != SmokerNo {
		return NewInvalidProfileError("smoker", "unrecognized value")
	}
	if !validRegion(p.Region) {
		return NewInvalidProfileError("region", "unrecognized value")
	}
	return nil
}

// FeatureRow shapes the profile into the single-row keyed record the trained
// pipeline expects. Key names and categorical spellings must match the
// training columns byte for byte.
func (p Profile) FeatureRow() model.Row {
	return model.Row{
		"age":      p.Age,
		"sex":      p.Sex,
		"bmi":      p.BMI,
		"children": p.Children,
		"smoker":   p.Smoker,
		"region":   p.Region,
	}
}

func validRegion(region string) bool {
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}
