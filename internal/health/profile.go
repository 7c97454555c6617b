// Package health parses and validates the questionnaire a diet plan is built from.
package health

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"calorina/internal/shared"
)

// Gender used by the BMR formula.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ActivityLevel is the self-reported activity level of the user.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "veryActive"
)

var multipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

// Multiplier returns the TDEE multiplier for the level.
func (a ActivityLevel) Multiplier() (float64, bool) {
	m, ok := multipliers[a]
	return m, ok
}

// Accepted ranges for the numeric questionnaire answers.
const (
	MinAge, MaxAge       = 1, 120
	MinWeight, MaxWeight = 20, 400
	MinHeight, MaxHeight = 50, 250
)

// Profile is the questionnaire exactly as the user answered it.
type Profile struct {
	Gender        Gender        `json:"gender"`
	Age           string        `json:"age"`
	Weight        string        `json:"weight"`
	Height        string        `json:"height"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
	Preferences   string        `json:"preferences"`
	Allergies     string        `json:"allergies"`
}

// Metrics is a validated, numeric view of a Profile.
type Metrics struct {
	Gender        Gender
	Age           int
	WeightKg      float64
	HeightCm      float64
	ActivityLevel ActivityLevel
}

// ValidationError names the questionnaire field that could not be used.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, shared.ErrInvalidInput) true.
func (e *ValidationError) Is(target error) bool {
	return target == shared.ErrInvalidInput
}

// Parse validates p and converts its numeric answers.
func Parse(p Profile) (Metrics, error) {
	if p.Gender != Male && p.Gender != Female {
		return Metrics{}, &ValidationError{Field: "gender", Reason: fmt.Sprintf("must be %q or %q", Male, Female)}
	}

	age, err := parseNumber("age", p.Age, MinAge, MaxAge)
	if err != nil {
		return Metrics{}, err
	}
	if age != math.Trunc(age) {
		return Metrics{}, &ValidationError{Field: "age", Reason: "must be a whole number"}
	}

	weight, err := parseNumber("weight", p.Weight, MinWeight, MaxWeight)
	if err != nil {
		return Metrics{}, err
	}

	height, err := parseNumber("height", p.Height, MinHeight, MaxHeight)
	if err != nil {
		return Metrics{}, err
	}

	if _, ok := p.ActivityLevel.Multiplier(); !ok {
		return Metrics{}, &ValidationError{Field: "activityLevel", Reason: fmt.Sprintf("unknown level %q", p.ActivityLevel)}
	}

	return Metrics{
		Gender:        p.Gender,
		Age:           int(age),
		WeightKg:      weight,
		HeightCm:      height,
		ActivityLevel: p.ActivityLevel,
	}, nil
}

func parseNumber(field, raw string, min, max float64) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	if v < min || v > max {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("%g is outside %g-%g", v, min, max)}
	}
	return v, nil
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func (m Metrics) BMR() float64 {
	base := 10*m.WeightKg + 6.25*m.HeightCm - 5*float64(m.Age)
	if m.Gender == Male {
		return base + 5
	}
	return base - 161
}

// TDEE is the BMR scaled by the activity multiplier.
func (m Metrics) TDEE() float64 {
	mult, ok := m.ActivityLevel.Multiplier()
	if !ok {
		panic(fmt.Sprintf("health: unvalidated activity level %q", m.ActivityLevel))
	}
	return m.BMR() * mult
}
