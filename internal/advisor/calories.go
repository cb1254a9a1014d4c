// Package advisor derives the caloric needs and mood annotations attached to
// a generated plan.
package advisor

import (
	"math"
	"strings"
)

// Activity levels accepted by Calories.
const (
	Sedentary = "Sedentary"
	Light     = "Light"
	Moderate  = "Moderate"
	Active    = "Active"
)

var activityMultipliers = map[string]float64{
	Sedentary: 1.2,
	Light:     1.375,
	Moderate:  1.55,
	Active:    1.725,
}

// Profile is the body data used for the daily calorie estimate.
type Profile struct {
	Age      int     `json:"age" validate:"required,gte=18,lte=80"`
	Gender   string  `json:"gender" validate:"required,oneof=Male Female"`
	WeightKg float64 `json:"weight_kg" validate:"required,gte=40,lte=150"`
	HeightCm float64 `json:"height_cm" validate:"required,gte=140,lte=210"`
	Activity string  `json:"activity" validate:"required,oneof=Sedentary Light Moderate Active"`
}

// Calories estimates daily caloric needs with the Harris-Benedict equations
// scaled by activity level. Unknown activity levels count as sedentary.
func Calories(p Profile) float64 {
	w, h, a := p.WeightKg, p.HeightCm, float64(p.Age)

	var bmr float64
	if strings.EqualFold(p.Gender, "Male") {
		bmr = 88.36 + 13.4*w + 4.8*h - 5.7*a
	} else {
		bmr = 447.6 + 9.2*w + 3.1*h - 4.3*a
	}

	multiplier, ok := activityMultipliers[p.Activity]
	if !ok {
		multiplier = activityMultipliers[Sedentary]
	}
	return math.Round(bmr*multiplier*100) / 100
}
