package model

import (
	"math"
	"strconv"

	apperrors "smartproduct-backend/pkg/errors"
)

// Target temperature bounds, inclusive.
const (
	TemperatureMin = 50
	TemperatureMax = 110
)

// ValidateTargetTemperature checks the inclusive [50, 110] range.
func ValidateTargetTemperature(value float64) error {
	if value < TemperatureMin || value > TemperatureMax {
		return apperrors.NewValidation(apperrors.KindInvalidParameter,
			"target temperature must be between 50 and 110")
	}
	return nil
}

// NormalizeTemperature rounds to two decimal places and collapses values with
// a zero fractional part to an integer string: 70.00 -> "70", 70.10 -> "70.1".
// Normalizing an already-normalized value is a fixed point.
func NormalizeTemperature(value float64) string {
	rounded := math.Round(value*100) / 100
	if rounded == math.Trunc(rounded) {
		return strconv.FormatInt(int64(rounded), 10)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
