package model

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTemperature(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"integer stays integer", 70, "70"},
		{"zero fraction collapses", 70.00, "70"},
		{"trailing zero dropped", 70.10, "70.1"},
		{"two decimals kept", 70.55, "70.55"},
		{"rounds to two decimals", 70.555, "70.56"},
		{"rounds up to integer", 69.999, "70"},
		{"half step", 70.5, "70.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTemperature(tt.value))
		})
	}
}

func TestNormalizeTemperatureIdempotent(t *testing.T) {
	// Normalizing an already-normalized value must be a fixed point.
	for _, v := range []float64{70, 70.1, 70.55, 50, 110} {
		first := NormalizeTemperature(v)
		parsed, err := strconv.ParseFloat(first, 64)
		assert.NoError(t, err)
		assert.Equal(t, first, NormalizeTemperature(parsed))
	}
}

func TestValidateTargetTemperature(t *testing.T) {
	assert.NoError(t, ValidateTargetTemperature(50))
	assert.NoError(t, ValidateTargetTemperature(110))
	assert.NoError(t, ValidateTargetTemperature(72.5))
	assert.Error(t, ValidateTargetTemperature(49.99))
	assert.Error(t, ValidateTargetTemperature(110.01))
}
