package openai

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroTemperatureIsSent(t *testing.T) {
	assert.Equal(t, float32(math.SmallestNonzeroFloat32), temperature(0))
	assert.NotZero(t, temperature(0))
	assert.Equal(t, float32(0.1), temperature(0.1))
}
