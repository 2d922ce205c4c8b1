package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivationApply(t *testing.T) {
	assert.Equal(t, float32(-3), ActivationNone.Apply(-3))
	assert.Equal(t, float32(0), ActivationRelu.Apply(-3))
	assert.Equal(t, float32(3), ActivationRelu.Apply(3))
	assert.Equal(t, float32(-1), ActivationRelu1.Apply(-3))
	assert.Equal(t, float32(1), ActivationRelu1.Apply(3))
	assert.Equal(t, float32(6), ActivationRelu6.Apply(9))
}

func TestActivationString(t *testing.T) {
	assert.Equal(t, "none", ActivationNone.String())
	assert.Equal(t, "relu6", ActivationRelu6.String())
	assert.Equal(t, "activation(9)", Activation(9).String())
}
