//go:build !opencl

package propagator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOpenCLUnavailable(t *testing.T) {
	o, err := NewOpenCL(nil, 4, 4, 1, 1)
	assert.Nil(t, o)
	assert.ErrorIs(t, err, ErrNoOpenCL)
}
