//go:build !opencl

package propagator

import (
	"github.com/Distortions81/ripple-tank/internal/potential"
)

// OpenCL is unavailable without the opencl build tag.
type OpenCL struct {
	*Damped
}

// NewOpenCL always fails in builds without the opencl tag.
func NewOpenCL(potential.Potential, int, int, int, int, ...Option) (*OpenCL, error) {
	return nil, ErrNoOpenCL
}

func (o *OpenCL) DeviceName() string { return "" }

func (o *OpenCL) Close() {}
