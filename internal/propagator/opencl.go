//go:build opencl

package propagator

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"github.com/Distortions81/ripple-tank/internal/potential"
)

const dampedKernelSource = `__kernel void damped_step(
    const int width,
    const int length,
    const float neighbor,
    const float diag,
    const float self_weight,
    const float memory,
    const float mult,
    __global const float* prior,
    __global const float* prior_prior,
    __global const float* blocked,
    __global float* current)
{
    int idx = get_global_id(0);
    if (idx >= width * length) {
        return;
    }
    int i = idx / length;
    int j = idx % length;
    if (i <= 0 || i >= width - 1 || j <= 0 || j >= length - 1) {
        return;
    }
    if (blocked[idx] != 0.0f) {
        current[idx] = 0.0f;
        return;
    }
    float orth = prior[idx - length] + prior[idx - 1] + prior[idx + 1] + prior[idx + length];
    float diag_sum = prior[idx - length - 1] + prior[idx - length + 1]
                   + prior[idx + length - 1] + prior[idx + length + 1];
    current[idx] = mult * (prior[idx] * self_weight - prior_prior[idx] * memory
                           + orth * neighbor + diag_sum * diag);
}`

// OpenCL is a Damped propagator whose stencil runs on an OpenCL device. Edge
// damping and generation rotation stay on the host.
type OpenCL struct {
	*Damped
	dev *clKernel
}

// NewOpenCL initialises the first GPU (or CPU) device found and returns a
// propagator using it. Call Close to release device resources.
func NewOpenCL(p potential.Potential, width, length, dampX, dampY int, opts ...Option) (*OpenCL, error) {
	dev, err := newCLKernel()
	if err != nil {
		return nil, err
	}
	d := NewDamped(p, width, length, dampX, dampY, opts...)
	d.kernel = dev
	slog.Info("OpenCL propagator enabled", "device", dev.deviceName)
	return &OpenCL{Damped: d, dev: dev}, nil
}

// DeviceName reports the selected OpenCL device.
func (o *OpenCL) DeviceName() string { return o.dev.deviceName }

// Close releases the device buffers and context.
func (o *OpenCL) Close() { o.dev.close() }

type clKernel struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel

	priorBuf      *cl.MemObject
	priorPriorBuf *cl.MemObject
	blockedBuf    *cl.MemObject
	currentBuf    *cl.MemObject

	width, length int
	blocked       []float32
	deviceName    string
}

func pickDevice() (*cl.Device, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(kind)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				return devices[0], nil
			}
		}
	}
	return nil, errors.New("no suitable OpenCL devices found")
}

func newCLKernel() (*clKernel, error) {
	device, err := pickDevice()
	if err != nil {
		return nil, err
	}
	k := &clKernel{deviceName: device.Name()}
	k.context, err = cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	k.queue, err = k.context.CreateCommandQueue(device, 0)
	if err != nil {
		k.close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	k.program, err = k.context.CreateProgramWithSource([]string{dampedKernelSource})
	if err != nil {
		k.close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := k.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		k.close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	k.kernel, err = k.program.CreateKernel("damped_step")
	if err != nil {
		k.close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	return k, nil
}

// ensureBuffers (re)allocates device memory when the padded size changes.
func (k *clKernel) ensureBuffers(width, length int) error {
	if k.currentBuf != nil && k.width == width && k.length == length {
		return nil
	}
	k.releaseBuffers()
	size := width * length
	byteSize := size * int(unsafe.Sizeof(float32(0)))
	var err error
	if k.priorBuf, err = k.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		return fmt.Errorf("allocating prior buffer: %w", err)
	}
	if k.priorPriorBuf, err = k.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		return fmt.Errorf("allocating prior-prior buffer: %w", err)
	}
	if k.blockedBuf, err = k.context.CreateEmptyBuffer(cl.MemReadOnly, byteSize); err != nil {
		return fmt.Errorf("allocating obstacle buffer: %w", err)
	}
	if k.currentBuf, err = k.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
		return fmt.Errorf("allocating current buffer: %w", err)
	}
	if err := k.kernel.SetArgs(
		int32(width),
		int32(length),
		neighbor32,
		diag32,
		self32,
		memory32,
		mult32,
		k.priorBuf,
		k.priorPriorBuf,
		k.blockedBuf,
		k.currentBuf,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	k.width, k.length = width, length
	k.blocked = make([]float32, size)
	return nil
}

// fillBlocked evaluates the potential over the padded lattice. It runs
// every step because composite potentials may change between steps.
func (k *clKernel) fillBlocked(d *Damped) {
	for i := 0; i < k.width; i++ {
		base := i * k.length
		for j := 0; j < k.length; j++ {
			if d.potential.At(i, j) != 0 {
				k.blocked[base+j] = 1
			} else {
				k.blocked[base+j] = 0
			}
		}
	}
}

func (k *clKernel) step(d *Damped) error {
	w, n := d.current.Width(), d.current.Length()
	if w < 3 || n < 3 {
		return nil
	}
	if err := k.ensureBuffers(w, n); err != nil {
		return err
	}
	k.fillBlocked(d)
	uploads := []struct {
		buf   *cl.MemObject
		data  []float32
		label string
	}{
		{k.priorBuf, d.prior.Values(), "prior"},
		{k.priorPriorBuf, d.priorPrior.Values(), "prior-prior"},
		{k.blockedBuf, k.blocked, "obstacle"},
		{k.currentBuf, d.current.Values(), "current"},
	}
	for _, u := range uploads {
		if _, err := k.queue.EnqueueWriteBufferFloat32(u.buf, false, 0, u.data, nil); err != nil {
			return fmt.Errorf("writing %s buffer: %w", u.label, err)
		}
	}
	if _, err := k.queue.EnqueueNDRangeKernel(k.kernel, nil, []int{w * n}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := k.queue.EnqueueReadBufferFloat32(k.currentBuf, true, 0, d.current.Values(), nil); err != nil {
		return fmt.Errorf("reading current buffer: %w", err)
	}
	return nil
}

func (k *clKernel) releaseBuffers() {
	for _, buf := range []**cl.MemObject{&k.priorBuf, &k.priorPriorBuf, &k.blockedBuf, &k.currentBuf} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
}

func (k *clKernel) close() {
	k.releaseBuffers()
	if k.kernel != nil {
		k.kernel.Release()
		k.kernel = nil
	}
	if k.program != nil {
		k.program.Release()
		k.program = nil
	}
	if k.queue != nil {
		k.queue.Release()
		k.queue = nil
	}
	if k.context != nil {
		k.context.Release()
		k.context = nil
	}
}
