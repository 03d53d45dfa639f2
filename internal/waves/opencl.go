//go:build opencl

package waves

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

const accelerationBuilt = true

type openCLSolver struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel

	currBuf *cl.MemObject
	prevBuf *cl.MemObject
	nextBuf *cl.MemObject

	boundCurr *cl.MemObject
	boundPrev *cl.MemObject
	boundNext *cl.MemObject

	rows, cols int
	deviceName string
}

const waveKernelSource = `__kernel void wave_step(
    const int rows,
    const int cols,
    const float k1,
    const float k2,
    const float k3,
    __global const float* curr,
    __global const float* prev,
    __global float* next_buffer)
{
    int idx = get_global_id(0);
    if (idx >= rows * cols) {
        return;
    }
    int i = idx / cols;
    int j = idx % cols;
    if (i == 0 || j == 0 || i == rows - 1 || j == cols - 1) {
        next_buffer[idx] = 0.0f;
        return;
    }
    float around = curr[idx - cols] + curr[idx + cols] + curr[idx - 1] + curr[idx + 1];
    next_buffer[idx] = k1 * prev[idx] + k2 * curr[idx] + k3 * around;
}`

// pickDevice prefers the first GPU of any platform and falls back to a CPU device.
func pickDevice(platforms []*cl.Platform) *cl.Device {
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, err := p.GetDevices(kind)
			if err != nil && err != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				return devices[0]
			}
		}
	}
	return nil
}

func newOpenCLSolver(rows, cols int, coef Coefficients) (*openCLSolver, error) {
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
	device := pickDevice(platforms)
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &openCLSolver{rows: rows, cols: cols, deviceName: device.Name()}
	if s.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	if s.queue, err = s.context.CreateCommandQueue(device, 0); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if s.program, err = s.context.CreateProgramWithSource([]string{waveKernelSource}); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if s.kernel, err = s.program.CreateKernel("wave_step"); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}

	// The layers rotate roles every step, so all three are read-write.
	byteSize := rows * cols * int(unsafe.Sizeof(float32(0)))
	for _, b := range []struct {
		dst   **cl.MemObject
		label string
	}{
		{&s.currBuf, "current"},
		{&s.prevBuf, "previous"},
		{&s.nextBuf, "next"},
	} {
		if *b.dst, err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
			s.Close()
			return nil, fmt.Errorf("allocating %s buffer: %w", b.label, err)
		}
	}

	if err := s.kernel.SetArgs(
		int32(rows),
		int32(cols),
		coef.K1,
		coef.K2,
		coef.K3,
		s.currBuf,
		s.prevBuf,
		s.nextBuf,
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting kernel arguments: %w", err)
	}
	s.boundCurr, s.boundPrev, s.boundNext = s.currBuf, s.prevBuf, s.nextBuf
	return s, nil
}

func (s *openCLSolver) bindDynamicBuffers() error {
	if s.boundCurr != s.currBuf {
		if err := s.kernel.SetArgBuffer(5, s.currBuf); err != nil {
			return err
		}
		s.boundCurr = s.currBuf
	}
	if s.boundPrev != s.prevBuf {
		if err := s.kernel.SetArgBuffer(6, s.prevBuf); err != nil {
			return err
		}
		s.boundPrev = s.prevBuf
	}
	if s.boundNext != s.nextBuf {
		if err := s.kernel.SetArgBuffer(7, s.nextBuf); err != nil {
			return err
		}
		s.boundNext = s.nextBuf
	}
	return nil
}

// Step runs steps ticks on the device and reads curr and prev back into the
// field. Host layers are uploaded first when Disturb touched them.
func (s *openCLSolver) Step(f *Field, steps int) error {
	if steps <= 0 {
		return nil
	}
	size := s.rows * s.cols
	if len(f.curr) != size || len(f.prev) != size {
		return fmt.Errorf("unexpected field buffer size %d, want %d", len(f.curr), size)
	}
	if f.hostDirty {
		if _, err := s.queue.EnqueueWriteBufferFloat32(s.currBuf, false, 0, f.curr, nil); err != nil {
			return fmt.Errorf("writing current buffer: %w", err)
		}
		if _, err := s.queue.EnqueueWriteBufferFloat32(s.prevBuf, false, 0, f.prev, nil); err != nil {
			return fmt.Errorf("writing previous buffer: %w", err)
		}
		f.hostDirty = false
	}
	global := []int{size}
	for step := 0; step < steps; step++ {
		if err := s.bindDynamicBuffers(); err != nil {
			return fmt.Errorf("binding buffers: %w", err)
		}
		if _, err := s.queue.EnqueueNDRangeKernel(s.kernel, nil, global, nil, nil); err != nil {
			return fmt.Errorf("enqueueing kernel: %w", err)
		}
		s.prevBuf, s.currBuf, s.nextBuf = s.currBuf, s.nextBuf, s.prevBuf
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.currBuf, true, 0, f.curr, nil); err != nil {
		return fmt.Errorf("reading current buffer: %w", err)
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.prevBuf, true, 0, f.prev, nil); err != nil {
		return fmt.Errorf("reading previous buffer: %w", err)
	}
	return nil
}

func (s *openCLSolver) Close() {
	for _, buf := range []**cl.MemObject{&s.nextBuf, &s.prevBuf, &s.currBuf} {
		if *buf != nil {
			(*buf).Release()
			*buf = nil
		}
	}
	if s.kernel != nil {
		s.kernel.Release()
		s.kernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}

func (s *openCLSolver) DeviceName() string {
	return s.deviceName
}
