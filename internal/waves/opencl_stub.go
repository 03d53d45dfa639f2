//go:build !opencl

package waves

import "errors"

const accelerationBuilt = false

type openCLSolver struct{}

func newOpenCLSolver(rows, cols int, coef Coefficients) (*openCLSolver, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *openCLSolver) Step(f *Field, steps int) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *openCLSolver) Close() {}

func (s *openCLSolver) DeviceName() string { return "" }
