package waves

// EnableOpenCL moves stepping onto an OpenCL device. Normals are still
// computed on the host after each batch. It fails when the binary was built
// without the opencl tag or no device is usable; the CPU path stays active.
func (f *Field) EnableOpenCL() error {
	if f.gpu != nil {
		return nil
	}
	s, err := newOpenCLSolver(f.rows, f.cols, f.coef)
	if err != nil {
		return err
	}
	f.gpu = s
	f.hostDirty = true
	logger().Info("OpenCL wave solver enabled", "device", s.DeviceName())
	return nil
}

// Accelerated reports whether steps run on an OpenCL device.
func (f *Field) Accelerated() bool { return f.gpu != nil }
