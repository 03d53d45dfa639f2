package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
)

// profiler owns the optional CPU and heap profiles of one run.
type profiler struct {
	log     *slog.Logger
	cpu     *os.File
	cpuPath string
	memPath string
}

// startProfiling starts a CPU profile when cpuPath is set and remembers
// memPath for a heap profile written by stop. Empty paths disable either.
func startProfiling(log *slog.Logger, cpuPath, memPath string) (*profiler, error) {
	p := &profiler{log: log, cpuPath: cpuPath, memPath: memPath}
	if cpuPath == "" {
		return p, nil
	}
	f, err := os.Create(cpuPath)
	if err != nil {
		return nil, fmt.Errorf("creating CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("starting CPU profile: %w", err)
	}
	p.cpu = f
	return p, nil
}

// stop finishes the CPU profile and writes the heap profile. Later calls do
// nothing.
func (p *profiler) stop() error {
	var errs []error
	if p.cpu != nil {
		pprof.StopCPUProfile()
		errs = append(errs, p.cpu.Close())
		p.log.Info("CPU profile written", "path", p.cpuPath)
		p.cpu = nil
	}
	if p.memPath != "" {
		errs = append(errs, p.writeHeap())
		p.memPath = ""
	}
	return errors.Join(errs...)
}

func (p *profiler) writeHeap() error {
	f, err := os.Create(p.memPath)
	if err != nil {
		return fmt.Errorf("creating heap profile: %w", err)
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("writing heap profile: %w", err)
	}
	p.log.Info("heap profile written", "path", p.memPath)
	return nil
}
