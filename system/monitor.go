// Package system samples host resource usage and process liveness.
package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/adarshmishra-tech/monitor-trading-infra/alert"
	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

// DefaultCPUWindow is the measurement window of one CPU sample.
const DefaultCPUWindow = time.Second

// Source reads metrics from the local host.
type Source struct {
	cpuWindow time.Duration
}

// NewSource creates a host source. A non-positive window uses DefaultCPUWindow.
func NewSource(cpuWindow time.Duration) *Source {
	if cpuWindow <= 0 {
		cpuWindow = DefaultCPUWindow
	}
	return &Source{cpuWindow: cpuWindow}
}

// SampleCPU blocks for the CPU window and returns overall usage in percent.
func (s *Source) SampleCPU(ctx context.Context) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, s.cpuWindow, false)
	if err != nil {
		return 0, acquisitionError(types.MetricCPU, err)
	}
	if len(pcts) == 0 {
		return 0, acquisitionError(types.MetricCPU, errors.New("no cpu data"))
	}
	return clamp(pcts[0]), nil
}

// SampleRAM returns used virtual memory in percent.
func (s *Source) SampleRAM(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, acquisitionError(types.MetricRAM, err)
	}
	return clamp(vm.UsedPercent), nil
}

// SampleDisk returns used space of the filesystem holding path, in percent.
func (s *Source) SampleDisk(ctx context.Context, path string) (float64, error) {
	pct, err := diskUsage(ctx, path)
	if err != nil {
		return 0, acquisitionError(types.MetricDisk, fmt.Errorf("%s: %w", path, err))
	}
	return clamp(pct), nil
}

// IsProcessRunning reports whether any running process name contains name,
// ignoring case. Processes that exit during the scan are skipped.
func (s *Source) IsProcessRunning(ctx context.Context, name string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	for _, p := range procs {
		pname, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if alert.NameMatches(pname, name) {
			return true, nil
		}
	}
	return false, nil
}

func acquisitionError(metric types.MetricName, err error) error {
	return &types.MetricAcquisitionError{Metric: string(metric), Err: err}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
