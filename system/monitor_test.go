package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

func inRange(t *testing.T, name string, v float64) {
	t.Helper()
	if v < 0 || v > 100 {
		t.Errorf("%s = %v, want within [0, 100]", name, v)
	}
}

func TestSourceSamples(t *testing.T) {
	s := NewSource(100 * time.Millisecond)
	ctx := context.Background()

	cpu, err := s.SampleCPU(ctx)
	if err != nil {
		t.Fatalf("SampleCPU returned error: %v", err)
	}
	inRange(t, "cpu", cpu)

	ram, err := s.SampleRAM(ctx)
	if err != nil {
		t.Fatalf("SampleRAM returned error: %v", err)
	}
	inRange(t, "ram", ram)

	disk, err := s.SampleDisk(ctx, os.TempDir())
	if err != nil {
		t.Fatalf("SampleDisk returned error: %v", err)
	}
	inRange(t, "disk", disk)
}

func TestSampleDiskMissingPath(t *testing.T) {
	s := NewSource(0)
	_, err := s.SampleDisk(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"))

	var acq *types.MetricAcquisitionError
	if !errors.As(err, &acq) {
		t.Fatalf("expected MetricAcquisitionError, got %v", err)
	}
	if acq.Metric != string(types.MetricDisk) {
		t.Errorf("expected disk metric in error, got %q", acq.Metric)
	}
}

func TestIsProcessRunning(t *testing.T) {
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		t.Skipf("cannot inspect own process: %v", err)
	}
	name, err := self.Name()
	if err != nil || name == "" {
		t.Skipf("cannot read own process name: %v", err)
	}

	s := NewSource(0)
	ctx := context.Background()

	running, err := s.IsProcessRunning(ctx, name)
	if err != nil {
		t.Fatalf("IsProcessRunning returned error: %v", err)
	}
	if !running {
		t.Errorf("expected own process %q to be found", name)
	}

	running, err = s.IsProcessRunning(ctx, "no-such-process-4f1c9a2e")
	if err != nil {
		t.Fatalf("IsProcessRunning returned error: %v", err)
	}
	if running {
		t.Error("expected unknown process to be reported missing")
	}
}

func TestClamp(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0: 0, 42.5: 42.5, 100: 100, 100.4: 100} {
		if got := clamp(in); got != want {
			t.Errorf("clamp(%v) = %v, want %v", in, got, want)
		}
	}
}
