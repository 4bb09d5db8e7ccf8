package alert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

// fakeProcesses matches watched names against a fixed process table.
type fakeProcesses struct {
	names []string
	err   error
	calls int
}

func (f *fakeProcesses) IsProcessRunning(ctx context.Context, name string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	for _, n := range f.names {
		if NameMatches(n, name) {
			return true, nil
		}
	}
	return false, nil
}

func collect(e *Evaluator, set types.ReadingSet) []types.AlertEvent {
	var out []types.AlertEvent
	for ev := range e.MetricAlerts(set) {
		out = append(out, ev)
	}
	return out
}

func TestRuleStrictInequality(t *testing.T) {
	tests := []struct {
		threshold, value float64
		want             bool
	}{
		{80, 80, false},
		{80, 79.99, false},
		{80, 80.01, true},
		{0.5, 0.5, false},
		{100, 100, false},
		{95, 99, true},
	}

	for _, tt := range tests {
		r := Rule{Metric: types.MetricCPU, Threshold: tt.threshold}
		if got := r.Breached(tt.value); got != tt.want {
			t.Errorf("Rule{%v}.Breached(%v) = %v, want %v", tt.threshold, tt.value, got, tt.want)
		}
	}
}

func TestMetricAlertsSingleBreach(t *testing.T) {
	e := NewEvaluator(types.ThresholdConfig{CPU: 80, RAM: 90, Disk: 95})

	events := collect(e, types.ReadingSet{CPU: 85, RAM: 50, Disk: 50})
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 alert, got %d", len(events))
	}

	ev := events[0]
	if ev.Metric != types.MetricCPU {
		t.Errorf("expected alert for %q, got %q", types.MetricCPU, ev.Metric)
	}
	if ev.Subject != "High CPU Usage Alert" {
		t.Errorf("unexpected subject %q", ev.Subject)
	}
	if !strings.Contains(ev.Body, "85") || !strings.Contains(ev.Body, "80") {
		t.Errorf("expected value and threshold in body, got %q", ev.Body)
	}
	if ev.Body != "CPU usage exceeded threshold: 85.00% (Threshold: 80%)" {
		t.Errorf("unexpected body %q", ev.Body)
	}
	if ev.ID == "" {
		t.Error("expected an event id")
	}
}

func TestMetricAlertsEqualityDoesNotFire(t *testing.T) {
	e := NewEvaluator(types.ThresholdConfig{CPU: 80, RAM: 90, Disk: 95})

	if events := collect(e, types.ReadingSet{CPU: 80, RAM: 90, Disk: 95}); len(events) != 0 {
		t.Errorf("expected no alerts at exact thresholds, got %d", len(events))
	}
}

func TestMetricAlertsAllBreach(t *testing.T) {
	e := NewEvaluator(types.ThresholdConfig{CPU: 10, RAM: 10, Disk: 10})

	events := collect(e, types.ReadingSet{CPU: 11, RAM: 12.345, Disk: 13})
	if len(events) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(events))
	}
	want := []types.MetricName{types.MetricCPU, types.MetricRAM, types.MetricDisk}
	for i, ev := range events {
		if ev.Metric != want[i] {
			t.Errorf("event %d: metric %q, want %q", i, ev.Metric, want[i])
		}
	}
	if !strings.Contains(events[1].Body, "12.35%") {
		t.Errorf("expected two-decimal value in %q", events[1].Body)
	}
	if events[2].Subject != "High Disk Usage Alert" {
		t.Errorf("unexpected subject %q", events[2].Subject)
	}
}

func TestMetricAlertsRepeatEveryEvaluation(t *testing.T) {
	e := NewEvaluator(types.ThresholdConfig{CPU: 50, RAM: 100, Disk: 100})
	set := types.ReadingSet{CPU: 60}

	for i := 0; i < 3; i++ {
		if n := len(collect(e, set)); n != 1 {
			t.Fatalf("evaluation %d: expected 1 alert, got %d", i, n)
		}
	}
}

func TestMetricAlertsStopsEarly(t *testing.T) {
	e := NewEvaluator(types.ThresholdConfig{CPU: 1, RAM: 1, Disk: 1})

	n := 0
	for range e.MetricAlerts(types.ReadingSet{CPU: 50, RAM: 50, Disk: 50}) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("expected iteration to stop after 1, got %d", n)
	}
}

func TestProcessAlerts(t *testing.T) {
	e := NewEvaluator(types.ThresholdConfig{})
	ctx := context.Background()

	running := &fakeProcesses{names: []string{"ordergateway.exe"}}
	for ev, err := range e.ProcessAlerts(ctx, []string{"OrderGateway"}, running) {
		t.Errorf("expected no alert, got %+v (err %v)", ev, err)
	}

	other := &fakeProcesses{names: []string{"other.exe"}}
	var events []types.AlertEvent
	for ev, err := range e.ProcessAlerts(ctx, []string{"OrderGateway"}, other) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		events = append(events, ev)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(events))
	}
	if events[0].Process != "OrderGateway" || events[0].Subject != "Process Down Alert: OrderGateway" {
		t.Errorf("unexpected event %+v", events[0])
	}
	if events[0].Body != "Critical trading process OrderGateway is not running!" {
		t.Errorf("unexpected body %q", events[0].Body)
	}
}

func TestProcessAlertsEmptyWatchlist(t *testing.T) {
	e := NewEvaluator(types.ThresholdConfig{})
	checker := &fakeProcesses{}

	for ev := range e.ProcessAlerts(context.Background(), nil, checker) {
		t.Errorf("unexpected event %+v", ev)
	}
	if checker.calls != 0 {
		t.Errorf("expected no lookups, got %d", checker.calls)
	}
}

func TestProcessAlertsLookupError(t *testing.T) {
	e := NewEvaluator(types.ThresholdConfig{})
	boom := errors.New("proc unreadable")
	checker := &fakeProcesses{err: boom}

	var errs int
	for _, err := range e.ProcessAlerts(context.Background(), []string{"a", "b"}, checker) {
		var acq *types.MetricAcquisitionError
		if !errors.As(err, &acq) || !errors.Is(err, boom) {
			t.Errorf("expected wrapped acquisition error, got %v", err)
		}
		errs++
	}
	if errs != 2 {
		t.Errorf("expected an error per watched name, got %d", errs)
	}
}

func TestNameMatches(t *testing.T) {
	if !NameMatches("OrderGateway.exe", "ordergateway") {
		t.Error("expected case-insensitive match")
	}
	if NameMatches("gateway", "OrderGateway") {
		t.Error("watched name must be contained in the running name")
	}
}

func TestEvaluatorRules(t *testing.T) {
	e := NewEvaluator(types.ThresholdConfig{CPU: 80, RAM: 90, Disk: 95})
	rules := e.Rules()
	want := []Rule{{types.MetricCPU, 80}, {types.MetricRAM, 90}, {types.MetricDisk, 95}}
	if len(rules) != len(want) {
		t.Fatalf("got %d rules, want %d", len(rules), len(want))
	}
	for i := range want {
		if rules[i] != want[i] {
			t.Errorf("rule %d = %+v, want %+v", i, rules[i], want[i])
		}
	}

	rules[0].Threshold = 1
	if e.Rules()[0].Threshold != 80 {
		t.Error("Rules must return a copy")
	}
}
