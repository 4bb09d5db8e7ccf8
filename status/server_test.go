package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adarshmishra-tech/monitor-trading-infra/history"
	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

func newTestServer() (*Server, *history.Buffer) {
	buf := history.New(0)
	return New(":0", buf, types.ThresholdConfig{CPU: 80, RAM: 90, Disk: 95}), buf
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHistory(t *testing.T) {
	s, buf := newTestServer()
	buf.Record(types.MetricCPU, 10)
	buf.Record(types.MetricCPU, 30)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got map[types.MetricName]MetricSummary
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	cpu := got[types.MetricCPU]
	if cpu.Samples != 2 || cpu.Average == nil || *cpu.Average != 20 || *cpu.Last != 30 {
		t.Errorf("unexpected cpu summary %+v", cpu)
	}
	if ram := got[types.MetricRAM]; ram.Samples != 0 || ram.Average != nil {
		t.Errorf("expected empty ram summary, got %+v", ram)
	}
}

func TestHistoryMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stats/history", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestThresholds(t *testing.T) {
	s, _ := newTestServer()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/thresholds", nil))

	var got types.ThresholdConfig
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.CPU != 80 || got.RAM != 90 || got.Disk != 95 {
		t.Errorf("unexpected thresholds %+v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
