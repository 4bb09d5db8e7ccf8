package types

import (
	"time"
)

// ThresholdConfig holds the alert limits, in percent.
type ThresholdConfig struct {
	CPU  float64 `json:"cpu" yaml:"cpu"`
	RAM  float64 `json:"ram" yaml:"ram"`
	Disk float64 `json:"disk" yaml:"disk"`
}

// For returns the threshold configured for metric.
func (t ThresholdConfig) For(metric MetricName) float64 {
	switch metric {
	case MetricCPU:
		return t.CPU
	case MetricRAM:
		return t.RAM
	case MetricDisk:
		return t.Disk
	}
	return 0
}

// AlertEvent is a notification produced by the evaluator and consumed
// immediately by a notifier.
type AlertEvent struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Metric    MetricName `json:"metric,omitempty"`
	Process   string     `json:"process,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Kind classifies the event for metrics labels.
func (e AlertEvent) Kind() string {
	switch {
	case e.Process != "":
		return "process"
	case e.Metric != "":
		return string(e.Metric)
	}
	return "report"
}
