package types

import (
	"time"
)

// MetricName identifies one of the sampled host metrics.
type MetricName string

const (
	MetricCPU  MetricName = "CPU Usage"
	MetricRAM  MetricName = "RAM Usage"
	MetricDisk MetricName = "Disk Usage"
)

// UnitPercent is the unit of every reading.
const UnitPercent = "percent"

// Metrics returns the closed metric set in reporting order.
func Metrics() []MetricName {
	return []MetricName{MetricCPU, MetricRAM, MetricDisk}
}

// Valid reports whether m belongs to the closed metric set.
func (m MetricName) Valid() bool {
	switch m {
	case MetricCPU, MetricRAM, MetricDisk:
		return true
	}
	return false
}

// Reading is a single point-in-time sample.
type Reading struct {
	Metric MetricName `json:"metric"`
	Value  float64    `json:"value"`
	Unit   string     `json:"unit"`
}

// ReadingSet is the triple taken on one monitor tick.
type ReadingSet struct {
	Timestamp time.Time `json:"timestamp"`
	CPU       float64   `json:"cpu"`
	RAM       float64   `json:"ram"`
	Disk      float64   `json:"disk"`
}

// Readings returns the set as tagged readings in CPU, RAM, Disk order.
func (s ReadingSet) Readings() []Reading {
	return []Reading{
		{Metric: MetricCPU, Value: s.CPU, Unit: UnitPercent},
		{Metric: MetricRAM, Value: s.RAM, Unit: UnitPercent},
		{Metric: MetricDisk, Value: s.Disk, Unit: UnitPercent},
	}
}
