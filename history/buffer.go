// Package history accumulates per-metric readings between daily reports.
package history

import (
	"fmt"
	"sync"

	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

// Buffer holds the chronological readings of each metric since the last reset.
// The key set is fixed to types.Metrics() for the lifetime of the buffer.
type Buffer struct {
	mu     sync.Mutex
	series map[types.MetricName][]float64
	limit  int
}

// New creates an empty buffer. A positive limit caps every sequence,
// dropping the oldest values; zero keeps everything until the next reset.
func New(limit int) *Buffer {
	if limit < 0 {
		limit = 0
	}
	b := &Buffer{limit: limit}
	b.series = emptySeries()
	return b
}

// Record appends value to the sequence of metric.
func (b *Buffer) Record(metric types.MetricName, value float64) error {
	if !metric.Valid() {
		return fmt.Errorf("%w: %q", types.ErrUnknownMetric, metric)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	s := append(b.series[metric], value)
	if b.limit > 0 && len(s) > b.limit {
		s = s[len(s)-b.limit:]
	}
	b.series[metric] = s
	return nil
}

// Snapshot returns a copy of every sequence.
func (b *Buffer) Snapshot() map[types.MetricName][]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make(map[types.MetricName][]float64, len(b.series))
	for k, v := range b.series {
		c := make([]float64, len(v))
		copy(c, v)
		result[k] = c
	}
	return result
}

// Reset empties all three sequences.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.series = emptySeries()
}

// Drain returns the current contents and resets the buffer in one step,
// so no reading recorded between the two can be lost.
func (b *Buffer) Drain() map[types.MetricName][]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := b.series
	b.series = emptySeries()
	return result
}

// Len returns the number of readings held for metric.
func (b *Buffer) Len(metric types.MetricName) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.series[metric])
}

func emptySeries() map[types.MetricName][]float64 {
	m := make(map[types.MetricName][]float64, 3)
	for _, name := range types.Metrics() {
		m[name] = []float64{}
	}
	return m
}
