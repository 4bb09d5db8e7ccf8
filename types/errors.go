package types

import (
	"errors"
	"fmt"
)

// ErrUnknownMetric is returned when a metric outside the closed set is recorded.
var ErrUnknownMetric = errors.New("unknown metric")

// MetricAcquisitionError reports a failed sample. The monitor skips the tick.
type MetricAcquisitionError struct {
	Metric string
	Err    error
}

func (e *MetricAcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s: %v", e.Metric, e.Err)
}

func (e *MetricAcquisitionError) Unwrap() error { return e.Err }

// DeliveryError reports a failed notification. Callers log and continue.
type DeliveryError struct {
	Subject string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %q: %v", e.Subject, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
