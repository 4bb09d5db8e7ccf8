// Package monitor runs the sampling loop and the daily report loop.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/adarshmishra-tech/monitor-trading-infra/alert"
	"github.com/adarshmishra-tech/monitor-trading-infra/history"
	"github.com/adarshmishra-tech/monitor-trading-infra/logger"
	"github.com/adarshmishra-tech/monitor-trading-infra/metrics"
	"github.com/adarshmishra-tech/monitor-trading-infra/notify"
	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

// MetricsSource produces point-in-time readings of the host.
type MetricsSource interface {
	SampleCPU(ctx context.Context) (float64, error)
	SampleRAM(ctx context.Context) (float64, error)
	SampleDisk(ctx context.Context, path string) (float64, error)
	alert.ProcessChecker
}

// MonitorLoop samples the host, feeds the history buffer and raises alerts.
type MonitorLoop struct {
	source    MetricsSource
	history   *history.Buffer
	evaluator *alert.Evaluator
	out       *dispatcher
	watchlist []string
	diskPath  string
	interval  time.Duration
	now       func() time.Time
}

// Run ticks immediately and then every interval after the previous tick
// finished, until ctx is cancelled. Tick errors never stop the loop.
func (m *MonitorLoop) Run(ctx context.Context) error {
	log := logger.WithComponent("monitor")
	log.Info().
		Dur("interval", m.interval).
		Strs("processes", m.watchlist).
		Str("disk_path", m.diskPath).
		Msg("monitor loop started")
	for _, r := range m.evaluator.Rules() {
		log.Debug().Str("metric", string(r.Metric)).Float64("threshold", r.Threshold).Msg("alert rule")
	}
	defer func() { log.Info().Msg("monitor loop stopped") }()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			m.Tick(ctx)
			timer.Reset(m.interval)
		}
	}
}

// Tick performs one sampling cycle. It returns the acquisition error when
// the cycle was skipped; delivery errors are logged only.
func (m *MonitorLoop) Tick(ctx context.Context) error {
	log := logger.WithComponent("monitor")

	set, err := m.sample(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error().Err(err).Bool("tick_skipped", true).Msg("Error in monitoring")
		metrics.TicksTotal.WithLabelValues("skipped").Inc()
		return err
	}
	metrics.TicksTotal.WithLabelValues("ok").Inc()

	for _, r := range set.Readings() {
		if err := m.history.Record(r.Metric, r.Value); err != nil {
			// closed metric set: only reachable through a programming error
			panic(err)
		}
		metrics.ResourceUsage.WithLabelValues(string(r.Metric)).Set(r.Value)
		metrics.HistoryLength.WithLabelValues(string(r.Metric)).Set(float64(m.history.Len(r.Metric)))
	}

	log.Debug().
		Float64("cpu", set.CPU).
		Float64("ram", set.RAM).
		Float64("disk", set.Disk).
		Msg("sample recorded")

	for ev := range m.evaluator.MetricAlerts(set) {
		metrics.AlertsTotal.WithLabelValues(ev.Kind()).Inc()
		log.Warn().
			Str("alert_id", ev.ID).
			Str("metric", string(ev.Metric)).
			Msg(ev.Subject)
		m.out.deliver(ctx, ev.Subject, ev.Body)
	}

	for ev, err := range m.evaluator.ProcessAlerts(ctx, m.watchlist, m.source) {
		if err != nil {
			log.Error().Err(err).Msg("process check failed")
			continue
		}
		metrics.AlertsTotal.WithLabelValues(ev.Kind()).Inc()
		log.Warn().
			Str("alert_id", ev.ID).
			Str("process", ev.Process).
			Msg(ev.Subject)
		m.out.deliver(ctx, ev.Subject, ev.Body)
	}

	return nil
}

// sample acquires all three readings or none.
func (m *MonitorLoop) sample(ctx context.Context) (types.ReadingSet, error) {
	start := time.Now()
	defer func() { metrics.SampleDuration.Observe(time.Since(start).Seconds()) }()

	set := types.ReadingSet{Timestamp: m.now()}
	var err error

	if set.CPU, err = m.source.SampleCPU(ctx); err != nil {
		return set, asAcquisition(types.MetricCPU, err)
	}
	if set.RAM, err = m.source.SampleRAM(ctx); err != nil {
		return set, asAcquisition(types.MetricRAM, err)
	}
	if set.Disk, err = m.source.SampleDisk(ctx, m.diskPath); err != nil {
		return set, asAcquisition(types.MetricDisk, err)
	}
	return set, nil
}

func asAcquisition(metric types.MetricName, err error) error {
	var acq *types.MetricAcquisitionError
	if errors.As(err, &acq) {
		return err
	}
	return &types.MetricAcquisitionError{Metric: string(metric), Err: err}
}

// dispatcher delivers messages to the configured recipients, bounding each
// call with a timeout. Failures are logged and counted, never propagated.
type dispatcher struct {
	notifier   notify.Notifier
	recipients []string
	timeout    time.Duration
}

func (d *dispatcher) deliver(ctx context.Context, subject, body string) error {
	log := logger.WithComponent("notifier")

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.notifier.Send(sendCtx, subject, body, d.recipients)
	metrics.DeliveryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
		log.Error().
			Err(err).
			Str("subject", subject).
			Msg("failed to send notification")
		return err
	}

	metrics.DeliveriesTotal.WithLabelValues("success").Inc()
	log.Info().Str("subject", subject).Msg("notification sent")
	return nil
}
