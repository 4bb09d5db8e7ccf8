package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adarshmishra-tech/monitor-trading-infra/alert"
	"github.com/adarshmishra-tech/monitor-trading-infra/history"
	"github.com/adarshmishra-tech/monitor-trading-infra/logger"
	"github.com/adarshmishra-tech/monitor-trading-infra/notify"
	"github.com/adarshmishra-tech/monitor-trading-infra/schedule"
	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

// DefaultNotifyTimeout bounds a single notifier call.
const DefaultNotifyTimeout = 30 * time.Second

// Settings configures a Watchdog.
type Settings struct {
	Interval     time.Duration
	Thresholds   types.ThresholdConfig
	Processes    []string
	Recipients   []string
	DiskPath     string
	ReportTime   schedule.TimeOfDay
	HistoryLimit int

	// Optional; zero values select the defaults.
	PollInterval  time.Duration
	NotifyTimeout time.Duration
	Now           func() time.Time
}

// Watchdog owns the shared history buffer and runs the monitor and report
// loops against it.
type Watchdog struct {
	history *history.Buffer
	monitor *MonitorLoop
	report  *ReportLoop
	wg      sync.WaitGroup
}

// New wires a watchdog. The report schedule is anchored at construction time.
func New(s Settings, source MetricsSource, notifier notify.Notifier) (*Watchdog, error) {
	if s.Interval <= 0 {
		return nil, fmt.Errorf("monitor interval must be positive, got %v", s.Interval)
	}
	if s.DiskPath == "" {
		s.DiskPath = "/"
	}
	if s.PollInterval <= 0 {
		s.PollInterval = DefaultPollInterval
	}
	if s.NotifyTimeout <= 0 {
		s.NotifyTimeout = DefaultNotifyTimeout
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	buf := history.New(s.HistoryLimit)
	out := &dispatcher{
		notifier:   notifier,
		recipients: append([]string(nil), s.Recipients...),
		timeout:    s.NotifyTimeout,
	}

	return &Watchdog{
		history: buf,
		monitor: &MonitorLoop{
			source:    source,
			history:   buf,
			evaluator: alert.NewEvaluator(s.Thresholds),
			out:       out,
			watchlist: append([]string(nil), s.Processes...),
			diskPath:  s.DiskPath,
			interval:  s.Interval,
			now:       s.Now,
		},
		report: &ReportLoop{
			history:  buf,
			schedule: schedule.New(s.ReportTime, s.Now()),
			out:      out,
			poll:     s.PollInterval,
			now:      s.Now,
		},
	}, nil
}

// History returns the shared buffer.
func (w *Watchdog) History() *history.Buffer { return w.history }

// Monitor returns the sampling loop.
func (w *Watchdog) Monitor() *MonitorLoop { return w.monitor }

// Report returns the report loop.
func (w *Watchdog) Report() *ReportLoop { return w.report }

// NextReport returns when the next daily report is due.
func (w *Watchdog) NextReport() time.Time { return w.report.schedule.NextDue }

// Run starts both loops and blocks until ctx is cancelled and both returned.
func (w *Watchdog) Run(ctx context.Context) error {
	log := logger.WithComponent("watchdog")
	log.Info().Msg("watchdog starting")

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.monitor.Run(ctx)
	}()
	go func() {
		defer w.wg.Done()
		w.report.Run(ctx)
	}()

	w.wg.Wait()
	log.Info().Msg("watchdog stopped")
	return nil
}
