package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adarshmishra-tech/monitor-trading-infra/history"
	"github.com/adarshmishra-tech/monitor-trading-infra/logger"
	"github.com/adarshmishra-tech/monitor-trading-infra/metrics"
	"github.com/adarshmishra-tech/monitor-trading-infra/schedule"
	"github.com/adarshmishra-tech/monitor-trading-infra/types"
)

// ReportSubject is the subject of the daily report.
const ReportSubject = "Daily Trading Infrastructure Report"

// DefaultPollInterval is how often the report loop checks the schedule.
const DefaultPollInterval = 60 * time.Second

// ReportLoop sends the daily aggregate report.
type ReportLoop struct {
	history  *history.Buffer
	schedule *schedule.Schedule
	out      *dispatcher
	poll     time.Duration
	now      func() time.Time
}

// Run checks the schedule immediately and then every poll interval until
// ctx is cancelled.
func (r *ReportLoop) Run(ctx context.Context) error {
	log := logger.WithComponent("report")
	log.Info().
		Str("time_of_day", r.schedule.TimeOfDay.String()).
		Time("next_due", r.schedule.NextDue).
		Msg("report loop started")
	defer func() { log.Info().Msg("report loop stopped") }()

	metrics.NextReportTimestamp.Set(float64(r.schedule.NextDue.Unix()))

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	r.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}

// Check sends the report if it is due and reports whether it did. The buffer
// is drained and the schedule advanced even when delivery fails.
func (r *ReportLoop) Check(ctx context.Context) bool {
	now := r.now()
	if !r.schedule.IsDue(now) {
		return false
	}

	log := logger.WithComponent("report")

	samples := r.history.Drain()
	for _, m := range types.Metrics() {
		metrics.HistoryLength.WithLabelValues(string(m)).Set(0)
	}

	body := BuildReport(now, samples)
	if err := r.out.deliver(ctx, ReportSubject, body); err != nil {
		metrics.ReportsTotal.WithLabelValues("failed").Inc()
	} else {
		metrics.ReportsTotal.WithLabelValues("sent").Inc()
		log.Info().Msg("Daily report sent")
	}

	r.schedule.Advance()
	metrics.NextReportTimestamp.Set(float64(r.schedule.NextDue.Unix()))

	if r.schedule.IsDue(now) {
		log.Warn().Time("next_due", r.schedule.NextDue).Msg("report schedule is behind the wall clock")
	} else {
		log.Info().Time("next_due", r.schedule.NextDue).Msg("report schedule advanced")
	}
	return true
}

// Average is the mean of one metric over a report period.
type Average struct {
	Metric  types.MetricName
	Value   float64
	Samples int
}

// Averages returns the mean of every non-empty series in CPU, RAM, Disk order.
// Metrics without samples are omitted.
func Averages(samples map[types.MetricName][]float64) []Average {
	var out []Average
	for _, m := range types.Metrics() {
		values := samples[m]
		if len(values) == 0 {
			continue
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		out = append(out, Average{Metric: m, Value: sum / float64(len(values)), Samples: len(values)})
	}
	return out
}

// BuildReport renders the report body for the period ending at date.
func BuildReport(date time.Time, samples map[types.MetricName][]float64) string {
	var b strings.Builder
	b.WriteString(ReportSubject)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Date: %s\n\n", date.Format("2006-01-02"))

	for _, avg := range Averages(samples) {
		fmt.Fprintf(&b, "%s: Average = %.2f%%\n", avg.Metric, avg.Value)
	}
	return b.String()
}
