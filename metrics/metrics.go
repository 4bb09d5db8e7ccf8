package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sampling
	ResourceUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trading_monitor_resource_usage_percent",
			Help: "Most recent sampled usage per metric",
		},
		[]string{"metric"},
	)

	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_monitor_ticks_total",
			Help: "Monitor ticks by outcome",
		},
		[]string{"status"}, // status: ok, skipped
	)

	SampleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trading_monitor_sample_duration_seconds",
			Help:    "Time taken to acquire one reading set",
			Buckets: []float64{.5, 1, 1.5, 2, 3, 5, 10},
		},
	)

	HistoryLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trading_monitor_history_samples",
			Help: "Samples buffered since the last daily report",
		},
		[]string{"metric"},
	)

	// Alerting
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_monitor_alerts_total",
			Help: "Alerts raised by kind",
		},
		[]string{"kind"},
	)

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_monitor_deliveries_total",
			Help: "Notification deliveries by status",
		},
		[]string{"status"}, // status: success, failed
	)

	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trading_monitor_delivery_duration_seconds",
			Help:    "Time taken to deliver one notification",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// Reporting
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trading_monitor_reports_total",
			Help: "Daily reports by delivery status",
		},
		[]string{"status"},
	)

	NextReportTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trading_monitor_next_report_timestamp_seconds",
			Help: "Unix time the next daily report is due",
		},
	)
)
