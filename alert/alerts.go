// Package alert decides which alerts fire for a reading set and a process watchlist.
package alert

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/adarshmishra-tech/monitor-trading-infra/types"
	"github.com/adarshmishra-tech/monitor-trading-infra/util"
)

// Rule is a threshold on a single metric.
type Rule struct {
	Metric    types.MetricName
	Threshold float64
}

// Breached reports whether value exceeds the threshold. Equality does not fire.
func (r Rule) Breached(value float64) bool {
	return value > r.Threshold
}

// ProcessChecker answers whether any running process name contains name.
type ProcessChecker interface {
	IsProcessRunning(ctx context.Context, name string) (bool, error)
}

// Evaluator turns readings into alert events. It holds no mutable state.
type Evaluator struct {
	rules []Rule
	now   func() time.Time
}

// NewEvaluator creates an evaluator for the given thresholds.
func NewEvaluator(thresholds types.ThresholdConfig) *Evaluator {
	rules := make([]Rule, 0, 3)
	for _, m := range types.Metrics() {
		rules = append(rules, Rule{Metric: m, Threshold: thresholds.For(m)})
	}
	return &Evaluator{rules: rules, now: time.Now}
}

// Rules returns the evaluator's rules in CPU, RAM, Disk order.
func (e *Evaluator) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// MetricAlerts yields one event per metric of set that breaches its rule.
func (e *Evaluator) MetricAlerts(set types.ReadingSet) iter.Seq[types.AlertEvent] {
	return func(yield func(types.AlertEvent) bool) {
		for i, r := range set.Readings() {
			rule := e.rules[i]
			if !rule.Breached(r.Value) {
				continue
			}
			if !yield(e.metricEvent(rule, r.Value)) {
				return
			}
		}
	}
}

// ProcessAlerts yields one event per watched name with no matching running
// process. A failed lookup is yielded as an error for that name only.
func (e *Evaluator) ProcessAlerts(ctx context.Context, watchlist []string, checker ProcessChecker) iter.Seq2[types.AlertEvent, error] {
	return func(yield func(types.AlertEvent, error) bool) {
		for _, name := range watchlist {
			running, err := checker.IsProcessRunning(ctx, name)
			if err != nil {
				err = &types.MetricAcquisitionError{Metric: "process " + name, Err: err}
				if !yield(types.AlertEvent{}, err) {
					return
				}
				continue
			}
			if running {
				continue
			}
			if !yield(e.processEvent(name), nil) {
				return
			}
		}
	}
}

func (e *Evaluator) metricEvent(rule Rule, value float64) types.AlertEvent {
	short := shortName(rule.Metric)
	return types.AlertEvent{
		ID:      util.GenerateUUID(),
		Subject: fmt.Sprintf("High %s Usage Alert", short),
		Body: fmt.Sprintf("%s usage exceeded threshold: %.2f%% (Threshold: %s%%)",
			short, value, strconv.FormatFloat(rule.Threshold, 'f', -1, 64)),
		Metric:    rule.Metric,
		Timestamp: e.now(),
	}
}

func (e *Evaluator) processEvent(name string) types.AlertEvent {
	return types.AlertEvent{
		ID:        util.GenerateUUID(),
		Subject:   "Process Down Alert: " + name,
		Body:      fmt.Sprintf("Critical trading process %s is not running!", name),
		Process:   name,
		Timestamp: e.now(),
	}
}

// shortName maps "CPU Usage" to "CPU".
func shortName(m types.MetricName) string {
	return strings.TrimSuffix(string(m), " Usage")
}

// NameMatches reports whether running contains watched, ignoring case.
func NameMatches(running, watched string) bool {
	return strings.Contains(strings.ToLower(running), strings.ToLower(watched))
}
