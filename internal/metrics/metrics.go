/*
Copyright 2026 The budget-allocator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics records Prometheus metrics for optimization requests.
//
// The emitter owns its registry; the CLI writes it to a node-exporter
// textfile (--metrics-textfile) or prints it in the text exposition format.
//
//	budget_allocator_requests_total{result="infeasible"} 1
//	budget_allocator_category_amount{category="riz"} 20
package metrics

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/paliers/budget-allocator/pkg/core"
)

const namespace = "budget_allocator"

// Result label values of RequestsTotal.
const (
	ResultSuccess       = "success"
	ResultInvalidBudget = "invalid_budget"
	ResultDataFormat    = "data_format"
	ResultInfeasible    = "infeasible"
	ResultRounding      = "rounding"
	ResultError         = "error"
)

// MetricsEmitter records request outcomes and allocations.
// It is safe for concurrent use.
type MetricsEmitter struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	categoryAmount  *prometheus.GaugeVec
	budget          prometheus.Gauge
	feasibleResults prometheus.Counter
}

// NewMetricsEmitter creates an emitter with a fresh registry.
func NewMetricsEmitter() *MetricsEmitter {
	e := &MetricsEmitter{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Optimization requests by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimize_duration_seconds",
			Help:      "Wall-clock time of optimization requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"result"}),
		categoryAmount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "category_amount",
			Help:      "Amount assigned to each category by the last allocation.",
		}, []string{"category"}),
		budget: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "budget",
			Help:      "Budget of the last successful allocation.",
		}),
		feasibleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "time_limited_allocations_total",
			Help:      "Allocations returned as feasible after the solver time limit.",
		}),
	}
	e.registry.MustRegister(e.requests, e.duration, e.categoryAmount, e.budget, e.feasibleResults)
	return e
}

// Registry returns the registry the emitter records into.
func (e *MetricsEmitter) Registry() *prometheus.Registry {
	return e.registry
}

// ObserveRequest counts one request and its duration under the result
// derived from err.
func (e *MetricsEmitter) ObserveRequest(err error, elapsed time.Duration) {
	result := ResultFor(err)
	e.requests.WithLabelValues(result).Inc()
	e.duration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// EmitAllocation publishes the amounts of a.
func (e *MetricsEmitter) EmitAllocation(a *core.Allocation) {
	if a == nil {
		return
	}
	e.budget.Set(float64(a.Budget))
	for category, amount := range a.Amounts {
		e.categoryAmount.WithLabelValues(category).Set(float64(amount))
	}
	if a.Status == core.StatusFeasible {
		e.feasibleResults.Inc()
	}
}

// WriteTextfile writes all metrics to path for the node-exporter textfile
// collector.
func (e *MetricsEmitter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}

// WriteText writes all metrics to w in the text exposition format.
func (e *MetricsEmitter) WriteText(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ResultFor maps an optimization error to its result label.
func ResultFor(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, core.ErrInvalidBudget):
		return ResultInvalidBudget
	case core.IsDataFormatError(err):
		return ResultDataFormat
	case core.IsInfeasible(err):
		return ResultInfeasible
	case core.IsRoundingInconsistency(err):
		return ResultRounding
	default:
		return ResultError
	}
}
