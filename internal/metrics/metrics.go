/*
Copyright 2026 The Authors.

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

// Package metrics registers and emits the Prometheus metrics the
// reconciliation core exposes about its own operation: reconcile outcomes,
// tick latency, the replica counts it observes and decides on, and the
// depth of its own work queue.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelNamespace = "namespace"
	labelName      = "name"
	labelResult    = "result"
	labelReason    = "reason"
)

var (
	reconcileTotal     *prometheus.CounterVec
	tickDurationSeconds *prometheus.HistogramVec
	desiredReplicas    *prometheus.GaugeVec
	currentReplicas    *prometheus.GaugeVec
	metricValue        *prometheus.GaugeVec
	workqueueDepth     prometheus.Gauge

	initOnce sync.Once
	initErr  error
)

// InitMetrics registers every metric with registry. Safe to call more than
// once; only the first call's registry takes effect.
func InitMetrics(registry prometheus.Registerer) error {
	initOnce.Do(func() {
		reconcileTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoscaler_reconcile_total",
				Help: "Total number of reconcile attempts, labeled by outcome.",
			},
			[]string{labelNamespace, labelName, labelResult},
		)
		tickDurationSeconds = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoscaler_tick_duration_seconds",
				Help:    "Duration of a single reconcile tick.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{labelNamespace, labelName},
		)
		desiredReplicas = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "autoscaler_desired_replicas",
				Help: "Replica count the Safe Scaler most recently settled on, after cooldown, step caps and bounds.",
			},
			[]string{labelNamespace, labelName},
		)
		currentReplicas = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "autoscaler_current_replicas",
				Help: "Replica count most recently observed from the Workload Adapter.",
			},
			[]string{labelNamespace, labelName},
		)
		metricValue = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "autoscaler_metric_value",
				Help: "Most recently sampled metric value from the Metric Source.",
			},
			[]string{labelNamespace, labelName},
		)
		workqueueDepth = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "autoscaler_workqueue_depth",
				Help: "Current depth of the reconciler's work queue.",
			},
		)

		for _, c := range []prometheus.Collector{
			reconcileTotal, tickDurationSeconds, desiredReplicas, currentReplicas, metricValue, workqueueDepth,
		} {
			if err := registry.Register(c); err != nil {
				initErr = fmt.Errorf("registering metric: %w", err)
				return
			}
		}
	})
	return initErr
}

// ReconcileResult is the closed label vocabulary for ReconcileTotal.
type ReconcileResult string

const (
	ReconcileResultSuccess ReconcileResult = "success"
	ReconcileResultError   ReconcileResult = "error"
	ReconcileResultSkipped ReconcileResult = "skipped"
)

// ObserveReconcile records the outcome and duration of one tick. A no-op if
// InitMetrics was never called, so unit tests that build a Reconciler
// without a registry don't need to stub metrics out.
func ObserveReconcile(namespace, name string, result ReconcileResult, durationSeconds float64) {
	if reconcileTotal == nil {
		return
	}
	reconcileTotal.WithLabelValues(namespace, name, string(result)).Inc()
	tickDurationSeconds.WithLabelValues(namespace, name).Observe(durationSeconds)
}

// SetReplicaGauges records the current and desired replica counts observed
// during a tick.
func SetReplicaGauges(namespace, name string, current, desired int32) {
	if currentReplicas == nil {
		return
	}
	currentReplicas.WithLabelValues(namespace, name).Set(float64(current))
	desiredReplicas.WithLabelValues(namespace, name).Set(float64(desired))
}

// SetMetricValue records the most recently sampled metric value.
func SetMetricValue(namespace, name string, value float64) {
	if metricValue == nil {
		return
	}
	metricValue.WithLabelValues(namespace, name).Set(value)
}

// SetWorkqueueDepth records the current queue depth.
func SetWorkqueueDepth(depth int) {
	if workqueueDepth == nil {
		return
	}
	workqueueDepth.Set(float64(depth))
}
