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

// Package v1alpha1 contains the ScalingIntent API type and the closed
// vocabularies (condition types, metric types, policy types) that the
// reconciler core operates on.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ScalingIntent declares a horizontal scaling goal for one workload.
type ScalingIntent struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ScalingIntentSpec   `json:"spec"`
	Status ScalingIntentStatus `json:"status,omitempty"`
}

// ScalingIntentList is a list of ScalingIntent.
type ScalingIntentList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`

	Items []ScalingIntent `json:"items"`
}

// CrossVersionObjectReference identifies the workload a ScalingIntent targets.
type CrossVersionObjectReference struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	APIVersion string `json:"apiVersion"`
}

// MetricSpec is a tagged record describing which Metric Source to bind and
// what value it should be driven toward.
type MetricSpec struct {
	// Type selects the Metric Source implementation via the source registry.
	Type string `json:"type"`

	// TargetValue is the per-replica value the policy drives current metric
	// toward. Must be > 0; enforced at validation time.
	TargetValue float64 `json:"targetValue"`

	// QueueDepth holds configuration specific to Type == "queue-depth".
	// +optional
	QueueDepth *QueueDepthMetricSource `json:"queueDepth,omitempty"`

	// TimeSeries holds configuration specific to Type == "time-series".
	// +optional
	TimeSeries *TimeSeriesMetricSource `json:"timeSeries,omitempty"`

	// Backlog holds configuration specific to Type == "subscription-backlog".
	// +optional
	Backlog *BacklogMetricSource `json:"backlog,omitempty"`
}

// QueueDepthMetricSource configures a Redis-backed queue length probe.
type QueueDepthMetricSource struct {
	Addr      string `json:"addr"`
	Password  string `json:"password,omitempty"`
	DB        int    `json:"db,omitempty"`
	QueueName string `json:"queueName"`
}

// TimeSeriesMetricSource configures a Prometheus instant-query probe.
type TimeSeriesMetricSource struct {
	ServerURL   string `json:"serverURL"`
	Query       string `json:"query"`
	BearerToken string `json:"bearerToken,omitempty"`

	// LatencyQuery and ErrorRateQuery are optional companion PromQL
	// expressions. When set, the bound source additionally exposes them
	// through ExtendedSampler for the SLO-aware policy; omitted, the policy
	// sees zero for both, which it treats as "no signal".
	// +optional
	LatencyQuery string `json:"latencyQuery,omitempty"`
	// +optional
	ErrorRateQuery string `json:"errorRateQuery,omitempty"`
}

// BacklogMetricSource configures a Pub/Sub undelivered-message count probe.
type BacklogMetricSource struct {
	ProjectID        string `json:"projectID"`
	SubscriptionID   string `json:"subscriptionID"`
	CredentialsRef   string `json:"credentialsRef,omitempty"`
}

// PolicySpec is a tagged record selecting a Scaling Policy and its
// policy-specific parameters.
type PolicySpec struct {
	// Type selects the Scaling Policy implementation via the policy registry.
	Type string `json:"type"`

	// Proportional carries no extra parameters; present for symmetry.
	// +optional
	Proportional *ProportionalPolicy `json:"proportional,omitempty"`

	// SLO holds configuration specific to Type == "slo-aware".
	// +optional
	SLO *SLOPolicy `json:"slo,omitempty"`

	// CostBounded holds configuration specific to Type == "cost-bounded".
	// +optional
	CostBounded *CostBoundedPolicy `json:"costBounded,omitempty"`
}

// ProportionalPolicy has no tunable fields beyond target/bounds.
type ProportionalPolicy struct{}

// SLOPolicy configures the SLO-aware policy's escalation thresholds.
type SLOPolicy struct {
	TargetLatencyMs float64 `json:"targetLatencyMs"`
	TargetErrorRate float64 `json:"targetErrorRate"`
}

// CostBoundedPolicy configures the cost-bounded policy's budget.
type CostBoundedPolicy struct {
	MaxMonthlyCost     float64 `json:"maxMonthlyCost"`
	CostPerPodPerHour  float64 `json:"costPerPodPerHour"`
	PreferredDirection string  `json:"preferredDirection,omitempty"` // up | down | balanced
}

// ScaleUpBehavior bounds how aggressively the controller may scale up.
type ScaleUpBehavior struct {
	MaxIncrement    int32 `json:"maxIncrement"`
	CooldownSeconds int32 `json:"cooldownSeconds"`
}

// ScaleDownBehavior bounds how aggressively the controller may scale down.
type ScaleDownBehavior struct {
	MaxDecrement    int32 `json:"maxDecrement"`
	CooldownSeconds int32 `json:"cooldownSeconds"`
}

// Behavior groups the directional rate-limiting knobs the Safe Scaler
// consults.
type Behavior struct {
	ScaleUp   ScaleUpBehavior   `json:"scaleUp,omitempty"`
	ScaleDown ScaleDownBehavior `json:"scaleDown,omitempty"`
}

// Default behavior and sync interval values, applied when the corresponding
// spec field is absent or zero: the behavior defaults by the Safe Scaler,
// the sync interval default by the Reconciler.
const (
	DefaultSyncIntervalSeconds = int32(30)
	DefaultMaxIncrement        = int32(4)
	DefaultMaxDecrement        = int32(2)
	DefaultScaleUpCooldown     = int32(60)
	DefaultScaleDownCooldown   = int32(300)
)

// ScalingIntentSpec is the user-authored desired state.
type ScalingIntentSpec struct {
	Target CrossVersionObjectReference `json:"target"`

	MinReplicas int32 `json:"minReplicas"`
	MaxReplicas int32 `json:"maxReplicas"`

	Metric MetricSpec `json:"metric"`
	Policy PolicySpec `json:"policy"`

	// +optional
	Behavior Behavior `json:"behavior,omitempty"`

	// +optional
	SyncIntervalSeconds int32 `json:"syncIntervalSeconds,omitempty"`
}

// ConditionType is the closed vocabulary of condition types the controller
// may write onto status.conditions. No other values are ever produced.
type ConditionType string

const (
	ConditionReady              ConditionType = "Ready"
	ConditionInvalidConfig      ConditionType = "InvalidConfig"
	ConditionTargetMissing      ConditionType = "TargetMissing"
	ConditionMetricUnavailable  ConditionType = "MetricUnavailable"
	ConditionScalingSucceeded   ConditionType = "ScalingSucceeded"
	ConditionScalingFailed      ConditionType = "ScalingFailed"
	ConditionCostBudgetExceeded ConditionType = "CostBudgetExceeded"
)

// ScalingIntentStatus is the controller-owned observed state.
type ScalingIntentStatus struct {
	CurrentReplicas    int32             `json:"currentReplicas,omitempty"`
	DesiredReplicas    int32             `json:"desiredReplicas,omitempty"`
	CurrentMetricValue *float64          `json:"currentMetricValue,omitempty"`
	LastScaleTime      *metav1.Time      `json:"lastScaleTime,omitempty"`
	ObservedGeneration int64             `json:"observedGeneration,omitempty"`
	Conditions         []metav1.Condition `json:"conditions,omitempty"`
}
