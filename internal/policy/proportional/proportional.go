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

// Package proportional implements the baseline Scaling Policy that every
// other policy variant builds on: desired replicas scale linearly with the
// ratio of observed metric to target metric.
package proportional

import (
	"math"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/policy"
)

func init() {
	policy.Register("proportional", New)
}

// Policy is the proportional Scaling Policy.
type Policy struct{}

// New constructs the proportional policy. It has no parameters to
// validate.
func New(autoscalingv1alpha1.PolicySpec) (policy.Policy, error) {
	return Policy{}, nil
}

// Decide computes ceil(ratio * max(currentReplicas, 1)), falling back to
// Min when the metric is zero, then clamps to [Min, Max] exactly once, as
// the final step.
func (Policy) Decide(in policy.Inputs) (policy.Decision, error) {
	return policy.Decision{Replicas: Clamp(Baseline(in, math.Ceil), in.Min, in.Max)}, nil
}

// Baseline computes the shared proportional baseline every policy variant
// adjusts before its own single final clamp. round is math.Ceil for the
// default rounding direction, or math.Floor when a variant biases toward
// fewer replicas. Baseline itself performs no clamping — callers clamp
// exactly once, after any policy-specific adjustment.
func Baseline(in policy.Inputs, round func(float64) float64) int32 {
	if in.CurrentMetric == 0 {
		return in.Min
	}

	ratio := in.CurrentMetric / in.TargetMetric
	multiplier := in.CurrentReplicas
	if multiplier < 1 {
		multiplier = 1
	}

	return int32(round(ratio * float64(multiplier)))
}

// Clamp restricts v to [min, max]. Exported so every policy variant clamps
// with the exact same function, as its one final step.
func Clamp(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
