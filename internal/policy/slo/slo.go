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

// Package slo implements the service-level-objective-aware Scaling Policy:
// the proportional baseline, escalated when observed latency or error rate
// breaches its target.
package slo

import (
	"fmt"
	"math"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/policy"
	"github.com/scalecore/hscaler/internal/policy/proportional"
)

func init() {
	policy.Register("slo-aware", New)
}

// escalationMultiplier is applied to the baseline when an SLO is breached.
// The asymmetry is intentional: breach escalates, compliance never
// overrides the baseline.
const escalationMultiplier = 1.5

// Policy is the SLO-aware Scaling Policy.
type Policy struct {
	targetLatencyMs float64
	targetErrorRate float64
}

// New constructs the SLO-aware policy from the intent's policy spec.
func New(spec autoscalingv1alpha1.PolicySpec) (policy.Policy, error) {
	cfg := spec.SLO
	if cfg == nil {
		return nil, fmt.Errorf("slo-aware policy requires slo config: %w", policy.ErrInvalidConfig)
	}
	return Policy{
		targetLatencyMs: cfg.TargetLatencyMs,
		targetErrorRate: cfg.TargetErrorRate,
	}, nil
}

// Decide computes the proportional baseline, then escalates by 1.5x if the
// observed latency or error rate breaches its target; observed values
// default to zero when the bound metric source has no extended reading,
// which degrades this policy to plain proportional.
func (p Policy) Decide(in policy.Inputs) (policy.Decision, error) {
	desired := float64(proportional.Baseline(in, math.Ceil))

	if in.LatencyMs > p.targetLatencyMs || in.ErrorRate > p.targetErrorRate {
		desired = math.Ceil(desired * escalationMultiplier)
	}

	return policy.Decision{Replicas: proportional.Clamp(int32(desired), in.Min, in.Max)}, nil
}
