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

// Package costbounded implements the cost-bounded Scaling Policy: the
// proportional baseline, capped by an affordability computed from a
// monthly budget.
package costbounded

import (
	"fmt"
	"math"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/policy"
	"github.com/scalecore/hscaler/internal/policy/proportional"
)

func init() {
	policy.Register("cost-bounded", New)
}

// hoursPerMonth is the fixed divisor used to convert a monthly budget into
// an hourly affordability, matching the spec's literal formula.
const hoursPerMonth = 730

// Direction biases which way the baseline rounds.
type Direction string

const (
	DirectionUp       Direction = "up"
	DirectionDown     Direction = "down"
	DirectionBalanced Direction = "balanced"
)

// Policy is the cost-bounded Scaling Policy.
type Policy struct {
	maxMonthlyCost    float64
	costPerPodPerHour float64
	direction         Direction
}

// New constructs the cost-bounded policy from the intent's policy spec.
func New(spec autoscalingv1alpha1.PolicySpec) (policy.Policy, error) {
	cfg := spec.CostBounded
	if cfg == nil {
		return nil, fmt.Errorf("cost-bounded policy requires costBounded config: %w", policy.ErrInvalidConfig)
	}
	if cfg.MaxMonthlyCost <= 0 {
		return nil, fmt.Errorf("cost-bounded policy requires maxMonthlyCost > 0: %w", policy.ErrInvalidConfig)
	}
	if cfg.CostPerPodPerHour <= 0 {
		return nil, fmt.Errorf("cost-bounded policy requires costPerPodPerHour > 0: %w", policy.ErrInvalidConfig)
	}

	dir := Direction(cfg.PreferredDirection)
	switch dir {
	case "":
		dir = DirectionBalanced
	case DirectionUp, DirectionDown, DirectionBalanced:
	default:
		return nil, fmt.Errorf("cost-bounded policy has unknown preferredDirection %q: %w", cfg.PreferredDirection, policy.ErrInvalidConfig)
	}

	return Policy{
		maxMonthlyCost:    cfg.MaxMonthlyCost,
		costPerPodPerHour: cfg.CostPerPodPerHour,
		direction:         dir,
	}, nil
}

// Decide computes the proportional baseline — using floor instead of ceil
// when the preferred direction is "down" — caps it at what the configured
// budget can afford, and clamps to [Min, Max] exactly once, as the final
// step. "up" and "balanced" both reuse the unmodified proportional
// baseline; only "down" changes the rounding direction.
func (p Policy) Decide(in policy.Inputs) (policy.Decision, error) {
	round := math.Ceil
	if p.direction == DirectionDown {
		round = math.Floor
	}

	desired := proportional.Baseline(in, round)

	maxAffordable := int32(math.Floor(p.maxMonthlyCost / (p.costPerPodPerHour * hoursPerMonth)))

	advisory := false
	if desired > maxAffordable {
		desired = maxAffordable
		advisory = true
	}

	// The bound wins over the budget: when the budget can't even afford
	// Min, Min still governs, but the advisory still fires since the
	// budget was exceeded either way.
	if maxAffordable < in.Min {
		advisory = true
	}

	clamped := proportional.Clamp(desired, in.Min, in.Max)

	return policy.Decision{Replicas: clamped, CostAdvisory: advisory}, nil
}
