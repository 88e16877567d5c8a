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

// Package safescaler implements the stateful decision gate that sits
// between a Scaling Policy's raw recommendation and an actual write to the
// workload: cooldown, per-direction step caps, and absolute bounds.
package safescaler

import (
	"sync"
	"time"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/clock"
)

// Reason is the closed set of explanations a Decision may carry. Exported
// as typed constants so callers can switch on them instead of matching
// strings.
type Reason string

const (
	ReasonAtDesired      Reason = "at desired"
	ReasonInCooldown     Reason = "in cooldown"
	ReasonClampedToSame  Reason = "clamped to current"
	ReasonScaled         Reason = "scaled"
)

// Decision is the Safe Scaler's output.
type Decision struct {
	Act    bool
	Target int32
	Reason Reason
}

// SafeScaler gates a policy's desired replica count against cooldown, step
// caps, and bounds. It owns the cooldown clock, the only mutable state in
// the reconciliation core; access is partitioned per intent key under a
// single mutex, since each key is only ever touched by the one goroutine
// currently holding that key out of the reconciler's work queue — the
// mutex exists for safety under test harnesses that call concurrently
// across keys, not because contention is expected in production.
type SafeScaler struct {
	mu            sync.RWMutex
	lastScaleTime map[string]time.Time

	clock clock.Clock
}

// New constructs an empty Safe Scaler.
func New(c clock.Clock) *SafeScaler {
	if c == nil {
		c = clock.RealClock{}
	}
	return &SafeScaler{
		lastScaleTime: make(map[string]time.Time),
		clock:         c,
	}
}

// SeedCooldown records a prior scale time for an intent key without going
// through Decide/RecordScale, but only if the key has no entry yet. Used by
// the Reconciler to seed the in-memory clock from status.lastScaleTime on
// an intent's first binding, per the design note on cooldown being
// in-memory by choice; a later binding rebuild (spec change) must never
// clobber an in-progress cooldown window with a stale status value.
func (s *SafeScaler) SeedCooldown(intentKey string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lastScaleTime[intentKey]; !exists {
		s.lastScaleTime[intentKey] = at
	}
}

// Forget removes the cooldown-clock entry for an intent key. Called on
// intent deletion.
func (s *SafeScaler) Forget(intentKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lastScaleTime, intentKey)
}

// RecordScale updates the cooldown clock for an intent key after a
// confirmed write. Must never be called speculatively — only after
// SetReplicas has actually succeeded.
func (s *SafeScaler) RecordScale(intentKey string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScaleTime[intentKey] = at
}

// Decide runs the gating algorithm in the mandated order: equality
// short-circuit, cooldown, step cap, bound clamp. Safe Scaler itself never
// fails; all upstream failures must stop the pipeline before Decide is
// called.
func (s *SafeScaler) Decide(intentKey string, current, desiredFromPolicy, min, max int32, behavior autoscalingv1alpha1.Behavior, now time.Time) Decision {
	if desiredFromPolicy == current {
		return Decision{Act: false, Target: current, Reason: ReasonAtDesired}
	}

	scalingUp := desiredFromPolicy > current

	s.mu.RLock()
	last, hasPrior := s.lastScaleTime[intentKey]
	s.mu.RUnlock()

	cooldown := cooldownFor(behavior, scalingUp)
	if hasPrior {
		elapsed := now.Sub(last)
		if elapsed < time.Duration(cooldown)*time.Second {
			return Decision{Act: false, Target: current, Reason: ReasonInCooldown}
		}
	}

	target := stepCap(current, desiredFromPolicy, behavior, scalingUp)
	target = clampInt32(target, min, max)

	if target == current {
		return Decision{Act: false, Target: current, Reason: ReasonClampedToSame}
	}
	return Decision{Act: true, Target: target, Reason: ReasonScaled}
}

// cooldownFor and stepCap apply spec.md's documented defaults whenever the
// corresponding behavior field is absent (zero): a ScalingIntent author who
// omits scaleUp/scaleDown tuning still gets a bounded, cooldown-gated
// scaler, never an unthrottled one.

func cooldownFor(behavior autoscalingv1alpha1.Behavior, scalingUp bool) int32 {
	if scalingUp {
		if behavior.ScaleUp.CooldownSeconds > 0 {
			return behavior.ScaleUp.CooldownSeconds
		}
		return autoscalingv1alpha1.DefaultScaleUpCooldown
	}
	if behavior.ScaleDown.CooldownSeconds > 0 {
		return behavior.ScaleDown.CooldownSeconds
	}
	return autoscalingv1alpha1.DefaultScaleDownCooldown
}

func stepCap(current, desired int32, behavior autoscalingv1alpha1.Behavior, scalingUp bool) int32 {
	if scalingUp {
		limit := behavior.ScaleUp.MaxIncrement
		if limit <= 0 {
			limit = autoscalingv1alpha1.DefaultMaxIncrement
		}
		if desired-current > limit {
			return current + limit
		}
		return desired
	}

	limit := behavior.ScaleDown.MaxDecrement
	if limit <= 0 {
		limit = autoscalingv1alpha1.DefaultMaxDecrement
	}
	if current-desired > limit {
		return current - limit
	}
	return desired
}

func clampInt32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
