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

package safescaler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/clock"
)

func behavior(maxIncrement, maxDecrement, upCooldown, downCooldown int32) autoscalingv1alpha1.Behavior {
	return autoscalingv1alpha1.Behavior{
		ScaleUp:   autoscalingv1alpha1.ScaleUpBehavior{MaxIncrement: maxIncrement, CooldownSeconds: upCooldown},
		ScaleDown: autoscalingv1alpha1.ScaleDownBehavior{MaxDecrement: maxDecrement, CooldownSeconds: downCooldown},
	}
}

func TestDecide_S1ScaleUpStepCapped(t *testing.T) {
	s := New(clock.RealClock{})
	now := time.Now()

	d := s.Decide("intent-1", 2, 10, 1, 20, behavior(5, 2, 0, 0), now)

	assert.True(t, d.Act)
	assert.Equal(t, int32(7), d.Target)
}

func TestDecide_S2CooldownBlocks(t *testing.T) {
	s := New(clock.RealClock{})
	now := time.Now()
	s.SeedCooldown("intent-1", now.Add(-10*time.Second))

	d := s.Decide("intent-1", 2, 10, 1, 20, behavior(5, 2, 60, 0), now)

	assert.False(t, d.Act)
	assert.Equal(t, int32(2), d.Target)
	assert.Equal(t, ReasonInCooldown, d.Reason)
}

func TestDecide_S3BoundClamp(t *testing.T) {
	s := New(clock.RealClock{})
	now := time.Now()

	// Policy already clamps desired to max=20 per its own contract; the
	// Safe Scaler still applies its own bound clamp independently.
	d := s.Decide("intent-1", 18, 20, 1, 20, behavior(10, 2, 0, 0), now)

	assert.True(t, d.Act)
	assert.Equal(t, int32(20), d.Target)
}

func TestDecide_S4ScaleToZeroLoad(t *testing.T) {
	s := New(clock.RealClock{})
	now := time.Now()

	d := s.Decide("intent-1", 5, 1, 1, 20, behavior(5, 2, 0, 0), now)

	assert.True(t, d.Act)
	assert.Equal(t, int32(3), d.Target)
}

func TestDecide_AtDesiredNoAction(t *testing.T) {
	s := New(clock.RealClock{})
	d := s.Decide("intent-1", 5, 5, 1, 20, behavior(5, 2, 0, 0), time.Now())

	assert.False(t, d.Act)
	assert.Equal(t, ReasonAtDesired, d.Reason)
}

func TestDecide_ClampedToCurrentNoAction(t *testing.T) {
	s := New(clock.RealClock{})
	// Desired is below current, but max=current so the bound clamp lands
	// exactly back on current: no write should occur.
	d := s.Decide("intent-1", 10, 3, 10, 10, behavior(5, 2, 0, 0), time.Now())

	assert.False(t, d.Act)
	assert.Equal(t, int32(10), d.Target)
	assert.Equal(t, ReasonClampedToSame, d.Reason)
}

func TestDecide_S6MetricFlapPreservesCooldownState(t *testing.T) {
	s := New(clock.RealClock{})
	t0 := time.Now()

	// Tick 1: scales.
	d1 := s.Decide("intent-1", 2, 10, 1, 20, behavior(5, 2, 60, 60), t0)
	assert.True(t, d1.Act)
	s.RecordScale("intent-1", t0)

	// Tick 2 (metric unavailable upstream): the reconciler never calls
	// Decide at all on an UNAVAILABLE sample. We model that here by simply
	// not calling Decide, so nothing touches the cooldown clock.

	// Tick 3, a few seconds later, still scaling up from where tick 1
	// left off: the cooldown recorded by tick 1 is still in force, so the
	// scale is blocked by cooldown.
	d3 := s.Decide("intent-1", d1.Target, 20, 1, 20, behavior(5, 2, 60, 60), t0.Add(2*time.Second))
	assert.False(t, d3.Act)
	assert.Equal(t, ReasonInCooldown, d3.Reason)
}

func TestDecide_CooldownBoundaryIsInclusiveOfBehaviorWindow(t *testing.T) {
	s := New(clock.RealClock{})
	t0 := time.Now()
	s.SeedCooldown("intent-1", t0)

	// Exactly at the cooldown boundary: elapsed == cooldownSeconds is not
	// "< cooldownSeconds", so the scale must be allowed.
	d := s.Decide("intent-1", 2, 10, 1, 20, behavior(5, 2, 60, 0), t0.Add(60*time.Second))
	assert.True(t, d.Act)
}

func TestDecide_NoPriorScaleSkipsCooldown(t *testing.T) {
	s := New(clock.RealClock{})
	d := s.Decide("intent-1", 2, 10, 1, 20, behavior(5, 2, 600, 0), time.Now())
	assert.True(t, d.Act, "with no recorded prior scale, cooldown must not block the first scale")
}

func TestDecide_StepCapNeverExceeded(t *testing.T) {
	s := New(clock.RealClock{})
	now := time.Now()

	for _, tc := range []struct {
		current, desired, maxIncrement, maxDecrement int32
	}{
		{current: 2, desired: 100, maxIncrement: 3, maxDecrement: 3},
		{current: 100, desired: 1, maxIncrement: 3, maxDecrement: 3},
	} {
		d := s.Decide("k", tc.current, tc.desired, 1, 1000, behavior(tc.maxIncrement, tc.maxDecrement, 0, 0), now)
		if tc.desired > tc.current {
			assert.LessOrEqual(t, d.Target-tc.current, tc.maxIncrement)
		} else {
			assert.LessOrEqual(t, tc.current-d.Target, tc.maxDecrement)
		}
	}
}

func TestForget_RemovesCooldownEntry(t *testing.T) {
	s := New(clock.RealClock{})
	now := time.Now()
	s.SeedCooldown("intent-1", now)
	s.Forget("intent-1")

	// With the entry gone, cooldown must not block even a cooldown window
	// that would otherwise still be active.
	d := s.Decide("intent-1", 2, 10, 1, 20, behavior(5, 2, 600, 0), now.Add(time.Second))
	assert.True(t, d.Act)
}
