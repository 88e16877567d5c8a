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

package costbounded

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/policy"
)

func TestDecide_S5CostBounded(t *testing.T) {
	p, err := New(autoscalingv1alpha1.PolicySpec{
		CostBounded: &autoscalingv1alpha1.CostBoundedPolicy{
			MaxMonthlyCost:    500,
			CostPerPodPerHour: 0.05,
		},
	})
	require.NoError(t, err)

	d, err := p.Decide(policy.Inputs{
		CurrentReplicas: 2,
		CurrentMetric:   100,
		TargetMetric:    10,
		Min:             1,
		Max:             50,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(13), d.Replicas) // min(20, floor(500/36.5)=13)
	assert.True(t, d.CostAdvisory)
}

func TestDecide_BudgetBelowMinStillReturnsMin(t *testing.T) {
	p, err := New(autoscalingv1alpha1.PolicySpec{
		CostBounded: &autoscalingv1alpha1.CostBoundedPolicy{
			MaxMonthlyCost:    1,
			CostPerPodPerHour: 1,
		},
	})
	require.NoError(t, err)

	d, err := p.Decide(policy.Inputs{
		CurrentReplicas: 2,
		CurrentMetric:   5,
		TargetMetric:    10,
		Min:             5,
		Max:             50,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), d.Replicas, "bound wins over budget")
	assert.True(t, d.CostAdvisory)
}

func TestDecide_PreferredDirectionDown(t *testing.T) {
	p, err := New(autoscalingv1alpha1.PolicySpec{
		CostBounded: &autoscalingv1alpha1.CostBoundedPolicy{
			MaxMonthlyCost:     100000,
			CostPerPodPerHour:  0.01,
			PreferredDirection: "down",
		},
	})
	require.NoError(t, err)

	d, err := p.Decide(policy.Inputs{
		CurrentReplicas: 3,
		CurrentMetric:   11,
		TargetMetric:    10,
		Min:             1,
		Max:             50,
	})
	require.NoError(t, err)
	// floor(11/10 * 3) = floor(3.3) = 3, vs ceil which would be 4.
	assert.Equal(t, int32(3), d.Replicas)
	assert.False(t, d.CostAdvisory)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(autoscalingv1alpha1.PolicySpec{})
	require.Error(t, err)
	assert.ErrorIs(t, err, policy.ErrInvalidConfig)

	_, err = New(autoscalingv1alpha1.PolicySpec{
		CostBounded: &autoscalingv1alpha1.CostBoundedPolicy{MaxMonthlyCost: 0, CostPerPodPerHour: 1},
	})
	require.Error(t, err)

	_, err = New(autoscalingv1alpha1.PolicySpec{
		CostBounded: &autoscalingv1alpha1.CostBoundedPolicy{MaxMonthlyCost: 1, CostPerPodPerHour: 1, PreferredDirection: "sideways"},
	})
	require.Error(t, err)
}
