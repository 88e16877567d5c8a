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

package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
)

func TestSet_AppendsNewCondition(t *testing.T) {
	existing := []metav1.Condition{}
	next := New(autoscalingv1alpha1.ConditionReady).True("Scaled", "at desired replicas").Build()

	got := Set(existing, next)
	require.Len(t, got, 1)
	assert.Equal(t, "Ready", got[0].Type)
	assert.False(t, got[0].LastTransitionTime.IsZero())
}

func TestSet_ReplacesExistingConditionOfSameType(t *testing.T) {
	existing := []metav1.Condition{
		New(autoscalingv1alpha1.ConditionMetricUnavailable).True("Unreachable", "redis down").Build(),
	}
	next := New(autoscalingv1alpha1.ConditionMetricUnavailable).False("Recovered", "redis reachable").Build()

	got := Set(existing, next)
	require.Len(t, got, 1)
	assert.Equal(t, metav1.ConditionFalse, got[0].Status)
}

func TestSet_PreservesTransitionTimeWhenStatusUnchanged(t *testing.T) {
	first := New(autoscalingv1alpha1.ConditionReady).True("Scaled", "v1").Build()
	existing := Set(nil, first)
	originalTime := existing[0].LastTransitionTime

	second := New(autoscalingv1alpha1.ConditionReady).True("Scaled", "v2").Build()
	got := Set(existing, second)

	assert.Equal(t, originalTime, got[0].LastTransitionTime, "message-only change must not bump LastTransitionTime")
	assert.Equal(t, "v2", got[0].Message)
}

func TestSet_DoesNotDisturbOtherConditionTypes(t *testing.T) {
	existing := []metav1.Condition{
		New(autoscalingv1alpha1.ConditionTargetMissing).True("Missing", "gone").Build(),
	}
	next := New(autoscalingv1alpha1.ConditionReady).True("Scaled", "ok").Build()

	got := Set(existing, next)
	require.Len(t, got, 2)
}

func TestFind_And_IsTrue(t *testing.T) {
	conds := []metav1.Condition{
		New(autoscalingv1alpha1.ConditionReady).True("Scaled", "ok").Build(),
	}

	c, ok := Find(conds, autoscalingv1alpha1.ConditionReady)
	require.True(t, ok)
	assert.Equal(t, "Scaled", c.Reason)
	assert.True(t, IsTrue(conds, autoscalingv1alpha1.ConditionReady))
	assert.False(t, IsTrue(conds, autoscalingv1alpha1.ConditionTargetMissing))
}
