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

package controller

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/metricsource"
	"github.com/scalecore/hscaler/internal/policy"
	"github.com/scalecore/hscaler/internal/workload"
)

type fakeStore struct {
	intents map[string]*autoscalingv1alpha1.ScalingIntent
}

func (f *fakeStore) Get(namespace, name string) (*autoscalingv1alpha1.ScalingIntent, error) {
	i, ok := f.intents[namespace+"/"+name]
	if !ok {
		return nil, apierrors.NewNotFound(schema.GroupResource{Group: "autoscaling", Resource: "scalingintents"}, name)
	}
	return i, nil
}

type fakeStatusClient struct {
	patches int
}

func (f *fakeStatusClient) Patch(_ context.Context, _, _ string, _ types.PatchType, _ []byte, _ metav1.PatchOptions, _ ...string) error {
	f.patches++
	return nil
}

type fakeWorkloadAdapter struct {
	replicas  int32
	setCalls  []int32
	getErr    error
	setErr    error
}

func (f *fakeWorkloadAdapter) GetReplicas(ctx context.Context, ref autoscalingv1alpha1.CrossVersionObjectReference, namespace string) (int32, error) {
	if f.getErr != nil {
		return 0, f.getErr
	}
	return f.replicas, nil
}

func (f *fakeWorkloadAdapter) SetReplicas(ctx context.Context, ref autoscalingv1alpha1.CrossVersionObjectReference, namespace string, n int32) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setCalls = append(f.setCalls, n)
	f.replicas = n
	return nil
}

const fakeMetricType = "controller-test-metric"

type fixedSource struct {
	value float64
	err   error
}

func (s *fixedSource) Sample(ctx context.Context) (float64, error) { return s.value, s.err }
func (s *fixedSource) Validate(ctx context.Context) error          { return nil }
func (s *fixedSource) Close() error                                { return nil }

var nextSample *fixedSource

func init() {
	metricsource.Register(fakeMetricType, func(spec autoscalingv1alpha1.MetricSpec) (metricsource.Source, error) {
		return nextSample, nil
	})
	policy.Register("controller-test-policy", func(spec autoscalingv1alpha1.PolicySpec) (policy.Policy, error) {
		return proportionalStub{}, nil
	})
}

type proportionalStub struct{}

func (proportionalStub) Decide(in policy.Inputs) (policy.Decision, error) {
	ratio := in.CurrentMetric / in.TargetMetric
	desired := int32(ratio * float64(in.CurrentReplicas))
	if desired < in.Min {
		desired = in.Min
	}
	if desired > in.Max {
		desired = in.Max
	}
	return policy.Decision{Replicas: desired}, nil
}

func newTestIntent(name string, current int32) *autoscalingv1alpha1.ScalingIntent {
	return &autoscalingv1alpha1.ScalingIntent{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default", Generation: 1},
		Spec: autoscalingv1alpha1.ScalingIntentSpec{
			Target:      autoscalingv1alpha1.CrossVersionObjectReference{Kind: "Deployment", Name: "web", APIVersion: "apps/v1"},
			MinReplicas: 1,
			MaxReplicas: 20,
			Metric:      autoscalingv1alpha1.MetricSpec{Type: fakeMetricType, TargetValue: 10},
			Policy:      autoscalingv1alpha1.PolicySpec{Type: "controller-test-policy"},
			Behavior: autoscalingv1alpha1.Behavior{
				ScaleUp:   autoscalingv1alpha1.ScaleUpBehavior{MaxIncrement: 100, CooldownSeconds: 0},
				ScaleDown: autoscalingv1alpha1.ScaleDownBehavior{MaxDecrement: 100, CooldownSeconds: 0},
			},
			SyncIntervalSeconds: 30,
		},
	}
}

func TestSyncHandler_ScalesUpOnHighMetric(t *testing.T) {
	intent := newTestIntent("web", 2)
	store := &fakeStore{intents: map[string]*autoscalingv1alpha1.ScalingIntent{"default/web": intent}}
	statusClient := &fakeStatusClient{}
	wa := &fakeWorkloadAdapter{replicas: 2}
	nextSample = &fixedSource{value: 50}

	c := New(store, statusClient, wa, record.NewFakeRecorder(10))

	err := c.syncHandler(context.Background(), "default/web")
	require.NoError(t, err)

	require.Len(t, wa.setCalls, 1)
	assert.Equal(t, int32(10), wa.setCalls[0])
	assert.Equal(t, 1, statusClient.patches)
}

func TestSyncHandler_SkipsOnTargetMissing(t *testing.T) {
	intent := newTestIntent("web", 2)
	store := &fakeStore{intents: map[string]*autoscalingv1alpha1.ScalingIntent{"default/web": intent}}
	statusClient := &fakeStatusClient{}
	wa := &fakeWorkloadAdapter{getErr: fmt.Errorf("target %q: %w", "web", workload.ErrNotFound)}
	nextSample = &fixedSource{value: 50}

	c := New(store, statusClient, wa, record.NewFakeRecorder(10))

	err := c.syncHandler(context.Background(), "default/web")
	require.NoError(t, err)
	assert.Empty(t, wa.setCalls)
}

func TestSyncHandler_TeardownOnNotFound(t *testing.T) {
	store := &fakeStore{intents: map[string]*autoscalingv1alpha1.ScalingIntent{}}
	statusClient := &fakeStatusClient{}
	wa := &fakeWorkloadAdapter{}

	c := New(store, statusClient, wa, record.NewFakeRecorder(10))
	_, _ = c.bindings.Build(context.Background(), "default/ghost", newTestIntent("ghost", 1).Spec)

	err := c.syncHandler(context.Background(), "default/ghost")
	require.NoError(t, err)

	_, ok := c.bindings.Get("default/ghost")
	assert.False(t, ok, "deleted intent's binding must be torn down")
}

func TestSyncHandler_InvalidConfigNeverCallsWorkload(t *testing.T) {
	intent := newTestIntent("web", 2)
	intent.Spec.MinReplicas = 50 // > MaxReplicas: shape-invalid
	store := &fakeStore{intents: map[string]*autoscalingv1alpha1.ScalingIntent{"default/web": intent}}
	statusClient := &fakeStatusClient{}
	wa := &fakeWorkloadAdapter{replicas: 2}

	c := New(store, statusClient, wa, record.NewFakeRecorder(10))

	err := c.syncHandler(context.Background(), "default/web")
	require.NoError(t, err)
	assert.Empty(t, wa.setCalls)
}
