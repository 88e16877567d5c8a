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

package scaleadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	clientgotesting "k8s.io/client-go/testing"
	scalefake "k8s.io/client-go/scale/fake"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/workload"
)

func newMapper() meta.RESTMapper {
	mapper := meta.NewDefaultRESTMapper([]schema.GroupVersion{{Group: "apps", Version: "v1"}})
	mapper.Add(schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "Deployment"}, meta.RESTScopeNamespace)
	return mapper
}

func newFakeScaleClient(t *testing.T, replicas int32) *scalefake.FakeScaleClient {
	t.Helper()
	fake := &scalefake.FakeScaleClient{}
	fake.AddReactor("get", "deployments", func(action clientgotesting.Action) (bool, runtime.Object, error) {
		return true, &autoscalingv1.Scale{
			ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default"},
			Spec:       autoscalingv1.ScaleSpec{Replicas: replicas},
			Status:     autoscalingv1.ScaleStatus{Replicas: replicas},
		}, nil
	})
	fake.AddReactor("update", "deployments", func(action clientgotesting.Action) (bool, runtime.Object, error) {
		update := action.(clientgotesting.UpdateAction)
		return true, update.GetObject(), nil
	})
	return fake
}

var target = autoscalingv1alpha1.CrossVersionObjectReference{
	Kind:       "Deployment",
	Name:       "web",
	APIVersion: "apps/v1",
}

func TestGetReplicas(t *testing.T) {
	fake := newFakeScaleClient(t, 4)
	a := New(fake, newMapper())

	n, err := a.GetReplicas(context.Background(), target, "default")
	require.NoError(t, err)
	assert.Equal(t, int32(4), n)
}

func TestSetReplicas(t *testing.T) {
	fake := newFakeScaleClient(t, 4)
	a := New(fake, newMapper())

	err := a.SetReplicas(context.Background(), target, "default", 7)
	require.NoError(t, err)
}

func TestGetReplicas_NotFoundClassification(t *testing.T) {
	fake := &scalefake.FakeScaleClient{}
	fake.AddReactor("get", "deployments", func(action clientgotesting.Action) (bool, runtime.Object, error) {
		return true, nil, apierrors.NewNotFound(schema.GroupResource{Group: "apps", Resource: "deployments"}, "web")
	})
	a := New(fake, newMapper())

	_, err := a.GetReplicas(context.Background(), target, "default")
	require.Error(t, err)
	assert.ErrorIs(t, err, workload.ErrNotFound)
}

func TestSetReplicas_ConflictClassification(t *testing.T) {
	fake := newFakeScaleClient(t, 4)
	fake.PrependReactor("update", "deployments", func(action clientgotesting.Action) (bool, runtime.Object, error) {
		return true, nil, apierrors.NewConflict(schema.GroupResource{Group: "apps", Resource: "deployments"}, "web", assert.AnError)
	})
	a := New(fake, newMapper())

	err := a.SetReplicas(context.Background(), target, "default", 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, workload.ErrConflict)
}
