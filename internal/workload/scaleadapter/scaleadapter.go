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

// Package scaleadapter implements the Workload Adapter over
// k8s.io/client-go's generic scale subresource client: the same mechanism
// the HorizontalPodAutoscaler controller itself uses to read and write
// replica counts for arbitrary scalable resources.
package scaleadapter

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/scale"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/workload"
)

// Adapter reads and writes the replica count of a target workload via its
// scale subresource.
type Adapter struct {
	scaleClient scale.ScalesGetter
	mapper      meta.RESTMapper
}

// New constructs a scale-subresource-backed Workload Adapter.
func New(scaleClient scale.ScalesGetter, mapper meta.RESTMapper) *Adapter {
	return &Adapter{scaleClient: scaleClient, mapper: mapper}
}

// GetReplicas reads the target's current replica count from its scale
// subresource.
func (a *Adapter) GetReplicas(ctx context.Context, ref autoscalingv1alpha1.CrossVersionObjectReference, namespace string) (int32, error) {
	gr, err := a.groupResource(ref)
	if err != nil {
		return 0, fmt.Errorf("resolving group resource for %s/%s: %w: %w", ref.Kind, ref.Name, workload.ErrTransient, err)
	}

	s, err := a.scaleClient.Scales(namespace).Get(ctx, gr, ref.Name, metav1.GetOptions{})
	if err != nil {
		return 0, classify(ref.Name, err)
	}
	return s.Spec.Replicas, nil
}

// SetReplicas writes a new replica count to the target's scale subresource.
func (a *Adapter) SetReplicas(ctx context.Context, ref autoscalingv1alpha1.CrossVersionObjectReference, namespace string, n int32) error {
	gr, err := a.groupResource(ref)
	if err != nil {
		return fmt.Errorf("resolving group resource for %s/%s: %w: %w", ref.Kind, ref.Name, workload.ErrTransient, err)
	}

	current, err := a.scaleClient.Scales(namespace).Get(ctx, gr, ref.Name, metav1.GetOptions{})
	if err != nil {
		return classify(ref.Name, err)
	}

	current.Spec.Replicas = n

	if _, err := a.scaleClient.Scales(namespace).Update(ctx, gr, current, metav1.UpdateOptions{}); err != nil {
		return classify(ref.Name, err)
	}
	return nil
}

// groupResource resolves the target's APIVersion/Kind to a GroupResource
// via the REST mapper, the same indirection the HPA controller uses so it
// need not hardcode a mapping per scalable kind.
func (a *Adapter) groupResource(ref autoscalingv1alpha1.CrossVersionObjectReference) (schema.GroupResource, error) {
	gv, err := schema.ParseGroupVersion(ref.APIVersion)
	if err != nil {
		return schema.GroupResource{}, fmt.Errorf("parsing apiVersion %q: %w", ref.APIVersion, err)
	}

	mapping, err := a.mapper.RESTMapping(schema.GroupKind{Group: gv.Group, Kind: ref.Kind}, gv.Version)
	if err != nil {
		return schema.GroupResource{}, fmt.Errorf("mapping %s %s: %w", gv.String(), ref.Kind, err)
	}
	return mapping.Resource.GroupResource(), nil
}

// classify maps apiserver errors onto the Workload Adapter's closed error
// taxonomy.
func classify(name string, err error) error {
	switch {
	case apierrors.IsNotFound(err):
		return fmt.Errorf("target %q: %w: %w", name, workload.ErrNotFound, err)
	case apierrors.IsConflict(err):
		return fmt.Errorf("target %q: %w: %w", name, workload.ErrConflict, err)
	default:
		return fmt.Errorf("target %q: %w: %w", name, workload.ErrTransient, err)
	}
}
