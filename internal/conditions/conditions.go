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

// Package conditions builds and merges the metav1.Condition entries the
// Reconciler writes onto an intent's status. The closed vocabulary itself
// lives in apis/autoscaling/v1alpha1; this package only deals with the
// bookkeeping of setting one without disturbing the others.
package conditions

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
)

// Builder assembles one metav1.Condition with a fluent interface.
type Builder struct {
	c metav1.Condition
}

// New starts building a condition of the given type. ObservedGeneration is
// set with ObservedAt; LastTransitionTime is stamped by Set.
func New(t autoscalingv1alpha1.ConditionType) *Builder {
	return &Builder{c: metav1.Condition{Type: string(t)}}
}

// True marks the condition satisfied, with reason and message.
func (b *Builder) True(reason, message string) *Builder {
	b.c.Status = metav1.ConditionTrue
	b.c.Reason = reason
	b.c.Message = message
	return b
}

// False marks the condition unsatisfied, with reason and message.
func (b *Builder) False(reason, message string) *Builder {
	b.c.Status = metav1.ConditionFalse
	b.c.Reason = reason
	b.c.Message = message
	return b
}

// ObservedAt stamps the condition's ObservedGeneration.
func (b *Builder) ObservedAt(generation int64) *Builder {
	b.c.ObservedGeneration = generation
	return b
}

// Build returns the assembled condition.
func (b *Builder) Build() metav1.Condition {
	return b.c
}

// Set inserts or replaces the condition with the same Type in conditions.
// LastTransitionTime only advances when Status actually changes, matching
// the standard Kubernetes condition convention.
func Set(existing []metav1.Condition, next metav1.Condition) []metav1.Condition {
	now := metav1.Now()

	for i := range existing {
		if existing[i].Type != next.Type {
			continue
		}
		if existing[i].Status == next.Status {
			next.LastTransitionTime = existing[i].LastTransitionTime
		} else {
			next.LastTransitionTime = now
		}
		out := make([]metav1.Condition, len(existing))
		copy(out, existing)
		out[i] = next
		return out
	}

	next.LastTransitionTime = now
	return append(append([]metav1.Condition{}, existing...), next)
}

// Find returns the condition of type t, if present.
func Find(conditions []metav1.Condition, t autoscalingv1alpha1.ConditionType) (metav1.Condition, bool) {
	for _, c := range conditions {
		if c.Type == string(t) {
			return c, true
		}
	}
	return metav1.Condition{}, false
}

// IsTrue reports whether condition t is present and status True.
func IsTrue(conditions []metav1.Condition, t autoscalingv1alpha1.ConditionType) bool {
	c, ok := Find(conditions, t)
	return ok && c.Status == metav1.ConditionTrue
}
