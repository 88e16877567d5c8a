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

// Package workload defines the Workload Adapter capability: a narrow,
// stateless facade over the orchestrator's workload API, exposing exactly
// the two operations the reconciliation core needs.
package workload

import (
	"context"
	"errors"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
)

// ErrNotFound means the target workload does not exist right now. Terminal
// for this tick; the next tick retries in case the workload reappears.
var ErrNotFound = errors.New("workload target not found")

// ErrConflict means a concurrent writer raced this update. Retried on the
// next tick, never within the same tick.
var ErrConflict = errors.New("workload target write conflict")

// ErrTransient covers any other recoverable failure: network errors,
// timeouts, 5xx responses.
var ErrTransient = errors.New("workload adapter transient failure")

// Adapter is the capability every workload facade implements. It owns no
// state of its own.
type Adapter interface {
	// GetReplicas reads the target's current replica count.
	GetReplicas(ctx context.Context, ref autoscalingv1alpha1.CrossVersionObjectReference, namespace string) (int32, error)

	// SetReplicas writes a new replica count. Idempotent in effect.
	SetReplicas(ctx context.Context, ref autoscalingv1alpha1.CrossVersionObjectReference, namespace string, n int32) error
}
