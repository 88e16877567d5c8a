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

// Package policy defines the Scaling Policy capability: a pure function
// from current state to a desired replica count. Concrete policies live in
// sibling packages (proportional, slo, costbounded) and register
// themselves with the type registry in registry.go.
package policy

import "errors"

// ErrInvalidConfig signals a policy was constructed with parameters that
// cannot satisfy its purity contract (e.g. a non-positive cost budget).
var ErrInvalidConfig = errors.New("scaling policy configuration invalid")

// Inputs carries everything a policy needs to compute a decision. Policies
// must be total over any Inputs satisfying TargetMetric > 0, Min <= Max,
// CurrentReplicas >= 0, CurrentMetric >= 0 — callers validate this
// beforehand, but implementations should never panic on a violation.
type Inputs struct {
	CurrentReplicas int32
	CurrentMetric   float64
	TargetMetric    float64
	Min, Max        int32

	// LatencyMs and ErrorRate are optional observed values some policies
	// (SLO-aware) consult. Callers that have no such reading leave them
	// zero, which every policy must treat as "no signal", not "healthy".
	LatencyMs float64
	ErrorRate float64
}

// Decision is a policy's output. CostAdvisory is set only by the
// cost-bounded policy when the budget, not the bound, constrained the
// result; every other policy leaves it false.
type Decision struct {
	Replicas     int32
	CostAdvisory bool
}

// Policy is the capability every scaling policy implements. Decide must be
// pure: no I/O, no hidden state, deterministic given Inputs.
type Policy interface {
	Decide(in Inputs) (Decision, error)
}
