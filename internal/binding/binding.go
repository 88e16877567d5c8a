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

// Package binding owns the per-intent runtime pair the Reconciler consults
// on every tick: a constructed Metric Source, a constructed Policy, and a
// circuit breaker wrapping the source. Bindings are created on first
// observation of an intent, replaced wholesale on spec change, and torn
// down on deletion.
package binding

import (
	"context"
	"fmt"
	"sync"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/metricsource"
	"github.com/scalecore/hscaler/internal/policy"
	"github.com/scalecore/hscaler/internal/resilience/circuitbreaker"
)

// Binding is the live metric source + policy pair for one intent.
type Binding struct {
	Source  metricsource.Source
	Policy  policy.Policy
	Breaker *circuitbreaker.Breaker
}

// Close releases the binding's metric source connection. Safe to call
// exactly once; the concrete source types guard their own Close with
// sync.Once, so a double Close from a racing teardown path is harmless.
func (b *Binding) Close() error {
	return b.Source.Close()
}

// Set owns every live binding, keyed by intent key ("namespace/name"). The
// cooldown clock lives solely in safescaler.SafeScaler, the only component
// that ever reads it; Set does not duplicate it.
type Set struct {
	mu       sync.RWMutex
	bindings map[string]*Binding
}

// NewSet constructs an empty binding set.
func NewSet() *Set {
	return &Set{
		bindings: make(map[string]*Binding),
	}
}

// Build constructs a new binding for spec via the metric source and policy
// registries, validates the metric source, and stores it keyed by key,
// replacing and closing any prior binding for the same key.
func (s *Set) Build(ctx context.Context, key string, spec autoscalingv1alpha1.ScalingIntentSpec) (*Binding, error) {
	source, err := metricsource.Build(spec.Metric)
	if err != nil {
		return nil, fmt.Errorf("building metric source for %s: %w", key, err)
	}
	if err := source.Validate(ctx); err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("validating metric source for %s: %w", key, err)
	}

	pol, err := policy.Build(spec.Policy)
	if err != nil {
		_ = source.Close()
		return nil, fmt.Errorf("building policy for %s: %w", key, err)
	}

	b := &Binding{
		Source:  source,
		Policy:  pol,
		Breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.bindings[key]; ok {
		_ = old.Close()
	}
	s.bindings[key] = b

	return b, nil
}

// Get returns the live binding for key, if any.
func (s *Set) Get(key string) (*Binding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[key]
	return b, ok
}

// Remove tears down the binding for key. The caller is responsible for also
// forgetting the key's cooldown-clock entry via safescaler.SafeScaler.Forget.
func (s *Set) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.bindings[key]; ok {
		_ = b.Close()
		delete(s.bindings, key)
	}
}

// CloseAll tears down every live binding, used during controller shutdown.
func (s *Set) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, b := range s.bindings {
		_ = b.Close()
		delete(s.bindings, key)
	}
}
