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

package policy

import (
	"fmt"
	"sync"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
)

// Constructor builds a Policy from a ScalingIntent's policy spec.
type Constructor func(spec autoscalingv1alpha1.PolicySpec) (Policy, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register adds a Constructor for the given tagged type.
func Register(typ string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typ] = ctor
}

// Build looks up the constructor for spec.Type and invokes it.
func Build(spec autoscalingv1alpha1.PolicySpec) (Policy, error) {
	registryMu.RLock()
	ctor, ok := registry[spec.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown policy type %q: %w", spec.Type, ErrInvalidConfig)
	}
	p, err := ctor(spec)
	if err != nil {
		return nil, fmt.Errorf("constructing policy %q: %w", spec.Type, err)
	}
	return p, nil
}
