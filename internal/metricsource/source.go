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

// Package metricsource defines the Metric Source capability: a polymorphic
// producer of a single non-negative scalar reading. Concrete backends live
// in sibling packages (queuedepth, timeseries, backlog) and register
// themselves with the type registry in registry.go.
package metricsource

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/scalecore/hscaler/internal/resilience/retry"
)

// ErrUnavailable signals a transient sampling failure: connection refused,
// timeout, malformed response, auth lapse. The reconciler treats it as a
// tick-local skip, never a terminal error.
var ErrUnavailable = errors.New("metric source unavailable")

// ErrInvalidConfig signals that Validate found the bound configuration
// unusable. The binding is never established when this is returned.
var ErrInvalidConfig = errors.New("metric source configuration invalid")

// Source is the capability every metric backend implements.
type Source interface {
	// Sample returns a finite non-negative reading, or wraps ErrUnavailable.
	// Callers apply their own deadline via ctx; Sample must honor
	// cancellation promptly.
	Sample(ctx context.Context) (float64, error)

	// Validate is called once at binding time. A non-nil error (wrapping
	// ErrInvalidConfig) prevents the binding from being established.
	Validate(ctx context.Context) error

	// Close releases backend resources. Safe to call more than once;
	// implementations must guard with sync.Once.
	Close() error
}

// ExtendedSample is the richer reading some sources can additionally
// supply. The SLO-aware policy consults this when the bound Source also
// implements ExtendedSampler; otherwise latency and error rate default to
// zero, degrading the SLO policy to plain proportional.
type ExtendedSample struct {
	Value     float64
	LatencyMs float64
	ErrorRate float64
}

// ExtendedSampler is an optional capability a Source may implement in
// addition to Sample.
type ExtendedSampler interface {
	SampleExtended(ctx context.Context) (ExtendedSample, error)
}

var (
	networkErrorMatcher  = retry.NetworkErrorMatcher{}
	conflictErrorMatcher = retry.ResourceConflictMatcher{}
)

// ClassifyUnavailable wraps a sampling failure as ErrUnavailable, tagging it
// with whether it looks like a recognized transient network or resource
// conflict failure so the tag surfaces in status conditions and logs. Every
// concrete Source calls this from Sample instead of wrapping ErrUnavailable
// by hand.
func ClassifyUnavailable(op string, err error) error {
	tag := "unknown"
	switch {
	case networkErrorMatcher.Matches(err):
		tag = "network"
	case conflictErrorMatcher.Matches(err):
		tag = "conflict"
	}
	return fmt.Errorf("%s (%s): %w: %w", op, tag, ErrUnavailable, err)
}

// ValidateSampleValue enforces the universal contract on whatever a
// concrete Source computed: finite, non-negative. Concrete sources call
// this immediately before returning from Sample so every backend rejects
// NaN/Inf/negative the same way.
func ValidateSampleValue(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrUnavailable
	}
	return v, nil
}
