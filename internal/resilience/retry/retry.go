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

// Package retry provides error classification and a jittered-backoff
// helper. The matchers are used by the Metric Source packages (through
// metricsource.ClassifyUnavailable) to tag sampling failures. The
// reconciliation core never retries inside a tick — a tick-local failure
// always waits for the next tick — so nothing here drives retries. Backoff
// has no caller outside this package's tests.
package retry

import (
	"math"
	"math/rand"
	"strings"
	"time"
)

// ErrorMatcher classifies an error by inspecting its message. Substring
// matching, not errors.Is, because these matchers exist specifically for
// errors originating outside this module (redis, prometheus HTTP, pubsub,
// apiserver client errors) that don't expose sentinel values to compare
// against.
type ErrorMatcher interface {
	Matches(err error) bool
}

// NetworkErrorMatcher recognizes common network-layer failure messages.
type NetworkErrorMatcher struct{}

var networkSubstrings = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"network unreachable",
	"no route to host",
	"timeout",
	"EOF",
	"broken pipe",
	"context deadline exceeded",
}

// Matches reports whether err looks like a network-layer failure.
func (NetworkErrorMatcher) Matches(err error) bool {
	return matchesAny(err, networkSubstrings)
}

// ResourceConflictMatcher recognizes Kubernetes optimistic-concurrency
// conflict messages.
type ResourceConflictMatcher struct{}

var conflictSubstrings = []string{
	"conflict",
	"the object has been modified",
	"operation cannot be fulfilled",
	"resource version",
	"resourceversion",
}

// Matches reports whether err looks like a resource-version conflict.
func (ResourceConflictMatcher) Matches(err error) bool {
	return matchesAny(err, conflictSubstrings)
}

func matchesAny(err error, substrings []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range substrings {
		if strings.Contains(msg, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Backoff computes a jittered exponential delay. The Reconciler does not
// use it: its periodic re-enqueue is the intent's plain sync interval.
type Backoff struct {
	Base    time.Duration
	Max     time.Duration
	Factor  float64
	Jitter  float64 // fraction of the computed delay, e.g. 0.25 for +/-25%
}

// Delay returns the backoff for the given attempt count (0-indexed).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	factor := b.Factor
	if factor <= 0 {
		factor = 2.0
	}

	delay := time.Duration(float64(b.Base) * math.Pow(factor, float64(attempt)))
	if b.Max > 0 && delay > b.Max {
		delay = b.Max
	}

	if b.Jitter > 0 {
		delay = jitter(delay, b.Jitter)
	}
	return delay
}

func jitter(d time.Duration, fraction float64) time.Duration {
	span := float64(d) * fraction
	offset := (rand.Float64()*2 - 1) * span
	result := time.Duration(float64(d) + offset)
	if result < 0 {
		return 0
	}
	return result
}
