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

// Package circuitbreaker provides a generic three-state (closed/open/half
// open) circuit breaker, one instance per binding, wrapping calls to a
// Metric Source's Sample method so a source that has gone consistently bad
// stops being hammered every sync interval.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State is one of the three circuit states.
type State int

const (
	// Closed: calls pass through normally.
	Closed State = iota
	// Open: calls are rejected without being attempted.
	Open
	// HalfOpen: trial calls are allowed through to probe recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by Allow when the breaker is open and rejecting calls.
var ErrOpen = errors.New("circuit breaker open")

// Config controls trip and recovery thresholds.
type Config struct {
	// FailureThreshold is the number of consecutive failures that trips the
	// breaker from Closed to Open.
	FailureThreshold int
	// OpenDuration is how long the breaker stays Open before it moves to
	// HalfOpen and lets probe calls through.
	OpenDuration time.Duration
	// SuccessThreshold is the number of consecutive HalfOpen successes
	// needed to close the breaker again.
	SuccessThreshold int
}

// DefaultConfig mirrors the teacher's workqueue circuit breaker defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		OpenDuration:     30 * time.Second,
		SuccessThreshold: 2,
	}
}

// Breaker is a single circuit breaker instance, safe for concurrent use.
type Breaker struct {
	cfg Config

	mu              sync.Mutex
	state           State
	consecutiveFail int
	consecutiveOK   int
	openedAt        time.Time
	now             func() time.Time
}

// New constructs a closed Breaker with the given configuration.
func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg, state: Closed, now: time.Now}
}

// Allow reports whether a call should be attempted right now. When the
// breaker is Open and the open duration hasn't elapsed, it returns ErrOpen
// without attempting anything. Once the open duration elapses, it
// transitions to HalfOpen; while HalfOpen every call is allowed through
// until SuccessThreshold consecutive successes close the breaker or a
// failure reopens it.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return nil
	case HalfOpen:
		return nil
	case Open:
		if b.now().Sub(b.openedAt) >= b.cfg.OpenDuration {
			b.state = HalfOpen
			b.consecutiveOK = 0
			return nil
		}
		return ErrOpen
	default:
		return nil
	}
}

// RecordSuccess reports a successful call outcome.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFail = 0

	switch b.state {
	case HalfOpen:
		b.consecutiveOK++
		if b.consecutiveOK >= b.cfg.SuccessThreshold {
			b.state = Closed
			b.consecutiveOK = 0
		}
	case Open:
		// A success while Open shouldn't occur through Allow's contract, but
		// treat it the same as a HalfOpen recovery signal defensively.
		b.state = Closed
	}
}

// RecordFailure reports a failed call outcome.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveOK = 0

	switch b.state {
	case Closed:
		b.consecutiveFail++
		if b.consecutiveFail >= b.cfg.FailureThreshold {
			b.trip()
		}
	case HalfOpen:
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.consecutiveFail = 0
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker back to Closed, clearing all counters. A binding
// rebuilt after a spec change gets a new breaker instead, so the Reconciler
// does not call Reset.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Closed
	b.consecutiveFail = 0
	b.consecutiveOK = 0
}
