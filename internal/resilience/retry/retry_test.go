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

package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNetworkErrorMatcher(t *testing.T) {
	m := NetworkErrorMatcher{}

	cases := map[string]struct {
		err     error
		matches bool
	}{
		"connection refused": {errors.New("dial tcp: connection refused"), true},
		"timeout":            {errors.New("i/o timeout"), true},
		"EOF":                {errors.New("unexpected EOF"), true},
		"unrelated":          {errors.New("invalid metric configuration"), false},
		"nil":                {nil, false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.matches, m.Matches(tc.err))
		})
	}
}

func TestResourceConflictMatcher(t *testing.T) {
	m := ResourceConflictMatcher{}

	cases := map[string]struct {
		err     error
		matches bool
	}{
		"conflict":           {errors.New("Operation cannot be fulfilled on scalingintents.autoscaling: the object has been modified"), true},
		"resource version":   {errors.New("resourceVersion mismatch"), true},
		"unrelated":          {errors.New("target not found"), false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.matches, m.Matches(tc.err))
		})
	}
}

func TestBackoff_Delay_GrowsExponentiallyAndCaps(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Max: 1 * time.Second, Factor: 2}

	assert.Equal(t, 100*time.Millisecond, b.Delay(0))
	assert.Equal(t, 200*time.Millisecond, b.Delay(1))
	assert.Equal(t, 400*time.Millisecond, b.Delay(2))
	assert.Equal(t, 1*time.Second, b.Delay(10), "must cap at Max")
}

func TestBackoff_Delay_JitterStaysWithinBounds(t *testing.T) {
	b := Backoff{Base: 1 * time.Second, Max: 10 * time.Second, Factor: 2, Jitter: 0.25}

	for i := 0; i < 50; i++ {
		d := b.Delay(0)
		assert.GreaterOrEqual(t, d, 750*time.Millisecond)
		assert.LessOrEqual(t, d, 1250*time.Millisecond)
	}
}

func TestBackoff_Delay_NegativeAttemptTreatedAsZero(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Factor: 2}
	assert.Equal(t, b.Delay(0), b.Delay(-1))
}
