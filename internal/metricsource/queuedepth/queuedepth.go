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

// Package queuedepth implements the queue-depth Metric Source: the current
// length of a Redis list, sampled with LLEN.
package queuedepth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/metricsource"
)

func init() {
	metricsource.Register("queue-depth", New)
}

// Source samples the length of a Redis list via LLEN.
type Source struct {
	client    *redis.Client
	queueName string

	closeOnce sync.Once
}

// New constructs a queue-depth Source from the intent's metric spec.
func New(spec autoscalingv1alpha1.MetricSpec) (metricsource.Source, error) {
	cfg := spec.QueueDepth
	if cfg == nil {
		return nil, fmt.Errorf("queue-depth metric source requires queueDepth config: %w", metricsource.ErrInvalidConfig)
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("queue-depth metric source requires addr: %w", metricsource.ErrInvalidConfig)
	}
	if cfg.QueueName == "" {
		return nil, fmt.Errorf("queue-depth metric source requires queueName: %w", metricsource.ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Source{
		client:    client,
		queueName: cfg.QueueName,
	}, nil
}

// Validate pings the Redis server once at binding time.
func (s *Source) Validate(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w: %w", metricsource.ErrInvalidConfig, err)
	}
	return nil
}

// Sample returns the current length of the configured list.
func (s *Source) Sample(ctx context.Context) (float64, error) {
	n, err := s.client.LLen(ctx, s.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return metricsource.ValidateSampleValue(0)
		}
		return 0, metricsource.ClassifyUnavailable(fmt.Sprintf("reading queue length for %q", s.queueName), err)
	}
	return metricsource.ValidateSampleValue(float64(n))
}

// Close shuts down the underlying Redis client. Safe to call more than once.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.client.Close()
	})
	return err
}
