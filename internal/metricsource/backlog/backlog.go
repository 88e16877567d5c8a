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

// Package backlog implements the subscription-backlog Metric Source: the
// undelivered message count on a Google Cloud Pub/Sub subscription.
package backlog

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/metricsource"
)

func init() {
	metricsource.Register("subscription-backlog", New)
}

// Source samples a Pub/Sub subscription's undelivered message count by
// querying the num_undelivered_messages metric in Cloud Monitoring (see
// backlogCount); the Pub/Sub client is used only to check that the
// subscription exists.
type Source struct {
	client         *pubsub.Client
	projectID      string
	subscriptionID string

	closeOnce sync.Once
}

// New constructs a subscription-backlog Source from the intent's metric
// spec. Auth failures are deferred to Validate, per the variant contract in
// the metric source table: "auth failure -> config-error during validate()".
func New(spec autoscalingv1alpha1.MetricSpec) (metricsource.Source, error) {
	cfg := spec.Backlog
	if cfg == nil {
		return nil, fmt.Errorf("subscription-backlog metric source requires backlog config: %w", metricsource.ErrInvalidConfig)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("subscription-backlog metric source requires projectID: %w", metricsource.ErrInvalidConfig)
	}
	if cfg.SubscriptionID == "" {
		return nil, fmt.Errorf("subscription-backlog metric source requires subscriptionID: %w", metricsource.ErrInvalidConfig)
	}

	ctx := context.Background()
	var opts []option.ClientOption
	if cfg.CredentialsRef != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsRef))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("building pubsub client: %w: %w", metricsource.ErrInvalidConfig, err)
	}

	return &Source{
		client:         client,
		projectID:      cfg.ProjectID,
		subscriptionID: cfg.SubscriptionID,
	}, nil
}

// Validate confirms the subscription exists and is reachable under the
// configured credentials.
func (s *Source) Validate(ctx context.Context) error {
	sub := s.client.Subscription(s.subscriptionID)
	ok, err := sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("checking subscription %q: %w: %w", s.subscriptionID, metricsource.ErrInvalidConfig, err)
	}
	if !ok {
		return fmt.Errorf("subscription %q does not exist: %w", s.subscriptionID, metricsource.ErrInvalidConfig)
	}
	return nil
}

// Sample returns the subscription's current undelivered message count.
func (s *Source) Sample(ctx context.Context) (float64, error) {
	count, err := backlogCount(ctx, s.projectID, s.subscriptionID)
	if err != nil {
		return 0, metricsource.ClassifyUnavailable(fmt.Sprintf("reading backlog for %q", s.subscriptionID), err)
	}
	return metricsource.ValidateSampleValue(count)
}

// Close shuts down the underlying Pub/Sub client. Safe to call more than
// once.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.client.Close()
	})
	return err
}
