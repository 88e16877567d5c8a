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

package backlog

import (
	"context"
	"fmt"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func timestamp(t time.Time) *timestamppb.Timestamp {
	return timestamppb.New(t)
}

// backlogCount queries Cloud Monitoring for the most recent
// num_undelivered_messages point on the given subscription. The Pub/Sub
// client library itself has no direct backlog read; the backlog count is a
// Cloud Monitoring metric the Pub/Sub service publishes on the
// subscription's behalf, following the same pattern widely used by
// GCP-based queue-backlog autoscalers.
func backlogCount(ctx context.Context, projectID, subscriptionID string) (float64, error) {
	metricClient, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		return 0, fmt.Errorf("building monitoring client: %w", err)
	}
	defer metricClient.Close()

	now := time.Now()
	filter := fmt.Sprintf(
		`metric.type = "pubsub.googleapis.com/subscription/num_undelivered_messages" AND resource.labels.subscription_id = "%s"`,
		subscriptionID,
	)

	req := &monitoringpb.ListTimeSeriesRequest{
		Name:   fmt.Sprintf("projects/%s", projectID),
		Filter: filter,
		Interval: &monitoringpb.TimeInterval{
			StartTime: timestamp(now.Add(-5 * time.Minute)),
			EndTime:   timestamp(now),
		},
		View: monitoringpb.ListTimeSeriesRequest_FULL,
	}

	it := metricClient.ListTimeSeries(ctx, req)
	series, err := it.Next()
	if err != nil {
		return 0, fmt.Errorf("listing time series: %w", err)
	}
	if len(series.Points) == 0 {
		return 0, nil
	}

	val := series.Points[0].Value
	switch v := val.Value.(type) {
	case *monitoringpb.TypedValue_Int64Value:
		return float64(v.Int64Value), nil
	case *monitoringpb.TypedValue_DoubleValue:
		return v.DoubleValue, nil
	default:
		return 0, fmt.Errorf("unexpected point value type for metric kind %v", metric.MetricDescriptor_GAUGE)
	}
}
