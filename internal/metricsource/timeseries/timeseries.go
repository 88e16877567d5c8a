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

// Package timeseries implements the time-series-query Metric Source: an
// instant PromQL query against a Prometheus-compatible HTTP API, reduced to
// a single scalar.
package timeseries

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/metricsource"
)

func init() {
	metricsource.Register("time-series", New)
}

// Source runs an instant query and extracts its scalar result.
type Source struct {
	api   promv1.API
	query string

	latencyQuery   string
	errorRateQuery string

	closeOnce sync.Once
}

// bearerTransport injects a static Authorization header, used when the
// intent opts into a bearer token for the Prometheus server.
type bearerTransport struct {
	token string
	next  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(req)
}

// New constructs a time-series Source from the intent's metric spec.
func New(spec autoscalingv1alpha1.MetricSpec) (metricsource.Source, error) {
	cfg := spec.TimeSeries
	if cfg == nil {
		return nil, fmt.Errorf("time-series metric source requires timeSeries config: %w", metricsource.ErrInvalidConfig)
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("time-series metric source requires serverURL: %w", metricsource.ErrInvalidConfig)
	}
	if cfg.Query == "" {
		return nil, fmt.Errorf("time-series metric source requires query: %w", metricsource.ErrInvalidConfig)
	}

	apiCfg := api.Config{Address: cfg.ServerURL}
	if cfg.BearerToken != "" {
		apiCfg.RoundTripper = &bearerTransport{token: cfg.BearerToken, next: http.DefaultTransport}
	}

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("building prometheus client: %w: %w", metricsource.ErrInvalidConfig, err)
	}

	return &Source{
		api:            promv1.NewAPI(client),
		query:          cfg.Query,
		latencyQuery:   cfg.LatencyQuery,
		errorRateQuery: cfg.ErrorRateQuery,
	}, nil
}

// Validate performs a no-op range-free query to confirm the server and
// PromQL expression are at least syntactically reachable, without requiring
// it to return a non-empty result (the series may simply be empty right
// now).
func (s *Source) Validate(ctx context.Context) error {
	_, warnings, err := s.api.Query(ctx, s.query, time.Now())
	if err != nil {
		return fmt.Errorf("validating query %q: %w: %w", s.query, metricsource.ErrInvalidConfig, err)
	}
	_ = warnings
	return nil
}

// Sample runs the configured instant query and extracts a scalar.
func (s *Source) Sample(ctx context.Context) (float64, error) {
	return s.queryScalar(ctx, s.query)
}

// SampleExtended runs the main query plus, when configured, the optional
// latency and error-rate companion queries, satisfying
// metricsource.ExtendedSampler for the SLO-aware policy.
func (s *Source) SampleExtended(ctx context.Context) (metricsource.ExtendedSample, error) {
	value, err := s.queryScalar(ctx, s.query)
	if err != nil {
		return metricsource.ExtendedSample{}, err
	}

	sample := metricsource.ExtendedSample{Value: value}

	if s.latencyQuery != "" {
		latency, err := s.queryScalar(ctx, s.latencyQuery)
		if err != nil {
			return metricsource.ExtendedSample{}, err
		}
		sample.LatencyMs = latency
	}

	if s.errorRateQuery != "" {
		errRate, err := s.queryScalar(ctx, s.errorRateQuery)
		if err != nil {
			return metricsource.ExtendedSample{}, err
		}
		sample.ErrorRate = errRate
	}

	return sample, nil
}

// queryScalar runs query as an instant query and reduces it to one scalar.
func (s *Source) queryScalar(ctx context.Context, query string) (float64, error) {
	result, warnings, err := s.api.Query(ctx, query, time.Now())
	if err != nil {
		return 0, metricsource.ClassifyUnavailable(fmt.Sprintf("querying %q", query), err)
	}
	_ = warnings

	v, err := extractScalar(result)
	if err != nil {
		return 0, metricsource.ClassifyUnavailable(fmt.Sprintf("extracting scalar from %q", query), err)
	}
	return metricsource.ValidateSampleValue(v)
}

// Close is a no-op: the Prometheus HTTP API client owns no long-lived
// connection beyond pooled *http.Client transports, which Go's runtime
// reclaims; kept for interface symmetry and future pooling.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {})
	return err
}

// extractScalar mirrors the teacher's own result-type switch: a vector must
// carry exactly the one sample we expect from an instant query; anything
// else (matrix, string, or an empty vector) is not a usable scalar.
func extractScalar(result model.Value) (float64, error) {
	switch v := result.(type) {
	case model.Vector:
		if len(v) != 1 {
			return 0, fmt.Errorf("query returned %d samples, expected exactly one", len(v))
		}
		return float64(v[0].Value), nil
	case *model.Scalar:
		return float64(v.Value), nil
	default:
		return 0, fmt.Errorf("unsupported result type %T, expected a scalar", result)
	}
}
