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

// Package validation checks a ScalingIntent's spec shape before a binding
// is ever constructed for it. Failures here are configuration errors:
// surfaced as the InvalidConfig condition, and reported again on every
// sync interval until the user edits the spec.
package validation

import (
	"k8s.io/apimachinery/pkg/util/validation/field"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
)

// ConfigurationValidator checks a ScalingIntentSpec's shape, independent of
// whether its referenced metric source or policy type is actually
// registered (that check happens at binding construction, once the
// registries are consulted).
type ConfigurationValidator struct {
	maxReplicas int32
}

// Option configures a ConfigurationValidator.
type Option func(*ConfigurationValidator)

// WithMaxReplicas caps the replica range the validator will accept.
func WithMaxReplicas(max int32) Option {
	return func(v *ConfigurationValidator) { v.maxReplicas = max }
}

// NewConfigurationValidator builds a validator with sensible defaults,
// overridable via Option.
func NewConfigurationValidator(opts ...Option) *ConfigurationValidator {
	v := &ConfigurationValidator{maxReplicas: 10000}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks spec and returns every violation found, field-pathed
// relative to fldPath (typically field.NewPath("spec")).
func (v *ConfigurationValidator) Validate(spec *autoscalingv1alpha1.ScalingIntentSpec, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	errs = append(errs, v.validateReplicaBounds(spec, fldPath)...)
	errs = append(errs, v.validateTarget(&spec.Target, fldPath.Child("target"))...)
	errs = append(errs, v.validateMetric(&spec.Metric, fldPath.Child("metric"))...)
	errs = append(errs, v.validatePolicy(&spec.Policy, fldPath.Child("policy"))...)
	errs = append(errs, v.validateBehavior(&spec.Behavior, fldPath.Child("behavior"))...)

	return errs
}

func (v *ConfigurationValidator) validateReplicaBounds(spec *autoscalingv1alpha1.ScalingIntentSpec, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	if spec.MinReplicas < 1 {
		errs = append(errs, field.Invalid(fldPath.Child("minReplicas"), spec.MinReplicas, "must be at least 1"))
	}
	if spec.MaxReplicas <= 0 {
		errs = append(errs, field.Invalid(fldPath.Child("maxReplicas"), spec.MaxReplicas, "must be positive"))
	}
	if spec.MaxReplicas > v.maxReplicas {
		errs = append(errs, field.Invalid(fldPath.Child("maxReplicas"), spec.MaxReplicas, "exceeds the configured maximum"))
	}
	if spec.MinReplicas > spec.MaxReplicas {
		errs = append(errs, field.Invalid(fldPath.Child("minReplicas"), spec.MinReplicas, "must not exceed maxReplicas"))
	}
	// Zero means absent; the Reconciler then uses DefaultSyncIntervalSeconds.
	if spec.SyncIntervalSeconds < 0 {
		errs = append(errs, field.Invalid(fldPath.Child("syncIntervalSeconds"), spec.SyncIntervalSeconds, "must be positive when set"))
	}

	return errs
}

func (v *ConfigurationValidator) validateTarget(ref *autoscalingv1alpha1.CrossVersionObjectReference, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	if ref.Kind == "" {
		errs = append(errs, field.Required(fldPath.Child("kind"), "target kind is required"))
	}
	if ref.Name == "" {
		errs = append(errs, field.Required(fldPath.Child("name"), "target name is required"))
	}
	if ref.APIVersion == "" {
		errs = append(errs, field.Required(fldPath.Child("apiVersion"), "target apiVersion is required"))
	}

	return errs
}

func (v *ConfigurationValidator) validateMetric(m *autoscalingv1alpha1.MetricSpec, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	if m.Type == "" {
		errs = append(errs, field.Required(fldPath.Child("type"), "metric type is required"))
		return errs
	}
	if m.TargetValue <= 0 {
		errs = append(errs, field.Invalid(fldPath.Child("targetValue"), m.TargetValue, "must be positive"))
	}

	switch m.Type {
	case "queue-depth":
		if m.QueueDepth == nil {
			errs = append(errs, field.Required(fldPath.Child("queueDepth"), "required when type is queue-depth"))
		} else if m.QueueDepth.QueueName == "" {
			errs = append(errs, field.Required(fldPath.Child("queueDepth", "queueName"), "queueName is required"))
		}
	case "time-series":
		if m.TimeSeries == nil {
			errs = append(errs, field.Required(fldPath.Child("timeSeries"), "required when type is time-series"))
		} else if m.TimeSeries.Query == "" {
			errs = append(errs, field.Required(fldPath.Child("timeSeries", "query"), "query is required"))
		}
	case "subscription-backlog":
		if m.Backlog == nil {
			errs = append(errs, field.Required(fldPath.Child("backlog"), "required when type is subscription-backlog"))
		} else if m.Backlog.SubscriptionID == "" {
			errs = append(errs, field.Required(fldPath.Child("backlog", "subscriptionID"), "subscriptionID is required"))
		}
	}
	// Other metric types are resolved against the registry at binding time;
	// an unknown type is not a shape error, it's a registration error.

	return errs
}

func (v *ConfigurationValidator) validatePolicy(p *autoscalingv1alpha1.PolicySpec, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	if p.Type == "" {
		errs = append(errs, field.Required(fldPath.Child("type"), "policy type is required"))
		return errs
	}

	switch p.Type {
	case "slo-aware":
		if p.SLO == nil {
			errs = append(errs, field.Required(fldPath.Child("slo"), "required when type is slo-aware"))
		}
	case "cost-bounded":
		if p.CostBounded == nil {
			errs = append(errs, field.Required(fldPath.Child("costBounded"), "required when type is cost-bounded"))
		} else if p.CostBounded.MaxMonthlyCost <= 0 {
			errs = append(errs, field.Invalid(fldPath.Child("costBounded", "maxMonthlyCost"), p.CostBounded.MaxMonthlyCost, "must be positive"))
		}
	}

	return errs
}

func (v *ConfigurationValidator) validateBehavior(b *autoscalingv1alpha1.Behavior, fldPath *field.Path) field.ErrorList {
	var errs field.ErrorList

	if b.ScaleUp.MaxIncrement < 0 {
		errs = append(errs, field.Invalid(fldPath.Child("scaleUp", "maxIncrement"), b.ScaleUp.MaxIncrement, "must be non-negative"))
	}
	if b.ScaleDown.MaxDecrement < 0 {
		errs = append(errs, field.Invalid(fldPath.Child("scaleDown", "maxDecrement"), b.ScaleDown.MaxDecrement, "must be non-negative"))
	}
	if b.ScaleUp.CooldownSeconds < 0 {
		errs = append(errs, field.Invalid(fldPath.Child("scaleUp", "cooldownSeconds"), b.ScaleUp.CooldownSeconds, "must be non-negative"))
	}
	if b.ScaleDown.CooldownSeconds < 0 {
		errs = append(errs, field.Invalid(fldPath.Child("scaleDown", "cooldownSeconds"), b.ScaleDown.CooldownSeconds, "must be non-negative"))
	}

	return errs
}
