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

// Package controller implements the Reconciler: a keyed-workqueue control
// loop that drives each ScalingIntent through metric sampling, policy
// evaluation, Safe Scaler bounding, and a workload write, once per sync
// interval, with per-intent serialization guaranteed by the workqueue's own
// dirty-set semantics.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/tools/cache"
	"k8s.io/client-go/tools/record"
	"k8s.io/client-go/util/workqueue"
	"k8s.io/klog/v2"

	autoscalingv1alpha1 "github.com/scalecore/hscaler/apis/autoscaling/v1alpha1"
	"github.com/scalecore/hscaler/internal/binding"
	"github.com/scalecore/hscaler/internal/clock"
	"github.com/scalecore/hscaler/internal/conditions"
	"github.com/scalecore/hscaler/internal/metrics"
	"github.com/scalecore/hscaler/internal/metricsource"
	"github.com/scalecore/hscaler/internal/policy"
	"github.com/scalecore/hscaler/internal/safescaler"
	"github.com/scalecore/hscaler/internal/status"
	"github.com/scalecore/hscaler/internal/validation"
	"github.com/scalecore/hscaler/internal/workload"
)

// ControllerName identifies this controller in logs, queue metrics, and
// event sources.
const ControllerName = "hscaler"

// sampleTimeout bounds every external call a tick makes: metric sampling
// and workload reads/writes alike.
const sampleTimeout = 10 * time.Second

// IntentStore is the narrow read boundary the Reconciler needs onto
// ScalingIntent storage: satisfiable by a generated lister in a real
// deployment, or a fake in tests.
type IntentStore interface {
	Get(namespace, name string) (*autoscalingv1alpha1.ScalingIntent, error)
}

// IntentStatusClient patches the status subresource of one intent. Mirrors
// the shape a generated clientset's typed Status().Patch exposes, without
// requiring one to exist.
type IntentStatusClient interface {
	Patch(ctx context.Context, namespace, name string, pt types.PatchType, data []byte, opts metav1.PatchOptions, subresources ...string) error
}

type namespacedPatcher struct {
	client    IntentStatusClient
	namespace string
}

func (p namespacedPatcher) Patch(ctx context.Context, name string, pt types.PatchType, data []byte, opts metav1.PatchOptions, subresources ...string) error {
	return p.client.Patch(ctx, p.namespace, name, pt, data, opts, subresources...)
}

// Controller is the Reconciler: it watches ScalingIntent keys flow through
// a shared workqueue and converges each one, independently, on its own
// schedule.
type Controller struct {
	store        IntentStore
	statusClient IntentStatusClient
	workload     workload.Adapter
	validator    *validation.ConfigurationValidator
	safeScaler   *safescaler.SafeScaler
	bindings     *binding.Set
	recorder     record.EventRecorder
	clock        clock.Clock

	queue workqueue.TypedRateLimitingInterface[string]

	generationsMu sync.Mutex
	generations   map[string]int64
}

// New constructs a Controller ready to Run.
func New(
	store IntentStore,
	statusClient IntentStatusClient,
	workloadAdapter workload.Adapter,
	recorder record.EventRecorder,
) *Controller {
	return &Controller{
		store:        store,
		statusClient: statusClient,
		workload:     workloadAdapter,
		validator:    validation.NewConfigurationValidator(),
		safeScaler:   safescaler.New(clock.RealClock{}),
		bindings:     binding.NewSet(),
		recorder:     recorder,
		clock:        clock.RealClock{},
		queue: workqueue.NewTypedRateLimitingQueueWithConfig(
			workqueue.DefaultTypedControllerRateLimiter[string](),
			workqueue.TypedRateLimitingQueueConfig[string]{Name: ControllerName},
		),
		generations: make(map[string]int64),
	}
}

// Enqueue schedules key ("namespace/name") for its next tick as soon as a
// worker is free. Called by the informer event handlers that sit outside
// this package's scope (add/update/delete).
func (c *Controller) Enqueue(key string) {
	c.queue.Add(key)
}

// Run starts workers worker goroutines and blocks until ctx is canceled,
// then closes every live binding and shuts the queue down before
// returning. It does not wait for in-flight ticks to finish.
func (c *Controller) Run(ctx context.Context, workers int) error {
	defer utilruntime.HandleCrash()
	defer c.queue.ShutDown()

	klog.InfoS("starting controller", "name", ControllerName, "workers", workers)

	for i := 0; i < workers; i++ {
		go wait.UntilWithContext(ctx, c.runWorker, time.Second)
	}

	<-ctx.Done()
	klog.InfoS("shutting down controller", "name", ControllerName)
	c.bindings.CloseAll()

	return nil
}

func (c *Controller) runWorker(ctx context.Context) {
	for c.processNextWorkItem(ctx) {
	}
}

func (c *Controller) processNextWorkItem(ctx context.Context) bool {
	key, shutdown := c.queue.Get()
	if shutdown {
		return false
	}
	defer c.queue.Done(key)

	metrics.SetWorkqueueDepth(c.queue.Len())

	// A panic inside a tick is turned into a tick failure so it is logged
	// and requeued instead of taking down the worker.
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic during sync: %v", r)
			}
		}()
		return c.syncHandler(ctx, key)
	}()
	if err != nil {
		c.queue.AddRateLimited(key)
		utilruntime.HandleError(fmt.Errorf("syncing %q: %w, requeuing", key, err))
		return true
	}

	c.queue.Forget(key)
	return true
}

// syncHandler resolves key to a live intent (or its absence) and drives one
// tick, then schedules the next one.
func (c *Controller) syncHandler(ctx context.Context, key string) error {
	namespace, name, err := cache.SplitMetaNamespaceKey(key)
	if err != nil {
		utilruntime.HandleError(fmt.Errorf("invalid resource key %q: %w", key, err))
		return nil
	}

	intent, err := c.store.Get(namespace, name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			c.teardown(key)
			return nil
		}
		return err
	}

	return c.reconcile(ctx, key, intent)
}

// teardown releases a deleted intent's binding and forgets its cooldown
// and generation bookkeeping.
func (c *Controller) teardown(key string) {
	c.bindings.Remove(key)
	c.safeScaler.Forget(key)
	c.generationsMu.Lock()
	delete(c.generations, key)
	c.generationsMu.Unlock()
}

func (c *Controller) reconcile(ctx context.Context, key string, intent *autoscalingv1alpha1.ScalingIntent) error {
	start := time.Now()
	oldStatus := intent.Status.DeepCopy()
	newStatus := intent.Status.DeepCopy()
	newStatus.ObservedGeneration = intent.Generation

	result, err := c.tick(ctx, key, intent, newStatus)
	c.commitStatus(ctx, intent, oldStatus, newStatus)

	if err != nil {
		metrics.ObserveReconcile(intent.Namespace, intent.Name, metrics.ReconcileResultError, time.Since(start).Seconds())
		return err
	}

	metrics.ObserveReconcile(intent.Namespace, intent.Name, result, time.Since(start).Seconds())
	c.queue.AddAfter(key, c.syncInterval(intent))
	return nil
}

func (c *Controller) syncInterval(intent *autoscalingv1alpha1.ScalingIntent) time.Duration {
	seconds := intent.Spec.SyncIntervalSeconds
	if seconds <= 0 {
		seconds = autoscalingv1alpha1.DefaultSyncIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// tick runs the per-intent lifecycle: validate, (re)build the binding if
// needed, then the six-step sample/decide/scale algorithm. It mutates
// newStatus in place and returns the reconcile outcome for metrics.
func (c *Controller) tick(ctx context.Context, key string, intent *autoscalingv1alpha1.ScalingIntent, newStatus *autoscalingv1alpha1.ScalingIntentStatus) (metrics.ReconcileResult, error) {
	if errs := c.validator.Validate(&intent.Spec, field.NewPath("spec")); len(errs) > 0 {
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionInvalidConfig).True("ValidationFailed", errs.ToAggregate().Error()).ObservedAt(intent.Generation).Build())
		return metrics.ReconcileResultSkipped, nil
	}

	b, err := c.ensureBinding(ctx, key, intent)
	if err != nil {
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionInvalidConfig).True("BindingFailed", err.Error()).ObservedAt(intent.Generation).Build())
		return metrics.ReconcileResultSkipped, nil
	}
	newStatus.Conditions = conditions.Set(newStatus.Conditions,
		conditions.New(autoscalingv1alpha1.ConditionInvalidConfig).False("Valid", "configuration accepted").ObservedAt(intent.Generation).Build())

	current, ok := c.readReplicas(ctx, intent, newStatus)
	if !ok {
		return metrics.ReconcileResultSkipped, nil
	}
	newStatus.CurrentReplicas = current

	sample, ok := c.sampleMetric(ctx, b, intent, newStatus)
	if !ok {
		return metrics.ReconcileResultSkipped, nil
	}
	newStatus.CurrentMetricValue = &sample.Value

	decision, err := b.Policy.Decide(policy.Inputs{
		CurrentReplicas: current,
		CurrentMetric:   sample.Value,
		TargetMetric:    intent.Spec.Metric.TargetValue,
		Min:             intent.Spec.MinReplicas,
		Max:             intent.Spec.MaxReplicas,
		LatencyMs:       sample.LatencyMs,
		ErrorRate:       sample.ErrorRate,
	})
	if err != nil {
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionInvalidConfig).True("PolicyError", err.Error()).ObservedAt(intent.Generation).Build())
		return metrics.ReconcileResultSkipped, nil
	}
	if decision.CostAdvisory {
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionCostBudgetExceeded).True("BudgetLimited", "desired replicas capped by cost budget").ObservedAt(intent.Generation).Build())
	} else {
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionCostBudgetExceeded).False("WithinBudget", "within cost budget").ObservedAt(intent.Generation).Build())
	}

	now := c.clock.Now()
	sd := c.safeScaler.Decide(key, current, decision.Replicas, intent.Spec.MinReplicas, intent.Spec.MaxReplicas, intent.Spec.Behavior, now)
	newStatus.DesiredReplicas = sd.Target

	metrics.SetReplicaGauges(intent.Namespace, intent.Name, current, sd.Target)
	metrics.SetMetricValue(intent.Namespace, intent.Name, sample.Value)

	if !sd.Act {
		return metrics.ReconcileResultSuccess, nil
	}

	return c.applyScale(ctx, key, intent, newStatus, sd, now), nil
}

func (c *Controller) ensureBinding(ctx context.Context, key string, intent *autoscalingv1alpha1.ScalingIntent) (*binding.Binding, error) {
	c.generationsMu.Lock()
	lastGen, known := c.generations[key]
	c.generationsMu.Unlock()

	if b, ok := c.bindings.Get(key); ok && known && lastGen == intent.Generation {
		return b, nil
	}

	b, err := c.bindings.Build(ctx, key, intent.Spec)
	if err != nil {
		return nil, err
	}

	if intent.Status.LastScaleTime != nil {
		c.safeScaler.SeedCooldown(key, intent.Status.LastScaleTime.Time)
	}

	c.generationsMu.Lock()
	c.generations[key] = intent.Generation
	c.generationsMu.Unlock()

	return b, nil
}

func (c *Controller) readReplicas(ctx context.Context, intent *autoscalingv1alpha1.ScalingIntent, newStatus *autoscalingv1alpha1.ScalingIntentStatus) (int32, bool) {
	callCtx, cancel := context.WithTimeout(ctx, sampleTimeout)
	defer cancel()

	current, err := c.workload.GetReplicas(callCtx, intent.Spec.Target, intent.Namespace)
	switch {
	case err == nil:
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionTargetMissing).False("Found", "target resolved").ObservedAt(intent.Generation).Build())
		return current, true
	case errors.Is(err, workload.ErrNotFound):
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionTargetMissing).True("NotFound", err.Error()).ObservedAt(intent.Generation).Build())
		return 0, false
	default:
		klog.FromContext(ctx).V(2).Info("transient error reading replicas, skipping tick", "key", intent.Namespace+"/"+intent.Name, "err", err)
		return 0, false
	}
}

// sampleMetric samples the bound Metric Source, consulting the richer
// ExtendedSampler capability when the source implements it so SLO-aware
// policies see real latency/error-rate signal instead of the zero default.
func (c *Controller) sampleMetric(ctx context.Context, b *binding.Binding, intent *autoscalingv1alpha1.ScalingIntent, newStatus *autoscalingv1alpha1.ScalingIntentStatus) (metricsource.ExtendedSample, bool) {
	if allowErr := b.Breaker.Allow(); allowErr != nil {
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionMetricUnavailable).True("CircuitOpen", allowErr.Error()).ObservedAt(intent.Generation).Build())
		return metricsource.ExtendedSample{}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, sampleTimeout)
	defer cancel()

	sample, err := sampleSource(callCtx, b.Source)
	if err != nil {
		b.Breaker.RecordFailure()
		if !errors.Is(err, metricsource.ErrUnavailable) {
			klog.FromContext(ctx).V(1).Info("unexpected metric source error", "err", err)
		}
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionMetricUnavailable).True("SampleFailed", err.Error()).ObservedAt(intent.Generation).Build())
		return metricsource.ExtendedSample{}, false
	}

	b.Breaker.RecordSuccess()
	newStatus.Conditions = conditions.Set(newStatus.Conditions,
		conditions.New(autoscalingv1alpha1.ConditionMetricUnavailable).False("Sampled", "metric source responded").ObservedAt(intent.Generation).Build())
	return sample, true
}

// sampleSource prefers a bound source's ExtendedSampler when available,
// falling back to the plain Sample contract with zero latency/error-rate.
func sampleSource(ctx context.Context, source metricsource.Source) (metricsource.ExtendedSample, error) {
	if ext, ok := source.(metricsource.ExtendedSampler); ok {
		return ext.SampleExtended(ctx)
	}
	value, err := source.Sample(ctx)
	if err != nil {
		return metricsource.ExtendedSample{}, err
	}
	return metricsource.ExtendedSample{Value: value}, nil
}

func (c *Controller) applyScale(ctx context.Context, key string, intent *autoscalingv1alpha1.ScalingIntent, newStatus *autoscalingv1alpha1.ScalingIntentStatus, sd safescaler.Decision, now time.Time) metrics.ReconcileResult {
	callCtx, cancel := context.WithTimeout(ctx, sampleTimeout)
	defer cancel()

	err := c.workload.SetReplicas(callCtx, intent.Spec.Target, intent.Namespace, sd.Target)
	if err != nil {
		newStatus.Conditions = conditions.Set(newStatus.Conditions,
			conditions.New(autoscalingv1alpha1.ConditionScalingFailed).True("WriteFailed", err.Error()).ObservedAt(intent.Generation).Build())
		c.recorder.Eventf(intent, corev1.EventTypeWarning, "ScalingFailed", "failed to scale to %d replicas: %v", sd.Target, err)
		return metrics.ReconcileResultError
	}

	c.safeScaler.RecordScale(key, now)
	t := metav1.NewTime(now)
	newStatus.LastScaleTime = &t
	newStatus.Conditions = conditions.Set(newStatus.Conditions,
		conditions.New(autoscalingv1alpha1.ConditionScalingSucceeded).True("Scaled", fmt.Sprintf("scaled to %d replicas", sd.Target)).ObservedAt(intent.Generation).Build())
	c.recorder.Eventf(intent, corev1.EventTypeNormal, "Scaled", "scaled to %d replicas (%s)", sd.Target, sd.Reason)

	return metrics.ReconcileResultSuccess
}

// commitStatus patches only the fields that changed, via the generic
// status committer.
func (c *Controller) commitStatus(ctx context.Context, intent *autoscalingv1alpha1.ScalingIntent, oldStatus, newStatus *autoscalingv1alpha1.ScalingIntentStatus) {
	commit := status.NewCommitter[autoscalingv1alpha1.ScalingIntentSpec, autoscalingv1alpha1.ScalingIntentStatus](
		namespacedPatcher{client: c.statusClient, namespace: intent.Namespace},
	)

	old := &status.Resource[autoscalingv1alpha1.ScalingIntentSpec, autoscalingv1alpha1.ScalingIntentStatus]{
		ObjectMeta: intent.ObjectMeta,
		Spec:       intent.Spec,
		Status:     *oldStatus,
	}
	obj := &status.Resource[autoscalingv1alpha1.ScalingIntentSpec, autoscalingv1alpha1.ScalingIntentStatus]{
		ObjectMeta: intent.ObjectMeta,
		Spec:       intent.Spec,
		Status:     *newStatus,
	}

	if err := commit(ctx, old, obj); err != nil {
		utilruntime.HandleError(fmt.Errorf("committing status for %s/%s: %w", intent.Namespace, intent.Name, err))
	}
}
