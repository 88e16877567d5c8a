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

// Package status provides a generic status-subresource committer: it
// diffs a resource's Status field before and after a tick, produces a JSON
// merge patch restricted to the status subtree, and applies it with
// conflict retry. The reconciliation core never writes spec through this
// path — a panic guards against that by construction.
package status

import (
	"context"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/google/go-cmp/cmp"

	"k8s.io/apimachinery/pkg/api/equality"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/util/retry"
	"k8s.io/klog/v2"
)

// Resource is a generic wrapper carrying just enough of an object's
// identity and typed spec/status to build a status-only merge patch.
type Resource[Sp any, St any] struct {
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              Sp `json:"spec"`
	Status            St `json:"status,omitempty"`
}

// Patcher is the minimal Patch API a status committer needs. Satisfied by
// any generated clientset's typed Status().Patch method, or a fake.
type Patcher interface {
	Patch(ctx context.Context, name string, pt types.PatchType, data []byte, opts metav1.PatchOptions, subresources ...string) error
}

// CommitFunc commits the status difference between old and obj, a no-op if
// Status is unchanged.
type CommitFunc[Sp any, St any] func(ctx context.Context, old, obj *Resource[Sp, St]) error

// NewCommitter builds a CommitFunc backed by patcher, retrying on
// resource-version conflict with client-go's retry.DefaultRetry backoff
// (at most five attempts in all).
func NewCommitter[Sp any, St any](patcher Patcher) CommitFunc[Sp, St] {
	return func(ctx context.Context, old, obj *Resource[Sp, St]) error {
		patchBytes, err := generateStatusPatch(old, obj)
		if err != nil {
			return fmt.Errorf("building status patch for %s: %w", obj.Name, err)
		}
		if len(patchBytes) == 0 {
			klog.FromContext(ctx).V(3).Info("no status changes detected", "name", obj.Name)
			return nil
		}

		logger := klog.FromContext(ctx).WithValues("name", obj.Name, "namespace", obj.Namespace)
		logger.V(2).Info("patching status", "patch", string(patchBytes))

		return retry.RetryOnConflict(retry.DefaultRetry, func() error {
			return patcher.Patch(ctx, obj.Name, types.MergePatchType, patchBytes, metav1.PatchOptions{}, "status")
		})
	}
}

// generateStatusPatch computes a JSON merge patch containing only the
// status field. When Status differs, it panics if Spec also differs between
// old and obj: a status committer that mutates spec is a programming error,
// not a runtime one. An unchanged Status returns an empty patch without
// comparing Spec.
func generateStatusPatch[Sp any, St any](old, obj *Resource[Sp, St]) ([]byte, error) {
	if equality.Semantic.DeepEqual(old.Status, obj.Status) {
		return nil, nil
	}

	if !equality.Semantic.DeepEqual(old.Spec, obj.Spec) {
		panic(fmt.Sprintf("status committer: spec changed during a status-only commit, diff=%s", cmp.Diff(old.Spec, obj.Spec)))
	}

	oldForPatch := &Resource[Sp, St]{Status: old.Status}
	newForPatch := &Resource[Sp, St]{Status: obj.Status}

	oldData, err := json.Marshal(oldForPatch)
	if err != nil {
		return nil, fmt.Errorf("marshaling old status: %w", err)
	}
	newData, err := json.Marshal(newForPatch)
	if err != nil {
		return nil, fmt.Errorf("marshaling new status: %w", err)
	}

	return jsonpatch.CreateMergePatch(oldData, newData)
}
