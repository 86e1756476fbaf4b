// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cluster defines kubefuse's view of a Kubernetes API server: the
// handful of read operations the operation dispatcher needs, independent
// of how they are actually served (a real client-go dynamic client, or a
// fake for tests).
package cluster

import (
	"context"
	"errors"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ErrNotFound is returned by Get when no object exists for the requested
// name. The List methods return an empty list, not ErrNotFound, when a
// namespace or kind has nothing to show. The dispatcher maps this to
// fuse.ENOENT.
var ErrNotFound = errors.New("cluster: object not found")

// Client is the read-only view of a cluster kubefuse needs. Every method
// takes a context so callers (the operation dispatcher) can bound cluster
// round-trips by the lifetime of the FUSE request that triggered them.
type Client interface {
	// ListNamespaces returns the names of all namespaces in the cluster.
	ListNamespaces(ctx context.Context) ([]string, error)

	// ListNamespaced returns the names of all objects of the given kind
	// (a schema.GroupVersionKind) within namespace.
	ListNamespaced(ctx context.Context, gvk schema.GroupVersionKind, namespace string) ([]string, error)

	// ListClusterScoped returns the names of all objects of the given
	// cluster-scoped kind.
	ListClusterScoped(ctx context.Context, gvk schema.GroupVersionKind) ([]string, error)

	// Get fetches one object by kind and name. namespace is empty for a
	// cluster-scoped kind. Returns ErrNotFound if no such object exists.
	Get(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) (*unstructured.Unstructured, error)
}
