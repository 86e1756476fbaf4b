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

// Package clustertest provides an in-memory fake cluster.Client for tests,
// the same role gcsfuse's fs/fstesting package plays for a fake GCS
// bucket: a hand-written stand-in for the one external dependency the
// code under test talks to.
package clustertest

import (
	"context"
	"sync"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/kubefuse/kubefuse/internal/cluster"
)

type objectKey struct {
	gvk       schema.GroupVersionKind
	namespace string
	name      string
}

// Fake is an in-memory cluster.Client. The zero value is ready to use.
type Fake struct {
	mu      sync.Mutex
	objects map[objectKey]*unstructured.Unstructured
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{objects: make(map[objectKey]*unstructured.Unstructured)}
}

// AddNamespace registers a namespace so it shows up in ListNamespaces.
func (f *Fake) AddNamespace(name string) {
	f.AddObject(schema.GroupVersionKind{Group: "", Version: "v1", Kind: "Namespace"}, "", name, nil)
}

// AddObject registers an object of the given kind, namespace (empty for
// cluster-scoped), and name. extra fields, if provided, are set at the
// object's top level, next to apiVersion, kind and metadata.
func (f *Fake) AddObject(gvk schema.GroupVersionKind, namespace, name string, extra map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.objects == nil {
		f.objects = make(map[objectKey]*unstructured.Unstructured)
	}

	obj := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": gvk.GroupVersion().String(),
		"kind":       gvk.Kind,
		"metadata": map[string]interface{}{
			"name": name,
		},
	}}
	if namespace != "" {
		obj.SetNamespace(namespace)
	}
	for k, v := range extra {
		obj.Object[k] = v
	}

	f.objects[objectKey{gvk: gvk, namespace: namespace, name: name}] = obj
}

func (f *Fake) ListNamespaces(ctx context.Context) ([]string, error) {
	return f.ListClusterScoped(ctx, schema.GroupVersionKind{Group: "", Version: "v1", Kind: "Namespace"})
}

func (f *Fake) ListNamespaced(ctx context.Context, gvk schema.GroupVersionKind, namespace string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var names []string
	for k := range f.objects {
		if k.gvk == gvk && k.namespace == namespace {
			names = append(names, k.name)
		}
	}
	return names, nil
}

func (f *Fake) ListClusterScoped(ctx context.Context, gvk schema.GroupVersionKind) ([]string, error) {
	return f.ListNamespaced(ctx, gvk, "")
}

func (f *Fake) Get(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) (*unstructured.Unstructured, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.objects[objectKey{gvk: gvk, namespace: namespace, name: name}]
	if !ok {
		return nil, cluster.ErrNotFound
	}
	return obj.DeepCopy(), nil
}

var _ cluster.Client = (*Fake)(nil)
