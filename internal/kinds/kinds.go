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

// Package kinds holds the fixed table mapping kubefuse's short kind
// codes ("ns", "no", "po", ...) to the Kubernetes GroupVersionKind and scope
// they name. Dynamic kind/CRD discovery is out of scope (spec.md §9); the
// table is deliberately small and hardcoded.
package kinds

import "k8s.io/apimachinery/pkg/runtime/schema"

// Kind describes one entry in the fixed kind table.
type Kind struct {
	// Code is the short kind code the filesystem exposes as the
	// file-suffix of object files of this kind ("po" -> "x.po.yaml").
	Code string

	// GVK is the Kubernetes GroupVersionKind this code names.
	GVK schema.GroupVersionKind

	// Namespaced is true if objects of this kind live inside a namespace
	// (and so appear as files directly in that namespace's directory),
	// false if they are cluster-scoped (and so appear as files directly
	// in the "_" directory).
	Namespaced bool
}

// Namespace is the synthetic kind code for namespace objects themselves;
// it is namespaced=false (namespaces are cluster-scoped) but is handled
// distinctly from the rest of the table because namespaces are listed
// through ListNamespaces, which also drives the per-namespace directories
// under the mountpoint.
const Namespace = "ns"

// defaultTable is the fixed set of kinds kubefuse understands. Extending
// it to arbitrary CRDs would require the dynamic discovery spec.md
// explicitly places out of scope; this table is configuration, not a
// mechanism, and can be grown by editing this slice.
var defaultTable = []Kind{
	{
		Code:       Namespace,
		GVK:        schema.GroupVersionKind{Group: "", Version: "v1", Kind: "Namespace"},
		Namespaced: false,
	},
	{
		Code:       "no",
		GVK:        schema.GroupVersionKind{Group: "", Version: "v1", Kind: "Node"},
		Namespaced: false,
	},
	{
		Code:       "po",
		GVK:        schema.GroupVersionKind{Group: "", Version: "v1", Kind: "Pod"},
		Namespaced: true,
	},
	{
		Code:       "svc",
		GVK:        schema.GroupVersionKind{Group: "", Version: "v1", Kind: "Service"},
		Namespaced: true,
	},
	{
		Code:       "cm",
		GVK:        schema.GroupVersionKind{Group: "", Version: "v1", Kind: "ConfigMap"},
		Namespaced: true,
	},
	{
		Code:       "deploy",
		GVK:        schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "Deployment"},
		Namespaced: true,
	},
	{
		Code:       "rs",
		GVK:        schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "ReplicaSet"},
		Namespaced: true,
	},
	{
		Code:       "sts",
		GVK:        schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "StatefulSet"},
		Namespaced: true,
	},
	{
		Code:       "ds",
		GVK:        schema.GroupVersionKind{Group: "apps", Version: "v1", Kind: "DaemonSet"},
		Namespaced: true,
	},
}

// Table is an immutable-by-convention lookup over the kind list, built
// once at startup.
type Table struct {
	byCode map[string]Kind
	// namespacedCodes and clusterCodes are cached in registration order so
	// directory listings are stable across calls.
	namespacedCodes []string
	clusterCodes    []string
}

// NewDefaultTable builds the Table from the fixed default kind list.
func NewDefaultTable() *Table {
	return newTable(defaultTable)
}

func newTable(kinds []Kind) *Table {
	t := &Table{byCode: make(map[string]Kind, len(kinds))}
	for _, k := range kinds {
		t.byCode[k.Code] = k
		if k.Code == Namespace {
			continue
		}
		if k.Namespaced {
			t.namespacedCodes = append(t.namespacedCodes, k.Code)
		} else {
			t.clusterCodes = append(t.clusterCodes, k.Code)
		}
	}
	return t
}

// Lookup returns the Kind registered for code, if any.
func (t *Table) Lookup(code string) (Kind, bool) {
	k, ok := t.byCode[code]
	return k, ok
}

// NamespacedCodes returns the short codes of kinds that live inside a
// namespace directory, in a stable order.
func (t *Table) NamespacedCodes() []string {
	return append([]string(nil), t.namespacedCodes...)
}

// ClusterScopedCodes returns the short codes of cluster-scoped kinds
// (excluding the "ns" namespace code itself, which the "_" listing
// handles separately via ListNamespaces), in a stable order.
func (t *Table) ClusterScopedCodes() []string {
	return append([]string(nil), t.clusterCodes...)
}
