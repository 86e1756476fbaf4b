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

package fs

import (
	"context"
	"errors"
	"slices"
	"sort"

	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/kubefuse/kubefuse/internal/cluster"
	"github.com/kubefuse/kubefuse/internal/fs/inode"
	"github.com/kubefuse/kubefuse/internal/kinds"
)

// entryExists reports whether entry genuinely names something in the
// current cluster state (or the fixed scaffolding), consulting the
// cluster client where the answer isn't implied by the fixed kind table
// alone.
func (fs *fileSystem) entryExists(ctx context.Context, entry inode.Entry) (bool, error) {
	switch entry.Type {
	case inode.Mountpoint, inode.FreestandingDir:
		return true, nil

	case inode.NamespaceDir:
		names, err := fs.client.ListNamespaces(ctx)
		if err != nil {
			return false, err
		}
		return slices.Contains(names, entry.Namespace), nil

	case inode.ObjectFreestanding:
		k, ok := fs.kinds.Lookup(entry.Kind)
		if !ok || k.Namespaced {
			return false, nil
		}
		return fs.objectExists(ctx, k.GVK, "", entry.Name)

	case inode.ObjectNamespaced:
		k, ok := fs.kinds.Lookup(entry.Kind)
		if !ok || !k.Namespaced {
			return false, nil
		}
		return fs.objectExists(ctx, k.GVK, entry.Namespace, entry.Name)

	default:
		return false, nil
	}
}

func (fs *fileSystem) objectExists(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) (bool, error) {
	_, err := fs.client.Get(ctx, gvk, namespace, name)
	if errors.Is(err, cluster.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// childrenOf returns the entries that should appear inside the given
// directory entry, in a stable order. Callers must have already
// established that entry is a directory. The "." and ".." entries are
// synthesized by the caller, not by childrenOf.
func (fs *fileSystem) childrenOf(ctx context.Context, entry inode.Entry) ([]inode.Entry, error) {
	switch entry.Type {
	case inode.Mountpoint:
		names, err := fs.client.ListNamespaces(ctx)
		if err != nil {
			return nil, err
		}
		sort.Strings(names)
		children := make([]inode.Entry, 0, len(names)+1)
		children = append(children, inode.FreestandingDirEntry)
		for _, name := range names {
			children = append(children, inode.NewNamespaceDirEntry(name))
		}
		return children, nil

	case inode.FreestandingDir:
		var children []inode.Entry

		// Namespaces themselves are cluster-scoped objects and so appear
		// here as flat files, not as the NamespaceDir entries they also
		// name one level up.
		nsNames, err := fs.client.ListNamespaces(ctx)
		if err != nil {
			return nil, err
		}
		sort.Strings(nsNames)
		for _, name := range nsNames {
			children = append(children, inode.NewObjectFreestandingEntry(kinds.Namespace, name))
		}

		for _, code := range fs.kinds.ClusterScopedCodes() {
			k, _ := fs.kinds.Lookup(code)
			names, err := fs.client.ListClusterScoped(ctx, k.GVK)
			if err != nil {
				return nil, err
			}
			sort.Strings(names)
			for _, name := range names {
				children = append(children, inode.NewObjectFreestandingEntry(code, name))
			}
		}
		return children, nil

	case inode.NamespaceDir:
		var children []inode.Entry
		for _, code := range fs.kinds.NamespacedCodes() {
			k, _ := fs.kinds.Lookup(code)
			names, err := fs.client.ListNamespaced(ctx, k.GVK, entry.Namespace)
			if err != nil {
				return nil, err
			}
			sort.Strings(names)
			for _, name := range names {
				children = append(children, inode.NewObjectNamespacedEntry(entry.Namespace, code, name))
			}
		}
		return children, nil

	default:
		return nil, nil
	}
}

// objectYAML fetches and renders the object named by entry (an
// ObjectNamespaced or ObjectFreestanding entry) as YAML bytes.
func (fs *fileSystem) objectYAML(ctx context.Context, entry inode.Entry) ([]byte, error) {
	k, ok := fs.kinds.Lookup(entry.Kind)
	if !ok {
		return nil, cluster.ErrNotFound
	}
	obj, err := fs.client.Get(ctx, k.GVK, entry.Namespace, entry.Name)
	if err != nil {
		return nil, err
	}
	return renderYAML(obj)
}
