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
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/kubefuse/kubefuse/internal/cluster/clustertest"
	"github.com/kubefuse/kubefuse/internal/fs/inode"
	"github.com/kubefuse/kubefuse/internal/kinds"
)

func newTestFileSystem(client *clustertest.Fake) *fileSystem {
	return &fileSystem{
		client:      client,
		kinds:       kinds.NewDefaultTable(),
		registry:    inode.NewRegistry(false),
		dirHandles:  newDirHandleTable(),
		fileHandles: newFileHandleTable(),
	}
}

func TestChildrenOf_Root(t *testing.T) {
	client := clustertest.New()
	client.AddNamespace("default")
	client.AddNamespace("kube-system")
	fs := newTestFileSystem(client)

	children, err := fs.childrenOf(context.Background(), inode.RootEntry)
	assert.NoError(t, err)
	assert.Equal(t, []inode.Entry{
		inode.FreestandingDirEntry,
		inode.NewNamespaceDirEntry("default"),
		inode.NewNamespaceDirEntry("kube-system"),
	}, children)
}

func TestChildrenOf_FreestandingDir_ListsNamespacesAndClusterScopedObjectsFlattened(t *testing.T) {
	client := clustertest.New()
	client.AddNamespace("default")
	client.AddObject(nodeGVK(), "", "node-1", nil)
	fs := newTestFileSystem(client)

	children, err := fs.childrenOf(context.Background(), inode.FreestandingDirEntry)
	assert.NoError(t, err)
	assert.Contains(t, children, inode.NewObjectFreestandingEntry("ns", "default"))
	assert.Contains(t, children, inode.NewObjectFreestandingEntry("no", "node-1"))
	assert.NotContains(t, children, inode.NewNamespaceDirEntry("default"))
}

func TestChildrenOf_NamespaceDir_ListsNamespacedObjectsFlattenedAcrossKinds(t *testing.T) {
	client := clustertest.New()
	client.AddObject(podGVK(), "kube-system", "coredns-x", nil)
	client.AddObject(podGVK(), "kube-system", "coredns-y", nil)
	fs := newTestFileSystem(client)

	children, err := fs.childrenOf(context.Background(), inode.NewNamespaceDirEntry("kube-system"))
	assert.NoError(t, err)
	assert.ElementsMatch(t, []inode.Entry{
		inode.NewObjectNamespacedEntry("kube-system", "po", "coredns-x"),
		inode.NewObjectNamespacedEntry("kube-system", "po", "coredns-y"),
	}, children)
}

func TestEntryExists_ObjectNamespaced(t *testing.T) {
	client := clustertest.New()
	client.AddObject(podGVK(), "default", "my-pod", nil)
	fs := newTestFileSystem(client)

	ctx := context.Background()
	exists, err := fs.entryExists(ctx, inode.NewObjectNamespacedEntry("default", "po", "my-pod"))
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = fs.entryExists(ctx, inode.NewObjectNamespacedEntry("default", "po", "missing"))
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestEntryExists_ObjectFreestanding_NamespaceItself(t *testing.T) {
	client := clustertest.New()
	client.AddNamespace("default")
	fs := newTestFileSystem(client)

	exists, err := fs.entryExists(context.Background(), inode.NewObjectFreestandingEntry("ns", "default"))
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestEntryExists_NamespaceDir(t *testing.T) {
	client := clustertest.New()
	client.AddNamespace("default")
	fs := newTestFileSystem(client)

	ctx := context.Background()
	exists, err := fs.entryExists(ctx, inode.NewNamespaceDirEntry("default"))
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = fs.entryExists(ctx, inode.NewNamespaceDirEntry("nonexistent"))
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestEntryExists_KindScopeMismatchRejected(t *testing.T) {
	client := clustertest.New()
	client.AddObject(podGVK(), "default", "my-pod", nil)
	fs := newTestFileSystem(client)

	ctx := context.Background()
	// "po" is namespaced; asking for it as a freestanding object must not
	// find the namespaced one.
	exists, err := fs.entryExists(ctx, inode.NewObjectFreestandingEntry("po", "my-pod"))
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestObjectYAML_RendersFetchedObject(t *testing.T) {
	client := clustertest.New()
	client.AddObject(podGVK(), "default", "my-pod", nil)
	fs := newTestFileSystem(client)

	data, err := fs.objectYAML(context.Background(), inode.NewObjectNamespacedEntry("default", "po", "my-pod"))
	assert.NoError(t, err)
	assert.Contains(t, string(data), "name: my-pod")
	assert.Contains(t, string(data), "kind: Pod")
}

func podGVK() schema.GroupVersionKind {
	k, _ := kinds.NewDefaultTable().Lookup("po")
	return k.GVK
}

func nodeGVK() schema.GroupVersionKind {
	k, _ := kinds.NewDefaultTable().Lookup("no")
	return k.GVK
}
