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

package inode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRegistry_SeedsRootAndFreestanding(t *testing.T) {
	r := NewRegistry(false)

	root, ok := r.EntryByID(RootInodeID)
	assert.True(t, ok)
	assert.Equal(t, RootEntry, root)

	freestanding, ok := r.EntryByID(FreestandingInodeID)
	assert.True(t, ok)
	assert.Equal(t, FreestandingDirEntry, freestanding)

	assert.Equal(t, 2, r.Len())
}

func TestIntern_FreestandingDirAlreadyBound(t *testing.T) {
	r := NewRegistry(false)

	id := r.Intern(FreestandingDirEntry)

	assert.Equal(t, FreestandingInodeID, id)
	assert.Equal(t, 2, r.Len())
}

func TestIntern_StableAcrossCalls(t *testing.T) {
	r := NewRegistry(false)
	e := NewObjectNamespacedEntry("default", "po", "my-pod")

	id1 := r.Intern(e)
	id2 := r.Intern(e)

	assert.Equal(t, id1, id2)
}

func TestIntern_DistinctEntriesGetDistinctIDs(t *testing.T) {
	r := NewRegistry(false)

	a := r.Intern(NewObjectNamespacedEntry("default", "po", "a"))
	b := r.Intern(NewObjectNamespacedEntry("default", "po", "b"))

	assert.NotEqual(t, a, b)
}

func TestEntryByID_UnknownInode(t *testing.T) {
	r := NewRegistry(false)
	_, ok := r.EntryByID(RootInodeID + 999)
	assert.False(t, ok)
}

func TestIDByEntry_DoesNotAllocate(t *testing.T) {
	r := NewRegistry(false)
	e := NewObjectNamespacedEntry("default", "po", "my-pod")

	_, ok := r.IDByEntry(e)
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())

	id := r.Intern(e)
	gotID, ok := r.IDByEntry(e)
	assert.True(t, ok)
	assert.Equal(t, id, gotID)
}

func TestIntern_ConcurrentSameEntry(t *testing.T) {
	r := NewRegistry(false)
	e := NewObjectNamespacedEntry("default", "po", "my-pod")

	const n = 50
	results := make([]uint64, n)
	done := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			results[i] = uint64(r.Intern(e))
			done <- i
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	first := results[0]
	for _, got := range results {
		assert.Equal(t, first, got)
	}
}
