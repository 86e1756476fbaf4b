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
	"testing"

	"github.com/jacobsa/fuse/fuseutil"
	"github.com/stretchr/testify/assert"

	"github.com/kubefuse/kubefuse/internal/fs/inode"
)

func TestDirentType(t *testing.T) {
	assert.Equal(t, fuseutil.DT_Directory, direntType(inode.FreestandingDirEntry))
	assert.Equal(t, fuseutil.DT_File, direntType(inode.NewObjectNamespacedEntry("default", "po", "my-pod")))
}

func TestDirHandleTable_HandlesAreIndependentPerOpen(t *testing.T) {
	table := newDirHandleTable()

	h1 := table.open([]fuseutil.Dirent{{Name: "a"}})
	h2 := table.open([]fuseutil.Dirent{{Name: "a"}, {Name: "b"}})
	assert.NotEqual(t, h1, h2)

	s1, ok := table.get(h1)
	assert.True(t, ok)
	assert.Len(t, s1.entries, 1)

	s2, ok := table.get(h2)
	assert.True(t, ok)
	assert.Len(t, s2.entries, 2)
}

func TestDirHandleTable_ReleaseInvalidatesHandle(t *testing.T) {
	table := newDirHandleTable()
	h := table.open(nil)

	table.release(h)

	_, ok := table.get(h)
	assert.False(t, ok)
}

func TestDirHandleTable_UnknownHandleNotFound(t *testing.T) {
	table := newDirHandleTable()
	_, ok := table.get(999)
	assert.False(t, ok)
}
