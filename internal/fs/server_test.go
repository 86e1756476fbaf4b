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
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kubefuse/kubefuse/clock"
	"github.com/kubefuse/kubefuse/internal/fs/inode"
)

func TestTTLFor_RootAndFreestandingGetRootTTL(t *testing.T) {
	fs := &fileSystem{dirEntryTTL: time.Second, rootTTL: time.Hour}

	assert.Equal(t, time.Hour, fs.ttlFor(inode.RootEntry))
	assert.Equal(t, time.Hour, fs.ttlFor(inode.FreestandingDirEntry))
}

func TestTTLFor_DynamicEntriesGetDirEntryTTL(t *testing.T) {
	fs := &fileSystem{dirEntryTTL: time.Second, rootTTL: time.Hour}

	assert.Equal(t, time.Second, fs.ttlFor(inode.NewNamespaceDirEntry("default")))
	assert.Equal(t, time.Second, fs.ttlFor(inode.NewObjectNamespacedEntry("default", "po", "my-pod")))
	assert.Equal(t, time.Second, fs.ttlFor(inode.NewObjectFreestandingEntry("no", "node-1")))
}

func TestAttributesFor_DirectoryVsFile(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(1000, 0))
	fs := &fileSystem{
		clock:    sc,
		uid:      1000,
		gid:      2000,
		fileMode: 0o444,
		dirMode:  0o555,
	}

	dirAttrs := fs.attributesFor(inode.FreestandingDirEntry)
	assert.True(t, dirAttrs.Mode&os.ModeDir != 0)
	assert.Equal(t, os.FileMode(0o555)|os.ModeDir, dirAttrs.Mode)
	assert.EqualValues(t, 0, dirAttrs.Size)
	assert.Equal(t, uint32(2), dirAttrs.Nlink)
	assert.Equal(t, uint32(1000), dirAttrs.Uid)
	assert.Equal(t, uint32(2000), dirAttrs.Gid)
	assert.Equal(t, sc.Now(), dirAttrs.Mtime)

	fileAttrs := fs.attributesFor(inode.NewObjectNamespacedEntry("default", "po", "my-pod"))
	assert.Equal(t, os.FileMode(0o444), fileAttrs.Mode)
	assert.Equal(t, uint32(1), fileAttrs.Nlink)
}

func TestAttributesFor_TracksClockAdvance(t *testing.T) {
	sc := clock.NewSimulatedClock(time.Unix(1000, 0))
	fs := &fileSystem{clock: sc, dirMode: 0o555}

	first := fs.attributesFor(inode.FreestandingDirEntry)
	sc.AdvanceTime(time.Minute)
	second := fs.attributesFor(inode.FreestandingDirEntry)

	assert.True(t, second.Mtime.After(first.Mtime))
}
