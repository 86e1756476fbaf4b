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
	"sync"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/kubefuse/kubefuse/internal/fs/inode"
)

// dirStream is the snapshot of a directory's contents taken at opendir
// time: spec.md's DirStream. Reading the same handle with increasing
// offsets always sees this fixed snapshot, even if the cluster changes
// mid-stream; a fresh opendir is required to observe new state.
type dirStream struct {
	entries []fuseutil.Dirent
}

// dirHandleTable hands out and tracks open directory handles. Each handle
// is independent: two concurrent opendir calls on the same inode get
// their own snapshot and offset, per spec.md §5.
type dirHandleTable struct {
	mu      sync.Mutex
	next    fuseops.HandleID
	streams map[fuseops.HandleID]*dirStream
}

func newDirHandleTable() *dirHandleTable {
	return &dirHandleTable{
		next:    1,
		streams: make(map[fuseops.HandleID]*dirStream),
	}
}

func (t *dirHandleTable) open(entries []fuseutil.Dirent) fuseops.HandleID {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.next
	t.next++
	t.streams[id] = &dirStream{entries: entries}
	return id
}

func (t *dirHandleTable) get(id fuseops.HandleID) (*dirStream, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.streams[id]
	return s, ok
}

func (t *dirHandleTable) release(id fuseops.HandleID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.streams, id)
}

func direntType(entry inode.Entry) fuseutil.DirentType {
	if entry.IsDir() {
		return fuseutil.DT_Directory
	}
	return fuseutil.DT_File
}

func (fs *fileSystem) OpenDir(op *fuseops.OpenDirOp) {
	var err error
	defer func() { op.Respond(err) }()

	entry, ok := fs.registry.EntryByID(op.Inode)
	if !ok {
		err = fuse.ENOENT
		return
	}
	if !entry.IsDir() {
		err = errNotADirectory
		return
	}

	children, err := fs.childrenOf(op.Context(), entry)
	if err != nil {
		err = fuse.EIO
		return
	}

	dirents := make([]fuseutil.Dirent, 0, len(children)+2)
	dirents = append(dirents,
		fuseutil.Dirent{Offset: 1, Inode: op.Inode, Name: ".", Type: fuseutil.DT_Directory},
		fuseutil.Dirent{Offset: 2, Inode: inode.RootInodeID, Name: "..", Type: fuseutil.DT_Directory},
	)
	for i, child := range children {
		id := fs.registry.Intern(child)
		dirents = append(dirents, fuseutil.Dirent{
			Offset: fuseops.DirOffset(i + 3),
			Inode:  id,
			Name:   child.FileName(),
			Type:   direntType(child),
		})
	}

	op.Handle = fs.dirHandles.open(dirents)
}

func (fs *fileSystem) ReadDir(op *fuseops.ReadDirOp) {
	var err error
	defer func() { op.Respond(err) }()

	stream, ok := fs.dirHandles.get(op.Handle)
	if !ok {
		err = fuse.ENOSYS
		return
	}

	if int(op.Offset) > len(stream.entries) {
		err = errInvalidArg
		return
	}

	for _, e := range stream.entries[op.Offset:] {
		data := fuseutil.AppendDirent(op.Data, e)
		if len(data) > op.Size {
			break
		}
		op.Data = data
	}
}

func (fs *fileSystem) ReleaseDirHandle(op *fuseops.ReleaseDirHandleOp) {
	var err error
	defer func() { op.Respond(err) }()

	if _, ok := fs.dirHandles.get(op.Handle); !ok {
		err = errBadFileNumber
		return
	}
	fs.dirHandles.release(op.Handle)
}
