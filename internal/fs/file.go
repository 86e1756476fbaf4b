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
	"errors"
	"sync"
	"syscall"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"

	"github.com/kubefuse/kubefuse/internal/cluster"
)

// fileBody is the snapshot of an object's rendered YAML taken at open
// time: spec.md's FileBody. Reads against the same handle always see
// this fixed snapshot; a fresh open observes current cluster state.
type fileBody struct {
	data []byte
}

// fileHandleTable hands out and tracks open file handles, mirroring
// dirHandleTable's independence-per-handle contract.
type fileHandleTable struct {
	mu     sync.Mutex
	next   fuseops.HandleID
	bodies map[fuseops.HandleID]*fileBody
}

func newFileHandleTable() *fileHandleTable {
	return &fileHandleTable{
		next:   1,
		bodies: make(map[fuseops.HandleID]*fileBody),
	}
}

func (t *fileHandleTable) open(data []byte) fuseops.HandleID {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.next
	t.next++
	t.bodies[id] = &fileBody{data: data}
	return id
}

func (t *fileHandleTable) get(id fuseops.HandleID) (*fileBody, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.bodies[id]
	return b, ok
}

func (t *fileHandleTable) release(id fuseops.HandleID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.bodies, id)
}

// isWriteIntent reports whether flags request write access. kubefuse is
// read-only (spec.md Non-goals), so any write-intent open is rejected
// with EROFS before a handle is minted.
func isWriteIntent(flags uint32) bool {
	return flags&syscall.O_ACCMODE != syscall.O_RDONLY
}

func (fs *fileSystem) OpenFile(op *fuseops.OpenFileOp) {
	var err error
	defer func() { op.Respond(err) }()

	if isWriteIntent(uint32(op.Flags)) {
		err = errReadOnly
		return
	}

	entry, ok := fs.registry.EntryByID(op.Inode)
	if !ok {
		err = fuse.ENOENT
		return
	}
	if entry.IsDir() {
		err = errIsADirectory
		return
	}

	data, fetchErr := fs.objectYAML(op.Context(), entry)
	if fetchErr != nil {
		if errors.Is(fetchErr, cluster.ErrNotFound) {
			err = fuse.ENOENT
			return
		}
		err = fuse.EIO
		return
	}

	op.Handle = fs.fileHandles.open(data)
}

func (fs *fileSystem) ReadFile(op *fuseops.ReadFileOp) {
	var err error
	defer func() { op.Respond(err) }()

	body, ok := fs.fileHandles.get(op.Handle)
	if !ok {
		err = errInvalidArg
		return
	}

	if int(op.Offset) > len(body.data) {
		return
	}

	end := int(op.Offset) + op.Size
	if end > len(body.data) {
		end = len(body.data)
	}
	op.Data = make([]byte, end-int(op.Offset))
	copy(op.Data, body.data[op.Offset:end])
}

func (fs *fileSystem) ReleaseFileHandle(op *fuseops.ReleaseFileHandleOp) {
	var err error
	defer func() { op.Respond(err) }()

	if _, ok := fs.fileHandles.get(op.Handle); !ok {
		err = errInvalidArg
		return
	}
	fs.fileHandles.release(op.Handle)
}
