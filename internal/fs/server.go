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

// Package fs implements the operation dispatcher: the fuseutil.FileSystem
// that turns kernel FUSE requests into inode-registry lookups and
// cluster-client calls.
package fs

import (
	"os"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"

	"github.com/kubefuse/kubefuse/internal/cluster"
	"github.com/kubefuse/kubefuse/internal/fs/inode"
	"github.com/kubefuse/kubefuse/internal/kinds"
	"github.com/kubefuse/kubefuse/internal/logger"
)

// ServerConfig carries everything NewServer needs to build the
// filesystem: the cluster client to serve listings and reads from, the
// fixed kind table, and the presentation knobs (ownership, permissions,
// cache TTLs).
type ServerConfig struct {
	Client cluster.Client
	Kinds  *kinds.Table
	Clock  timeutil.Clock

	Uid uint32
	Gid uint32

	FileMode os.FileMode
	DirMode  os.FileMode

	// DirEntryTTL is the kernel attribute/entry cache TTL applied to
	// dynamic entries (spec's SHORT class); RootTTL is applied to the
	// mountpoint and other entries that never change (spec's LONG class).
	DirEntryTTL time.Duration
	RootTTL     time.Duration

	// DirectIO is stored on the fileSystem but not read anywhere: neither
	// OpenFile nor the caller's fuse.MountConfig sets a direct-I/O option,
	// so this value does not change how the kernel caches file reads.
	DirectIO bool

	ExitOnInvariantViolation bool
}

// fileSystem is the dispatcher. Every FileSystem method it does not
// implement falls back to NotImplementedFileSystem's ENOSYS response,
// which is correct for every op spec.md places out of scope (writes,
// renames, xattrs, links, ...).
type fileSystem struct {
	fuseutil.NotImplementedFileSystem

	client cluster.Client
	kinds  *kinds.Table
	clock  timeutil.Clock

	registry *inode.Registry

	uid uint32
	gid uint32

	fileMode os.FileMode
	dirMode  os.FileMode

	dirEntryTTL time.Duration
	rootTTL     time.Duration
	directIO    bool

	dirHandles  *dirHandleTable
	fileHandles *fileHandleTable
}

// NewServer builds a fuse.Server that implements kubefuse's read-only
// view of a cluster, following the teacher's NewServer(cfg) ->
// fuseutil.NewFileSystemServer(fs) construction.
func NewServer(cfg *ServerConfig) (fuse.Server, error) {
	fs := &fileSystem{
		client:      cfg.Client,
		kinds:       cfg.Kinds,
		clock:       cfg.Clock,
		registry:    inode.NewRegistry(cfg.ExitOnInvariantViolation),
		uid:         cfg.Uid,
		gid:         cfg.Gid,
		fileMode:    cfg.FileMode,
		dirMode:     cfg.DirMode,
		dirEntryTTL: cfg.DirEntryTTL,
		rootTTL:     cfg.RootTTL,
		directIO:    cfg.DirectIO,
		dirHandles:  newDirHandleTable(),
		fileHandles: newFileHandleTable(),
	}
	return fuseutil.NewFileSystemServer(fs), nil
}

func (fs *fileSystem) Init(op *fuseops.InitOp) {
	logger.Infof("fuse init: protocol negotiated")
	op.Respond(nil)
}

// ttlFor returns the attribute/entry cache TTL that applies to entry.
func (fs *fileSystem) ttlFor(entry inode.Entry) time.Duration {
	if entry.Type == inode.Mountpoint || entry.Type == inode.FreestandingDir {
		return fs.rootTTL
	}
	return fs.dirEntryTTL
}

// attributesFor builds the fuseops.InodeAttributes the kernel should see
// for entry. Directory sizes are a nominal 0 for this synthetic
// filesystem; see DESIGN.md for the file-size policy.
func (fs *fileSystem) attributesFor(entry inode.Entry) fuseops.InodeAttributes {
	now := fs.clock.Now()
	mode := fs.dirMode
	nlink := uint32(2)
	if entry.Type == inode.ObjectNamespaced || entry.Type == inode.ObjectFreestanding {
		mode = fs.fileMode
		nlink = 1
	} else {
		mode |= os.ModeDir
	}

	return fuseops.InodeAttributes{
		Size:   0,
		Nlink:  nlink,
		Mode:   mode,
		Atime:  now,
		Mtime:  now,
		Ctime:  now,
		Crtime: now,
		Uid:    fs.uid,
		Gid:    fs.gid,
	}
}

func (fs *fileSystem) LookUpInode(op *fuseops.LookUpInodeOp) {
	var err error
	defer func() { op.Respond(err) }()

	parentEntry, ok := fs.registry.EntryByID(op.Parent)
	if !ok {
		err = errInvalidArg
		return
	}
	if !parentEntry.IsDir() {
		err = errNotADirectory
		return
	}

	childEntry, ok := inode.ParseChildName(parentEntry, op.Name)
	if !ok {
		err = fuse.ENOENT
		return
	}

	exists, err := fs.entryExists(op.Context(), childEntry)
	if err != nil {
		err = fuse.EIO
		return
	}
	if !exists {
		err = fuse.ENOENT
		return
	}

	id := fs.registry.Intern(childEntry)
	op.Entry = fuseops.ChildInodeEntry{
		Child:                id,
		Attributes:           fs.attributesFor(childEntry),
		AttributesExpiration: fs.clock.Now().Add(fs.ttlFor(childEntry)),
		EntryExpiration:      fs.clock.Now().Add(fs.ttlFor(childEntry)),
	}
}

func (fs *fileSystem) GetInodeAttributes(op *fuseops.GetInodeAttributesOp) {
	var err error
	defer func() { op.Respond(err) }()

	entry, ok := fs.registry.EntryByID(op.Inode)
	if !ok {
		err = errInvalidArg
		return
	}

	op.Attributes = fs.attributesFor(entry)
	op.AttributesExpiration = fs.clock.Now().Add(fs.ttlFor(entry))
}
