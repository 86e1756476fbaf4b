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

// Package mountsession owns the lifecycle of one FUSE mount: performing
// the mount, running the kernel request loop on its own goroutine, and
// unmounting on request.
//
// This is kubefuse's translation of the original implementation's
// AsyncSession, which wrapped a blocking kernel channel in tokio's
// AsyncFd so the rest of the async runtime was never blocked waiting on
// it. jacobsa/fuse already dispatches every kernel request on its own
// goroutine internally, so the translation that matters here is simpler:
// run the mount and the blocking wait for its completion
// (fuse.MountedFileSystem.Join) off the caller's goroutine, so starting a
// mount session never blocks the caller past the initial handshake.
package mountsession

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jacobsa/fuse"

	"github.com/kubefuse/kubefuse/internal/logger"
)

// Session represents one active (or completing) FUSE mount.
type Session struct {
	id         string
	mountPoint string
	mfs        *fuse.MountedFileSystem
	done       chan error
}

// Mount mounts server at mountPoint and starts a goroutine that waits for
// the mount to finish (whether via Unmount or a kernel-initiated
// teardown), reporting the result on the channel Wait returns.
func Mount(mountPoint string, server fuse.Server, cfg *fuse.MountConfig) (*Session, error) {
	id := uuid.NewString()

	mfs, err := fuse.Mount(mountPoint, server, cfg)
	if err != nil {
		return nil, fmt.Errorf("mount: %w", err)
	}

	s := &Session{
		id:         id,
		mountPoint: mountPoint,
		mfs:        mfs,
		done:       make(chan error, 1),
	}

	go func() {
		err := mfs.Join(context.Background())
		logger.Infof("mount session %s at %s finished: %v", s.id, s.mountPoint, err)
		s.done <- err
	}()

	logger.Infof("mount session %s started at %s", id, mountPoint)
	return s, nil
}

// Wait blocks until the mount has finished (normally because it was
// unmounted), returning the error the kernel loop exited with, if any.
func (s *Session) Wait() error {
	return <-s.done
}

// Unmount requests that the kernel tear down the mount. Wait will then
// return once the teardown completes.
func (s *Session) Unmount() error {
	return fuse.Unmount(s.mountPoint)
}
