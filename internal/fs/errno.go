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

import "syscall"

// Errno values beyond fuse.EIO/ENOENT/ENOSYS/ENOTEMPTY: syscall.Errno
// satisfies the error interface and is recognized by the fuse package's
// dispatcher the same way its own named constants are.
const (
	errNotADirectory = syscall.ENOTDIR
	errIsADirectory  = syscall.EISDIR
	errReadOnly      = syscall.EROFS
	errInvalidArg    = syscall.EINVAL
	errBadFileNumber = syscall.EBADF
)
