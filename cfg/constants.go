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

package cfg

import "time"

const (
	// Logging-level constants.
	TRACE   string = "TRACE"
	DEBUG   string = "DEBUG"
	INFO    string = "INFO"
	WARNING string = "WARNING"
	ERROR   string = "ERROR"
	OFF     string = "OFF"
)

const (
	// DefaultDirEntryTTL is the TTL applied to dynamic entries: namespace
	// directories and object files (spec.md's SHORT class).
	DefaultDirEntryTTL = 10 * time.Second

	// DefaultRootTTL is the TTL applied to the mountpoint and the other
	// fixed, never-changing directories (spec.md's LONG class).
	DefaultRootTTL = 365 * 24 * time.Hour

	// DefaultFileMode and DefaultDirMode are the permission bits applied
	// to object files and directories absent an override.
	DefaultFileMode Octal = 0444
	DefaultDirMode  Octal = 0555
)
