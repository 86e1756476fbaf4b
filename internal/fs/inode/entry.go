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

// Package inode holds the entry model kubefuse maps onto inode numbers: the
// mountpoint, the namespace directories beneath it, and the rendered
// cluster-object files beneath those.
package inode

import (
	"fmt"
	"strings"
)

// EntryType discriminates the kinds of thing an Entry can name. Go has no
// sum types, so this plays the role of the tag in a tagged union: Entry is
// a comparable struct keyed by (Type, plus whichever fields that type
// uses), suitable as a map key in the registry's bimap.
type EntryType int

const (
	// Mountpoint is the filesystem root. There is exactly one, at inode 1.
	Mountpoint EntryType = iota

	// FreestandingDir is the fixed "_" directory holding every
	// cluster-scoped object as a flat file, namespaces included.
	FreestandingDir

	// NamespaceDir is one namespace's directory, listing every namespaced
	// object inside it as a flat file regardless of kind.
	NamespaceDir

	// ObjectNamespaced is a single rendered object that lives inside a
	// namespace.
	ObjectNamespaced

	// ObjectFreestanding is a single rendered object that is cluster-scoped
	// (including a namespace's own ".ns.yaml" representation).
	ObjectFreestanding
)

func (t EntryType) String() string {
	switch t {
	case Mountpoint:
		return "Mountpoint"
	case FreestandingDir:
		return "FreestandingDir"
	case NamespaceDir:
		return "NamespaceDir"
	case ObjectNamespaced:
		return "ObjectNamespaced"
	case ObjectFreestanding:
		return "ObjectFreestanding"
	default:
		return fmt.Sprintf("EntryType(%d)", int(t))
	}
}

// Entry identifies one thing the filesystem can name: a directory or file
// corresponding to some piece of cluster state (or the fixed scaffolding
// around it). Two Entry values are equal iff they name the same thing,
// which is exactly the property the inode registry's bijection relies on.
type Entry struct {
	Type EntryType

	// Namespace is the namespace name for NamespaceDir and
	// ObjectNamespaced entries. Empty for everything else.
	Namespace string

	// Kind is the short kind code ("ns", "no", "po", ...) for
	// ObjectNamespaced and ObjectFreestanding entries. Empty otherwise.
	Kind string

	// Name is the object name for ObjectNamespaced and ObjectFreestanding
	// entries. Empty otherwise.
	Name string
}

// RootEntry is the single Entry describing the mountpoint.
var RootEntry = Entry{Type: Mountpoint}

// FreestandingDirEntry is the single Entry describing the "_" directory.
var FreestandingDirEntry = Entry{Type: FreestandingDir}

// NewNamespaceDirEntry builds the entry for one namespace's own directory.
func NewNamespaceDirEntry(namespace string) Entry {
	return Entry{Type: NamespaceDir, Namespace: namespace}
}

// NewObjectNamespacedEntry builds the entry for a rendered object that
// lives inside namespace.
func NewObjectNamespacedEntry(namespace, kind, name string) Entry {
	return Entry{Type: ObjectNamespaced, Namespace: namespace, Kind: kind, Name: name}
}

// NewObjectFreestandingEntry builds the entry for a rendered cluster-scoped
// object (kind "ns" included, for a namespace's own file representation).
func NewObjectFreestandingEntry(kind, name string) Entry {
	return Entry{Type: ObjectFreestanding, Kind: kind, Name: name}
}

// IsDir reports whether the entry is one the dispatcher should treat as a
// directory (opendir/readdir) rather than a file (open/read).
func (e Entry) IsDir() bool {
	return e.Type == Mountpoint || e.Type == FreestandingDir || e.Type == NamespaceDir
}

// FileName returns the leaf name the kernel should see for this entry
// within its parent directory. Object files get a kind-specific suffix
// (".ns.yaml", ".po.yaml", ...) so a directory listing alone identifies
// each object's kind without a stat call. Mountpoint has no parent, so it
// has no file name.
func (e Entry) FileName() string {
	switch e.Type {
	case FreestandingDir:
		return "_"
	case NamespaceDir:
		return e.Namespace
	case ObjectNamespaced, ObjectFreestanding:
		return e.Name + "." + e.Kind + ".yaml"
	default:
		return ""
	}
}

// ParseChildName interprets name as a direct child of parent, returning
// the Entry it names. ok is false if name does not have the shape of any
// entry the dispatcher would construct under parent (the caller should
// respond ENOENT); it does not consult cluster state, so a syntactically
// valid name may still turn out not to exist (the caller checks that
// separately via entryExists).
//
// This is the inverse of FileName for object files: it must tolerate
// object names that themselves contain dots (Kubernetes names allow them,
// e.g. a Service named "my.svc"), so it splits on the kind suffix from the
// right rather than splitting on the first dot.
func ParseChildName(parent Entry, name string) (Entry, bool) {
	switch parent.Type {
	case Mountpoint:
		if name == FreestandingDirEntry.FileName() {
			return FreestandingDirEntry, true
		}
		return NewNamespaceDirEntry(name), true

	case FreestandingDir:
		objName, kind, ok := splitNameKind(name)
		if !ok {
			return Entry{}, false
		}
		return NewObjectFreestandingEntry(kind, objName), true

	case NamespaceDir:
		objName, kind, ok := splitNameKind(name)
		if !ok {
			return Entry{}, false
		}
		return NewObjectNamespacedEntry(parent.Namespace, kind, objName), true

	default:
		return Entry{}, false
	}
}

// splitNameKind parses a "<name>.<kind>.yaml" file name from the right:
// the last segment must be "yaml", the one before it is kind, and
// everything before that (which may itself contain dots) is name.
func splitNameKind(fileName string) (name, kind string, ok bool) {
	const suffix = ".yaml"
	if !strings.HasSuffix(fileName, suffix) {
		return "", "", false
	}
	rest := strings.TrimSuffix(fileName, suffix)

	i := strings.LastIndex(rest, ".")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
