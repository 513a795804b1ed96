// Package types holds the storage contracts: the local workspace harvested
// files are laid out in, and the object sinks a finished container can be
// mirrored to.
package types

import (
	"context"
	"io"
	"time"
)

// Workspace is the output tree. Every operation is scoped to a container
// directory directly under the root, and identifiers are normalized with
// NormalizeIdentifier before they touch the disk.
type Workspace interface {
	// Root returns the absolute output root.
	Root() string

	// EnsureContainer creates the container directory if needed and returns
	// its path. Existing directories are left untouched.
	EnsureContainer(ctx context.Context, container string) (string, error)

	// EnsureFile creates the directories of identifier and an empty file at
	// its path when none exists. Existing files are never truncated. created
	// reports whether a new placeholder was written. Bare directory
	// references only create directories.
	EnsureFile(ctx context.Context, container, identifier string) (created bool, err error)

	// Append adds data to the end of the file for identifier. Appends to the
	// same file are serialized and each one is a single write.
	Append(ctx context.Context, container, identifier string, data []byte) (int, error)

	// List returns every regular file under the container, keyed by its
	// slash-separated path relative to the container directory.
	List(ctx context.Context, container string) ([]ObjectInfo, error)

	// Open opens a listed file for reading.
	Open(ctx context.Context, container, key string) (io.ReadCloser, error)
}

// ObjectSink receives finished files, e.g. an S3 bucket.
type ObjectSink interface {
	Put(ctx context.Context, key string, reader io.Reader, metadata ObjectMetadata) error
}

// ObjectInfo describes one stored file
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectMetadata is attached to mirrored objects
type ObjectMetadata struct {
	ContentType   string
	ContentLength int64
	UserMetadata  map[string]string
}
