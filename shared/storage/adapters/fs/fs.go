// Package fs implements the local output workspace.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vesla0x1/codegrabber/shared/observability/types"
	storage "github.com/vesla0x1/codegrabber/shared/storage/types"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Workspace implements storage.Workspace on the local filesystem
type Workspace struct {
	root    string
	logger  types.Logger
	metrics types.Metrics

	// locks holds one *sync.Mutex per absolute file path
	locks sync.Map
}

// NewWorkspace creates the output root if needed and returns a workspace
// rooted at its absolute path.
func NewWorkspace(root string, logger types.Logger, metrics types.Metrics) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output root: %w", err)
	}

	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}

	return &Workspace{
		root:    abs,
		logger:  logger.WithFields(types.Fields{"storage": "filesystem"}),
		metrics: metrics,
	}, nil
}

// Root returns the absolute output root
func (w *Workspace) Root() string {
	return w.root
}

// EnsureContainer creates <root>/<container> if it does not exist
func (w *Workspace) EnsureContainer(ctx context.Context, container string) (string, error) {
	dir, err := w.containerPath(container)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		w.metrics.RecordError("mkdir", "filesystem")
		return "", fmt.Errorf("failed to create container directory: %w", err)
	}

	return dir, nil
}

// EnsureFile creates the placeholder for identifier under container
func (w *Workspace) EnsureFile(ctx context.Context, container, identifier string) (bool, error) {
	dir, file, err := w.resolve(container, identifier)
	if err != nil {
		return false, err
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		w.metrics.RecordError("mkdir", "filesystem")
		return false, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if file == "" {
		return false, nil
	}

	target := filepath.Join(dir, file)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		w.metrics.RecordError("create", "filesystem")
		return false, fmt.Errorf("failed to create placeholder %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("failed to close placeholder %s: %w", target, err)
	}

	w.metrics.RecordSuccess("create")
	w.logger.Debug(ctx, "placeholder created", types.Fields{"path": target})

	return true, nil
}

// Append writes data at the end of the file for identifier
func (w *Workspace) Append(ctx context.Context, container, identifier string, data []byte) (int, error) {
	dir, file, err := w.resolve(container, identifier)
	if err != nil {
		return 0, err
	}
	if file == "" {
		return 0, fmt.Errorf("%w: %q names a directory", storage.ErrPathRejected, identifier)
	}

	target := filepath.Join(dir, file)

	mu := w.lockFor(target)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		w.metrics.RecordError("append", "filesystem")
		return 0, fmt.Errorf("failed to open %s: %w", target, err)
	}

	n, err := f.Write(data)
	closeErr := f.Close()
	if err != nil {
		w.metrics.RecordError("append", "filesystem")
		return n, fmt.Errorf("failed to append to %s: %w", target, err)
	}
	if closeErr != nil {
		return n, fmt.Errorf("failed to close %s: %w", target, closeErr)
	}

	w.metrics.RecordSuccess("append")
	return n, nil
}

// List walks the container and returns every regular file in lexical order
func (w *Workspace) List(ctx context.Context, container string) ([]storage.ObjectInfo, error) {
	dir, err := w.containerPath(container)
	if err != nil {
		return nil, err
	}

	var objects []storage.ObjectInfo
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		objects = append(objects, storage.ObjectInfo{
			Key:          filepath.ToSlash(rel),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: container %s", storage.ErrObjectNotFound, container)
		}
		return nil, fmt.Errorf("failed to list container %s: %w", container, err)
	}

	return objects, nil
}

// Open opens a file previously returned by List
func (w *Workspace) Open(ctx context.Context, container, key string) (io.ReadCloser, error) {
	dir, file, err := w.resolve(container, key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", storage.ErrObjectNotFound, container, key)
		}
		return nil, fmt.Errorf("failed to open %s/%s: %w", container, key, err)
	}
	return f, nil
}

func (w *Workspace) containerPath(container string) (string, error) {
	if err := storage.ValidateContainer(container); err != nil {
		return "", err
	}
	return filepath.Join(w.root, container), nil
}

// resolve maps identifier to an absolute directory and file name under the
// container, refusing anything that escapes it
func (w *Workspace) resolve(container, identifier string) (string, string, error) {
	base, err := w.containerPath(container)
	if err != nil {
		return "", "", err
	}

	relDir, file, err := storage.SplitIdentifier(identifier)
	if err != nil {
		return "", "", err
	}

	dir := filepath.Join(base, filepath.FromSlash(relDir))
	if !within(base, filepath.Join(dir, file)) {
		return "", "", fmt.Errorf("%w: %q escapes container %s", storage.ErrPathRejected, identifier, container)
	}

	return dir, file, nil
}

func (w *Workspace) lockFor(path string) *sync.Mutex {
	mu, _ := w.locks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
