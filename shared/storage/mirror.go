// Package storage wires the workspace to optional export sinks.
package storage

import (
	"context"
	"fmt"
	"mime"
	"path"
	"time"

	"github.com/vesla0x1/codegrabber/shared/config"
	"github.com/vesla0x1/codegrabber/shared/observability/types"
	"github.com/vesla0x1/codegrabber/shared/storage/adapters/fs"
	"github.com/vesla0x1/codegrabber/shared/storage/adapters/s3"
	storage "github.com/vesla0x1/codegrabber/shared/storage/types"
)

// NewWorkspace returns the filesystem workspace rooted at the configured
// output directory.
func NewWorkspace(cfg *config.Config, logger types.Logger, metrics types.Metrics) (storage.Workspace, error) {
	return fs.NewWorkspace(cfg.Harvest.OutputDir, logger, metrics)
}

// NewExporter returns the configured mirror sink, or nil when exporting is
// disabled.
func NewExporter(ctx context.Context, cfg *config.Config, logger types.Logger, metrics types.Metrics) (storage.ObjectSink, error) {
	if !cfg.Export.Enabled() {
		return nil, nil
	}

	client, err := s3.NewClient(ctx, cfg.Export, cfg.HTTP.Timeout, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 exporter: %w", err)
	}
	return client, nil
}

// Mirror copies every file of a container to sink under
// <prefix>/<container>/<key>. It stops at the first failed upload and returns
// how many objects were stored.
func Mirror(ctx context.Context, ws storage.Workspace, sink storage.ObjectSink, container, prefix string) (int, error) {
	objects, err := ws.List(ctx, container)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		if err := mirrorOne(ctx, ws, sink, container, prefix, obj); err != nil {
			return stored, err
		}
		stored++
	}

	return stored, nil
}

func mirrorOne(ctx context.Context, ws storage.Workspace, sink storage.ObjectSink, container, prefix string, obj storage.ObjectInfo) error {
	reader, err := ws.Open(ctx, container, obj.Key)
	if err != nil {
		return err
	}
	defer reader.Close()

	metadata := storage.ObjectMetadata{
		ContentType:   mime.TypeByExtension(path.Ext(obj.Key)),
		ContentLength: obj.Size,
		UserMetadata: map[string]string{
			"container":     container,
			"last-modified": obj.LastModified.UTC().Format(time.RFC3339),
		},
	}

	return sink.Put(ctx, ObjectKey(prefix, container, obj.Key), reader, metadata)
}

// ObjectKey joins the mirror prefix, container and relative key
func ObjectKey(prefix, container, key string) string {
	return path.Join(prefix, container, key)
}
