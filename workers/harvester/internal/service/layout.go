package service

import (
	"context"
	"errors"

	"github.com/vesla0x1/codegrabber/shared/observability/types"
	storage "github.com/vesla0x1/codegrabber/shared/storage/types"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/domain"
)

// LayoutBuilder materializes the directory tree and empty placeholders for a
// manifest before any content is fetched
type LayoutBuilder struct {
	workspace storage.Workspace
	logger    types.Logger
	metrics   types.Metrics
}

// NewLayoutBuilder creates a new layout builder
func NewLayoutBuilder(workspace storage.Workspace, logger types.Logger, metrics types.Metrics) *LayoutBuilder {
	return &LayoutBuilder{
		workspace: workspace,
		logger:    logger,
		metrics:   metrics,
	}
}

// Build ensures <root>/<container>/<identifier> exists for every identifier.
// It is additive: existing files are never truncated, nothing is removed, and
// re-running it over a partial tree is safe. Unsafe identifiers are skipped
// with a warning. Any filesystem error aborts the build.
func (b *LayoutBuilder) Build(ctx context.Context, container string, identifiers []string) error {
	b.metrics.StartOperation("layout")
	defer b.metrics.EndOperation("layout")

	if err := storage.ValidateContainer(container); err != nil {
		b.metrics.RecordError("layout", "invalid_container")
		return domain.NewDomainError(domain.CodeInvalidContainer, "cannot lay out container "+container, err, false)
	}

	if _, err := b.workspace.EnsureContainer(ctx, container); err != nil {
		b.metrics.RecordError("layout", "write_failed")
		return domain.NewDomainError(domain.CodeLayoutFailed, "failed to create container directory", err, false)
	}

	created, skipped := 0, 0
	for _, identifier := range identifiers {
		if err := ctx.Err(); err != nil {
			return domain.NewDomainError(domain.CodeLayoutFailed, "layout cancelled", err, false)
		}

		isNew, err := b.workspace.EnsureFile(ctx, container, identifier)
		if errors.Is(err, storage.ErrPathRejected) {
			skipped++
			b.metrics.RecordError("layout", "path_rejected")
			b.logger.Warn(ctx, "unsafe file path skipped", types.Fields{
				"file":   identifier,
				"reason": err.Error(),
			})
			continue
		}
		if err != nil {
			b.metrics.RecordError("layout", "write_failed")
			return domain.NewDomainError(domain.CodeLayoutFailed, "failed to create placeholder for "+identifier, err, false)
		}
		if isNew {
			created++
		}
	}

	b.metrics.RecordSuccess("layout")
	b.logger.Debug(ctx, "layout ready", types.Fields{
		"files":   len(identifiers),
		"created": created,
		"skipped": skipped,
	})

	return nil
}
