package usecase

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/vesla0x1/codegrabber/shared/observability/types"
	mirror "github.com/vesla0x1/codegrabber/shared/storage"
	storage "github.com/vesla0x1/codegrabber/shared/storage/types"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/domain"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/service"
)

// Options selects the flows of a run and where they read from
type Options struct {
	ThemeEditorURL  string
	PluginEditorURL string
	RunTheme        bool
	RunPlugin       bool
	// PluginContainer receives every plugin's files
	PluginContainer string
	// ExportPrefix is prepended to object keys when a sink is configured
	ExportPrefix string
}

// Harvester drives one run: theme flow first, then plugin flow, each
// container processed to completion before the next one starts
type Harvester struct {
	client     domain.HTTPClient
	extractor  *service.ManifestExtractor
	layout     *service.LayoutBuilder
	enumerator *service.Enumerator
	retrieval  *service.RetrievalEngine
	workspace  storage.Workspace
	sink       storage.ObjectSink
	opts       Options
	logger     types.Logger
	metrics    types.Metrics
}

// NewHarvester wires the pipeline stages together. sink may be nil, in which
// case nothing is mirrored.
func NewHarvester(
	client domain.HTTPClient,
	extractor *service.ManifestExtractor,
	layout *service.LayoutBuilder,
	enumerator *service.Enumerator,
	retrieval *service.RetrievalEngine,
	workspace storage.Workspace,
	sink storage.ObjectSink,
	opts Options,
	logger types.Logger,
	metrics types.Metrics,
) *Harvester {
	return &Harvester{
		client:     client,
		extractor:  extractor,
		layout:     layout,
		enumerator: enumerator,
		retrieval:  retrieval,
		workspace:  workspace,
		sink:       sink,
		opts:       opts,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes the selected flows. Failures inside a flow are logged and
// contained; Run only returns the context error when the run was cancelled.
func (h *Harvester) Run(ctx context.Context) error {
	ctx = types.WithRunID(ctx, uuid.NewString())

	h.metrics.StartOperation("harvest")
	defer h.metrics.EndOperation("harvest")
	start := time.Now()
	defer func() {
		h.metrics.RecordDuration("harvest", time.Since(start).Seconds())
	}()

	h.logger.Info(ctx, "harvest started", types.Fields{
		"theme":  h.opts.RunTheme,
		"plugin": h.opts.RunPlugin,
	})

	if h.opts.RunTheme {
		h.harvestTheme(ctx)
	}
	if h.opts.RunPlugin && ctx.Err() == nil {
		h.harvestPlugins(ctx)
	}

	if err := ctx.Err(); err != nil {
		h.metrics.RecordError("harvest", "cancelled")
		h.logger.Warn(ctx, "harvest cancelled", nil)
		return err
	}

	h.metrics.RecordSuccess("harvest")
	h.logger.Info(ctx, "download completed", types.Fields{
		"duration_seconds": time.Since(start).Seconds(),
	})
	return nil
}

func (h *Harvester) harvestTheme(ctx context.Context) {
	manifest, ok := h.readDocument(ctx, h.opts.ThemeEditorURL, domain.ModeThemeEditor)
	if !ok {
		return
	}

	ctx = types.WithContainer(ctx, manifest.Container)
	if !h.buildLayout(ctx, manifest) {
		return
	}
	h.logger.Info(ctx, "theme detected", types.Fields{
		"theme": manifest.Container,
		"files": len(manifest.Identifiers()),
	})

	h.retrieve(ctx, manifest)
	h.export(ctx, manifest.Container)
}

func (h *Harvester) harvestPlugins(ctx context.Context) {
	documents := h.enumerator.Enumerate(ctx, h.opts.PluginEditorURL)
	h.logger.Info(ctx, "plugins enumerated", types.Fields{"plugins": len(documents)})
	if len(documents) == 0 {
		return
	}

	for _, documentURL := range documents {
		if ctx.Err() != nil {
			return
		}

		manifest, ok := h.readDocument(ctx, documentURL, domain.ModePluginEditor)
		if !ok {
			continue
		}

		pctx := types.WithContainer(ctx, manifest.Container)
		if !h.buildLayout(pctx, manifest) {
			continue
		}
		h.retrieve(pctx, manifest)
	}

	h.export(types.WithContainer(ctx, h.opts.PluginContainer), h.opts.PluginContainer)
}

// readDocument fetches and extracts one editor document. A false result
// means the document is unusable and has already been logged.
func (h *Harvester) readDocument(ctx context.Context, documentURL string, mode domain.Mode) (*domain.Manifest, bool) {
	log := h.logger.WithFields(types.Fields{"url": documentURL})

	base, err := url.Parse(documentURL)
	if err != nil {
		h.metrics.RecordError("harvest", "invalid_document_url")
		log.Error(ctx, "invalid editor document URL", err, nil)
		return nil, false
	}

	body, err := h.client.Fetch(ctx, documentURL)
	if err != nil {
		h.metrics.RecordError("harvest", "document_fetch")
		log.Error(ctx, "failed to fetch editor document", err, nil)
		return nil, false
	}
	defer body.Close()

	manifest, err := h.extractor.Extract(ctx, body, mode, base)
	if err != nil {
		h.metrics.RecordError("harvest", "document_parse")
		log.Error(ctx, "failed to read editor document", err, nil)
		return nil, false
	}

	if manifest.Empty() {
		log.Warn(ctx, "no editable files referenced", types.Fields{"container": manifest.Container})
	}
	return manifest, true
}

func (h *Harvester) buildLayout(ctx context.Context, manifest *domain.Manifest) bool {
	if err := h.layout.Build(ctx, manifest.Container, manifest.Identifiers()); err != nil {
		h.metrics.RecordError("harvest", "layout")
		h.logger.Error(ctx, "failed to build layout", err, nil)
		return false
	}
	return true
}

func (h *Harvester) retrieve(ctx context.Context, manifest *domain.Manifest) {
	if manifest.Empty() {
		return
	}
	if err := h.retrieval.Retrieve(ctx, manifest.Container, manifest.URLs()); err != nil {
		h.metrics.RecordError("harvest", "retrieve")
		h.logger.Error(ctx, "failed to retrieve files", err, nil)
	}
}

// export mirrors a finished container to the configured sink
func (h *Harvester) export(ctx context.Context, container string) {
	if h.sink == nil || ctx.Err() != nil {
		return
	}

	stored, err := mirror.Mirror(ctx, h.workspace, h.sink, container, h.opts.ExportPrefix)
	if errors.Is(err, storage.ErrObjectNotFound) {
		h.logger.Debug(ctx, "nothing to mirror", nil)
		return
	}
	if err != nil {
		h.metrics.RecordError("harvest", "export")
		h.logger.Error(ctx, "failed to mirror container", err, types.Fields{"stored": stored})
		return
	}
	h.logger.Info(ctx, "container mirrored", types.Fields{"objects": stored})
}
