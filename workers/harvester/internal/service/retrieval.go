package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/remeh/sizedwaitgroup"

	"github.com/vesla0x1/codegrabber/shared/config"
	"github.com/vesla0x1/codegrabber/shared/observability/types"
	storage "github.com/vesla0x1/codegrabber/shared/storage/types"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/domain"
)

// RetrievalOptions configures the RetrievalEngine
type RetrievalOptions struct {
	// Concurrency caps the number of fetches in flight
	Concurrency int
	// PayloadSelector locates the element holding the file text
	PayloadSelector string
}

// RetrievalEngine fetches editor pages concurrently and appends each page's
// payload to the file named by the page's own "file" parameter
type RetrievalEngine struct {
	client    domain.HTTPClient
	workspace storage.Workspace
	opts      RetrievalOptions
	logger    types.Logger
	metrics   types.Metrics
}

// NewRetrievalEngine creates a new retrieval engine
func NewRetrievalEngine(client domain.HTTPClient, workspace storage.Workspace, opts RetrievalOptions, logger types.Logger, metrics types.Metrics) *RetrievalEngine {
	if opts.Concurrency < 1 {
		opts.Concurrency = config.DefaultConcurrency
	}
	if opts.PayloadSelector == "" {
		opts.PayloadSelector = config.DefaultPayloadSelector
	}

	return &RetrievalEngine{
		client:    client,
		workspace: workspace,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// Retrieve runs one task per URL on a bounded pool and returns once every
// task has finished. A failed task is logged and abandoned without affecting
// its siblings. Only an unusable container is reported as an error.
func (r *RetrievalEngine) Retrieve(ctx context.Context, container string, urls []string) error {
	if _, err := r.workspace.EnsureContainer(ctx, container); err != nil {
		if errors.Is(err, storage.ErrInvalidContainer) {
			return domain.NewDomainError(domain.CodeInvalidContainer, "cannot retrieve into "+container, err, false)
		}
		return domain.NewDomainError(domain.CodeLayoutFailed, "container directory unavailable", err, false)
	}

	swg := sizedwaitgroup.New(r.opts.Concurrency)
	for _, u := range urls {
		// Stop scheduling once the run is cancelled; started tasks finish
		if ctx.Err() != nil {
			break
		}
		if err := swg.AddWithContext(ctx); err != nil {
			break
		}
		go func(fetchURL string) {
			defer swg.Done()
			r.retrieveOne(ctx, container, fetchURL)
		}(u)
	}
	swg.Wait()

	return nil
}

func (r *RetrievalEngine) retrieveOne(ctx context.Context, container, fetchURL string) {
	r.metrics.StartOperation("retrieve")
	defer r.metrics.EndOperation("retrieve")
	start := time.Now()
	defer func() {
		r.metrics.RecordDuration("retrieve", time.Since(start).Seconds())
	}()

	log := r.logger.WithFields(types.Fields{"url": fetchURL})

	body, err := r.client.Fetch(ctx, fetchURL)
	if err != nil {
		r.metrics.RecordError("retrieve", "transport")
		log.Error(ctx, "failed to fetch file", err, nil)
		return
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		r.metrics.RecordError("retrieve", "parse_failed")
		log.Error(ctx, "failed to parse file page", err, nil)
		return
	}

	payload := doc.Find(r.opts.PayloadSelector).First()
	if payload.Length() == 0 {
		r.metrics.RecordError("retrieve", "missing_payload")
		log.Warn(ctx, "payload container not found", types.Fields{"selector": r.opts.PayloadSelector})
		return
	}
	content := strings.TrimSpace(payload.Text())

	parsed, err := url.Parse(fetchURL)
	if err != nil {
		r.metrics.RecordError("retrieve", "parse_failed")
		log.Error(ctx, "failed to parse fetch URL", err, nil)
		return
	}

	identifier, ok := fileParam(parsed)
	if !ok {
		r.metrics.RecordError("retrieve", "missing_file_param")
		log.Warn(ctx, "no file parameter in URL", nil)
		return
	}

	written, err := r.workspace.Append(ctx, container, identifier, []byte(content))
	if errors.Is(err, storage.ErrPathRejected) {
		r.metrics.RecordError("retrieve", "path_rejected")
		log.Warn(ctx, "unsafe file path skipped", types.Fields{"file": identifier})
		return
	}
	if err != nil {
		r.metrics.RecordError("retrieve", "write_failed")
		log.Error(ctx, "failed to append content", err, types.Fields{"file": identifier})
		return
	}

	fileType := extension(identifier)
	if fileType == "" {
		fileType = "none"
	}
	r.metrics.RecordSuccess("retrieve")
	r.metrics.RecordFileSize(fileType, int64(written))
	log.Info(ctx, "content added to file", types.Fields{
		"file":  identifier,
		"bytes": written,
	})
}
