package service

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vesla0x1/codegrabber/shared/config"
	"github.com/vesla0x1/codegrabber/shared/observability/types"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/domain"
)

// ExtractorOptions configures the ManifestExtractor
type ExtractorOptions struct {
	// AdditionalExtensions widen the allowed set beyond BaseExtensions
	AdditionalExtensions []string
	// FallbackContainer names the theme container when no href carries a
	// theme parameter
	FallbackContainer string
	// PluginContainer is the container for every plugin-editor document
	PluginContainer string
	// KeepExtensionless keeps identifiers without any extension
	KeepExtensionless bool
}

// ManifestExtractor finds the editable files referenced by an editor page
type ManifestExtractor struct {
	opts    ExtractorOptions
	allowed map[string]bool
	logger  types.Logger
	metrics types.Metrics
}

// NewManifestExtractor creates a new manifest extractor
func NewManifestExtractor(opts ExtractorOptions, logger types.Logger, metrics types.Metrics) *ManifestExtractor {
	if opts.FallbackContainer == "" {
		opts.FallbackContainer = config.DefaultFallbackContainer
	}
	if opts.PluginContainer == "" {
		opts.PluginContainer = config.DefaultPluginContainer
	}

	return &ManifestExtractor{
		opts:    opts,
		allowed: allowedExtensions(opts.AdditionalExtensions),
		logger:  logger,
		metrics: metrics,
	}
}

// Extract parses one editor document. Every element with an href is
// inspected in document order; hrefs whose "file" parameter names a file with
// an allowed extension become manifest entries. Relative hrefs are resolved
// against base when it is non-nil.
//
// A document without matching elements yields an empty manifest, not an
// error.
func (e *ManifestExtractor) Extract(ctx context.Context, body io.Reader, mode domain.Mode, base *url.URL) (*domain.Manifest, error) {
	start := time.Now()
	defer func() {
		e.metrics.RecordDuration("extract", time.Since(start).Seconds())
	}()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		e.metrics.RecordError("extract", "parse_failed")
		return nil, domain.NewDomainError(domain.CodeParseFailed, "failed to parse editor document", err, false)
	}

	manifest := &domain.Manifest{}
	seen := make(map[domain.Entry]bool)
	theme := ""
	dropped := 0

	doc.Find("[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)

		u, err := url.Parse(href)
		if err != nil {
			return
		}

		// The last theme parameter in the document wins
		if value, ok := queryParam(u, "theme"); ok {
			theme = value
		}

		identifier, ok := fileParam(u)
		if !ok {
			return
		}

		ext := extension(identifier)
		if (ext == "" && !e.opts.KeepExtensionless) || (ext != "" && !e.allowed[ext]) {
			dropped++
			e.logger.Debug(ctx, "file skipped", types.Fields{
				"file":      identifier,
				"extension": ext,
			})
			return
		}

		fetchURL := href
		if base != nil {
			fetchURL = base.ResolveReference(u).String()
		}

		entry := domain.Entry{Identifier: identifier, URL: fetchURL}
		if seen[entry] {
			return
		}
		seen[entry] = true
		manifest.Entries = append(manifest.Entries, entry)
	})

	switch {
	case mode == domain.ModePluginEditor:
		manifest.Container = e.opts.PluginContainer
	case theme != "":
		manifest.Container = theme
	default:
		manifest.Container = e.opts.FallbackContainer
	}

	e.metrics.RecordSuccess("extract")
	e.logger.Debug(ctx, "manifest extracted", types.Fields{
		"mode":      string(mode),
		"container": manifest.Container,
		"files":     len(manifest.Entries),
		"skipped":   dropped,
	})

	return manifest, nil
}
