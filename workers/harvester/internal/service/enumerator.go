package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vesla0x1/codegrabber/shared/config"
	"github.com/vesla0x1/codegrabber/shared/observability/types"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/domain"
)

// Enumerator lists the per-plugin editor documents offered by the plugin
// selector page
type Enumerator struct {
	client   domain.HTTPClient
	selectID string
	logger   types.Logger
	metrics  types.Metrics
}

// NewEnumerator creates an enumerator reading the select control with id
// selectID
func NewEnumerator(client domain.HTTPClient, selectID string, logger types.Logger, metrics types.Metrics) *Enumerator {
	if selectID == "" {
		selectID = config.DefaultPluginSelectID
	}

	return &Enumerator{
		client:   client,
		selectID: selectID,
		logger:   logger,
		metrics:  metrics,
	}
}

// Enumerate returns one document URL per option of the selector. Failures
// are logged and yield an empty list; they never stop the run.
func (e *Enumerator) Enumerate(ctx context.Context, selectorURL string) []string {
	urls := []string{}

	body, err := e.client.Fetch(ctx, selectorURL)
	if err != nil {
		e.metrics.RecordError("enumerate", "transport")
		e.logger.Error(ctx, "failed to fetch plugin selector", err, types.Fields{"url": selectorURL})
		return urls
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		e.metrics.RecordError("enumerate", "parse_failed")
		e.logger.Error(ctx, "failed to parse plugin selector", err, types.Fields{"url": selectorURL})
		return urls
	}

	selector := doc.Find(fmt.Sprintf("select[id=%q]", e.selectID)).First()
	if selector.Length() == 0 {
		e.metrics.RecordError("enumerate", "missing_select")
		e.logger.Warn(ctx, "plugin selector not found", types.Fields{
			"url":       selectorURL,
			"select_id": e.selectID,
		})
		return urls
	}

	selector.Find("option").Each(func(_ int, option *goquery.Selection) {
		value, ok := option.Attr("value")
		if !ok || value == "" {
			return
		}
		urls = append(urls, PluginDocumentURL(selectorURL, value))
	})

	e.metrics.RecordSuccess("enumerate")
	e.logger.Debug(ctx, "plugins enumerated", types.Fields{"plugins": len(urls)})

	return urls
}

// PluginDocumentURL builds <selectorURL>?plugin=<value>&Submit=Select
func PluginDocumentURL(selectorURL, value string) string {
	sep := "?"
	if strings.Contains(selectorURL, "?") {
		sep = "&"
	}
	return selectorURL + sep + "plugin=" + url.QueryEscape(value) + "&Submit=Select"
}
