package usecase

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vesla0x1/codegrabber/shared/config"
	obmocks "github.com/vesla0x1/codegrabber/shared/observability/mocks"
	"github.com/vesla0x1/codegrabber/shared/observability/types"
	"github.com/vesla0x1/codegrabber/shared/storage/adapters/fs"
	stmocks "github.com/vesla0x1/codegrabber/shared/storage/mocks"
	storage "github.com/vesla0x1/codegrabber/shared/storage/types"
	httpclient "github.com/vesla0x1/codegrabber/workers/harvester/internal/adapters/http"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/domain"
	"github.com/vesla0x1/codegrabber/workers/harvester/internal/service"
)

const sessionCookie = "wordpress_logged_in_abc=admin%7C123"

// fakeSite imitates the two editor screens of a WordPress admin
type fakeSite struct {
	theme      string
	themeFiles map[string]string
	plugins    map[string]map[string]string
	broken     map[string]bool

	pluginSelectorHits int32
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		theme: "mytheme",
		themeFiles: map[string]string{
			"index.php":  "<?php get_header(); ?>",
			"inc/a.php":  "<?php // helpers",
			"js/app.js":  "console.log('x');",
			"style.css":  "body { margin: 0 }",
			"readme.txt": "Theme readme",
		},
		plugins: map[string]map[string]string{
			"akismet/akismet.php": {
				"akismet/akismet.php":       "<?php /* Plugin Name: Akismet */",
				"akismet/class.akismet.php": "<?php class Akismet {}",
			},
			"hello.php": {
				"hello.php": "<?php /* Hello Dolly */",
			},
		},
		broken: map[string]bool{},
	}
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("wordpress_logged_in_abc")
	if err != nil || cookie.Value != "admin%7C123" {
		http.Error(w, "Sorry, you are not allowed to edit templates for this site.", http.StatusForbidden)
		return
	}

	q := r.URL.Query()
	switch r.URL.Path {
	case "/wp-admin/theme-editor.php":
		if file := q.Get("file"); file != "" {
			s.servePayload(w, s.themeFiles, file)
			return
		}
		s.serveListing(w, "theme-editor.php", s.themeFiles, "theme="+url.QueryEscape(s.theme))
	case "/wp-admin/plugin-editor.php":
		plugin := q.Get("plugin")
		if plugin == "" {
			atomic.AddInt32(&s.pluginSelectorHits, 1)
			s.serveSelector(w)
			return
		}
		if s.broken[plugin] {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		files := s.plugins[plugin]
		if file := q.Get("file"); file != "" {
			s.servePayload(w, files, file)
			return
		}
		s.serveListing(w, "plugin-editor.php", files, "plugin="+url.QueryEscape(plugin))
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeSite) serveListing(w http.ResponseWriter, editor string, files map[string]string, extra string) {
	var b strings.Builder
	b.WriteString(`<html><body><ul id="templateside">`)
	for id := range files {
		fmt.Fprintf(&b, `<li><a href="%s?file=%s&amp;%s">%s</a></li>`, editor, url.QueryEscape(id), extra, html.EscapeString(id))
	}
	b.WriteString(`</ul></body></html>`)
	fmt.Fprint(w, b.String())
}

func (s *fakeSite) serveSelector(w http.ResponseWriter) {
	var b strings.Builder
	b.WriteString(`<html><body><form><select name="plugin" id="plugin">`)
	for _, plugin := range []string{"akismet/akismet.php", "broken/broken.php", "hello.php"} {
		fmt.Fprintf(&b, `<option value="%s">%s</option>`, html.EscapeString(plugin), plugin)
	}
	b.WriteString(`</select></form></body></html>`)
	fmt.Fprint(w, b.String())
}

func (s *fakeSite) servePayload(w http.ResponseWriter, files map[string]string, file string) {
	content, ok := files[file]
	if !ok {
		http.NotFound(w, nil)
		return
	}
	fmt.Fprintf(w, `<html><body><form><textarea name="newcontent" id="newcontent">
%s
</textarea></form></body></html>`, html.EscapeString(content))
}

type fixture struct {
	harvester *Harvester
	root      string
	logger    *obmocks.MockLogger
	sink      *stmocks.MockObjectSink
}

func newFixture(t *testing.T, site *fakeSite, cookie string, opts Options, withSink bool) *fixture {
	t.Helper()

	server := httptest.NewServer(site)
	t.Cleanup(server.Close)

	nopLogger := obmocks.NewNopLogger()
	nopMetrics := obmocks.NewNopMetrics()

	ws, err := fs.NewWorkspace(t.TempDir(), nopLogger, nopMetrics)
	require.NoError(t, err)

	client := httpclient.NewClient(config.HTTPConfig{Timeout: 5 * time.Second}, domain.ParseCookieString(cookie), nopLogger, nopMetrics)

	var sink storage.ObjectSink
	var mockSink *stmocks.MockObjectSink
	if withSink {
		mockSink = new(stmocks.MockObjectSink)
		mockSink.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		sink = mockSink
	}

	target := config.TargetConfig{BaseURL: server.URL}
	if opts.ThemeEditorURL == "" {
		opts.ThemeEditorURL = target.ThemeEditorURL()
	}
	if opts.PluginEditorURL == "" {
		opts.PluginEditorURL = target.PluginEditorURL()
	}
	if opts.PluginContainer == "" {
		opts.PluginContainer = config.DefaultPluginContainer
	}

	logger := obmocks.NewNopLogger()
	h := NewHarvester(
		client,
		service.NewManifestExtractor(service.ExtractorOptions{}, nopLogger, nopMetrics),
		service.NewLayoutBuilder(ws, nopLogger, nopMetrics),
		service.NewEnumerator(client, config.DefaultPluginSelectID, nopLogger, nopMetrics),
		service.NewRetrievalEngine(client, ws, service.RetrievalOptions{Concurrency: 4}, nopLogger, nopMetrics),
		ws,
		sink,
		opts,
		logger,
		nopMetrics,
	)

	return &fixture{harvester: h, root: ws.Root(), logger: logger, sink: mockSink}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestHarvester_Run(t *testing.T) {
	t.Run("harvests theme and plugins into separate containers", func(t *testing.T) {
		site := newFakeSite()
		site.broken["broken/broken.php"] = true
		f := newFixture(t, site, sessionCookie, Options{RunTheme: true, RunPlugin: true}, false)

		require.NoError(t, f.harvester.Run(context.Background()))

		assert.Equal(t, map[string]string{
			"mytheme/index.php":                 "<?php get_header(); ?>",
			"mytheme/inc/a.php":                 "<?php // helpers",
			"mytheme/js/app.js":                 "console.log('x');",
			"Plugins/akismet/akismet.php":       "<?php /* Plugin Name: Akismet */",
			"Plugins/akismet/class.akismet.php": "<?php class Akismet {}",
			"Plugins/hello.php":                 "<?php /* Hello Dolly */",
		}, readTree(t, f.root))

		f.logger.AssertCalled(t, "Info", mock.Anything, "theme detected", mock.MatchedBy(func(fields types.Fields) bool {
			return fields["theme"] == "mytheme"
		}))
		f.logger.AssertCalled(t, "Error", mock.Anything, "failed to fetch editor document", mock.Anything, mock.Anything)
		f.logger.AssertCalled(t, "Info", mock.Anything, "download completed", mock.Anything)
	})

	t.Run("theme flow only", func(t *testing.T) {
		site := newFakeSite()
		f := newFixture(t, site, sessionCookie, Options{RunTheme: true}, false)

		require.NoError(t, f.harvester.Run(context.Background()))

		tree := readTree(t, f.root)
		assert.Len(t, tree, 3)
		assert.NoDirExists(t, filepath.Join(f.root, "Plugins"))
		assert.Equal(t, int32(0), atomic.LoadInt32(&site.pluginSelectorHits))
	})

	t.Run("plugin flow only", func(t *testing.T) {
		site := newFakeSite()
		f := newFixture(t, site, sessionCookie, Options{RunPlugin: true}, false)

		require.NoError(t, f.harvester.Run(context.Background()))

		assert.NoDirExists(t, filepath.Join(f.root, "mytheme"))
		assert.FileExists(t, filepath.Join(f.root, "Plugins", "hello.php"))
		assert.Equal(t, int32(1), atomic.LoadInt32(&site.pluginSelectorHits))
	})

	t.Run("extra extensions widen the theme harvest", func(t *testing.T) {
		site := newFakeSite()
		f := newFixture(t, site, sessionCookie, Options{RunTheme: true}, false)
		f.harvester.extractor = service.NewManifestExtractor(
			service.ExtractorOptions{AdditionalExtensions: []string{"css", "txt"}},
			obmocks.NewNopLogger(), obmocks.NewNopMetrics(),
		)

		require.NoError(t, f.harvester.Run(context.Background()))

		tree := readTree(t, f.root)
		assert.Equal(t, "body { margin: 0 }", tree["mytheme/style.css"])
		assert.Equal(t, "Theme readme", tree["mytheme/readme.txt"])
	})

	t.Run("theme without a theme parameter uses the fallback container", func(t *testing.T) {
		site := newFakeSite()
		site.theme = ""
		f := newFixture(t, site, sessionCookie, Options{RunTheme: true}, false)

		require.NoError(t, f.harvester.Run(context.Background()))

		assert.FileExists(t, filepath.Join(f.root, config.DefaultFallbackContainer, "index.php"))
	})

	t.Run("rejected session writes nothing and still completes", func(t *testing.T) {
		site := newFakeSite()
		f := newFixture(t, site, "wordpress_logged_in_abc=expired", Options{RunTheme: true, RunPlugin: true}, false)

		require.NoError(t, f.harvester.Run(context.Background()))

		assert.Empty(t, readTree(t, f.root))
		f.logger.AssertCalled(t, "Info", mock.Anything, "download completed", mock.Anything)
		f.logger.AssertNotCalled(t, "Info", mock.Anything, "theme detected", mock.Anything)
	})

	t.Run("finished containers are mirrored", func(t *testing.T) {
		site := newFakeSite()
		f := newFixture(t, site, sessionCookie, Options{RunTheme: true, RunPlugin: true, ExportPrefix: "runs/1"}, true)

		require.NoError(t, f.harvester.Run(context.Background()))

		assert.Equal(t, "<?php get_header(); ?>", f.sink.Bodies["runs/1/mytheme/index.php"])
		assert.Equal(t, "<?php /* Hello Dolly */", f.sink.Bodies["runs/1/Plugins/hello.php"])
		f.sink.AssertNumberOfCalls(t, "Put", 6)
	})

	t.Run("cancelled run reports the context error", func(t *testing.T) {
		site := newFakeSite()
		f := newFixture(t, site, sessionCookie, Options{RunTheme: true, RunPlugin: true}, false)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := f.harvester.Run(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, readTree(t, f.root))
	})
}

func TestHarvester_RunAttachesRunID(t *testing.T) {
	site := newFakeSite()
	f := newFixture(t, site, sessionCookie, Options{RunTheme: true}, false)

	require.NoError(t, f.harvester.Run(context.Background()))

	f.logger.AssertCalled(t, "Info", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := types.ContextFields(ctx)["run_id"]
		return ok
	}), "harvest started", mock.Anything)
}
