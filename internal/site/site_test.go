package site

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docweb/internal/config"
	"git.home.luguber.info/inful/docweb/internal/engine"
	derrors "git.home.luguber.info/inful/docweb/internal/errors"
)

type recordingRunner struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingRunner) Run(_ context.Context, command string, _ io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, command)
	return nil
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func fixture(t *testing.T) *config.ProjectConfig {
	t.Helper()
	in := t.TempDir()
	write(t, filepath.Join(in, "index.md"), "---\ntitle: Welcome\n---\nNim is *efficient*.\n")
	write(t, filepath.Join(in, "news.md"), "Latest announcements.\n")
	write(t, filepath.Join(in, "news", "2024_01_05.md"), "Nim 2.1 released\n\nBig **news**.\n")
	write(t, filepath.Join(in, "news", "2023_06_01.md"), "Older <post>\n\nText.\n")

	return &config.ProjectConfig{
		InputDir:      in,
		OutputDir:     filepath.Join(t.TempDir(), "site"),
		ProjectName:   "Nim",
		URL:           "https://nim-lang.org/",
		TickerContent: "Version *2.1* is out",
		Tabs: []config.Tab{
			{Label: "Home", ID: "index", Target: "index"},
			{Label: "News", ID: "news", Target: "news"},
		},
		Links:         []config.Link{{Label: "Github", ID: "github", URL: "https://github.com/nim-lang/Nim"}},
		Quotations:    map[string]config.Quotation{"index": {Quote: "Simple is better", Author: "A"}},
		WebDocSources: []string{"lib/pure/json.nim"},
		Compiler:      "nim",
		Commit:        "master",
		Workers:       1,
	}
}

func newTestBuilder(t *testing.T, r engine.Runner) *Builder {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(engine.WithRunner(r), engine.WithOutput(io.Discard), engine.WithLogger(logger))
	b, err := NewBuilder(eng, WithLogger(logger), WithClock(func() time.Time {
		return time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return b
}

func TestBuild_WritesWebsite(t *testing.T) {
	cfg := fixture(t)
	r := &recordingRunner{}

	require.NoError(t, newTestBuilder(t, r).Build(context.Background(), cfg))

	index := read(t, filepath.Join(cfg.OutputDir, "index.html"))
	assert.Contains(t, index, "<title>Nim - Welcome</title>")
	assert.Contains(t, index, "<em>efficient</em>")
	assert.Contains(t, index, `<li class="active"><a href="index.html">Home</a></li>`)
	assert.Contains(t, index, "Simple is better")
	assert.Contains(t, index, "<em>2.1</em>", "ticker is rendered")
	assert.Contains(t, index, `href="https://github.com/nim-lang/Nim"`)
	assert.NotContains(t, index, "---")

	newsIndex := read(t, filepath.Join(cfg.OutputDir, "news.html"))
	assert.Contains(t, newsIndex, "Latest announcements.")
	assert.Contains(t, newsIndex, `id="nim-2-1-released"`)
	assert.Less(t, strings.Index(newsIndex, "Nim 2.1 released"), strings.Index(newsIndex, "Older &lt;post&gt;"))

	article := read(t, filepath.Join(cfg.OutputDir, "news", "2024_01_05.html"))
	assert.Contains(t, article, "<strong>news</strong>")
	assert.Contains(t, article, `href="../index.html"`)

	feed := read(t, filepath.Join(cfg.OutputDir, "news.xml"))
	assert.Equal(t, 2, strings.Count(feed, "<entry>"))
	assert.Contains(t, feed, "<updated>2024-02-01T00:00:00Z</updated>")
	assert.Contains(t, feed, "https://nim-lang.org/news.html#nim-2-1-released")

	require.Len(t, r.calls, 1)
	assert.Contains(t, r.calls[0], "nim doc2 ")
	assert.Contains(t, r.calls[0], "lib/pure/json.nim")
}

func TestBuild_NewsPagesEscapeTitles(t *testing.T) {
	cfg := fixture(t)
	require.NoError(t, newTestBuilder(t, &recordingRunner{}).Build(context.Background(), cfg))

	newsIndex := read(t, filepath.Join(cfg.OutputDir, "news.html"))
	assert.Contains(t, newsIndex, `<h2 id="nim-2-1-released"><a href="news/2024_01_05.html">Nim 2.1 released</a></h2>`)
	assert.Contains(t, newsIndex, `<h2 id="older--post-"><a href="news/2023_06_01.html">Older &lt;post&gt;</a></h2>`)
	assert.Equal(t, 2, strings.Count(newsIndex, "<article>"))
	assert.NotContains(t, newsIndex, "Older <post>")

	article := read(t, filepath.Join(cfg.OutputDir, "news", "2023_06_01.html"))
	assert.Contains(t, article, "<h1>Older &lt;post&gt;</h1>")
	assert.Contains(t, article, `<p class="date">2023-06-01</p>`)
}

func TestBuild_MissingTabSource(t *testing.T) {
	cfg := fixture(t)
	cfg.Tabs = append(cfg.Tabs, config.Tab{Label: "Learn", ID: "learn", Target: "learn"})

	err := newTestBuilder(t, &recordingRunner{}).Build(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryFileSystem))
	assert.Contains(t, err.Error(), "learn.md")
}

func TestBuild_MissingNewsDirectory(t *testing.T) {
	cfg := fixture(t)
	require.NoError(t, os.RemoveAll(filepath.Join(cfg.InputDir, "news")))

	r := &recordingRunner{}
	err := newTestBuilder(t, r).Build(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryFileSystem))
	assert.Empty(t, r.calls, "web docs are not compiled after a failed stage")
}

func TestTemplateRenderer_CustomLayout(t *testing.T) {
	r, err := NewTemplateRenderer("{{.Title}}|{{.Content}}")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, r.RenderPage(&sb, Page{Title: "<T>", Content: "<p>x</p>"}))
	assert.Equal(t, "&lt;T&gt;|<p>x</p>", sb.String())

	_, err = NewTemplateRenderer("{{.Title")
	require.Error(t, err)
}
