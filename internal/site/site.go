// Package site builds the project website: tab pages, the news pages and
// feed, and the documentation pages compiled for the web.
package site

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/docweb/internal/config"
	"git.home.luguber.info/inful/docweb/internal/engine"
	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/frontmatter"
	"git.home.luguber.info/inful/docweb/internal/logfields"
	"git.home.luguber.info/inful/docweb/internal/markdown"
	"git.home.luguber.info/inful/docweb/internal/news"
	"git.home.luguber.info/inful/docweb/internal/plan"
)

// NewsDir is the article directory below the input directory and the page
// directory below the output directory.
const NewsDir = "news"

// PageExt is the source extension of tab pages and articles.
const PageExt = ".md"

// Builder renders the website for one configuration.
type Builder struct {
	engine   *engine.Engine
	renderer PageRenderer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithRenderer replaces the page layout.
func WithRenderer(r PageRenderer) Option {
	return func(b *Builder) {
		if r != nil {
			b.renderer = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock sets the time source for the feed's updated stamp.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder returns a Builder running web documentation commands on eng.
func NewBuilder(eng *engine.Engine, opts ...Option) (*Builder, error) {
	b := &Builder{engine: eng, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	if b.renderer == nil {
		r, err := NewTemplateRenderer("")
		if err != nil {
			return nil, derrors.InternalError("default page layout", err)
		}
		b.renderer = r
	}
	return b, nil
}

// Build writes every website artifact for cfg into cfg.OutputDir.
func (b *Builder) Build(ctx context.Context, cfg *config.ProjectConfig) error {
	if err := os.MkdirAll(filepath.Join(cfg.OutputDir, NewsDir), 0o750); err != nil {
		return derrors.ResourceError(cfg.OutputDir, "create output directory", err)
	}

	ticker, err := markdown.ToHTML([]byte(cfg.TickerContent))
	if err != nil {
		return derrors.BuildFailed("website", err)
	}

	var newsIntro template.HTML
	for _, tab := range cfg.Tabs {
		src := filepath.Join(cfg.InputDir, tab.Target+PageExt)
		page, err := b.readPage(src)
		if err != nil {
			return err
		}
		page.Config = cfg
		page.ActiveTab = tab.ID
		page.Ticker = template.HTML(ticker) //nolint:gosec // rendered from project sources
		if page.Title == "" {
			page.Title = tab.Label
		}
		if q, ok := cfg.Quotation(tab.ID); ok {
			page.Quotation = &q
		}
		if tab.Target == NewsDir {
			// The news tab introduces the generated news index.
			newsIntro = page.Content
			continue
		}
		if err := b.writePage(filepath.Join(cfg.OutputDir, tab.Target+".html"), page); err != nil {
			return err
		}
	}

	if err := b.buildNews(cfg, template.HTML(ticker), newsIntro); err != nil { //nolint:gosec // rendered from project sources
		return err
	}

	cmds := plan.BuildCommands(cfg, cfg.OutputDir, plan.ModeWebDocs)
	if _, err := b.engine.Run(ctx, cmds, cfg.Workers); err != nil {
		return err
	}
	return nil
}

func (b *Builder) buildNews(cfg *config.ProjectConfig, ticker, intro template.HTML) error {
	srcDir := filepath.Join(cfg.InputDir, NewsDir)
	items, err := news.Scan(srcDir, news.WithExtension(PageExt), news.WithLogger(b.logger))
	if err != nil {
		return err
	}

	entries := make([]newsEntry, 0, len(items))
	for _, it := range items {
		body, err := markdown.ToHTML([]byte(it.Content))
		if err != nil {
			return derrors.BuildFailed("news", err)
		}
		entry := newsEntry{
			Title:  it.Title,
			Anchor: strings.TrimPrefix(news.NewsLink("", it.Title), "#"),
			URL:    it.URL,
			Date:   it.Date(),
			Body:   template.HTML(body), //nolint:gosec // rendered from project sources
		}
		content, err := renderFragment("article", entry)
		if err != nil {
			return derrors.BuildFailed("news", err)
		}
		article := Page{Config: cfg, Title: it.Title, ActiveTab: NewsDir, Ticker: ticker, Root: "../", Content: content}
		if err := b.writePage(filepath.Join(cfg.OutputDir, filepath.FromSlash(it.URL)), article); err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	content, err := renderFragment("index", struct {
		Intro   template.HTML
		Entries []newsEntry
	}{intro, entries})
	if err != nil {
		return derrors.BuildFailed("news", err)
	}
	indexPage := Page{Config: cfg, Title: "News", ActiveTab: NewsDir, Ticker: ticker, Content: content}
	if err := b.writePage(filepath.Join(cfg.OutputDir, news.NewsPage), indexPage); err != nil {
		return err
	}

	feed, err := news.Render(items, news.FeedMeta{ProjectName: cfg.ProjectName, Authors: cfg.Authors, URL: cfg.URL}, b.now())
	if err != nil {
		return err
	}
	feedPath := filepath.Join(cfg.OutputDir, news.FeedFile)
	if err := news.WriteFeed(feedPath, feed); err != nil {
		return err
	}
	b.logger.Info("Wrote news feed", logfields.Path(feedPath), slog.Int("entries", len(items)))
	return nil
}

// readPage loads a Markdown source with optional frontmatter.
func (b *Builder) readPage(path string) (Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, derrors.ResourceError(path, "read page", err)
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return Page{}, derrors.ConfigSyntax(path, 1, err.Error())
	}
	html, err := markdown.ToHTML(body)
	if err != nil {
		return Page{}, derrors.BuildFailed("website", err)
	}
	return Page{Title: meta.Title, Content: template.HTML(html)}, nil //nolint:gosec // rendered from project sources
}

func (b *Builder) writePage(path string, page Page) error {
	var buf bytes.Buffer
	if err := b.renderer.RenderPage(&buf, page); err != nil {
		return derrors.BuildFailed("website", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // published website
		return derrors.ResourceError(path, "write page", err)
	}
	b.logger.Debug("Wrote page", logfields.Path(path))
	return nil
}
