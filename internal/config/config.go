// Package config loads a project file plus command-line overrides into a
// normalized, read-only ProjectConfig.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/git"
	"git.home.luguber.info/inful/docweb/internal/logfields"
	"git.home.luguber.info/inful/docweb/internal/util/sets"
)

// DefaultSiteURL is used for feed links when project.url is not configured.
const DefaultSiteURL = "http://localhost/"

// DefaultCommit is used for source links when no git metadata is available.
const DefaultCommit = "master"

// Tab is one website navigation entry; order is render order.
type Tab struct {
	Label  string `yaml:"label"`
	ID     string `yaml:"id"`
	Target string `yaml:"target"`
}

// Link is one external link entry.
type Link struct {
	Label string `yaml:"label"`
	ID    string `yaml:"id"`
	URL   string `yaml:"url"`
}

// Quotation is a (quote, author) pair.
type Quotation struct {
	Quote  string `yaml:"quote"`
	Author string `yaml:"author"`
}

// ProjectConfig is the normalized project configuration. It is produced once
// by Load and must not be mutated by build stages.
type ProjectConfig struct {
	InputFile string `yaml:"input_file"`
	InputDir  string `yaml:"input_dir"`
	RootDir   string `yaml:"root_dir"`
	OutputDir string `yaml:"output_dir"`

	ProjectName  string `yaml:"project_name"`
	ProjectTitle string `yaml:"project_title,omitempty"`
	Authors      string `yaml:"authors,omitempty"`
	Logo         string `yaml:"logo,omitempty"`
	URL          string `yaml:"url"`

	// Ticker is the ticker file path relative to InputDir; TickerContent is
	// its content, read at load time.
	Ticker        string `yaml:"ticker,omitempty"`
	TickerContent string `yaml:"-"`

	Repository string `yaml:"repository,omitempty"`
	Commit     string `yaml:"commit"`

	Tabs  []Tab  `yaml:"tabs,omitempty"`
	Links []Link `yaml:"links,omitempty"`

	DocSources    []string `yaml:"doc,omitempty"`
	SourceDocSetA []string `yaml:"srcdoc,omitempty"`
	SourceDocSetB []string `yaml:"srcdoc2,omitempty"`
	WebDocSources []string `yaml:"webdoc,omitempty"`
	PDFSources    []string `yaml:"pdf,omitempty"`

	Variables    Vars                 `yaml:"variables"`
	CompilerArgs string               `yaml:"compiler_args,omitempty"`
	Quotations   map[string]Quotation `yaml:"quotations,omitempty"`
	Workers      int                  `yaml:"workers"`
	AnalyticsID  string               `yaml:"analytics_id,omitempty"`

	Compiler    string `yaml:"compiler"`
	TexCompiler string `yaml:"tex_compiler"`
}

// Quotation returns the quotation stored under key (style-insensitive).
func (c *ProjectConfig) Quotation(key string) (Quotation, bool) {
	q, ok := c.Quotations[NormalizeKey(key)]
	return q, ok
}

// Load parses the project file at path and applies ov.
func Load(path string, ov Overrides) (*ProjectConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, derrors.ConfigNotFound(path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, derrors.ConfigNotFound(path, err)
	}

	root := ov.RootDir
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return nil, derrors.InternalError("resolve working directory", err)
		}
	}

	cfg := &ProjectConfig{
		InputFile:   abs,
		InputDir:    filepath.Dir(abs),
		RootDir:     root,
		Variables:   newVars(),
		Quotations:  map[string]Quotation{},
		Workers:     ov.cpuCount(),
		Compiler:    ov.compiler(),
		TexCompiler: ov.texCompiler(),
	}
	for name, value := range ov.Vars {
		cfg.Variables.pin(name, value)
	}

	entries, err := parseEntries(path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	l := loader{cfg: cfg, file: path}
	for _, e := range entries {
		if err := l.apply(e); err != nil {
			return nil, err
		}
	}

	if err := cfg.finalize(ov); err != nil {
		return nil, err
	}

	slog.Debug("Configuration loaded",
		logfields.Path(abs),
		slog.String("project", cfg.ProjectName),
		logfields.Workers(cfg.Workers),
		slog.Int("doc", len(cfg.DocSources)),
		slog.Int("srcdoc", len(cfg.SourceDocSetA)),
		slog.Int("srcdoc2", len(cfg.SourceDocSetB)),
		slog.Int("webdoc", len(cfg.WebDocSources)),
		slog.Int("pdf", len(cfg.PDFSources)))
	return cfg, nil
}

type loader struct {
	cfg         *ProjectConfig
	file        string
	skipSection bool
}

func (l *loader) apply(e entry) error {
	if e.kind == entrySection {
		switch e.section {
		case "project", "links", "tabs", "ticker", "documentation", "var", "quotations":
			l.skipSection = false
		default:
			l.skipSection = true
			slog.Warn("Skipping unknown section", logfields.Section(e.section), logfields.Path(l.file), logfields.Line(e.line))
		}
		return nil
	}
	if l.skipSection {
		return nil
	}

	cfg := l.cfg
	value := cfg.Variables.Expand(e.value)
	cfg.Variables.set(e.key, value)

	switch e.section {
	case "project":
		return l.applyProject(e, value)
	case "documentation":
		return l.applyDocumentation(e, value)
	case "links":
		parts := strings.Split(value, ";")
		if len(parts) != 2 {
			return derrors.ConfigSyntax(l.file, e.line,
				fmt.Sprintf("link %q needs exactly two ';'-separated parts (id;url), got %d", e.key, len(parts)))
		}
		cfg.Links = append(cfg.Links, Link{
			Label: strings.ReplaceAll(e.key, "_", " "),
			ID:    strings.TrimSpace(parts[0]),
			URL:   strings.TrimSpace(parts[1]),
		})
	case "tabs":
		cfg.Tabs = append(cfg.Tabs, Tab{
			Label:  e.key,
			ID:     strings.TrimSuffix(filepath.Base(value), filepath.Ext(value)),
			Target: value,
		})
	case "ticker":
		cfg.Ticker = value
	case "quotations":
		parts := strings.Split(value, "-")
		if len(parts) != 2 {
			return derrors.ConfigSyntax(l.file, e.line,
				fmt.Sprintf("quotation %q needs exactly two '-'-separated parts (quote-author), got %d", e.key, len(parts)))
		}
		cfg.Quotations[NormalizeKey(e.key)] = Quotation{
			Quote:  strings.TrimSpace(parts[0]),
			Author: strings.TrimSpace(parts[1]),
		}
	case "var":
	case "":
		// Keys before the first section only bind variables.
	}
	return nil
}

func (l *loader) applyProject(e entry, value string) error {
	cfg := l.cfg
	switch NormalizeKey(e.key) {
	case "name":
		cfg.ProjectName = value
	case "title":
		cfg.ProjectTitle = value
	case "authors":
		cfg.Authors = value
	case "logo":
		cfg.Logo = value
	case "url":
		cfg.URL = value
	case "repository":
		cfg.Repository = value
	case "commit":
		cfg.Commit = value
	default:
		return derrors.ConfigSyntax(l.file, e.line, "unknown key in [project]: "+e.key)
	}
	return nil
}

func (l *loader) applyDocumentation(e entry, value string) error {
	cfg := l.cfg
	docBase := filepath.Join(cfg.RootDir, DocBaseDir)
	srcBase := filepath.Join(cfg.RootDir, SourceBaseDir)

	var (
		target *[]string
		base   string
		ext    string
	)
	switch NormalizeKey(e.key) {
	case "doc":
		target, base, ext = &cfg.DocSources, docBase, DocExt
	case "pdf":
		target, base, ext = &cfg.PDFSources, docBase, DocExt
	case "srcdoc":
		target, base, ext = &cfg.SourceDocSetA, srcBase, SourceExt
	case "srcdoc2":
		target, base, ext = &cfg.SourceDocSetB, srcBase, SourceExt
	case "webdoc":
		target, base, ext = &cfg.WebDocSources, srcBase, SourceExt
	case "parallelbuild":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return derrors.ConfigSyntax(l.file, e.line, "parallelbuild must be a non-negative integer, got "+strconv.Quote(value))
		}
		if n > 0 {
			cfg.Workers = n
		}
		return nil
	default:
		return derrors.ConfigSyntax(l.file, e.line, "unknown key in [documentation]: "+e.key)
	}

	files, err := expandPatterns(base, ext, value)
	if err != nil {
		return err
	}
	*target = sets.AppendUnique(*target, files...)
	return nil
}

// finalize applies defaults and command-line overrides.
func (c *ProjectConfig) finalize(ov Overrides) error {
	if c.ProjectName == "" {
		base := filepath.Base(c.InputFile)
		c.ProjectName = strings.TrimSuffix(base, filepath.Ext(base))
		if c.ProjectName == "" {
			// A dot-file such as ".ini" has no stem.
			c.ProjectName = base
		}
	}

	c.OutputDir = firstNonEmpty(ov.OutputDir, c.InputDir)

	switch {
	case ov.Workers < 0:
		return derrors.ValidationFailed("parallel-build", "must not be negative")
	case ov.Workers > 0:
		c.Workers = ov.Workers
	}

	if len(ov.CompilerArgs) > 0 {
		c.CompilerArgs = strings.Join(ov.CompilerArgs, " ")
	}
	if ov.AnalyticsID != "" {
		c.AnalyticsID = ov.AnalyticsID
	}
	if c.AnalyticsID != "" {
		c.CompilerArgs = strings.TrimSpace(c.CompilerArgs + " --doc.googleAnalytics:" + c.AnalyticsID)
	}

	if c.URL == "" {
		slog.Warn("project.url not set, feed links use default", slog.String("url", DefaultSiteURL))
		c.URL = DefaultSiteURL
	}
	if !strings.HasSuffix(c.URL, "/") {
		c.URL += "/"
	}

	if c.Commit == "" {
		commit, err := git.HeadCommit(c.RootDir)
		if err != nil {
			slog.Debug("No git metadata for source links", logfields.Path(c.RootDir), logfields.Error(err))
			commit = DefaultCommit
		}
		c.Commit = commit
	}

	if c.Ticker != "" {
		path := filepath.Join(c.InputDir, c.Ticker)
		data, err := os.ReadFile(path)
		if err != nil {
			return derrors.ResourceError(path, "read ticker", err)
		}
		c.TickerContent = string(data)
	}
	return nil
}
