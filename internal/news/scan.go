// Package news derives the website news feed from a directory of dated
// article files named YYYY_MM_DD.
package news

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/logfields"
)

// DefaultExtension is the article file extension.
const DefaultExtension = ".md"

var datedName = regexp.MustCompile(`^(\d{4})_(\d{2})_(\d{2})$`)

// RssItem is one dated article.
type RssItem struct {
	Year, Month, Day string
	Title            string
	// URL is the article page relative to the site root.
	URL     string
	Content string
	// Name is the file base name without extension.
	Name string
}

// Date returns the item date as YYYY-MM-DD.
func (i RssItem) Date() string {
	return i.Year + "-" + i.Month + "-" + i.Day
}

type scanOptions struct {
	ext    string
	logger *slog.Logger
}

// Option configures Scan.
type Option func(*scanOptions)

// WithExtension sets the article extension (including the dot).
func WithExtension(ext string) Option {
	return func(o *scanOptions) {
		if ext != "" {
			o.ext = ext
		}
	}
}

// WithLogger sets the logger used for skip notices.
func WithLogger(l *slog.Logger) Option {
	return func(o *scanOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Scan reads the articles directly inside dir and returns them newest first.
// Files with another extension are skipped with a notice; files whose name is
// not a date are left out silently.
func Scan(dir string, opts ...Option) ([]RssItem, error) {
	o := scanOptions{ext: DefaultExtension, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, derrors.ResourceError(dir, "read news directory", err)
	}

	var items []RssItem
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != o.ext {
			o.logger.Info("Skipping non-article file", logfields.Path(filepath.Join(dir, name)))
			continue
		}
		base := strings.TrimSuffix(name, o.ext)
		m := datedName.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, derrors.ResourceError(path, "read article", err)
		}
		title, content := splitTitle(data)
		items = append(items, RssItem{
			Year:    m[1],
			Month:   m[2],
			Day:     m[3],
			Title:   title,
			URL:     "news/" + base + ".html",
			Content: content,
			Name:    base,
		})
	}

	// Zero-padded dates compare correctly as strings.
	sort.SliceStable(items, func(a, b int) bool {
		da, db := items[a].Date(), items[b].Date()
		if da != db {
			return da > db
		}
		return items[a].Name > items[b].Name
	})
	return items, nil
}

// splitTitle returns the first line verbatim and the remaining text.
func splitTitle(data []byte) (string, string) {
	first, rest, _ := bytes.Cut(data, []byte("\n"))
	return strings.TrimSuffix(string(first), "\r"), strings.TrimLeft(string(rest), "\r\n")
}
