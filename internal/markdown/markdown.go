// Package markdown converts page and article sources to HTML fragments.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// converter is safe for concurrent use once built.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	// Sources are project-authored; inline HTML (e.g. in titles) is kept.
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// ToHTML renders a Markdown document to an HTML fragment.
func ToHTML(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
