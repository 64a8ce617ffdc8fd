package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"git.home.luguber.info/inful/docweb/internal/config"
)

// Page is the data handed to a PageRenderer for one output file.
type Page struct {
	Config *config.ProjectConfig
	Title  string
	// ActiveTab is the ID of the tab the page belongs to, if any.
	ActiveTab string
	Content   template.HTML
	Quotation *config.Quotation
	Ticker    template.HTML
	// Root is the relative path from the page back to the site root.
	Root string
}

// PageRenderer assembles a complete HTML document around page content.
type PageRenderer interface {
	RenderPage(w io.Writer, page Page) error
}

// TemplateRenderer renders pages with an html/template layout.
type TemplateRenderer struct {
	tpl *template.Template
}

// NewTemplateRenderer parses layout; an empty layout selects DefaultLayout.
func NewTemplateRenderer(layout string) (*TemplateRenderer, error) {
	if layout == "" {
		layout = DefaultLayout
	}
	tpl, err := template.New("page").Option("missingkey=error").Parse(layout)
	if err != nil {
		return nil, fmt.Errorf("parse page layout: %w", err)
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

// RenderPage implements PageRenderer.
func (r *TemplateRenderer) RenderPage(w io.Writer, page Page) error {
	if err := r.tpl.Execute(w, page); err != nil {
		return fmt.Errorf("render page %q: %w", page.Title, err)
	}
	return nil
}

// newsEntry is one article as shown on its own page and in the news index.
type newsEntry struct {
	Title  string
	Anchor string
	URL    string
	Date   string
	Body   template.HTML
}

var newsTemplates = template.Must(template.New("news").Parse(`
{{- define "article" -}}
<h1>{{.Title}}</h1>
<p class="date">{{.Date}}</p>
{{.Body}}
{{- end -}}
{{- define "index" -}}
{{.Intro}}
{{- range .Entries}}
<article>
<h2 id="{{.Anchor}}"><a href="{{.URL}}">{{.Title}}</a></h2>
<p class="date">{{.Date}}</p>
{{.Body}}
</article>
{{- end}}
{{end -}}
`))

// renderFragment executes one of the news templates into page content.
func renderFragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := newsTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// DefaultLayout is the built-in page layout.
const DefaultLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Config.ProjectName}}{{with .Title}} - {{.}}{{end}}</title>
<link rel="alternate" type="application/atom+xml" title="{{.Config.ProjectName}} Newsfeed" href="{{.Root}}news.xml">
</head>
<body>
<header>
{{- with .Config.Logo}}<img class="logo" src="{{$.Root}}{{.}}" alt="{{$.Config.ProjectName}}">{{end}}
<h1>{{with .Config.ProjectTitle}}{{.}}{{else}}{{.Config.ProjectName}}{{end}}</h1>
<nav><ul>
{{- range .Config.Tabs}}
<li{{if eq .ID $.ActiveTab}} class="active"{{end}}><a href="{{$.Root}}{{.Target}}.html">{{.Label}}</a></li>
{{- end}}
</ul></nav>
</header>
{{- with .Ticker}}
<aside class="ticker">{{.}}</aside>
{{- end}}
<main>
{{.Content}}
</main>
{{- with .Quotation}}
<blockquote class="quotation"><p>{{.Quote}}</p><footer>{{.Author}}</footer></blockquote>
{{- end}}
{{- with .Config.Links}}
<footer><ul>
{{- range .}}
<li><a id="{{.ID}}" href="{{.URL}}">{{.Label}}</a></li>
{{- end}}
</ul></footer>
{{- end}}
</body>
</html>
`
