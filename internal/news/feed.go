package news

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	derrors "git.home.luguber.info/inful/docweb/internal/errors"
	"git.home.luguber.info/inful/docweb/internal/markdown"
)

// FeedFile is the feed location relative to the output directory.
const FeedFile = "news.xml"

// NewsPage is the news index page the entry links point into.
const NewsPage = "news.html"

// FeedMeta carries the project fields the feed envelope needs.
type FeedMeta struct {
	ProjectName string
	Authors     string
	// URL is the site root and must end with '/'.
	URL string
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type atomEntry struct {
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Link    atomLink    `xml:"link"`
	Updated string      `xml:"updated"`
	Author  atomAuthor  `xml:"author"`
	Content atomContent `xml:"content"`
}

type atomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title   string      `xml:"title"`
	Links   []atomLink  `xml:"link"`
	ID      string      `xml:"id"`
	Updated string      `xml:"updated"`
	Entries []atomEntry `xml:"entry"`
}

func atomDate(date string) string {
	return date + "T00:00:00Z"
}

// Render builds the Atom document for items. The feed's updated stamp is the
// date of now; each entry carries its own article date.
func Render(items []RssItem, meta FeedMeta, now time.Time) ([]byte, error) {
	author := meta.Authors
	if author == "" {
		author = meta.ProjectName
	}
	feed := atomFeed{
		Title: meta.ProjectName + " Newsfeed",
		Links: []atomLink{
			{Href: meta.URL + FeedFile, Rel: "self"},
			{Href: meta.URL + NewsPage, Rel: "alternate", Type: "text/html"},
		},
		ID:      meta.URL,
		Updated: atomDate(now.UTC().Format(time.DateOnly)),
		Entries: make([]atomEntry, 0, len(items)),
	}
	for _, it := range items {
		body, err := markdown.ToHTML([]byte(it.Content))
		if err != nil {
			return nil, fmt.Errorf("render article %s: %w", it.Name, err)
		}
		feed.Entries = append(feed.Entries, atomEntry{
			Title:   it.Title,
			ID:      ComputeID(it.Title),
			Link:    atomLink{Href: NewsLink(meta.URL+NewsPage, it.Title), Rel: "alternate", Type: "text/html"},
			Updated: atomDate(it.Date()),
			Author:  atomAuthor{Name: author},
			Content: atomContent{Type: "html", Body: body},
		})
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return nil, derrors.InternalError("encode feed", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// WriteFeed writes data to path, replacing any previous feed.
func WriteFeed(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return derrors.ResourceError(path, "create feed", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return derrors.ResourceError(path, "write feed", err)
	}
	if err := f.Close(); err != nil {
		return derrors.ResourceError(path, "close feed", err)
	}
	return nil
}
