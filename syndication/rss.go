// Package syndication renders feed pages as RSS and imports external
// RSS/Atom feeds as draft posts.
package syndication

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robertmeta/feedq/model"
)

// Channel describes the RSS channel a page is rendered into. Link is the
// site root; item links are <Link>/<entity>s/<id>.
type Channel struct {
	Title       string
	Link        string
	Description string
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description,omitempty"`
	Author      string        `xml:"author,omitempty"`
	Categories  []string      `xml:"category"`
	GUID        rssGUID       `xml:"guid"`
	PubDate     string        `xml:"pubDate"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// Render writes page as an RSS 2.0 document. Items keep the page order.
func Render(w io.Writer, ch Channel, entity model.Entity, page *model.Page, now time.Time) error {
	doc := rssDocument{
		Version: "2.0",
		Channel: rssChannel{
			Title:         ch.Title,
			Link:          ch.Link,
			Description:   ch.Description,
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			Items:         make([]rssItem, 0, len(page.Items)),
		},
	}
	base := strings.TrimSuffix(ch.Link, "/")
	for _, item := range page.Items {
		doc.Channel.Items = append(doc.Channel.Items, renderItem(base, entity, item))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode RSS: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write final newline: %w", err)
	}
	return nil
}

func renderItem(base string, entity model.Entity, item *model.FeedItem) rssItem {
	out := rssItem{
		Title:  item.Title,
		Link:   fmt.Sprintf("%s/%ss/%d", base, entity, item.ID),
		Author: item.Username,
		GUID:   rssGUID{Value: fmt.Sprintf("feedq:%s:%d", entity, item.ID)},
	}
	if out.Title == "" {
		out.Title = fmt.Sprintf("%s #%d", entity, item.ID)
	}

	published := item.CreatedAt
	if item.PublishedAt != nil {
		published = *item.PublishedAt
	}
	out.PubDate = published.UTC().Format(time.RFC1123Z)

	for _, tag := range item.Tags {
		out.Categories = append(out.Categories, tag.Name)
	}
	if item.URL != "" {
		if entity == model.EntityImage {
			out.Enclosure = &rssEnclosure{URL: item.URL, Type: "image/jpeg"}
		} else {
			out.Description = item.URL
		}
	}
	return out
}
