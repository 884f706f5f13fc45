package syndication

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Subscription is one feed listed in an OPML file.
type Subscription struct {
	Title    string
	URL      string
	Category string
}

type opmlDocument struct {
	XMLName xml.Name `xml:"opml"`
	Body    struct {
		Outlines []opmlOutline `xml:"outline"`
	} `xml:"body"`
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr"`
	XMLURL   string        `xml:"xmlUrl,attr"`
	Category string        `xml:"category,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

// ParseOPML lists the feeds of an OPML subscription file so each can be
// imported in turn. Nested outlines inherit their parent's text as category.
func ParseOPML(r io.Reader) ([]Subscription, error) {
	var doc opmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse OPML: %w", err)
	}
	return subscriptions(doc.Body.Outlines, ""), nil
}

func subscriptions(outlines []opmlOutline, parentCategory string) []Subscription {
	var subs []Subscription
	for _, o := range outlines {
		if o.XMLURL != "" {
			sub := Subscription{URL: o.XMLURL, Title: o.Title, Category: o.Category}
			if sub.Category == "" {
				sub.Category = parentCategory
			}
			if sub.Title == "" {
				sub.Title = o.Text
			}
			subs = append(subs, sub)
		}
		if len(o.Outlines) > 0 {
			category := o.Text
			if category == "" {
				category = parentCategory
			}
			subs = append(subs, subscriptions(o.Outlines, category)...)
		}
	}
	return subs
}
