package feeds

import (
	"fmt"
	"strings"

	"github.com/hoanghai1803/insightpost/internal/models"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
)

// latestEntry converts the first feed item into a FeedEntry. Feeds keep their
// newest item first, so no sorting is done.
func latestEntry(feed *gofeed.Feed, plainText bool) (models.FeedEntry, error) {
	if feed == nil || len(feed.Items) == 0 {
		return models.FeedEntry{}, ErrNoEntries
	}

	item := feed.Items[0]
	if item == nil {
		return models.FeedEntry{}, ErrNoEntries
	}

	title := strings.TrimSpace(item.Title)
	summary := entrySummary(item)
	if plainText {
		summary = htmlToText(summary)
	}

	if title == "" || summary == "" {
		return models.FeedEntry{}, fmt.Errorf("%w (title %d chars, summary %d chars)",
			ErrMissingFields, len(title), len(summary))
	}

	return models.FeedEntry{
		Title:   title,
		Summary: summary,
		Link:    item.Link,
	}, nil
}

// entrySummary returns the item's summary, falling back to its content.
// gofeed maps both the RSS <description> and the Atom <summary> onto
// Description; content-only Atom feeds such as Reddit's only fill Content.
func entrySummary(item *gofeed.Item) string {
	if s := strings.TrimSpace(item.Description); s != "" {
		return s
	}
	return strings.TrimSpace(item.Content)
}

// htmlToText drops markup from an HTML fragment, decodes entities, and
// collapses runs of whitespace into single spaces.
func htmlToText(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// Block boundaries would otherwise glue adjacent words together.
			b.WriteByte(' ')
		}
	}
}
