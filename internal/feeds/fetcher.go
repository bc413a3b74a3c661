package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoanghai1803/insightpost/internal/models"
	"github.com/mmcdole/gofeed"
)

// Sentinel errors for the ways a fetch can fail.
var (
	ErrTransport     = errors.New("feed transport failure")
	ErrParse         = errors.New("feed parse failure")
	ErrNoEntries     = errors.New("feed has no entries")
	ErrMissingFields = errors.New("feed entry missing title or summary")
)

// Options controls how the feed is fetched.
type Options struct {
	// URL is the syndication feed to read.
	URL string

	// UserAgent is sent on every request. Some hosts (Reddit in particular)
	// reject the default Go client identification.
	UserAgent string

	// Timeout bounds the whole request, including reading the body.
	Timeout time.Duration

	// PlainTextSummary converts HTML summaries to plain text before they
	// are returned.
	PlainTextSummary bool
}

// Fetcher retrieves the most recent entry of a single feed.
type Fetcher struct {
	client *http.Client
	opts   Options
}

// NewFetcher creates a Fetcher whose HTTP client presents the configured
// User-Agent and gives up after opts.Timeout.
func NewFetcher(opts Options) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &userAgentTransport{
				base:      http.DefaultTransport,
				userAgent: opts.UserAgent,
			},
		},
		opts: opts,
	}
}

// userAgentTransport wraps an http.RoundTripper to inject browser-like
// request headers on every request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return t.base.RoundTrip(req)
}

// FetchLatest downloads the feed once, parses it, and returns its first
// (most recent) entry. It never retries.
func (f *Fetcher) FetchLatest(ctx context.Context) (models.FeedEntry, error) {
	slog.Info("fetching feed", "url", f.opts.URL)

	feed, err := f.fetchFeed(ctx)
	if err != nil {
		slog.Error("failed to fetch feed", "url", f.opts.URL, "error", err)
		return models.FeedEntry{}, err
	}

	entry, err := latestEntry(feed, f.opts.PlainTextSummary)
	if err != nil {
		slog.Error("failed to read feed entry", "url", f.opts.URL, "items", len(feed.Items), "error", err)
		return models.FeedEntry{}, err
	}

	slog.Debug("fetched feed entry", "title", entry.Title, "link", entry.Link)
	return entry, nil
}

// fetchFeed performs the GET and hands the body to gofeed. Transport problems
// and non-2xx statuses wrap ErrTransport; undecodable bodies wrap ErrParse.
func (f *Fetcher) fetchFeed(ctx context.Context) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request for %q: %v", ErrTransport, f.opts.URL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %q: %v", ErrTransport, f.opts.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetching %q: HTTP %d", ErrTransport, f.opts.URL, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing feed %q: %v", ErrParse, f.opts.URL, err)
	}
	return feed, nil
}
