package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/feedwire-hq/feedharvest/internal/domain"
	"github.com/feedwire-hq/feedharvest/internal/logger"
	"github.com/feedwire-hq/feedharvest/pkg/fetchcache"
	"github.com/feedwire-hq/feedharvest/pkg/httpclient"
	"github.com/feedwire-hq/feedharvest/pkg/sources"
)

// Feed is one retrieved and parsed syndication feed.
type Feed struct {
	Title   string
	Entries []domain.Entry
}

// Fetcher retrieves feed documents and parses them into entries.
type Fetcher struct {
	client httpclient.Client
	parser *gofeed.Parser
	cache  *fetchcache.Store
	now    func() time.Time
	log    logger.Logger
}

// New creates a Fetcher. The cache may be nil, in which case every fetch is
// unconditional. The clock stamps cache entries; nil falls back to the wall
// clock.
func New(client httpclient.Client, cache *fetchcache.Store, now func() time.Time, log logger.Logger) *Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	if now == nil {
		now = time.Now
	}
	return &Fetcher{
		client: client,
		parser: gofeed.NewParser(),
		cache:  cache,
		now:    now,
		log:    logger.Ensure(log),
	}
}

// Fetch retrieves one feed, honoring cached validators, and converts the
// parsed items into raw entries.
func (f *Fetcher) Fetch(ctx context.Context, src sources.Source) (*Feed, error) {
	body, err := f.fetchBody(ctx, src)
	if err != nil {
		return nil, err
	}

	parsed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.ID, err)
	}

	feed := &Feed{
		Title:   strings.TrimSpace(parsed.Title),
		Entries: make([]domain.Entry, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		feed.Entries = append(feed.Entries, entryFromItem(item))
	}
	return feed, nil
}

// fetchBody performs the HTTP GET, serving a 304 from the cache and storing
// fresh validators on a 200.
func (f *Fetcher) fetchBody(ctx context.Context, src sources.Source) ([]byte, error) {
	headers := make(map[string]string, len(src.Headers)+2)
	for k, v := range src.Headers {
		headers[k] = v
	}

	cached, haveCached, err := f.cache.Get(src.URL)
	if err != nil {
		f.log.WarnObj("feed cache read failed", "cache_read_error", map[string]any{
			"source_id": src.ID,
			"error":     err.Error(),
		})
		haveCached = false
	}
	if haveCached {
		if cached.ETag != "" {
			headers["If-None-Match"] = cached.ETag
		}
		if cached.LastModified != "" {
			headers["If-Modified-Since"] = cached.LastModified
		}
	}

	resp, err := f.client.Get(ctx, src.URL, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", src.ID, err)
	}

	if resp.StatusCode() == http.StatusNotModified && haveCached {
		f.log.DebugObj("feed unchanged, using cached body", "cache_hit", map[string]any{
			"source_id":  src.ID,
			"fetched_at": cached.FetchedAt,
		})
		return cached.Body, nil
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned status %d body: %s", src.ID, resp.StatusCode(), responseSnippet(body))
	}

	entry := fetchcache.Entry{
		ETag:         resp.Header("ETag"),
		LastModified: resp.Header("Last-Modified"),
		Body:         body,
		FetchedAt:    f.now().UTC(),
	}
	if err := f.cache.Put(src.URL, entry); err != nil {
		f.log.WarnObj("feed cache write failed", "cache_write_error", map[string]any{
			"source_id": src.ID,
			"error":     err.Error(),
		})
	}

	return body, nil
}

// entryFromItem maps a gofeed item onto the raw entry shape the resolvers
// consume. Full-content blocks precede the summary by construction.
func entryFromItem(item *gofeed.Item) domain.Entry {
	e := domain.Entry{
		Title:           item.Title,
		Link:            item.Link,
		Summary:         item.Description,
		Published:       item.Published,
		Updated:         item.Updated,
		PublishedParsed: item.PublishedParsed,
		UpdatedParsed:   item.UpdatedParsed,
	}
	if strings.TrimSpace(item.Content) != "" {
		e.ContentBlobs = append(e.ContentBlobs, item.Content)
	}
	return e
}

// responseSnippet returns a truncated snippet of the response body for error
// messages.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
