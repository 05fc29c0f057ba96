package harvest

import (
	"context"
	"time"

	"github.com/feedwire-hq/feedharvest/internal/domain"
	"github.com/feedwire-hq/feedharvest/internal/fetch"
	"github.com/feedwire-hq/feedharvest/internal/logger"
	"github.com/feedwire-hq/feedharvest/internal/resolve"
	"github.com/feedwire-hq/feedharvest/pkg/sources"
)

// FeedFetcher retrieves and parses one feed source.
type FeedFetcher interface {
	Fetch(ctx context.Context, src sources.Source) (*fetch.Feed, error)
}

// Harvester runs the daily pipeline: fetch each source, resolve titles and
// publication instants, admit entries on the target day, dedup and sort.
type Harvester struct {
	fetcher FeedFetcher
	log     logger.Logger
}

// New creates a Harvester.
func New(fetcher FeedFetcher, log logger.Logger) *Harvester {
	return &Harvester{
		fetcher: fetcher,
		log:     logger.Ensure(log),
	}
}

// HarvestDay processes the sources sequentially and returns the deduplicated,
// time-ordered articles published on the run's target day. A source that
// fails to fetch or parse is logged and skipped; it never aborts the run.
func (h *Harvester) HarvestDay(ctx context.Context, srcs []sources.Source, run Run) []domain.Article {
	var admitted []domain.Article

	for _, src := range srcs {
		if ctx.Err() != nil {
			break
		}

		feed, err := h.fetcher.Fetch(ctx, src)
		if err != nil {
			h.log.WarnObj("feed fetch failed, skipping source", "feed_fetch_error", map[string]any{
				"source_id": src.ID,
				"url":       src.URL,
				"error":     err.Error(),
			})
			continue
		}

		sourceTitle := feed.Title
		if sourceTitle == "" {
			sourceTitle = src.URL
		}

		kept := 0
		for _, entry := range feed.Entries {
			if a, ok := resolveEntry(entry, sourceTitle, run.TargetDay); ok {
				admitted = append(admitted, a)
				kept++
			}
		}

		h.log.DebugObj("source processed", "source_done", map[string]any{
			"source_id": src.ID,
			"entries":   len(feed.Entries),
			"admitted":  kept,
		})
	}

	return DedupSort(admitted)
}

// resolveEntry builds an article from a raw entry, rejecting entries with no
// resolvable date or a date outside the target day.
func resolveEntry(entry domain.Entry, sourceTitle string, targetDay time.Time) (domain.Article, bool) {
	pubDate, ok := resolve.Date(entry)
	if !ok || !InWindow(pubDate, targetDay) {
		return domain.Article{}, false
	}

	blobs := make([]string, 0, len(entry.ContentBlobs)+1)
	blobs = append(blobs, entry.ContentBlobs...)
	if entry.Summary != "" {
		blobs = append(blobs, entry.Summary)
	}

	return domain.Article{
		Title:     resolve.Title(entry.Title, blobs),
		Link:      entry.Link,
		Published: domain.DisplayTime(pubDate),
		Source:    sourceTitle,
		PubDate:   pubDate,
	}, true
}
