package weekly

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/feedwire-hq/feedharvest/internal/dataset"
	"github.com/feedwire-hq/feedharvest/internal/domain"
	"github.com/feedwire-hq/feedharvest/internal/harvest"
	"github.com/feedwire-hq/feedharvest/internal/logger"
)

// Window is one ISO week, Monday through Sunday, UTC midnights.
type Window struct {
	Monday time.Time
	Sunday time.Time
}

// LastWeek computes the most recently completed ISO week relative to now.
func LastWeek(now time.Time) Window {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	wd := int(today.Weekday())
	if wd == 0 {
		wd = 7 // ISO weekday: Monday=1 .. Sunday=7
	}
	thisMonday := today.AddDate(0, 0, -(wd - 1))
	lastMonday := thisMonday.AddDate(0, 0, -7)
	return Window{
		Monday: lastMonday,
		Sunday: lastMonday.AddDate(0, 0, 6),
	}
}

// ISO returns the window's ISO (year, week) pair, keyed by its Sunday.
func (w Window) ISO() (year, week int) {
	return w.Sunday.ISOWeek()
}

// Days yields the seven UTC dates of the window in order.
func (w Window) Days() []time.Time {
	days := make([]time.Time, 0, 7)
	for d := w.Monday; !d.After(w.Sunday); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// storedDateLayouts are tried against pub_date strings read back from daily
// files. RFC3339 is what the writer emits; the rest tolerate hand-edited or
// legacy files.
var storedDateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Aggregator builds weekly rollups from previously written daily files.
type Aggregator struct {
	outputDir string
	log       logger.Logger
}

// New creates an Aggregator over the given output directory.
func New(outputDir string, log logger.Logger) *Aggregator {
	return &Aggregator{
		outputDir: outputDir,
		log:       logger.Ensure(log),
	}
}

// Result summarizes one weekly aggregation run.
type Result struct {
	OutputPath string
	Records    int
	FileCount  int
	Window     Window
}

// Run reads the window's available daily files, re-applies the dedup and
// sort policy across their union, and writes the weekly file. Missing or
// unreadable daily files are skipped; only the final write is fatal.
func (a *Aggregator) Run(win Window) (Result, error) {
	var (
		rowSets   [][]dataset.Row
		fileCount int
	)

	for _, day := range win.Days() {
		path := dataset.DailyPath(a.outputDir, day)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		rows, err := dataset.Read(path)
		if err != nil {
			a.log.WarnObj("daily file unreadable, skipping", "daily_read_error", map[string]any{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		rowSets = append(rowSets, rows)
		fileCount++
	}

	articles := a.Aggregate(rowSets)

	year, week := win.ISO()
	outPath := dataset.WeeklyPath(a.outputDir, year, week)
	if err := dataset.Write(outPath, articles); err != nil {
		return Result{}, fmt.Errorf("write weekly dataset: %w", err)
	}

	return Result{
		OutputPath: outPath,
		Records:    len(articles),
		FileCount:  fileCount,
		Window:     win,
	}, nil
}

// Aggregate concatenates the row sets, re-parses stored timestamps, and
// applies the daily dedup and sort policy across the union. Rows whose
// stored timestamp cannot be parsed are excluded with a logged notice.
func (a *Aggregator) Aggregate(rowSets [][]dataset.Row) []domain.Article {
	var pool []domain.Article
	for _, rows := range rowSets {
		for _, row := range rows {
			pubDate, ok := parseStoredDate(row.PubDate)
			if !ok {
				a.log.WarnObj("row has unparsable timestamp, excluding", "row_timestamp_error", map[string]any{
					"title":    row.Title,
					"pub_date": row.PubDate,
				})
				continue
			}
			pool = append(pool, domain.Article{
				Title:     row.Title,
				Link:      row.Link,
				Published: row.Published,
				Source:    row.Source,
				PubDate:   pubDate,
			})
		}
	}
	return harvest.DedupSort(pool)
}

// parseStoredDate parses a stored pub_date string into a UTC instant.
func parseStoredDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range storedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
