package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/feedwire-hq/feedharvest/internal/domain"
)

func TestDailyPath(t *testing.T) {
	day := time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)
	got := DailyPath("output", day)
	want := filepath.Join("output", "news_2025-10-10.csv")
	if got != want {
		t.Errorf("DailyPath = %q, want %q", got, want)
	}
}

func TestWeeklyPath(t *testing.T) {
	got := WeeklyPath("output", 2025, 41)
	want := filepath.Join("output", "weekly", "news_week_2025-W41.csv")
	if got != want {
		t.Errorf("WeeklyPath = %q, want %q", got, want)
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news_2025-10-10.csv")

	pub := time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)
	in := []domain.Article{
		{
			Title:     "First, with comma",
			Link:      "https://a.example/1",
			Published: domain.DisplayTime(pub),
			Source:    "Journal A",
			PubDate:   pub,
		},
		{
			Title:     `Quoted "headline"`,
			Link:      "https://b.example/2",
			Published: domain.DisplayTime(pub.Add(time.Hour)),
			Source:    "Journal B",
			PubDate:   pub.Add(time.Hour),
		},
	}

	if err := Write(path, in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Title != "First, with comma" {
		t.Errorf("rows[0].Title = %q", rows[0].Title)
	}
	if rows[1].Title != `Quoted "headline"` {
		t.Errorf("rows[1].Title = %q", rows[1].Title)
	}
	if rows[0].PubDate != "2025-10-10T08:00:00Z" {
		t.Errorf("rows[0].PubDate = %q", rows[0].PubDate)
	}
	if rows[0].Published != "2025-10-10 08:00:00 UTC" {
		t.Errorf("rows[0].Published = %q", rows[0].Published)
	}
}

func TestWriteEmptyStillProducesHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")

	if err := Write(path, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(raw)
	if !strings.HasPrefix(content, "\xef\xbb\xbf") {
		t.Error("output missing UTF-8 BOM")
	}
	if !strings.Contains(content, "title,link,published,source,pub_date") {
		t.Errorf("header missing, got %q", content)
	}

	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestWriteCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weekly", "news_week_2025-W41.csv")

	if err := Write(path, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Stat: %v", err)
	}
}

func TestReadToleratesReorderedColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reordered.csv")
	content := "pub_date,title,link,published,source\n2025-10-10T08:00:00Z,Headline,https://x.example,2025-10-10 08:00:00 UTC,Journal\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Title != "Headline" || rows[0].PubDate != "2025-10-10T08:00:00Z" {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
