package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/feedwire-hq/feedharvest/internal/domain"
)

// Columns is the fixed column set of every daily and weekly file.
var Columns = []string{"title", "link", "published", "source", "pub_date"}

// utf8BOM prefixes output files so spreadsheet tools pick up the encoding.
const utf8BOM = "\xef\xbb\xbf"

// DailyPath returns the daily file path for the given UTC date.
func DailyPath(dir string, day time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("news_%s.csv", day.UTC().Format("2006-01-02")))
}

// WeeklyPath returns the weekly rollup path for the given ISO year and week.
func WeeklyPath(dir string, isoYear, isoWeek int) string {
	return filepath.Join(dir, "weekly", fmt.Sprintf("news_week_%d-W%02d.csv", isoYear, isoWeek))
}

// Write persists articles to path, creating parent directories as needed.
// The header row is always written, so an empty slice still yields a
// well-formed file. Write failures are the one fatal condition of a run.
func Write(path string, articles []domain.Article) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("dataset path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range articles {
		rec := []string{
			a.Title,
			a.Link,
			a.Published,
			a.Source,
			a.PubDate.UTC().Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush dataset: %w", err)
	}
	return nil
}

// Row is one stored record read back from a daily file. PubDate is kept as
// the raw stored string; the weekly aggregator re-parses it.
type Row struct {
	Title     string
	Link      string
	Published string
	Source    string
	PubDate   string
}

// Read loads all rows from a previously written dataset file. Column order
// is taken from the file's own header so reordered files still read back.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}

	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row{
			Title:     field(rec, "title"),
			Link:      field(rec, "link"),
			Published: field(rec, "published"),
			Source:    field(rec, "source"),
			PubDate:   field(rec, "pub_date"),
		})
	}
	return rows, nil
}
