package resolve

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/feedwire-hq/feedharvest/internal/domain"
	"github.com/feedwire-hq/feedharvest/internal/textclean"
)

// availableOnlineRe captures the date portion of the provisional-publication
// phrase some journal feeds embed in the entry description, e.g.
// "Available online 10 October 2025".
var availableOnlineRe = regexp.MustCompile(`(?i)Available\s+online\s+(\d{1,2}\s+[A-Za-z]+\s+\d{4})`)

// months maps lower-cased English month names to their numbers.
var months = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// freeTextLayouts are tried in order against raw published/updated strings.
var freeTextLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2 January 2006",
	"January 2, 2006",
}

// Date derives a single UTC publication instant for an entry, trying sources
// in priority order: structured parsed times, raw published/updated strings,
// then the "Available online" phrase in the summary. Every parse failure is
// swallowed; the second return is false when no source yields a date.
func Date(e domain.Entry) (time.Time, bool) {
	if e.PublishedParsed != nil {
		return e.PublishedParsed.UTC(), true
	}
	if e.UpdatedParsed != nil {
		return e.UpdatedParsed.UTC(), true
	}

	for _, raw := range []string{e.Published, e.Updated} {
		if t, ok := parseFreeText(raw); ok {
			return t, true
		}
	}

	if t, ok := availableOnlineDate(e.Summary); ok {
		return t, true
	}

	return time.Time{}, false
}

// parseFreeText attempts the known layouts against a raw date string.
func parseFreeText(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range freeTextLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// availableOnlineDate extracts and parses the provisional-publication date
// from an HTML description. The matched date is resolved against the month
// table at UTC midnight; malformed shapes fall back to the free-text parser.
func availableOnlineDate(descriptionHTML string) (time.Time, bool) {
	if descriptionHTML == "" {
		return time.Time{}, false
	}

	text := textclean.StripHTML(descriptionHTML)
	m := availableOnlineRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	dateStr := m[1]
	parts := strings.Fields(dateStr)
	if len(parts) != 3 {
		return parseFreeText(dateStr)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return parseFreeText(dateStr)
	}
	month, ok := months[strings.ToLower(parts[1])]
	if !ok {
		return parseFreeText(dateStr)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return parseFreeText(dateStr)
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}
