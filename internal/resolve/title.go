package resolve

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/feedwire-hq/feedharvest/internal/textclean"
)

// genericTitles are placeholder strings some publishers emit instead of a
// headline. Compared after trimming and lower-casing.
var genericTitles = map[string]struct{}{
	"graphical abstract": {},
	"table of contents":  {},
	"toc":                {},
	"cover image":        {},
	"no title":           {},
}

// altOverrideMargin is how many runes longer an image-alt candidate must be
// before it displaces a real (non-generic) feed title.
const altOverrideMargin = 10

// Title picks the best human-readable title for an entry. The feed's own
// title wins unless it is a placeholder, in which case the headline is often
// embedded as the alt text of a graphical-abstract image inside the entry's
// content or summary HTML.
func Title(rawTitle string, htmlBlobs []string) string {
	feedTitle := textclean.Clean(rawTitle)

	var altCandidates []string
	for _, blob := range htmlBlobs {
		if alt := firstImageAlt(blob); alt != "" {
			altCandidates = append(altCandidates, alt)
		}
	}

	if looksGeneric(feedTitle) && len(altCandidates) > 0 {
		return longest(altCandidates)
	}

	if feedTitle != "" && len(altCandidates) > 0 {
		best := longest(altCandidates)
		if utf8.RuneCountInString(best) >= utf8.RuneCountInString(feedTitle)+altOverrideMargin && !looksGeneric(best) {
			return best
		}
	}

	if feedTitle != "" {
		return feedTitle
	}
	if len(altCandidates) > 0 {
		return altCandidates[0]
	}
	return ""
}

// firstImageAlt extracts the alt attribute of the first img tag in the blob
// that carries one (a leading logo or tracking pixel without alt text is
// skipped), sanitized through the same strip-and-repair pipeline as titles.
func firstImageAlt(blob string) string {
	if strings.TrimSpace(blob) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blob))
	if err != nil {
		return ""
	}

	alt, ok := doc.Find("img[alt]").First().Attr("alt")
	if !ok {
		return ""
	}
	return textclean.Clean(alt)
}

// looksGeneric reports whether a title is empty, too short to be a headline,
// or one of the known placeholder phrases.
func looksGeneric(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return true
	}
	if _, ok := genericTitles[t]; ok {
		return true
	}
	return utf8.RuneCountInString(t) < 5
}

// longest returns the longest string by rune count; ties keep the earlier one.
func longest(candidates []string) string {
	best := ""
	bestLen := -1
	for _, c := range candidates {
		if n := utf8.RuneCountInString(c); n > bestLen {
			best = c
			bestLen = n
		}
	}
	return best
}
