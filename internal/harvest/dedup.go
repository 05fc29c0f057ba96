package harvest

import (
	"sort"
	"strings"

	"github.com/feedwire-hq/feedharvest/internal/domain"
)

// DedupSort orders articles by publication instant ascending and keeps the
// first occurrence of each normalized title. The sort is stable, so entries
// with equal instants retain discovery order and the earliest-seen revision
// of a republished article survives.
func DedupSort(articles []domain.Article) []domain.Article {
	if len(articles) == 0 {
		return nil
	}

	sorted := make([]domain.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PubDate.Before(sorted[j].PubDate)
	})

	seen := make(map[string]struct{}, len(sorted))
	out := make([]domain.Article, 0, len(sorted))
	for _, a := range sorted {
		key := strings.TrimSpace(a.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
