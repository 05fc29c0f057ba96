package harvest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwire-hq/feedharvest/internal/domain"
)

func article(title string, pub time.Time) domain.Article {
	return domain.Article{
		Title:     title,
		Published: domain.DisplayTime(pub),
		PubDate:   pub,
	}
}

func TestDedupSortKeepsEarliest(t *testing.T) {
	early := time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)
	late := time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

	out := DedupSort([]domain.Article{
		article("Same Headline", late),
		article("Same Headline", early),
	})

	require.Len(t, out, 1)
	assert.Equal(t, early, out[0].PubDate)
}

func TestDedupSortOrdersAscending(t *testing.T) {
	a := article("A", time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC))
	b := article("B", time.Date(2025, 10, 10, 6, 0, 0, 0, time.UTC))
	c := article("C", time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC))

	out := DedupSort([]domain.Article{a, b, c})

	require.Len(t, out, 3)
	assert.Equal(t, []string{"B", "C", "A"}, []string{out[0].Title, out[1].Title, out[2].Title})
}

func TestDedupSortStableOnEqualTimestamps(t *testing.T) {
	at := time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)
	first := article("Same", at)
	first.Link = "https://first.example/a"
	second := article("Same", at)
	second.Link = "https://second.example/a"

	out := DedupSort([]domain.Article{first, second})

	require.Len(t, out, 1)
	assert.Equal(t, "https://first.example/a", out[0].Link)
}

func TestDedupSortNormalizesTitleWhitespace(t *testing.T) {
	early := time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)
	late := time.Date(2025, 10, 10, 9, 0, 0, 0, time.UTC)

	out := DedupSort([]domain.Article{
		article("  Headline  ", early),
		article("Headline", late),
	})

	require.Len(t, out, 1)
	assert.Equal(t, early, out[0].PubDate)
}

func TestDedupSortCaseSensitiveTitles(t *testing.T) {
	at := time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)
	out := DedupSort([]domain.Article{
		article("Headline", at),
		article("HEADLINE", at),
	})
	assert.Len(t, out, 2)
}

func TestDedupSortEmpty(t *testing.T) {
	assert.Nil(t, DedupSort(nil))
	assert.Nil(t, DedupSort([]domain.Article{}))
}
