package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedwire-hq/feedharvest/internal/domain"
)

func TestDateFromStructuredPublished(t *testing.T) {
	pub := time.Date(2025, 10, 10, 8, 30, 15, 0, time.UTC)
	got, ok := Date(domain.Entry{PublishedParsed: &pub})
	require.True(t, ok)
	assert.Equal(t, pub, got)
}

func TestDateStructuredPublishedWinsOverUpdated(t *testing.T) {
	pub := time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)
	upd := time.Date(2025, 10, 11, 9, 0, 0, 0, time.UTC)
	got, ok := Date(domain.Entry{PublishedParsed: &pub, UpdatedParsed: &upd})
	require.True(t, ok)
	assert.Equal(t, pub, got)
}

func TestDateFallsBackToStructuredUpdated(t *testing.T) {
	upd := time.Date(2025, 10, 11, 9, 0, 0, 0, time.UTC)
	got, ok := Date(domain.Entry{UpdatedParsed: &upd})
	require.True(t, ok)
	assert.Equal(t, upd, got)
}

func TestDateNormalizesZoneToUTC(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	pub := time.Date(2025, 10, 10, 10, 0, 0, 0, loc)
	got, ok := Date(domain.Entry{PublishedParsed: &pub})
	require.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC), got)
}

func TestDateFromFreeTextStrings(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-10-10T08:00:00Z", time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)},
		{"Fri, 10 Oct 2025 08:00:00 +0000", time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)},
		{"10 Oct 2025 08:00:00 +0000", time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)},
		{"2025-10-10 08:00:00", time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)},
		{"2025-10-10", time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, ok := Date(domain.Entry{Published: tc.raw})
		require.True(t, ok, "raw %q", tc.raw)
		assert.Equal(t, tc.want, got, "raw %q", tc.raw)
	}
}

func TestDateUnparsablePublishedFallsToUpdated(t *testing.T) {
	got, ok := Date(domain.Entry{
		Published: "sometime recently",
		Updated:   "2025-10-11T12:00:00Z",
	})
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 10, 11, 12, 0, 0, 0, time.UTC), got)
}

func TestDateFromAvailableOnlinePhrase(t *testing.T) {
	entry := domain.Entry{
		Summary: "<p>Accepted manuscript. Available online 10 October 2025. DOI pending.</p>",
	}
	got, ok := Date(entry)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestDateAvailableOnlineCaseAndWhitespace(t *testing.T) {
	entry := domain.Entry{
		Summary: "available   ONLINE   3   March   2024",
	}
	got, ok := Date(entry)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), got)
}

func TestDateAvailableOnlineUnknownMonth(t *testing.T) {
	// Unknown month name falls to the free-text parser, which also fails.
	_, ok := Date(domain.Entry{Summary: "Available online 10 Octubre 2025"})
	assert.False(t, ok)
}

func TestDateAbsent(t *testing.T) {
	cases := []domain.Entry{
		{},
		{Published: "not a date", Updated: "also not a date"},
		{Summary: "<p>No embedded phrase here.</p>"},
	}
	for i, entry := range cases {
		_, ok := Date(entry)
		assert.False(t, ok, "case %d", i)
	}
}
