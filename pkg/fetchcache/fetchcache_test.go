package fetchcache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundtrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "cache", "feeds.db"))
	require.NoError(t, err)
	defer store.Close()

	const url = "https://feeds.example.org/rss"

	_, found, err := store.Get(url)
	require.NoError(t, err)
	assert.False(t, found)

	in := Entry{
		ETag:         `"abc"`,
		LastModified: "Fri, 10 Oct 2025 08:00:00 GMT",
		Body:         []byte("<rss/>"),
		FetchedAt:    time.Date(2025, 10, 11, 1, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Put(url, in))

	out, found, err := store.Get(url)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, in.ETag, out.ETag)
	assert.Equal(t, in.LastModified, out.LastModified)
	assert.Equal(t, in.Body, out.Body)
	assert.True(t, in.FetchedAt.Equal(out.FetchedAt))
}

func TestStoreOverwrite(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "feeds.db"))
	require.NoError(t, err)
	defer store.Close()

	const url = "https://feeds.example.org/rss"
	require.NoError(t, store.Put(url, Entry{ETag: `"v1"`}))
	require.NoError(t, store.Put(url, Entry{ETag: `"v2"`}))

	out, found, err := store.Get(url)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `"v2"`, out.ETag)
}

func TestNilStoreIsInert(t *testing.T) {
	var store *Store
	_, found, err := store.Get("https://x.example")
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, store.Put("https://x.example", Entry{}))
	require.NoError(t, store.Close())
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
