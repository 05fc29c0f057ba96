package domain

import "time"

// Domain contains core models shared by the daily and weekly pipelines.

// Entry is the raw feed item handed to the resolvers. All fields are
// optional; resolvers must tolerate any combination of missing values.
type Entry struct {
	Title           string
	Link            string
	Summary         string
	ContentBlobs    []string
	Published       string
	Updated         string
	PublishedParsed *time.Time
	UpdatedParsed   *time.Time
}

// Article is one resolved, window-admitted record. Immutable once built.
type Article struct {
	Title     string
	Link      string
	Published string // display form, "2006-01-02 15:04:05 UTC"
	Source    string
	PubDate   time.Time // always UTC
}

// DisplayTime renders a UTC instant in the published-column form.
func DisplayTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
