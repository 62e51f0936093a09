package crawler

import "context"

// Fetcher retrieves the raw page for an address. Implementations return
// ErrVerseNotFound when the site has no page for the address, and are
// expected to handle their own transient-error retries.
type Fetcher interface {
	Fetch(ctx context.Context, addr Address) ([]byte, error)
}

// Extractor turns a fetched document into structured verse data. It is a
// pure function of its inputs.
type Extractor interface {
	Extract(doc []byte, addr Address) (VerseData, error)
}

// VerseWriter persists extracted verses grouped by chapter. Implementations
// must be safe for concurrent use by many workers.
type VerseWriter interface {
	InitChapter(book string, chapter int) error
	HasVerse(book string, chapter, verse int) bool
	Merge(book string, chapter int, data VerseData) error
}
