// Package manifest loads the static Bible structure used to enumerate
// every fetchable verse without guessing at chapter or verse boundaries.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Books lists every book slug in canonical order, using the URL form of the
// source site (lowercase, underscore-separated).
var Books = []string{
	// Old Testament
	"genesis", "exodus", "leviticus", "numbers", "deuteronomy",
	"joshua", "judges", "ruth", "1_samuel", "2_samuel",
	"1_kings", "2_kings", "1_chronicles", "2_chronicles",
	"ezra", "nehemiah", "esther", "job", "psalms", "proverbs",
	"ecclesiastes", "songs", "isaiah", "jeremiah", "lamentations",
	"ezekiel", "daniel", "hosea", "joel", "amos", "obadiah",
	"jonah", "micah", "nahum", "habakkuk", "zephaniah",
	"haggai", "zechariah", "malachi",
	// New Testament
	"matthew", "mark", "luke", "john", "acts",
	"romans", "1_corinthians", "2_corinthians", "galatians",
	"ephesians", "philippians", "colossians",
	"1_thessalonians", "2_thessalonians",
	"1_timothy", "2_timothy", "titus", "philemon",
	"hebrews", "james", "1_peter", "2_peter",
	"1_john", "2_john", "3_john", "jude", "revelation",
}

var bookSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Books))
	for _, b := range Books {
		set[b] = struct{}{}
	}
	return set
}()

// IsValidBook reports whether slug names a canonical book.
func IsValidBook(slug string) bool {
	_, ok := bookSet[slug]
	return ok
}

// Structure maps a book slug to its per-chapter verse counts. Chapter i
// (1-based) holds counts[i-1] verses.
type Structure map[string][]int

// Load reads and validates a structure file. Any failure here is fatal to a
// crawl run: without the manifest there is no task list.
func Load(path string) (Structure, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration.
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var s Structure
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate manifest %s: %w", path, err)
	}
	return s, nil
}

// Validate checks every book key against the canonical list and rejects
// negative verse counts.
func (s Structure) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("manifest is empty")
	}
	for book, chapters := range s {
		if !IsValidBook(book) {
			return fmt.Errorf("unknown book %q", book)
		}
		for i, count := range chapters {
			if count < 0 {
				return fmt.Errorf("book %q chapter %d has negative verse count %d", book, i+1, count)
			}
		}
	}
	return nil
}

// OrderedBooks returns the books present in the structure in canonical
// order, so iteration is deterministic regardless of JSON key order.
func (s Structure) OrderedBooks() []string {
	out := make([]string, 0, len(s))
	for _, b := range Books {
		if _, ok := s[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// TotalVerses sums the verse counts across every chapter of every book.
func (s Structure) TotalVerses() int {
	total := 0
	for _, chapters := range s {
		for _, count := range chapters {
			total += count
		}
	}
	return total
}
