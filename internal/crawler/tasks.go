package crawler

import (
	"fmt"

	"github.com/jsalter/versecrawler/internal/manifest"
)

// GenerateTasks expands the structure into the full ordered address list:
// books in canonical order, chapters ascending, verses 1..count. A non-empty
// bookFilter keeps only that book. Negative verse counts are rejected with
// ErrInvalidManifest; they would make the enumeration meaningless.
func GenerateTasks(structure manifest.Structure, bookFilter string) ([]Address, error) {
	var tasks []Address
	for _, book := range structure.OrderedBooks() {
		if bookFilter != "" && book != bookFilter {
			continue
		}
		for chapterIdx, verseCount := range structure[book] {
			if verseCount < 0 {
				return nil, fmt.Errorf("%w: book %q chapter %d has verse count %d",
					ErrInvalidManifest, book, chapterIdx+1, verseCount)
			}
			chapter := chapterIdx + 1
			for verse := 1; verse <= verseCount; verse++ {
				tasks = append(tasks, Address{Book: book, Chapter: chapter, Verse: verse})
			}
		}
	}
	return tasks, nil
}
