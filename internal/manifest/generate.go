package manifest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultSourceURL serves the King James text as one "Book C:V text" line
// per verse, which is everything needed to recover the chapter layout.
const DefaultSourceURL = "https://openbible.com/textfiles/kjv.txt"

var verseLineRe = regexp.MustCompile(`^(.+?) (\d+):(\d+)\s`)

// BuildStructure parses a flat verse-per-line text into a Structure. Lines
// that do not open with a "Book C:V" reference are ignored. Verse numbers
// may arrive out of order; the count kept per chapter is the maximum seen.
func BuildStructure(r io.Reader) (Structure, error) {
	counts := make(map[string]map[int]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := verseLineRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		book := bookSlug(m[1])
		chapter, err := strconv.Atoi(m[2])
		if err != nil || chapter < 1 {
			continue
		}
		verse, err := strconv.Atoi(m[3])
		if err != nil || verse < 1 {
			continue
		}
		if counts[book] == nil {
			counts[book] = make(map[int]int)
		}
		if verse > counts[book][chapter] {
			counts[book][chapter] = verse
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan source text: %w", err)
	}

	s := make(Structure, len(counts))
	for book, chapters := range counts {
		maxChapter := 0
		for c := range chapters {
			if c > maxChapter {
				maxChapter = c
			}
		}
		perChapter := make([]int, maxChapter)
		for c, verses := range chapters {
			perChapter[c-1] = verses
		}
		s[book] = perChapter
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("built structure is invalid: %w", err)
	}
	return s, nil
}

// bookSlug converts a display name like "Song of Solomon" or "1 Peter" to
// the URL slug used as the manifest key.
func bookSlug(name string) string {
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if slug == "song_of_solomon" {
		return "songs"
	}
	return slug
}

// FetchSourceText downloads the verse-per-line source from url.
func FetchSourceText(ctx context.Context, url, userAgent string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// Save writes the structure to path as indented JSON, creating parent
// directories as needed.
func (s Structure) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create manifest dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
