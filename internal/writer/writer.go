// Package writer persists extracted verses into per-chapter JSON files and
// is the durable checkpoint that makes a crawl resumable.
package writer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jsalter/versecrawler/internal/crawler"
)

type chapterKey struct {
	book    string
	chapter int
}

// chapterFile is the on-disk shape of one chapter.
type chapterFile struct {
	Book    string              `json:"book"`
	Chapter int                 `json:"chapter"`
	Verses  []crawler.VerseData `json:"verses"`
}

// ChapterWriter merges verses into chapter files under per-chapter locks.
// The registry mutex guards only the two maps; it is never held during I/O.
// Each chapter's lock serializes load-merge-rewrite for that file, so a
// written file always reflects every verse merged so far.
type ChapterWriter struct {
	outputDir string
	logger    *zap.Logger

	mu       sync.RWMutex
	locks    map[chapterKey]*sync.Mutex
	chapters map[chapterKey]map[int]crawler.VerseData
}

// New creates a ChapterWriter rooted at outputDir, creating it if needed.
func New(outputDir string, logger *zap.Logger) (*ChapterWriter, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}
	return &ChapterWriter{
		outputDir: outputDir,
		logger:    logger,
		locks:     make(map[chapterKey]*sync.Mutex),
		chapters:  make(map[chapterKey]map[int]crawler.VerseData),
	}, nil
}

// OutputDir returns the root directory chapter files are written under.
func (w *ChapterWriter) OutputDir() string {
	return w.outputDir
}

// ChapterPath returns the file path for one chapter.
func (w *ChapterWriter) ChapterPath(book string, chapter int) string {
	return filepath.Join(w.outputDir, book, fmt.Sprintf("%d.json", chapter))
}

// lockFor returns the chapter's lock, creating it on first reference. Locks
// are never re-created for the lifetime of the writer.
func (w *ChapterWriter) lockFor(key chapterKey) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[key] = lock
	}
	return lock
}

// InitChapter prepares the in-memory index for one chapter, loading any
// existing file so already-written verses are skipped on a resumed run.
// It is idempotent. A corrupt or unreadable file is logged and treated as
// empty; those verses simply get re-fetched.
func (w *ChapterWriter) InitChapter(book string, chapter int) error {
	key := chapterKey{book: book, chapter: chapter}
	lock := w.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	path := w.ChapterPath(book, chapter)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create chapter dir for %s: %w", path, err)
	}

	w.mu.Lock()
	if _, ok := w.chapters[key]; !ok {
		w.chapters[key] = make(map[int]crawler.VerseData)
	}
	w.mu.Unlock()

	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from the configured output root.
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		w.logger.Warn("Could not read existing chapter file; starting empty",
			zap.String("path", path), zap.Error(err))
		return nil
	}

	var existing chapterFile
	if err := json.Unmarshal(data, &existing); err != nil {
		w.logger.Warn("Corrupt chapter file; starting empty",
			zap.String("path", path), zap.Error(err))
		return nil
	}

	w.mu.Lock()
	for _, verse := range existing.Verses {
		if verse.Verse > 0 {
			w.chapters[key][verse.Verse] = verse
		}
	}
	w.mu.Unlock()
	return nil
}

// HasVerse reports whether the verse is already recorded for its chapter.
// The orchestrator uses this to drop completed work before dispatch.
func (w *ChapterWriter) HasVerse(book string, chapter, verse int) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.chapters[chapterKey{book: book, chapter: chapter}][verse]
	return ok
}

// Merge records one verse and rewrites the chapter file with all verses for
// that chapter sorted ascending by verse number. The rewrite goes through a
// temp file plus rename so a reader never observes a partial file.
func (w *ChapterWriter) Merge(book string, chapter int, data crawler.VerseData) error {
	key := chapterKey{book: book, chapter: chapter}
	lock := w.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	w.mu.Lock()
	if _, ok := w.chapters[key]; !ok {
		w.chapters[key] = make(map[int]crawler.VerseData)
	}
	w.chapters[key][data.Verse] = data
	verses := make([]crawler.VerseData, 0, len(w.chapters[key]))
	for _, v := range w.chapters[key] {
		verses = append(verses, v)
	}
	w.mu.Unlock()

	sort.Slice(verses, func(i, j int) bool { return verses[i].Verse < verses[j].Verse })

	payload, err := json.MarshalIndent(chapterFile{
		Book:    book,
		Chapter: chapter,
		Verses:  verses,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chapter %s/%d: %w", book, chapter, err)
	}

	path := w.ChapterPath(book, chapter)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create chapter dir for %s: %w", path, err)
	}
	if err := atomicWrite(path, payload); err != nil {
		return fmt.Errorf("write chapter %s/%d: %w", book, chapter, err)
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}
