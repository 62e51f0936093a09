// Package crawler defines the core types and the crawl engine that turns the
// Bible structure manifest into fetched, extracted, and persisted verses.
package crawler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrVerseNotFound signals that the remote site has no page for an address.
// It is a soft per-task outcome, not a transport fault.
var ErrVerseNotFound = errors.New("verse not found")

// ErrInvalidManifest signals a structurally unusable manifest at task
// generation time.
var ErrInvalidManifest = errors.New("invalid manifest")

// Address identifies a single verse in (book, chapter, verse) form. Book is
// the URL slug used by the source site (e.g. "1_peter").
type Address struct {
	Book    string
	Chapter int
	Verse   int
}

// BookTitle renders the slug as a display name, e.g. "1_peter" -> "1 Peter".
func (a Address) BookTitle() string {
	words := strings.Split(a.Book, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Reference renders the human-readable form, e.g. "1 Peter 1:1".
func (a Address) Reference() string {
	return fmt.Sprintf("%s %d:%d", a.BookTitle(), a.Chapter, a.Verse)
}

func (a Address) String() string {
	return fmt.Sprintf("%s/%d-%d", a.Book, a.Chapter, a.Verse)
}

// Translation is one Bible translation of a verse.
type Translation struct {
	Version string `json:"version"`
	Text    string `json:"text"`
}

// OriginalWord is one original-language lexicon entry (Hebrew or Greek) with
// its Strong's number and definition.
type OriginalWord struct {
	EnglishWord     string `json:"english_word"`
	Word            string `json:"word"`
	Transliteration string `json:"transliteration"`
	StrongsNumber   string `json:"strongs_number"`
	PartOfSpeech    string `json:"part_of_speech"`
	Definition      string `json:"definition"`
	Language        string `json:"language"`
}

// CrossReference points at another verse quoted alongside this one.
type CrossReference struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// VerseData is the complete extraction result for one verse.
type VerseData struct {
	Reference       string           `json:"reference"`
	Book            string           `json:"book"`
	Chapter         int              `json:"chapter"`
	Verse           int              `json:"verse"`
	Translations    []Translation    `json:"translations"`
	OriginalWords   []OriginalWord   `json:"original_words"`
	CrossReferences []CrossReference `json:"cross_references"`
}
