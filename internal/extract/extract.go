// Package extract parses verse pages into structured data: parallel
// translations, the original-language lexicon, and cross-references.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jsalter/versecrawler/internal/crawler"
)

// TargetVersions are the translations worth keeping from the parallel
// translations block.
var TargetVersions = map[string]string{
	"New International Version": "NIV",
	"New Living Translation":    "NLT",
	"English Standard Version":  "ESV",
	"New King James Version":    "NKJV",
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	strongsRe    = regexp.MustCompile(`strongs_(\d+)`)
)

// Extractor implements crawler.Extractor. It is stateless.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses one fetched page. Missing sections are not errors; a page
// with none of the expected markup yields an empty but addressed VerseData.
func (e *Extractor) Extract(doc []byte, addr crawler.Address) (crawler.VerseData, error) {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return crawler.VerseData{}, fmt.Errorf("parse page for %s: %w", addr, err)
	}
	return crawler.VerseData{
		Reference:       addr.Reference(),
		Book:            addr.BookTitle(),
		Chapter:         addr.Chapter,
		Verse:           addr.Verse,
		Translations:    extractTranslations(page),
		OriginalWords:   extractOriginalWords(page),
		CrossReferences: extractCrossReferences(page),
	}, nil
}

// extractTranslations reads the parallel translations block (div#par). Each
// version heading is a span.versiontext; the verse text is spread across the
// sibling nodes that follow it, up to the next version or paragraph break.
func extractTranslations(page *goquery.Document) []crawler.Translation {
	var translations []crawler.Translation

	page.Find("div#par span.versiontext").Each(func(_ int, s *goquery.Selection) {
		versionName := strings.TrimSpace(s.Find("a").First().Text())
		if versionName == "" {
			return
		}
		abbrev := ""
		for name, a := range TargetVersions {
			if strings.Contains(versionName, name) {
				abbrev = a
				break
			}
		}
		if abbrev == "" {
			return
		}

		var parts []string
	siblings:
		for sib := s.Get(0).NextSibling; sib != nil; sib = sib.NextSibling {
			switch sib.Type {
			case html.ElementNode:
				switch sib.Data {
				case "span":
					if hasClass(sib, "versiontext") || hasClass(sib, "p") {
						break siblings
					}
				case "div":
					break siblings
				case "br":
					continue
				case "i":
					// Italics mark words supplied by the translators.
					parts = append(parts, nodeText(sib))
				}
			case html.TextNode:
				if text := strings.TrimSpace(sib.Data); text != "" {
					parts = append(parts, text)
				}
			}
		}

		text := collapseWhitespace(strings.Join(parts, " "))
		if text != "" {
			translations = append(translations, crawler.Translation{Version: abbrev, Text: text})
		}
	})

	return translations
}

// extractOriginalWords reads the lexicon block. The page carries either a
// Hebrew or a Greek section under a div.vheading; each entry starts at a
// span.word followed by the original word, transliteration, parse info,
// Strong's link, and definition spans in document order.
func extractOriginalWords(page *goquery.Document) []crawler.OriginalWord {
	var (
		heading  *html.Node
		language string
	)
	page.Find("div.vheading").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		switch {
		case strings.Contains(text, "Hebrew"):
			heading, language = s.Get(0), "hebrew"
			return false
		case strings.Contains(text, "Greek"):
			heading, language = s.Get(0), "greek"
			return false
		}
		return true
	})
	if heading == nil || heading.Parent == nil {
		return nil
	}

	originalClass := "grk"
	if language == "hebrew" {
		originalClass = "heb"
	}

	var (
		words []crawler.OriginalWord
		cur   *crawler.OriginalWord
	)
	flush := func() {
		if cur != nil && cur.Word != "" {
			words = append(words, *cur)
		}
		cur = nil
	}

	walk(heading.Parent, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "span" {
			return
		}
		if hasClass(n, "word") {
			flush()
			cur = &crawler.OriginalWord{
				EnglishWord: strings.TrimSpace(nodeText(n)),
				Language:    language,
			}
			return
		}
		if cur == nil {
			return
		}
		switch {
		case hasClass(n, originalClass):
			if cur.Word == "" {
				cur.Word = strings.TrimSpace(nodeText(n))
			}
		case hasClass(n, "translit"):
			if cur.Transliteration == "" {
				cur.Transliteration = strings.Trim(strings.TrimSpace(nodeText(n)), "()")
			}
		case hasClass(n, "parse"):
			if cur.PartOfSpeech == "" {
				cur.PartOfSpeech = strings.TrimSpace(nodeText(n))
			}
		case hasClass(n, "str"):
			if cur.StrongsNumber == "" {
				cur.StrongsNumber = strongsNumber(n)
			}
		case hasClass(n, "str2"):
			if cur.Definition == "" {
				cur.Definition = strings.TrimSpace(nodeText(n))
			}
		}
	})
	flush()

	return words
}

// extractCrossReferences reads div#crf. Each span.crossverse holds the
// reference link; the quoted text sits in the sibling text nodes up to the
// next reference or paragraph break.
func extractCrossReferences(page *goquery.Document) []crawler.CrossReference {
	var refs []crawler.CrossReference

	page.Find("div#crf span.crossverse").Each(func(_ int, s *goquery.Selection) {
		reference := strings.TrimSpace(s.Find("a").First().Text())
		if reference == "" {
			return
		}

		var text strings.Builder
	siblings:
		for sib := s.Get(0).NextSibling; sib != nil; sib = sib.NextSibling {
			switch sib.Type {
			case html.ElementNode:
				if sib.Data == "span" && (hasClass(sib, "crossverse") || hasClass(sib, "p")) {
					break siblings
				}
			case html.TextNode:
				if t := strings.TrimSpace(sib.Data); t != "" {
					text.WriteString(t)
					text.WriteString(" ")
				}
			}
		}

		refs = append(refs, crawler.CrossReference{
			Reference: reference,
			Text:      strings.TrimSpace(text.String()),
		})
	})

	return refs
}

func strongsNumber(strSpan *html.Node) string {
	var href string
	walk(strSpan, func(n *html.Node) {
		if href == "" && n.Type == html.ElementNode && n.Data == "a" {
			href = attr(n, "href")
		}
	})
	if m := strongsRe.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

// walk visits n and every descendant in document order.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
