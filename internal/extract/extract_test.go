package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsalter/versecrawler/internal/crawler"
	"github.com/jsalter/versecrawler/internal/extract"
)

const genesisPage = `<html><body>
<div id="par">
  <span class="versiontext"><a href="/niv/genesis/1.htm">New International Version</a></span>
  In the beginning God created the heavens and the earth.<br>
  <span class="versiontext"><a href="/nlt/genesis/1.htm">New Living Translation</a></span>
  In the beginning God created the heavens and
  the earth.<br>
  <span class="versiontext"><a href="/esv/genesis/1.htm">English Standard Version</a></span>
  In the beginning, God created the heavens and the earth.<br>
  <span class="versiontext"><a href="/kjv/genesis/1.htm">King James Bible</a></span>
  In the beginning God created the heaven and the earth.<br>
  <span class="versiontext"><a href="/nkjv/genesis/1.htm">New King James Version</a></span>
  In the beginning God created the heavens and <i>the</i> earth.
  <span class="p"></span>
</div>
<div class="padleft">
  <div class="vheading">Hebrew Texts Analysis</div>
  <span class="word">In the beginning</span><br>
  <span class="heb">בְּרֵאשִׁ֖ית</span><br>
  <span class="translit">(bə-rê-šîṯ)</span>
  <span class="parse">Preposition-b | Noun - feminine singular</span><br>
  <span class="str"><a href="/hebrew/strongs_7225.htm">Strong's 7225</a></span>
  <span class="str2">the first, in place, time, order or rank</span><br>
  <span class="word">God</span><br>
  <span class="heb">אֱלֹהִ֑ים</span><br>
  <span class="translit">(’ĕ-lō-hîm)</span>
  <span class="parse">Noun - masculine plural</span><br>
  <span class="str"><a href="/hebrew/strongs_430.htm">Strong's 430</a></span>
  <span class="str2">gods, God</span><br>
</div>
<div id="crf">
  <span class="crossverse"><a href="/john/1-1.htm">John 1:1</a></span><br>
  In the beginning was the Word, and the Word was with God.<br>
  <span class="crossverse"><a href="/hebrews/11-3.htm">Hebrews 11:3</a></span><br>
  By faith we understand that the universe was formed at God's command.
  <span class="p"></span>
</div>
</body></html>`

const greekPage = `<html><body>
<div id="par">
  <span class="versiontext"><a href="/esv/1_peter/1.htm">English Standard Version</a></span>
  Peter, an apostle of Jesus Christ.
  <span class="p"></span>
</div>
<div class="padleft">
  <div class="vheading">Greek Texts Analysis</div>
  <span class="word">Peter,</span><br>
  <span class="grk">Πέτρος</span><br>
  <span class="translit">(Petros)</span>
  <span class="parse">Noun - Nominative Masculine Singular</span><br>
  <span class="str"><a href="/greek/strongs_4074.htm">Strong's 4074</a></span>
  <span class="str2">a Greek name meaning stone</span><br>
</div>
</body></html>`

func TestExtract(t *testing.T) {
	ex := extract.New()
	addr := crawler.Address{Book: "genesis", Chapter: 1, Verse: 1}

	data, err := ex.Extract([]byte(genesisPage), addr)
	require.NoError(t, err)

	t.Run("Addressing", func(t *testing.T) {
		assert.Equal(t, "Genesis 1:1", data.Reference)
		assert.Equal(t, "Genesis", data.Book)
		assert.Equal(t, 1, data.Chapter)
		assert.Equal(t, 1, data.Verse)
	})

	t.Run("Translations", func(t *testing.T) {
		require.Len(t, data.Translations, 4)
		versions := make([]string, 0, len(data.Translations))
		for _, tr := range data.Translations {
			versions = append(versions, tr.Version)
		}
		// KJV is not a target version and must be skipped.
		assert.Equal(t, []string{"NIV", "NLT", "ESV", "NKJV"}, versions)

		assert.Equal(t,
			"In the beginning God created the heavens and the earth.",
			data.Translations[0].Text)
		// Text split across lines collapses to single spaces.
		assert.Equal(t,
			"In the beginning God created the heavens and the earth.",
			data.Translations[1].Text)
		// Italicized translator-supplied words are kept.
		assert.Equal(t,
			"In the beginning God created the heavens and the earth.",
			data.Translations[3].Text)
	})

	t.Run("OriginalWords", func(t *testing.T) {
		require.Len(t, data.OriginalWords, 2)

		first := data.OriginalWords[0]
		assert.Equal(t, "In the beginning", first.EnglishWord)
		assert.Equal(t, "בְּרֵאשִׁ֖ית", first.Word)
		assert.Equal(t, "bə-rê-šîṯ", first.Transliteration)
		assert.Equal(t, "Preposition-b | Noun - feminine singular", first.PartOfSpeech)
		assert.Equal(t, "7225", first.StrongsNumber)
		assert.Equal(t, "the first, in place, time, order or rank", first.Definition)
		assert.Equal(t, "hebrew", first.Language)

		second := data.OriginalWords[1]
		assert.Equal(t, "God", second.EnglishWord)
		assert.Equal(t, "430", second.StrongsNumber)
	})

	t.Run("CrossReferences", func(t *testing.T) {
		require.Len(t, data.CrossReferences, 2)
		assert.Equal(t, "John 1:1", data.CrossReferences[0].Reference)
		assert.Equal(t,
			"In the beginning was the Word, and the Word was with God.",
			data.CrossReferences[0].Text)
		assert.Equal(t, "Hebrews 11:3", data.CrossReferences[1].Reference)
	})
}

func TestExtractGreekLexicon(t *testing.T) {
	ex := extract.New()
	addr := crawler.Address{Book: "1_peter", Chapter: 1, Verse: 1}

	data, err := ex.Extract([]byte(greekPage), addr)
	require.NoError(t, err)

	require.Len(t, data.OriginalWords, 1)
	word := data.OriginalWords[0]
	assert.Equal(t, "greek", word.Language)
	assert.Equal(t, "Πέτρος", word.Word)
	assert.Equal(t, "Petros", word.Transliteration)
	assert.Equal(t, "4074", word.StrongsNumber)

	require.Len(t, data.Translations, 1)
	assert.Equal(t, "ESV", data.Translations[0].Version)
}

func TestExtractUnrecognizedPage(t *testing.T) {
	ex := extract.New()
	addr := crawler.Address{Book: "jude", Chapter: 1, Verse: 1}

	data, err := ex.Extract([]byte("<html><body><p>nothing here</p></body></html>"), addr)
	require.NoError(t, err)
	assert.Equal(t, "Jude 1:1", data.Reference)
	assert.Empty(t, data.Translations)
	assert.Empty(t, data.OriginalWords)
	assert.Empty(t, data.CrossReferences)
}

func TestExtractEmptyDocument(t *testing.T) {
	ex := extract.New()
	data, err := ex.Extract(nil, crawler.Address{Book: "jude", Chapter: 1, Verse: 2})
	require.NoError(t, err)
	assert.Empty(t, data.Translations)
}
