// Package normalize turns raw document bytes into a stream of canonical
// terms: sentence split, word split, punctuation strip, case fold, stem.
package normalize

import (
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
	"golang.org/x/text/unicode/norm"
)

// Memo amortizes repeated stemming of the same raw word. It is optional:
// a nil Memo still produces identical output, just without the cache.
type Memo struct {
	cache map[string]string
}

// NewMemo returns an empty word-to-stem memo.
func NewMemo() *Memo {
	return &Memo{cache: make(map[string]string)}
}

// Terms splits raw document bytes into sentences, then words, normalizing
// each word and rejecting all-digit tokens and tokens that stem to empty.
// The numeric check runs against the pre-stem token; the empty check runs
// against the post-stem term. The order matters: "3rd" survives, "1234"
// does not.
func Terms(raw []byte, memo *Memo) []string {
	text := norm.NFC.String(string(raw))

	var out []string
	for _, sentence := range splitSentences(text) {
		for _, word := range splitWords(sentence) {
			if term, ok := Term(word, memo); ok {
				out = append(out, term)
			}
		}
	}
	return out
}

// Term normalizes a single word token the same way Terms does: strip
// punctuation, reject all-digit tokens, lowercase, stem, reject tokens
// that stem to empty. Used both by Terms and by the query parser, which
// must normalize query terms identically to indexed ones.
func Term(word string, memo *Memo) (string, bool) {
	stripped := stripPunctuation(word)
	if stripped == "" {
		return "", false
	}
	if isAllDigits(stripped) {
		return "", false
	}
	term := stem(strings.ToLower(stripped), memo)
	if term == "" {
		return "", false
	}
	return term, true
}

func stem(word string, memo *Memo) string {
	if memo == nil {
		return porter2.Stem(word)
	}
	if cached, ok := memo.cache[word]; ok {
		return cached
	}
	stemmed := porter2.Stem(word)
	memo.cache[word] = stemmed
	return stemmed
}

// splitSentences is a conservative sentence splitter: break after
// terminal punctuation followed by whitespace. It does not attempt
// abbreviation detection; the corpus this engine targets is plain text,
// not citation-heavy prose.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				sentences = append(sentences, string(runes[start:i+1]))
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func splitWords(sentence string) []string {
	return strings.FieldsFunc(sentence, func(r rune) bool {
		return unicode.IsSpace(r)
	})
}

func stripPunctuation(word string) string {
	var b strings.Builder
	for _, r := range word {
		if r <= unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isAllDigits(str string) bool {
	for _, ch := range str {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}
