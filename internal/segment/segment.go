// Package segment splits text in any language into words and sentences.
package segment

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Token is one segment of a text. Start and End are byte offsets into the
// original string.
type Token struct {
	Text   string `json:"text"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	IsWord bool   `json:"is_word"`
}

// Tokenize splits text at UAX #29 word boundaries. Hyphenated compounds are
// kept together and runs of scripts written without spaces are split into
// grapheme clusters.
func Tokenize(text string) []Token {
	var tokens []Token
	offset := 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)
		tok := Token{Text: word, Start: offset, End: offset + len(word), IsWord: isWord(word)}
		offset = tok.End

		if tok.IsWord && unspaced(word) {
			tokens = append(tokens, graphemes(tok)...)
			continue
		}
		tokens = append(tokens, tok)
	}
	return joinHyphens(tokens)
}

// Words returns the word tokens of text, NFC-normalised and lower-cased.
func Words(text string) []string {
	lower := cases.Lower(language.Und)
	var words []string
	for _, tok := range Tokenize(norm.NFC.String(text)) {
		if tok.IsWord {
			words = append(words, lower.String(tok.Text))
		}
	}
	return words
}

// Normalize puts a single word in the form Words produces.
func Normalize(word string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(word)))
}

// SplitSentences splits text at UAX #29 sentence boundaries. Sentences are
// trimmed and empty ones dropped.
func SplitSentences(text string) []string {
	var sentences []string
	state := -1
	rest := text
	for len(rest) > 0 {
		var sentence string
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		if s := strings.TrimSpace(sentence); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

var unspacedScripts = []*unicode.RangeTable{unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Thai}

func unspaced(s string) bool {
	for _, r := range s {
		if unicode.In(r, unspacedScripts...) {
			return true
		}
	}
	return false
}

func graphemes(tok Token) []Token {
	var out []Token
	offset := tok.Start
	state := -1
	rest := tok.Text
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		out = append(out, Token{Text: cluster, Start: offset, End: offset + len(cluster), IsWord: isWord(cluster)})
		offset += len(cluster)
	}
	return out
}

func isHyphen(s string) bool {
	return s == "-" || s == "‐" || s == "‑"
}

// joinHyphens merges word, hyphen, word sequences with no space between them.
func joinHyphens(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		n := len(out)
		if isHyphen(tok.Text) && n > 0 && out[n-1].IsWord && i+1 < len(tokens) && tokens[i+1].IsWord &&
			!unspaced(out[n-1].Text) && !unspaced(tokens[i+1].Text) {
			next := tokens[i+1]
			out[n-1].Text += tok.Text + next.Text
			out[n-1].End = next.End
			i++
			continue
		}
		out = append(out, tok)
	}
	return out
}
