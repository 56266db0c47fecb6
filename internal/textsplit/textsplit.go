// Package textsplit splits reconstructed answer text into paragraphs and
// sentences and keeps prompts inside a token budget.
package textsplit

import (
	"strings"
	"unicode"
)

// Sentence is one sentence of an answer with its zero-based position.
type Sentence struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// Paragraphs splits on blank lines and drops empty paragraphs.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Sentences numbers every sentence of text in reading order. Paragraph
// boundaries always end a sentence.
func Sentences(text string) []Sentence {
	var out []Sentence
	for _, para := range Paragraphs(text) {
		for _, s := range splitSentences(para) {
			out = append(out, Sentence{Position: len(out), Text: s})
		}
	}
	return out
}

// SentenceTexts is Sentences without positions.
func SentenceTexts(text string) []string {
	ss := Sentences(text)
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Text
	}
	return out
}

// splitSentences ends a sentence at '.', '!' or '?' followed by whitespace
// or the end of input.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)

	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := normalize(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	if s := normalize(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
