package textsplit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// EstimateTokens gives a rough token count. Latin text runs about 1.33
// tokens per word; Hangul and other CJK text tokenizes closer to one token
// per character, so those runes are counted separately.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	var wide, words int
	inWord := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hangul, r) || unicode.Is(unicode.Han, r):
			wide++
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}
	tokens := int(float64(words)*1.33) + wide
	if tokens < 1 && utf8.RuneCountInString(strings.TrimSpace(text)) > 0 {
		tokens = 1
	}
	return tokens
}

// Fit truncates text at a sentence boundary so it stays within maxTokens.
// The first sentence is always kept, cut by runes if it alone is too long.
// maxTokens <= 0 disables the limit.
func Fit(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text, false
	}

	var b strings.Builder
	used := 0
	for _, para := range Paragraphs(text) {
		sep := "\n\n"
		for _, s := range splitSentences(para) {
			n := EstimateTokens(s)
			if used+n > maxTokens {
				if b.Len() == 0 {
					return truncateRunes(s, maxTokens), true
				}
				return b.String(), true
			}
			if b.Len() > 0 {
				b.WriteString(sep)
			}
			b.WriteString(s)
			sep = " "
			used += n
		}
	}
	return b.String(), true
}

func truncateRunes(s string, maxTokens int) string {
	var b strings.Builder
	for _, r := range s {
		if EstimateTokens(b.String()+string(r)) > maxTokens {
			break
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
