package layout

import (
	"strings"
	"unicode/utf8"
)

// terminalPunct are the characters after which no joining space is added
// when two physical lines are merged.
const terminalPunct = ".,!?:;)"

// SplitFlat segments plain transcript text into paragraphs. Blank lines
// end paragraphs; a line ending in a hyphen is joined to the next line
// without a space.
func SplitFlat(text string) Document {
	if text == "" {
		return Document{}
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		doc Document
		buf string
	)
	flush := func() {
		if p := strings.TrimSpace(buf); p != "" {
			doc.Paragraphs = append(doc.Paragraphs, p)
		}
		buf = ""
	}

	for _, raw := range strings.Split(text, "\n") {
		line := normalizeSpace(raw)
		switch {
		case line == "":
			flush()
		case buf == "":
			buf = line
		case strings.HasSuffix(buf, "-"):
			buf = buf[:len(buf)-1] + line
		case endsWithTerminal(buf):
			buf += line
		default:
			buf += " " + line
		}
	}
	flush()
	return doc
}

// FlatText is SplitFlat rendered as a string.
func FlatText(text string) string {
	return SplitFlat(text).String()
}

func endsWithTerminal(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && strings.ContainsRune(terminalPunct, r)
}
