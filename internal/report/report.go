// Package report renders scored answers as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/dgallion1/essaygest/internal/history"
	"github.com/dgallion1/essaygest/internal/scoring"
)

// Format selects the report output.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "md", "markdown", "html" and "" (Markdown).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// ContentType returns the HTTP content type for f.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/markdown; charset=utf-8"
}

// Report is the data a report is rendered from.
type Report struct {
	Title        string
	Memo         string
	QuestionText string
	AnswerText   string
	Analysis     scoring.Analysis
	CreatedAt    time.Time
}

// FromRecord builds a Report from a saved record.
func FromRecord(rec history.Record) Report {
	return Report{
		Title:        rec.Title,
		Memo:         rec.Memo,
		QuestionText: rec.QuestionText,
		AnswerText:   rec.AnswerText,
		Analysis:     rec.Analysis,
		CreatedAt:    rec.CreatedAt,
	}
}

// Render produces r in format f.
func Render(r Report, f Format) ([]byte, error) {
	md := Markdown(r)
	if f != FormatHTML {
		return []byte(md), nil
	}
	return HTML(md)
}

var converter = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// HTML converts Markdown to an HTML fragment. Raw HTML in the input is
// escaped, since answers are user text.
func HTML(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// Markdown renders r as a Markdown document.
func Markdown(r Report) string {
	a := scoring.Sanitize(r.Analysis)
	var sb strings.Builder

	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = "답안 분석 결과"
	}
	fmt.Fprintf(&sb, "# %s\n\n", escapeInline(title))
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "_%s_\n\n", r.CreatedAt.Format("2006-01-02 15:04"))
	}
	if memo := strings.TrimSpace(r.Memo); memo != "" {
		fmt.Fprintf(&sb, "%s\n\n", escapeInline(memo))
	}

	fmt.Fprintf(&sb, "**점수: %s / %s**\n\n", formatScore(a.Score), formatScore(a.MaxScore))

	sb.WriteString("## 영역별 점수\n\n")
	sb.WriteString("| 영역 | 점수 |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| 논리적 구조 | %s / 10 |\n", formatScore(a.Categories.LogicalStructure))
	fmt.Fprintf(&sb, "| 맞춤법 | %s / 10 |\n", formatScore(a.Categories.Spelling))
	fmt.Fprintf(&sb, "| 어휘 | %s / 10 |\n\n", formatScore(a.Categories.Vocabulary))

	writeList(&sb, "강점", a.Strengths)
	writeList(&sb, "보완점", a.Weaknesses)
	writeList(&sb, "개선 방안", a.Improvements)

	sb.WriteString("## 상세 분석\n\n")
	for _, sec := range []struct{ title, body string }{
		{"내용 분석", a.DetailedAnalysis.ContentAnalysis},
		{"구조 분석", a.DetailedAnalysis.StructureAnalysis},
		{"교육적 관점", a.DetailedAnalysis.EducationalPerspective},
		{"교육학 이론", a.DetailedAnalysis.EducationalTheory},
	} {
		fmt.Fprintf(&sb, "### %s\n\n%s\n\n", sec.title, escapeInline(sec.body))
	}

	writeQuote(&sb, "문제", r.QuestionText)
	writeQuote(&sb, "답안", r.AnswerText)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeList(sb *strings.Builder, title string, items []string) {
	fmt.Fprintf(sb, "## %s\n\n", title)
	if len(items) == 0 {
		sb.WriteString("- 없음\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", escapeInline(item))
	}
	sb.WriteString("\n")
}

// writeQuote renders text as a block quote, one quoted paragraph per
// source paragraph.
func writeQuote(sb *strings.Builder, title, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	for i, para := range strings.Split(text, "\n\n") {
		if i > 0 {
			sb.WriteString(">\n")
		}
		for _, line := range strings.Split(strings.TrimSpace(para), "\n") {
			fmt.Fprintf(sb, "> %s\n", escapeInline(line))
		}
	}
	sb.WriteString("\n")
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"<", "&lt;",
	">", "&gt;",
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"|", `\|`,
	"#", `\#`,
	"[", `\[`,
	"]", `\]`,
)

// escapeInline keeps model and user text from being read as Markdown or
// HTML. Leading list markers are also escaped so "1. ..." stays literal.
func escapeInline(s string) string {
	s = inlineEscaper.Replace(strings.TrimSpace(s))
	if n := leadingDigits(s); n > 0 && n < len(s) && (s[n] == '.' || s[n] == ')') {
		s = s[:n] + `\` + s[n:]
	}
	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, "+ ") {
		s = `\` + s
	}
	return s
}

func leadingDigits(s string) int {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return n
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
