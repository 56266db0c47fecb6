package report

import (
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/essaygest/internal/history"
	"github.com/dgallion1/essaygest/internal/scoring"
)

func sampleReport() Report {
	return Report{
		Title:        "따돌림 문항",
		QuestionText: "학급 내 따돌림 상황에 대한 지도 방안을 서술하시오.",
		AnswerText:   "첫째, 피해 학생을 보호합니다.\n\n둘째, 가해 학생을 지도합니다.",
		Analysis:     scoring.MockAnalysis(),
		CreatedAt:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestMarkdown_Sections(t *testing.T) {
	md := Markdown(sampleReport())

	for _, want := range []string{
		"# 따돌림 문항",
		"_2026-03-01 09:30_",
		"**점수: 15 / 20**",
		"| 어휘 | 7.5 / 10 |",
		"## 강점",
		"- 문제 상황에 대한 정확한 인식과 체계적인 접근",
		"### 교육학 이론",
		"> 첫째, 피해 학생을 보호합니다.\n>\n> 둘째, 가해 학생을 지도합니다.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdown_EmptyListsAndDefaults(t *testing.T) {
	md := Markdown(Report{})
	if !strings.Contains(md, "# 답안 분석 결과") {
		t.Errorf("expected default title:\n%s", md)
	}
	if strings.Count(md, "- 없음") != 3 {
		t.Errorf("expected three empty-list notices:\n%s", md)
	}
	if !strings.Contains(md, "**점수: 0 / 20**") {
		t.Errorf("expected default max score:\n%s", md)
	}
	if strings.Contains(md, "## 문제") {
		t.Errorf("empty question should not be quoted:\n%s", md)
	}
}

func TestMarkdown_EscapesUserText(t *testing.T) {
	r := sampleReport()
	r.Analysis.Strengths = []string{"1. numbered", "<script>alert(1)</script>"}
	md := Markdown(r)
	if !strings.Contains(md, `- 1\. numbered`) {
		t.Errorf("expected escaped list marker:\n%s", md)
	}
	if strings.Contains(md, "<script>") {
		t.Errorf("expected escaped html:\n%s", md)
	}
}

func TestRender_HTML(t *testing.T) {
	out, err := Render(sampleReport(), FormatHTML)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	html := string(out)
	for _, want := range []string{"<h1>따돌림 문항</h1>", "<table>", "<blockquote>", "<li>"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q:\n%s", want, html)
		}
	}
}

func TestRender_HTMLDoesNotPassScriptThrough(t *testing.T) {
	r := sampleReport()
	r.AnswerText = "<script>alert(1)</script>"
	out, err := Render(r, FormatHTML)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Errorf("script tag leaked into html:\n%s", out)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{"HTML", FormatHTML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromRecord(t *testing.T) {
	rec := history.Record{Title: "t", Memo: "m", AnswerText: "a", Analysis: scoring.MockAnalysis()}
	r := FromRecord(rec)
	if r.Title != "t" || r.Memo != "m" || r.AnswerText != "a" || r.Analysis.Score != 15 {
		t.Errorf("unexpected report: %+v", r)
	}
}
