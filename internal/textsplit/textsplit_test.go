package textsplit

import (
	"strings"
	"testing"
)

func TestParagraphs(t *testing.T) {
	got := Paragraphs("a b\n\n\n\n c \r\n\r\nd")
	want := []string{"a b", "c", "d"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSentences_KoreanEndings(t *testing.T) {
	text := "이러한 상황에서 교사로서 대응하겠습니다. 첫째, 피해 학생을 보호하겠습니다!\n\n둘째, 상담을 실시합니까? 그렇습니다"
	got := Sentences(text)
	want := []string{
		"이러한 상황에서 교사로서 대응하겠습니다.",
		"첫째, 피해 학생을 보호하겠습니다!",
		"둘째, 상담을 실시합니까?",
		"그렇습니다",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Position != i {
			t.Errorf("sentence %d: expected position %d, got %d", i, i, got[i].Position)
		}
		if got[i].Text != w {
			t.Errorf("sentence %d: expected %q, got %q", i, w, got[i].Text)
		}
	}
}

func TestSentences_DecimalNotSplit(t *testing.T) {
	got := SentenceTexts("점수는 3.5점입니다. 끝.")
	want := []string{"점수는 3.5점입니다.", "끝."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSentences_Empty(t *testing.T) {
	if got := Sentences("  \n\n "); len(got) != 0 {
		t.Errorf("expected no sentences, got %+v", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Error("expected 0 tokens for empty text")
	}
	if got := EstimateTokens("one two three"); got != 3 {
		t.Errorf("expected 3 tokens for three words, got %d", got)
	}
	if got := EstimateTokens("학생"); got != 2 {
		t.Errorf("expected 2 tokens for two Hangul syllables, got %d", got)
	}
	if got := EstimateTokens("a"); got != 1 {
		t.Errorf("expected floor of 1 token, got %d", got)
	}
}

func TestFit_UnderBudgetUnchanged(t *testing.T) {
	text := "Short answer. Still short."
	got, truncated := Fit(text, 100)
	if truncated || got != text {
		t.Errorf("expected unchanged text, got %q (truncated=%v)", got, truncated)
	}
}

func TestFit_TruncatesAtSentenceBoundary(t *testing.T) {
	text := strings.Repeat("word ", 10) + "end. " + strings.Repeat("more ", 50) + "done."
	got, truncated := Fit(text, 20)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if !strings.HasSuffix(got, "end.") {
		t.Errorf("expected cut after first sentence, got %q", got)
	}
	if EstimateTokens(got) > 20 {
		t.Errorf("result exceeds budget: %d tokens", EstimateTokens(got))
	}
}

func TestFit_LongFirstSentenceCut(t *testing.T) {
	text := strings.Repeat("가", 50) + "."
	got, truncated := Fit(text, 10)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if n := EstimateTokens(got); n > 10 || n == 0 {
		t.Errorf("expected 1..10 tokens, got %d (%q)", n, got)
	}
}

func TestFit_Disabled(t *testing.T) {
	text := strings.Repeat("word ", 1000)
	if got, truncated := Fit(text, 0); truncated || got != text {
		t.Error("expected maxTokens <= 0 to disable the limit")
	}
}
