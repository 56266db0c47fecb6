package ocr

import (
	"encoding/json"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "line inferText",
			raw:  `{"images":[{"lines":[{"inferText":"one"},{"text":"two"},{"inferText":"  "}]}]}`,
			want: "one\ntwo",
		},
		{
			name: "words when lines have no text",
			raw:  `{"images":[{"lines":[{"words":[{"text":"a"},{"inferText":"b"}]},{"words":[]},{"words":[{"text":"c"}]}]}]}`,
			want: "a b\nc",
		},
		{
			name: "fields joined by space",
			raw:  `{"images":[{"fields":[{"inferText":"hello"},{"text":"world"},{"inferText":""}]}]}`,
			want: "hello world",
		},
		{
			name: "deep traversal",
			raw:  `{"result":{"blocks":[{"Text":"alpha"},{"inferText":"beta","other":"x"}]}}`,
			want: "alpha\nbeta",
		},
		{
			name: "nothing",
			raw:  `{"images":[]}`,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(decode(t, tt.raw)); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractText_NFC(t *testing.T) {
	decomposed := norm.NFD.String("학생")
	raw := map[string]any{"images": []any{map[string]any{"fields": []any{map[string]any{"inferText": decomposed}}}}}
	if got := ExtractText(raw); got != "학생" {
		t.Errorf("expected NFC-composed text, got %q", got)
	}
}

func TestExtractText_NonObject(t *testing.T) {
	if got := ExtractText("plain string"); got != "" {
		t.Errorf("expected empty text for string raw, got %q", got)
	}
	if got := ExtractText(nil); got != "" {
		t.Errorf("expected empty text for nil raw, got %q", got)
	}
}
