package ocr

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// textKey matches keys whose string values are collected by the last-resort
// traversal.
var textKey = regexp.MustCompile(`(?i)infertext|text`)

// textExtractor pulls a flat transcript out of a decoded response. It
// returns "" when its structure is absent.
type textExtractor func(raw any) string

// extractors are tried in order until one yields text.
var extractors = []textExtractor{
	lineTexts,
	lineWordTexts,
	fieldTexts,
	deepTexts,
}

// ExtractText returns the provider's flat transcript: whole-line texts,
// then per-line words, then fields, then every text-like string anywhere in
// the response. The result is NFC-normalized.
func ExtractText(raw any) string {
	for _, ex := range extractors {
		if t := ex(raw); strings.TrimSpace(t) != "" {
			return norm.NFC.String(t)
		}
	}
	return ""
}

func firstImage(raw any) map[string]any {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	images, ok := obj["images"].([]any)
	if !ok || len(images) == 0 {
		return nil
	}
	img, _ := images[0].(map[string]any)
	return img
}

func items(raw any, key string) []map[string]any {
	img := firstImage(raw)
	if img == nil {
		return nil
	}
	arr, ok := img[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// stringField returns the first non-empty string among keys.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func lineTexts(raw any) string {
	var out []string
	for _, ln := range items(raw, "lines") {
		if t := stringField(ln, "inferText", "text"); strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, "\n")
}

func lineWordTexts(raw any) string {
	var out []string
	for _, ln := range items(raw, "lines") {
		words, _ := ln["words"].([]any)
		var texts []string
		for _, w := range words {
			wm, ok := w.(map[string]any)
			if !ok {
				continue
			}
			if t := stringField(wm, "text", "inferText"); t != "" {
				texts = append(texts, t)
			}
		}
		if line := strings.Join(texts, " "); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func fieldTexts(raw any) string {
	var out []string
	for _, f := range items(raw, "fields") {
		if t := stringField(f, "inferText", "text"); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

// deepTexts walks the whole response. Map keys are visited in sorted order
// so the output is deterministic.
func deepTexts(raw any) string {
	var out []string
	var walk func(v any)
	walk = func(v any) {
		switch x := v.(type) {
		case []any:
			for _, e := range x {
				walk(e)
			}
		case map[string]any:
			keys := make([]string, 0, len(x))
			for k := range x {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if s, ok := x[k].(string); ok && textKey.MatchString(k) {
					out = append(out, s)
				}
				walk(x[k])
			}
		}
	}
	walk(raw)
	return strings.Join(out, "\n")
}
