package scoring

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultMaxScore is used when the model does not report the total points.
const DefaultMaxScore = 20

// Notices used when the model omits a detailed analysis section.
const (
	noContentAnalysis        = "상세 분석 데이터가 없습니다."
	noStructureAnalysis      = "구조 분석 데이터가 없습니다."
	noEducationalPerspective = "교육적 관점 분석 데이터가 없습니다."
	noEducationalTheory      = "교육학 이론 관점 분석 데이터가 없습니다."
)

// Analysis is the rubric score and feedback for one answer.
type Analysis struct {
	Score            float64          `json:"score"`
	MaxScore         float64          `json:"maxScore"`
	Strengths        []string         `json:"strengths"`
	Weaknesses       []string         `json:"weaknesses"`
	Improvements     []string         `json:"improvements"`
	DetailedAnalysis DetailedAnalysis `json:"detailedAnalysis"`
	Categories       Categories       `json:"categories"`
}

// DetailedAnalysis holds the prose sections of the feedback.
type DetailedAnalysis struct {
	ContentAnalysis        string `json:"contentAnalysis"`
	StructureAnalysis      string `json:"structureAnalysis"`
	EducationalPerspective string `json:"educationalPerspective"`
	EducationalTheory      string `json:"educationalTheory"`
}

// Categories are 0-10 sub-scores.
type Categories struct {
	LogicalStructure float64 `json:"logicalStructure"`
	Spelling         float64 `json:"spelling"`
	Vocabulary       float64 `json:"vocabulary"`
}

// Enrichment expands each feedback item into rubric-focused explanations.
type Enrichment struct {
	StrengthsDetails    [][]string       `json:"strengthsDetails"`
	WeaknessesDetails   [][]string       `json:"weaknessesDetails"`
	ImprovementsDetails [][]string       `json:"improvementsDetails"`
	Detailed            DetailedAnalysis `json:"detailed"`
}

// SentenceImprovement is a suggested rewrite of one answer sentence.
type SentenceImprovement struct {
	Position         int    `json:"position"`
	OriginalSentence string `json:"originalSentence"`
	ImprovedSentence string `json:"improvedSentence"`
	Reason           string `json:"reason"`
}

// number decodes JSON numbers and numeric strings. Anything else is absent.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			n.value, n.set = f, true
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.value, n.set = f, true
	}
	return nil
}

// stringList decodes an array of strings, skipping non-string elements.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	for _, v := range raw {
		if s, ok := v.(string); ok {
			*l = append(*l, s)
		}
	}
	return nil
}

type rawAnalysis struct {
	Score            number     `json:"score"`
	MaxScore         number     `json:"maxScore"`
	Strengths        stringList `json:"strengths"`
	Weaknesses       stringList `json:"weaknesses"`
	Improvements     stringList `json:"improvements"`
	DetailedAnalysis *struct {
		ContentAnalysis        *string `json:"contentAnalysis"`
		StructureAnalysis      *string `json:"structureAnalysis"`
		EducationalPerspective *string `json:"educationalPerspective"`
		EducationalTheory      *string `json:"educationalTheory"`
	} `json:"detailedAnalysis"`
	Categories *struct {
		LogicalStructure number `json:"logicalStructure"`
		Spelling         number `json:"spelling"`
		Vocabulary       number `json:"vocabulary"`
	} `json:"categories"`
}

// ParseAnalysis decodes a model answer into a sanitized Analysis.
func ParseAnalysis(text string) (Analysis, error) {
	obj, err := extractJSONObject(text)
	if err != nil {
		return Analysis{}, err
	}
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Analysis{}, ErrBadResponse
	}

	a := Analysis{
		Score:        raw.Score.value,
		Strengths:    raw.Strengths,
		Weaknesses:   raw.Weaknesses,
		Improvements: raw.Improvements,
	}
	if raw.MaxScore.set {
		a.MaxScore = raw.MaxScore.value
	}
	if d := raw.DetailedAnalysis; d != nil {
		a.DetailedAnalysis = DetailedAnalysis{
			ContentAnalysis:        deref(d.ContentAnalysis),
			StructureAnalysis:      deref(d.StructureAnalysis),
			EducationalPerspective: deref(d.EducationalPerspective),
			EducationalTheory:      deref(d.EducationalTheory),
		}
	}
	if c := raw.Categories; c != nil {
		a.Categories = Categories{
			LogicalStructure: c.LogicalStructure.value,
			Spelling:         c.Spelling.value,
			Vocabulary:       c.Vocabulary.value,
		}
	}
	return Sanitize(a), nil
}

// Sanitize fills defaults and clamps scores into range.
func Sanitize(a Analysis) Analysis {
	if a.MaxScore <= 0 || math.IsNaN(a.MaxScore) {
		a.MaxScore = DefaultMaxScore
	}
	a.Score = clamp(a.Score, 0, a.MaxScore)
	a.Strengths = cleanList(a.Strengths)
	a.Weaknesses = cleanList(a.Weaknesses)
	a.Improvements = cleanList(a.Improvements)

	d := &a.DetailedAnalysis
	d.ContentAnalysis = orDefault(d.ContentAnalysis, noContentAnalysis)
	d.StructureAnalysis = orDefault(d.StructureAnalysis, noStructureAnalysis)
	d.EducationalPerspective = orDefault(d.EducationalPerspective, noEducationalPerspective)
	d.EducationalTheory = orDefault(d.EducationalTheory, noEducationalTheory)

	a.Categories.LogicalStructure = clamp(a.Categories.LogicalStructure, 0, 10)
	a.Categories.Spelling = clamp(a.Categories.Spelling, 0, 10)
	a.Categories.Vocabulary = clamp(a.Categories.Vocabulary, 0, 10)
	return a
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
