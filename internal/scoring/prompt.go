package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/essaygest/internal/textsplit"
)

const analyzeInstructions = `당신은 교직논술 전문 평가자입니다. 아래 문제와 답안을 문제에 제시된 배점 기준에 따라 채점하고, 점수와 피드백을 JSON으로만 반환하세요. 모든 문장은 존댓말로 작성하고, 관점 라벨이나 괄호 표기는 사용하지 마세요.

평가 지침:
1. 문제 하단의 배점 기준을 파악하여 항목별 충족도에 따라 점수를 부여하세요.
2. 총점은 항목별 점수의 합계이며, maxScore는 문제의 총 배점입니다.
3. 강점과 보완점은 충족/미충족 배점 항목과 연결하여 4~6개씩 제시하세요.
4. 개선 방안은 배점 항목 충족을 목표로 구체적인 문장이나 조치를 포함하세요.
5. categories는 논리적 체계성, 맞춤법, 어휘 및 문장의 적절성을 각각 0~10으로 평가하세요.

JSON 형식:
{
  "score": number,
  "maxScore": number,
  "strengths": string[],
  "weaknesses": string[],
  "improvements": string[],
  "detailedAnalysis": {
    "contentAnalysis": string,
    "structureAnalysis": string,
    "educationalPerspective": string,
    "educationalTheory": string
  },
  "categories": {
    "logicalStructure": number,
    "spelling": number,
    "vocabulary": number
  }
}`

const enrichInstructions = `당신은 교직논술 전문 평가자입니다. 모든 문장은 존댓말로 작성하세요.
아래 강점, 보완점, 개선 방안 각각에 대해 배점 항목이 무엇인지, 어떻게 충족하거나 강화할 수 있는지, 채점 근거를 어떻게 제시할지에 초점을 맞춘 해설을 2개씩 작성하세요.
각 해설은 2~4문장이며 관점 라벨과 괄호는 쓰지 마세요. 상세 분석 항목도 배점 관점에서 1~2문장 확장하세요.

출력 스키마:
{
  "strengthsDetails": string[][],
  "weaknessesDetails": string[][],
  "improvementsDetails": string[][],
  "detailed": {
    "contentAnalysis": string,
    "structureAnalysis": string,
    "educationalPerspective": string,
    "educationalTheory": string
  }
}`

const improveInstructions = `당신은 교직논술 전문 평가자입니다. OCR로 추출된 답안의 문장을 검토하여 개선이 필요한 문장을 찾으세요.
OCR로 생긴 오탈자를 포함한 맞춤법, 띄어쓰기, 문법 오류와 문장 구조, 표현의 명확성, 구체성, 논리적 연결성, 어휘 선택, 문체 일관성을 검토하고 8~12개의 개선 사항을 제시하세요.
position은 아래 [번호]와 정확히 일치해야 하며, originalSentence는 해당 번호의 문장을 그대로 복사하세요.

출력 형식:
{
  "improvements": [
    {"position": number, "originalSentence": string, "improvedSentence": string, "reason": string}
  ]
}`

// Default enrichment preferences.
var (
	defaultTheories     = []string{"비고츠키 ZPD", "피아제 인지발달", "반두라 사회학습", "브루너 발견학습", "콜버그 도덕성"}
	defaultStatsSources = []string{"교육부 실태조사", "학업성취도 평가", "자체 학급 설문"}
	defaultDomains      = []string{"학급경영", "학교폭력 예방", "학부모 소통", "협동학습"}
)

const defaultTone = "전문적이고 친절한 교원 평가 톤"

// BuildAnalyzePrompt asks for a rubric score of answer against question.
func BuildAnalyzePrompt(question, answer string) string {
	var sb strings.Builder
	sb.WriteString(analyzeInstructions)
	sb.WriteString("\n\n---\n문제:\n")
	sb.WriteString(question)
	sb.WriteString("\n\n답안:\n")
	sb.WriteString(answer)
	return sb.String()
}

// BuildEnrichPrompt asks for expanded explanations of an analysis.
func BuildEnrichPrompt(req EnrichRequest) string {
	p := req.Preferences
	var sb strings.Builder
	sb.WriteString(enrichInstructions)
	sb.WriteString("\n\n---\n")
	fmt.Fprintf(&sb, "문항 제목: %s\n", req.QuestionTitle)
	fmt.Fprintf(&sb, "선호 이론: %s\n", joinOr(p.Theories, defaultTheories))
	fmt.Fprintf(&sb, "통계 출처 힌트: %s\n", joinOr(p.StatsSources, defaultStatsSources))
	fmt.Fprintf(&sb, "주제 도메인: %s\n", joinOr(p.Domains, defaultDomains))
	fmt.Fprintf(&sb, "톤: %s\n\n", orDefault(p.Tone, defaultTone))
	fmt.Fprintf(&sb, "strengths: %s\n", mustJSON(nonNil(req.Strengths)))
	fmt.Fprintf(&sb, "weaknesses: %s\n", mustJSON(nonNil(req.Weaknesses)))
	fmt.Fprintf(&sb, "improvements: %s\n", mustJSON(nonNil(req.Improvements)))
	fmt.Fprintf(&sb, "detailed: %s\n", mustJSON(req.DetailedAnalysis))
	return sb.String()
}

// BuildImprovePrompt lists the numbered answer sentences for review.
func BuildImprovePrompt(req ImproveRequest, sentences []textsplit.Sentence) string {
	var sb strings.Builder
	sb.WriteString(improveInstructions)
	sb.WriteString("\n\n---\n문제:\n")
	sb.WriteString(orDefault(req.QuestionText, "제공되지 않음"))
	sb.WriteString("\n\n답안 (문장별로 분리됨):\n")
	for _, s := range sentences {
		fmt.Fprintf(&sb, "[%d] %s\n", s.Position, s.Text)
	}
	fmt.Fprintf(&sb, "\n기존 보완점: %s\n", mustJSON(nonNil(req.Weaknesses)))
	fmt.Fprintf(&sb, "기존 개선 방안: %s\n", mustJSON(nonNil(req.Improvements)))
	return sb.String()
}

func joinOr(v, def []string) string {
	if len(v) == 0 {
		v = def
	}
	return strings.Join(v, ", ")
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
