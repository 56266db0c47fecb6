package scoring

import (
	"context"
	"encoding/json"
)

// MockModel returns canned answers so the service works without a model
// API key.
type MockModel struct{}

func (MockModel) Name() string { return "mock" }

func (MockModel) Generate(_ context.Context, req Request) (Generation, error) {
	var v any
	switch req.Task {
	case TaskAnalyze:
		v = MockAnalysis()
	case TaskEnrich:
		v = Enrichment{}
	default:
		v = map[string]any{"improvements": []any{}}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Generation{}, err
	}
	return Generation{Text: string(b)}, nil
}

func (MockModel) ListModels(context.Context) ([]ModelInfo, error) {
	return []ModelInfo{{Name: "mock", DisplayName: "Mock model", SupportedMethods: []string{"generateContent"}}}, nil
}

// MockAnalysis is the canned analysis returned by MockModel.
func MockAnalysis() Analysis {
	return Analysis{
		Score:    15,
		MaxScore: 20,
		Strengths: []string{
			"문제 상황에 대한 정확한 인식과 체계적인 접근",
			"피해자 보호를 최우선으로 하는 교육적 관점",
			"개별 상담과 집단 지도를 병행하는 균형잡힌 해결책",
		},
		Weaknesses: []string{
			"구체적인 실행 방안과 단계별 계획이 부족",
			"학부모 및 학교 차원의 협력 방안 미흡",
			"장기적 관찰과 사후 관리 계획 부재",
		},
		Improvements: []string{
			"단계별 실행 계획을 구체적으로 제시하여 실현 가능성을 높이세요.",
			"학부모, 동료 교사, 관리자와의 협력 체계를 명시하세요.",
			"사후 관리와 지속적 모니터링 방안을 포함하세요.",
		},
		DetailedAnalysis: DetailedAnalysis{
			ContentAnalysis:        "답안은 학급 내 따돌림 상황에 대한 교육적 접근을 보여주고 있습니다. 피해자 보호와 가해자 지도를 균형있게 다루었습니다.",
			StructureAnalysis:      "첫째, 둘째, 셋째로 구분하여 체계적으로 접근했으나, 각 단계별 구체적인 실행 방안이 부족합니다.",
			EducationalPerspective: "개별 상담과 집단 지도를 병행하는 접근은 적절합니다. 다만, 장기적인 예방 교육과 모니터링 체계가 필요합니다.",
			EducationalTheory:      "비고츠키의 사회문화이론 관점에서 근접발달영역을 활용한 지도 방안이 필요합니다.",
		},
		Categories: Categories{
			LogicalStructure: 9,
			Spelling:         8,
			Vocabulary:       7.5,
		},
	}
}
