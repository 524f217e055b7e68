package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-roadmap/internal/logger"
	"alfredoptarigan/career-roadmap/internal/metrics"
	"alfredoptarigan/career-roadmap/internal/models"
)

func newTestStages(t *testing.T, oracle *fakeOracle, opts ...StagesOption) *Stages {
	sleeper := &countingSleeper{}
	caller := NewCaller(oracle, testLimits(), logger.NewTest(t), WithSleeper(sleeper.Sleep))
	return NewStages(caller, testGemini(), logger.NewTest(t), opts...)
}

type fakeRetriever struct {
	text string
	err  error
}

func (f fakeRetriever) Retrieve(ctx context.Context, skills models.SkillSet) (string, error) {
	return f.text, f.err
}

func sampleRoadmap(t *testing.T) models.Roadmap {
	var r models.Roadmap
	require.NoError(t, json.Unmarshal([]byte(`{
		"Foundation Phase": {"skills": ["Go basics"], "resources": ["Tour of Go"], "projects": ["CLI"], "estimated_time": "2 weeks"},
		"Development Phase": {"skills": ["HTTP"], "resources": [], "projects": [], "estimated_time": "1 month"}
	}`), &r))
	return r
}

func TestExtractSkillsStructured(t *testing.T) {
	oracle := &fakeOracle{replies: []reply{{text: `{"Technical Skills": ["Go"], "Soft Skills": ["Communication"]}`}}}

	res := newTestStages(t, oracle).ExtractSkills(context.Background(), "We need a Go developer")

	require.Equal(t, models.ResultOK, res.Status)
	entry, _ := res.Value.Get("Technical Skills")
	assert.Equal(t, []string{"Go"}, entry.Items)

	req := oracle.requests[0]
	assert.Equal(t, "gen-model", req.Model)
	assert.Equal(t, float32(0.7), req.Temperature)
	assert.Equal(t, skillsSystemInstruction, req.SystemInstruction)
	assert.Contains(t, req.Prompt, "We need a Go developer")
	assert.Contains(t, req.Prompt, "5. Experience Requirements")
}

func TestExtractSkillsOracleFailureBecomesErrorRecord(t *testing.T) {
	oracle := &fakeOracle{replies: []reply{{err: failed("permission denied")}}}

	res := newTestStages(t, oracle).ExtractSkills(context.Background(), "jd")

	require.True(t, res.Failed())
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": "test-model: permission denied"}`, string(data))
}

func TestExtractSkillsRawReply(t *testing.T) {
	oracle := &fakeOracle{replies: []reply{{text: "I could not format this."}}}

	res := newTestStages(t, oracle).ExtractSkills(context.Background(), "jd")

	require.Equal(t, models.ResultRaw, res.Status)
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"raw_response": "I could not format this."}`, string(data))
}

func TestExtractSkillsRawDocumentReply(t *testing.T) {
	oracle := &fakeOracle{replies: []reply{{text: `{"raw_response": "not json"}`}}}

	res := newTestStages(t, oracle).ExtractSkills(context.Background(), "jd")

	require.Equal(t, models.ResultRaw, res.Status)
	assert.Equal(t, "not json", res.Raw)
	_, found := res.Value.Get("raw_response")
	assert.False(t, found)
}

func TestGenerateRoadmapIncludesCuratedResources(t *testing.T) {
	oracle := &fakeOracle{replies: []reply{{text: `{"Foundation Phase": {"skills": ["Go"]}}`}}}
	stages := newTestStages(t, oracle, WithResources(fakeRetriever{text: "--- Resource 1 ---\nEffective Go"}))

	res := stages.GenerateRoadmap(context.Background(), models.EmptySkillSet(models.Taxonomy))

	require.Equal(t, models.ResultOK, res.Status)
	assert.Contains(t, oracle.requests[0].Prompt, "Effective Go")
}

func TestGenerateRoadmapIgnoresRetrieverFailure(t *testing.T) {
	oracle := &fakeOracle{replies: []reply{{text: `{"Foundation Phase": {"skills": ["Go"]}}`}}}
	stages := newTestStages(t, oracle, WithResources(fakeRetriever{err: errors.New("qdrant down")}))

	res := stages.GenerateRoadmap(context.Background(), models.EmptySkillSet(models.Taxonomy))

	assert.Equal(t, models.ResultOK, res.Status)
	assert.NotContains(t, oracle.requests[0].Prompt, "curated learning resources")
}

func TestEvaluateRoadmapUsesEvaluationModel(t *testing.T) {
	oracle := &fakeOracle{replies: []reply{{text: "Assessment below.\n" +
		`{"evaluation": "solid", "suggested_improvements": ["add testing"], "improved_roadmap": {"Foundation Phase": {"skills": ["Go", "testing"]}}}`}}}

	res := newTestStages(t, oracle).EvaluateRoadmap(context.Background(), sampleRoadmap(t), models.EmptySkillSet(models.Taxonomy))

	require.Equal(t, models.ResultRecovered, res.Status)
	assert.Equal(t, []string{"add testing"}, res.Value.SuggestedImprovements)
	require.NotNil(t, res.Value.ImprovedRoadmap)
	phase, ok := res.Value.ImprovedRoadmap.Phase("Foundation Phase")
	require.True(t, ok)
	assert.Equal(t, []string{"Go", "testing"}, phase.Skills)

	req := oracle.requests[0]
	assert.Equal(t, "eval-model", req.Model)
	assert.Equal(t, float32(0.5), req.Temperature)
}

func TestAnswerQuestionSkillsSection(t *testing.T) {
	skills := models.EmptySkillSet(models.Taxonomy)

	oracle := &fakeOracle{replies: []reply{{text: "Start with Go."}}}
	stages := newTestStages(t, oracle)

	without := stages.AnswerQuestion(context.Background(), "Where do I start?", sampleRoadmap(t), nil)
	with := stages.AnswerQuestion(context.Background(), "Where do I start?", sampleRoadmap(t), &skills)

	assert.Equal(t, models.QAAnswer{Question: "Where do I start?", Answer: "Start with Go."}, without)
	assert.Equal(t, "Start with Go.", with.Answer)
	assert.NotContains(t, oracle.requests[0].Prompt, SkillsContextMarker)
	assert.Contains(t, oracle.requests[1].Prompt, SkillsContextMarker)
}

func TestAnswerQuestionFailure(t *testing.T) {
	oracle := &fakeOracle{replies: []reply{{err: failed("boom")}}}

	answer := newTestStages(t, oracle).AnswerQuestion(context.Background(), "q", sampleRoadmap(t), nil)

	assert.True(t, answer.Failed())
	assert.Empty(t, answer.Answer)
}

func TestStagePanicBecomesErrorResult(t *testing.T) {
	oracle := &fakeOracle{panicMsg: "nil pointer somewhere"}

	res := newTestStages(t, oracle).EvaluateRoadmap(context.Background(), sampleRoadmap(t), models.SkillSet{})

	require.True(t, res.Failed())
	assert.Contains(t, res.Error, "nil pointer somewhere")
}

func TestAnalyzeCV(t *testing.T) {
	oracle := &fakeOracle{replies: []reply{{text: `{"skills_match": [{"skill": "Go", "confidence": "high"}], "skills_gap": ["Kubernetes"], "recommendations": ["Add metrics"], "cv_improvement": ["Quantify impact"]}`}}}
	skills := models.EmptySkillSet(models.Taxonomy)
	skills.Set("Technical Skills", models.SkillEntry{Items: []string{"Go", "Kubernetes"}})

	res := newTestStages(t, oracle).AnalyzeCV(context.Background(), "Senior Go engineer", skills, sampleRoadmap(t))

	require.Equal(t, models.ResultOK, res.Status)
	assert.Equal(t, []string{"Kubernetes"}, res.Value.SkillsGap)
	require.Len(t, res.Value.SkillsMatch, 1)
	assert.Equal(t, "Go", res.Value.SkillsMatch[0].Record["skill"])

	prompt := oracle.requests[0].Prompt
	assert.Contains(t, prompt, "Senior Go engineer")
	assert.Contains(t, prompt, "- Kubernetes")
	assert.Contains(t, prompt, "Foundation Phase:")
}

func TestStageMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	oracle := &fakeOracle{replies: []reply{{text: "prose"}}}

	newTestStages(t, oracle, WithStageMetrics(m)).ExtractSkills(context.Background(), "jd")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageResults.WithLabelValues(StageExtractSkills, "raw")))
}
