package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-roadmap/internal/config"
	"alfredoptarigan/career-roadmap/internal/logger"
	"alfredoptarigan/career-roadmap/internal/models"
	"alfredoptarigan/career-roadmap/internal/services"
)

// scriptedStages answers every stage without an oracle.
type scriptedStages struct {
	built     int
	questions []string
	failOn    string
}

func (s *scriptedStages) ExtractSkills(ctx context.Context, jobDescription string) models.SkillResult {
	skills := models.SkillSet{}
	skills.Set("Technical Skills", models.SkillEntry{Items: []string{"Go"}})
	return models.Structured(skills, false)
}

func (s *scriptedStages) GenerateRoadmap(ctx context.Context, skills models.SkillSet) models.RoadmapResult {
	return models.Structured(models.Roadmap{Phases: []models.Phase{{Name: "Foundation Phase"}}}, false)
}

func (s *scriptedStages) EvaluateRoadmap(ctx context.Context, roadmap models.Roadmap, skills models.SkillSet) models.EvaluationResult {
	return models.Structured(models.Evaluation{Evaluation: models.Assessment{Text: "ok"}}, false)
}

func (s *scriptedStages) AnswerQuestion(ctx context.Context, question string, roadmap models.Roadmap, skills *models.SkillSet) models.QAAnswer {
	s.questions = append(s.questions, question)
	if question == s.failOn {
		return models.QAAnswer{Error: "quota exceeded"}
	}
	return models.QAAnswer{Question: question, Answer: "Answer to " + question}
}

func (s *scriptedStages) AnalyzeCV(ctx context.Context, cvText string, skills models.SkillSet, roadmap models.Roadmap) models.CVAnalysisResult {
	return models.Structured(models.CVAnalysis{}, false)
}

func newTestApp(t *testing.T, stdin string) (*app, *bytes.Buffer, *scriptedStages) {
	t.Helper()
	out := &bytes.Buffer{}
	a := newApp(strings.NewReader(stdin), out)
	a.cfg = &config.Config{
		Storage:  config.StorageConfig{OutputDir: t.TempDir()},
		Fallback: config.DefaultFallback(),
	}
	a.log = logger.NewTest(t)
	stages := &scriptedStages{}
	a.newStages = func(ctx context.Context) (services.StageService, error) {
		stages.built++
		return stages, nil
	}
	return a, out, stages
}

func execute(a *app, args ...string) error {
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestJDCommandPrintsJSON(t *testing.T) {
	a, out, stages := newTestApp(t, "")

	require.NoError(t, execute(a, "jd", "-i", "Go   developer\n"))

	var jd models.JobDescription
	require.NoError(t, json.Unmarshal(out.Bytes(), &jd))
	assert.Equal(t, models.JobDescription{JobDescription: "Go developer", WordCount: 2, CharCount: 12}, jd)
	assert.Zero(t, stages.built)
}

func TestJDCommandWritesFile(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	path := filepath.Join(t.TempDir(), "jd", "job_description.json")

	require.NoError(t, execute(a, "jd", "-i", "Go developer", "-o", path))

	assert.Equal(t, "Output saved to "+path+"\n", out.String())
	assert.FileExists(t, path)
}

func TestSkillsCommandReadsJDArtifact(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	jdPath := filepath.Join(t.TempDir(), "job_description.json")
	require.NoError(t, services.WriteJSONFile(jdPath, models.JobDescription{JobDescription: "Go developer"}))

	require.NoError(t, execute(a, "skills", "-f", jdPath))

	assert.JSONEq(t, `{"Technical Skills": ["Go"]}`, out.String())
}

func TestPipelineCommand(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	dir := filepath.Join(t.TempDir(), "run")

	require.NoError(t, execute(a, "pipeline", "-i", "Go developer", "-o", dir))

	assert.Contains(t, out.String(), "Final roadmap saved to "+filepath.Join(dir, services.FinalRoadmapFile))
	assert.Contains(t, out.String(), "Pipeline completed successfully!")
	for _, name := range []string{services.JobDescriptionFile, services.SkillsFile, services.RoadmapFile, services.EvaluationFile, services.FinalRoadmapFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestPipelineCommandPrintsRoadmapWhenSaveFails(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	require.NoError(t, execute(a, "pipeline", "-i", "Go developer", "-o", filepath.Join(blocker, "run")))

	assert.NotContains(t, out.String(), "Final roadmap saved to")
	assert.Contains(t, out.String(), "Warning: could not save the final roadmap")
	assert.Contains(t, out.String(), `"Foundation Phase"`)
	assert.Contains(t, out.String(), "Pipeline completed successfully!")
}

func TestPipelineCommandRequiresInput(t *testing.T) {
	a, _, stages := newTestApp(t, "")

	err := execute(a, "pipeline")

	assert.ErrorIs(t, err, services.ErrMissingInput)
	assert.Zero(t, stages.built)
}

func TestAskCommandSingleQuestion(t *testing.T) {
	a, out, stages := newTestApp(t, "")
	roadmapPath := filepath.Join(t.TempDir(), "roadmap.json")
	require.NoError(t, os.WriteFile(roadmapPath, []byte(`{"Foundation Phase": {"skills": ["Go"]}}`), 0644))

	require.NoError(t, execute(a, "ask", "-r", roadmapPath, "-q", "Where to start?"))

	assert.Equal(t, []string{"Where to start?"}, stages.questions)
	assert.JSONEq(t, `{"question": "Where to start?", "answer": "Answer to Where to start?"}`, out.String())
}

func TestEvaluateCommandRequiresFlags(t *testing.T) {
	a, _, _ := newTestApp(t, "")

	assert.Error(t, execute(a, "evaluate", "-r", "roadmap.json"))
}
