package services

import (
	"context"
	"fmt"

	"alfredoptarigan/career-roadmap/internal/config"
	"alfredoptarigan/career-roadmap/internal/logger"
	"alfredoptarigan/career-roadmap/internal/metrics"
	"alfredoptarigan/career-roadmap/internal/models"
)

const (
	StageExtractSkills   = "extract_skills"
	StageGenerateRoadmap = "generate_roadmap"
	StageEvaluateRoadmap = "evaluate_roadmap"
	StageAnswerQuestion  = "answer_question"
	StageAnalyzeCV       = "analyze_cv"
)

// Top-level keys that identify a recovered fragment as the stage's record.
var (
	skillMarkers      = []string{"Technical Skills", "Soft Skills"}
	evaluationMarkers = []string{"improved_roadmap", "evaluation", "suggested_improvements"}
	cvMarkers         = []string{"skills_match", "skills_gap", "recommendations"}
)

// Stages runs the individual oracle-backed transformations. No stage returns
// an error: oracle failures become error results.
type Stages struct {
	caller    *Caller
	gemini    config.GeminiConfig
	prompts   *PromptBuilder
	resources ResourceRetriever
	log       *logger.Logger
	metrics   *metrics.Metrics
}

type StagesOption func(*Stages)

// WithResources enables curated resources in roadmap prompts.
func WithResources(r ResourceRetriever) StagesOption {
	return func(s *Stages) { s.resources = r }
}

func WithStageMetrics(m *metrics.Metrics) StagesOption {
	return func(s *Stages) { s.metrics = m }
}

func NewStages(caller *Caller, gemini config.GeminiConfig, log *logger.Logger, opts ...StagesOption) *Stages {
	s := &Stages{
		caller:  caller,
		gemini:  gemini,
		prompts: NewPromptBuilder(),
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stages) ExtractSkills(ctx context.Context, jobDescription string) (result models.SkillResult) {
	defer recoverStage(s.log, StageExtractSkills, &result)

	text, err := s.caller.Call(ctx, PromptRequest{
		Model:             s.gemini.Model,
		Prompt:            s.prompts.BuildSkillExtractionPrompt(jobDescription),
		SystemInstruction: skillsSystemInstruction,
		Temperature:       s.gemini.Temperature,
	})
	if err != nil {
		result = models.ErrorResult[models.SkillSet](err)
	} else {
		result = decodeResult[models.SkillSet](NormalizeWithRecovery(text, skillMarkers...))
	}
	s.record(StageExtractSkills, result.Status)
	return result
}

func (s *Stages) GenerateRoadmap(ctx context.Context, skills models.SkillSet) (result models.RoadmapResult) {
	defer recoverStage(s.log, StageGenerateRoadmap, &result)

	var curated string
	if s.resources != nil {
		text, err := s.resources.Retrieve(ctx, skills)
		if err != nil {
			s.log.Warn("resource retrieval failed, continuing without curated resources", "error", err)
		}
		curated = text
	}

	text, err := s.caller.Call(ctx, PromptRequest{
		Model:             s.gemini.Model,
		Prompt:            s.prompts.BuildRoadmapPrompt(skills, curated),
		SystemInstruction: roadmapSystemInstruction,
		Temperature:       s.gemini.Temperature,
	})
	if err != nil {
		result = models.ErrorResult[models.Roadmap](err)
	} else {
		result = decodeResult[models.Roadmap](NormalizeWithRecovery(text))
	}
	s.record(StageGenerateRoadmap, result.Status)
	return result
}

func (s *Stages) EvaluateRoadmap(ctx context.Context, roadmap models.Roadmap, skills models.SkillSet) (result models.EvaluationResult) {
	defer recoverStage(s.log, StageEvaluateRoadmap, &result)

	text, err := s.caller.Call(ctx, PromptRequest{
		Model:             s.gemini.EvalModel,
		Prompt:            s.prompts.BuildEvaluationPrompt(roadmap, skills),
		SystemInstruction: evaluationSystemInstruction,
		Temperature:       s.gemini.EvalTemperature,
	})
	if err != nil {
		result = models.ErrorResult[models.Evaluation](err)
	} else {
		result = decodeResult[models.Evaluation](NormalizeWithRecovery(text, evaluationMarkers...))
	}
	s.record(StageEvaluateRoadmap, result.Status)
	return result
}

// AnswerQuestion answers a question about roadmap. skills is optional context.
func (s *Stages) AnswerQuestion(ctx context.Context, question string, roadmap models.Roadmap, skills *models.SkillSet) (answer models.QAAnswer) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("stage panicked", "stage", StageAnswerQuestion, "panic", r)
			answer = models.QAAnswer{Error: fmt.Sprint(r)}
		}
	}()

	text, err := s.caller.Call(ctx, PromptRequest{
		Model:             s.gemini.Model,
		Prompt:            s.prompts.BuildQuestionPrompt(question, roadmap, skills),
		SystemInstruction: qaSystemInstruction,
		Temperature:       s.gemini.Temperature,
	})
	if err != nil {
		s.record(StageAnswerQuestion, models.ResultError)
		return models.QAAnswer{Error: err.Error()}
	}
	s.record(StageAnswerQuestion, models.ResultOK)
	return models.QAAnswer{Question: question, Answer: text}
}

func (s *Stages) AnalyzeCV(ctx context.Context, cvText string, skills models.SkillSet, roadmap models.Roadmap) (result models.CVAnalysisResult) {
	defer recoverStage(s.log, StageAnalyzeCV, &result)

	text, err := s.caller.Call(ctx, PromptRequest{
		Model:             s.gemini.Model,
		Prompt:            s.prompts.BuildCVAnalysisPrompt(cvText, skills, roadmap),
		SystemInstruction: cvSystemInstruction,
		Temperature:       s.gemini.Temperature,
	})
	if err != nil {
		result = models.ErrorResult[models.CVAnalysis](err)
	} else {
		result = decodeResult[models.CVAnalysis](NormalizeWithRecovery(text, cvMarkers...))
	}
	s.record(StageAnalyzeCV, result.Status)
	return result
}

func (s *Stages) record(stage string, status models.ResultStatus) {
	s.log.Info("stage finished", "stage", stage, "status", status)
	s.metrics.ObserveStage(stage, string(status))
}

// recoverStage turns a panic inside a stage into an error result.
func recoverStage[T any](log *logger.Logger, stage string, result *models.StageResult[T]) {
	if r := recover(); r != nil {
		log.Error("stage panicked", "stage", stage, "panic", r)
		*result = models.ErrorResult[T](fmt.Errorf("%v", r))
	}
}

// StageService is every oracle-backed operation the HTTP layer exposes.
type StageService interface {
	StageRunner
	Answerer
	AnalyzeCV(ctx context.Context, cvText string, skills models.SkillSet, roadmap models.Roadmap) models.CVAnalysisResult
}

var _ StageService = (*Stages)(nil)
