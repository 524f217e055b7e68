package services

import (
	"context"
	"fmt"
	"time"

	"alfredoptarigan/career-roadmap/internal/config"
	"alfredoptarigan/career-roadmap/internal/logger"
	"alfredoptarigan/career-roadmap/internal/metrics"
	"alfredoptarigan/career-roadmap/internal/models"
)

// StageRunner is the part of Stages the pipeline drives.
type StageRunner interface {
	ExtractSkills(ctx context.Context, jobDescription string) models.SkillResult
	GenerateRoadmap(ctx context.Context, skills models.SkillSet) models.RoadmapResult
	EvaluateRoadmap(ctx context.Context, roadmap models.Roadmap, skills models.SkillSet) models.EvaluationResult
}

type Answerer interface {
	AnswerQuestion(ctx context.Context, question string, roadmap models.Roadmap, skills *models.SkillSet) models.QAAnswer
}

type RunInput struct {
	Text string
	File string
	// OutputDir overrides the timestamped session directory.
	OutputDir string
	// OnState, if set, is called after every state transition.
	OnState func(models.PipelineState)
}

type RunResult struct {
	OutputDir          string
	JobDescriptionPath string
	SkillsPath         string
	RoadmapPath        string
	EvaluationPath     string
	FinalRoadmapPath   string

	JobDescription models.JobDescription
	Skills         models.SkillSet
	Roadmap        models.Roadmap
	Evaluation     models.Evaluation
	FinalRoadmap   models.Roadmap

	State models.PipelineState
	// Degraded lists the stages whose output was substituted or left raw.
	Degraded []string
}

// Pipeline runs job description to final roadmap. A run always finishes with a
// final roadmap; only missing input aborts it.
type Pipeline struct {
	stages   StageRunner
	store    StorageService
	pdf      PDFParserService
	fallback config.FallbackConfig
	delay    time.Duration
	sleep    Sleeper
	log      *logger.Logger
	metrics  *metrics.Metrics
}

type PipelineOption func(*Pipeline)

func WithPipelineSleeper(s Sleeper) PipelineOption {
	return func(p *Pipeline) { p.sleep = s }
}

func WithPipelineMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

func WithPDFParser(pdf PDFParserService) PipelineOption {
	return func(p *Pipeline) { p.pdf = pdf }
}

func NewPipeline(
	stages StageRunner,
	store StorageService,
	limits config.RateLimitConfig,
	fallback config.FallbackConfig,
	log *logger.Logger,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		stages:   stages,
		store:    store,
		pdf:      NewPDFParserService(),
		fallback: fallback,
		delay:    limits.MinRequestDelay,
		sleep:    SleepContext,
		log:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	started := time.Now()
	defer func() { p.metrics.ObservePipeline(time.Since(started)) }()

	res := &RunResult{State: models.StateStarted}
	advance := func(next models.PipelineState) { p.advance(res, next, in.OnState) }

	jd, err := ProcessJobDescription(in.Text, in.File, p.pdf)
	if err != nil {
		return nil, err
	}

	res.OutputDir = in.OutputDir
	if res.OutputDir == "" {
		if res.OutputDir, err = p.store.NewSession(); err != nil {
			return nil, err
		}
		p.log.Info("📁 Created session folder", "dir", res.OutputDir)
	}

	// [1/4] job description
	res.JobDescription = jd
	res.JobDescriptionPath = p.write(res.OutputDir, JobDescriptionFile, jd)
	advance(models.StateJDProcessed)

	// [2/4] skills
	p.log.Info("🔍 Extracting skills...", "words", jd.WordCount)
	skills := p.stages.ExtractSkills(ctx, jd.JobDescription)
	if skills.Failed() {
		p.log.Warn("⚠️  Skill extraction failed, continuing with empty skills", "error", skills.Error)
		skills = models.Structured(models.EmptySkillSet(p.fallback.SkillCategories), false)
		res.Degraded = append(res.Degraded, StageExtractSkills)
	} else if skills.Status == models.ResultRaw {
		res.Degraded = append(res.Degraded, StageExtractSkills)
	}
	res.Skills = skillsValue(skills)
	res.SkillsPath = p.write(res.OutputDir, SkillsFile, skills)
	advance(models.StateSkillsExtracted)

	if err := p.pause(ctx); err != nil {
		return nil, err
	}

	// [3/4] roadmap
	p.log.Info("🗺️  Generating learning roadmap...")
	roadmap := p.stages.GenerateRoadmap(ctx, res.Skills)
	if roadmap.Failed() {
		p.log.Warn("⚠️  Roadmap generation failed, using simplified roadmap", "error", roadmap.Error)
		roadmap = models.Structured(FallbackRoadmap(p.fallback), false)
		res.Degraded = append(res.Degraded, StageGenerateRoadmap)
	} else if roadmap.Status == models.ResultRaw {
		res.Degraded = append(res.Degraded, StageGenerateRoadmap)
	}
	res.Roadmap = roadmapValue(roadmap)
	res.RoadmapPath = p.write(res.OutputDir, RoadmapFile, roadmap)
	advance(models.StateRoadmapGenerated)

	if err := p.pause(ctx); err != nil {
		return nil, err
	}

	// [4/4] evaluation
	p.log.Info("🤖 Evaluating and improving the roadmap...")
	evaluation := p.evaluate(ctx, res.Roadmap, res.Skills)
	if evaluation.Failed() {
		p.log.Warn("⚠️  Could not evaluate roadmap, skipping evaluation", "error", evaluation.Error)
		evaluation = models.Structured(p.fallbackEvaluation(res.Roadmap), false)
		res.Degraded = append(res.Degraded, StageEvaluateRoadmap)
	} else if evaluation.Status == models.ResultRaw {
		res.Degraded = append(res.Degraded, StageEvaluateRoadmap)
	}
	res.Evaluation = evaluation.Value
	res.EvaluationPath = p.write(res.OutputDir, EvaluationFile, evaluation)
	advance(models.StateRoadmapEvaluated)

	res.FinalRoadmap = res.Evaluation.FinalRoadmap(res.Roadmap)
	res.FinalRoadmapPath = p.write(res.OutputDir, FinalRoadmapFile, res.FinalRoadmap)
	advance(models.StateDone)

	p.log.Info("✅ Pipeline completed", "dir", res.OutputDir, "degraded", res.Degraded)
	return res, nil
}

// evaluate treats a panic in the evaluation stage as a failed evaluation.
func (p *Pipeline) evaluate(ctx context.Context, roadmap models.Roadmap, skills models.SkillSet) (result models.EvaluationResult) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("evaluation panicked", "panic", r)
			result = models.ErrorResult[models.Evaluation](fmt.Errorf("%v", r))
		}
	}()
	return p.stages.EvaluateRoadmap(ctx, roadmap, skills)
}

func (p *Pipeline) fallbackEvaluation(roadmap models.Roadmap) models.Evaluation {
	improved := roadmap
	return models.Evaluation{
		Evaluation:            models.Assessment{Text: p.fallback.EvaluationNote},
		SuggestedImprovements: []string{p.fallback.SuggestedImprovement},
		ImprovedRoadmap:       &improved,
	}
}

// FallbackRoadmap builds the simplified roadmap substituted for a failed
// generation.
func FallbackRoadmap(fallback config.FallbackConfig) models.Roadmap {
	roadmap := models.Roadmap{}
	for _, phase := range fallback.RoadmapPhases {
		roadmap.Phases = append(roadmap.Phases, models.Phase{
			Name: phase.Name,
			Detail: models.PhaseDetail{
				Skills:        append([]string{}, phase.Skills...),
				Resources:     textItems(phase.Resources),
				Projects:      textItems(phase.Projects),
				EstimatedTime: phase.EstimatedTime,
			},
		})
	}
	return roadmap
}

func textItems(values []string) []models.Item {
	items := make([]models.Item, 0, len(values))
	for _, v := range values {
		items = append(items, models.Item{Text: v})
	}
	return items
}

func skillsValue(r models.SkillResult) models.SkillSet {
	if r.Status == models.ResultRaw {
		return models.SkillSetFromRaw(r.Raw)
	}
	return r.Value
}

func roadmapValue(r models.RoadmapResult) models.Roadmap {
	if r.Status == models.ResultRaw {
		return models.RoadmapFromRaw(r.Raw)
	}
	return r.Value
}

// write persists an artifact. Failures are logged; the run continues.
func (p *Pipeline) write(dir, name string, v interface{}) string {
	path, err := p.store.WriteJSON(dir, name, v)
	if err != nil {
		p.log.Error("❌ Failed to write artifact", "file", name, "error", err)
		return ""
	}
	p.log.Info("💾 Saved artifact", "path", path)
	return path
}

func (p *Pipeline) advance(res *RunResult, next models.PipelineState, hook func(models.PipelineState)) {
	if !res.State.Next(next) {
		panic(fmt.Sprintf("pipeline: invalid transition %s -> %s", res.State, next))
	}
	res.State = next
	if hook != nil {
		hook(next)
	}
}

func (p *Pipeline) pause(ctx context.Context) error {
	return p.sleep(ctx, p.delay)
}
