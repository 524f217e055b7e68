package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"alfredoptarigan/career-roadmap/internal/config"
	"alfredoptarigan/career-roadmap/internal/models"
)

type reply struct {
	text string
	err  error
}

// fakeOracle returns scripted replies in order and records every request.
// Once the script runs out the last reply repeats.
type fakeOracle struct {
	mu       sync.Mutex
	replies  []reply
	requests []PromptRequest
	panicMsg string
}

func (f *fakeOracle) Generate(ctx context.Context, req PromptRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r.text, r.err
}

func (f *fakeOracle) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func throttled() error {
	return &OracleError{Kind: KindThrottled, Model: "test-model", Err: errors.New("429 quota exceeded")}
}

func failed(msg string) error {
	return &OracleError{Kind: KindFailed, Model: "test-model", Err: errors.New(msg)}
}

// countingSleeper records requested delays without sleeping.
type countingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *countingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *countingSleeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delays)
}

func testLimits() config.RateLimitConfig {
	return config.RateLimitConfig{
		MinRequestDelay:   3 * time.Second,
		MaxRetries:        3,
		RetryInitialDelay: 5 * time.Second,
	}
}

func testGemini() config.GeminiConfig {
	return config.GeminiConfig{
		Model:           "gen-model",
		EvalModel:       "eval-model",
		Temperature:     0.7,
		EvalTemperature: 0.5,
	}
}

// fakeStages scripts whole stage results for pipeline tests.
type fakeStages struct {
	skills     models.SkillResult
	roadmap    models.RoadmapResult
	evaluation models.EvaluationResult
	evalPanic  bool

	gotRoadmapSkills models.SkillSet
	gotEvalRoadmap   models.Roadmap
}

func (f *fakeStages) ExtractSkills(ctx context.Context, jd string) models.SkillResult {
	return f.skills
}

func (f *fakeStages) GenerateRoadmap(ctx context.Context, skills models.SkillSet) models.RoadmapResult {
	f.gotRoadmapSkills = skills
	return f.roadmap
}

func (f *fakeStages) EvaluateRoadmap(ctx context.Context, roadmap models.Roadmap, skills models.SkillSet) models.EvaluationResult {
	f.gotEvalRoadmap = roadmap
	if f.evalPanic {
		panic("evaluation blew up")
	}
	return f.evaluation
}
