package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"

	"alfredoptarigan/career-roadmap/internal/config"
)

// PromptRequest is one call to the text generation oracle.
type PromptRequest struct {
	Model             string
	Prompt            string
	SystemInstruction string
	Temperature       float32
}

// Oracle generates free-form text. Failures are returned as *OracleError so
// callers can tell quota exhaustion from other failures.
type Oracle interface {
	Generate(ctx context.Context, req PromptRequest) (string, error)
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type ErrorKind int

const (
	// KindFailed is any failure that must not be retried.
	KindFailed ErrorKind = iota
	// KindThrottled is a quota-exceeded (HTTP 429) response.
	KindThrottled
)

func (k ErrorKind) String() string {
	if k == KindThrottled {
		return "throttled"
	}
	return "failed"
}

type OracleError struct {
	Kind  ErrorKind
	Model string
	Err   error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Model, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

func IsThrottled(err error) bool {
	var oe *OracleError
	return errors.As(err, &oe) && oe.Kind == KindThrottled
}

// classifyGenAIError decides at the client boundary whether a genai error is
// a quota rejection.
func classifyGenAIError(model string, err error) *OracleError {
	kind := KindFailed

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		if isQuotaError(apiErr) {
			kind = KindThrottled
		}
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		if isQuotaError(*apiErrPtr) {
			kind = KindThrottled
		}
	}

	return &OracleError{Kind: kind, Model: model, Err: err}
}

func isQuotaError(e genai.APIError) bool {
	return e.Code == http.StatusTooManyRequests || strings.Contains(e.Status, "RESOURCE_EXHAUSTED")
}

type GeminiService struct {
	client          *genai.Client
	embedModel      string
	maxOutputTokens int32
}

func NewGeminiService(ctx context.Context, cfg config.GeminiConfig) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{
		client:          client,
		embedModel:      cfg.EmbedModel,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

// Generate implements Oracle.
func (g *GeminiService) Generate(ctx context.Context, req PromptRequest) (string, error) {
	temperature := req.Temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxOutputTokens,
	}
	if req.SystemInstruction != "" {
		genConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), genConfig)
	if err != nil {
		return "", classifyGenAIError(req.Model, err)
	}
	if resp == nil {
		return "", &OracleError{Kind: KindFailed, Model: req.Model, Err: errors.New("no response generated (nil response)")}
	}

	text := resp.Text()
	if text == "" {
		return "", &OracleError{Kind: KindFailed, Model: req.Model, Err: errors.New("no text content in response")}
	}

	return text, nil
}

// GenerateEmbedding implements Embedder.
func (g *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// the embedding endpoint rejects very long inputs
	text = truncateUTF8(text, maxEmbedInputBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

const maxEmbedInputBytes = 40000

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
