package repository

import (
	"context"
	"errors"
	"fmt"
	"stockgenius/config"
	"stockgenius/pkg/logger"
	"stockgenius/pkg/ratelimit"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Sampling settings are fixed for every suggestion; they are not request parameters.
const (
	geminiTemperature     float32 = 0.7
	geminiTopP            float32 = 0.95
	geminiTopK            float32 = 64
	geminiMaxOutputTokens int32   = 65536
)

var ErrEmptyAIResponse = errors.New("empty response from gemini")

// AIRepository turns a prompt into generated text.
type AIRepository interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
	genConfig      *genai.GenerateContentConfig
}

func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	limit := rate.Inf
	if cfg.Gemini.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute))
	}

	var tokenLimiter *ratelimit.TokenLimiter
	if cfg.Gemini.MaxTokenPerMinute > 0 {
		tokenLimiter = ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)
	}

	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(limit, 1),
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
		genConfig: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(geminiTemperature),
			TopP:            genai.Ptr(geminiTopP),
			TopK:            genai.Ptr(geminiTopK),
			MaxOutputTokens: geminiMaxOutputTokens,
		},
	}, nil
}

// Generate returns the model text. Upstream errors are returned unmodified in their message
// so callers can classify overload responses.
func (r *geminiAIRepository) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	if r.tokenLimiter != nil {
		tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.BaseModel, contents, nil)
		if err != nil {
			return "", fmt.Errorf("failed to count tokens: %w", err)
		}
		r.logger.DebugContext(ctx, "Gemini token count",
			logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
			logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
		)
		if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
			return "", fmt.Errorf("failed to wait for token gemini limit: %w", err)
		}
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request gemini limit: %w", err)
	}

	start := time.Now()
	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.BaseModel, contents, r.genConfig)
	if err != nil {
		r.logger.WarnContext(ctx, "Gemini generate content failed",
			logger.StringField("model", r.cfg.Gemini.BaseModel),
			logger.DurationField("elapsed", time.Since(start)),
			logger.ErrorField(err),
		)
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyAIResponse
	}

	r.logger.DebugContext(ctx, "Gemini generate content done",
		logger.StringField("model", r.cfg.Gemini.BaseModel),
		logger.IntField("prompt_length", len(prompt)),
		logger.IntField("response_length", len(text)),
		logger.DurationField("elapsed", time.Since(start)),
	)
	return text, nil
}
