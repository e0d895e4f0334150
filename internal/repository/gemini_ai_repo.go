package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"forex-signals/config"
	"forex-signals/internal/dto"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

type AIRepository interface {
	GenerateCommentary(ctx context.Context, signal *dto.Signal) (string, error)
}

// geminiAIRepository generates the one-paragraph rationale attached to a
// signal. Commentary is best-effort: callers drop it on error.
type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	maxPerMin := cfg.Gemini.MaxRequestPerMinute
	if maxPerMin <= 0 {
		maxPerMin = 1
	}
	requestLimiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMin)), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		tokenLimiter:   tokenLimiter,
		requestLimiter: requestLimiter,
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiAIRepository) GenerateCommentary(ctx context.Context, signal *dto.Signal) (string, error) {
	prompt := r.commentaryPrompt(signal)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to count tokens: %w", err)
	}

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return "", fmt.Errorf("failed to wait for gemini token limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for gemini request limit: %w", err)
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate commentary: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	commentary := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if commentary == "" {
		return "", fmt.Errorf("empty commentary from gemini")
	}

	return commentary, nil
}

func (r *geminiAIRepository) commentaryPrompt(signal *dto.Signal) string {
	return fmt.Sprintf(
		"You are a forex trading assistant. In at most two sentences, explain a %s signal on %s "+
			"with %d%% confidence, entry at the next bar open and a %d minute expiry. "+
			"Plain text only, no disclaimers.",
		signal.Direction, signal.Symbol, signal.Confidence, signal.ExpiryMinutes,
	)
}
