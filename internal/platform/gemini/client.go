package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/config"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"
)

// modelsAPI is the subset of genai.Models used by Client.
type modelsAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
	EmbedContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.EmbedContentConfig,
	) (*genai.EmbedContentResponse, error)
}

// Client calls Gemini for text completion and embeddings.
type Client struct {
	models         modelsAPI
	model          string
	embeddingModel string
	maxRetries     uint64
	baseDelay      time.Duration
	logger         *slog.Logger
}

// NewClient creates a client from cfg. It returns ErrNotConfigured when no
// API key is set so callers can fall back to heuristics.
func NewClient(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, ErrNotConfigured
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return newClient(client.Models, cfg, log), nil
}

func newClient(models modelsAPI, cfg config.LLMConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 3
	}
	delay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Client{
		models:         models,
		model:          cfg.ModelName,
		embeddingModel: cfg.EmbeddingModel,
		maxRetries:     uint64(maxRetries),
		baseDelay:      delay,
		logger:         log.With("component", "gemini_client"),
	}
}

func (c *Client) backoff() retry.Backoff {
	return retry.WithMaxRetries(c.maxRetries, retry.WithJitterPercent(50, retry.NewExponential(c.baseDelay)))
}

// Complete sends prompt to the text model and returns the generated text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	log := logger.FromContextOrDefault(ctx, c.logger).With("model", c.model)

	attempt := 0
	text, err := retry.DoValue(ctx, c.backoff(), func(ctx context.Context) (string, error) {
		attempt++
		resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
		if err != nil {
			log.Warn("gemini call failed", "attempt", attempt, "error", redact.Error(err))
			return "", attemptError(err)
		}
		return responseText(resp)
	})
	if err != nil {
		return "", c.classify(ctx, err)
	}

	log.Debug("gemini call succeeded", "attempt", attempt, "response_length", len(text))
	return text, nil
}

// Embed returns the embedding vector of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPrompt
	}
	log := logger.FromContextOrDefault(ctx, c.logger).With("model", c.embeddingModel)

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	vector, err := retry.DoValue(ctx, c.backoff(), func(ctx context.Context) ([]float32, error) {
		resp, err := c.models.EmbedContent(ctx, c.embeddingModel, contents, nil)
		if err != nil {
			log.Warn("gemini embedding failed", "error", redact.Error(err))
			return nil, attemptError(err)
		}
		if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
			return nil, fmt.Errorf("%w: no embedding returned", ErrInvalidResponse)
		}
		return resp.Embeddings[0].Values, nil
	})
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	return vector, nil
}

// attemptError marks err retryable unless the API status says a retry cannot
// help. Errors without a status, such as network failures, are retried.
func attemptError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	code, ok := apiErrorCode(err)
	switch {
	case ok && code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	case ok && isPermanentStatus(code):
		return fmt.Errorf("%w: %w", ErrRequestRejected, err)
	}
	return retry.RetryableError(err)
}

// classify wraps errors that survived every retry as ErrTransientFailure.
// Blocked, quota and rejected errors are returned as they are.
func (c *Client) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrContentBlocked), errors.Is(err, ErrInvalidResponse),
		errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrRequestRejected):
		return err
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ErrTransientFailure, ctx.Err())
	default:
		return fmt.Errorf("%w: %w", ErrTransientFailure, err)
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", ErrContentBlocked
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text", ErrInvalidResponse)
	}
	return text, nil
}
