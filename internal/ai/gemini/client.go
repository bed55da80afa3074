package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/aisca/aisca/internal/ai"
	"github.com/aisca/aisca/internal/utils"
)

const (
	defaultModel        = "gemini-2.5-flash"
	defaultMaxRetries   = 3
	defaultBackoff      = 30 * time.Second
	defaultMaxLogLength = 200

	// Generation settings carried over from the questionnaire deployment.
	generationTemperature     = 0.7
	generationTopP            = 0.95
	generationTopK            = 40
	generationMaxOutputTokens = 500
)

// NewClient creates the shared genai client for the Gemini API backend. One
// client serves both the text generator and the embedder.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return client, nil
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// genaiChats adapts the concrete genai chat API to the chatCreator seam.
type genaiChats struct {
	client *genai.Client
}

func (c *genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	return c.client.Chats.Create(ctx, model, config, history)
}

// ResponseCache persists generated responses keyed by the exact prompt string.
type ResponseCache interface {
	Get(prompt string) (string, bool)
	Put(prompt, response string) error
}

// Generator wraps the Gemini API to provide prompt-based text generation with
// response caching and a bounded retry on rate limiting.
type Generator struct {
	chats      chatCreator
	model      string
	maxRetries int
	backoff    time.Duration
	maxLogLen  int
	cache      ResponseCache
	logger     *zap.Logger
}

// NewGenerator creates a Generator on top of the shared genai client. The
// cache may be nil, in which case every call goes upstream.
func NewGenerator(client *genai.Client, model string, maxRetries int, backoff time.Duration, maxLogLength int, cache ResponseCache, logger *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	if backoff <= 0 {
		backoff = defaultBackoff
	}

	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		chats:      &genaiChats{client: client},
		model:      model,
		maxRetries: maxRetries,
		backoff:    backoff,
		maxLogLen:  maxLogLength,
		cache:      cache,
		logger:     logger,
	}
}

// GenerateContent returns the generated text for the prompt, consulting the
// cache first and writing successful generations through to it. Rate limiting
// is retried up to the configured attempt count with a fixed backoff; any
// other upstream failure surfaces as a typed error.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	if g.cache != nil {
		if response, ok := g.cache.Get(prompt); ok {
			g.logger.Debug("generation served from cache",
				zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
				zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
			)
			return response, nil
		}
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	output, err := g.generateWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)),
	)

	if g.cache != nil {
		if err := g.cache.Put(prompt, output); err != nil {
			// A failed cache write must not discard a computed response.
			g.logger.Warn("persisting response to cache failed", zap.Error(err))
		}
	}

	return output, nil
}

func (g *Generator) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](generationTemperature),
		TopP:            genai.Ptr[float32](generationTopP),
		TopK:            genai.Ptr[float32](generationTopK),
		MaxOutputTokens: generationMaxOutputTokens,
	}

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		resp, err := g.sendMessage(ctx, prompt, config)
		if err == nil {
			return extractText(resp)
		}

		if !isRateLimited(err) {
			return "", &ai.UpstreamError{Err: err}
		}

		g.logger.Warn("gemini rate limited",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.maxRetries),
			zap.Duration("backoff", g.backoff),
		)

		if attempt == g.maxRetries {
			break
		}

		if err := utils.WaitFor(ctx, g.backoff); err != nil {
			return "", err
		}
	}

	return "", &ai.RateLimitedError{Attempts: g.maxRetries}
}

func (g *Generator) sendMessage(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	chat, err := g.chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return nil, err
	}

	return chat.SendMessage(ctx, genai.Part{Text: prompt})
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	return apiErr.Code == 429 || apiErr.Status == "RESOURCE_EXHAUSTED"
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &ai.UpstreamError{Err: errors.New("gemini api returned no response")}
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", &ai.UpstreamError{Err: errors.New("gemini api returned empty response")}
	}

	return output, nil
}
