package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/spigell/job-ranker/internal/ai"
	"github.com/spigell/job-ranker/internal/logger"
)

const (
	defaultModel        = "gemini-2.5-flash"
	defaultMaxLogLength = 200
	responseMIMEType    = "application/json"
	providerName        = "gemini"
)

// models is the subset of genai.Models used by the generator.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures a Generator.
type Config struct {
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxLogLength int
	// RequestsPerMinute throttles calls to the API. Zero disables throttling.
	RequestsPerMinute int
	CircuitBreaker    BreakerConfig
}

// BreakerConfig configures the optional circuit breaker in front of the API.
type BreakerConfig struct {
	Enabled     bool
	MaxFailures uint32
	Timeout     time.Duration
}

// Generator implements ai.Provider on top of the Gemini API.
type Generator struct {
	models    models
	modelName string
	timeout   time.Duration
	maxLogLen int
	breaker   *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, cfg, log), nil
}

func newGenerator(m models, cfg Config, log *zap.Logger) *Generator {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	log = logger.WithCommonFields(log, providerName, model)

	return &Generator{
		models:    m,
		modelName: model,
		timeout:   cfg.Timeout,
		maxLogLen: maxLogLen,
		breaker:   newBreaker(model, cfg.CircuitBreaker, log),
		limiter:   newLimiter(cfg.RequestsPerMinute),
		logger:    log,
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

func newBreaker(model string, cfg BreakerConfig, log *zap.Logger) *gobreaker.CircuitBreaker[*genai.GenerateContentResponse] {
	if !cfg.Enabled {
		return nil
	}

	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	return gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](gobreaker.Settings{
		Name:        "gemini-" + model,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// GenerateStructured sends the prompt to Gemini asking for a JSON answer that
// follows schema, and returns the decoded object.
func (g *Generator) GenerateStructured(ctx context.Context, prompt string, schema ai.Schema, systemPrompt string) (map[string]any, error) {
	if g == nil || g.models == nil {
		return nil, fmt.Errorf("%w: gemini generator is not initialized", ai.ErrUnavailable)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("prompt must not be empty")
	}

	if len(schema) > 0 {
		prompt += "\n\nRespond with a single JSON object that matches this JSON schema:\n" + schema.String()
	}

	config := &genai.GenerateContentConfig{ResponseMIMEType: responseMIMEType}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	g.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.Preview(prompt, g.maxLogLen)),
	)

	raw, err := g.generate(ctx, prompt, config)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.Preview(raw, g.maxLogLen)),
	)

	return ai.ParseStructured(raw, schema)
}

func (g *Generator) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", classify(err)
		}
	}

	call := func() (*genai.GenerateContentResponse, error) {
		return g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	}

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if g.breaker != nil {
		resp, err = g.breaker.Execute(call)
	} else {
		resp, err = call()
	}
	if err != nil {
		return "", classify(err)
	}

	output := responseText(resp)
	if output == "" {
		return "", fmt.Errorf("%w: gemini api returned empty response", ai.ErrMalformedOutput)
	}
	return output, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
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
	return strings.TrimSpace(builder.String())
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ai.ErrTimeout, err)
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ai.ErrUnavailable, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusRequestTimeout || apiErr.Code == http.StatusGatewayTimeout {
			return fmt.Errorf("%w: %w", ai.ErrTimeout, err)
		}
	}

	return fmt.Errorf("%w: generate content: %w", ai.ErrUnavailable, err)
}

// Model returns the model identifier used for requests.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
