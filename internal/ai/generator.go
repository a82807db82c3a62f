package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/sony/gobreaker"
)

var (
	ErrEmptyCompletion = errors.New("empty llm choices")
	ErrGeneratorOpen   = errors.New("generator circuit open")
)

// ChatConfig selects the completion model.
type ChatConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Completion is the generator output plus the token usage it reported.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
}

// Generator sends a single-turn prompt to the chat completions endpoint.
// Consecutive failures trip a circuit breaker so an unavailable provider
// fails requests fast instead of tying up workers.
type Generator struct {
	client  *openai.Client
	cfg     ChatConfig
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewGenerator(client *openai.Client, cfg ChatConfig, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "generator",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &Generator{client: client, cfg: cfg, breaker: breaker, logger: logger}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (Completion, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(g.cfg.Model),
	}
	if g.cfg.Temperature > 0 {
		params.Temperature = openai.Float(g.cfg.Temperature)
	}
	if g.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(g.cfg.MaxTokens))
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		resp, err := g.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, ErrEmptyCompletion
		}
		completion := Completion{
			Text:             resp.Choices[0].Message.Content,
			Model:            resp.Model,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		}
		if completion.Model == "" {
			completion.Model = g.cfg.Model
		}
		return completion, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Completion{}, fmt.Errorf("%w: %v", ErrGeneratorOpen, err)
		}
		return Completion{}, err
	}
	completion := out.(Completion)

	// Some local providers report no usage; estimate so metering still works.
	if completion.PromptTokens == 0 && completion.CompletionTokens == 0 {
		completion.PromptTokens = int64(CountTokens(prompt))
		completion.CompletionTokens = int64(CountTokens(completion.Text))
	}
	return completion, nil
}
