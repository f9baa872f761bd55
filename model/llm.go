package model

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer turns a single prompt into a completion. One-shot, no memory,
// no streaming.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAICompleter invokes an OpenAI-compatible completion API.
type OpenAICompleter struct {
	llm    llms.Model
	logger *slog.Logger
}

func NewOpenAICompleter(baseURL, token, model string) (*OpenAICompleter, error) {
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(token),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}

	return &OpenAICompleter{
		llm:    client,
		logger: slog.Default().With("component", "llm"),
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if count, err := CountTokens(prompt); err == nil {
		c.logger.Debug("prompt assembled", "tokens", count, "bytes", len(prompt))
	}

	start := time.Now()
	output, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, llms.WithTemperature(0))
	if err != nil {
		c.logger.Error("completion failed", "err", err)
		return "", err
	}
	c.logger.Debug("completion finished", "took", time.Since(start))

	return output, nil
}

// CountTokens counts prompt tokens with the gpt-3.5-turbo encoding, which is
// close enough for size accounting across compatible models.
func CountTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
