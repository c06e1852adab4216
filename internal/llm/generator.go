// Package llm is the boundary to hosted text-generation models.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"notewise/config"

	openai "github.com/sashabaranov/go-openai"
)

// Generator turns a prompt into plain text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var ErrEmptyResponse = errors.New("llm: model returned no text")

// OpenAIGenerator talks to any OpenAI-compatible chat-completions endpoint
// (Gemini and DeepSeek both expose one).
type OpenAIGenerator struct {
	Client      *openai.Client
	Model       string
	Temperature float32
}

func NewOpenAIGenerator(cfg config.LLMConfig) *OpenAIGenerator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAIGenerator{
		Client:      openai.NewClientWithConfig(clientConfig),
		Model:       cfg.Model,
		Temperature: 0.3,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", g.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
