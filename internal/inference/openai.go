package inference

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient speaks the OpenAI-compatible chat API that local servers
// (Ollama, llama.cpp, vLLM) expose.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient builds a client against the given base URL, e.g.
// "http://127.0.0.1:11434/v1". Local servers ignore the API key but the
// SDK requires a non-empty one.
func NewOpenAIClient(baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig("local")
	cfg.BaseURL = baseURL
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

// Invoke sends one chat completion and returns the assistant text with
// chain-of-thought blocks stripped.
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	ccr := openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if ccr.Temperature == 0 {
		// The SDK marshals Temperature with omitempty, so a literal zero
		// never reaches the wire and the server substitutes its own
		// default. SmallestNonzeroFloat32 is the SDK's sentinel for a
		// true zero.
		ccr.Temperature = math.SmallestNonzeroFloat32
	}
	for _, m := range req.Messages {
		ccr.Messages = append(ccr.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: server returned no choices")
	}

	slog.Debug("chat completion",
		"model", req.Model,
		"finish_reason", resp.Choices[0].FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return &Response{
		Text: StripThinkTags(resp.Choices[0].Message.Content),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
