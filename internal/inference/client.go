// Package inference is the transport boundary to the local model server.
// The core treats it as opaque: one call in, text and usage out.
package inference

import (
	"context"
	"regexp"
	"strings"
)

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// Request is one chat-completion invocation.
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// Usage reports token counts when the server provides them.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Response is the transport-level result of one invocation.
type Response struct {
	Text  string
	Usage Usage
}

// Client invokes a model through a chat-completion endpoint. Implementations
// must honor ctx cancellation and deadlines; they perform no retries.
type Client interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

var thinkTagRE = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkTags removes <think>...</think> chain-of-thought blocks that
// reasoning models prepend to their answers.
func StripThinkTags(s string) string {
	return strings.TrimSpace(thinkTagRE.ReplaceAllString(s, ""))
}

// StripMarkdownFences removes ``` code fences, keeping the fenced body.
func StripMarkdownFences(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
