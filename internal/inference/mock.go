package inference

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MockClient is a scripted client for tests. Responses are matched by
// substring against the last user message; unmatched requests get the
// Default response.
type MockClient struct {
	mu sync.Mutex

	// Responses maps a user-message substring to the canned reply.
	Responses map[string]string
	// Default is returned when no substring matches.
	Default string
	// Err, when set, is returned for every invocation.
	Err error
	// Requests records every request received, in arrival order.
	Requests []Request
}

// NewMockClient returns a mock with an empty script.
func NewMockClient() *MockClient {
	return &MockClient{Responses: map[string]string{}, Default: "ok"}
}

func (m *MockClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	err := m.Err
	text := m.Default
	var lastUser string
	for _, msg := range req.Messages {
		if msg.Role == RoleUser {
			lastUser = msg.Content
		}
	}
	// Deterministic match order regardless of map iteration.
	keys := make([]string, 0, len(m.Responses))
	for sub := range m.Responses {
		keys = append(keys, sub)
	}
	sort.Strings(keys)
	for _, sub := range keys {
		if strings.Contains(lastUser, sub) {
			text = m.Responses[sub]
			break
		}
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return &Response{
		Text: StripThinkTags(text),
		Usage: Usage{
			PromptTokens:     len(strings.Fields(lastUser)),
			CompletionTokens: len(strings.Fields(text)),
		},
	}, nil
}
