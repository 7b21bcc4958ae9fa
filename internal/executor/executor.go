// Package executor runs one test case against one (model, configuration)
// pair. It is a leaf: it knows nothing about scoring or aggregation, and it
// never lets a transport fault escape as an error — a failed call becomes a
// status-tagged RunResult so one unreachable case cannot abort a matrix run.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/modelbench/modelbench/internal/inference"
	"github.com/modelbench/modelbench/internal/models"
)

const defaultMaxTokens = 256

// Request carries everything needed to execute one repeat of one case. The
// system prompt is resolved by the caller because it depends on the suite
// kind and the configuration's prompt style, which the executor does not
// interpret.
type Request struct {
	Model        models.ModelSpec
	Config       models.ConfigSpec
	Case         models.CaseSpec
	SystemPrompt string
	RepeatIndex  int
}

// Executor invokes cases through an injected inference client with a
// bounded per-call timeout and a shared request-rate ceiling. It performs
// no retries; retry policy belongs to the layer above.
type Executor struct {
	client  inference.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds each invocation. Zero keeps the default of 60s.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRateLimit caps request issue rate in requests per second. Bursts
// against a single local server corrupt latency measurements for unrelated
// suites, so the limiter is shared across all workers.
func WithRateLimit(rps float64) Option {
	return func(e *Executor) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates an Executor around the given client.
func New(client inference.Client, opts ...Option) *Executor {
	e := &Executor{
		client:  client,
		timeout: 60 * time.Second,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute runs one repeat and always returns a RunResult. Timeout and
// transport failures are recorded in the result's status, never returned.
func (e *Executor) Execute(ctx context.Context, req Request) models.RunResult {
	result := models.RunResult{RepeatIndex: req.RepeatIndex}

	if err := e.limiter.Wait(ctx); err != nil {
		result.Status = models.StatusTransportError
		result.ErrorMsg = err.Error()
		return result
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.Invoke(callCtx, inference.Request{
		Model:       req.Model.Name,
		Messages:    buildMessages(req),
		MaxTokens:   maxTokens(req.Case),
		Temperature: req.Config.Temperature,
		TopP:        req.Config.TopP,
	})
	result.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			result.Status = models.StatusTimeout
		default:
			result.Status = models.StatusTransportError
		}
		result.ErrorMsg = err.Error()
		slog.Debug("case invocation failed",
			"model", req.Model.Name,
			"config", req.Config.Tag,
			"case", req.Case.ID,
			"repeat", req.RepeatIndex,
			"status", result.Status,
			"error", err)
		return result
	}

	result.Output = resp.Text
	result.PromptTokens = resp.Usage.PromptTokens
	result.CompletionTokens = resp.Usage.CompletionTokens
	if resp.Text == "" {
		result.Status = models.StatusMalformed
		return result
	}
	result.Status = models.StatusOK
	return result
}

// buildMessages assembles the chat turns for one invocation. Multi-turn
// cases replay their transcript verbatim; context documents ride in a
// system turn; for prompt style "none" the instruction prefix folds into
// the user turn instead of a system message.
func buildMessages(req Request) []inference.Message {
	cs := req.Case

	if len(cs.Turns) > 0 {
		msgs := make([]inference.Message, 0, len(cs.Turns))
		for _, t := range cs.Turns {
			msgs = append(msgs, inference.Message{Role: t.Role, Content: t.Content})
		}
		return msgs
	}

	var msgs []inference.Message
	if cs.ContextText != "" {
		msgs = append(msgs, inference.Message{Role: inference.RoleSystem, Content: cs.ContextText})
		msgs = append(msgs, inference.Message{Role: inference.RoleUser, Content: cs.Prompt})
		return msgs
	}

	user := cs.Prompt
	if req.SystemPrompt != "" {
		msgs = append(msgs, inference.Message{Role: inference.RoleSystem, Content: req.SystemPrompt})
	} else if req.Config.SystemStyle == models.StyleNone && cs.InstructionPrefix != "" {
		user = cs.InstructionPrefix + "\n\n" + user
	}
	msgs = append(msgs, inference.Message{Role: inference.RoleUser, Content: user})
	return msgs
}

func maxTokens(cs models.CaseSpec) int {
	if cs.MaxTokens > 0 {
		return cs.MaxTokens
	}
	return defaultMaxTokens
}
