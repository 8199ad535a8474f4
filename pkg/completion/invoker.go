// Package completion calls the hosted chat-completions service.
package completion

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/papercomputeco/tutor/pkg/llm"
)

// DefaultBaseURL is the Cerebras OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.cerebras.ai/v1"

// Client produces the assistant's next reply for a conversation.
type Client interface {
	// Complete sends the optional system prompt followed by history to model
	// and returns the reply text. Any failure is a *CompletionError.
	Complete(ctx context.Context, systemPrompt *string, history []llm.Turn, model string) (string, error)
}

// Config is the completion client configuration.
type Config struct {
	// BaseURL of the chat-completions API (e.g., "https://api.cerebras.ai/v1")
	BaseURL string

	// APIKey sent as a bearer token. It comes from the environment, never from
	// files checked into source control.
	APIKey string

	// Timeout bounds a single completion call. Zero uses five minutes.
	Timeout time.Duration
}

// Invoker is a Client backed by an OpenAI-compatible chat-completions API.
type Invoker struct {
	client *openai.Client
	logger *zap.Logger
}

var _ Client = (*Invoker)(nil)

// New creates an Invoker.
func New(config Config, logger *zap.Logger) *Invoker {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := config.Timeout
	if timeout == 0 {
		// LLM requests can be slow on long conversations
		timeout = 5 * time.Minute
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Invoker{
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}
}

// Complete performs exactly one chat-completions call.
func (i *Invoker) Complete(ctx context.Context, systemPrompt *string, history []llm.Turn, model string) (string, error) {
	messages := BuildMessages(systemPrompt, history)

	i.logger.Debug("requesting completion",
		zap.String("model", model),
		zap.Int("message_count", len(messages)),
		zap.Bool("system_prompt", systemPrompt != nil),
	)

	startTime := time.Now()
	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", &CompletionError{Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &CompletionError{Err: errors.New("response contained no choices")}
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", &CompletionError{Err: errors.New("response contained an empty message")}
	}

	i.logger.Debug("received completion",
		zap.String("model", resp.Model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("content_preview", truncate(content, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return content, nil
}

// BuildMessages prepends the system prompt, when present, to the history.
func BuildMessages(systemPrompt *string, history []llm.Turn) []openai.ChatCompletionMessage {
	turns := history
	if systemPrompt != nil {
		turns = append([]llm.Turn{llm.SystemTurn(*systemPrompt)}, history...)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	return messages
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
