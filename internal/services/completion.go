package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"chatrelay-backend/internal/models"
)

const (
	FallbackModel   = "togethercomputer/llama-2-70b-chat"
	SystemPreamble  = "You are a helpful AI assistant."
	NoResponseReply = "No response from AI."
	MaxOutputTokens = 1024

	missingKeyMessage = "Together AI API key not set in environment."
)

// CompletionService forwards conversations to an OpenAI-compatible
// chat-completions endpoint.
type CompletionService struct {
	apiKey       string
	endpoint     string
	defaultModel string
	httpClient   *http.Client
	logger       *slog.Logger
}

type CompletionOption func(*CompletionService)

// WithHTTPClient overrides the client used for provider calls.
func WithHTTPClient(c *http.Client) CompletionOption {
	return func(s *CompletionService) { s.httpClient = c }
}

func WithLogger(l *slog.Logger) CompletionOption {
	return func(s *CompletionService) { s.logger = l }
}

func NewCompletionService(apiKey, endpoint, defaultModel string, opts ...CompletionOption) *CompletionService {
	s := &CompletionService{
		apiKey:       apiKey,
		endpoint:     endpoint,
		defaultModel: defaultModel,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveModel picks the request model, then the configured default, then
// the built-in fallback.
func (s *CompletionService) ResolveModel(requested string) string {
	if requested != "" {
		return requested
	}
	if s.defaultModel != "" {
		return s.defaultModel
	}
	return FallbackModel
}

// BuildRequest prepends the system preamble to the caller's messages.
func (s *CompletionService) BuildRequest(req models.ChatRequest) models.CompletionRequest {
	messages := make([]models.ChatMessage, 0, len(req.Messages)+1)
	messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: SystemPreamble})
	for _, m := range req.Messages {
		messages = append(messages, models.ChatMessage{Role: m.Role, Content: m.Content})
	}

	return models.CompletionRequest{
		Model:     s.ResolveModel(req.Model),
		Messages:  messages,
		MaxTokens: MaxOutputTokens,
	}
}

// Complete sends the conversation upstream and returns the assistant reply.
// There are no retries.
func (s *CompletionService) Complete(ctx context.Context, req models.ChatRequest) (string, error) {
	if s.apiKey == "" {
		return "", &ConfigError{Message: missingKeyMessage}
	}

	payload, err := json.Marshal(s.BuildRequest(req))
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	s.logger.Info("Together AI response time", "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		return "", fmt.Errorf("Together AI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion models.CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode Together AI response: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return NoResponseReply, nil
	}
	return completion.Choices[0].Message.Content, nil
}
